// Package mysql implements the record store on MySQL.
package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/memvault/memvault/internal/model"
	"github.com/memvault/memvault/internal/store"
	"github.com/memvault/memvault/internal/store/sqlutil"
)

// Open opens a MySQL connection and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("mysql DSN is empty")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a MySQL-backed store over an existing connection.
func NewWithDB(db *sql.DB) store.Store { return &myStore{db: db} }

type myStore struct{ db *sql.DB }

func (s *myStore) Memories() store.Memories { return &memories{db: s.db} }
func (s *myStore) Albums() store.Albums     { return &albums{db: s.db} }

// HealthPing implements the health prober.
func (s *myStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// EnsureSchema creates the two collections if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS memories (
            id VARCHAR(64) PRIMARY KEY,
            title TEXT NOT NULL,
            description TEXT NOT NULL,
            media_type VARCHAR(16) NOT NULL,
            media_url TEXT NOT NULL,
            thumbnail_url TEXT NOT NULL,
            event_category VARCHAR(32) NOT NULL,
            grade VARCHAR(32) NOT NULL,
            school_year VARCHAR(32) NOT NULL,
            uploaded_by VARCHAR(255) NOT NULL,
            uploaded_at VARCHAR(32) NOT NULL,
            status VARCHAR(16) NOT NULL,
            likes INT NOT NULL DEFAULT 0,
            tags JSON NOT NULL,
            album_id VARCHAR(64),
            INDEX memories_uploaded_at_idx (uploaded_at)
        )`,
		`CREATE TABLE IF NOT EXISTS albums (
            id VARCHAR(64) PRIMARY KEY,
            name VARCHAR(255) NOT NULL,
            description TEXT NOT NULL,
            cover_url TEXT NOT NULL,
            created_by VARCHAR(255) NOT NULL,
            created_at VARCHAR(32) NOT NULL,
            item_count INT NOT NULL DEFAULT 0,
            is_public BOOLEAN NOT NULL DEFAULT TRUE
        )`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

const memoryCols = `id, title, description, media_type, media_url, thumbnail_url,
    event_category, grade, school_year, uploaded_by, uploaded_at, status, likes, tags, album_id`

type memories struct{ db *sql.DB }

func (c *memories) List(ctx context.Context) ([]*model.MemoryItem, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT `+memoryCols+` FROM memories ORDER BY uploaded_at DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.MemoryItem
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

func (c *memories) GetByID(ctx context.Context, id string) (*model.MemoryItem, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+memoryCols+` FROM memories WHERE id = ?`, id)
	m, err := scanMemory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	return m, err
}

func (c *memories) Create(ctx context.Context, m *model.MemoryItem) (*model.MemoryItem, error) {
	tags, err := json.Marshal(m.Tags)
	if err != nil {
		return nil, err
	}
	_, err = c.db.ExecContext(ctx, `
        INSERT INTO memories (`+memoryCols+`)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		m.ID, m.Title, m.Description, string(m.MediaType), m.MediaURL, m.ThumbnailURL,
		string(m.EventCategory), m.Grade, m.SchoolYear, m.UploadedBy, m.UploadedAt,
		string(m.Status), m.Likes, string(tags), m.AlbumID)
	if err != nil {
		if isDuplicateEntry(err) {
			return nil, model.ErrConflict
		}
		return nil, err
	}
	out := *m
	return &out, nil
}

func (c *memories) Update(ctx context.Context, id string, patch model.MemoryPatch) error {
	set, args, err := sqlutil.PatchSet(patch, false)
	if err != nil {
		return err
	}
	if set == "" {
		return nil
	}
	args = append(args, id)
	res, err := c.db.ExecContext(ctx,
		`UPDATE memories SET `+set+` WHERE id = ?`, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// MySQL reports zero affected rows for value-identical updates, so
		// distinguish that from a missing row.
		if _, err := c.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (c *memories) Delete(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM memories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type albums struct{ db *sql.DB }

func (c *albums) List(ctx context.Context) ([]*model.Album, error) {
	rows, err := c.db.QueryContext(ctx, `
        SELECT id, name, description, cover_url, created_by, created_at, item_count, is_public
        FROM albums ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Album
	for rows.Next() {
		var a model.Album
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.CoverURL,
			&a.CreatedBy, &a.CreatedAt, &a.ItemCount, &a.IsPublic); err != nil {
			return nil, err
		}
		res = append(res, &a)
	}
	return res, rows.Err()
}

func (c *albums) GetByID(ctx context.Context, id string) (*model.Album, error) {
	var a model.Album
	err := c.db.QueryRowContext(ctx, `
        SELECT id, name, description, cover_url, created_by, created_at, item_count, is_public
        FROM albums WHERE id = ?`, id).
		Scan(&a.ID, &a.Name, &a.Description, &a.CoverURL,
			&a.CreatedBy, &a.CreatedAt, &a.ItemCount, &a.IsPublic)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *albums) Create(ctx context.Context, a *model.Album) (*model.Album, error) {
	_, err := c.db.ExecContext(ctx, `
        INSERT INTO albums (id, name, description, cover_url, created_by, created_at, item_count, is_public)
        VALUES (?,?,?,?,?,?,?,?)`,
		a.ID, a.Name, a.Description, a.CoverURL, a.CreatedBy, a.CreatedAt, a.ItemCount, a.IsPublic)
	if err != nil {
		if isDuplicateEntry(err) {
			return nil, model.ErrConflict
		}
		return nil, err
	}
	out := *a
	return &out, nil
}

func (c *albums) Delete(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM albums WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func isDuplicateEntry(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMemory(r rowScanner) (*model.MemoryItem, error) {
	var m model.MemoryItem
	var mt, ec, st, tags string
	var albumID sql.NullString
	if err := r.Scan(&m.ID, &m.Title, &m.Description, &mt, &m.MediaURL, &m.ThumbnailURL,
		&ec, &m.Grade, &m.SchoolYear, &m.UploadedBy, &m.UploadedAt, &st,
		&m.Likes, &tags, &albumID); err != nil {
		return nil, err
	}
	m.MediaType = model.MediaType(mt)
	m.EventCategory = model.EventCategory(ec)
	m.Status = model.SubmissionStatus(st)
	if err := json.Unmarshal([]byte(tags), &m.Tags); err != nil {
		return nil, err
	}
	if albumID.Valid {
		id := albumID.String
		m.AlbumID = &id
	}
	return &m, nil
}
