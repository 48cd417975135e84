// Package factory constructs the store and blob adapters selected by
// configuration.
package factory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/memvault/memvault/internal/blob"
	blobfs "github.com/memvault/memvault/internal/blob/fs"
	blobmemory "github.com/memvault/memvault/internal/blob/memory"
	blobrest "github.com/memvault/memvault/internal/blob/rest"
	"github.com/memvault/memvault/internal/config"
	"github.com/memvault/memvault/internal/store"
	storememory "github.com/memvault/memvault/internal/store/memory"
	"github.com/memvault/memvault/internal/store/mysql"
	"github.com/memvault/memvault/internal/store/postgres"
	storerest "github.com/memvault/memvault/internal/store/rest"
	"github.com/memvault/memvault/internal/store/sqlite"
)

// NewStore builds the record store adapter for cfg.StoreDriver.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, error) {
	switch cfg.StoreDriver {
	case "sqlite":
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("sqlite record store ready")
		return sqlite.NewWithDB(db), nil
	case "postgres":
		db, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("postgres schema: %w", err)
		}
		log.Info().Msg("postgres record store ready")
		return postgres.NewWithDB(db), nil
	case "mysql":
		db, err := mysql.Open(cfg.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("open mysql store: %w", err)
		}
		if err := mysql.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("mysql schema: %w", err)
		}
		log.Info().Msg("mysql record store ready")
		return mysql.NewWithDB(db), nil
	case "rest":
		log.Info().Str("url", cfg.RecordServiceURL).Msg("hosted record store ready")
		return storerest.New(storerest.Config{
			BaseURL: cfg.RecordServiceURL,
			APIKey:  cfg.RecordServiceKey,
		}), nil
	case "memory":
		return storememory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.StoreDriver)
	}
}

// NewBlobStore builds the blob store adapter for cfg.BlobDriver.
func NewBlobStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (blob.Store, error) {
	switch cfg.BlobDriver {
	case "fs":
		bs, err := blobfs.New(cfg.MediaDir, cfg.PublicBaseURL)
		if err != nil {
			return nil, fmt.Errorf("open media dir: %w", err)
		}
		log.Info().Str("dir", cfg.MediaDir).Msg("filesystem blob store ready")
		return bs, nil
	case "rest":
		log.Info().Str("url", cfg.RecordServiceURL).Msg("hosted blob store ready")
		return blobrest.New(blobrest.Config{
			BaseURL: cfg.RecordServiceURL,
			APIKey:  cfg.RecordServiceKey,
		}), nil
	case "memory":
		return blobmemory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported blob driver: %s", cfg.BlobDriver)
	}
}
