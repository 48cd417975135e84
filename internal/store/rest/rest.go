// Package rest implements the record store against a hosted PostgREST-style
// data service, the deployment the gallery was originally built on. Each
// collection is a table under /rest/v1/ filtered with eq. query operators.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"

	"github.com/memvault/memvault/internal/model"
	"github.com/memvault/memvault/internal/store"
)

// Config locates the hosted record service.
type Config struct {
	BaseURL string
	APIKey  string
	// Timeout bounds each individual HTTP attempt.
	Timeout time.Duration
	// MaxElapsed bounds the whole retry schedule; zero uses a 30s default.
	MaxElapsed time.Duration
}

// New builds a REST-backed store.
func New(cfg Config) *Store {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxElapsed == 0 {
		cfg.MaxElapsed = 30 * time.Second
	}
	c := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("apikey", cfg.APIKey).
		SetHeader("Authorization", "Bearer "+cfg.APIKey)
	return &Store{client: c, maxElapsed: cfg.MaxElapsed}
}

// Store talks to the hosted record service.
type Store struct {
	client     *resty.Client
	maxElapsed time.Duration
}

func (s *Store) Memories() store.Memories { return &memories{s: s} }
func (s *Store) Albums() store.Albums     { return &albums{s: s} }

// HealthPing implements the health prober with a cheap HEAD-style query.
func (s *Store) HealthPing(ctx context.Context) error {
	resp, err := s.client.R().SetContext(ctx).
		SetQueryParam("select", "id").
		SetQueryParam("limit", "1").
		Get("/rest/v1/memories")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("record service health: HTTP %d", resp.StatusCode())
	}
	return nil
}

// memoryRecord is the transport shape of a memories row.
type memoryRecord struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	MediaType     string   `json:"media_type"`
	MediaURL      string   `json:"media_url"`
	ThumbnailURL  string   `json:"thumbnail_url"`
	EventCategory string   `json:"event_category"`
	Grade         string   `json:"grade"`
	SchoolYear    string   `json:"school_year"`
	UploadedBy    string   `json:"uploaded_by"`
	UploadedAt    string   `json:"uploaded_at"`
	Status        string   `json:"status"`
	Likes         int      `json:"likes"`
	Tags          []string `json:"tags"`
	AlbumID       *string  `json:"album_id"`
}

func (r memoryRecord) toModel() *model.MemoryItem {
	return &model.MemoryItem{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		MediaType:     model.MediaType(r.MediaType),
		MediaURL:      r.MediaURL,
		ThumbnailURL:  r.ThumbnailURL,
		EventCategory: model.EventCategory(r.EventCategory),
		Grade:         r.Grade,
		SchoolYear:    r.SchoolYear,
		UploadedBy:    r.UploadedBy,
		UploadedAt:    r.UploadedAt,
		Status:        model.SubmissionStatus(r.Status),
		Likes:         r.Likes,
		Tags:          r.Tags,
		AlbumID:       r.AlbumID,
	}
}

func recordFromModel(m *model.MemoryItem) memoryRecord {
	return memoryRecord{
		ID:            m.ID,
		Title:         m.Title,
		Description:   m.Description,
		MediaType:     string(m.MediaType),
		MediaURL:      m.MediaURL,
		ThumbnailURL:  m.ThumbnailURL,
		EventCategory: string(m.EventCategory),
		Grade:         m.Grade,
		SchoolYear:    m.SchoolYear,
		UploadedBy:    m.UploadedBy,
		UploadedAt:    m.UploadedAt,
		Status:        string(m.Status),
		Likes:         m.Likes,
		Tags:          m.Tags,
		AlbumID:       m.AlbumID,
	}
}

// albumRecord is the transport shape of an albums row.
type albumRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CoverURL    string `json:"cover_url"`
	CreatedBy   string `json:"created_by"`
	CreatedAt   string `json:"created_at"`
	ItemCount   int    `json:"item_count"`
	IsPublic    bool   `json:"is_public"`
}

func (r albumRecord) toModel() *model.Album {
	return &model.Album{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		CoverURL:    r.CoverURL,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt,
		ItemCount:   r.ItemCount,
		IsPublic:    r.IsPublic,
	}
}

type memories struct{ s *Store }

func (c *memories) List(ctx context.Context) ([]*model.MemoryItem, error) {
	var recs []memoryRecord
	err := c.s.do(ctx, func() (*resty.Response, error) {
		return c.s.client.R().SetContext(ctx).
			SetQueryParam("select", "*").
			SetQueryParam("order", "uploaded_at.desc").
			SetResult(&recs).
			Get("/rest/v1/memories")
	})
	if err != nil {
		return nil, err
	}
	out := make([]*model.MemoryItem, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (c *memories) GetByID(ctx context.Context, id string) (*model.MemoryItem, error) {
	var recs []memoryRecord
	err := c.s.do(ctx, func() (*resty.Response, error) {
		return c.s.client.R().SetContext(ctx).
			SetQueryParam("select", "*").
			SetQueryParam("id", "eq."+id).
			SetResult(&recs).
			Get("/rest/v1/memories")
	})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, model.ErrNotFound
	}
	return recs[0].toModel(), nil
}

func (c *memories) Create(ctx context.Context, m *model.MemoryItem) (*model.MemoryItem, error) {
	var recs []memoryRecord
	err := c.s.do(ctx, func() (*resty.Response, error) {
		return c.s.client.R().SetContext(ctx).
			SetHeader("Prefer", "return=representation").
			SetBody([]memoryRecord{recordFromModel(m)}).
			SetResult(&recs).
			Post("/rest/v1/memories")
	})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		out := *m
		return &out, nil
	}
	return recs[0].toModel(), nil
}

func (c *memories) Update(ctx context.Context, id string, patch model.MemoryPatch) error {
	body := patchBody(patch)
	if len(body) == 0 {
		return nil
	}
	var recs []memoryRecord
	err := c.s.do(ctx, func() (*resty.Response, error) {
		return c.s.client.R().SetContext(ctx).
			SetHeader("Prefer", "return=representation").
			SetQueryParam("id", "eq."+id).
			SetBody(body).
			SetResult(&recs).
			Patch("/rest/v1/memories")
	})
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (c *memories) Delete(ctx context.Context, id string) error {
	var recs []memoryRecord
	err := c.s.do(ctx, func() (*resty.Response, error) {
		return c.s.client.R().SetContext(ctx).
			SetHeader("Prefer", "return=representation").
			SetQueryParam("id", "eq."+id).
			SetResult(&recs).
			Delete("/rest/v1/memories")
	})
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return model.ErrNotFound
	}
	return nil
}

type albums struct{ s *Store }

func (c *albums) List(ctx context.Context) ([]*model.Album, error) {
	var recs []albumRecord
	err := c.s.do(ctx, func() (*resty.Response, error) {
		return c.s.client.R().SetContext(ctx).
			SetQueryParam("select", "*").
			SetQueryParam("order", "created_at.desc").
			SetResult(&recs).
			Get("/rest/v1/albums")
	})
	if err != nil {
		return nil, err
	}
	out := make([]*model.Album, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (c *albums) GetByID(ctx context.Context, id string) (*model.Album, error) {
	var recs []albumRecord
	err := c.s.do(ctx, func() (*resty.Response, error) {
		return c.s.client.R().SetContext(ctx).
			SetQueryParam("select", "*").
			SetQueryParam("id", "eq."+id).
			SetResult(&recs).
			Get("/rest/v1/albums")
	})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, model.ErrNotFound
	}
	return recs[0].toModel(), nil
}

func (c *albums) Create(ctx context.Context, a *model.Album) (*model.Album, error) {
	rec := albumRecord{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		CoverURL:    a.CoverURL,
		CreatedBy:   a.CreatedBy,
		CreatedAt:   a.CreatedAt,
		IsPublic:    a.IsPublic,
	}
	var recs []albumRecord
	err := c.s.do(ctx, func() (*resty.Response, error) {
		return c.s.client.R().SetContext(ctx).
			SetHeader("Prefer", "return=representation").
			SetBody([]albumRecord{rec}).
			SetResult(&recs).
			Post("/rest/v1/albums")
	})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		out := *a
		return &out, nil
	}
	return recs[0].toModel(), nil
}

func (c *albums) Delete(ctx context.Context, id string) error {
	var recs []albumRecord
	err := c.s.do(ctx, func() (*resty.Response, error) {
		return c.s.client.R().SetContext(ctx).
			SetHeader("Prefer", "return=representation").
			SetQueryParam("id", "eq."+id).
			SetResult(&recs).
			Delete("/rest/v1/albums")
	})
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return model.ErrNotFound
	}
	return nil
}

// patchBody renders only the provided patch fields as transport columns.
func patchBody(p model.MemoryPatch) map[string]interface{} {
	body := map[string]interface{}{}
	if p.Title != nil {
		body["title"] = *p.Title
	}
	if p.Description != nil {
		body["description"] = *p.Description
	}
	if p.EventCategory != nil {
		body["event_category"] = string(*p.EventCategory)
	}
	if p.Grade != nil {
		body["grade"] = *p.Grade
	}
	if p.SchoolYear != nil {
		body["school_year"] = *p.SchoolYear
	}
	if p.Tags != nil {
		body["tags"] = p.Tags
	}
	if p.Status != nil {
		body["status"] = string(*p.Status)
	}
	return body
}

// do runs one request with retry on recoverable failures: network errors,
// 408, 429 and 5xx. Other 4xx statuses are terminal.
func (s *Store) do(ctx context.Context, fn func() (*resty.Response, error)) error {
	op := func() error {
		resp, err := fn()
		if err != nil {
			return err
		}
		if resp.IsError() {
			herr := httpError(resp)
			if retryable(resp.StatusCode()) {
				return herr
			}
			return backoff.Permanent(herr)
		}
		return nil
	}
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = s.maxElapsed
	return backoff.Retry(op, backoff.WithContext(b, ctx))
}

func retryable(status int) bool {
	switch {
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests:
		return true
	case status >= 500:
		return true
	}
	return false
}

func httpError(resp *resty.Response) error {
	var apiErr struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.Body(), &apiErr); err == nil && apiErr.Message != "" {
		return fmt.Errorf("record service: HTTP %d: %s", resp.StatusCode(), apiErr.Message)
	}
	return fmt.Errorf("record service: HTTP %d", resp.StatusCode())
}
