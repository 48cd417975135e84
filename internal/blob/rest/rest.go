// Package rest uploads blobs to the hosted object-storage endpoint that
// fronts the record service.
package rest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/memvault/memvault/internal/blob"
)

// Config locates the hosted storage endpoint.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Store talks to the hosted storage API. All objects live in the single
// gallery bucket.
type Store struct {
	client  *resty.Client
	baseURL string
}

// New builds a REST-backed blob store.
func New(cfg Config) *Store {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	c := resty.New().
		SetBaseURL(base).
		SetTimeout(cfg.Timeout).
		SetHeader("apikey", cfg.APIKey).
		SetHeader("Authorization", "Bearer "+cfg.APIKey)
	return &Store{client: c, baseURL: base}
}

// Upload stores the object at path within the gallery bucket.
func (s *Store) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	resp, err := s.client.R().SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(data).
		Post(fmt.Sprintf("/storage/v1/object/%s/%s", blob.Bucket, path))
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("blob upload: HTTP %d", resp.StatusCode())
	}
	return nil
}

// PublicURL returns the public URL the hosted service serves the object
// under. The bucket segment in the URL is what PathFromPublicURL relies on.
func (s *Store) PublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, blob.Bucket, path)
}

// Remove deletes the given objects in one call.
func (s *Store) Remove(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	resp, err := s.client.R().SetContext(ctx).
		SetBody(map[string][]string{"prefixes": paths}).
		Delete(fmt.Sprintf("/storage/v1/object/%s", blob.Bucket))
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("blob remove: HTTP %d", resp.StatusCode())
	}
	return nil
}
