// Package fs stores blobs on the local filesystem, for local and demo
// deployments where the service itself serves the media directory.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/memvault/memvault/internal/blob"
)

// Store writes objects under root and derives public URLs from baseURL.
type Store struct {
	root    string
	baseURL string
}

// New creates the root directory if needed. baseURL is the externally
// visible prefix the media directory is served under.
func New(root, baseURL string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Store{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Upload writes the object, creating intermediate directories. The content
// type is derived again at serve time, so it is ignored here.
func (s *Store) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}

// PublicURL returns the URL the object is served under.
func (s *Store) PublicURL(path string) string {
	return fmt.Sprintf("%s/%s/%s", s.baseURL, blob.Bucket, path)
}

// Remove deletes the given objects. Missing objects are not an error; the
// first real failure is returned after attempting every path.
func (s *Store) Remove(ctx context.Context, paths ...string) error {
	var firstErr error
	for _, p := range paths {
		full, err := s.resolve(p)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Root returns the directory objects live under, for wiring a file server.
func (s *Store) Root() string { return s.root }

// resolve rejects paths that would escape the root.
func (s *Store) resolve(path string) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(path))
	if !strings.HasPrefix(full, filepath.Clean(s.root)+string(os.PathSeparator)) {
		return "", fmt.Errorf("blob path escapes root: %q", path)
	}
	return full, nil
}
