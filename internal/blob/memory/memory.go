// Package memory is an in-process blob store used by tests and demo mode.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/memvault/memvault/internal/blob"
)

// Store keeps blobs in a map. Removed paths are recorded so tests can
// assert on best-effort cleanup.
type Store struct {
	mu      sync.Mutex
	objects map[string][]byte
	removed []string
	// FailRemove makes Remove return an error, for cleanup-failure tests.
	FailRemove bool
}

// New creates an empty store.
func New() *Store {
	return &Store{objects: make(map[string][]byte)}
}

func (s *Store) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = append([]byte(nil), data...)
	return nil
}

func (s *Store) PublicURL(path string) string {
	return fmt.Sprintf("https://blobs.example.test/%s/%s", blob.Bucket, path)
}

func (s *Store) Remove(ctx context.Context, paths ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailRemove {
		return fmt.Errorf("remove failed")
	}
	for _, p := range paths {
		delete(s.objects, p)
		s.removed = append(s.removed, p)
	}
	return nil
}

// Removed returns every path Remove was called with.
func (s *Store) Removed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.removed...)
}

// Has reports whether an object exists at path.
func (s *Store) Has(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[path]
	return ok
}
