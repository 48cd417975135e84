// Package memory is a mutex-guarded in-process record store used by tests
// and demo mode.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/memvault/memvault/internal/model"
	"github.com/memvault/memvault/internal/store"
)

// Store keeps both collections in maps and hands out copies so callers can
// never alias internal state.
type Store struct {
	mu       sync.RWMutex
	memories map[string]*model.MemoryItem
	albums   map[string]*model.Album
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		memories: make(map[string]*model.MemoryItem),
		albums:   make(map[string]*model.Album),
	}
}

func (s *Store) Memories() store.Memories { return &memories{s: s} }
func (s *Store) Albums() store.Albums     { return &albums{s: s} }

// HealthPing implements the health prober; an in-memory store is always up.
func (s *Store) HealthPing(ctx context.Context) error { return nil }

type memories struct{ s *Store }

func (c *memories) List(ctx context.Context) ([]*model.MemoryItem, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	out := make([]*model.MemoryItem, 0, len(c.s.memories))
	for _, m := range c.s.memories {
		cp := *m
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UploadedAt != out[j].UploadedAt {
			return out[i].UploadedAt > out[j].UploadedAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (c *memories) GetByID(ctx context.Context, id string) (*model.MemoryItem, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	m, ok := c.s.memories[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (c *memories) Create(ctx context.Context, m *model.MemoryItem) (*model.MemoryItem, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if _, ok := c.s.memories[m.ID]; ok {
		return nil, model.ErrConflict
	}
	cp := *m
	c.s.memories[m.ID] = &cp
	out := cp
	return &out, nil
}

func (c *memories) Update(ctx context.Context, id string, patch model.MemoryPatch) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	m, ok := c.s.memories[id]
	if !ok {
		return model.ErrNotFound
	}
	if patch.Title != nil {
		m.Title = *patch.Title
	}
	if patch.Description != nil {
		m.Description = *patch.Description
	}
	if patch.EventCategory != nil {
		m.EventCategory = *patch.EventCategory
	}
	if patch.Grade != nil {
		m.Grade = *patch.Grade
	}
	if patch.SchoolYear != nil {
		m.SchoolYear = *patch.SchoolYear
	}
	if patch.Tags != nil {
		m.Tags = append([]string(nil), patch.Tags...)
	}
	if patch.Status != nil {
		m.Status = *patch.Status
	}
	return nil
}

func (c *memories) Delete(ctx context.Context, id string) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if _, ok := c.s.memories[id]; !ok {
		return model.ErrNotFound
	}
	delete(c.s.memories, id)
	return nil
}

type albums struct{ s *Store }

func (c *albums) List(ctx context.Context) ([]*model.Album, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	out := make([]*model.Album, 0, len(c.s.albums))
	for _, a := range c.s.albums {
		cp := *a
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (c *albums) GetByID(ctx context.Context, id string) (*model.Album, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	a, ok := c.s.albums[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (c *albums) Create(ctx context.Context, a *model.Album) (*model.Album, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if _, ok := c.s.albums[a.ID]; ok {
		return nil, model.ErrConflict
	}
	cp := *a
	c.s.albums[a.ID] = &cp
	out := cp
	return &out, nil
}

func (c *albums) Delete(ctx context.Context, id string) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if _, ok := c.s.albums[id]; !ok {
		return model.ErrNotFound
	}
	delete(c.s.albums, id)
	return nil
}
