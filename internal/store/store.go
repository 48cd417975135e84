package store

import (
	"context"

	"github.com/memvault/memvault/internal/model"
)

// Store exposes the two record collections the gallery persists to.
// Implementations live under internal/store/<driver>/ (postgres, sqlite,
// mysql, rest, memory).
type Store interface {
	Memories() Memories
	Albums() Albums
}

// Memories is the "memories" collection.
type Memories interface {
	// List returns every record ordered by uploaded_at descending.
	List(ctx context.Context) ([]*model.MemoryItem, error)
	GetByID(ctx context.Context, id string) (*model.MemoryItem, error)
	Create(ctx context.Context, m *model.MemoryItem) (*model.MemoryItem, error)
	// Update applies only the non-nil fields of the patch.
	Update(ctx context.Context, id string, patch model.MemoryPatch) error
	Delete(ctx context.Context, id string) error
}

// Albums is the "albums" collection. There is no update path for albums.
type Albums interface {
	// List returns every record ordered by created_at descending.
	List(ctx context.Context) ([]*model.Album, error)
	GetByID(ctx context.Context, id string) (*model.Album, error)
	Create(ctx context.Context, a *model.Album) (*model.Album, error)
	Delete(ctx context.Context, id string) error
}
