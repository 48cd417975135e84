// Package storetest exercises a compliance suite against a store.Store
// implementation. Every driver adapter runs it from its own test file.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/memvault/memvault/internal/model"
	"github.com/memvault/memvault/internal/store"
)

// Run exercises the suite. makeStore must return a clean, isolated store.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	alb := &model.Album{
		ID:          uuid.New().String(),
		Name:        "Class of 2025",
		Description: "Graduation week",
		CoverURL:    "https://cdn.example.test/memories/album-covers/c1.jpg",
		CreatedBy:   "Yearbook Committee",
		CreatedAt:   "2025-06-01",
		IsPublic:    true,
	}
	if _, err := s.Albums().Create(ctx, alb); err != nil {
		t.Fatalf("CreateAlbum: %v", err)
	}
	if got, err := s.Albums().GetByID(ctx, alb.ID); err != nil || got == nil || got.Name != "Class of 2025" {
		t.Fatalf("GetAlbum: got=%v err=%v", got, err)
	}

	m1 := &model.MemoryItem{
		ID:            uuid.New().String(),
		Title:         "Cap toss",
		Description:   "The whole class at once",
		MediaType:     model.MediaPhoto,
		MediaURL:      "https://cdn.example.test/memories/photo/m1.jpg",
		ThumbnailURL:  "https://cdn.example.test/memories/photo/m1.jpg",
		EventCategory: model.EventGraduation,
		Grade:         "12th",
		SchoolYear:    "2024-2025",
		AlbumID:       &alb.ID,
		UploadedBy:    "Ana",
		UploadedAt:    "2025-06-02",
		Status:        model.StatusApproved,
		Likes:         0,
		Tags:          []string{"graduation", "cap-toss"},
	}
	m2 := &model.MemoryItem{
		ID:            uuid.New().String(),
		Title:         "Warm-up lap",
		Description:   "Sports day morning",
		MediaType:     model.MediaVideo,
		MediaURL:      "https://cdn.example.test/memories/video/m2.mp4",
		ThumbnailURL:  "https://cdn.example.test/memories/video/m2.jpg",
		EventCategory: model.EventSports,
		Grade:         "11th",
		SchoolYear:    "2024-2025",
		UploadedBy:    "Ben",
		UploadedAt:    "2025-05-10",
		Status:        model.StatusApproved,
		Likes:         3,
		Tags:          []string{"sports", "track"},
	}
	for _, m := range []*model.MemoryItem{m1, m2} {
		if _, err := s.Memories().Create(ctx, m); err != nil {
			t.Fatalf("CreateMemory %s: %v", m.Title, err)
		}
	}

	// List must come back newest first by uploaded_at.
	lst, err := s.Memories().List(ctx)
	if err != nil || len(lst) != 2 {
		t.Fatalf("ListMemories: n=%d err=%v", len(lst), err)
	}
	if lst[0].ID != m1.ID || lst[1].ID != m2.ID {
		t.Fatalf("ListMemories order: got %s then %s", lst[0].Title, lst[1].Title)
	}

	got, err := s.Memories().GetByID(ctx, m1.ID)
	if err != nil || got == nil {
		t.Fatalf("GetMemory: got=%v err=%v", got, err)
	}
	if got.AlbumID == nil || *got.AlbumID != alb.ID {
		t.Fatalf("GetMemory album backref: got=%v", got.AlbumID)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "graduation" {
		t.Fatalf("GetMemory tags: got=%v", got.Tags)
	}

	// Partial update touches only the provided fields.
	grade := "11th"
	if err := s.Memories().Update(ctx, m1.ID, model.MemoryPatch{Grade: &grade}); err != nil {
		t.Fatalf("UpdateMemory: %v", err)
	}
	got, err = s.Memories().GetByID(ctx, m1.ID)
	if err != nil || got.Grade != "11th" {
		t.Fatalf("UpdateMemory grade: got=%v err=%v", got, err)
	}
	if got.Title != "Cap toss" || got.SchoolYear != "2024-2025" {
		t.Fatalf("UpdateMemory touched unrelated fields: %+v", got)
	}

	// Unknown ids surface model.ErrNotFound.
	if _, err := s.Memories().GetByID(ctx, "nope"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetMemory unknown id: err=%v", err)
	}
	if err := s.Memories().Update(ctx, "nope", model.MemoryPatch{Grade: &grade}); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("UpdateMemory unknown id: err=%v", err)
	}
	if err := s.Memories().Delete(ctx, "nope"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("DeleteMemory unknown id: err=%v", err)
	}

	// Duplicate ids conflict.
	if _, err := s.Memories().Create(ctx, m2); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("CreateMemory duplicate: err=%v", err)
	}

	// Delete removes the row for good.
	if err := s.Memories().Delete(ctx, m2.ID); err != nil {
		t.Fatalf("DeleteMemory: %v", err)
	}
	if lst, err := s.Memories().List(ctx); err != nil || len(lst) != 1 {
		t.Fatalf("ListMemories after delete: n=%d err=%v", len(lst), err)
	}

	if err := s.Albums().Delete(ctx, alb.ID); err != nil {
		t.Fatalf("DeleteAlbum: %v", err)
	}
	if _, err := s.Albums().GetByID(ctx, alb.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetAlbum after delete: err=%v", err)
	}
}
