package gallery

import (
	"testing"

	"github.com/memvault/memvault/internal/model"
)

func TestMergeMemories_RemoteOverridesSeed(t *testing.T) {
	seed := []*model.MemoryItem{mem("a", "seed title")}
	remote := []*model.MemoryItem{mem("a", "remote title"), mem("b", "remote only")}

	got := mergeMemories(seed, remote, nil)
	if len(got) != 2 {
		t.Fatalf("got %d items", len(got))
	}
	for _, m := range got {
		if m.ID == "a" && m.Title != "remote title" {
			t.Fatalf("remote record must win for shared id, got %q", m.Title)
		}
	}
}

func TestMergeMemories_LocalOnlySurvives(t *testing.T) {
	seed := []*model.MemoryItem{mem("a", "seed")}
	remote := []*model.MemoryItem{mem("b", "remote")}
	current := []*model.MemoryItem{
		mem("local-1", "unconfirmed upload"),
		mem("a", "stale working copy"),
		mem("b", "stale working copy"),
	}

	got := mergeMemories(seed, remote, current)
	if len(got) != 3 {
		t.Fatalf("got %d items, want seed+remote+local-only", len(got))
	}
	ids := map[string]string{}
	for _, m := range got {
		ids[m.ID] = m.Title
	}
	if ids["local-1"] != "unconfirmed upload" {
		t.Fatalf("local-only entry dropped")
	}
	if ids["a"] != "seed" || ids["b"] != "remote" {
		t.Fatalf("working copies must not shadow seed or remote: %v", ids)
	}
}

func TestMergeMemories_ConfirmedDeleteDoesNotResurrect(t *testing.T) {
	// A record deleted remotely and locally must stay gone after the next
	// merge even though the working list never held it.
	seed := []*model.MemoryItem{}
	remote := []*model.MemoryItem{mem("keep", "kept")}
	current := []*model.MemoryItem{mem("keep", "kept")}

	got := mergeMemories(seed, remote, current)
	if len(got) != 1 || got[0].ID != "keep" {
		t.Fatalf("unexpected merge result: %d items", len(got))
	}
}

func TestMergeMemories_SortsNewestFirst(t *testing.T) {
	items := []*model.MemoryItem{
		mem("old", "old", func(m *model.MemoryItem) { m.UploadedAt = "2024-03-01" }),
		mem("new", "new", func(m *model.MemoryItem) { m.UploadedAt = "2025-06-15" }),
		mem("mid", "mid", func(m *model.MemoryItem) { m.UploadedAt = "2024-11-30" }),
	}
	got := mergeMemories(nil, items, nil)
	want := []string{"new", "mid", "old"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: got %s want %s", i, got[i].ID, id)
		}
	}
}

func TestMergeMemories_TiesKeepInsertionOrder(t *testing.T) {
	seed := []*model.MemoryItem{mem("s1", "s1")}
	remote := []*model.MemoryItem{mem("r1", "r1")}
	current := []*model.MemoryItem{mem("l1", "l1")}

	got := mergeMemories(seed, remote, current)
	want := []string{"s1", "r1", "l1"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("tie order at %d: got %s want %s", i, got[i].ID, id)
		}
	}
}
