// Package gallery holds the reconciliation core: a single-owner state
// container for the working memory and album lists, the locally-liked id
// set, and every create/read/update/delete mediated against the record and
// blob collaborators.
package gallery

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/memvault/memvault/internal/blob"
	"github.com/memvault/memvault/internal/events"
	"github.com/memvault/memvault/internal/localstate"
	"github.com/memvault/memvault/internal/model"
	"github.com/memvault/memvault/internal/store"
)

// Gallery is the single source of truth for the working lists. All mutation
// funnels through its methods; callers receive snapshots, never internal
// slices.
//
// Remote calls run outside the state lock and their results are applied
// after. A fetch in flight when a delete lands is not cancelled and can
// reintroduce the deleted record until the next fetch. That race is an
// accepted property of the system, not something this type guards against.
type Gallery struct {
	store store.Store
	blobs blob.Store
	state *localstate.State
	bus   *events.Bus
	log   zerolog.Logger

	mu       sync.Mutex
	seed     []*model.MemoryItem
	memories []*model.MemoryItem
	albums   []*model.Album
	liked    []string
}

// Options tunes optional Gallery collaborators.
type Options struct {
	// Seed is the fixed built-in memory list merged under fetched records.
	Seed []model.MemoryItem
	// Bus, when set, receives a change event for every mutation.
	Bus *events.Bus
}

// New builds a Gallery, loading the liked-id set and any persisted
// local-only submissions from durable local state so unconfirmed uploads
// survive a restart.
func New(st store.Store, blobs blob.Store, state *localstate.State, log zerolog.Logger, opts Options) (*Gallery, error) {
	g := &Gallery{
		store: st,
		blobs: blobs,
		state: state,
		bus:   opts.Bus,
		log:   log,
		liked: []string{},
	}
	for i := range opts.Seed {
		m := opts.Seed[i]
		g.seed = append(g.seed, &m)
	}

	liked, err := state.LoadLikes()
	if err != nil {
		return nil, err
	}
	g.liked = liked

	subs, err := state.LoadSubmissions()
	if err != nil {
		return nil, err
	}
	var restored []*model.MemoryItem
	for i := range subs {
		m := subs[i]
		restored = append(restored, &m)
	}
	g.memories = mergeMemories(g.seed, nil, restored)
	return g, nil
}

// FetchMemories refreshes the working list from the record store. The new
// list merges the seed, the fetched records, and any working-set entry whose
// id the first two do not know (local-only optimistic submissions). A
// transport failure is logged and leaves state untouched; callers see a
// stale list, not an error.
func (g *Gallery) FetchMemories(ctx context.Context) {
	remote, err := g.store.Memories().List(ctx)
	if err != nil {
		g.log.Error().Err(err).Msg("fetch memories failed; keeping current list")
		return
	}
	for _, m := range remote {
		if m.ThumbnailURL == "" {
			m.ThumbnailURL = m.MediaURL
		}
	}

	g.mu.Lock()
	g.memories = mergeMemories(g.seed, remote, g.memories)
	g.mu.Unlock()
}

// FetchAlbums refreshes the album list wholesale. Album creation already
// prepends optimistically, so no merge with local entries is needed.
// Failures are logged and leave state untouched.
func (g *Gallery) FetchAlbums(ctx context.Context) {
	remote, err := g.store.Albums().List(ctx)
	if err != nil {
		g.log.Error().Err(err).Msg("fetch albums failed; keeping current list")
		return
	}

	g.mu.Lock()
	g.albums = remote
	g.mu.Unlock()
}

// AddMemory appends a fully-formed item to the working list and persists the
// non-seed subset as the local submissions record. It performs no remote
// write; callers upload the blob and insert the record before calling this.
func (g *Gallery) AddMemory(m model.MemoryItem) {
	g.mu.Lock()
	item := m
	g.memories = append(g.memories, &item)
	g.persistSubmissionsLocked()
	g.mu.Unlock()

	g.publish(events.Event{Kind: events.MemoryAdded, ID: m.ID})
}

// ToggleLike flips membership of id in the liked set and adjusts the
// matching memory's like count by ±1 in the same state update, then persists
// the new liked set. Purely local; the record store is never contacted.
// It returns the resulting liked state.
func (g *Gallery) ToggleLike(id string) bool {
	g.mu.Lock()
	wasLiked := false
	next := g.liked[:0:0]
	for _, lid := range g.liked {
		if lid == id {
			wasLiked = true
			continue
		}
		next = append(next, lid)
	}
	if !wasLiked {
		next = append(next, id)
	}
	g.liked = next

	delta := 1
	if wasLiked {
		delta = -1
	}
	for _, m := range g.memories {
		if m.ID == id {
			m.Likes += delta
			break
		}
	}
	if err := g.state.SaveLikes(g.liked); err != nil {
		g.log.Error().Err(err).Msg("persist liked ids failed")
	}
	g.mu.Unlock()

	g.publish(events.Event{Kind: events.MemoryLiked, ID: id})
	return !wasLiked
}

// IsLiked reports whether the local client has liked id.
func (g *Gallery) IsLiked(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, lid := range g.liked {
		if lid == id {
			return true
		}
	}
	return false
}

// LikedIDs returns a copy of the liked-id set in insertion order.
func (g *Gallery) LikedIDs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.liked))
	copy(out, g.liked)
	return out
}

// AddAlbum inserts the album into the record store and, on success, prepends
// the server-confirmed record (item count zero) to the working album list.
// Unlike the fetch paths, a failure here propagates and state is unchanged.
func (g *Gallery) AddAlbum(ctx context.Context, a model.Album) (*model.Album, error) {
	confirmed, err := g.store.Albums().Create(ctx, &a)
	if err != nil {
		return nil, err
	}
	confirmed.ItemCount = 0

	g.mu.Lock()
	g.albums = append([]*model.Album{confirmed}, g.albums...)
	g.mu.Unlock()

	g.publish(events.Event{Kind: events.AlbumAdded, ID: confirmed.ID})
	out := *confirmed
	return &out, nil
}

// UpdateMemory applies the patch to the record store, then shallow-merges
// the same fields into the matching in-memory item. All-or-nothing: on
// remote failure the error propagates and no local field changes.
func (g *Gallery) UpdateMemory(ctx context.Context, id string, patch model.MemoryPatch) error {
	if err := g.store.Memories().Update(ctx, id, patch); err != nil {
		return err
	}

	g.mu.Lock()
	for _, m := range g.memories {
		if m.ID != id {
			continue
		}
		applyPatch(m, patch)
		break
	}
	g.mu.Unlock()

	g.publish(events.Event{Kind: events.MemoryUpdated, ID: id})
	return nil
}

// DeleteMemory deletes the record by id, then best-effort removes the
// backing blob derived from the record's media URL (a cleanup failure is
// logged, never surfaced), and finally drops the id from the working list.
// A failure of the record delete itself propagates and removes nothing.
func (g *Gallery) DeleteMemory(ctx context.Context, id string) error {
	// Lookup first: once the row is gone there is no way to find the blob.
	rec, err := g.store.Memories().GetByID(ctx, id)
	if err != nil {
		g.log.Debug().Err(err).Str("id", id).Msg("pre-delete lookup failed")
	}

	if err := g.store.Memories().Delete(ctx, id); err != nil {
		return err
	}

	if rec != nil && rec.MediaURL != "" {
		if path, ok := blob.PathFromPublicURL(rec.MediaURL); ok {
			if err := g.blobs.Remove(ctx, path); err != nil {
				g.log.Error().Err(err).Str("path", path).Msg("media cleanup failed")
			}
		}
	}

	g.mu.Lock()
	kept := g.memories[:0:0]
	for _, m := range g.memories {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	g.memories = kept
	g.mu.Unlock()

	g.publish(events.Event{Kind: events.MemoryDeleted, ID: id})
	return nil
}

// DeleteAlbum deletes the album record, best-effort removes its cover blob,
// then drops the album from the working list and clears the album
// back-reference on every member memory (the memories themselves stay).
func (g *Gallery) DeleteAlbum(ctx context.Context, id string) error {
	rec, err := g.store.Albums().GetByID(ctx, id)
	if err != nil {
		g.log.Debug().Err(err).Str("id", id).Msg("pre-delete lookup failed")
	}

	if err := g.store.Albums().Delete(ctx, id); err != nil {
		return err
	}

	if rec != nil && rec.CoverURL != "" {
		if path, ok := blob.PathFromPublicURL(rec.CoverURL); ok {
			if err := g.blobs.Remove(ctx, path); err != nil {
				g.log.Error().Err(err).Str("path", path).Msg("cover cleanup failed")
			}
		}
	}

	g.mu.Lock()
	kept := g.albums[:0:0]
	for _, a := range g.albums {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	g.albums = kept
	for _, m := range g.memories {
		if m.AlbumID != nil && *m.AlbumID == id {
			m.AlbumID = nil
		}
	}
	g.mu.Unlock()

	g.publish(events.Event{Kind: events.AlbumDeleted, ID: id})
	return nil
}

// GetMemoryByID returns a copy of the matching memory, or nil when the id is
// not in the working list.
func (g *Gallery) GetMemoryByID(id string) *model.MemoryItem {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, m := range g.memories {
		if m.ID == id {
			out := *m
			return &out
		}
	}
	return nil
}

// GetMemoriesByStatus returns copies of the memories with the given status.
func (g *Gallery) GetMemoriesByStatus(status model.SubmissionStatus) []*model.MemoryItem {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []*model.MemoryItem
	for _, m := range g.memories {
		if m.Status == status {
			c := *m
			out = append(out, &c)
		}
	}
	return out
}

// GetMemoriesByAlbum returns copies of the memories belonging to albumID.
func (g *Gallery) GetMemoriesByAlbum(albumID string) []*model.MemoryItem {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []*model.MemoryItem
	for _, m := range g.memories {
		if m.AlbumID != nil && *m.AlbumID == albumID {
			c := *m
			out = append(out, &c)
		}
	}
	return out
}

// Memories returns a snapshot of the working memory list, newest first.
func (g *Gallery) Memories() []*model.MemoryItem {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*model.MemoryItem, 0, len(g.memories))
	for _, m := range g.memories {
		c := *m
		out = append(out, &c)
	}
	return out
}

// Albums returns a snapshot of the working album list.
func (g *Gallery) Albums() []*model.Album {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*model.Album, 0, len(g.albums))
	for _, a := range g.albums {
		c := *a
		out = append(out, &c)
	}
	return out
}

// persistSubmissionsLocked writes the subset of the working list that is not
// part of the seed to durable local storage. Caller holds g.mu.
func (g *Gallery) persistSubmissionsLocked() {
	seedIDs := make(map[string]struct{}, len(g.seed))
	for _, m := range g.seed {
		seedIDs[m.ID] = struct{}{}
	}
	subs := []model.MemoryItem{}
	for _, m := range g.memories {
		if _, ok := seedIDs[m.ID]; !ok {
			subs = append(subs, *m)
		}
	}
	if err := g.state.SaveSubmissions(subs); err != nil {
		g.log.Error().Err(err).Msg("persist submissions failed")
	}
}

func (g *Gallery) publish(evt events.Event) {
	if g.bus != nil {
		g.bus.Publish(evt)
	}
}

func applyPatch(m *model.MemoryItem, p model.MemoryPatch) {
	if p.Title != nil {
		m.Title = *p.Title
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
	if p.EventCategory != nil {
		m.EventCategory = *p.EventCategory
	}
	if p.Grade != nil {
		m.Grade = *p.Grade
	}
	if p.SchoolYear != nil {
		m.SchoolYear = *p.SchoolYear
	}
	if p.Tags != nil {
		m.Tags = p.Tags
	}
	if p.Status != nil {
		m.Status = *p.Status
	}
}
