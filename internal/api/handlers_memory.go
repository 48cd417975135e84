package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/memvault/memvault/internal/api/respond"
	"github.com/memvault/memvault/internal/blob"
	"github.com/memvault/memvault/internal/gallery"
	"github.com/memvault/memvault/internal/media"
	"github.com/memvault/memvault/internal/model"
	"github.com/memvault/memvault/internal/store"
)

// maxUploadBytes caps a submission payload (videos included).
const maxUploadBytes = 256 << 20

const dateLayout = "2006-01-02"

// MemoryHandler serves the memory routes.
type MemoryHandler struct {
	g     *gallery.Gallery
	st    store.Store
	blobs blob.Store
	cache *ristretto.Cache
	log   zerolog.Logger
}

func NewMemoryHandler(g *gallery.Gallery, st store.Store, blobs blob.Store, cache *ristretto.Cache, log zerolog.Logger) *MemoryHandler {
	return &MemoryHandler{g: g, st: st, blobs: blobs, cache: cache, log: log}
}

// ListMemories GET /api/memories
// Refreshes the working list from the record store (failures keep the stale
// list, per the fetch policy), then applies the browse filter.
func (h *MemoryHandler) ListMemories(w http.ResponseWriter, r *http.Request) {
	crit, err := criteriaFromQuery(r)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	h.g.FetchMemories(r.Context())
	items := gallery.Filter(h.g.Memories(), crit)
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"memories": items,
		"count":    len(items),
		"likedIds": h.g.LikedIDs(),
	})
}

// GetMemory GET /api/memories/{id}
func (h *MemoryHandler) GetMemory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if h.cache != nil {
		if v, ok := h.cache.Get(memoryCacheKey(id)); ok {
			respond.WriteJSON(w, http.StatusOK, v)
			return
		}
	}
	m := h.g.GetMemoryByID(id)
	if m == nil {
		respond.WriteNotFound(w, "memory not found")
		return
	}
	if h.cache != nil {
		h.cache.SetWithTTL(memoryCacheKey(id), m, 1, 30*time.Second)
	}
	respond.WriteJSON(w, http.StatusOK, m)
}

// SubmitMemory POST /api/memories (gated)
// Multipart submit: validate, upload the blob, thumbnail photos, insert the
// record, then add to the working list. A record-insert failure does not
// drop the submission; the memory stays as a local-only entry and the
// response carries a warning, matching the optimistic submit flow.
func (h *MemoryHandler) SubmitMemory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respond.WriteBadRequest(w, "invalid multipart form")
		return
	}

	title := formTrimmed(r, "title")
	description := formTrimmed(r, "description")
	uploadedBy := formTrimmed(r, "uploadedBy")
	if title == "" || description == "" || uploadedBy == "" {
		respond.WriteBadRequest(w, "title, description and uploadedBy are required")
		return
	}

	mediaType := r.FormValue("mediaType")
	if !model.ValidMediaType(mediaType) {
		respond.WriteBadRequest(w, "mediaType must be photo or video")
		return
	}
	eventCategory := r.FormValue("eventCategory")
	if !model.ValidEventCategory(eventCategory) {
		respond.WriteBadRequest(w, "unknown eventCategory")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.WriteBadRequest(w, "file is required")
		return
	}
	defer func() { _ = file.Close() }()
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		respond.WriteBadRequest(w, "failed to read upload")
		return
	}

	kind := model.MediaType(mediaType)
	up, err := media.Validate(kind, data)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	path := blob.MemoryPath(kind, up.Ext)
	if err := h.blobs.Upload(r.Context(), path, data, up.ContentType); err != nil {
		h.log.Error().Err(err).Str("path", path).Msg("blob upload failed")
		respond.WriteInternalError(w, "media upload failed")
		return
	}
	mediaURL := h.blobs.PublicURL(path)

	// Videos reuse the media URL as their thumbnail; photos get a downscaled
	// copy when decoding succeeds.
	thumbnailURL := mediaURL
	if kind == model.MediaPhoto {
		if tb, err := media.Thumbnail(data); err == nil {
			tpath := blob.ThumbPath(path)
			if err := h.blobs.Upload(r.Context(), tpath, tb, "image/jpeg"); err == nil {
				thumbnailURL = h.blobs.PublicURL(tpath)
			} else {
				h.log.Warn().Err(err).Str("path", tpath).Msg("thumbnail upload failed")
			}
		} else {
			h.log.Debug().Err(err).Msg("thumbnail generation failed; using full-size url")
		}
	}

	var albumID *string
	if v := formTrimmed(r, "albumId"); v != "" {
		albumID = &v
	}

	item := model.MemoryItem{
		ID:            uuid.New().String(),
		Title:         title,
		Description:   description,
		MediaType:     kind,
		MediaURL:      mediaURL,
		ThumbnailURL:  thumbnailURL,
		EventCategory: model.EventCategory(eventCategory),
		Grade:         formTrimmed(r, "grade"),
		SchoolYear:    formTrimmed(r, "schoolYear"),
		AlbumID:       albumID,
		UploadedBy:    uploadedBy,
		UploadedAt:    time.Now().UTC().Format(dateLayout),
		Status:        model.StatusApproved,
		Likes:         0,
		Tags:          media.NormalizeTags(r.FormValue("tags")),
	}

	warning := ""
	if _, err := h.st.Memories().Create(r.Context(), &item); err != nil {
		h.log.Warn().Err(err).Str("id", item.ID).Msg("record insert failed; keeping local submission")
		warning = "media stored, but the record insert failed; the memory is kept locally until the next sync"
	}
	h.g.AddMemory(item)

	resp := map[string]interface{}{"memory": item}
	if warning != "" {
		resp["warning"] = warning
	}
	respond.WriteJSON(w, http.StatusCreated, resp)
}

// UpdateMemory PATCH /api/memories/{id} (gated)
func (h *MemoryHandler) UpdateMemory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var patch model.MemoryPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if patch.EventCategory != nil && !model.ValidEventCategory(string(*patch.EventCategory)) {
		respond.WriteBadRequest(w, "unknown eventCategory")
		return
	}
	if patch.Status != nil && !model.ValidStatus(string(*patch.Status)) {
		respond.WriteBadRequest(w, "unknown status")
		return
	}

	if err := h.g.UpdateMemory(r.Context(), id, patch); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respond.WriteNotFound(w, "memory not found")
			return
		}
		respond.WriteInternalError(w, err.Error())
		return
	}
	h.invalidate(id)
	respond.WriteJSON(w, http.StatusOK, h.g.GetMemoryByID(id))
}

// DeleteMemory DELETE /api/memories/{id} (gated)
func (h *MemoryHandler) DeleteMemory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.g.DeleteMemory(r.Context(), id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respond.WriteNotFound(w, "memory not found")
			return
		}
		respond.WriteInternalError(w, err.Error())
		return
	}
	h.invalidate(id)
	w.WriteHeader(http.StatusNoContent)
}

// ToggleLike POST /api/memories/{id}/like
// Purely local: flips the liked set and the count together, never touching
// the record store.
func (h *MemoryHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	liked := h.g.ToggleLike(id)
	likes := 0
	if m := h.g.GetMemoryByID(id); m != nil {
		likes = m.Likes
	}
	h.invalidate(id)
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"id":    id,
		"liked": liked,
		"likes": likes,
	})
}

// Stats GET /api/stats
func (h *MemoryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	memories := h.g.Memories()
	approved := 0
	totalLikes := 0
	for _, m := range memories {
		if m.Status == model.StatusApproved {
			approved++
		}
		totalLikes += m.Likes
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"memories": approved,
		"albums":   len(h.g.Albums()),
		"likes":    totalLikes,
	})
}

func (h *MemoryHandler) invalidate(id string) {
	if h.cache != nil {
		h.cache.Del(memoryCacheKey(id))
	}
}

func memoryCacheKey(id string) string { return "memory:" + id }

func formTrimmed(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}

func criteriaFromQuery(r *http.Request) (model.FilterCriteria, error) {
	q := r.URL.Query()
	crit := model.FilterCriteria{
		EventCategory: q.Get("eventCategory"),
		Grade:         q.Get("grade"),
		SchoolYear:    q.Get("schoolYear"),
		MediaType:     q.Get("mediaType"),
		Search:        q.Get("search"),
	}
	if crit.EventCategory != "" && crit.EventCategory != model.FilterAll && !model.ValidEventCategory(crit.EventCategory) {
		return crit, errors.New("unknown eventCategory")
	}
	if crit.MediaType != "" && crit.MediaType != model.FilterAll && !model.ValidMediaType(crit.MediaType) {
		return crit, errors.New("unknown mediaType")
	}
	return crit, nil
}
