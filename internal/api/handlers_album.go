package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/memvault/memvault/internal/api/respond"
	"github.com/memvault/memvault/internal/blob"
	"github.com/memvault/memvault/internal/gallery"
	"github.com/memvault/memvault/internal/media"
	"github.com/memvault/memvault/internal/model"
)

// AlbumHandler serves the album routes.
type AlbumHandler struct {
	g     *gallery.Gallery
	blobs blob.Store
	log   zerolog.Logger
}

func NewAlbumHandler(g *gallery.Gallery, blobs blob.Store, log zerolog.Logger) *AlbumHandler {
	return &AlbumHandler{g: g, blobs: blobs, log: log}
}

// ListAlbums GET /api/albums
func (h *AlbumHandler) ListAlbums(w http.ResponseWriter, r *http.Request) {
	h.g.FetchAlbums(r.Context())
	albums := h.g.Albums()
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"albums": albums,
		"count":  len(albums),
	})
}

// CreateAlbum POST /api/albums (gated)
// Multipart: name, description, createdBy, optional isPublic flag and cover
// image. The cover is uploaded first; a record-insert failure after that
// leaves the cover blob orphaned (the multi-step write is not atomic).
func (h *AlbumHandler) CreateAlbum(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respond.WriteBadRequest(w, "invalid multipart form")
		return
	}
	name := formTrimmed(r, "name")
	createdBy := formTrimmed(r, "createdBy")
	if name == "" || createdBy == "" {
		respond.WriteBadRequest(w, "name and createdBy are required")
		return
	}
	isPublic := true
	if v := r.FormValue("isPublic"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			respond.WriteBadRequest(w, "isPublic must be a boolean")
			return
		}
		isPublic = b
	}

	coverURL := ""
	if file, _, err := r.FormFile("cover"); err == nil {
		defer func() { _ = file.Close() }()
		data, err := io.ReadAll(io.LimitReader(file, 32<<20))
		if err != nil {
			respond.WriteBadRequest(w, "failed to read cover")
			return
		}
		up, err := media.Validate(model.MediaPhoto, data)
		if err != nil {
			respond.WriteBadRequest(w, err.Error())
			return
		}
		path := blob.CoverPath(up.Ext)
		if err := h.blobs.Upload(r.Context(), path, data, up.ContentType); err != nil {
			h.log.Error().Err(err).Str("path", path).Msg("cover upload failed")
			respond.WriteInternalError(w, "cover upload failed")
			return
		}
		coverURL = h.blobs.PublicURL(path)
	}

	a := model.Album{
		ID:          uuid.New().String(),
		Name:        name,
		Description: formTrimmed(r, "description"),
		CoverURL:    coverURL,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now().UTC().Format(dateLayout),
		IsPublic:    isPublic,
	}
	out, err := h.g.AddAlbum(r.Context(), a)
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// DeleteAlbum DELETE /api/albums/{id} (gated)
func (h *AlbumHandler) DeleteAlbum(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.g.DeleteAlbum(r.Context(), id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respond.WriteNotFound(w, "album not found")
			return
		}
		respond.WriteInternalError(w, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAlbumMemories GET /api/albums/{id}/memories
func (h *AlbumHandler) ListAlbumMemories(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	items := h.g.GetMemoriesByAlbum(id)
	if items == nil {
		items = []*model.MemoryItem{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"memories": items,
		"count":    len(items),
	})
}
