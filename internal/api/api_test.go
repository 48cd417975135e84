package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	blobmemory "github.com/memvault/memvault/internal/blob/memory"
	"github.com/memvault/memvault/internal/events"
	"github.com/memvault/memvault/internal/gallery"
	"github.com/memvault/memvault/internal/gate"
	"github.com/memvault/memvault/internal/localstate"
	"github.com/memvault/memvault/internal/model"
	"github.com/memvault/memvault/internal/store"
	storememory "github.com/memvault/memvault/internal/store/memory"
)

const testPasscode = "open-sesame"

type testEnv struct {
	router http.Handler
	st     store.Store
	blobs  *blobmemory.Store
	g      *gallery.Gallery
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := storememory.New()
	blobs := blobmemory.New()
	state, err := localstate.Open(t.TempDir())
	require.NoError(t, err)
	bus := events.NewBus()
	g, err := gallery.New(st, blobs, state, zerolog.Nop(), gallery.Options{Bus: bus})
	require.NoError(t, err)

	router := NewRouter(Deps{
		Gallery:   g,
		Store:     st,
		Blobs:     blobs,
		Bus:       bus,
		Gate:      gate.New(testPasscode),
		IsHealthy: func() bool { return true },
		Log:       zerolog.Nop(),
	})
	return &testEnv{router: router, st: st, blobs: blobs, g: g}
}

func (e *testEnv) seedMemory(t *testing.T, m model.MemoryItem) {
	t.Helper()
	if m.Status == "" {
		m.Status = model.StatusApproved
	}
	if m.MediaType == "" {
		m.MediaType = model.MediaPhoto
	}
	if m.EventCategory == "" {
		m.EventCategory = model.EventOther
	}
	if m.UploadedAt == "" {
		m.UploadedAt = "2025-01-01"
	}
	_, err := e.st.Memories().Create(context.Background(), &m)
	require.NoError(t, err)
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func pngUpload(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartBody(t *testing.T, fields map[string]string, fileField, fileName string, file []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestListMemories_FiltersAndLikedIDs(t *testing.T) {
	env := newTestEnv(t)
	env.seedMemory(t, model.MemoryItem{ID: "m1", Title: "Prom Night", EventCategory: model.EventProm})
	env.seedMemory(t, model.MemoryItem{ID: "m2", Title: "Track meet", EventCategory: model.EventSports})
	env.seedMemory(t, model.MemoryItem{ID: "m3", Title: "Pending prom", EventCategory: model.EventProm, Status: model.StatusPending})

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/memories?eventCategory=prom", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	require.EqualValues(t, 1, body["count"])

	// likedIds reflects local toggles
	env.g.ToggleLike("m1")
	w = env.do(httptest.NewRequest(http.MethodGet, "/api/memories", nil))
	body = decodeBody(t, w)
	require.EqualValues(t, 2, body["count"])
	require.Equal(t, []interface{}{"m1"}, body["likedIds"])
}

func TestListMemories_UnknownEnumIs400(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(httptest.NewRequest(http.MethodGet, "/api/memories?eventCategory=birthday", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/memories?mediaType=audio", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)

	// "all" and empty are accepted wildcards
	w = env.do(httptest.NewRequest(http.MethodGet, "/api/memories?eventCategory=all&mediaType=", nil))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestGetMemory(t *testing.T) {
	env := newTestEnv(t)
	env.seedMemory(t, model.MemoryItem{ID: "m1", Title: "Cap toss"})
	env.g.FetchMemories(context.Background())

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/memories/m1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Cap toss", decodeBody(t, w)["title"])

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/memories/nope", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitMemory_RequiresPasscode(t *testing.T) {
	env := newTestEnv(t)
	buf, ct := multipartBody(t, map[string]string{"title": "x"}, "", "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/memories", buf)
	req.Header.Set("Content-Type", ct)
	w := env.do(req)
	require.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/memories", bytes.NewReader(nil))
	req.Header.Set(PasscodeHeader, "wrong")
	w = env.do(req)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestSubmitMemory_FullFlow(t *testing.T) {
	env := newTestEnv(t)
	buf, ct := multipartBody(t, map[string]string{
		"title":         "Field trip",
		"description":   "Bus ride",
		"uploadedBy":    "Ana",
		"mediaType":     "photo",
		"eventCategory": "field-trip",
		"grade":         "10th",
		"tags":          "Field Trip, bus",
	}, "file", "photo.png", pngUpload(t))
	req := httptest.NewRequest(http.MethodPost, "/api/memories", buf)
	req.Header.Set("Content-Type", ct)
	req.Header.Set(PasscodeHeader, testPasscode)

	w := env.do(req)
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	require.NotContains(t, body, "warning")

	mem := body["memory"].(map[string]interface{})
	id := mem["id"].(string)
	require.Equal(t, "approved", mem["status"])
	require.Equal(t, []interface{}{"field-trip", "bus"}, mem["tags"])
	require.True(t, strings.Contains(mem["mediaUrl"].(string), "/memories/photo/"))

	// record inserted and working list updated
	rec, err := env.st.Memories().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, "Field trip", rec.Title)
	require.NotNil(t, env.g.GetMemoryByID(id))
}

func TestSubmitMemory_Validation(t *testing.T) {
	env := newTestEnv(t)

	send := func(fields map[string]string, file []byte) int {
		buf, ct := multipartBody(t, fields, "file", "f.png", file)
		req := httptest.NewRequest(http.MethodPost, "/api/memories", buf)
		req.Header.Set("Content-Type", ct)
		req.Header.Set(PasscodeHeader, testPasscode)
		return env.do(req).Code
	}

	base := map[string]string{
		"title": "t", "description": "d", "uploadedBy": "u",
		"mediaType": "photo", "eventCategory": "other",
	}

	missing := map[string]string{"description": "d", "uploadedBy": "u", "mediaType": "photo", "eventCategory": "other"}
	require.Equal(t, http.StatusBadRequest, send(missing, pngUpload(t)))

	badKind := map[string]string{}
	for k, v := range base {
		badKind[k] = v
	}
	badKind["mediaType"] = "audio"
	require.Equal(t, http.StatusBadRequest, send(badKind, pngUpload(t)))

	badCat := map[string]string{}
	for k, v := range base {
		badCat[k] = v
	}
	badCat["eventCategory"] = "birthday"
	require.Equal(t, http.StatusBadRequest, send(badCat, pngUpload(t)))

	require.Equal(t, http.StatusBadRequest, send(base, []byte("not an image")))
}

func TestUpdateMemory(t *testing.T) {
	env := newTestEnv(t)
	env.seedMemory(t, model.MemoryItem{ID: "m1", Title: "before"})
	env.g.FetchMemories(context.Background())

	req := httptest.NewRequest(http.MethodPatch, "/api/memories/m1", strings.NewReader(`{"title":"after"}`))
	req.Header.Set(PasscodeHeader, testPasscode)
	w := env.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "after", decodeBody(t, w)["title"])

	req = httptest.NewRequest(http.MethodPatch, "/api/memories/nope", strings.NewReader(`{"title":"x"}`))
	req.Header.Set(PasscodeHeader, testPasscode)
	require.Equal(t, http.StatusNotFound, env.do(req).Code)

	req = httptest.NewRequest(http.MethodPatch, "/api/memories/m1", strings.NewReader(`{"eventCategory":"birthday"}`))
	req.Header.Set(PasscodeHeader, testPasscode)
	require.Equal(t, http.StatusBadRequest, env.do(req).Code)
}

func TestDeleteMemory_CleansUpBlob(t *testing.T) {
	env := newTestEnv(t)
	env.seedMemory(t, model.MemoryItem{
		ID:       "m1",
		Title:    "doomed",
		MediaURL: env.blobs.PublicURL("photo/m1.jpg"),
	})
	env.g.FetchMemories(context.Background())

	req := httptest.NewRequest(http.MethodDelete, "/api/memories/m1", nil)
	req.Header.Set(PasscodeHeader, testPasscode)
	require.Equal(t, http.StatusNoContent, env.do(req).Code)
	require.Equal(t, []string{"photo/m1.jpg"}, env.blobs.Removed())

	req = httptest.NewRequest(http.MethodDelete, "/api/memories/m1", nil)
	req.Header.Set(PasscodeHeader, testPasscode)
	require.Equal(t, http.StatusNotFound, env.do(req).Code)
}

func TestToggleLike_NoPasscodeNeeded(t *testing.T) {
	env := newTestEnv(t)
	env.seedMemory(t, model.MemoryItem{ID: "m1", Likes: 5})
	env.g.FetchMemories(context.Background())

	w := env.do(httptest.NewRequest(http.MethodPost, "/api/memories/m1/like", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, true, body["liked"])
	require.EqualValues(t, 6, body["likes"])

	w = env.do(httptest.NewRequest(http.MethodPost, "/api/memories/m1/like", nil))
	body = decodeBody(t, w)
	require.Equal(t, false, body["liked"])
	require.EqualValues(t, 5, body["likes"])
}

func TestAlbums_CreateListDelete(t *testing.T) {
	env := newTestEnv(t)

	buf, ct := multipartBody(t, map[string]string{
		"name":      "Sports day",
		"createdBy": "Coach",
	}, "cover", "cover.png", pngUpload(t))
	req := httptest.NewRequest(http.MethodPost, "/api/albums", buf)
	req.Header.Set("Content-Type", ct)
	req.Header.Set(PasscodeHeader, testPasscode)
	w := env.do(req)
	require.Equal(t, http.StatusCreated, w.Code)
	alb := decodeBody(t, w)
	require.Equal(t, "Sports day", alb["name"])
	require.EqualValues(t, 0, alb["itemCount"])
	require.True(t, strings.Contains(alb["coverUrl"].(string), "album-covers/"))
	id := alb["id"].(string)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/albums", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 1, decodeBody(t, w)["count"])

	req = httptest.NewRequest(http.MethodDelete, "/api/albums/"+id, nil)
	req.Header.Set(PasscodeHeader, testPasscode)
	require.Equal(t, http.StatusNoContent, env.do(req).Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/albums/"+id, nil)
	req.Header.Set(PasscodeHeader, testPasscode)
	require.Equal(t, http.StatusNotFound, env.do(req).Code)
}

func TestAlbumMemories(t *testing.T) {
	env := newTestEnv(t)
	albID := "alb"
	env.seedMemory(t, model.MemoryItem{ID: "m1", AlbumID: &albID})
	env.seedMemory(t, model.MemoryItem{ID: "m2"})
	env.g.FetchMemories(context.Background())

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/albums/alb/memories", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 1, decodeBody(t, w)["count"])
}

func TestStats(t *testing.T) {
	env := newTestEnv(t)
	env.seedMemory(t, model.MemoryItem{ID: "m1", Likes: 2})
	env.seedMemory(t, model.MemoryItem{ID: "m2", Likes: 3, Status: model.StatusPending})
	env.g.FetchMemories(context.Background())

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	require.EqualValues(t, 1, body["memories"])
	require.EqualValues(t, 5, body["likes"])
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	down := NewHealthHandler(func() bool { return false })
	rec := httptest.NewRecorder()
	down.CheckHealth(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
