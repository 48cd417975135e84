package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/memvault/memvault/internal/model"
)

func newTestStore(h http.Handler) (*Store, *httptest.Server) {
	srv := httptest.NewServer(h)
	st := New(Config{
		BaseURL:    srv.URL,
		APIKey:     "test-key",
		Timeout:    2 * time.Second,
		MaxElapsed: 2 * time.Second,
	})
	return st, srv
}

func TestList_DecodesRecords(t *testing.T) {
	st, srv := newTestStore(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/memories" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("order"); got != "uploaded_at.desc" {
			t.Errorf("order param: %s", got)
		}
		if got := r.Header.Get("apikey"); got != "test-key" {
			t.Errorf("apikey header: %s", got)
		}
		_ = json.NewEncoder(w).Encode([]map[string]interface{}{
			{"id": "m1", "title": "Cap toss", "media_type": "photo", "uploaded_at": "2025-06-02", "status": "approved", "tags": []string{"graduation"}},
		})
	}))
	defer srv.Close()

	got, err := st.Memories().List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].ID != "m1" || got[0].MediaType != model.MediaPhoto {
		t.Fatalf("unexpected result: %+v", got)
	}
	if got[0].Status != model.StatusApproved || len(got[0].Tags) != 1 {
		t.Fatalf("snake_case fields not mapped: %+v", got[0])
	}
}

func TestGetByID_EmptyResultIsNotFound(t *testing.T) {
	st, srv := newTestStore(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("id"); got != "eq.nope" {
			t.Errorf("id filter: %s", got)
		}
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	if _, err := st.Memories().GetByID(context.Background(), "nope"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestDo_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	st, srv := newTestStore(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	if _, err := st.Memories().List(context.Background()); err != nil {
		t.Fatalf("List after retries: %v", err)
	}
	if n := calls.Load(); n != 3 {
		t.Fatalf("expected 3 attempts, got %d", n)
	}
}

func TestDo_ClientErrorIsTerminal(t *testing.T) {
	var calls atomic.Int32
	st, srv := newTestStore(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"malformed filter"}`))
	}))
	defer srv.Close()

	_, err := st.Memories().List(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("4xx must not be retried, got %d attempts", n)
	}
}

func TestUpdate_EmptyRepresentationIsNotFound(t *testing.T) {
	st, srv := newTestStore(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method: %s", r.Method)
		}
		if got := r.Header.Get("Prefer"); got != "return=representation" {
			t.Errorf("Prefer header: %s", got)
		}
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if _, ok := body["title"]; !ok {
			t.Errorf("patch body missing title: %v", body)
		}
		if _, ok := body["grade"]; ok {
			t.Errorf("patch body must only carry set fields: %v", body)
		}
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	title := "renamed"
	err := st.Memories().Update(context.Background(), "nope", model.MemoryPatch{Title: &title})
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestUpdate_EmptyPatchIsNoOp(t *testing.T) {
	st, srv := newTestStore(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("empty patch must not hit the wire")
	}))
	defer srv.Close()

	if err := st.Memories().Update(context.Background(), "m1", model.MemoryPatch{}); err != nil {
		t.Fatalf("empty patch: %v", err)
	}
}

func TestDelete_ReturnsRepresentationSemantics(t *testing.T) {
	st, srv := newTestStore(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") == "eq.m1" {
			_, _ = w.Write([]byte(`[{"id":"m1"}]`))
			return
		}
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	if err := st.Memories().Delete(context.Background(), "m1"); err != nil {
		t.Fatalf("Delete existing: %v", err)
	}
	if err := st.Memories().Delete(context.Background(), "gone"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Delete missing: want ErrNotFound, got %v", err)
	}
}

func TestCreate_PostsArrayBody(t *testing.T) {
	st, srv := newTestStore(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var recs []map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&recs); err != nil || len(recs) != 1 {
			t.Errorf("body must be a one-element array: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(recs)
	}))
	defer srv.Close()

	got, err := st.Memories().Create(context.Background(), &model.MemoryItem{ID: "m1", Title: "t"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.ID != "m1" {
		t.Fatalf("confirmed record: %+v", got)
	}
}
