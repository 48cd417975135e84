package api

import (
	"net/http"

	"github.com/dgraph-io/ristretto"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/memvault/memvault/internal/api/recovery"
	"github.com/memvault/memvault/internal/api/respond"
	"github.com/memvault/memvault/internal/blob"
	"github.com/memvault/memvault/internal/events"
	"github.com/memvault/memvault/internal/gallery"
	"github.com/memvault/memvault/internal/gate"
	"github.com/memvault/memvault/internal/store"
)

// PasscodeHeader carries the gate passcode on privileged requests.
const PasscodeHeader = "X-MemVault-Passcode"

// Deps bundles the collaborators the router wires into handlers.
type Deps struct {
	Gallery *gallery.Gallery
	Store   store.Store
	Blobs   blob.Store
	Cache   *ristretto.Cache
	Bus     *events.Bus
	Gate    *gate.Gate

	// IsHealthy feeds the health endpoint; nil means always healthy.
	IsHealthy func() bool

	// MediaDir, when non-empty, is served under /media/ for the
	// filesystem blob driver.
	MediaDir string

	Log zerolog.Logger
}

// NewRouter creates the HTTP router with all gallery routes.
func NewRouter(d Deps) *mux.Router {
	router := mux.NewRouter()

	router.Use(recovery.Middleware)

	memoryHandler := NewMemoryHandler(d.Gallery, d.Store, d.Blobs, d.Cache, d.Log)
	albumHandler := NewAlbumHandler(d.Gallery, d.Blobs, d.Log)
	healthHandler := NewHealthHandler(d.IsHealthy)
	feedHandler := NewFeedHandler(d.Bus, d.Log)

	gated := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !d.Gate.Verify(r.Header.Get(PasscodeHeader)) {
				respond.WriteForbidden(w, "invalid passcode")
				return
			}
			next(w, r)
		}
	}

	// Health endpoint
	router.HandleFunc("/api/health", Metrics("/api/health", healthHandler.CheckHealth)).Methods("GET")

	// Memory endpoints
	router.HandleFunc("/api/memories", Metrics("/api/memories", memoryHandler.ListMemories)).Methods("GET")
	router.HandleFunc("/api/memories", Metrics("/api/memories", gated(memoryHandler.SubmitMemory))).Methods("POST")
	router.HandleFunc("/api/memories/{id}", Metrics("/api/memories/{id}", memoryHandler.GetMemory)).Methods("GET")
	router.HandleFunc("/api/memories/{id}", Metrics("/api/memories/{id}", gated(memoryHandler.UpdateMemory))).Methods("PATCH")
	router.HandleFunc("/api/memories/{id}", Metrics("/api/memories/{id}", gated(memoryHandler.DeleteMemory))).Methods("DELETE")
	router.HandleFunc("/api/memories/{id}/like", Metrics("/api/memories/{id}/like", memoryHandler.ToggleLike)).Methods("POST")

	// Album endpoints
	router.HandleFunc("/api/albums", Metrics("/api/albums", albumHandler.ListAlbums)).Methods("GET")
	router.HandleFunc("/api/albums", Metrics("/api/albums", gated(albumHandler.CreateAlbum))).Methods("POST")
	router.HandleFunc("/api/albums/{id}", Metrics("/api/albums/{id}", gated(albumHandler.DeleteAlbum))).Methods("DELETE")
	router.HandleFunc("/api/albums/{id}/memories", Metrics("/api/albums/{id}/memories", albumHandler.ListAlbumMemories)).Methods("GET")

	// Stats endpoint
	router.HandleFunc("/api/stats", Metrics("/api/stats", memoryHandler.Stats)).Methods("GET")

	// Change feed. Not wrapped in Metrics: the recorder hides the
	// Hijacker the websocket upgrade needs.
	router.HandleFunc("/api/ws", feedHandler.Serve).Methods("GET")

	// Prometheus scrape endpoint
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Local media files when the filesystem blob driver is active. Public
	// URLs embed the bucket segment, so it is stripped before hitting disk.
	if d.MediaDir != "" {
		fs := http.StripPrefix("/media/"+blob.Bucket+"/", http.FileServer(http.Dir(d.MediaDir)))
		router.PathPrefix("/media/").Handler(fs).Methods("GET")
	}

	return router
}
