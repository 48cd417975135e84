// Package galleryservice wires configuration, adapters and the HTTP API
// into the runnable gallery service.
package galleryservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/rs/zerolog"

	"github.com/memvault/memvault/internal/api"
	"github.com/memvault/memvault/internal/blob"
	"github.com/memvault/memvault/internal/config"
	"github.com/memvault/memvault/internal/events"
	"github.com/memvault/memvault/internal/factory"
	"github.com/memvault/memvault/internal/gallery"
	"github.com/memvault/memvault/internal/gate"
	"github.com/memvault/memvault/internal/health"
	"github.com/memvault/memvault/internal/localstate"
	"github.com/memvault/memvault/internal/platform/logger"
	"github.com/memvault/memvault/internal/store"
)

// Run starts the gallery service HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("memvault-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("store_driver", cfg.StoreDriver).
		Str("blob_driver", cfg.BlobDriver).
		Int("http_port", cfg.HTTPPort).
		Msg("Gallery service starting")

	// Create cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	st, blobs, err := initDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}

	stateDir, err := localstate.DataDir()
	if err != nil {
		log.Error().Err(err).Msg("Local state directory unavailable")
		return err
	}
	state, err := localstate.Open(stateDir)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open local state")
		return err
	}

	bus := events.NewBus()
	g, err := gallery.New(st, blobs, state, log, gallery.Options{Bus: bus})
	if err != nil {
		log.Error().Err(err).Msg("Failed to build gallery")
		return err
	}

	cache, err := newMemoryCache()
	if err != nil {
		log.Error().Err(err).Msg("Failed to build response cache")
		return err
	}
	defer cache.Close()

	// Start health checkers and aggregate into the service flag
	svcHealth := startHealthCheckers(ctx, cfg, log, st, blobs)

	// Block startup until dependencies report healthy; fail fast otherwise
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Err(err).Msg("startup health check failed")
		return err
	}

	mediaDir := ""
	if cfg.BlobDriver == "fs" {
		mediaDir = cfg.MediaDir
	}
	router := api.NewRouter(api.Deps{
		Gallery:   g,
		Store:     st,
		Blobs:     blobs,
		Cache:     cache,
		Bus:       bus,
		Gate:      gate.New(cfg.GatePasscode),
		IsHealthy: svcHealth.IsHealthy,
		MediaDir:  mediaDir,
		Log:       log,
	})

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	// Graceful shutdown on context cancel or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Err(err).Msg("HTTP server failed")
		return err
	}
}

// initDependencies constructs the record and blob stores, failing fast when a
// configured backend is unreachable.
func initDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, blob.Store, error) {
	st, err := factory.NewStore(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("Record store adapter unavailable")
		return nil, nil, err
	}
	blobs, err := factory.NewBlobStore(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("Blob store adapter unavailable")
		return nil, nil, err
	}
	return st, blobs, nil
}

// newMemoryCache builds the small read-through cache the memory handler uses
// for single-item lookups.
func newMemoryCache() (*ristretto.Cache, error) {
	return ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     1e3,
		BufferItems: 64,
	})
}

// startHealthCheckers starts component checkers and the service aggregator.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store, blobs blob.Store) *health.ServiceHealthChecker {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	var checkers []health.HealthChecker

	var storePinger health.HealthPinger
	if p, ok := st.(health.HealthPinger); ok {
		storePinger = p
	}
	storeChecker := health.NewPingChecker("record-store", storePinger, log, probeTimeout)
	go storeChecker.Start(ctx, interval)
	checkers = append(checkers, storeChecker)

	var blobPinger health.HealthPinger
	if p, ok := blobs.(health.HealthPinger); ok {
		blobPinger = p
	}
	blobChecker := health.NewPingChecker("blob-store", blobPinger, log, probeTimeout)
	go blobChecker.Start(ctx, interval)
	checkers = append(checkers, blobChecker)

	svcHealth := health.NewServiceHealthChecker(log, checkers...)
	go svcHealth.Start(ctx, interval)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       5 * time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// calculateStartupHealthTimeout returns the startup window in seconds,
// interval*2 with a 60 second floor.
func calculateStartupHealthTimeout(healthIntervalSeconds int) int {
	timeout := healthIntervalSeconds * 2
	if timeout < 60 {
		return 60
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup
// window expires. Checkers start unhealthy and need a first probe cycle.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	timeoutSeconds := calculateStartupHealthTimeout(cfg.HealthIntervalSeconds)
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %d seconds", timeoutSeconds)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a context cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
