package config

import (
	"fmt"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"

	"github.com/memvault/memvault/internal/localstate"
)

// Config holds the gallery service configuration. Environment variables are
// parsed from the MEMVAULT_ prefix, e.g. MEMVAULT_HTTP_PORT.
type Config struct {
	// BuildTarget selects the deployment shape: local, hosted, demo.
	BuildTarget string `envconfig:"BUILD_TARGET" default:"local"`

	// Drivers; "auto" derives from BuildTarget.
	StoreDriver string `envconfig:"STORE_DRIVER" default:"auto"`
	BlobDriver  string `envconfig:"BLOB_DRIVER" default:"auto"`

	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// SQL drivers
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`
	MySQLDSN    string `envconfig:"MYSQL_DSN" default:""`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:""`

	// Hosted record/storage service (rest drivers)
	RecordServiceURL string `envconfig:"RECORD_SERVICE_URL" default:""`
	RecordServiceKey string `envconfig:"RECORD_SERVICE_KEY" default:""`

	// Filesystem blob driver
	MediaDir      string `envconfig:"MEDIA_DIR" default:""`
	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL" default:""`

	// Passcode gating privileged actions. Not an authorization mechanism.
	GatePasscode string `envconfig:"GATE_PASSCODE" default:"8thBatchOfUhiis@2026"`

	// Health monitoring
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"5"`
}

// New creates a Config from the environment and resolves driver defaults.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("MEMVAULT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ResolveDefaults validates BuildTarget and derives drivers and paths for
// fields left at "auto" or empty.
func (c *Config) ResolveDefaults() error {
	var defaultStore, defaultBlob string
	switch c.BuildTarget {
	case "local":
		defaultStore, defaultBlob = "sqlite", "fs"
	case "hosted":
		defaultStore, defaultBlob = "rest", "rest"
	case "demo":
		defaultStore, defaultBlob = "memory", "memory"
	default:
		return fmt.Errorf("unsupported BUILD_TARGET: %s", c.BuildTarget)
	}
	if c.StoreDriver == "" || c.StoreDriver == "auto" {
		c.StoreDriver = defaultStore
	}
	if c.BlobDriver == "" || c.BlobDriver == "auto" {
		c.BlobDriver = defaultBlob
	}

	allowedStore := map[string]bool{"postgres": true, "sqlite": true, "mysql": true, "rest": true, "memory": true}
	if !allowedStore[c.StoreDriver] {
		return fmt.Errorf("unsupported STORE_DRIVER: %s", c.StoreDriver)
	}
	allowedBlob := map[string]bool{"fs": true, "rest": true, "memory": true}
	if !allowedBlob[c.BlobDriver] {
		return fmt.Errorf("unsupported BLOB_DRIVER: %s", c.BlobDriver)
	}

	if c.StoreDriver == "rest" || c.BlobDriver == "rest" {
		if c.RecordServiceURL == "" {
			return fmt.Errorf("RECORD_SERVICE_URL required for rest drivers")
		}
	}

	if c.StoreDriver == "sqlite" && c.SQLitePath == "" {
		dir, err := localstate.DataDir()
		if err != nil {
			return err
		}
		c.SQLitePath = filepath.Join(dir, "memvault.db")
	}
	if c.BlobDriver == "fs" {
		if c.MediaDir == "" {
			dir, err := localstate.DataDir()
			if err != nil {
				return err
			}
			c.MediaDir = filepath.Join(dir, "media")
		}
		if c.PublicBaseURL == "" {
			c.PublicBaseURL = fmt.Sprintf("http://localhost:%d/media", c.HTTPPort)
		}
	}
	return nil
}

// GetHTTPAddr returns the HTTP server address.
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
