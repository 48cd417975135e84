package config

import (
	"path/filepath"
	"testing"
)

func isolateState(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("MEMVAULT_STATE_HOME", dir)
	return dir
}

func TestResolveDefaults_LocalTarget(t *testing.T) {
	stateDir := isolateState(t)
	cfg := Config{BuildTarget: "local", StoreDriver: "auto", BlobDriver: "auto", HTTPPort: 8080}
	if err := cfg.ResolveDefaults(); err != nil {
		t.Fatal(err)
	}
	if cfg.StoreDriver != "sqlite" || cfg.BlobDriver != "fs" {
		t.Fatalf("local drivers: %s/%s", cfg.StoreDriver, cfg.BlobDriver)
	}
	if cfg.SQLitePath != filepath.Join(stateDir, "memvault.db") {
		t.Fatalf("sqlite path: %s", cfg.SQLitePath)
	}
	if cfg.MediaDir != filepath.Join(stateDir, "media") {
		t.Fatalf("media dir: %s", cfg.MediaDir)
	}
	if cfg.PublicBaseURL != "http://localhost:8080/media" {
		t.Fatalf("public base url: %s", cfg.PublicBaseURL)
	}
}

func TestResolveDefaults_HostedRequiresServiceURL(t *testing.T) {
	cfg := Config{BuildTarget: "hosted", StoreDriver: "auto", BlobDriver: "auto"}
	if err := cfg.ResolveDefaults(); err == nil {
		t.Fatalf("hosted without RECORD_SERVICE_URL must fail")
	}

	cfg.RecordServiceURL = "https://records.example.test"
	if err := cfg.ResolveDefaults(); err != nil {
		t.Fatal(err)
	}
	if cfg.StoreDriver != "rest" || cfg.BlobDriver != "rest" {
		t.Fatalf("hosted drivers: %s/%s", cfg.StoreDriver, cfg.BlobDriver)
	}
}

func TestResolveDefaults_DemoTarget(t *testing.T) {
	cfg := Config{BuildTarget: "demo", StoreDriver: "auto", BlobDriver: "auto"}
	if err := cfg.ResolveDefaults(); err != nil {
		t.Fatal(err)
	}
	if cfg.StoreDriver != "memory" || cfg.BlobDriver != "memory" {
		t.Fatalf("demo drivers: %s/%s", cfg.StoreDriver, cfg.BlobDriver)
	}
}

func TestResolveDefaults_ExplicitDriverWins(t *testing.T) {
	isolateState(t)
	cfg := Config{BuildTarget: "local", StoreDriver: "postgres", BlobDriver: "memory", PostgresDSN: "postgres://x"}
	if err := cfg.ResolveDefaults(); err != nil {
		t.Fatal(err)
	}
	if cfg.StoreDriver != "postgres" || cfg.BlobDriver != "memory" {
		t.Fatalf("explicit drivers overridden: %s/%s", cfg.StoreDriver, cfg.BlobDriver)
	}
}

func TestResolveDefaults_RejectsUnknownValues(t *testing.T) {
	if err := (&Config{BuildTarget: "cloud"}).ResolveDefaults(); err == nil {
		t.Fatalf("unknown build target accepted")
	}
	if err := (&Config{BuildTarget: "local", StoreDriver: "oracle"}).ResolveDefaults(); err == nil {
		t.Fatalf("unknown store driver accepted")
	}
	if err := (&Config{BuildTarget: "local", StoreDriver: "memory", BlobDriver: "s3"}).ResolveDefaults(); err == nil {
		t.Fatalf("unknown blob driver accepted")
	}
}

func TestNew_ParsesEnvironment(t *testing.T) {
	isolateState(t)
	t.Setenv("MEMVAULT_BUILD_TARGET", "demo")
	t.Setenv("MEMVAULT_HTTP_PORT", "9191")
	t.Setenv("MEMVAULT_GATE_PASSCODE", "hunter2")

	cfg, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPPort != 9191 || cfg.GatePasscode != "hunter2" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.GetHTTPAddr() != ":9191" {
		t.Fatalf("addr: %s", cfg.GetHTTPAddr())
	}
}
