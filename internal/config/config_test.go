package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsForMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Fatalf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Session.RerouteThresholdMeters != 50 {
		t.Fatalf("RerouteThresholdMeters = %f, want 50", cfg.Session.RerouteThresholdMeters)
	}
	if cfg.Routing.BaseURL == "" {
		t.Fatal("default routing base URL missing")
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	body := `
server:
  port: 9090
routing:
  base_url: http://osrm.internal:5000
  cache_ttl_sec: 60
session:
  debounce_ms: 500
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Routing.BaseURL != "http://osrm.internal:5000" {
		t.Fatalf("BaseURL = %q", cfg.Routing.BaseURL)
	}
	if cfg.Session.DebounceMS != 500 {
		t.Fatalf("DebounceMS = %d, want 500", cfg.Session.DebounceMS)
	}
	// Untouched sections keep their defaults.
	if cfg.Session.ProgressIntervalSec != 5 {
		t.Fatalf("ProgressIntervalSec = %d, want 5", cfg.Session.ProgressIntervalSec)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("OSRM_URL", "http://osrm.env:5000")
	t.Setenv("REDIS_URL", "redis://env:6379")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Routing.BaseURL != "http://osrm.env:5000" {
		t.Fatalf("BaseURL = %q", cfg.Routing.BaseURL)
	}
	if cfg.RedisURL != "redis://env:6379" {
		t.Fatalf("RedisURL = %q", cfg.RedisURL)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("server:\n  port: 70000\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for out-of-range port")
	}
}
