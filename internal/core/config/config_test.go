package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "codescope.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[paths]
project_root = "testdata/project"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Version != 1 {
		t.Errorf("Expected version 1, got %d", cfg.Version)
	}
	if cfg.Paths.Manifest != "package.json" {
		t.Errorf("Expected default manifest, got %q", cfg.Paths.Manifest)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("Expected default debounce, got %v", cfg.Watch.Debounce)
	}
	if cfg.History.Path != "codescope.db" {
		t.Errorf("Expected default history path, got %q", cfg.History.Path)
	}
	if len(cfg.Exclude.Dirs) == 0 {
		t.Error("Expected default exclude dirs")
	}
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
version = 1

[paths]
project_root = "/srv/app"
manifest = "package.json"
stats = "stats.json"
export_counts = "exports.json"

[exclude]
dirs = ["node_modules", "vendor"]
files = ["*.min.js"]

[watch]
debounce = 250000000

[history]
enabled = true
path = "runs.db"

[observability]
enabled = true
address = "0.0.0.0:9100"
otlp_endpoint = "localhost:4317"

[export]
dir = "out"
json = true
markdown = true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Paths.Stats != "stats.json" {
		t.Errorf("Unexpected stats path %q", cfg.Paths.Stats)
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("Expected 250ms debounce, got %v", cfg.Watch.Debounce)
	}
	if !cfg.History.Enabled || cfg.History.Path != "runs.db" {
		t.Errorf("Unexpected history config %+v", cfg.History)
	}
	if cfg.Observability.OTLPEndpoint != "localhost:4317" {
		t.Errorf("Unexpected OTLP endpoint %q", cfg.Observability.OTLPEndpoint)
	}
	if !cfg.Export.JSON || cfg.Export.CSV || !cfg.Export.Markdown {
		t.Errorf("Unexpected export flags %+v", cfg.Export)
	}
}

func TestLoadRejectsUnsupportedVersion(t *testing.T) {
	path := writeConfig(t, "version = 3\n")
	if _, err := Load(path); err == nil {
		t.Fatal("Expected error for unsupported version")
	}
}

func TestLoadRejectsEmptyExcludeEntry(t *testing.T) {
	path := writeConfig(t, `
[exclude]
files = [""]
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Expected error for empty exclude entry")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Paths.ProjectRoot != "." {
		t.Errorf("Expected project root '.', got %q", cfg.Paths.ProjectRoot)
	}
	if cfg.Observability.ServiceName != "codescope" {
		t.Errorf("Unexpected service name %q", cfg.Observability.ServiceName)
	}
}

func TestManifestPath(t *testing.T) {
	cfg := Default()
	cfg.Paths.ProjectRoot = "/srv/app"
	if got := cfg.ManifestPath(); got != "/srv/app/package.json" {
		t.Errorf("Unexpected manifest path %q", got)
	}

	cfg.Paths.Manifest = "/etc/package.json"
	if got := cfg.ManifestPath(); got != "/etc/package.json" {
		t.Errorf("Absolute manifest should win, got %q", got)
	}
}
