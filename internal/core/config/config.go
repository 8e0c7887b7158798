package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Version       int           `toml:"version"`
	Paths         Paths         `toml:"paths"`
	Exclude       Exclude       `toml:"exclude"`
	Watch         Watch         `toml:"watch"`
	History       History       `toml:"history"`
	Observability Observability `toml:"observability"`
	Export        Export        `toml:"export"`
}

type Paths struct {
	ProjectRoot  string `toml:"project_root"`
	Manifest     string `toml:"manifest"`
	Stats        string `toml:"stats"`
	ExportCounts string `toml:"export_counts"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

type History struct {
	Enabled     bool          `toml:"enabled"`
	Path        string        `toml:"path"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
}

type Observability struct {
	Enabled      bool   `toml:"enabled"`
	Address      string `toml:"address"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
	ServiceName  string `toml:"service_name"`
}

type Export struct {
	Dir      string `toml:"dir"`
	JSON     bool   `toml:"json"`
	CSV      bool   `toml:"csv"`
	Markdown bool   `toml:"markdown"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := validateVersion(&cfg); err != nil {
		return nil, err
	}
	if err := validatePaths(&cfg); err != nil {
		return nil, err
	}
	if err := validateHistory(&cfg); err != nil {
		return nil, err
	}
	if err := validateObservability(&cfg); err != nil {
		return nil, err
	}
	if err := validateExport(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if strings.TrimSpace(cfg.Paths.ProjectRoot) == "" {
		cfg.Paths.ProjectRoot = "."
	}
	if strings.TrimSpace(cfg.Paths.Manifest) == "" {
		cfg.Paths.Manifest = "package.json"
	}

	if len(cfg.Exclude.Dirs) == 0 {
		cfg.Exclude.Dirs = []string{"node_modules", "dist", "build", ".git", "coverage"}
	}

	// Default debounce if not set.
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}

	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = "codescope.db"
	}
	if cfg.History.BusyTimeout <= 0 {
		cfg.History.BusyTimeout = 5 * time.Second
	}

	if strings.TrimSpace(cfg.Observability.Address) == "" {
		cfg.Observability.Address = "127.0.0.1:9090"
	}
	if strings.TrimSpace(cfg.Observability.ServiceName) == "" {
		cfg.Observability.ServiceName = "codescope"
	}

	if strings.TrimSpace(cfg.Export.Dir) == "" {
		cfg.Export.Dir = "reports"
	}
}

// ManifestPath resolves the manifest relative to the project root.
func (c *Config) ManifestPath() string {
	if filepath.IsAbs(c.Paths.Manifest) {
		return c.Paths.Manifest
	}
	return filepath.Join(c.Paths.ProjectRoot, c.Paths.Manifest)
}

func validateVersion(cfg *Config) error {
	if cfg.Version < 1 {
		return fmt.Errorf("version must be >= 1, got %d", cfg.Version)
	}
	if cfg.Version > 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validatePaths(cfg *Config) error {
	if strings.TrimSpace(cfg.Paths.ProjectRoot) == "" {
		return fmt.Errorf("paths.project_root must not be empty")
	}
	if strings.TrimSpace(cfg.Paths.Manifest) == "" {
		return fmt.Errorf("paths.manifest must not be empty")
	}
	for i, dir := range cfg.Exclude.Dirs {
		if strings.TrimSpace(dir) == "" {
			return fmt.Errorf("exclude.dirs[%d] must not be empty", i)
		}
	}
	for i, file := range cfg.Exclude.Files {
		if strings.TrimSpace(file) == "" {
			return fmt.Errorf("exclude.files[%d] must not be empty", i)
		}
	}
	return nil
}

func validateHistory(cfg *Config) error {
	if !cfg.History.Enabled {
		return nil
	}
	if strings.TrimSpace(cfg.History.Path) == "" {
		return fmt.Errorf("history.path must not be empty when history is enabled")
	}
	return nil
}

func validateObservability(cfg *Config) error {
	if !cfg.Observability.Enabled {
		return nil
	}
	if strings.TrimSpace(cfg.Observability.Address) == "" {
		return fmt.Errorf("observability.address must not be empty when observability is enabled")
	}
	if strings.TrimSpace(cfg.Observability.ServiceName) == "" {
		return fmt.Errorf("observability.service_name must not be empty when observability is enabled")
	}
	return nil
}

func validateExport(cfg *Config) error {
	if !cfg.Export.JSON && !cfg.Export.CSV && !cfg.Export.Markdown {
		return nil
	}
	if strings.TrimSpace(cfg.Export.Dir) == "" {
		return fmt.Errorf("export.dir must not be empty when an export format is enabled")
	}
	return nil
}
