package config

import (
	"os"
	"path/filepath"
	"testing"

	"cre/internal/explore"
)

func TestLoadMissingConfigReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Engine.MaxDepth != explore.DefaultMaxDepth {
		t.Errorf("Engine.MaxDepth = %d, want %d", cfg.Engine.MaxDepth, explore.DefaultMaxDepth)
	}
	if cfg.Index.Scip.IndexPath != ".scip/index.scip" {
		t.Errorf("Scip.IndexPath = %q, want default", cfg.Index.Scip.IndexPath)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "human" {
		t.Errorf("Logging = %+v, want info/human", cfg.Logging)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Engine.MaxNodes = 250
	cfg.Index.Backend = "scip"
	cfg.Index.Scip.IndexPath = "build/index.scip"
	if err := cfg.Save(dir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Engine.MaxNodes != 250 {
		t.Errorf("Engine.MaxNodes = %d, want 250", loaded.Engine.MaxNodes)
	}
	if loaded.Index.Backend != "scip" {
		t.Errorf("Index.Backend = %q, want scip", loaded.Index.Backend)
	}
	if loaded.Index.Scip.IndexPath != "build/index.scip" {
		t.Errorf("Scip.IndexPath = %q, want build/index.scip", loaded.Index.Scip.IndexPath)
	}
}

func TestSaveTOML(t *testing.T) {
	dir := t.TempDir()
	if err := DefaultConfig().SaveTOML(dir); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, ".cre", "config.toml"))
	if err != nil {
		t.Fatalf("reading config.toml: %v", err)
	}
	if len(data) == 0 {
		t.Error("config.toml is empty")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"bad version", func(c *Config) { c.Version = 9 }, true},
		{"unknown backend", func(c *Config) { c.Index.Backend = "glean" }, true},
		{"mcp without command", func(c *Config) { c.Index.Backend = "mcp" }, true},
		{"mcp with command", func(c *Config) {
			c.Index.Backend = "mcp"
			c.Index.Mcp.Command = "code-index-server"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
