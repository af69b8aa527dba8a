// Package config loads and persists the exploration engine configuration.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"cre/internal/explore"
)

// Config represents the complete engine configuration (v1 schema)
type Config struct {
	Version  int    `json:"version" mapstructure:"version" toml:"version"`
	RepoRoot string `json:"repoRoot" mapstructure:"repoRoot" toml:"repoRoot"`

	Engine  EngineConfig  `json:"engine" mapstructure:"engine" toml:"engine"`
	Index   IndexConfig   `json:"index" mapstructure:"index" toml:"index"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging" toml:"logging"`
}

// EngineConfig holds the default exploration constraints. Per-invocation
// flags override these, and both are clamped into the valid ranges.
type EngineConfig struct {
	MaxDepth           int     `json:"maxDepth" mapstructure:"maxDepth" toml:"maxDepth"`
	MaxNodes           int     `json:"maxNodes" mapstructure:"maxNodes" toml:"maxNodes"`
	RelevanceThreshold float64 `json:"relevanceThreshold" mapstructure:"relevanceThreshold" toml:"relevanceThreshold"`
	TimeLimitMs        int     `json:"timeLimitMs" mapstructure:"timeLimitMs" toml:"timeLimitMs"`
	HistoryCapacity    int     `json:"historyCapacity" mapstructure:"historyCapacity" toml:"historyCapacity"`
}

// IndexConfig selects and configures the code index backend.
type IndexConfig struct {
	// Backend forces a backend: "mcp", "scip", "treesitter" or "" for auto
	Backend    string           `json:"backend" mapstructure:"backend" toml:"backend"`
	Mcp        McpConfig        `json:"mcp" mapstructure:"mcp" toml:"mcp"`
	Scip       ScipConfig       `json:"scip" mapstructure:"scip" toml:"scip"`
	Treesitter TreesitterConfig `json:"treesitter" mapstructure:"treesitter" toml:"treesitter"`
}

// McpConfig identifies the external tool server.
type McpConfig struct {
	ServerName string   `json:"serverName" mapstructure:"serverName" toml:"serverName"`
	Command    string   `json:"command" mapstructure:"command" toml:"command"`
	Args       []string `json:"args" mapstructure:"args" toml:"args"`
}

// ScipConfig locates the SCIP index file.
type ScipConfig struct {
	IndexPath string `json:"indexPath" mapstructure:"indexPath" toml:"indexPath"`
}

// TreesitterConfig bounds the fallback source scan.
type TreesitterConfig struct {
	Root     string `json:"root" mapstructure:"root" toml:"root"`
	MaxFiles int    `json:"maxFiles" mapstructure:"maxFiles" toml:"maxFiles"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format" toml:"format"`
	Level  string `json:"level" mapstructure:"level" toml:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		RepoRoot: ".",
		Engine: EngineConfig{
			MaxDepth:           explore.DefaultMaxDepth,
			MaxNodes:           explore.DefaultMaxNodes,
			RelevanceThreshold: explore.DefaultRelevanceThreshold,
			TimeLimitMs:        explore.DefaultTimeLimitMs,
			HistoryCapacity:    explore.DefaultHistoryCapacity,
		},
		Index: IndexConfig{
			Backend: "",
			Scip: ScipConfig{
				IndexPath: ".scip/index.scip",
			},
			Treesitter: TreesitterConfig{
				Root:     ".",
				MaxFiles: 2000,
			},
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// Load reads configuration from .cre/config.json under repoRoot.
// A missing file yields the defaults; environment variables with the
// CRE_ prefix override individual keys.
func Load(repoRoot string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("version", defaults.Version)
	v.SetDefault("repoRoot", defaults.RepoRoot)
	v.SetDefault("engine.maxDepth", defaults.Engine.MaxDepth)
	v.SetDefault("engine.maxNodes", defaults.Engine.MaxNodes)
	v.SetDefault("engine.relevanceThreshold", defaults.Engine.RelevanceThreshold)
	v.SetDefault("engine.timeLimitMs", defaults.Engine.TimeLimitMs)
	v.SetDefault("engine.historyCapacity", defaults.Engine.HistoryCapacity)
	v.SetDefault("index.scip.indexPath", defaults.Index.Scip.IndexPath)
	v.SetDefault("index.treesitter.root", defaults.Index.Treesitter.Root)
	v.SetDefault("index.treesitter.maxFiles", defaults.Index.Treesitter.MaxFiles)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.level", defaults.Logging.Level)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(repoRoot, ".cre"))
	v.SetEnvPrefix("CRE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration to .cre/config.json
func (c *Config) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, ".cre")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0o644)
}

// SaveTOML writes the configuration to .cre/config.toml for projects
// that keep their tooling config in TOML.
func (c *Config) SaveTOML(repoRoot string) error {
	dir := filepath.Join(repoRoot, ".cre")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.toml"), data, 0o644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	switch c.Index.Backend {
	case "", "mcp", "scip", "treesitter":
	default:
		return &ConfigError{Field: "index.backend", Message: "unknown backend " + c.Index.Backend}
	}
	if c.Index.Backend == "mcp" && c.Index.Mcp.Command == "" {
		return &ConfigError{Field: "index.mcp.command", Message: "mcp backend requires a command"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
