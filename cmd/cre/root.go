package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"cre/internal/config"
	creerrors "cre/internal/errors"
	"cre/internal/index"
	"cre/internal/index/mcpbridge"
	"cre/internal/index/scipindex"
	"cre/internal/index/treesitter"
	"cre/internal/logging"
	"cre/internal/version"
)

var (
	repoRootFlag  string
	logLevelFlag  string
	logFormatFlag string
	backendFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "cre",
	Short: "CRE - Code Reasoning Engine",
	Long: `CRE (Code Reasoning Engine) answers high-level questions about a codebase
by building a bounded knowledge graph over an existing code index and returning
ranked reasoning paths with a step-by-step trace.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("CRE version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&repoRootFlag, "repo-root", ".",
		"Repository root to explore")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, error (default: from config)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "",
		"Log format: json or human (default: from config)")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "",
		"Force a code index backend: mcp, scip, or treesitter (default: auto)")
}

// mustGetRepoRoot resolves the repo root flag to an absolute path.
func mustGetRepoRoot() string {
	abs, err := filepath.Abs(repoRootFlag)
	if err != nil {
		return repoRootFlag
	}
	return abs
}

// loadConfig reads config for the repo root. Precedence for the
// observability knobs: CLI flag > CRE_* env var > config file.
func loadConfig(repoRoot string) (*config.Config, error) {
	cfg, err := config.Load(repoRoot)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger from flags and config.
func newLogger(cfg *config.Config) *logging.Logger {
	level := cfg.Logging.Level
	if env := os.Getenv("CRE_LOG_LEVEL"); env != "" {
		level = env
	}
	if logLevelFlag != "" {
		level = logLevelFlag
	}

	format := logging.Format(cfg.Logging.Format)
	if logFormatFlag != "" {
		format = logging.Format(logFormatFlag)
	}

	return logging.NewLogger(logging.Config{
		Format: format,
		Level:  logging.ParseLevel(level),
	})
}

// resolveBackend determines the effective backend name.
// Precedence: CLI flag > config index.backend > auto-detect.
func resolveBackend(cfg *config.Config, repoRoot string) string {
	if backendFlag != "" {
		return backendFlag
	}
	if cfg.Index.Backend != "" {
		return cfg.Index.Backend
	}

	// Auto-detect: a configured tool server wins, then a SCIP index on
	// disk, then the source scan of last resort.
	if cfg.Index.Mcp.Command != "" {
		return "mcp"
	}
	if _, err := os.Stat(filepath.Join(repoRoot, cfg.Index.Scip.IndexPath)); err == nil {
		return "scip"
	}
	return "treesitter"
}

// buildIndex constructs the selected code index backend. The returned
// cleanup func is non-nil only for backends holding external resources.
func buildIndex(cfg *config.Config, repoRoot string, logger *logging.Logger) (index.CodeIndex, func(), error) {
	switch resolveBackend(cfg, repoRoot) {
	case "mcp":
		client, err := mcpbridge.NewClient(mcpbridge.Config{
			ServerName: cfg.Index.Mcp.ServerName,
			Command:    cfg.Index.Mcp.Command,
			Args:       cfg.Index.Mcp.Args,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return client, func() { _ = client.Close() }, nil

	case "scip":
		idx, err := scipindex.Open(filepath.Join(repoRoot, cfg.Index.Scip.IndexPath), repoRoot, logger)
		if err != nil {
			return nil, nil, err
		}
		return idx, nil, nil

	case "treesitter":
		root := cfg.Index.Treesitter.Root
		if !filepath.IsAbs(root) {
			root = filepath.Join(repoRoot, root)
		}
		scanner := treesitter.NewScanner(root, cfg.Index.Treesitter.MaxFiles, logger)
		if !scanner.Available() {
			return nil, nil, creerrors.New(creerrors.IndexUnavailable,
				"tree-sitter support is not compiled in (build with CGO_ENABLED=1)")
		}
		return scanner, nil, nil

	default:
		return nil, nil, creerrors.New(creerrors.IndexMissing,
			"no usable code index backend")
	}
}
