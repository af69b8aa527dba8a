package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"cre/internal/config"
	"cre/internal/index/treesitter"
	"cre/internal/logging"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose configuration and backend availability",
	Long: `Check the configuration file and report which code index backends are
usable for this repository. Exits non-zero when no backend is available.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

type doctorCheck struct {
	name   string
	ok     bool
	detail string
}

func runDoctor(cmd *cobra.Command, args []string) error {
	repoRoot := mustGetRepoRoot()
	var checks []doctorCheck

	cfg, err := loadConfig(repoRoot)
	if err != nil {
		checks = append(checks, doctorCheck{"config", false, err.Error()})
		cfg = config.DefaultConfig()
	} else {
		checks = append(checks, doctorCheck{"config", true, "valid"})
	}

	// Tool server backend.
	if cfg.Index.Mcp.Command == "" {
		checks = append(checks, doctorCheck{"mcp", false, "no tool server configured (index.mcp.command)"})
	} else if _, err := exec.LookPath(cfg.Index.Mcp.Command); err != nil {
		checks = append(checks, doctorCheck{"mcp", false,
			fmt.Sprintf("command %q not found in PATH", cfg.Index.Mcp.Command)})
	} else {
		checks = append(checks, doctorCheck{"mcp", true, cfg.Index.Mcp.Command})
	}

	// SCIP backend.
	scipPath := filepath.Join(repoRoot, cfg.Index.Scip.IndexPath)
	if _, err := os.Stat(scipPath); err != nil {
		checks = append(checks, doctorCheck{"scip", false,
			fmt.Sprintf("no index at %s", cfg.Index.Scip.IndexPath)})
	} else {
		checks = append(checks, doctorCheck{"scip", true, cfg.Index.Scip.IndexPath})
	}

	// Tree-sitter fallback.
	scanner := treesitter.NewScanner(repoRoot, 1, logging.NewNopLogger())
	if scanner.Available() {
		checks = append(checks, doctorCheck{"treesitter", true, "compiled in"})
	} else {
		checks = append(checks, doctorCheck{"treesitter", false,
			"not compiled in (build with CGO_ENABLED=1)"})
	}

	anyBackend := false
	for _, c := range checks {
		mark := "FAIL"
		if c.ok {
			mark = "ok"
			if c.name != "config" {
				anyBackend = true
			}
		}
		fmt.Printf("%-12s %-4s %s\n", c.name, mark, c.detail)
	}

	if !anyBackend {
		fmt.Println("\nNo code index backend is available.")
		fmt.Println("Run 'cre init' to create a config, then set index.mcp.command")
		fmt.Println("or generate a SCIP index at .scip/index.scip.")
		os.Exit(1)
	}

	fmt.Printf("\nEffective backend: %s\n", resolveBackend(cfg, repoRoot))
	return nil
}
