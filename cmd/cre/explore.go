package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"cre/internal/config"
	"cre/internal/explore"
	"cre/internal/output"
)

var (
	exploreHints     []string
	exploreMaxDepth  int
	exploreMaxNodes  int
	exploreThreshold float64
	exploreTimeLimit int
	exploreFormat    string
	exploreOutput    string
	exploreStats     bool
)

var exploreCmd = &cobra.Command{
	Use:   "explore <goal> [goal...]",
	Short: "Explore the codebase toward one or more reasoning goals",
	Long: `Run a budgeted multi-hop exploration for each goal and print the ranked
reasoning paths.

Examples:
  cre explore "understand how UserService.login works"
  cre explore "find all usages of parseConfig" --max-nodes 200
  cre explore "trace imports of server.ts" --hint src/server.ts --format json
  cre explore "auth flow" "session handling" --stats`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExplore,
}

func init() {
	exploreCmd.Flags().StringArrayVar(&exploreHints, "hint", nil,
		"Context hint (file path or symbol), repeatable")
	exploreCmd.Flags().IntVar(&exploreMaxDepth, "max-depth", 0,
		"Maximum expansion depth (default: from config)")
	exploreCmd.Flags().IntVar(&exploreMaxNodes, "max-nodes", 0,
		"Maximum graph nodes (default: from config)")
	exploreCmd.Flags().Float64Var(&exploreThreshold, "threshold", -1,
		"Relevance threshold in [0,1] (default: from config)")
	exploreCmd.Flags().IntVar(&exploreTimeLimit, "time-limit", 0,
		"Time budget in milliseconds (default: from config)")
	exploreCmd.Flags().StringVar(&exploreFormat, "format", "human",
		"Output format (json, yaml, human)")
	exploreCmd.Flags().StringVar(&exploreOutput, "output", "",
		"Write the result to a file instead of stdout (.zst compresses)")
	exploreCmd.Flags().BoolVar(&exploreStats, "stats", false,
		"Print aggregate history statistics after the explorations")
	rootCmd.AddCommand(exploreCmd)
}

func runExplore(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(exploreFormat)
	if err != nil {
		return err
	}

	repoRoot := mustGetRepoRoot()
	cfg, err := loadConfig(repoRoot)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	idx, cleanup, err := buildIndex(cfg, repoRoot, logger)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	engine := explore.NewEngine(idx, logger, explore.Options{
		HistoryCapacity: cfg.Engine.HistoryCapacity,
	})

	for _, goal := range args {
		req, err := explore.ParseRequest(goal, exploreHints)
		if err != nil {
			return err
		}
		applyConstraintFlags(&req.Constraints, cfg)

		ctx, cancel := context.WithTimeout(cmd.Context(),
			time.Duration(req.Constraints.Clamped().TimeLimitMs)*time.Millisecond)
		result, err := engine.ExploreRequest(ctx, req)
		cancel()
		if err != nil {
			return err
		}

		rendered, err := output.Render(result, format)
		if err != nil {
			return err
		}

		if exploreOutput != "" {
			if err := output.WriteFile(exploreOutput, rendered); err != nil {
				return err
			}
			fmt.Printf("Result written to %s\n", exploreOutput)
			continue
		}
		_, _ = os.Stdout.Write(rendered)
		if len(rendered) > 0 && rendered[len(rendered)-1] != '\n' {
			fmt.Println()
		}
	}

	if exploreStats {
		printHistoryStats(engine.History())
	}
	return nil
}

// applyConstraintFlags layers config defaults and explicit flags over the
// parser's heuristic constraints. Flags win, then config, then heuristics.
func applyConstraintFlags(c *explore.Constraints, cfg *config.Config) {
	if cfg.Engine.MaxDepth != 0 && c.MaxDepth == explore.DefaultMaxDepth {
		c.MaxDepth = cfg.Engine.MaxDepth
	}
	if cfg.Engine.MaxNodes != 0 && c.MaxNodes == explore.DefaultMaxNodes {
		c.MaxNodes = cfg.Engine.MaxNodes
	}
	if cfg.Engine.RelevanceThreshold != 0 {
		c.RelevanceThreshold = cfg.Engine.RelevanceThreshold
	}
	if cfg.Engine.TimeLimitMs != 0 {
		c.TimeLimitMs = cfg.Engine.TimeLimitMs
	}

	if exploreMaxDepth > 0 {
		c.MaxDepth = exploreMaxDepth
	}
	if exploreMaxNodes > 0 {
		c.MaxNodes = exploreMaxNodes
	}
	if exploreThreshold >= 0 {
		c.RelevanceThreshold = exploreThreshold
	}
	if exploreTimeLimit > 0 {
		c.TimeLimitMs = exploreTimeLimit
	}
}

func printHistoryStats(h *explore.History) {
	stats := h.Stats()
	fmt.Println("\nHistory statistics:")
	fmt.Printf("  Explorations:       %d\n", stats.Explorations)
	fmt.Printf("  Avg elapsed:        %.0fms\n", stats.AvgElapsedMs)
	fmt.Printf("  Avg paths found:    %.1f\n", stats.AvgPathsFound)
	fmt.Printf("  Avg confidence:     %.2f\n", stats.AvgConfidence)
	fmt.Printf("  Avg nodes explored: %.1f\n", stats.AvgNodesExplored)
	fmt.Printf("  External calls:     %d\n", stats.TotalExternalCalls)
}
