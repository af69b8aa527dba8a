package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"cre/internal/config"
)

var (
	initFormat string
	initForce  bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default .cre configuration",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().StringVar(&initFormat, "format", "json", "Config format (json, toml)")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	repoRoot := mustGetRepoRoot()

	var name string
	switch initFormat {
	case "json":
		name = "config.json"
	case "toml":
		name = "config.toml"
	default:
		return fmt.Errorf("unknown config format %q (want json or toml)", initFormat)
	}

	path := filepath.Join(repoRoot, ".cre", name)
	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg := config.DefaultConfig()
	cfg.RepoRoot = repoRoot

	var err error
	if initFormat == "toml" {
		err = cfg.SaveTOML(repoRoot)
	} else {
		err = cfg.Save(repoRoot)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Created %s\n", path)
	return nil
}
