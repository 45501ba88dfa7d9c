// Package main provides the glazepal command: seeding, inspecting,
// searching and moving a local GlazePal catalog.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/glazepal/glazepal/internal/config"
	"github.com/glazepal/glazepal/internal/di"
	"github.com/glazepal/glazepal/internal/logger"
)

// Global flags
var (
	flags      config.Flags
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "glazepal",
	Short: "Manage a local GlazePal catalog",
	Long: `glazepal works on the local catalog of glazes, combos and pieces.

Examples:
  glazepal seed                        # Load the starter catalog
  glazepal inspect                     # Record counts and integrity report
  glazepal search celadon --kind glazes
  glazepal export > catalog.json
  glazepal import catalog.json         # Load a snapshot into an empty store`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.Env, "env", "", "Environment (development, test, production)")
	pf.StringVar(&flags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&flags.DataPath, "data-path", "", "Catalog data directory (default ~/GlazePal)")
	pf.StringVar(&flags.QueryRetries, "query-retries", "", "Attempts per read query")
	pf.StringVar(&flags.SaveCooldown, "save-cooldown", "", "Cooldown after a save, e.g. 400ms")
	pf.StringVar(&flags.DeleteCooldown, "delete-cooldown", "", "Cooldown after a delete, e.g. 1s")
	pf.StringVar(&flags.Debounce, "search-debounce", "", "Quiet period before a typed query applies")
	pf.StringVar(&flags.SearchEnabled, "search", "", "Keep the full-text index in sync (true/false)")
	pf.StringVar(&flags.EnvFile, "env-file", "", "Path to a .env file (default .env)")
	pf.BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		os.Exit(1)
	}
}

// withContainer bootstraps the catalog, runs fn and shuts everything down.
func withContainer(cmd *cobra.Command, fn func(ctx context.Context, injector *do.RootScope) error) error {
	injector := di.NewContainer(flags)
	if err := di.Bootstrap(injector); err != nil {
		_ = injector.Shutdown()
		return fmt.Errorf("bootstrap: %w", err)
	}

	runErr := fn(cmd.Context(), injector)

	log := do.MustInvoke[*logger.Logger](injector)
	if err := injector.Shutdown(); err != nil {
		log.Error("shutdown error", "error", err)
	}
	return runErr
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
