package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/glazepal/glazepal/internal/di/providers"
	"github.com/glazepal/glazepal/internal/store"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every record and link as a JSON snapshot",
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Load a JSON snapshot into an empty catalog",
	Long: `Load a snapshot written by export. The catalog must be empty.
Reads stdin when no file is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")
}

func runExport(cmd *cobra.Command, _ []string) error {
	return withContainer(cmd, func(ctx context.Context, injector *do.RootScope) error {
		st := do.MustInvoke[*providers.StoreHandle](injector)
		snap, err := st.Export(ctx)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if exportOutput != "" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return fmt.Errorf("create %s: %w", exportOutput, err)
			}
			defer f.Close()
			w = f
		}
		return writeJSON(w, snap)
	})
}

func runImport(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer f.Close()
		r = f
	}

	var snap store.Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	return withContainer(cmd, func(ctx context.Context, injector *do.RootScope) error {
		st := do.MustInvoke[*providers.StoreHandle](injector)
		if err := st.Import(ctx, &snap); err != nil {
			return err
		}
		st.WaitForIndex()
		fmt.Fprintf(cmd.ErrOrStderr(), "Imported %d records and %d links\n", len(snap.Records), len(snap.Links))
		return nil
	})
}
