package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/glazepal/glazepal/internal/di/providers"
	"github.com/glazepal/glazepal/internal/domain"
	"github.com/glazepal/glazepal/internal/integrity"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show record counts and check catalog integrity",
	Long: `Count the records of every kind and run the integrity checks:
default images, combo layers, application links and piece parts.
Exits non-zero when a violation is found.`,
	RunE: runInspect,
}

type inspectReport struct {
	Counts    map[domain.Kind]int `json:"counts"`
	Integrity *integrity.Report   `json:"integrity"`
}

func runInspect(cmd *cobra.Command, _ []string) error {
	return withContainer(cmd, func(ctx context.Context, injector *do.RootScope) error {
		st := do.MustInvoke[*providers.StoreHandle](injector).Store

		out := inspectReport{Counts: make(map[domain.Kind]int, len(domain.Kinds))}
		for _, kind := range domain.Kinds {
			n, err := st.Count(ctx, kind)
			if err != nil {
				return fmt.Errorf("count %s: %w", kind, err)
			}
			out.Counts[kind] = n
		}

		report, err := integrity.Check(ctx, st)
		if err != nil {
			return err
		}
		out.Integrity = report

		if jsonOutput {
			if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}
		} else {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, kind := range domain.Kinds {
				fmt.Fprintf(w, "%s\t%d\n", kind, out.Counts[kind])
			}
			_ = w.Flush()
			checked := 0
			for _, n := range report.Checked {
				checked += n
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nChecked %d records, %d violations\n", checked, len(report.Violations))
			for _, v := range report.Violations {
				fmt.Fprintln(cmd.OutOrStdout(), "  "+v.String())
			}
		}

		if !report.OK() {
			return fmt.Errorf("%d integrity violations", len(report.Violations))
		}
		return nil
	})
}
