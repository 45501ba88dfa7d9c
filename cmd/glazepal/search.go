package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/glazepal/glazepal/internal/di/providers"
	"github.com/glazepal/glazepal/internal/domain"
	"github.com/glazepal/glazepal/internal/search"
)

var (
	searchKinds     []string
	searchTags      []string
	searchFavorites bool
	searchLimit     int
	searchReindex   bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search over glazes, combos and pieces",
	Long: `Search names, descriptions, notes and tags of the catalog.

Examples:
  glazepal search celadon
  glazepal search blue --kind glazes --tag Runny
  glazepal search --favorites
  glazepal search --reindex           # Rebuild the index first`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringSliceVarP(&searchKinds, "kind", "k", nil, "Restrict to kinds (glazes, combos, pieces)")
	searchCmd.Flags().StringSliceVarP(&searchTags, "tag", "t", nil, "Require tag names")
	searchCmd.Flags().BoolVar(&searchFavorites, "favorites", false, "Only favorites")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", search.DefaultLimit, "Maximum hits")
	searchCmd.Flags().BoolVar(&searchReindex, "reindex", false, "Rebuild the index before searching")
}

func runSearch(cmd *cobra.Command, args []string) error {
	flags.SearchEnabled = "true"

	return withContainer(cmd, func(ctx context.Context, injector *do.RootScope) error {
		if searchReindex {
			idx := do.MustInvoke[*providers.SearchIndexHandle](injector)
			st := do.MustInvoke[*providers.StoreHandle](injector)
			n, err := idx.Reindex(ctx, st.Store)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Indexed %d records\n", n)
		}

		params := search.Params{
			Tags:          searchTags,
			FavoritesOnly: searchFavorites,
			Limit:         searchLimit,
		}
		if len(args) > 0 {
			params.Query = args[0]
		}
		for _, k := range searchKinds {
			params.Kinds = append(params.Kinds, domain.Kind(strings.ToLower(k)))
		}

		catalog := do.MustInvoke[*providers.CatalogHandle](injector)
		result, err := catalog.Search(ctx, params)
		if err != nil {
			return err
		}

		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), result)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, hit := range result.Hits {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\n", hit.Kind, hit.ID, hit.Name, hit.Score)
		}
		_ = w.Flush()
		fmt.Fprintf(cmd.OutOrStdout(), "%d of %d hits in %dms\n", len(result.Hits), result.Total, result.TookMs)
		return nil
	})
}
