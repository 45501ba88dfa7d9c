package main

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/glazepal/glazepal/internal/di/providers"
	"github.com/glazepal/glazepal/internal/domain"
	"github.com/glazepal/glazepal/internal/filter"
	"github.com/glazepal/glazepal/internal/media/images"
	"github.com/glazepal/glazepal/internal/planner"
	"github.com/glazepal/glazepal/internal/query"
	"github.com/glazepal/glazepal/internal/service"
)

var seedBrand string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the starter catalog",
	Long: `Load the starter catalog of glazes, two-layer combos, tags and pieces.
Each record goes through the same edit path as the app, so the catalog
must be empty of glazes.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedBrand, "brand", "Mayco", "Brand linked to the seeded glazes")
}

type seedGlaze struct {
	name    string
	variant domain.Variant
}

type seedCombo struct {
	base, layer string
}

var (
	seedGlazes = []seedGlaze{
		{"Lotta", domain.VariantDip},
		{"Khalil", domain.VariantDip},
		{"Guido", domain.VariantDip},
		{"Whiplash", domain.VariantDip},
		{"Walt", domain.VariantDip},
		{"Northern Woods", domain.VariantBrush},
		{"Satin Patina", domain.VariantBrush},
		{"Rainforest", domain.VariantBrush},
		{"Weathered Blue", domain.VariantBrush},
	}

	seedCombos = []seedCombo{
		{"Lotta", "Walt"},
		{"Khalil", "Guido"},
		{"Guido", "Khalil"},
		{"Whiplash", "Guido"},
		{"Khalil", "Rainforest"},
		{"Guido", "Northern Woods"},
	}

	seedTags = []string{"Runny", "Stable", "Good for texture", "Like", "Iterate", "Dislike", "White clay", "Red clay"}

	seedPieceImages = []string{
		"https://i.etsystatic.com/20786299/r/il/2e6e9d/6072675345/il_1588xN.6072675345_s1m1.jpg",
		"https://i.etsystatic.com/20786299/r/il/15e82f/6073088149/il_1588xN.6073088149_qd32.jpg",
		"https://i.etsystatic.com/20786299/r/il/6548d0/6024596916/il_1588xN.6024596916_7p2k.jpg",
		"https://i.etsystatic.com/8091879/r/il/e9db70/6049641251/il_1588xN.6049641251_8kr9.jpg",
		"https://i.etsystatic.com/20786299/r/il/377ae1/6072619411/il_1588xN.6072619411_3ouq.jpg",
		"https://i.etsystatic.com/20786299/r/il/2fa826/6072617121/il_1588xN.6072617121_gzbx.jpg",
	}
)

// seedLayers is the layer count used for brush glazes on top of a combo.
const seedLayers = 2

func runSeed(cmd *cobra.Command, _ []string) error {
	// Seed edits are submitted back to back.
	if flags.SaveCooldown == "" {
		flags.SaveCooldown = "1ns"
	}
	return withContainer(cmd, func(ctx context.Context, injector *do.RootScope) error {
		catalog := do.MustInvoke[*providers.CatalogHandle](injector).Catalog
		stats, err := seed(ctx, catalog)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), stats)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d glazes, %d combos, %d tags, %d pieces\n",
			stats.Glazes, stats.Combos, stats.Tags, stats.Pieces)
		return nil
	})
}

type seedStats struct {
	Glazes int `json:"glazes"`
	Combos int `json:"combos"`
	Tags   int `json:"tags"`
	Pieces int `json:"pieces"`
}

func seed(ctx context.Context, catalog *service.Catalog) (seedStats, error) {
	var stats seedStats

	page, err := catalog.Glazes(ctx, filter.State{})
	if err != nil {
		return stats, err
	}
	if len(page.Glazes) > 0 {
		return stats, fmt.Errorf("catalog already has %d glazes", len(page.Glazes))
	}

	brand, err := catalog.CreateBrand(ctx, seedBrand)
	if err != nil {
		return stats, fmt.Errorf("brand %q: %w", seedBrand, err)
	}

	glazes := make(map[string]domain.Glaze, len(seedGlazes))
	for _, g := range seedGlazes {
		res, err := catalog.CreateGlaze(ctx, planner.GlazeInput{Name: g.name, Variant: g.variant, BrandID: brand.ID})
		if err != nil {
			return stats, fmt.Errorf("glaze %q: %w", g.name, err)
		}
		detail, err := catalog.Glaze(ctx, res.ID)
		if err != nil {
			return stats, err
		}
		glazes[g.name] = detail.Glaze.Glaze
		stats.Glazes++
	}

	var comboIDs []string
	for _, c := range seedCombos {
		base, layer := glazes[c.base], glazes[c.layer]
		res, err := catalog.CreateCombo(ctx, planner.ComboInput{
			Base:  &planner.LayerInput{Glaze: &base, Layers: 1},
			Layer: &planner.LayerInput{Glaze: &layer, Layers: layersFor(layer)},
		})
		if err != nil {
			return stats, fmt.Errorf("combo %s + %s: %w", c.base, c.layer, err)
		}
		comboIDs = append(comboIDs, res.ID)
		stats.Combos++
	}

	for rank, name := range seedTags {
		if _, err := catalog.CreateTag(ctx, planner.TagInput{Name: name, Rank: rank}); err != nil {
			return stats, fmt.Errorf("tag %q: %w", name, err)
		}
		stats.Tags++
	}

	for i, uri := range seedPieceImages {
		combo, err := catalog.Combo(ctx, comboIDs[i%len(comboIDs)])
		if err != nil {
			return stats, err
		}
		in := planner.PieceInput{
			Outer:   query.ComboSelection{Location: domain.LocationOuter, Combo: combo.Combo},
			Uniform: true,
			Image:   catalog.ResolveImage(ctx, images.Asset{URI: uri}),
		}
		if _, err := catalog.CreatePiece(ctx, in); err != nil {
			return stats, fmt.Errorf("piece %d: %w", i+1, err)
		}
		stats.Pieces++
	}

	return stats, nil
}

func layersFor(g domain.Glaze) int {
	if g.Variant.AllowsLayers(seedLayers) {
		return seedLayers
	}
	return 1
}
