package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glazepal/glazepal/internal/config"
	"github.com/glazepal/glazepal/internal/domain"
	"github.com/glazepal/glazepal/internal/filter"
	"github.com/glazepal/glazepal/internal/integrity"
	"github.com/glazepal/glazepal/internal/planner"
	"github.com/glazepal/glazepal/internal/service"
	"github.com/glazepal/glazepal/internal/store"
)

func TestSeed(t *testing.T) {
	s, err := store.New("", nil, nil, store.WithInMemory())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	edits := config.EditConfig{SaveCooldown: time.Nanosecond, DeleteCooldown: time.Nanosecond}
	catalog := service.NewCatalog(s, planner.New(nil, nil), edits, nil)
	t.Cleanup(catalog.Close)

	ctx := context.Background()
	stats, err := seed(ctx, catalog)
	require.NoError(t, err)
	assert.Equal(t, seedStats{Glazes: len(seedGlazes), Combos: len(seedCombos), Tags: len(seedTags), Pieces: len(seedPieceImages)}, stats)

	page, err := catalog.Glazes(ctx, filter.State{})
	require.NoError(t, err)
	assert.Len(t, page.Glazes, len(seedGlazes))
	assert.Empty(t, page.Combos)

	combos, err := s.Count(ctx, domain.KindCombos)
	require.NoError(t, err)
	assert.Equal(t, len(seedCombos), combos)

	pieces, err := catalog.Pieces(ctx, filter.State{})
	require.NoError(t, err)
	require.Len(t, pieces, len(seedPieceImages))
	for _, p := range pieces {
		require.NotNil(t, p.DefaultImageURI)
		assert.Contains(t, seedPieceImages, *p.DefaultImageURI)
	}

	report, err := integrity.Check(ctx, s)
	require.NoError(t, err)
	assert.True(t, report.OK(), "violations: %v", report.Violations)

	_, err = seed(ctx, catalog)
	assert.ErrorContains(t, err, "already has")
}

func TestLayersFor(t *testing.T) {
	tests := []struct {
		name  string
		glaze string
		want  int
	}{
		{"dip glaze is applied once", "Guido", 1},
		{"brush glaze gets two layers", "Rainforest", seedLayers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, g := range seedGlazes {
				if g.name == tt.glaze {
					assert.Equal(t, tt.want, layersFor(domain.Glaze{Name: g.name, Variant: g.variant}))
				}
			}
		})
	}
}
