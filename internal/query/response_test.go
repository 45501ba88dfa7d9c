package query_test

import (
	"context"
	"testing"

	"github.com/glazepal/glazepal/internal/domain"
	domainerrors "github.com/glazepal/glazepal/internal/errors"
	"github.com/glazepal/glazepal/internal/query"
	"github.com/glazepal/glazepal/internal/store"
	"github.com/glazepal/glazepal/internal/tx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New("", nil, nil, store.WithInMemory())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// seedCatalog writes two dip glazes, a combo of both, a tag and a piece
// whose outer part is the combo.
func seedCatalog(t *testing.T, s *store.Store) {
	t.Helper()

	b := tx.New().
		Create(domain.KindGlazes, "g1", tx.Attrs{domain.AttrName: "Lotta", domain.AttrVariant: "dip"}).
		Create(domain.KindGlazes, "g2", tx.Attrs{domain.AttrName: "Khalil", domain.AttrVariant: "dip", domain.AttrIsFavorite: true}).
		Create(domain.KindGlazes, "g3", tx.Attrs{domain.AttrName: "Walt", domain.AttrVariant: "dip"}).
		Create(domain.KindBrands, "b1", tx.Attrs{domain.AttrName: "Amaco"}).
		Link(domain.KindGlazes, "g1", "brands", "b1").
		Create(domain.KindTags, "t1", tx.Attrs{domain.AttrName: "Runny", domain.AttrRank: 1}).
		Link(domain.KindGlazes, "g1", "tags", "t1").
		Create(domain.KindCombos, "c1", tx.Attrs{domain.AttrName: "Lotta/Khalil"}).
		Create(domain.KindApplications, "a1", tx.Attrs{domain.AttrIsBase: false, domain.AttrLayers: 1}).
		Create(domain.KindApplications, "a2", tx.Attrs{domain.AttrIsBase: true, domain.AttrLayers: 1}).
		Link(domain.KindCombos, "c1", "applications", "a1").
		Link(domain.KindCombos, "c1", "applications", "a2").
		Link(domain.KindApplications, "a1", "glazes", "g2").
		Link(domain.KindApplications, "a2", "glazes", "g1").
		Create(domain.KindPieces, "p1", tx.Attrs{domain.AttrName: "Mug"}).
		Create(domain.KindParts, "pp1", tx.Attrs{domain.AttrLocation: "outer", domain.AttrType: "combo"}).
		Link(domain.KindPieces, "p1", "parts", "pp1").
		Link(domain.KindCombos, "c1", "parts", "pp1").
		Link(domain.KindCombos, "c1", "pieces", "p1")

	_, err := s.Transact(context.Background(), b)
	require.NoError(t, err)
}

func TestLoad_GlazesBrowse(t *testing.T) {
	s := setupTestStore(t)
	seedCatalog(t, s)

	res, err := query.Load(context.Background(), s, query.ViewGlazesBrowse, query.Params{}, query.DecodeGlazesBrowse)
	require.NoError(t, err)

	require.Len(t, res.Glazes, 3)
	require.Len(t, res.Combos, 1)
	require.Len(t, res.Tags, 1)

	lotta := res.Glazes[0]
	assert.Equal(t, "Lotta", lotta.Name)
	brand, ok := lotta.Brand()
	require.True(t, ok)
	assert.Equal(t, "Amaco", brand.Name)
	require.Len(t, lotta.Tags, 1)
	assert.NotNil(t, lotta.Images)
	assert.NotNil(t, lotta.Pieces)

	walt := res.Glazes[2]
	_, ok = walt.Brand()
	assert.False(t, ok)
	assert.NotNil(t, walt.Tags)
	assert.Empty(t, walt.Tags)
}

func TestComboResponse_BaseAndAdditional(t *testing.T) {
	s := setupTestStore(t)
	seedCatalog(t, s)

	res, err := query.Load(context.Background(), s, query.ViewComboDetail, query.Params{ID: "c1"}, query.DecodeComboDetail)
	require.NoError(t, err)

	base, ok := res.Combo.Base()
	require.True(t, ok)
	g, ok := base.Glaze()
	require.True(t, ok)
	assert.Equal(t, "Lotta", g.Name)

	extra, ok := res.Combo.Additional()
	require.True(t, ok)
	g, ok = extra.Glaze()
	require.True(t, ok)
	assert.Equal(t, "Khalil", g.Name)

	require.Len(t, res.Combo.Pieces, 1)
	assert.NotNil(t, res.Combo.Images)
}

func TestComboResponse_SkipsApplicationsWithoutGlaze(t *testing.T) {
	c := query.ComboResponse{Applications: []query.ApplicationResponse{
		{GlazeApplication: domain.GlazeApplication{IsBase: true}, Glazes: []domain.Glaze{}},
		{GlazeApplication: domain.GlazeApplication{IsBase: true}, Glazes: []domain.Glaze{{Name: "Guido"}}},
	}}

	base, ok := c.Base()
	require.True(t, ok)
	g, _ := base.Glaze()
	assert.Equal(t, "Guido", g.Name)

	_, ok = c.Additional()
	assert.False(t, ok)
}

func TestLoad_GlazeDetailIncludesCombosUsingGlaze(t *testing.T) {
	s := setupTestStore(t)
	seedCatalog(t, s)
	ctx := context.Background()

	res, err := query.Load(ctx, s, query.ViewGlazeDetail, query.Params{ID: "g2"}, query.DecodeGlazeDetail)
	require.NoError(t, err)
	assert.Equal(t, "Khalil", res.Glaze.Name)
	require.Len(t, res.Combos, 1)
	assert.Equal(t, "c1", res.Combos[0].ID)

	res, err = query.Load(ctx, s, query.ViewGlazeDetail, query.Params{ID: "g3"}, query.DecodeGlazeDetail)
	require.NoError(t, err)
	assert.NotNil(t, res.Combos)
	assert.Empty(t, res.Combos)
}

func TestLoad_DetailMissingSubject(t *testing.T) {
	s := setupTestStore(t)
	seedCatalog(t, s)

	_, err := query.Load(context.Background(), s, query.ViewPieceDetail, query.Params{ID: "nope"}, query.DecodePieceDetail)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestPieceResponse_UniformInnerFromOuter(t *testing.T) {
	s := setupTestStore(t)
	seedCatalog(t, s)

	res, err := query.Load(context.Background(), s, query.ViewPieceDetail, query.Params{ID: "p1"}, query.DecodePieceDetail)
	require.NoError(t, err)

	piece := res.Piece
	assert.True(t, piece.IsUniform())

	outer, ok := piece.Outer()
	require.True(t, ok)
	assert.Equal(t, domain.LocationOuter, outer.PartLocation())
	assert.Equal(t, domain.PartTypeCombo, outer.PartType())

	inner, ok := piece.Inner()
	require.True(t, ok)
	assert.Equal(t, domain.LocationInner, inner.PartLocation())
	combo, ok := inner.(query.ComboSelection)
	require.True(t, ok)
	assert.Equal(t, "c1", combo.Combo.ID)
	assert.Equal(t, []string{"Khalil", "Lotta"}, combo.Combo.GlazeNames())
}

func TestLoad_Favorites(t *testing.T) {
	s := setupTestStore(t)
	seedCatalog(t, s)

	res, err := query.Load(context.Background(), s, query.ViewFavorites, query.Params{}, query.DecodeFavorites)
	require.NoError(t, err)
	require.Len(t, res.Glazes, 1)
	assert.Equal(t, "Khalil", res.Glazes[0].Name)
	assert.Empty(t, res.Combos)
	assert.Empty(t, res.Pieces)
}

func TestGlazeSelection_WithLayers(t *testing.T) {
	dip := query.GlazeSelection{Layers: 1, Glaze: domain.Glaze{Variant: domain.VariantDip}}
	assert.Equal(t, 1, dip.WithLayers(3).Layers)

	brush := query.GlazeSelection{Layers: 1, Glaze: domain.Glaze{Variant: domain.VariantBrush}}
	assert.Equal(t, 3, brush.WithLayers(3).Layers)
	assert.Equal(t, 1, brush.WithLayers(0).Layers)
}
