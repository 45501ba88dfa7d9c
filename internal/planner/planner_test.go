package planner_test

import (
	"context"
	"testing"
	"time"

	"github.com/glazepal/glazepal/internal/color"
	"github.com/glazepal/glazepal/internal/domain"
	domainerrors "github.com/glazepal/glazepal/internal/errors"
	"github.com/glazepal/glazepal/internal/id"
	"github.com/glazepal/glazepal/internal/integrity"
	"github.com/glazepal/glazepal/internal/planner"
	"github.com/glazepal/glazepal/internal/query"
	"github.com/glazepal/glazepal/internal/store"
	"github.com/glazepal/glazepal/internal/tx"
	"github.com/glazepal/glazepal/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *store.Store
	plan  *planner.Planner
}

func setup(t *testing.T) *fixture {
	t.Helper()

	s, err := store.New("", nil, nil, store.WithInMemory())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return &fixture{
		t:     t,
		ctx:   context.Background(),
		store: s,
		plan:  planner.New(id.Sequence("id"), func() time.Time { return fixedNow }),
	}
}

func (f *fixture) apply(p *planner.Plan, err error) string {
	f.t.Helper()
	require.NoError(f.t, err)
	_, err = f.store.Transact(f.ctx, p.Batch)
	require.NoError(f.t, err)
	return p.ID
}

func (f *fixture) glaze(name string, v domain.Variant) domain.Glaze {
	f.t.Helper()
	glazeID := f.apply(f.plan.CreateGlaze(planner.GlazeInput{Name: name, Variant: v}))
	g, err := f.store.Glazes.Get(f.ctx, glazeID)
	require.NoError(f.t, err)
	return *g
}

func (f *fixture) combo(comboID string) query.ComboResponse {
	f.t.Helper()
	c, err := query.Load(f.ctx, f.store, query.ViewComboDetail, query.Params{ID: comboID}, query.DecodeComboDetail)
	require.NoError(f.t, err)
	return c.Combo
}

func (f *fixture) piece(pieceID string) query.PieceResponse {
	f.t.Helper()
	p, err := query.Load(f.ctx, f.store, query.ViewPieceDetail, query.Params{ID: pieceID}, query.DecodePieceDetail)
	require.NoError(f.t, err)
	return p.Piece
}

func (f *fixture) glazeDetail(glazeID string) query.GlazeResponse {
	f.t.Helper()
	g, err := query.Load(f.ctx, f.store, query.ViewGlazeDetail, query.Params{ID: glazeID}, query.DecodeGlazeDetail)
	require.NoError(f.t, err)
	return g.Glaze
}

func (f *fixture) glazeEdit(glazeID string) query.GlazeResponse {
	f.t.Helper()
	g, err := query.Load(f.ctx, f.store, query.ViewGlazeEdit, query.Params{ID: glazeID}, query.DecodeGlaze)
	require.NoError(f.t, err)
	return g
}

func strPtr(s string) *string { return &s }

func TestCreateGlaze_WithBrandAndImage(t *testing.T) {
	f := setup(t)
	brandID := f.apply(f.plan.CreateBrand("Amaco"))

	glazeID := f.apply(f.plan.CreateGlaze(planner.GlazeInput{
		Name:    "  Northern Woods ",
		Variant: domain.VariantBrush,
		BrandID: brandID,
		Image:   &planner.ImageInput{CacheURI: "cache://a.jpg", LocalURI: strPtr("file://a.jpg")},
	}))

	g := f.glazeDetail(glazeID)
	assert.Equal(t, "Northern Woods", g.Name)
	assert.True(t, g.CreatedAt.Equal(fixedNow))
	brand, ok := g.Brand()
	require.True(t, ok)
	assert.Equal(t, "Amaco", brand.Name)
	require.Len(t, g.Images, 1)
	assert.Equal(t, "file://a.jpg", g.Images[0].URI)
	require.NotNil(t, g.DefaultImageURI)
	assert.Equal(t, "file://a.jpg", *g.DefaultImageURI)
}

func TestCreateGlaze_Validation(t *testing.T) {
	f := setup(t)

	_, err := f.plan.CreateGlaze(planner.GlazeInput{Name: "  ", Variant: domain.VariantDip})
	require.ErrorIs(t, err, domainerrors.ErrValidation)
	assert.Equal(t, validation.MissingFieldsMessage, domainerrors.UserMessage(err))

	_, err = f.plan.CreateGlaze(planner.GlazeInput{Name: "Lotta", Variant: "spray"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestUpdateGlaze_ReplacesBrand(t *testing.T) {
	f := setup(t)
	amaco := f.apply(f.plan.CreateBrand("Amaco"))
	mayco := f.apply(f.plan.CreateBrand("Mayco"))
	glazeID := f.apply(f.plan.CreateGlaze(planner.GlazeInput{Name: "Walt", Variant: domain.VariantDip, BrandID: amaco}))

	f.apply(f.plan.UpdateGlaze(f.glazeDetail(glazeID), planner.GlazeInput{Name: "Walt", Variant: domain.VariantDip, BrandID: mayco}))

	g := f.glazeDetail(glazeID)
	require.Len(t, g.Brands, 1)
	assert.Equal(t, "Mayco", g.Brands[0].Name)

	f.apply(f.plan.UpdateGlaze(g, planner.GlazeInput{Name: "Walt II", Variant: domain.VariantDip}))
	g = f.glazeDetail(glazeID)
	assert.Equal(t, "Walt II", g.Name)
	assert.Empty(t, g.Brands)
}

func TestCreateCombo_NamesFromLayers(t *testing.T) {
	f := setup(t)
	a := f.glaze("A", domain.VariantDip)
	b := f.glaze("B", domain.VariantBrush)

	comboID := f.apply(f.plan.CreateCombo(planner.ComboInput{
		Base:  &planner.LayerInput{Glaze: &a, Layers: 1},
		Layer: &planner.LayerInput{Glaze: &b, Layers: 2},
	}))

	c := f.combo(comboID)
	assert.Equal(t, "A/B 2x", c.Name)
	assert.Equal(t, "A, B 2x", c.Description)
	base, ok := c.Base()
	require.True(t, ok)
	g, _ := base.Glaze()
	assert.Equal(t, "A", g.Name)
	extra, ok := c.Additional()
	require.True(t, ok)
	assert.Equal(t, 2, extra.Layers)
}

func TestCreateCombo_RequiresBothLayers(t *testing.T) {
	f := setup(t)
	a := f.glaze("A", domain.VariantDip)

	_, err := f.plan.CreateCombo(planner.ComboInput{Base: &planner.LayerInput{Glaze: &a}})
	require.ErrorIs(t, err, domainerrors.ErrValidation)
	assert.Equal(t, validation.MissingFieldsMessage, domainerrors.UserMessage(err))
}

func TestDipLayerCap(t *testing.T) {
	f := setup(t)
	dip := f.glaze("Lotta", domain.VariantDip)
	brush := f.glaze("Rainforest", domain.VariantBrush)

	_, err := f.plan.CreateCombo(planner.ComboInput{
		Base:  &planner.LayerInput{Glaze: &dip, Layers: 2},
		Layer: &planner.LayerInput{Glaze: &brush, Layers: 3},
	})
	require.ErrorIs(t, err, domainerrors.ErrValidation)
	assert.Contains(t, domainerrors.UserMessage(err), "Dipping")

	_, err = f.plan.CreatePiece(planner.PieceInput{
		Outer: query.GlazeSelection{Layers: 2, Glaze: dip},
		Image: &planner.ImageInput{CacheURI: "cache://p.jpg"},
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = f.plan.CreatePiece(planner.PieceInput{
		Outer: query.GlazeSelection{Layers: 3, Glaze: brush},
		Image: &planner.ImageInput{CacheURI: "cache://p.jpg"},
	})
	assert.NoError(t, err)
}

func TestUpdateCombo_ReusesApplications(t *testing.T) {
	f := setup(t)
	a := f.glaze("A", domain.VariantDip)
	b := f.glaze("B", domain.VariantDip)
	c := f.glaze("C", domain.VariantBrush)
	comboID := f.apply(f.plan.CreateCombo(planner.ComboInput{
		Base:  &planner.LayerInput{Glaze: &a},
		Layer: &planner.LayerInput{Glaze: &b},
	}))
	before := f.combo(comboID)
	base, _ := before.Base()
	extra, _ := before.Additional()

	f.apply(f.plan.UpdateCombo(before, planner.ComboInput{
		Base:  &planner.LayerInput{ApplicationID: base.ID, Glaze: &a},
		Layer: &planner.LayerInput{ApplicationID: extra.ID, Glaze: &c, Layers: 2},
	}))

	after := f.combo(comboID)
	assert.Equal(t, "A/C 2x", after.Name)
	require.Len(t, after.Applications, 2)
	newExtra, ok := after.Additional()
	require.True(t, ok)
	assert.Equal(t, extra.ID, newExtra.ID)
	require.Len(t, newExtra.Glazes, 1, "old glaze edge removed")
	assert.Equal(t, "C", newExtra.Glazes[0].Name)

	n, err := f.store.Count(f.ctx, domain.KindApplications)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCreatePiece_UniformStoresOneOuterPart(t *testing.T) {
	f := setup(t)
	a := f.glaze("A", domain.VariantDip)
	b := f.glaze("B", domain.VariantDip)
	comboID := f.apply(f.plan.CreateCombo(planner.ComboInput{
		Base:  &planner.LayerInput{Glaze: &a},
		Layer: &planner.LayerInput{Glaze: &b},
	}))
	combo := f.combo(comboID)

	pieceID := f.apply(f.plan.CreatePiece(planner.PieceInput{
		Outer:   query.ComboSelection{Location: domain.LocationInner, Combo: combo},
		Inner:   query.GlazeSelection{Layers: 1, Glaze: a},
		Uniform: true,
		Image:   &planner.ImageInput{CacheURI: "cache://mug.jpg"},
	}))

	p := f.piece(pieceID)
	require.Len(t, p.Parts, 1)
	assert.Equal(t, domain.LocationOuter, p.Parts[0].Location)
	assert.Equal(t, domain.PartTypeCombo, p.Parts[0].Type)
	assert.True(t, p.IsUniform())
	require.NotNil(t, p.DefaultImageURI)
	assert.Equal(t, "cache://mug.jpg", *p.DefaultImageURI)

	detail := f.combo(comboID)
	require.Len(t, detail.Pieces, 1)
	assert.Equal(t, pieceID, detail.Pieces[0].ID)
}

func TestCreatePiece_RequiresImageAndOuter(t *testing.T) {
	f := setup(t)
	a := f.glaze("A", domain.VariantDip)

	_, err := f.plan.CreatePiece(planner.PieceInput{Outer: query.GlazeSelection{Glaze: a}})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = f.plan.CreatePiece(planner.PieceInput{Image: &planner.ImageInput{CacheURI: "x"}})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestUpdatePiece_ReplacesPartsWithFreshIDs(t *testing.T) {
	f := setup(t)
	a := f.glaze("A", domain.VariantDip)
	b := f.glaze("B", domain.VariantBrush)
	pieceID := f.apply(f.plan.CreatePiece(planner.PieceInput{
		Outer: query.GlazeSelection{Glaze: a, Layers: 1},
		Inner: query.GlazeSelection{Glaze: b, Layers: 2},
		Image: &planner.ImageInput{CacheURI: "cache://bowl.jpg"},
	}))
	before := f.piece(pieceID)
	require.Len(t, before.Parts, 2)
	oldIDs := map[string]bool{before.Parts[0].ID: true, before.Parts[1].ID: true}

	f.apply(f.plan.UpdatePiece(before, planner.PieceInput{
		Outer: query.GlazeSelection{Glaze: b, Layers: 3},
		Inner: query.GlazeSelection{Glaze: a, Layers: 1},
	}))

	after := f.piece(pieceID)
	require.Len(t, after.Parts, 2)
	for _, part := range after.Parts {
		assert.False(t, oldIDs[part.ID], "part %s was reused", part.ID)
	}
	outer, ok := after.Outer()
	require.True(t, ok)
	sel := outer.(query.GlazeSelection)
	assert.Equal(t, "B", sel.Glaze.Name)
	assert.Equal(t, 3, sel.Layers)

	n, err := f.store.Count(f.ctx, domain.KindParts)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "old parts deleted")
}

func TestUpdatePiece_UnlinksDroppedGlaze(t *testing.T) {
	f := setup(t)
	a := f.glaze("A", domain.VariantDip)
	b := f.glaze("B", domain.VariantDip)
	pieceID := f.apply(f.plan.CreatePiece(planner.PieceInput{
		Outer: query.GlazeSelection{Glaze: a},
		Image: &planner.ImageInput{CacheURI: "cache://x.jpg"},
	}))

	f.apply(f.plan.UpdatePiece(f.piece(pieceID), planner.PieceInput{Outer: query.GlazeSelection{Glaze: b}}))

	assert.Empty(t, f.glazeDetail(a.ID).Pieces)
	assert.Len(t, f.glazeDetail(b.ID).Pieces, 1)
}

func TestRemoveImage_OnlyImageClearsDefault(t *testing.T) {
	f := setup(t)
	glazeID := f.apply(f.plan.CreateGlaze(planner.GlazeInput{
		Name: "Guido", Variant: domain.VariantDip,
		Image: &planner.ImageInput{CacheURI: "cache://g.jpg"},
	}))
	g := f.glazeDetail(glazeID)
	require.Len(t, g.Images, 1)

	f.apply(f.plan.RemoveImage(planner.GlazeOwner(g), g.Images[0]))

	after := f.glazeDetail(glazeID)
	assert.Empty(t, after.Images)
	assert.Nil(t, after.DefaultImageURI)

	_, err := f.plan.RemoveImage(planner.GlazeOwner(after), g.Images[0])
	assert.ErrorIs(t, err, planner.ErrNoop)
}

func TestRemoveImage_ReassignsDefault(t *testing.T) {
	f := setup(t)
	glazeID := f.apply(f.plan.CreateGlaze(planner.GlazeInput{
		Name: "Khalil", Variant: domain.VariantDip,
		Image: &planner.ImageInput{CacheURI: "cache://1.jpg"},
	}))
	f.apply(f.plan.AddImage(planner.GlazeOwner(f.glazeDetail(glazeID)), planner.ImageInput{CacheURI: "cache://2.jpg"}))

	g := f.glazeDetail(glazeID)
	require.Len(t, g.Images, 2)
	require.Equal(t, "cache://1.jpg", *g.DefaultImageURI, "second image does not replace the default")

	var first domain.Image
	for _, img := range g.Images {
		if img.URI == "cache://1.jpg" {
			first = img
		}
	}
	f.apply(f.plan.RemoveImage(planner.GlazeOwner(g), first))

	after := f.glazeDetail(glazeID)
	require.Len(t, after.Images, 1)
	require.NotNil(t, after.DefaultImageURI)
	assert.Equal(t, "cache://2.jpg", *after.DefaultImageURI)
}

func TestAddImage_DedupesByCacheURI(t *testing.T) {
	f := setup(t)
	glazeID := f.apply(f.plan.CreateGlaze(planner.GlazeInput{
		Name: "Lotta", Variant: domain.VariantDip,
		Image: &planner.ImageInput{CacheURI: "cache://l.jpg"},
	}))

	_, err := f.plan.AddImage(planner.GlazeOwner(f.glazeDetail(glazeID)), planner.ImageInput{CacheURI: "cache://l.jpg"})
	assert.ErrorIs(t, err, planner.ErrNoop)
}

func TestSetDefaultImage(t *testing.T) {
	f := setup(t)
	glazeID := f.apply(f.plan.CreateGlaze(planner.GlazeInput{
		Name: "Lotta", Variant: domain.VariantDip,
		Image: &planner.ImageInput{CacheURI: "cache://1.jpg"},
	}))
	f.apply(f.plan.AddImage(planner.GlazeOwner(f.glazeDetail(glazeID)), planner.ImageInput{CacheURI: "cache://2.jpg"}))
	g := f.glazeDetail(glazeID)

	var second domain.Image
	for _, img := range g.Images {
		if img.URI == "cache://2.jpg" {
			second = img
		}
	}
	f.apply(f.plan.SetDefaultImage(planner.GlazeOwner(g), second))
	assert.Equal(t, "cache://2.jpg", *f.glazeDetail(glazeID).DefaultImageURI)

	_, err := f.plan.SetDefaultImage(planner.GlazeOwner(g), domain.Image{Record: domain.Record{ID: "other"}})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestUpdateTags_Diff(t *testing.T) {
	f := setup(t)
	runny := f.apply(f.plan.CreateTag(planner.TagInput{Name: "Runny", Rank: 1}))
	stable := f.apply(f.plan.CreateTag(planner.TagInput{Name: "Stable", Rank: 2}))
	glazeID := f.glaze("Whiplash", domain.VariantDip).ID

	f.apply(f.plan.UpdateTags(planner.GlazeOwner(f.glazeDetail(glazeID)), []string{runny}))
	require.Len(t, f.glazeDetail(glazeID).Tags, 1)

	p, err := f.plan.UpdateTags(planner.GlazeOwner(f.glazeDetail(glazeID)), []string{stable})
	require.NoError(t, err)
	assert.Equal(t, 2, p.Batch.Len())
	f.apply(p, nil)

	tags := f.glazeDetail(glazeID).Tags
	require.Len(t, tags, 1)
	assert.Equal(t, "Stable", tags[0].Name)
	require.NotNil(t, tags[0].Color)
	assert.Equal(t, color.ForTag("Stable"), *tags[0].Color)

	_, err = f.plan.UpdateTags(planner.GlazeOwner(f.glazeDetail(glazeID)), []string{stable})
	assert.ErrorIs(t, err, planner.ErrNoop)
}

func TestSetFavoriteAndNotes(t *testing.T) {
	f := setup(t)
	g := f.glaze("Walt", domain.VariantDip)
	owner := planner.GlazeOwner(query.GlazeResponse{Glaze: g})

	f.apply(f.plan.SetFavorite(owner, true))
	f.apply(f.plan.UpdateNotes(owner, "runs on verticals"))

	got := f.glazeDetail(g.ID)
	assert.True(t, got.IsFavorite)
	assert.Equal(t, "runs on verticals", got.Notes)

	_, err := f.plan.SetFavorite(planner.Owner{Kind: domain.KindTags, ID: "t"}, true)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestDeleteCombo_Cascades(t *testing.T) {
	f := setup(t)
	a := f.glaze("A", domain.VariantDip)
	b := f.glaze("B", domain.VariantDip)
	comboID := f.apply(f.plan.CreateCombo(planner.ComboInput{
		Base:  &planner.LayerInput{Glaze: &a},
		Layer: &planner.LayerInput{Glaze: &b},
		Image: &planner.ImageInput{CacheURI: "cache://c.jpg"},
	}))
	combo := f.combo(comboID)
	pieceID := f.apply(f.plan.CreatePiece(planner.PieceInput{
		Outer: query.ComboSelection{Combo: combo},
		Image: &planner.ImageInput{CacheURI: "cache://p.jpg"},
	}))

	apps, err := f.store.Combos.LinkedIDs(f.ctx, comboID, "applications")
	require.NoError(t, err)
	images, err := f.store.Combos.LinkedIDs(f.ctx, comboID, "images")
	require.NoError(t, err)
	parts, err := f.store.Combos.LinkedIDs(f.ctx, comboID, "parts")
	require.NoError(t, err)

	f.apply(f.plan.DeleteCombo(comboID, planner.Dependents{Images: images, Applications: apps, Parts: parts}))

	for kind, want := range map[domain.Kind]int{
		domain.KindCombos:       0,
		domain.KindApplications: 0,
		domain.KindParts:        0,
		domain.KindImages:       1,
		domain.KindGlazes:       2,
	} {
		n, err := f.store.Count(f.ctx, kind)
		require.NoError(t, err)
		assert.Equal(t, want, n, kind)
	}
	assert.Empty(t, f.piece(pieceID).Parts)
}

func TestDeletePiece_BatchOrder(t *testing.T) {
	p := planner.New(id.Sequence("x"), nil)
	plan, err := p.DeletePiece("p1", planner.Dependents{Images: []string{"i1"}, Parts: []string{"pp1"}, Applications: []string{"ignored"}})
	require.NoError(t, err)

	ops := plan.Batch.Ops()
	require.Len(t, ops, 3)
	assert.Equal(t, tx.Op{Action: tx.ActionDelete, Kind: domain.KindParts, ID: "pp1"}, ops[0])
	assert.Equal(t, tx.Op{Action: tx.ActionDelete, Kind: domain.KindImages, ID: "i1"}, ops[1])
	assert.Equal(t, tx.Op{Action: tx.ActionDelete, Kind: domain.KindPieces, ID: "p1"}, ops[2])

	_, err = p.DeleteGlaze(query.GlazeResponse{}, planner.Dependents{})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestCreateCombo_UsesGivenApplicationIDs(t *testing.T) {
	f := setup(t)
	a := f.glaze("A", domain.VariantDip)
	b := f.glaze("B", domain.VariantBrush)

	comboID := f.apply(f.plan.CreateCombo(planner.ComboInput{
		Base:  &planner.LayerInput{ApplicationID: "app-base", Glaze: &a},
		Layer: &planner.LayerInput{ApplicationID: "app-extra", Glaze: &b, Layers: 2},
	}))

	c := f.combo(comboID)
	base, ok := c.Base()
	require.True(t, ok)
	assert.Equal(t, "app-base", base.ID)
	extra, ok := c.Additional()
	require.True(t, ok)
	assert.Equal(t, "app-extra", extra.ID)
}

func TestUpdateGlaze_DipRejectedWhileLayered(t *testing.T) {
	f := setup(t)
	a := f.glaze("A", domain.VariantDip)
	b := f.glaze("B", domain.VariantBrush)
	c := f.glaze("C", domain.VariantBrush)
	f.apply(f.plan.CreateCombo(planner.ComboInput{
		Base:  &planner.LayerInput{Glaze: &a},
		Layer: &planner.LayerInput{Glaze: &b, Layers: 2},
	}))
	f.apply(f.plan.CreatePiece(planner.PieceInput{
		Outer: query.GlazeSelection{Glaze: a},
		Inner: query.GlazeSelection{Glaze: c, Layers: 3},
		Image: &planner.ImageInput{CacheURI: "cache://cup.jpg"},
	}))

	current := f.glazeEdit(b.ID)
	require.Len(t, current.Applications, 1)
	_, err := f.plan.UpdateGlaze(current, planner.GlazeInput{Name: "B", Variant: domain.VariantDip})
	require.ErrorIs(t, err, domainerrors.ErrValidation)
	assert.Contains(t, domainerrors.UserMessage(err), "Dipping")

	current = f.glazeEdit(c.ID)
	require.Len(t, current.Parts, 1)
	_, err = f.plan.UpdateGlaze(current, planner.GlazeInput{Name: "C", Variant: domain.VariantDip})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	f.apply(f.plan.UpdateGlaze(f.glazeEdit(b.ID), planner.GlazeInput{Name: "B2", Variant: domain.VariantBrush}))
	assert.Equal(t, domain.VariantBrush, f.glazeDetail(b.ID).Variant)
	assert.Equal(t, "B2", f.glazeDetail(b.ID).Name)

	// A single coat can become a dip.
	f.apply(f.plan.UpdateGlaze(f.glazeEdit(a.ID), planner.GlazeInput{Name: "A", Variant: domain.VariantBrush}))
	f.apply(f.plan.UpdateGlaze(f.glazeEdit(a.ID), planner.GlazeInput{Name: "A", Variant: domain.VariantDip}))
	assert.Equal(t, domain.VariantDip, f.glazeDetail(a.ID).Variant)
}

func TestDeleteGlaze_RefusedWhileCombinedOrOutside(t *testing.T) {
	f := setup(t)
	a := f.glaze("A", domain.VariantDip)
	b := f.glaze("B", domain.VariantDip)
	c := f.glaze("C", domain.VariantDip)
	f.apply(f.plan.CreateCombo(planner.ComboInput{
		Base:  &planner.LayerInput{Glaze: &a},
		Layer: &planner.LayerInput{Glaze: &b},
	}))
	f.apply(f.plan.CreatePiece(planner.PieceInput{
		Outer: query.GlazeSelection{Glaze: c},
		Image: &planner.ImageInput{CacheURI: "cache://vase.jpg"},
	}))

	for _, g := range []domain.Glaze{a, c} {
		_, err := f.plan.DeleteGlaze(f.glazeEdit(g.ID), planner.Dependents{})
		assert.ErrorIs(t, err, domainerrors.ErrValidation, g.Name)
	}

	for kind, want := range map[domain.Kind]int{
		domain.KindGlazes:       3,
		domain.KindApplications: 2,
		domain.KindParts:        1,
	} {
		n, err := f.store.Count(f.ctx, kind)
		require.NoError(t, err)
		assert.Equal(t, want, n, kind)
	}
}

func TestDeleteGlaze_RemovesInnerParts(t *testing.T) {
	f := setup(t)
	a := f.glaze("A", domain.VariantDip)
	glazeID := f.apply(f.plan.CreateGlaze(planner.GlazeInput{
		Name: "C", Variant: domain.VariantDip,
		Image: &planner.ImageInput{CacheURI: "cache://c.jpg"},
	}))
	pieceID := f.apply(f.plan.CreatePiece(planner.PieceInput{
		Outer: query.GlazeSelection{Glaze: a},
		Inner: query.GlazeSelection{Glaze: f.glazeDetail(glazeID).Glaze},
		Image: &planner.ImageInput{CacheURI: "cache://bowl.jpg"},
	}))
	require.Len(t, f.piece(pieceID).Parts, 2)

	current := f.glazeEdit(glazeID)
	images, err := f.store.Glazes.LinkedIDs(f.ctx, glazeID, "images")
	require.NoError(t, err)
	f.apply(f.plan.DeleteGlaze(current, planner.Dependents{Images: images}))

	p := f.piece(pieceID)
	require.Len(t, p.Parts, 1)
	assert.Equal(t, domain.LocationOuter, p.Parts[0].Location)
	assert.True(t, p.IsUniform())

	for kind, want := range map[domain.Kind]int{
		domain.KindGlazes: 1,
		domain.KindParts:  1,
		domain.KindImages: 1,
	} {
		n, err := f.store.Count(f.ctx, kind)
		require.NoError(t, err)
		assert.Equal(t, want, n, kind)
	}

	report, err := integrity.Check(f.ctx, f.store)
	require.NoError(t, err)
	assert.True(t, report.OK(), "%+v", report.Violations)
}

func TestRemoveImage_SharedURIKeepsDefault(t *testing.T) {
	f := setup(t)
	glazeID := f.apply(f.plan.CreateGlaze(planner.GlazeInput{
		Name: "Guido", Variant: domain.VariantDip,
		Image: &planner.ImageInput{CacheURI: "cache://1.jpg", LocalURI: strPtr("file://same.jpg")},
	}))
	f.apply(f.plan.AddImage(planner.GlazeOwner(f.glazeDetail(glazeID)),
		planner.ImageInput{CacheURI: "cache://2.jpg", LocalURI: strPtr("file://same.jpg")}))

	g := f.glazeDetail(glazeID)
	require.Len(t, g.Images, 2)
	require.Equal(t, "file://same.jpg", *g.DefaultImageURI)

	plan, err := f.plan.RemoveImage(planner.GlazeOwner(g), g.Images[0])
	require.NoError(t, err)
	assert.Equal(t, 1, plan.Batch.Len())
	f.apply(plan, nil)

	after := f.glazeDetail(glazeID)
	require.Len(t, after.Images, 1)
	require.NotNil(t, after.DefaultImageURI)
	assert.Equal(t, "file://same.jpg", *after.DefaultImageURI)

	report, err := integrity.Check(f.ctx, f.store)
	require.NoError(t, err)
	assert.True(t, report.OK(), "%+v", report.Violations)
}

func TestRemoveImage_NonDefaultLeavesDefault(t *testing.T) {
	f := setup(t)
	glazeID := f.apply(f.plan.CreateGlaze(planner.GlazeInput{
		Name: "Walt", Variant: domain.VariantDip,
		Image: &planner.ImageInput{CacheURI: "cache://1.jpg"},
	}))
	f.apply(f.plan.AddImage(planner.GlazeOwner(f.glazeDetail(glazeID)), planner.ImageInput{CacheURI: "cache://2.jpg"}))
	g := f.glazeDetail(glazeID)

	var second domain.Image
	for _, img := range g.Images {
		if img.URI == "cache://2.jpg" {
			second = img
		}
	}
	plan, err := f.plan.RemoveImage(planner.GlazeOwner(g), second)
	require.NoError(t, err)
	ops := plan.Batch.Ops()
	require.Len(t, ops, 1)
	assert.Equal(t, tx.Op{Action: tx.ActionDelete, Kind: domain.KindImages, ID: second.ID}, ops[0])
	f.apply(plan, nil)

	after := f.glazeDetail(glazeID)
	require.Len(t, after.Images, 1)
	require.NotNil(t, after.DefaultImageURI)
	assert.Equal(t, "cache://1.jpg", *after.DefaultImageURI)
}
