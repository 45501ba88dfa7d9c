package filter

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/glazepal/glazepal/internal/domain"
	"github.com/glazepal/glazepal/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	runny  = domain.Tag{Record: domain.Record{ID: "t-runny"}, Name: "Runny", Rank: 1}
	stable = domain.Tag{Record: domain.Record{ID: "t-stable"}, Name: "Stable", Rank: 2}
	like   = domain.Tag{Record: domain.Record{ID: "t-like"}, Name: "Like", Rank: 4}
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func at(minutes int) domain.Record {
	ts := epoch.Add(time.Duration(minutes) * time.Minute)
	return domain.Record{ID: ts.Format("150405"), CreatedAt: ts, UpdatedAt: ts}
}

func glazeResp(id, name string, v domain.Variant, tags ...domain.Tag) query.GlazeResponse {
	return query.GlazeResponse{
		Glaze: domain.Glaze{Record: domain.Record{ID: id}, Name: name, Variant: v},
		Tags:  append([]domain.Tag{}, tags...),
	}
}

func comboResp(rec domain.Record, name string, tags ...domain.Tag) query.ComboResponse {
	return query.ComboResponse{
		Combo: domain.Combo{Record: rec, Name: name},
		Tags:  append([]domain.Tag{}, tags...),
	}
}

func catalog() query.GlazesBrowse {
	return query.GlazesBrowse{
		Glazes: []query.GlazeResponse{
			glazeResp("g1", "whiplash", domain.VariantDip, runny),
			glazeResp("g2", "Northern Woods", domain.VariantBrush, stable),
			glazeResp("g3", "Lotta", domain.VariantDip, runny, like),
			glazeResp("g4", "Éclair", domain.VariantBrush),
		},
		Combos: []query.ComboResponse{
			comboResp(at(1), "Lotta/Khalil", runny),
			comboResp(at(5), "Guido/Walt", like),
		},
		Tags: []domain.Tag{runny, stable, like},
	}
}

func names(glazes []query.GlazeResponse) []string {
	out := make([]string, 0, len(glazes))
	for _, g := range glazes {
		out = append(out, g.Name)
	}
	return out
}

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "lotta", NormalizeQuery("  LoTTa "))
	assert.Equal(t, "", NormalizeQuery("   "))
}

func TestGlazes_SortedByNameWithoutFilters(t *testing.T) {
	res := GlazesBrowse(catalog(), State{})
	assert.Equal(t, []string{"Éclair", "Lotta", "Northern Woods", "whiplash"}, names(res.Glazes))
	assert.Empty(t, res.Combos, "combos only show while searching or filtering")
	assert.NotNil(t, res.Combos)
}

func TestGlazes_QueryMatchesVariantAndTags(t *testing.T) {
	res := GlazesBrowse(catalog(), State{Query: "DIP"})
	assert.Equal(t, []string{"Lotta", "whiplash"}, names(res.Glazes))
	assert.Empty(t, res.Combos)

	res = GlazesBrowse(catalog(), State{Query: "runny"})
	assert.Equal(t, []string{"Lotta", "whiplash"}, names(res.Glazes))
	require.Len(t, res.Combos, 1)
	assert.Equal(t, "Lotta/Khalil", res.Combos[0].Name)
}

func TestGlazes_VariantFilter(t *testing.T) {
	res := GlazesBrowse(catalog(), State{Variant: domain.VariantBrush})
	assert.Equal(t, []string{"Éclair", "Northern Woods"}, names(res.Glazes))
	// Variant does not apply to combos, but an active filter shows them.
	assert.Len(t, res.Combos, 2)
	assert.Equal(t, "Guido/Walt", res.Combos[0].Name, "newest first")

	res = GlazesBrowse(catalog(), State{Variant: VariantAll})
	assert.Len(t, res.Glazes, 4)
	assert.Empty(t, res.Combos)
}

func TestGlazes_TagFilterIsMonotonic(t *testing.T) {
	view := catalog()
	prev := GlazesBrowse(view, State{}).Len() + len(view.Combos)
	var tags []domain.Tag
	for _, tag := range []domain.Tag{runny, like, stable} {
		tags = append(tags, tag)
		n := GlazesBrowse(view, State{Tags: tags}).Len()
		assert.LessOrEqual(t, n, prev, "adding %s grew the result", tag.Name)
		prev = n
	}
	assert.Zero(t, prev)
}

func TestGlazes_DoesNotMutateInput(t *testing.T) {
	view := catalog()
	_ = GlazesBrowse(view, State{Query: "o"})
	assert.Equal(t, "whiplash", view.Glazes[0].Name)
	assert.Equal(t, "Lotta/Khalil", view.Combos[0].Name)
}

func TestPieces_InheritTagsFromGlazesAndCombos(t *testing.T) {
	bowl := query.PieceResponse{
		Piece:  domain.Piece{Record: at(1), Name: "Bowl"},
		Glazes: []query.GlazeResponse{glazeResp("g1", "Whiplash", domain.VariantDip, runny)},
		Combos: []query.ComboResponse{},
		Tags:   []domain.Tag{},
	}
	mug := query.PieceResponse{
		Piece:  domain.Piece{Record: at(2), Name: "Mug", Notes: "cracked"},
		Glazes: []query.GlazeResponse{},
		Combos: []query.ComboResponse{comboResp(at(0), "Guido/Walt", like)},
		Tags:   []domain.Tag{stable},
	}
	pieces := []query.PieceResponse{bowl, mug}

	got := Pieces(pieces, State{Tags: []domain.Tag{runny}})
	require.Len(t, got, 1)
	assert.Equal(t, "Bowl", got[0].Name)

	got = Pieces(pieces, State{Tags: []domain.Tag{like, stable}})
	require.Len(t, got, 1)
	assert.Equal(t, "Mug", got[0].Name)

	got = Pieces(pieces, State{Query: "walt"})
	require.Len(t, got, 1)
	assert.Equal(t, "Mug", got[0].Name)

	got = Pieces(pieces, State{})
	require.Len(t, got, 2)
	assert.Equal(t, "Mug", got[0].Name, "newest first")
}

func TestFavorites_OnlyOwnTags(t *testing.T) {
	view := query.Favorites{
		Pieces: []query.PieceResponse{{
			Piece:  domain.Piece{Record: at(1), Name: "Vase"},
			Glazes: []query.GlazeResponse{glazeResp("g1", "Whiplash", domain.VariantDip, runny)},
			Tags:   []domain.Tag{},
		}},
		Glazes: []query.GlazeResponse{glazeResp("g2", "b", domain.VariantDip), glazeResp("g3", "A", domain.VariantDip)},
	}

	got := Favorites(view, State{Tags: []domain.Tag{runny}})
	assert.Empty(t, got.Pieces)
	assert.NotNil(t, got.Combos)
	assert.Equal(t, []string{"A", "b"}, names(got.Glazes))

	got = Favorites(view, State{Query: "vase"})
	assert.Len(t, got.Pieces, 1)
}

func TestItemsAndRemove(t *testing.T) {
	s := State{Variant: domain.VariantDip, Tags: []domain.Tag{runny, like}}
	items := Items(s)
	require.Len(t, items, 3)
	assert.Equal(t, Item{Type: ItemVariant, Label: "Dipping glaze", Value: "dip"}, items[0])
	assert.Equal(t, Item{Type: ItemTag, Label: "Runny", Value: "t-runny"}, items[1])

	s2 := s.Remove(items[1])
	assert.Len(t, s2.Tags, 1)
	assert.Len(t, s.Tags, 2, "remove returns a copy")

	s3 := s2.Remove(items[0])
	assert.False(t, s3.FiltersVariant())
	assert.Len(t, Items(s3), 1)
}

func TestState_JSON(t *testing.T) {
	s := State{Query: "lotta", Variant: domain.VariantBrush, Tags: []domain.Tag{runny}}
	data, err := json.Marshal(s)
	require.NoError(t, err)

	var got State
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, s.Query, got.Query)
	assert.Equal(t, s.Variant, got.Variant)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "t-runny", got.Tags[0].ID)
}
