package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelations_AreSymmetric(t *testing.T) {
	for _, kind := range Kinds {
		for _, r := range RelationsOf(kind) {
			back, ok := LookupRelation(r.To, r.Reverse)
			require.True(t, ok, "missing reverse of %s.%s", r.From, r.Label)
			assert.Equal(t, r.From, back.To)
			assert.Equal(t, r.Label, back.Reverse)
		}
	}
}

func TestLookupRelation(t *testing.T) {
	r, ok := LookupRelation(KindApplications, "glazes")
	require.True(t, ok)
	assert.Equal(t, KindGlazes, r.To)
	assert.Equal(t, "applications", r.Reverse)

	_, ok = LookupRelation(KindBrands, "pieces")
	assert.False(t, ok)
}

func TestKind_Valid(t *testing.T) {
	assert.True(t, KindParts.Valid())
	assert.False(t, Kind("users").Valid())
}

func TestVariant_AllowsLayers(t *testing.T) {
	tests := []struct {
		variant Variant
		layers  int
		want    bool
	}{
		{VariantDip, 1, true},
		{VariantDip, 3, false},
		{VariantBrush, 1, true},
		{VariantBrush, 3, true},
		{VariantBrush, 0, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.variant.AllowsLayers(tt.layers), "%s x%d", tt.variant, tt.layers)
	}
}

func TestRecord_Recency(t *testing.T) {
	created := time.UnixMilli(1000)
	updated := time.UnixMilli(5000)

	assert.Equal(t, int64(0), Record{}.Recency())
	assert.Equal(t, int64(1000), Record{CreatedAt: created}.Recency())
	assert.Equal(t, int64(5000), Record{CreatedAt: created, UpdatedAt: updated}.Recency())
}

func TestResolveImageURI(t *testing.T) {
	local := "file:///local.jpg"
	public := "https://cdn/x.jpg"
	empty := ""

	assert.Equal(t, public, ResolveImageURI("cache", &local, &public))
	assert.Equal(t, local, ResolveImageURI("cache", &local, nil))
	assert.Equal(t, "cache", ResolveImageURI("cache", &empty, nil))
}
