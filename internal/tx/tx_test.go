package tx

import (
	"testing"

	"github.com/glazepal/glazepal/internal/domain"
	domainerrors "github.com/glazepal/glazepal/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatch_BuildsInOrder(t *testing.T) {
	b := New().
		Create(domain.KindParts, "part-1", Attrs{domain.AttrLocation: "outer"}).
		Link(domain.KindPieces, "piece-1", "parts", "part-1").
		Delete(domain.KindParts, "part-0")

	ops := b.Ops()
	require.Len(t, ops, 3)
	assert.Equal(t, ActionCreate, ops[0].Action)
	assert.Equal(t, ActionLink, ops[1].Action)
	assert.Equal(t, "link pieces/piece-1.parts->part-1", ops[1].String())
	assert.Equal(t, ActionDelete, ops[2].Action)
	assert.NoError(t, b.Validate())
}

func TestBatch_CopiesAttrs(t *testing.T) {
	attrs := Attrs{domain.AttrName: "Lotta"}
	b := New().Update(domain.KindGlazes, "g1", attrs)
	attrs[domain.AttrName] = "changed"

	assert.Equal(t, "Lotta", b.Ops()[0].Attrs[domain.AttrName])
}

func TestBatch_Validate(t *testing.T) {
	tests := []struct {
		name  string
		batch *Batch
	}{
		{"unknown kind", New().Create("users", "u1", nil)},
		{"empty id", New().Update(domain.KindGlazes, " ", nil)},
		{"unknown label", New().Link(domain.KindBrands, "b1", "pieces", "p1")},
		{"empty target", New().Unlink(domain.KindGlazes, "g1", "tags", "")},
		{"reserved attr", New().Update(domain.KindGlazes, "g1", Attrs{domain.AttrID: "x"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.batch.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrTransaction)
		})
	}
}

func TestBatch_Kinds(t *testing.T) {
	b := New().
		Update(domain.KindCombos, "c1", nil).
		Link(domain.KindApplications, "a1", "glazes", "g1")

	assert.ElementsMatch(t,
		[]domain.Kind{domain.KindCombos, domain.KindApplications, domain.KindGlazes},
		b.Kinds())
}

func TestBatch_Append(t *testing.T) {
	a := New().Delete(domain.KindImages, "i1")
	b := New().Update(domain.KindGlazes, "g1", Attrs{domain.AttrDefaultImageURI: nil})

	a.Append(b).Append(nil)
	assert.Equal(t, 2, a.Len())
	assert.False(t, a.Empty())
	assert.True(t, New().Empty())
}
