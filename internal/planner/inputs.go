package planner

import (
	"strings"

	"github.com/glazepal/glazepal/internal/domain"
	"github.com/glazepal/glazepal/internal/query"
)

// ImageInput is a picked image after its sources have been resolved.
type ImageInput struct {
	CacheURI  string  `json:"cacheUri" validate:"required"`
	LocalURI  *string `json:"localUri"`
	PublicURI *string `json:"publicUri"`
	BlurHash  string  `json:"blurHash"`
}

// URI is the display URI: public, then local, then cache.
func (i ImageInput) URI() string {
	return domain.ResolveImageURI(i.CacheURI, i.LocalURI, i.PublicURI)
}

// GlazeInput is the glaze form.
type GlazeInput struct {
	Name        string         `json:"name" validate:"required,max=200"`
	Description string         `json:"description" validate:"max=2000"`
	Variant     domain.Variant `json:"variant" validate:"required,variant"`
	BrandID     string         `json:"brandId"`
	Image       *ImageInput    `json:"image"`
}

func (in GlazeInput) trimmed() GlazeInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Variant = domain.Variant(strings.TrimSpace(string(in.Variant)))
	return in
}

// LayerInput is one glaze slot of the combo form. ApplicationID names the
// application being edited; it is empty for a new layer.
type LayerInput struct {
	ApplicationID string        `json:"applicationId"`
	Glaze         *domain.Glaze `json:"glaze" validate:"required"`
	Layers        int           `json:"layers" validate:"gte=0"`
}

func (l *LayerInput) layers() int {
	if l.Layers == 0 {
		return 1
	}
	return l.Layers
}

// ComboInput is the combo form: a base layer and one additional layer.
type ComboInput struct {
	Base  *LayerInput `json:"base" validate:"required"`
	Layer *LayerInput `json:"layer" validate:"required"`
	Image *ImageInput `json:"image"`
}

// PieceInput is the piece form. When Uniform is set the inner selection is
// ignored and the outer one covers the whole piece.
type PieceInput struct {
	Name    string          `json:"name" validate:"max=200"`
	Notes   string          `json:"notes"`
	Outer   query.GlazePart `json:"outer" validate:"required"`
	Inner   query.GlazePart `json:"inner"`
	Uniform bool            `json:"uniform"`
	Image   *ImageInput     `json:"image"`
}

// slots returns the parts to store, each placed at its slot's location.
func (in PieceInput) slots() []query.GlazePart {
	out := []query.GlazePart{query.Relocate(in.Outer, domain.LocationOuter)}
	if !in.Uniform && in.Inner != nil {
		out = append(out, query.Relocate(in.Inner, domain.LocationInner))
	}
	return out
}

// TagInput is a new tag.
type TagInput struct {
	Name  string  `json:"name" validate:"required,max=100"`
	Rank  int     `json:"rank" validate:"gte=0"`
	Color *string `json:"color"`
}

// Owner is a glaze, combo or piece as seen by the edits they share:
// images, tags, favorite and notes.
type Owner struct {
	Kind            domain.Kind
	ID              string
	DefaultImageURI *string
	Images          []domain.Image
	Tags            []domain.Tag
}

// GlazeOwner returns the shared-edit view of a glaze.
func GlazeOwner(g query.GlazeResponse) Owner {
	return Owner{Kind: domain.KindGlazes, ID: g.ID, DefaultImageURI: g.DefaultImageURI, Images: g.Images, Tags: g.Tags}
}

// ComboOwner returns the shared-edit view of a combo.
func ComboOwner(c query.ComboResponse) Owner {
	return Owner{Kind: domain.KindCombos, ID: c.ID, DefaultImageURI: c.DefaultImageURI, Images: c.Images, Tags: c.Tags}
}

// PieceOwner returns the shared-edit view of a piece.
func PieceOwner(p query.PieceResponse) Owner {
	return Owner{Kind: domain.KindPieces, ID: p.ID, DefaultImageURI: p.DefaultImageURI, Images: p.Images, Tags: p.Tags}
}

func (o Owner) hasDefault() bool {
	return o.DefaultImageURI != nil && *o.DefaultImageURI != ""
}

// Dependents are the records deleted along with a glaze, combo or piece.
type Dependents struct {
	Images       []string
	Applications []string
	Parts        []string
}
