package planner

import (
	"fmt"
	"strings"

	"github.com/glazepal/glazepal/internal/color"
	"github.com/glazepal/glazepal/internal/domain"
	domainerrors "github.com/glazepal/glazepal/internal/errors"
	"github.com/glazepal/glazepal/internal/query"
	"github.com/glazepal/glazepal/internal/tx"
)

// CreateGlaze plans a new glaze with its brand and optional first image.
func (p *Planner) CreateGlaze(in GlazeInput) (*Plan, error) {
	in = in.trimmed()
	if err := p.validate.Validate(in); err != nil {
		return nil, err
	}

	glazeID := p.ids.NewID()
	b := tx.New()

	attrs := p.created(tx.Attrs{
		domain.AttrName:            in.Name,
		domain.AttrDescription:     in.Description,
		domain.AttrVariant:         string(in.Variant),
		domain.AttrDefaultImageURI: nil,
	})
	var imageID string
	if in.Image != nil {
		imageID = p.ids.NewID()
		b.Create(domain.KindImages, imageID, p.imageAttrs(*in.Image))
		attrs[domain.AttrDefaultImageURI] = in.Image.URI()
	}
	b.Create(domain.KindGlazes, glazeID, attrs)
	if imageID != "" {
		b.Link(domain.KindGlazes, glazeID, "images", imageID)
	}
	if in.BrandID != "" {
		b.Link(domain.KindBrands, in.BrandID, "glazes", glazeID)
	}
	return &Plan{ID: glazeID, Batch: b}, nil
}

// UpdateGlaze plans the glaze form's changes to current. The brand edge is
// replaced when the selected brand differs. current must carry the glaze's
// applications and parts: a glaze applied more than once anywhere cannot
// become a dipping glaze.
func (p *Planner) UpdateGlaze(current query.GlazeResponse, in GlazeInput) (*Plan, error) {
	if err := requireID(domain.KindGlazes, current.ID); err != nil {
		return nil, err
	}
	in = in.trimmed()
	if err := p.validate.Validate(in); err != nil {
		return nil, err
	}
	if err := variantError(current, in.Variant); err != nil {
		return nil, err
	}

	b := tx.New().Update(domain.KindGlazes, current.ID, p.touched(tx.Attrs{
		domain.AttrName:        in.Name,
		domain.AttrDescription: in.Description,
		domain.AttrVariant:     string(in.Variant),
	}))

	prev, hadBrand := current.Brand()
	if !hadBrand || prev.ID != in.BrandID {
		for _, brand := range current.Brands {
			b.Unlink(domain.KindBrands, brand.ID, "glazes", current.ID)
		}
		if in.BrandID != "" {
			b.Link(domain.KindBrands, in.BrandID, "glazes", current.ID)
		}
	}
	return &Plan{ID: current.ID, Batch: b}, nil
}

// variantError rejects a variant that an existing use of the glaze does
// not allow.
func variantError(current query.GlazeResponse, variant domain.Variant) error {
	for _, a := range current.Applications {
		if !variant.AllowsLayers(max(a.Layers, 1)) {
			return layerUseError(domain.KindCombos, a.Layers)
		}
	}
	for _, part := range current.Parts {
		if !variant.AllowsLayers(max(part.Layers, 1)) {
			return layerUseError(domain.KindPieces, part.Layers)
		}
	}
	return nil
}

func layerUseError(usedBy domain.Kind, layers int) error {
	return domainerrors.ValidationWithDetails(
		"Dipping glazes can only be applied once",
		map[string]string{"variant": fmt.Sprintf("applied %d times in one of its %s", layers, usedBy)},
	)
}

// CreateBrand plans a new brand.
func (p *Planner) CreateBrand(name string) (*Plan, error) {
	in := struct {
		Name string `json:"name" validate:"required,max=100"`
	}{Name: strings.TrimSpace(name)}
	if err := p.validate.Validate(in); err != nil {
		return nil, err
	}
	brandID := p.ids.NewID()
	b := tx.New().Create(domain.KindBrands, brandID, p.created(tx.Attrs{domain.AttrName: in.Name}))
	return &Plan{ID: brandID, Batch: b}, nil
}

// CreateTag plans a new tag.
func (p *Planner) CreateTag(in TagInput) (*Plan, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := p.validate.Validate(in); err != nil {
		return nil, err
	}
	if in.Color == nil {
		c := color.ForTag(in.Name)
		in.Color = &c
	}
	tagID := p.ids.NewID()
	b := tx.New().Create(domain.KindTags, tagID, p.created(tx.Attrs{
		domain.AttrName:  in.Name,
		domain.AttrRank:  in.Rank,
		domain.AttrColor: in.Color,
	}))
	return &Plan{ID: tagID, Batch: b}, nil
}
