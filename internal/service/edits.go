package service

import (
	"context"
	"slices"

	"github.com/glazepal/glazepal/internal/domain"
	domainerrors "github.com/glazepal/glazepal/internal/errors"
	"github.com/glazepal/glazepal/internal/media/images"
	"github.com/glazepal/glazepal/internal/planner"
	"github.com/glazepal/glazepal/internal/query"
)

// Ref names a glaze, combo or piece.
type Ref struct {
	Kind domain.Kind `json:"kind"`
	ID   string      `json:"id"`
}

// GlazeRef, ComboRef and PieceRef build refs.
func GlazeRef(glazeID string) Ref { return Ref{Kind: domain.KindGlazes, ID: glazeID} }
func ComboRef(comboID string) Ref { return Ref{Kind: domain.KindCombos, ID: comboID} }
func PieceRef(pieceID string) Ref { return Ref{Kind: domain.KindPieces, ID: pieceID} }

// ResolveImage turns a picked asset into the image part of a form.
func (c *Catalog) ResolveImage(ctx context.Context, asset images.Asset) *planner.ImageInput {
	if asset.URI == "" {
		return nil
	}
	src := images.Sources{CacheURI: asset.URI}
	if c.images != nil {
		src = c.images.Resolve(ctx, asset)
	}
	return &planner.ImageInput{
		CacheURI:  src.CacheURI,
		LocalURI:  src.LocalURI,
		PublicURI: src.PublicURI,
		BlurHash:  src.BlurHash,
	}
}

// CreateGlaze saves a new glaze.
func (c *Catalog) CreateGlaze(ctx context.Context, in planner.GlazeInput) (Result, error) {
	return c.submit(ctx, saving(domain.KindGlazes, ""), func(context.Context) (*planner.Plan, error) {
		return c.planner.CreateGlaze(in)
	})
}

// UpdateGlaze saves the glaze form over an existing glaze.
func (c *Catalog) UpdateGlaze(ctx context.Context, glazeID string, in planner.GlazeInput) (Result, error) {
	return c.submit(ctx, saving(domain.KindGlazes, glazeID), func(ctx context.Context) (*planner.Plan, error) {
		current, err := query.Load(ctx, c.store, query.ViewGlazeEdit, query.Params{ID: glazeID}, query.DecodeGlaze)
		if err != nil {
			return nil, err
		}
		return c.planner.UpdateGlaze(current, in)
	})
}

// CreateCombo saves a new combo.
func (c *Catalog) CreateCombo(ctx context.Context, in planner.ComboInput) (Result, error) {
	return c.submit(ctx, saving(domain.KindCombos, ""), func(context.Context) (*planner.Plan, error) {
		return c.planner.CreateCombo(in)
	})
}

// UpdateCombo saves the combo form over an existing combo.
func (c *Catalog) UpdateCombo(ctx context.Context, comboID string, in planner.ComboInput) (Result, error) {
	return c.submit(ctx, saving(domain.KindCombos, comboID), func(ctx context.Context) (*planner.Plan, error) {
		current, err := query.Load(ctx, c.store, query.ViewComboEdit, query.Params{ID: comboID}, query.DecodeCombo)
		if err != nil {
			return nil, err
		}
		return c.planner.UpdateCombo(current, in)
	})
}

// CreatePiece saves a new piece.
func (c *Catalog) CreatePiece(ctx context.Context, in planner.PieceInput) (Result, error) {
	return c.submit(ctx, saving(domain.KindPieces, ""), func(context.Context) (*planner.Plan, error) {
		return c.planner.CreatePiece(in)
	})
}

// UpdatePiece saves the piece form over an existing piece. Its parts are
// replaced.
func (c *Catalog) UpdatePiece(ctx context.Context, pieceID string, in planner.PieceInput) (Result, error) {
	return c.submit(ctx, saving(domain.KindPieces, pieceID), func(ctx context.Context) (*planner.Plan, error) {
		current, err := query.Load(ctx, c.store, query.ViewPieceEdit, query.Params{ID: pieceID}, query.DecodePiece)
		if err != nil {
			return nil, err
		}
		return c.planner.UpdatePiece(current, in)
	})
}

// CreateBrand saves a new brand.
func (c *Catalog) CreateBrand(ctx context.Context, name string) (Result, error) {
	return c.submit(ctx, saving(domain.KindBrands, ""), func(context.Context) (*planner.Plan, error) {
		return c.planner.CreateBrand(name)
	})
}

// CreateTag saves a new tag.
func (c *Catalog) CreateTag(ctx context.Context, in planner.TagInput) (Result, error) {
	return c.submit(ctx, saving(domain.KindTags, ""), func(context.Context) (*planner.Plan, error) {
		return c.planner.CreateTag(in)
	})
}

// AddImage resolves a picked asset and attaches it to ref. Picking a
// photo that is already attached changes nothing.
func (c *Catalog) AddImage(ctx context.Context, ref Ref, asset images.Asset) (Result, error) {
	return c.submit(ctx, saving(ref.Kind, ref.ID), func(ctx context.Context) (*planner.Plan, error) {
		owner, err := c.owner(ctx, ref)
		if err != nil {
			return nil, err
		}
		in := c.ResolveImage(ctx, asset)
		if in == nil {
			return nil, domainerrors.Validation("No image selected")
		}
		return c.planner.AddImage(owner, *in)
	})
}

// SetDefaultImage makes an attached image the default of ref.
func (c *Catalog) SetDefaultImage(ctx context.Context, ref Ref, imageID string) (Result, error) {
	return c.submit(ctx, saving(ref.Kind, ref.ID), func(ctx context.Context) (*planner.Plan, error) {
		owner, err := c.owner(ctx, ref)
		if err != nil {
			return nil, err
		}
		return c.planner.SetDefaultImage(owner, imageOf(owner, imageID))
	})
}

// RemoveImage deletes an image of ref.
func (c *Catalog) RemoveImage(ctx context.Context, ref Ref, imageID string) (Result, error) {
	return c.submit(ctx, deleting(domain.KindImages, imageID), func(ctx context.Context) (*planner.Plan, error) {
		owner, err := c.owner(ctx, ref)
		if err != nil {
			return nil, err
		}
		return c.planner.RemoveImage(owner, imageOf(owner, imageID))
	})
}

// UpdateTags attaches exactly tagIDs to ref.
func (c *Catalog) UpdateTags(ctx context.Context, ref Ref, tagIDs []string) (Result, error) {
	return c.submit(ctx, saving(ref.Kind, ref.ID), func(ctx context.Context) (*planner.Plan, error) {
		owner, err := c.owner(ctx, ref)
		if err != nil {
			return nil, err
		}
		return c.planner.UpdateTags(owner, tagIDs)
	})
}

// SetFavorite sets the favorite flag of ref.
func (c *Catalog) SetFavorite(ctx context.Context, ref Ref, favorite bool) (Result, error) {
	return c.submit(ctx, saving(ref.Kind, ref.ID), func(ctx context.Context) (*planner.Plan, error) {
		owner, err := c.owner(ctx, ref)
		if err != nil {
			return nil, err
		}
		return c.planner.SetFavorite(owner, favorite)
	})
}

// UpdateNotes replaces the notes of ref.
func (c *Catalog) UpdateNotes(ctx context.Context, ref Ref, notes string) (Result, error) {
	return c.submit(ctx, saving(ref.Kind, ref.ID), func(ctx context.Context) (*planner.Plan, error) {
		owner, err := c.owner(ctx, ref)
		if err != nil {
			return nil, err
		}
		return c.planner.UpdateNotes(owner, notes)
	})
}

// DeleteGlaze deletes a glaze with its images and the inner piece parts
// using it. Glazes used by a combo or on the outside of a piece are kept.
func (c *Catalog) DeleteGlaze(ctx context.Context, glazeID string) (Result, error) {
	return c.submit(ctx, deleting(domain.KindGlazes, glazeID), func(ctx context.Context) (*planner.Plan, error) {
		current, err := query.Load(ctx, c.store, query.ViewGlazeEdit, query.Params{ID: glazeID}, query.DecodeGlaze)
		if err != nil {
			return nil, err
		}
		deps, err := c.dependents(ctx, GlazeRef(glazeID), "images")
		if err != nil {
			return nil, err
		}
		return c.planner.DeleteGlaze(current, deps)
	})
}

// DeleteCombo deletes a combo with its applications, images and the piece
// parts using it.
func (c *Catalog) DeleteCombo(ctx context.Context, comboID string) (Result, error) {
	return c.submit(ctx, deleting(domain.KindCombos, comboID), func(ctx context.Context) (*planner.Plan, error) {
		deps, err := c.dependents(ctx, ComboRef(comboID), "images", "applications", "parts")
		if err != nil {
			return nil, err
		}
		return c.planner.DeleteCombo(comboID, deps)
	})
}

// DeletePiece deletes a piece with its parts and images.
func (c *Catalog) DeletePiece(ctx context.Context, pieceID string) (Result, error) {
	return c.submit(ctx, deleting(domain.KindPieces, pieceID), func(ctx context.Context) (*planner.Plan, error) {
		deps, err := c.dependents(ctx, PieceRef(pieceID), "images", "parts")
		if err != nil {
			return nil, err
		}
		return c.planner.DeletePiece(pieceID, deps)
	})
}

// owner loads the images and tags of ref.
func (c *Catalog) owner(ctx context.Context, ref Ref) (planner.Owner, error) {
	params := query.Params{ID: ref.ID}
	switch ref.Kind {
	case domain.KindGlazes:
		g, err := query.Load(ctx, c.store, query.ViewGlazeDetail, params, query.DecodeGlaze)
		return planner.GlazeOwner(g), err
	case domain.KindCombos:
		cb, err := query.Load(ctx, c.store, query.ViewComboDetail, params, query.DecodeCombo)
		return planner.ComboOwner(cb), err
	case domain.KindPieces:
		p, err := query.Load(ctx, c.store, query.ViewPieceDetail, params, query.DecodePiece)
		return planner.PieceOwner(p), err
	default:
		return planner.Owner{}, domainerrors.Validationf("%s cannot own images or tags", ref.Kind)
	}
}

// imageOf returns the attached image with imageID, or a bare image with
// just the id when it is not attached.
func imageOf(owner planner.Owner, imageID string) domain.Image {
	i := slices.IndexFunc(owner.Images, func(img domain.Image) bool { return img.ID == imageID })
	if i < 0 {
		return domain.Image{Record: domain.Record{ID: imageID}}
	}
	return owner.Images[i]
}

// dependents collects the linked records deleted along with ref.
func (c *Catalog) dependents(ctx context.Context, ref Ref, labels ...string) (planner.Dependents, error) {
	var deps planner.Dependents
	for _, label := range labels {
		ids, err := c.store.LinkedIDs(ctx, ref.Kind, ref.ID, label)
		if err != nil {
			return deps, err
		}
		switch label {
		case "images":
			deps.Images = ids
		case "applications":
			deps.Applications = ids
		case "parts":
			deps.Parts = ids
		}
	}
	return deps, nil
}
