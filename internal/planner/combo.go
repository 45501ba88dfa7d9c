package planner

import (
	"github.com/glazepal/glazepal/internal/domain"
	"github.com/glazepal/glazepal/internal/format"
	"github.com/glazepal/glazepal/internal/query"
	"github.com/glazepal/glazepal/internal/tx"
)

func (p *Planner) validateCombo(in ComboInput) error {
	if err := p.validate.Validate(in); err != nil {
		return err
	}
	for _, l := range []*LayerInput{in.Base, in.Layer} {
		if err := requireID(domain.KindGlazes, l.Glaze.ID); err != nil {
			return err
		}
	}
	if err := layerError("base.layers", *in.Base.Glaze, in.Base.layers()); err != nil {
		return err
	}
	return layerError("layer.layers", *in.Layer.Glaze, in.Layer.layers())
}

func comboNames(in ComboInput) format.Names {
	return format.GlazeApplications([]format.Layer{
		{Glaze: *in.Base.Glaze, Layers: in.Base.layers()},
		{Glaze: *in.Layer.Glaze, Layers: in.Layer.layers()},
	})
}

// CreateCombo plans a new combo with its two applications and optional
// first image. The name and description are generated from the layers.
// A layer's pre-generated ApplicationID is used as the application id.
func (p *Planner) CreateCombo(in ComboInput) (*Plan, error) {
	if err := p.validateCombo(in); err != nil {
		return nil, err
	}

	comboID := p.ids.NewID()
	names := comboNames(in)
	b := tx.New()

	attrs := p.created(tx.Attrs{
		domain.AttrName:            names.Name,
		domain.AttrDescription:     names.Description,
		domain.AttrDefaultImageURI: nil,
	})
	var imageID string
	if in.Image != nil {
		imageID = p.ids.NewID()
		b.Create(domain.KindImages, imageID, p.imageAttrs(*in.Image))
		attrs[domain.AttrDefaultImageURI] = in.Image.URI()
	}
	b.Create(domain.KindCombos, comboID, attrs)
	if imageID != "" {
		b.Link(domain.KindCombos, comboID, "images", imageID)
	}

	for _, slot := range []struct {
		layer  *LayerInput
		isBase bool
	}{{in.Base, true}, {in.Layer, false}} {
		appID := slot.layer.ApplicationID
		if appID == "" {
			appID = p.ids.NewID()
		}
		b.Create(domain.KindApplications, appID, p.created(tx.Attrs{
			domain.AttrIsBase: slot.isBase,
			domain.AttrLayers: slot.layer.layers(),
		}))
		b.Link(domain.KindApplications, appID, "combos", comboID)
		b.Link(domain.KindApplications, appID, "glazes", slot.layer.Glaze.ID)
	}
	return &Plan{ID: comboID, Batch: b}, nil
}

// UpdateCombo plans the combo form's changes to current. Each slot keeps
// its application: the one named by the input, else the combo's current
// application for that slot. Applications left over are deleted.
func (p *Planner) UpdateCombo(current query.ComboResponse, in ComboInput) (*Plan, error) {
	if err := requireID(domain.KindCombos, current.ID); err != nil {
		return nil, err
	}
	if err := p.validateCombo(in); err != nil {
		return nil, err
	}

	names := comboNames(in)
	b := tx.New().Update(domain.KindCombos, current.ID, p.touched(tx.Attrs{
		domain.AttrName:        names.Name,
		domain.AttrDescription: names.Description,
	}))

	existing := make(map[string]query.ApplicationResponse, len(current.Applications))
	for _, a := range current.Applications {
		existing[a.ID] = a
	}
	kept := make(map[string]bool, 2)

	slotApp := func(layer *LayerInput, isBase bool) (query.ApplicationResponse, bool) {
		if a, ok := existing[layer.ApplicationID]; ok && !kept[a.ID] {
			return a, true
		}
		var a query.ApplicationResponse
		var ok bool
		if isBase {
			a, ok = current.Base()
		} else {
			a, ok = current.Additional()
		}
		if ok && !kept[a.ID] {
			return a, true
		}
		return query.ApplicationResponse{}, false
	}

	for _, slot := range []struct {
		layer  *LayerInput
		isBase bool
	}{{in.Base, true}, {in.Layer, false}} {
		attrs := tx.Attrs{
			domain.AttrIsBase: slot.isBase,
			domain.AttrLayers: slot.layer.layers(),
		}
		app, ok := slotApp(slot.layer, slot.isBase)
		if !ok {
			appID := p.ids.NewID()
			b.Create(domain.KindApplications, appID, p.created(attrs))
			b.Link(domain.KindApplications, appID, "combos", current.ID)
			b.Link(domain.KindApplications, appID, "glazes", slot.layer.Glaze.ID)
			kept[appID] = true
			continue
		}

		kept[app.ID] = true
		b.Update(domain.KindApplications, app.ID, p.touched(attrs))
		b.Link(domain.KindApplications, app.ID, "combos", current.ID)
		for _, g := range app.Glazes {
			if g.ID != slot.layer.Glaze.ID {
				b.Unlink(domain.KindApplications, app.ID, "glazes", g.ID)
			}
		}
		b.Link(domain.KindApplications, app.ID, "glazes", slot.layer.Glaze.ID)
	}

	for _, a := range current.Applications {
		if !kept[a.ID] {
			b.Delete(domain.KindApplications, a.ID)
		}
	}
	return &Plan{ID: current.ID, Batch: b}, nil
}
