// Package integrity verifies the catalog invariants over the whole store.
// It reads only; fixing a violation is left to the caller.
package integrity

import (
	"context"
	"fmt"
	"slices"

	"github.com/glazepal/glazepal/internal/domain"
	"github.com/glazepal/glazepal/internal/store"
)

// Rule names one invariant.
type Rule string

// Checked invariants.
const (
	RuleDefaultImage     Rule = "default-image"
	RuleLayers           Rule = "layers"
	RuleComboBase        Rule = "combo-base"
	RuleApplicationLinks Rule = "application-links"
	RulePartLinks        Rule = "part-links"
	RulePartLocation     Rule = "part-location"
)

// Violation is one broken invariant on one record.
type Violation struct {
	Rule    Rule        `json:"rule"`
	Kind    domain.Kind `json:"kind"`
	ID      string      `json:"id"`
	Message string      `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("[%s] %s %s: %s", v.Rule, v.Kind, v.ID, v.Message)
}

// Report lists every violation found.
type Report struct {
	Checked    map[domain.Kind]int `json:"checked"`
	Violations []Violation         `json:"violations"`
}

// OK reports whether no invariant is broken.
func (r *Report) OK() bool {
	return len(r.Violations) == 0
}

func (r *Report) add(rule Rule, kind domain.Kind, recordID, format string, args ...any) {
	r.Violations = append(r.Violations, Violation{
		Rule:    rule,
		Kind:    kind,
		ID:      recordID,
		Message: fmt.Sprintf(format, args...),
	})
}

// Querier reads records from the store. *store.Store implements it.
type Querier interface {
	Query(ctx context.Context, q store.Query) (*store.Graph, error)
}

func with(labels ...string) *store.Select {
	sel := &store.Select{Include: make(map[string]*store.Select, len(labels))}
	for _, l := range labels {
		sel.Include[l] = &store.Select{}
	}
	return sel
}

// Check loads every owner, application and part with the links the rules
// need and returns what it found.
func Check(ctx context.Context, q Querier) (*Report, error) {
	graph, err := q.Query(ctx, store.Query{Roots: map[domain.Kind]*store.Select{
		domain.KindGlazes:       with("images"),
		domain.KindCombos:       with("images", "applications"),
		domain.KindPieces:       with("images", "parts"),
		domain.KindApplications: with("glazes", "combos"),
		domain.KindParts:        with("glazes", "combos", "pieces"),
	}})
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	r := &Report{Checked: make(map[domain.Kind]int), Violations: []Violation{}}
	for kind, objs := range graph.Roots {
		r.Checked[kind] = len(objs)
	}

	for _, kind := range []domain.Kind{domain.KindGlazes, domain.KindCombos, domain.KindPieces} {
		for _, obj := range graph.Root(kind) {
			if err := checkDefaultImage(r, obj); err != nil {
				return nil, err
			}
		}
	}
	for _, obj := range graph.Root(domain.KindApplications) {
		if err := checkApplication(r, obj); err != nil {
			return nil, err
		}
	}
	for _, obj := range graph.Root(domain.KindCombos) {
		checkComboBase(r, obj)
	}
	for _, obj := range graph.Root(domain.KindParts) {
		if err := checkPart(r, obj); err != nil {
			return nil, err
		}
	}
	for _, obj := range graph.Root(domain.KindPieces) {
		checkPieceLocations(r, obj)
	}
	return r, nil
}

// checkDefaultImage: an owner with images defaults to one of them; an
// owner without images has no default.
func checkDefaultImage(r *Report, obj *store.Object) error {
	var owner struct {
		DefaultImageURI *string `json:"defaultImageUri"`
	}
	if err := obj.Decode(&owner); err != nil {
		return err
	}
	images := obj.Related("images")
	hasDefault := owner.DefaultImageURI != nil && *owner.DefaultImageURI != ""

	if len(images) == 0 {
		if hasDefault {
			r.add(RuleDefaultImage, obj.Kind, obj.ID, "default image %q set without images", *owner.DefaultImageURI)
		}
		return nil
	}
	if !hasDefault {
		r.add(RuleDefaultImage, obj.Kind, obj.ID, "%d images but no default", len(images))
		return nil
	}
	if !slices.ContainsFunc(images, func(img *store.Object) bool {
		return img.String(domain.AttrURI) == *owner.DefaultImageURI
	}) {
		r.add(RuleDefaultImage, obj.Kind, obj.ID, "default image %q is not one of its images", *owner.DefaultImageURI)
	}
	return nil
}

func checkApplication(r *Report, obj *store.Object) error {
	var app domain.GlazeApplication
	if err := obj.Decode(&app); err != nil {
		return err
	}
	glazes, combos := obj.Related("glazes"), obj.Related("combos")
	if len(glazes) != 1 || len(combos) != 1 {
		r.add(RuleApplicationLinks, obj.Kind, obj.ID, "linked to %d glazes and %d combos, want 1 and 1", len(glazes), len(combos))
	}
	for _, g := range glazes {
		checkLayers(r, obj, g, app.Layers)
	}
	return nil
}

// checkLayers: every glaze is applied at least once and dip glazes
// exactly once.
func checkLayers(r *Report, obj, glaze *store.Object, layers int) {
	v := domain.Variant(glaze.String(domain.AttrVariant))
	if !v.AllowsLayers(layers) {
		r.add(RuleLayers, obj.Kind, obj.ID, "%s glaze %s applied %d times", v, glaze.ID, layers)
	}
}

// checkComboBase: every combo has a base layer with a glaze.
func checkComboBase(r *Report, obj *store.Object) {
	bases := 0
	for _, app := range obj.Related("applications") {
		if app.Bool(domain.AttrIsBase) {
			bases++
		}
	}
	if bases == 0 {
		r.add(RuleComboBase, obj.Kind, obj.ID, "no base layer")
	}
}

func checkPart(r *Report, obj *store.Object) error {
	var part domain.PiecePart
	if err := obj.Decode(&part); err != nil {
		return err
	}
	glazes, combos, pieces := obj.Related("glazes"), obj.Related("combos"), obj.Related("pieces")

	if len(pieces) != 1 {
		r.add(RulePartLinks, obj.Kind, obj.ID, "linked to %d pieces, want 1", len(pieces))
	}
	switch part.Type {
	case domain.PartTypeGlaze:
		if len(glazes) != 1 || len(combos) != 0 {
			r.add(RulePartLinks, obj.Kind, obj.ID, "glaze part linked to %d glazes and %d combos", len(glazes), len(combos))
		}
		for _, g := range glazes {
			checkLayers(r, obj, g, max(part.Layers, 1))
		}
	case domain.PartTypeCombo:
		if len(combos) != 1 || len(glazes) != 0 {
			r.add(RulePartLinks, obj.Kind, obj.ID, "combo part linked to %d combos and %d glazes", len(combos), len(glazes))
		}
	default:
		r.add(RulePartLinks, obj.Kind, obj.ID, "unknown part type %q", part.Type)
	}
	if !part.Location.Valid() {
		r.add(RulePartLocation, obj.Kind, obj.ID, "unknown location %q", part.Location)
	}
	return nil
}

// checkPieceLocations: at most one part per location, and an inner part
// only next to an outer one.
func checkPieceLocations(r *Report, obj *store.Object) {
	seen := make(map[domain.Location]int)
	for _, p := range obj.Related("parts") {
		seen[domain.Location(p.String(domain.AttrLocation))]++
	}
	for loc, n := range seen {
		if n > 1 {
			r.add(RulePartLocation, obj.Kind, obj.ID, "%d %s parts", n, loc)
		}
	}
	if seen[domain.LocationInner] > 0 && seen[domain.LocationOuter] == 0 {
		r.add(RulePartLocation, obj.Kind, obj.ID, "inner part without an outer part")
	}
}
