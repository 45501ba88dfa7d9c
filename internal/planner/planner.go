// Package planner turns edit intents into ordered write batches. Planning
// never touches the store: callers pass in the current state they fetched
// and submit the returned batch themselves.
package planner

import (
	"strings"
	"time"

	"github.com/glazepal/glazepal/internal/domain"
	domainerrors "github.com/glazepal/glazepal/internal/errors"
	"github.com/glazepal/glazepal/internal/id"
	"github.com/glazepal/glazepal/internal/tx"
	"github.com/glazepal/glazepal/internal/validation"
)

// ErrNoop is returned when an intent would not change anything, such as
// adding an image that is already attached.
var ErrNoop = domainerrors.New("nothing to change")

// Plan is a batch ready for submission plus the id of the record the
// intent was about.
type Plan struct {
	ID    string
	Batch *tx.Batch
}

// Planner builds batches. It is safe for concurrent use when its id source is.
type Planner struct {
	ids      id.Source
	now      func() time.Time
	validate *validation.Validator
}

// New creates a planner. Nil arguments fall back to UUIDs and time.Now.
func New(ids id.Source, now func() time.Time) *Planner {
	if ids == nil {
		ids = id.UUIDs
	}
	if now == nil {
		now = time.Now
	}
	return &Planner{ids: ids, now: now, validate: validation.New()}
}

func (p *Planner) stamp() time.Time {
	return p.now().UTC()
}

// created adds timestamps to the attrs of a new record.
func (p *Planner) created(attrs tx.Attrs) tx.Attrs {
	now := p.stamp()
	attrs[domain.AttrCreatedAt] = now
	attrs[domain.AttrUpdatedAt] = now
	return attrs
}

// touched adds an updatedAt to the attrs of an update.
func (p *Planner) touched(attrs tx.Attrs) tx.Attrs {
	attrs[domain.AttrUpdatedAt] = p.stamp()
	return attrs
}

func requireID(kind domain.Kind, recordID string) error {
	if strings.TrimSpace(recordID) == "" {
		return domainerrors.Validationf("missing %s id", kind)
	}
	return nil
}

// layerError rejects layer counts a glaze's variant does not allow.
func layerError(field string, g domain.Glaze, layers int) error {
	if g.Variant.AllowsLayers(layers) {
		return nil
	}
	if layers > 1 && g.Variant == domain.VariantDip {
		return domainerrors.ValidationWithDetails(
			"Dipping glazes can only be applied once",
			map[string]string{field: "must be 1 for a dipping glaze"},
		)
	}
	return domainerrors.ValidationWithDetails(
		field+" must be at least 1",
		map[string]string{field: "must be at least 1"},
	)
}
