// Package service is the edit boundary of the catalog. Reads load a view,
// filter and sort it. Edits validate an intent, plan it and submit the plan
// as one atomic batch. Every failure leaves here as a *errors.Error whose
// message can be shown to the user as is.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/glazepal/glazepal/internal/config"
	"github.com/glazepal/glazepal/internal/domain"
	domainerrors "github.com/glazepal/glazepal/internal/errors"
	"github.com/glazepal/glazepal/internal/logger"
	"github.com/glazepal/glazepal/internal/media/images"
	"github.com/glazepal/glazepal/internal/planner"
	"github.com/glazepal/glazepal/internal/ratelimit"
	"github.com/glazepal/glazepal/internal/search"
	"github.com/glazepal/glazepal/internal/store"
	"github.com/glazepal/glazepal/internal/tx"
)

// Transactor is the store as seen by the catalog. *store.Store implements it.
type Transactor interface {
	Query(ctx context.Context, q store.Query) (*store.Graph, error)
	Transact(ctx context.Context, b *tx.Batch) (store.Receipt, error)
	LinkedIDs(ctx context.Context, kind domain.Kind, recordID, label string) ([]string, error)
}

// ImageResolver turns a picked asset into image sources.
type ImageResolver interface {
	Resolve(ctx context.Context, asset images.Asset) images.Sources
}

// Searcher runs full-text catalog searches.
type Searcher interface {
	Search(ctx context.Context, params search.Params) (*search.Result, error)
}

// Catalog serves every screen and edit of the app.
type Catalog struct {
	store    Transactor
	planner  *planner.Planner
	images   ImageResolver
	searcher Searcher
	guard    *ratelimit.Guard
	edits    config.EditConfig
	logger   *slog.Logger
}

// Option configures optional Catalog collaborators.
type Option func(*Catalog)

// WithImageResolver sets the resolver used by AddImage and the create forms.
func WithImageResolver(r ImageResolver) Option {
	return func(c *Catalog) { c.images = r }
}

// WithSearcher enables Search.
func WithSearcher(s Searcher) Option {
	return func(c *Catalog) { c.searcher = s }
}

// WithGuard shares a guard between catalogs.
func WithGuard(g *ratelimit.Guard) Option {
	return func(c *Catalog) { c.guard = g }
}

// NewCatalog creates a catalog over st. Zero cooldowns fall back to 400ms
// for saves and 1s for deletes.
func NewCatalog(st Transactor, p *planner.Planner, edits config.EditConfig, log *slog.Logger, opts ...Option) *Catalog {
	if edits.SaveCooldown <= 0 {
		edits.SaveCooldown = 400 * time.Millisecond
	}
	if edits.DeleteCooldown <= 0 {
		edits.DeleteCooldown = time.Second
	}
	c := &Catalog{
		store:   st,
		planner: p,
		edits:   edits,
		logger:  logger.OrDiscard(log),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.guard == nil {
		c.guard = ratelimit.NewGuard()
	}
	if c.planner == nil {
		c.planner = planner.New(nil, nil)
	}
	return c
}

// Close stops the guard's background cleanup.
func (c *Catalog) Close() {
	c.guard.Stop()
}

// Result reports a finished edit. Changed is false when the edit turned
// out to be a no-op and nothing was submitted.
type Result struct {
	ID      string `json:"id"`
	TxID    string `json:"txId,omitempty"`
	Changed bool   `json:"changed"`
}

// action names a guarded edit, e.g. "save:glazes:<id>".
type action struct {
	verb string
	kind domain.Kind
	id   string
}

func (a action) key() string {
	id := a.id
	if id == "" {
		id = "new"
	}
	return a.verb + ":" + string(a.kind) + ":" + id
}

func saving(kind domain.Kind, recordID string) action   { return action{"save", kind, recordID} }
func deleting(kind domain.Kind, recordID string) action { return action{"delete", kind, recordID} }

// submit runs plan under the action's guard and commits the result.
// The guard stays up for the cooldown whatever the outcome. Once the
// batch is handed to the store the caller's cancellation no longer
// applies.
func (c *Catalog) submit(ctx context.Context, act action, plan func(ctx context.Context) (*planner.Plan, error)) (Result, error) {
	cooldown := c.edits.SaveCooldown
	if act.verb == "delete" {
		cooldown = c.edits.DeleteCooldown
	}
	release, ok := c.guard.Acquire(act.key(), cooldown)
	if !ok {
		return Result{}, domainerrors.Busy("This action is already in progress")
	}
	defer release()

	p, err := plan(ctx)
	if domainerrors.Is(err, planner.ErrNoop) {
		c.logger.Debug("edit changed nothing", "action", act.key())
		return Result{ID: act.id}, nil
	}
	if err != nil {
		return Result{}, saveError(err)
	}

	receipt, err := c.store.Transact(context.WithoutCancel(ctx), p.Batch)
	if err != nil {
		c.logger.Warn("edit rejected", "action", act.key(), logger.Err(err))
		return Result{}, saveError(err)
	}

	c.logger.Info("edit saved",
		"action", act.key(),
		"tx_id", receipt.TxID,
		"ops", receipt.Ops,
	)
	return Result{ID: p.ID, TxID: receipt.TxID, Changed: true}, nil
}

// saveError converts an edit failure into a user-facing domain error.
func saveError(err error) error {
	if err == nil {
		return nil
	}
	switch domainerrors.CodeOf(err) {
	case domainerrors.CodeValidation, domainerrors.CodeNotFound,
		domainerrors.CodeBusy, domainerrors.CodeTransaction:
		return err
	default:
		return domainerrors.Wrap(err, domainerrors.CodeTransaction, "Failed to save")
	}
}

// loadError converts a read failure into a user-facing domain error.
func loadError(err error) error {
	if err == nil {
		return nil
	}
	switch domainerrors.CodeOf(err) {
	case domainerrors.CodeValidation, domainerrors.CodeNotFound:
		return err
	default:
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "Failed to load")
	}
}
