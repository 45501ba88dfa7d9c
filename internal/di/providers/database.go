package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/glazepal/glazepal/internal/config"
	"github.com/glazepal/glazepal/internal/live"
	"github.com/glazepal/glazepal/internal/logger"
	"github.com/glazepal/glazepal/internal/store"
)

// LiveManagerHandle wraps the live query manager with its context for
// lifecycle management.
type LiveManagerHandle struct {
	*live.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *LiveManagerHandle) Shutdown() error {
	defer h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideLiveManager provides the live query manager and starts its
// refresh loop.
func ProvideLiveManager(i do.Injector) (*LiveManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := live.NewManager(log.Component("live"))

	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	return &LiveManagerHandle{Manager: manager, cancel: cancel}, nil
}

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the store and points the live manager at it.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	liveHandle := do.MustInvoke[*LiveManagerHandle](i)

	db, err := store.New(cfg.DatabasePath(), log.Component("store"), liveHandle.Manager,
		store.WithQueryRetryAttempts(cfg.Store.QueryRetryAttempts),
	)
	if err != nil {
		return nil, err
	}
	liveHandle.SetQuerier(db)

	return &StoreHandle{Store: db}, nil
}
