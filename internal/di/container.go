// Package di provides dependency injection configuration for GlazePal.
package di

import (
	"github.com/samber/do/v2"

	"github.com/glazepal/glazepal/internal/config"
	"github.com/glazepal/glazepal/internal/di/providers"
	"github.com/glazepal/glazepal/internal/logger"
	"github.com/glazepal/glazepal/internal/media/images"
	"github.com/glazepal/glazepal/internal/planner"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer(flags config.Flags) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, flags)
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideLiveManager)
	do.Provide(injector, providers.ProvideStore)

	// Storage layer
	do.Provide(injector, providers.ProvideImageResolver)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)

	// Business services
	do.Provide(injector, providers.ProvidePlanner)
	do.Provide(injector, providers.ProvideCatalog)

	return injector
}

// Bootstrap initializes all services.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	cfg, err := do.Invoke[*config.Config](injector)
	if err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.LiveManagerHandle](injector)
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*images.Resolver](injector)
	if cfg.Search.Enabled {
		if _, err := do.Invoke[*providers.SearchIndexHandle](injector); err != nil {
			return err
		}
	}
	_ = do.MustInvoke[*planner.Planner](injector)
	_ = do.MustInvoke[*providers.CatalogHandle](injector)

	return nil
}
