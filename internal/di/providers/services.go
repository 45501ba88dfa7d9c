package providers

import (
	"github.com/samber/do/v2"

	"github.com/glazepal/glazepal/internal/config"
	"github.com/glazepal/glazepal/internal/id"
	"github.com/glazepal/glazepal/internal/media/images"
	"github.com/glazepal/glazepal/internal/logger"
	"github.com/glazepal/glazepal/internal/planner"
	"github.com/glazepal/glazepal/internal/service"
)

// ProvidePlanner provides the mutation planner with UUID record ids.
func ProvidePlanner(i do.Injector) (*planner.Planner, error) {
	return planner.New(id.UUIDs, nil), nil
}

// CatalogHandle wraps the catalog with shutdown capability.
type CatalogHandle struct {
	*service.Catalog
}

// Shutdown implements do.Shutdownable.
func (h *CatalogHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideCatalog provides the catalog service.
func ProvideCatalog(i do.Injector) (*CatalogHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	p := do.MustInvoke[*planner.Planner](i)
	resolver := do.MustInvoke[*images.Resolver](i)

	opts := []service.Option{service.WithImageResolver(resolver)}
	if cfg.Search.Enabled {
		indexHandle := do.MustInvoke[*SearchIndexHandle](i)
		opts = append(opts, service.WithSearcher(indexHandle.Index))
	}

	return &CatalogHandle{
		Catalog: service.NewCatalog(storeHandle.Store, p, cfg.Edits, log.Component("catalog"), opts...),
	}, nil
}
