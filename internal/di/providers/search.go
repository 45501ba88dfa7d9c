package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/glazepal/glazepal/internal/config"
	"github.com/glazepal/glazepal/internal/logger"
	"github.com/glazepal/glazepal/internal/search"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex opens the Bleve index and registers it with the store
// so committed batches keep it current. An empty index is rebuilt from the
// store.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	index, err := search.Open(search.Options{
		Path:   cfg.SearchIndexPath(),
		Logger: log.Component("search"),
	})
	if err != nil {
		return nil, err
	}

	docCount, err := index.DocumentCount()
	if err == nil && docCount == 0 {
		if n, err := index.Reindex(context.Background(), storeHandle.Store); err != nil {
			log.Warn("failed to build search index", logger.Err(err))
		} else {
			log.Debug("search index built", "documents", n)
		}
	}

	storeHandle.SetSearchIndexer(index)

	return &SearchIndexHandle{Index: index}, nil
}
