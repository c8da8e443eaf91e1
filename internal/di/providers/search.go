package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/booklendapp/booklend-server/internal/config"
	"github.com/booklendapp/booklend-server/internal/logger"
	"github.com/booklendapp/booklend-server/internal/search"
	"github.com/booklendapp/booklend-server/internal/service"
	"github.com/booklendapp/booklend-server/internal/validation"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewIndex(search.Options{
		DataPath: cfg.Data.BasePath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{Index: index}, nil
}

// ProvideCatalogService provides the catalog service.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := service.NewCatalogService(storeHandle.Store, indexHandle.Index, validator, log.Logger)

	// Wire to store for automatic indexing on catalog writes
	storeHandle.SetSearchIndexer(indexHandle.Index)

	return svc, nil
}

// TriggerSearchRebuildIfNeeded checks if the index is empty while the
// catalog has copies, and rebuilds it in the background if so.
// Should be called after all services are wired.
func TriggerSearchRebuildIfNeeded(i do.Injector) {
	catalogService := do.MustInvoke[*service.CatalogService](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := catalogService.DocumentCount()
	if docCount > 0 {
		return
	}

	ctx := context.Background()
	copies, err := storeHandle.ListCopies(ctx)
	if err != nil || len(copies) == 0 {
		return
	}

	log.Info("Search index is empty but catalog has copies, triggering initial rebuild",
		"copy_count", len(copies),
	)

	go func() {
		rebuildCtx := context.Background()
		if indexed, err := catalogService.RebuildSearchIndex(rebuildCtx); err != nil {
			log.Error("Initial search rebuild failed", "error", err)
		} else {
			log.Info("Initial search rebuild completed", "documents", indexed)
		}
	}()
}
