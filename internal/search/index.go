package search

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/glazepal/glazepal/internal/domain"
	"github.com/glazepal/glazepal/internal/logger"
	"github.com/glazepal/glazepal/internal/store"
)

// Index wraps a Bleve index of catalog records.
//
// Thread safety: All public methods are safe for concurrent use.
// The mutex protects against index corruption during rebuild operations.
type Index struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex // Protects index operations during rebuild
}

// Options configures the search index.
type Options struct {
	Path   string       // Index directory; empty keeps the index in memory
	Logger *slog.Logger // Logger for operations (uses discard if nil)
}

// mappingVersion is incremented whenever the index mapping changes.
// An index written with another version is rebuilt on open.
const mappingVersion = "1"

// Open creates or opens a search index. An existing index that cannot be
// opened or was built with an older mapping is removed and recreated empty;
// callers repopulate it with Reindex.
func Open(opts Options) (*Index, error) {
	log := logger.OrDiscard(opts.Logger)

	if opts.Path == "" {
		index, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create memory index: %w", err)
		}
		return &Index{index: index, logger: log}, nil
	}

	versionPath := opts.Path + ".version"
	needsRebuild := false

	_, statErr := os.Stat(opts.Path)
	indexExists := statErr == nil
	if indexExists {
		existing, err := os.ReadFile(versionPath)
		if err != nil || string(existing) != mappingVersion {
			log.Info("search index mapping version changed, will rebuild",
				"old_version", string(existing),
				"new_version", mappingVersion,
			)
			needsRebuild = true
		}
	}

	var index bleve.Index
	if indexExists && !needsRebuild {
		var err error
		index, err = bleve.Open(opts.Path)
		if err != nil {
			log.Warn("failed to open existing index, will recreate", "path", opts.Path, logger.Err(err))
			needsRebuild = true
		}
	}

	if needsRebuild {
		if err := os.RemoveAll(opts.Path); err != nil {
			return nil, fmt.Errorf("remove old index: %w", err)
		}
	}

	if index == nil {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
			return nil, fmt.Errorf("create index directory: %w", err)
		}
		var err error
		index, err = bleve.New(opts.Path, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if err := os.WriteFile(versionPath, []byte(mappingVersion), 0644); err != nil {
			log.Warn("failed to write search version file", logger.Err(err))
		}
		log.Info("created new search index", "path", opts.Path, "mapping_version", mappingVersion)
	} else {
		log.Info("opened existing search index", "path", opts.Path)
	}

	return &Index{index: index, path: opts.Path, logger: log}, nil
}

// Close closes the index and releases resources.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexRecord adds or replaces the document of a fetched record.
func (s *Index) IndexRecord(_ context.Context, obj *store.Object) error {
	doc, err := FromObject(obj)
	if err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Index(docID(doc.Kind, doc.ID), doc.ToMap())
}

// DeleteRecord removes a record's document. Missing documents are ignored.
func (s *Index) DeleteRecord(_ context.Context, kind domain.Kind, recordID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(docID(kind, recordID))
}

// DocumentCount returns the total number of indexed documents.
func (s *Index) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Querier reads records from the store. *store.Store implements it.
type Querier interface {
	Query(ctx context.Context, q store.Query) (*store.Graph, error)
}

// indexedKinds are the kinds with search documents.
var indexedKinds = []domain.Kind{domain.KindGlazes, domain.KindCombos, domain.KindPieces}

// Reindex replaces the index contents with every glaze, combo and piece
// in the store. Documents are written in batches of 500.
func (s *Index) Reindex(ctx context.Context, q Querier) (int, error) {
	roots := make(map[domain.Kind]*store.Select, len(indexedKinds))
	for _, kind := range indexedKinds {
		roots[kind] = &store.Select{Include: map[string]*store.Select{"tags": {}}}
	}
	graph, err := q.Query(ctx, store.Query{Roots: roots})
	if err != nil {
		return 0, fmt.Errorf("load records: %w", err)
	}

	var docs []*Document
	for _, kind := range indexedKinds {
		for _, obj := range graph.Root(kind) {
			doc, err := FromObject(obj)
			if err != nil {
				return 0, err
			}
			docs = append(docs, doc)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.reset(); err != nil {
		return 0, err
	}

	const batchSize = 500
	for i := 0; i < len(docs); i += batchSize {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		chunk := docs[i:min(i+batchSize, len(docs))]

		batch := s.index.NewBatch()
		for _, doc := range chunk {
			if err := batch.Index(docID(doc.Kind, doc.ID), doc.ToMap()); err != nil {
				return i, fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return i, fmt.Errorf("commit batch %d-%d: %w", i, i+len(chunk), err)
		}
	}

	s.logger.Info("search index rebuilt", "documents", len(docs))
	return len(docs), nil
}

// reset drops every document. Callers hold the write lock.
func (s *Index) reset() error {
	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}

	var (
		index bleve.Index
		err   error
	)
	if s.path == "" {
		index, err = bleve.NewMemOnly(buildIndexMapping())
	} else {
		if err := os.RemoveAll(s.path); err != nil {
			return fmt.Errorf("remove index: %w", err)
		}
		index, err = bleve.New(s.path, buildIndexMapping())
	}
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	s.index = index
	return nil
}
