package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/glazepal/glazepal/internal/domain"
	domainerrors "github.com/glazepal/glazepal/internal/errors"
	"github.com/glazepal/glazepal/internal/id"
	"github.com/glazepal/glazepal/internal/tx"
)

// Receipt confirms a committed batch.
type Receipt struct {
	TxID string
	Ops  int
	At   time.Time
}

// Transact applies every op of b in a single badger transaction. If any op
// fails the transaction is discarded and nothing is written. The caller's
// context is only checked before submission: a batch that has started is
// never abandoned halfway.
func (s *Store) Transact(ctx context.Context, b *tx.Batch) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	if b == nil || b.Empty() {
		return Receipt{}, domainerrors.Validation("nothing to save")
	}
	if err := b.Validate(); err != nil {
		return Receipt{}, err
	}

	txID, err := id.Generate("tx")
	if err != nil {
		return Receipt{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to start transaction")
	}
	now := s.now().UTC()
	touched := newTouchSet()

	err = s.db.Update(func(txn *badger.Txn) error {
		w := &writer{txn: txn, now: now, touched: touched}
		for i, op := range b.Ops() {
			if err := w.apply(op); err != nil {
				return fmt.Errorf("op %d (%s): %w", i, op, err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "transaction rejected",
			slog.String("tx_id", txID),
			slog.Int("ops", b.Len()),
			slog.String("error", err.Error()),
		)
		return Receipt{}, domainerrors.Wrap(err, domainerrors.CodeTransaction, "failed to save")
	}

	event := ChangeEvent{TxID: txID, Kinds: touched.kinds(), IDs: touched.ids(), At: now}
	s.logger.LogAttrs(ctx, slog.LevelDebug, "transaction committed",
		slog.String("tx_id", txID),
		slog.Int("ops", b.Len()),
		slog.Any("kinds", event.Kinds),
	)

	s.eventEmitter.Emit(event)
	s.reindex(event)

	return Receipt{TxID: txID, Ops: b.Len(), At: now}, nil
}

// reindex refreshes the search index for touched catalog records.
func (s *Store) reindex(event ChangeEvent) {
	indexer := s.indexer()
	if indexer == nil {
		return
	}
	for _, kind := range indexedKinds {
		ids := event.IDs[kind]
		if len(ids) == 0 {
			continue
		}
		s.indexing.Add(1)
		go func() {
			defer s.indexing.Done()
			ctx := context.Background()
			for _, recordID := range ids {
				obj, err := s.loadForIndex(kind, recordID)
				switch {
				case err != nil:
					s.logger.Warn("failed to load record for search", "kind", kind, "id", recordID, "error", err)
					continue
				case obj == nil:
					err = indexer.DeleteRecord(ctx, kind, recordID)
				default:
					err = indexer.IndexRecord(ctx, obj)
				}
				if err != nil {
					s.logger.Warn("failed to update search index", "kind", kind, "id", recordID, "error", err)
				}
			}
		}()
	}
}

// loadForIndex reads a record with its tags, or nil if it is gone.
func (s *Store) loadForIndex(kind domain.Kind, recordID string) (*Object, error) {
	var obj *Object
	err := s.db.View(func(txn *badger.Txn) error {
		r := &reader{txn: txn}
		var err error
		obj, err = r.load(kind, recordID)
		if err != nil || obj == nil {
			return err
		}
		return r.include(obj, &Select{Include: map[string]*Select{"tags": {}}})
	})
	return obj, err
}

// writer applies ops inside one badger update transaction. Badger reads
// see the transaction's own pending writes, so later ops observe earlier ones.
type writer struct {
	txn     *badger.Txn
	now     time.Time
	touched *touchSet
}

func (w *writer) apply(op tx.Op) error {
	switch op.Action {
	case tx.ActionCreate:
		return w.create(op)
	case tx.ActionUpdate:
		return w.update(op)
	case tx.ActionLink:
		return w.link(op)
	case tx.ActionUnlink:
		return w.unlink(op)
	case tx.ActionDelete:
		return w.delete(op)
	default:
		return fmt.Errorf("unknown action %q", op.Action)
	}
}

func (w *writer) create(op tx.Op) error {
	existing, err := w.read(op.Kind, op.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return domainerrors.AlreadyExistsf("%s %s already exists", op.Kind, op.ID)
	}

	attrs := make(map[string]any, len(op.Attrs)+3)
	for k, v := range op.Attrs {
		attrs[k] = v
	}
	attrs[domain.AttrID] = op.ID
	if _, ok := attrs[domain.AttrCreatedAt]; !ok {
		attrs[domain.AttrCreatedAt] = w.now
	}
	if _, ok := attrs[domain.AttrUpdatedAt]; !ok {
		attrs[domain.AttrUpdatedAt] = w.now
	}
	w.touched.add(op.Kind, op.ID)
	return w.write(op.Kind, op.ID, attrs)
}

func (w *writer) update(op tx.Op) error {
	attrs, err := w.read(op.Kind, op.ID)
	if err != nil {
		return err
	}
	if attrs == nil {
		return domainerrors.NotFoundf("%s %s not found", op.Kind, op.ID)
	}
	for k, v := range op.Attrs {
		attrs[k] = v
	}
	if _, ok := op.Attrs[domain.AttrUpdatedAt]; !ok {
		attrs[domain.AttrUpdatedAt] = w.now
	}
	w.touched.add(op.Kind, op.ID)
	return w.write(op.Kind, op.ID, attrs)
}

func (w *writer) link(op tx.Op) error {
	rel, _ := domain.LookupRelation(op.Kind, op.Label)
	for _, end := range []struct {
		kind domain.Kind
		id   string
	}{{op.Kind, op.ID}, {rel.To, op.Target}} {
		ok, err := w.exists(end.kind, end.id)
		if err != nil {
			return err
		}
		if !ok {
			return domainerrors.NotFoundf("cannot link %s.%s: %s %s not found", op.Kind, op.Label, end.kind, end.id)
		}
	}

	if err := w.txn.Set(linkKey(op.Kind, op.ID, op.Label, op.Target), nil); err != nil {
		return err
	}
	if err := w.txn.Set(linkKey(rel.To, op.Target, rel.Reverse, op.ID), nil); err != nil {
		return err
	}
	w.touched.add(op.Kind, op.ID)
	w.touched.add(rel.To, op.Target)
	return nil
}

func (w *writer) unlink(op tx.Op) error {
	rel, _ := domain.LookupRelation(op.Kind, op.Label)
	if err := w.txn.Delete(linkKey(op.Kind, op.ID, op.Label, op.Target)); err != nil {
		return err
	}
	if err := w.txn.Delete(linkKey(rel.To, op.Target, rel.Reverse, op.ID)); err != nil {
		return err
	}
	w.touched.add(op.Kind, op.ID)
	w.touched.add(rel.To, op.Target)
	return nil
}

// delete removes the record and both sides of every edge touching it.
// Deleting a missing record is a no-op.
func (w *writer) delete(op tx.Op) error {
	prefix := linkScanPrefix(op.Kind, op.ID, "")
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false

	type edge struct{ label, target string }
	var edges []edge
	it := w.txn.NewIterator(opts)
	for it.Rewind(); it.Valid(); it.Next() {
		if label, target, ok := parseLinkKey(it.Item().Key(), prefix); ok {
			edges = append(edges, edge{label, target})
		}
	}
	it.Close()

	for _, e := range edges {
		rel, ok := domain.LookupRelation(op.Kind, e.label)
		if !ok {
			continue
		}
		if err := w.txn.Delete(linkKey(op.Kind, op.ID, e.label, e.target)); err != nil {
			return err
		}
		if err := w.txn.Delete(linkKey(rel.To, e.target, rel.Reverse, op.ID)); err != nil {
			return err
		}
		w.touched.add(rel.To, e.target)
	}

	if err := w.txn.Delete(recordKey(op.Kind, op.ID)); err != nil {
		return err
	}
	w.touched.add(op.Kind, op.ID)
	return nil
}

func (w *writer) read(kind domain.Kind, recordID string) (map[string]any, error) {
	key := buildRecordKey(kind, recordID)
	defer releaseKey(key)

	item, err := w.txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var attrs map[string]any
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &attrs)
	})
	return attrs, err
}

func (w *writer) exists(kind domain.Kind, recordID string) (bool, error) {
	key := buildRecordKey(kind, recordID)
	defer releaseKey(key)

	_, err := w.txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (w *writer) write(kind domain.Kind, recordID string, attrs map[string]any) error {
	data, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("marshal %s %s: %w", kind, recordID, err)
	}
	return w.txn.Set(recordKey(kind, recordID), data)
}

// touchSet tracks the records changed by a batch.
type touchSet struct {
	m map[domain.Kind]map[string]struct{}
}

func newTouchSet() *touchSet {
	return &touchSet{m: make(map[domain.Kind]map[string]struct{})}
}

func (t *touchSet) add(kind domain.Kind, recordID string) {
	if t.m[kind] == nil {
		t.m[kind] = make(map[string]struct{})
	}
	t.m[kind][recordID] = struct{}{}
}

func (t *touchSet) kinds() []domain.Kind {
	out := make([]domain.Kind, 0, len(t.m))
	for k := range t.m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func (t *touchSet) ids() map[domain.Kind][]string {
	out := make(map[domain.Kind][]string, len(t.m))
	for k, set := range t.m {
		ids := make([]string, 0, len(set))
		for recordID := range set {
			ids = append(ids, recordID)
		}
		slices.Sort(ids)
		out[k] = ids
	}
	return out
}
