package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dgraph-io/badger/v4"

	"github.com/glazepal/glazepal/internal/domain"
	domainerrors "github.com/glazepal/glazepal/internal/errors"
)

// Query is a nested fetch: a set of root kinds, each with an optional
// filter and the relations to pull in under every matching record.
type Query struct {
	Roots map[domain.Kind]*Select `json:"roots"`
}

// Select filters records of one kind and names the relations to include.
//
// Where keys are attribute names ("isFavorite", "id") or dotted relation
// paths ending in an attribute ("applications.glazes.id"). A record
// matches when every key matches; a path matches when any record
// reachable along it has the attribute value.
type Select struct {
	Where   map[string]any     `json:"where,omitempty"`
	Include map[string]*Select `json:"include,omitempty"`
}

// Kinds returns every kind the query reads, roots and nested includes
// alike. Live queries re-run when any of them changes.
func (q Query) Kinds() []domain.Kind {
	seen := make(map[domain.Kind]bool)
	for kind, sel := range q.Roots {
		collectKinds(kind, sel, seen)
	}
	out := make([]domain.Kind, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func collectKinds(kind domain.Kind, sel *Select, seen map[domain.Kind]bool) {
	seen[kind] = true
	if sel == nil {
		return
	}
	for path := range sel.Where {
		k := kind
		for _, label := range pathLabels(path) {
			if rel, ok := domain.LookupRelation(k, label); ok {
				seen[rel.To] = true
				k = rel.To
			}
		}
	}
	for label, child := range sel.Include {
		if rel, ok := domain.LookupRelation(kind, label); ok {
			collectKinds(rel.To, child, seen)
		}
	}
}

// pathLabels returns the relation labels of a dotted where path.
func pathLabels(path string) []string {
	parts := strings.Split(path, ".")
	return parts[:len(parts)-1]
}

// Validate checks kinds, relation labels and where paths.
func (q Query) Validate() error {
	if len(q.Roots) == 0 {
		return domainerrors.Validation("query has no roots")
	}
	for kind, sel := range q.Roots {
		if !kind.Valid() {
			return domainerrors.Validationf("unknown kind %q", kind)
		}
		if err := validateSelect(kind, sel); err != nil {
			return err
		}
	}
	return nil
}

func validateSelect(kind domain.Kind, sel *Select) error {
	if sel == nil {
		return nil
	}
	for path := range sel.Where {
		k := kind
		for _, label := range pathLabels(path) {
			rel, ok := domain.LookupRelation(k, label)
			if !ok {
				return domainerrors.Validationf("unknown relation %s.%s in where %q", k, label, path)
			}
			k = rel.To
		}
	}
	for label, child := range sel.Include {
		rel, ok := domain.LookupRelation(kind, label)
		if !ok {
			return domainerrors.Validationf("unknown relation %s.%s", kind, label)
		}
		if err := validateSelect(rel.To, child); err != nil {
			return err
		}
	}
	return nil
}

// Object is one fetched record with its included relations.
type Object struct {
	Kind  domain.Kind
	ID    string
	Attrs map[string]any
	Links map[string][]*Object

	raw       []byte
	createdAt time.Time
}

// Decode unmarshals the record's attributes into dest.
func (o *Object) Decode(dest any) error {
	if err := json.Unmarshal(o.raw, dest); err != nil {
		return fmt.Errorf("decode %s %s: %w", o.Kind, o.ID, err)
	}
	return nil
}

// Related returns the included records under label. The result is never
// nil; a relation that was not included or has no edges yields an empty slice.
func (o *Object) Related(label string) []*Object {
	if rel, ok := o.Links[label]; ok {
		return rel
	}
	return []*Object{}
}

// String returns attribute name as a string, or "".
func (o *Object) String(name string) string {
	s, _ := o.Attrs[name].(string)
	return s
}

// Bool returns attribute name as a bool, or false.
func (o *Object) Bool(name string) bool {
	b, _ := o.Attrs[name].(bool)
	return b
}

// Graph is the result of a Query: matching records per root kind.
type Graph struct {
	Roots map[domain.Kind][]*Object
}

// Root returns the records fetched for kind. Never nil.
func (g *Graph) Root(kind domain.Kind) []*Object {
	if objs, ok := g.Roots[kind]; ok {
		return objs
	}
	return []*Object{}
}

// Query resolves q against a consistent snapshot. Transient read failures
// are retried per the store's read policy; invalid queries are not.
func (s *Store) Query(ctx context.Context, q Query) (*Graph, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var g *Graph
	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		var err error
		g, err = s.runQuery(q)
		return err
	}, s.newReadBackOff(ctx), func(err error, wait time.Duration) {
		s.logger.Warn("query failed, retrying", "attempt", attempt, "wait", wait, "error", err)
	})
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return g, nil
}

func (s *Store) runQuery(q Query) (*Graph, error) {
	g := &Graph{Roots: make(map[domain.Kind][]*Object, len(q.Roots))}
	err := s.db.View(func(txn *badger.Txn) error {
		r := &reader{txn: txn}
		for kind, sel := range q.Roots {
			objs, err := r.scan(kind, sel)
			if err != nil {
				return err
			}
			g.Roots[kind] = objs
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// reader resolves selects inside one badger read transaction.
type reader struct {
	txn *badger.Txn
}

// scan returns every record of kind matching sel, ordered by creation time
// then id, with includes resolved.
func (r *reader) scan(kind domain.Kind, sel *Select) ([]*Object, error) {
	prefix := kindPrefix(kind)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix

	var candidates []*Object
	it := r.txn.NewIterator(opts)
	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		raw, err := item.ValueCopy(nil)
		if err != nil {
			it.Close()
			return nil, err
		}
		obj, err := newObject(kind, parseRecordID(item.Key(), prefix), raw)
		if err != nil {
			it.Close()
			return nil, err
		}
		candidates = append(candidates, obj)
	}
	it.Close()

	out := make([]*Object, 0, len(candidates))
	for _, obj := range candidates {
		ok, err := r.matches(obj, sel)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if err := r.include(obj, sel); err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	sortObjects(out)
	return out, nil
}

// load reads one record, or returns nil when it does not exist.
func (r *reader) load(kind domain.Kind, id string) (*Object, error) {
	key := buildRecordKey(kind, id)
	defer releaseKey(key)

	item, err := r.txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	return newObject(kind, id, raw)
}

// targets lists the ids linked from kind/id under label.
func (r *reader) targets(kind domain.Kind, id, label string) []string {
	prefix := linkScanPrefix(kind, id, label)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false

	it := r.txn.NewIterator(opts)
	defer it.Close()

	var ids []string
	for it.Rewind(); it.Valid(); it.Next() {
		ids = append(ids, string(it.Item().Key()[len(prefix):]))
	}
	return ids
}

// related loads every record linked from obj under label.
func (r *reader) related(obj *Object, label string) ([]*Object, error) {
	rel, _ := domain.LookupRelation(obj.Kind, label)
	ids := r.targets(obj.Kind, obj.ID, label)
	out := make([]*Object, 0, len(ids))
	for _, id := range ids {
		target, err := r.load(rel.To, id)
		if err != nil {
			return nil, err
		}
		// A dangling edge is skipped rather than surfaced as a null.
		if target != nil {
			out = append(out, target)
		}
	}
	return out, nil
}

func (r *reader) include(obj *Object, sel *Select) error {
	if sel == nil || len(sel.Include) == 0 {
		return nil
	}
	obj.Links = make(map[string][]*Object, len(sel.Include))
	for label, child := range sel.Include {
		objs, err := r.related(obj, label)
		if err != nil {
			return err
		}
		kept := objs[:0]
		for _, target := range objs {
			ok, err := r.matches(target, child)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if err := r.include(target, child); err != nil {
				return err
			}
			kept = append(kept, target)
		}
		sortObjects(kept)
		obj.Links[label] = kept
	}
	return nil
}

func (r *reader) matches(obj *Object, sel *Select) (bool, error) {
	if sel == nil {
		return true, nil
	}
	for path, want := range sel.Where {
		ok, err := r.matchPath(obj, strings.Split(path, "."), normalizeValue(want))
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (r *reader) matchPath(obj *Object, path []string, want any) (bool, error) {
	if len(path) == 1 {
		return reflect.DeepEqual(obj.Attrs[path[0]], want), nil
	}
	next, err := r.related(obj, path[0])
	if err != nil {
		return false, err
	}
	for _, target := range next {
		ok, err := r.matchPath(target, path[1:], want)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

// normalizeValue round-trips v through JSON so it compares equal to the
// decoded attribute values (numbers become float64).
func normalizeValue(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

func newObject(kind domain.Kind, id string, raw []byte) (*Object, error) {
	var attrs map[string]any
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", kind, id, err)
	}
	obj := &Object{Kind: kind, ID: id, Attrs: attrs, raw: raw}
	if s, ok := attrs[domain.AttrCreatedAt].(string); ok {
		obj.createdAt, _ = time.Parse(time.RFC3339Nano, s)
	}
	return obj, nil
}

func sortObjects(objs []*Object) {
	slices.SortStableFunc(objs, func(a, b *Object) int {
		if c := a.createdAt.Compare(b.createdAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
