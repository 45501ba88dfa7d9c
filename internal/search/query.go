package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/glazepal/glazepal/internal/domain"
)

// Params configures a search.
type Params struct {
	Query string        `json:"query"`
	Kinds []domain.Kind `json:"kinds,omitempty"` // Empty means all
	Tags  []string      `json:"tags,omitempty"`  // Every tag must match

	FavoritesOnly bool `json:"favoritesOnly,omitempty"`

	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// Recent sorts newest first instead of by relevance.
	Recent bool `json:"recent,omitempty"`
}

// DefaultLimit is used when Params.Limit is not positive.
const DefaultLimit = 20

// Result is one page of hits.
type Result struct {
	Query  string      `json:"query"`
	Total  uint64      `json:"total"`
	TookMs int64       `json:"took_ms"`
	Hits   []Hit       `json:"hits"`
	Kinds  []KindCount `json:"kinds,omitempty"`
}

// Hit is one matching record.
type Hit struct {
	Kind       domain.Kind       `json:"kind"`
	ID         string            `json:"id"`
	Score      float64           `json:"score"`
	Name       string            `json:"name"`
	Tags       []string          `json:"tags,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// KindCount is the number of hits of one kind.
type KindCount struct {
	Kind  domain.Kind `json:"kind"`
	Count int         `json:"count"`
}

// Search runs params against the index.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := params.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	req := bleve.NewSearchRequestOptions(buildSearchQuery(params), limit, params.Offset, false)
	if params.Recent {
		req.SortBy([]string{"-created_at", "id"})
	} else {
		req.SortBy([]string{"-_score", "-created_at"})
	}
	req.AddFacet("kind", bleve.NewFacetRequest("kind", len(indexedKinds)))
	req.Highlight = bleve.NewHighlight()
	req.Highlight.AddField("name")
	req.Fields = []string{"id", "kind", "name", "tags"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	out := &Result{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}
	for _, h := range res.Hits {
		kind, recordID := splitDocID(h.ID)
		hit := Hit{Kind: kind, ID: recordID, Score: h.Score}
		if n, ok := h.Fields["name"].(string); ok {
			hit.Name = n
		}
		hit.Tags = stringsField(h.Fields["tags"])
		if len(h.Fragments) > 0 {
			hit.Highlights = make(map[string]string, len(h.Fragments))
			for field, fragments := range h.Fragments {
				if len(fragments) > 0 {
					hit.Highlights[field] = fragments[0]
				}
			}
		}
		out.Hits = append(out.Hits, hit)
	}

	if f, ok := res.Facets["kind"]; ok && f.Terms != nil {
		for _, term := range f.Terms.Terms() {
			out.Kinds = append(out.Kinds, KindCount{Kind: domain.Kind(term.Term), Count: term.Count})
		}
	}

	return out, nil
}

// stringsField reads a stored field that holds one or many strings.
func stringsField(v any) []string {
	switch v := v.(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, s := range v {
			if str, ok := s.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

// buildSearchQuery constructs the Bleve query from params.
//
// Text matches the name with the highest boost, then tags, notes and
// descriptions. A fuzzy and a prefix query on the name tolerate typos and
// partial input.
func buildSearchQuery(params Params) query.Query {
	var queries []query.Query

	if text := strings.TrimSpace(params.Query); text != "" {
		nameMatch := bleve.NewMatchQuery(text)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)

		tagMatch := bleve.NewTermQuery(text)
		tagMatch.SetField("tags")
		tagMatch.SetBoost(1.5)

		notesMatch := bleve.NewMatchQuery(text)
		notesMatch.SetField("notes")

		descMatch := bleve.NewMatchQuery(text)
		descMatch.SetField("description")

		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(text))
		fuzzy.SetFuzziness(1)
		fuzzy.SetField("name")
		fuzzy.SetBoost(0.8)

		textQueries := []query.Query{nameMatch, tagMatch, notesMatch, descMatch, fuzzy}

		if len(text) >= 2 {
			prefix := bleve.NewPrefixQuery(strings.ToLower(text))
			prefix.SetField("name")
			prefix.SetBoost(0.5)
			textQueries = append(textQueries, prefix)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if len(params.Kinds) > 0 {
		kindQueries := make([]query.Query, len(params.Kinds))
		for i, k := range params.Kinds {
			tq := bleve.NewTermQuery(string(k))
			tq.SetField("kind")
			kindQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(kindQueries...))
	}

	for _, tag := range params.Tags {
		tq := bleve.NewTermQuery(tag)
		tq.SetField("tags")
		queries = append(queries, tq)
	}

	if params.FavoritesOnly {
		fq := bleve.NewBoolFieldQuery(true)
		fq.SetField("favorite")
		queries = append(queries, fq)
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	default:
		return bleve.NewConjunctionQuery(queries...)
	}
}
