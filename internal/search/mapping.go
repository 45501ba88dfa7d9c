package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the mapping for catalog documents.
//
// Glaze names are brand names and invented words ("Lotta", "Weathered
// Blue"), so the name uses the standard analyzer without stemming. Notes
// and descriptions are prose and use the simple analyzer. Kind, variant and
// tags are exact-match keywords.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = standard.Name

	docMapping := bleve.NewDocumentMapping()

	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = standard.Name
	nameFieldMapping.Store = true
	nameFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	for _, field := range []string{"description", "notes"} {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = simple.Name
		fm.Store = false
		docMapping.AddFieldMappingsAt(field, fm)
	}

	for _, field := range []string{"id", "kind", "variant"} {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = keyword.Name
		fm.Store = true
		docMapping.AddFieldMappingsAt(field, fm)
	}

	// Keyword analyzer keeps multi-word tags intact ("Good for texture").
	tagsFieldMapping := bleve.NewTextFieldMapping()
	tagsFieldMapping.Analyzer = keyword.Name
	tagsFieldMapping.Store = true
	tagsFieldMapping.IncludeTermVectors = true // For faceting
	docMapping.AddFieldMappingsAt("tags", tagsFieldMapping)

	favoriteFieldMapping := bleve.NewBooleanFieldMapping()
	favoriteFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("favorite", favoriteFieldMapping)

	for _, field := range []string{"created_at", "updated_at"} {
		fm := bleve.NewNumericFieldMapping()
		fm.Store = true
		docMapping.AddFieldMappingsAt(field, fm)
	}

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
