// Package facets implements the facet-aggregation pipeline: the same
// filters as search, size=0, and an aggregations block decoded into
// Facet value objects (spec §4.2, §4.6).
package facets

import (
	"sort"

	"github.com/kailas-cloud/catalog-search-gateway/internal/domain/search/facetquery"
	"github.com/kailas-cloud/catalog-search-gateway/internal/usecase"
)

// CacheKey builds the canonical cache key for a validated FacetQuery:
// `facets:<sorted k=json(v) joined by '|'>` (spec §4.1).
func CacheKey(q facetquery.FacetQuery) string {
	facetKeys := append([]string{}, q.FacetKeys()...)
	sort.Strings(facetKeys)

	return usecase.BuildCacheKey("facets", map[string]any{
		"q":                q.Text(),
		"categoryId":       q.CategoryID(),
		"brand":            usecase.NormalizeBrand(q.Brand()),
		"priceRange":       q.PriceRange(),
		"attributeFilters": usecase.NormalizeAttributeValues(q.AttributeFilters()),
		"facetKeys":        facetKeys,
	})
}
