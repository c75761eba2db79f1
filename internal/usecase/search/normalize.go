// Package search implements the query orchestration and the product
// grouper (spec §4.1, §4.5). Cache-key canonicalization and filter
// normalization live in the parent internal/usecase package so the
// facets usecase can share them without importing this package.
package search

import (
	"github.com/kailas-cloud/catalog-search-gateway/internal/domain/search/query"
	"github.com/kailas-cloud/catalog-search-gateway/internal/usecase"
)

// CacheKey builds the canonical cache key for a validated SearchQuery:
// `search:<sorted k=json(v) joined by '|'>` (spec §4.1). SearchQuery's
// AttributeFilters are already deduplicated and value-sorted by the
// time they reach here (internal/domain/search/filter.NewAttributeFilters).
func CacheKey(q query.SearchQuery) string {
	return usecase.BuildCacheKey("search", map[string]any{
		"q":                q.Text(),
		"categoryId":       q.CategoryID(),
		"brand":            usecase.NormalizeBrand(q.Brand()),
		"priceRange":       q.PriceRange(),
		"attributeFilters": usecase.NormalizeAttributeValues(q.AttributeFilters()),
		"limit":            q.Limit(),
		"cursor":           q.Cursor(),
	})
}
