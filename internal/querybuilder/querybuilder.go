// Package querybuilder builds the OpenSearch query-DSL bodies consumed
// by internal/repository/engine, for both the search and facets
// pipelines, which share the same filter and text-clause builders
// (spec §4.2).
package querybuilder

import (
	"strings"

	"github.com/kailas-cloud/catalog-search-gateway/internal/domain/search/cursor"
	"github.com/kailas-cloud/catalog-search-gateway/internal/domain/search/facetquery"
	"github.com/kailas-cloud/catalog-search-gateway/internal/domain/search/filter"
	"github.com/kailas-cloud/catalog-search-gateway/internal/domain/search/query"
)

// SalesBoostConfig parametrizes the function-score sales boost applied
// to the search (not facets) variant of the query.
type SalesBoostConfig struct {
	Factor   float64
	Modifier string // log1p, log, sqrt, or none
}

// priceRangeBuckets are the fixed buckets for the priceFrom range facet
// (spec §4.2).
var priceRangeBuckets = []struct {
	from, to *float64
	label    string
}{
	{nil, ptr(25), "under 25"},
	{ptr(25), ptr(50), "25 to 50"},
	{ptr(50), ptr(100), "50 to 100"},
	{ptr(100), ptr(200), "100 to 200"},
	{ptr(200), nil, "200 and up"},
}

func ptr(f float64) *float64 { return &f }

// PriceRangeLabels returns the human labels for the fixed priceFrom
// range buckets, in the same order as the ranges built into the
// aggregation DSL. The engine's range-aggregation response carries no
// label of its own, so the facets usecase pairs response buckets with
// a label positionally using this same ordering.
func PriceRangeLabels() []string {
	labels := make([]string, len(priceRangeBuckets))
	for i, b := range priceRangeBuckets {
		labels[i] = b.label
	}
	return labels
}

// BuildSearch builds the full search DSL: text match + filters wrapped
// in a function-score sales boost, sort by (_score desc, productId asc),
// and search_after from the query's cursor if present.
func BuildSearch(q query.SearchQuery, boost SalesBoostConfig) map[string]any {
	boolQuery := map[string]any{
		"bool": map[string]any{
			"must":   []any{textClause(q.Text())},
			"filter": filterClauses(q.CategoryID(), q.Brand(), q.PriceRange(), q.AttributeFilters()),
		},
	}

	body := map[string]any{
		"size":  q.Limit(),
		"query": functionScore(boolQuery, boost),
		"sort":  sortClauses(),
	}

	if sort, ok := cursor.Decode(q.Cursor()); ok {
		body["search_after"] = sort
	}

	return body
}

// BuildFacets builds the facet-aggregation DSL: the same text+filter
// query with size=0 and an aggregations block keyed by the query's
// allow-listed facet keys.
func BuildFacets(q facetquery.FacetQuery) map[string]any {
	boolQuery := map[string]any{
		"bool": map[string]any{
			"must":   []any{textClause(q.Text())},
			"filter": filterClauses(q.CategoryID(), q.Brand(), q.PriceRange(), q.AttributeFilters()),
		},
	}

	return map[string]any{
		"size":  0,
		"query": boolQuery,
		"aggs":  facetAggregations(q.FacetKeys()),
	}
}

// textClause is a best-fields multi-field match with automatic
// fuzziness bounded by a 2-character verbatim prefix, to keep edit
// distance expansion cheap (spec §4.2).
func textClause(text string) map[string]any {
	return map[string]any{
		"multi_match": map[string]any{
			"query": text,
			"type":  "best_fields",
			"fields": []string{
				"productName^3",
				"productDescription",
				"brand^2",
				"categoryName",
				"sku",
				"attributes.*",
			},
			"fuzziness":     "AUTO",
			"prefix_length": 2,
		},
	}
}

// filterClauses never affects score: categoryId/brand exact-term,
// priceFrom inclusive range, one term-or-terms clause per attribute
// filter (spec §4.2).
func filterClauses(categoryID, brand string, priceRange filter.PriceRange, attrs filter.AttributeFilters) []any {
	var clauses []any

	if categoryID != "" {
		clauses = append(clauses, map[string]any{"term": map[string]any{"categoryId": categoryID}})
	}
	if brand != "" {
		clauses = append(clauses, map[string]any{"term": map[string]any{"brand": brand}})
	}
	if !priceRange.IsZero() {
		rng := map[string]any{}
		if priceRange.Min != nil {
			rng["gte"] = *priceRange.Min
		}
		if priceRange.Max != nil {
			rng["lte"] = *priceRange.Max
		}
		clauses = append(clauses, map[string]any{"range": map[string]any{"priceFrom": rng}})
	}

	for _, key := range attrs.SortedKeys() {
		values := attrs[key]
		field := key
		if !strings.HasPrefix(field, "attributes.") {
			field = "attributes." + field
		}
		field += ".keyword"
		if len(values) == 1 {
			clauses = append(clauses, map[string]any{"term": map[string]any{field: values[0]}})
		} else {
			clauses = append(clauses, map[string]any{"terms": map[string]any{field: values}})
		}
	}

	return clauses
}

// functionScore wraps boolQuery in a field_value_factor boost on
// sales30d, multiplying (not replacing) the base relevance score
// (spec §4.2).
func functionScore(boolQuery map[string]any, boost SalesBoostConfig) map[string]any {
	modifier := boost.Modifier
	if modifier == "" {
		modifier = "log1p"
	}
	factor := boost.Factor
	if factor == 0 {
		factor = 1
	}

	functions := []any{
		map[string]any{
			"field_value_factor": map[string]any{
				"field":    "sales30d",
				"modifier": modifier,
				"factor":   factor,
				"missing":  1,
			},
		},
	}
	if modifier == "none" {
		functions = nil
	}

	return map[string]any{
		"function_score": map[string]any{
			"query":      boolQuery,
			"functions":  functions,
			"score_mode": "multiply",
			"boost_mode": "multiply",
		},
	}
}

// sortClauses returns the strictly total sort order (_score desc,
// productId asc) that makes search_after deterministic even when many
// documents tie on score (spec §4.2, §9). productId must be indexed as
// a keyword field, not analyzed text, or this sort is undefined.
func sortClauses() []any {
	return []any{
		map[string]any{"_score": "desc"},
		map[string]any{"productId": "asc"},
	}
}

// facetAggregations builds one aggregation per requested key: a fixed-
// bucket range aggregation for priceFrom, terms aggregations (size 50,
// doc-count descending) for everything else (spec §4.2).
func facetAggregations(keys []string) map[string]any {
	aggs := make(map[string]any, len(keys))
	for _, key := range keys {
		if key == "priceFrom" {
			aggs[key] = priceRangeAggregation()
			continue
		}
		aggs[key] = map[string]any{
			"terms": map[string]any{
				"field": key + ".keyword",
				"size":  50,
				"order": map[string]any{"_count": "desc"},
			},
		}
	}
	return aggs
}

func priceRangeAggregation() map[string]any {
	ranges := make([]any, 0, len(priceRangeBuckets))
	for _, b := range priceRangeBuckets {
		r := map[string]any{}
		if b.from != nil {
			r["from"] = *b.from
		}
		if b.to != nil {
			r["to"] = *b.to
		}
		ranges = append(ranges, r)
	}
	return map[string]any{
		"range": map[string]any{
			"field":  "priceFrom",
			"ranges": ranges,
		},
	}
}
