// Package result holds the result-side value objects: ProductResult and
// the facet-aggregation shapes (spec §3, §6).
package result

import "github.com/kailas-cloud/catalog-search-gateway/internal/domain/catalog"

// ProductResult is one row of a search response: a product-level view
// assembled from the variant that matched best within its group.
type ProductResult struct {
	ProductID      string                   `json:"productId"`
	Name           string                   `json:"name"`
	Description    string                   `json:"description"`
	Brand          string                   `json:"brand"`
	CategoryID     string                   `json:"categoryId"`
	CategoryName   string                   `json:"categoryName"`
	MatchedVariant MatchedVariant           `json:"matchedVariant"`
	BestOffer      catalog.Offer            `json:"bestOffer"`
	VariantOptions []catalog.VariantOption  `json:"variantOptions"`
	OfferCount     int                      `json:"offerCount"`
	Score          float64                  `json:"score"`
}

// MatchedVariant is the winning variant within a product's group: the
// hit with the highest score, tie-broken by lower priceFrom (spec §4.5).
type MatchedVariant struct {
	VariantID string  `json:"variantId"`
	SKU       string  `json:"sku"`
	PriceFrom float64 `json:"priceFrom"`
	Score     float64 `json:"score"`
}

// Suggestion is a single did-you-mean candidate emitted by the suggestion
// pipeline (spec §4.7).
type Suggestion struct {
	Term           string `json:"term"`
	EstimatedCount *int   `json:"estimatedCount,omitempty"`
}

// Facet is one aggregation result: either a terms facet (buckets) or a
// range facet (ranges), per the requested facet key's type (spec §4.2).
type Facet struct {
	Key     string        `json:"key"`
	Name    string        `json:"name"`
	Type    string        `json:"type"` // "terms" | "range"
	Buckets []FacetBucket `json:"buckets,omitempty"`
	Ranges  []FacetRangeBucket `json:"ranges,omitempty"`
}

// FacetBucket is a single value+count pair in a terms facet.
type FacetBucket struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// FacetRangeBucket is a single bucket of a range facet, e.g. priceFrom.
type FacetRangeBucket struct {
	From  *float64 `json:"from,omitempty"`
	To    *float64 `json:"to,omitempty"`
	Count int      `json:"count"`
	Label string   `json:"label"`
}
