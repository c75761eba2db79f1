// Package facetquery holds the validated FacetQuery value object (spec §3).
package facetquery

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/catalog-search-gateway/internal/domain/search/filter"
)

// AllowedKeys are the facet keys clients may request. attributes.* is a
// prefix rule, handled separately in IsAllowed. Arbitrary client-chosen
// fields could blow up the engine; this allow-list is the safety boundary
// (spec §9).
var AllowedKeys = map[string]bool{
	"brand":        true,
	"categoryId":   true,
	"categoryName": true,
	"priceFrom":    true,
}

const attributesPrefix = "attributes."

// IsAllowed reports whether a facet key is on the allow-list or matches
// the attributes.* prefix rule.
func IsAllowed(key string) bool {
	if AllowedKeys[key] {
		return true
	}
	return strings.HasPrefix(key, attributesPrefix) && len(key) > len(attributesPrefix)
}

// FacetQuery is a validated facet-aggregation request: the same filters as
// SearchQuery, plus a non-empty list of allow-listed facet keys.
type FacetQuery struct {
	text             string
	categoryID       string
	brand            string
	priceRange       filter.PriceRange
	attributeFilters filter.AttributeFilters
	facetKeys        []string
	dropped          []string
}

// New validates and constructs a FacetQuery. Unknown facet keys are
// silently dropped (soft failure, spec §4.1/§9) rather than rejected;
// Dropped() exposes them so the caller can log a warning. The request is
// only rejected if it has no valid keys left.
func New(
	text, categoryID, brand string,
	priceRange filter.PriceRange,
	attributeFilters map[string][]string,
	facetKeys []string,
) (FacetQuery, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return FacetQuery{}, fmt.Errorf("q is required")
	}
	if len(facetKeys) == 0 {
		return FacetQuery{}, fmt.Errorf("facetKeys is required")
	}

	var kept, dropped []string
	seen := make(map[string]bool, len(facetKeys))
	for _, k := range facetKeys {
		k = strings.TrimSpace(k)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		if IsAllowed(k) {
			kept = append(kept, k)
		} else {
			dropped = append(dropped, k)
		}
	}
	if len(kept) == 0 {
		return FacetQuery{}, fmt.Errorf("no valid facetKeys given the allow-list")
	}

	return FacetQuery{
		text:             text,
		categoryID:       categoryID,
		brand:            brand,
		priceRange:       priceRange,
		attributeFilters: filter.NewAttributeFilters(attributeFilters),
		facetKeys:        kept,
		dropped:          dropped,
	}, nil
}

// Text returns the trimmed search text.
func (q FacetQuery) Text() string { return q.text }

// CategoryID returns the exact-match category filter, empty if unset.
func (q FacetQuery) CategoryID() string { return q.categoryID }

// Brand returns the exact-match brand filter, empty if unset.
func (q FacetQuery) Brand() string { return q.brand }

// PriceRange returns the priceFrom bounds filter.
func (q FacetQuery) PriceRange() filter.PriceRange { return q.priceRange }

// AttributeFilters returns the normalized attribute filter set.
func (q FacetQuery) AttributeFilters() filter.AttributeFilters { return q.attributeFilters }

// FacetKeys returns the allow-listed facet keys that survived validation.
func (q FacetQuery) FacetKeys() []string { return q.facetKeys }

// Dropped returns facet keys that were silently rejected by the allow-list.
func (q FacetQuery) Dropped() []string { return q.dropped }
