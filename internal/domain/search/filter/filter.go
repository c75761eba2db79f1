// Package filter holds the filter-side value objects shared by SearchQuery
// and FacetQuery: price ranges and attribute filters (spec §3, §4.2).
package filter

import (
	"fmt"
	"sort"
	"strings"
)

// PriceRange bounds priceFrom. Both bounds are optional; when both are
// present min must be <= max.
type PriceRange struct {
	Min *float64
	Max *float64
}

// NewPriceRange validates and constructs a PriceRange.
func NewPriceRange(min, max *float64) (PriceRange, error) {
	if min != nil && *min < 0 {
		return PriceRange{}, fmt.Errorf("priceRange.min must be >= 0")
	}
	if max != nil && *max < 0 {
		return PriceRange{}, fmt.Errorf("priceRange.max must be >= 0")
	}
	if min != nil && max != nil && *min > *max {
		return PriceRange{}, fmt.Errorf("priceRange.min must be <= priceRange.max")
	}
	return PriceRange{Min: min, Max: max}, nil
}

// IsZero reports whether the range has no bounds set.
func (p PriceRange) IsZero() bool { return p.Min == nil && p.Max == nil }

// AttributeFilters maps an attribute field key to one or more required
// values (a multi-valued filter is set-membership; a single value is an
// exact-term match). Values keep the casing the client sent; they are
// lower-cased only when the cache key is built
// (usecase.NormalizeAttributeValues).
type AttributeFilters map[string][]string

// NewAttributeFilters builds a normalized AttributeFilters: value sets are
// de-duplicated and sorted so that two equivalent filter objects compare
// and cache-key identically regardless of input order (spec §4.1, §8).
func NewAttributeFilters(raw map[string][]string) AttributeFilters {
	if len(raw) == 0 {
		return nil
	}
	out := make(AttributeFilters, len(raw))
	for k, values := range raw {
		if len(values) == 0 {
			continue
		}
		seen := make(map[string]struct{}, len(values))
		dedup := make([]string, 0, len(values))
		for _, v := range values {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			dedup = append(dedup, v)
		}
		sort.Strings(dedup)
		out[k] = dedup
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedKeys returns the filter's keys in ascending order, for
// deterministic query construction and cache-key canonicalization.
func (f AttributeFilters) SortedKeys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CanonicalString renders the filters as a deterministic, order-independent
// string suitable for inclusion in a cache key (spec §4.1, §8).
func (f AttributeFilters) CanonicalString() string {
	if len(f) == 0 {
		return ""
	}
	keys := f.SortedKeys()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+strings.Join(f[k], ","))
	}
	return strings.Join(parts, "|")
}
