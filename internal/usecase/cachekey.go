package usecase

import (
	"encoding/json"
	"sort"
	"strings"
)

// BuildCacheKey renders fields as `<prefix>:<sorted k=json(v) joined by
// '|'>` (spec §4.1), shared by the search and facets usecases so both
// canonicalize the same way. encoding/json sorts map string keys on
// marshal, so any value in fields that is itself a map with string
// keys (e.g. AttributeFilters) also canonicalizes deterministically.
func BuildCacheKey(prefix string, fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		encoded, err := json.Marshal(fields[k])
		if err != nil {
			// every field passed here is a string, int, or domain value
			// object carrying only JSON-safe primitives; a marshal
			// failure would be a bug, not a runtime condition to handle.
			encoded = []byte(`""`)
		}
		parts = append(parts, k+"="+string(encoded))
	}

	return prefix + ":" + strings.Join(parts, "|")
}

// NormalizeBrand lower-cases and trims a brand filter value so "Nike"
// and "nike" hit the same cache entry (spec §4.1). It is applied to the
// cache key only; the engine's term clause receives the brand as given.
func NormalizeBrand(brand string) string {
	return strings.ToLower(strings.TrimSpace(brand))
}

// NormalizeAttributeValues lower-cases every attribute-filter value, then
// de-duplicates and sorts each value set again so that value sets that
// differ only by casing produce the same key.
// Attribute values are always free-text labels (color, material, ...)
// rather than opaque identifiers, so the gateway treats the whole
// attribute-filter space as case-insensitive rather than maintaining a
// per-key allow-list.
func NormalizeAttributeValues(raw map[string][]string) map[string][]string {
	if len(raw) == 0 {
		return raw
	}
	out := make(map[string][]string, len(raw))
	for k, values := range raw {
		normalized := make([]string, 0, len(values))
		seen := make(map[string]bool, len(values))
		for _, v := range values {
			n := strings.ToLower(strings.TrimSpace(v))
			if seen[n] {
				continue
			}
			seen[n] = true
			normalized = append(normalized, n)
		}
		sort.Strings(normalized)
		out[k] = normalized
	}
	return out
}
