// Package query holds the validated SearchQuery value object (spec §3,
// §4.1), constructed once at the HTTP boundary and immutable thereafter.
package query

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/catalog-search-gateway/internal/domain/search/filter"
)

// Limits on query parameters (spec §3, §8).
const (
	MinTextLength = 1
	MaxTextLength = 200
	DefaultLimit  = 20
	MaxLimit      = 100
)

// SearchQuery is a validated, immutable search request.
type SearchQuery struct {
	text             string
	categoryID       string
	brand            string
	priceRange       filter.PriceRange
	attributeFilters filter.AttributeFilters
	limit            int
	cursor           string
}

// New validates and constructs a SearchQuery. Any validation failure is
// reported before any external call is made (spec §4.1).
func New(
	text, categoryID, brand string,
	priceRange filter.PriceRange,
	attributeFilters map[string][]string,
	limit int,
	cursor string,
) (SearchQuery, error) {
	text = strings.TrimSpace(text)
	textLen := utf8.RuneCountInString(text)
	if textLen < MinTextLength {
		return SearchQuery{}, fmt.Errorf("q is required")
	}
	if textLen > MaxTextLength {
		return SearchQuery{}, fmt.Errorf("q must be at most %d characters", MaxTextLength)
	}

	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 1 || limit > MaxLimit {
		return SearchQuery{}, fmt.Errorf("limit must be between 1 and %d", MaxLimit)
	}

	return SearchQuery{
		text:             text,
		categoryID:       categoryID,
		brand:            brand,
		priceRange:       priceRange,
		attributeFilters: filter.NewAttributeFilters(attributeFilters),
		limit:            limit,
		cursor:           cursor,
	}, nil
}

// Text returns the trimmed search text.
func (q SearchQuery) Text() string { return q.text }

// CategoryID returns the exact-match category filter, empty if unset.
func (q SearchQuery) CategoryID() string { return q.categoryID }

// Brand returns the exact-match brand filter, empty if unset.
func (q SearchQuery) Brand() string { return q.brand }

// PriceRange returns the priceFrom bounds filter.
func (q SearchQuery) PriceRange() filter.PriceRange { return q.priceRange }

// AttributeFilters returns the normalized attribute filter set.
func (q SearchQuery) AttributeFilters() filter.AttributeFilters { return q.attributeFilters }

// Limit returns the page size (variant-level), 1-100.
func (q SearchQuery) Limit() int { return q.limit }

// Cursor returns the opaque continuation token, empty if this is page one.
func (q SearchQuery) Cursor() string { return q.cursor }
