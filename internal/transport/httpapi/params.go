package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/kailas-cloud/catalog-search-gateway/internal/domain"
	"github.com/kailas-cloud/catalog-search-gateway/internal/domain/search/facetquery"
	"github.com/kailas-cloud/catalog-search-gateway/internal/domain/search/filter"
	"github.com/kailas-cloud/catalog-search-gateway/internal/domain/search/query"
)

// parseSearchQuery builds a validated SearchQuery from the request's
// query-string parameters (spec §6): q, categoryId, brand,
// priceRange[min]/priceRange[max], filters (a JSON object string),
// limit, cursor.
func parseSearchQuery(r *http.Request) (query.SearchQuery, error) {
	values := r.URL.Query()

	priceRange, err := parsePriceRange(values)
	if err != nil {
		return query.SearchQuery{}, err
	}

	attrs, err := parseAttributeFilters(values.Get("filters"))
	if err != nil {
		return query.SearchQuery{}, err
	}

	limit, err := parseLimit(values.Get("limit"))
	if err != nil {
		return query.SearchQuery{}, err
	}

	q, err := query.New(
		values.Get("q"),
		values.Get("categoryId"),
		values.Get("brand"),
		priceRange,
		attrs,
		limit,
		values.Get("cursor"),
	)
	if err != nil {
		return query.SearchQuery{}, fmt.Errorf("%w: %s", domain.ErrBadRequest, err)
	}
	return q, nil
}

// parseFacetQuery builds a validated FacetQuery from the request's
// query-string parameters: the same filters as search, plus a
// comma-separated facetKeys list.
func parseFacetQuery(r *http.Request) (facetquery.FacetQuery, error) {
	values := r.URL.Query()

	priceRange, err := parsePriceRange(values)
	if err != nil {
		return facetquery.FacetQuery{}, err
	}

	attrs, err := parseAttributeFilters(values.Get("filters"))
	if err != nil {
		return facetquery.FacetQuery{}, err
	}

	var facetKeys []string
	for _, k := range strings.Split(values.Get("facetKeys"), ",") {
		k = strings.TrimSpace(k)
		if k != "" {
			facetKeys = append(facetKeys, k)
		}
	}

	q, err := facetquery.New(
		values.Get("q"),
		values.Get("categoryId"),
		values.Get("brand"),
		priceRange,
		attrs,
		facetKeys,
	)
	if err != nil {
		return facetquery.FacetQuery{}, fmt.Errorf("%w: %s", domain.ErrBadRequest, err)
	}
	return q, nil
}

func parsePriceRange(values map[string][]string) (filter.PriceRange, error) {
	min, err := parseOptionalFloat(first(values, "priceRange[min]"))
	if err != nil {
		return filter.PriceRange{}, fmt.Errorf("%w: priceRange.min must be numeric", domain.ErrBadRequest)
	}
	max, err := parseOptionalFloat(first(values, "priceRange[max]"))
	if err != nil {
		return filter.PriceRange{}, fmt.Errorf("%w: priceRange.max must be numeric", domain.ErrBadRequest)
	}

	pr, err := filter.NewPriceRange(min, max)
	if err != nil {
		return filter.PriceRange{}, fmt.Errorf("%w: %s", domain.ErrBadRequest, err)
	}
	return pr, nil
}

// parseAttributeFilters decodes the filters query param into a
// map[string][]string, accepting either shape spec §3 allows for a
// value: a single scalar ("Blue") or a set of values (["Blue","Red"]).
// It decodes into map[string]any first because encoding/json refuses to
// unmarshal a bare string into []string.
func parseAttributeFilters(raw string) (map[string][]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var loose map[string]any
	if err := json.Unmarshal([]byte(raw), &loose); err != nil {
		return nil, fmt.Errorf("%w: filters must be a JSON object of strings or string arrays", domain.ErrBadRequest)
	}

	attrs := make(map[string][]string, len(loose))
	for key, v := range loose {
		switch val := v.(type) {
		case string:
			attrs[key] = []string{val}
		case []any:
			values := make([]string, 0, len(val))
			for _, item := range val {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("%w: filters.%s must contain only strings", domain.ErrBadRequest, key)
				}
				values = append(values, s)
			}
			attrs[key] = values
		default:
			return nil, fmt.Errorf("%w: filters.%s must be a string or an array of strings", domain.ErrBadRequest, key)
		}
	}
	return attrs, nil
}

func parseLimit(raw string) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: limit must be an integer", domain.ErrBadRequest)
	}
	return n, nil
}

func parseOptionalFloat(raw string) (*float64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func first(values map[string][]string, key string) string {
	v, ok := values[key]
	if !ok || len(v) == 0 {
		return ""
	}
	return v[0]
}
