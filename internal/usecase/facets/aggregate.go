package facets

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/catalog-search-gateway/internal/domain/search/result"
	"github.com/kailas-cloud/catalog-search-gateway/internal/querybuilder"
)

type aggBucket struct {
	Key      json.RawMessage `json:"key"`
	DocCount int             `json:"doc_count"`
	From     *float64        `json:"from"`
	To       *float64        `json:"to"`
}

type aggResult struct {
	Buckets []aggBucket `json:"buckets"`
}

// decodeFacets turns the engine's raw aggregations block into the
// ordered Facet list the response envelope carries, one per requested
// key present in the response. priceFrom decodes as a range facet
// whose buckets are paired positionally with the fixed labels the
// query builder used to construct the ranges; every other key decodes
// as a terms facet.
func decodeFacets(keys []string, raw json.RawMessage) ([]result.Facet, error) {
	aggs := map[string]aggResult{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &aggs); err != nil {
			return nil, fmt.Errorf("decode aggregations: %w", err)
		}
	}

	labels := querybuilder.PriceRangeLabels()
	facets := make([]result.Facet, 0, len(keys))
	for _, key := range keys {
		agg, ok := aggs[key]
		if !ok {
			continue
		}
		if key == "priceFrom" {
			facets = append(facets, result.Facet{
				Key: key, Name: key, Type: "range",
				Ranges: decodeRangeBuckets(agg.Buckets, labels),
			})
			continue
		}
		facets = append(facets, result.Facet{
			Key: key, Name: key, Type: "terms",
			Buckets: decodeTermsBuckets(agg.Buckets),
		})
	}
	return facets, nil
}

func decodeRangeBuckets(buckets []aggBucket, labels []string) []result.FacetRangeBucket {
	out := make([]result.FacetRangeBucket, 0, len(buckets))
	for i, b := range buckets {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		out = append(out, result.FacetRangeBucket{From: b.From, To: b.To, Count: b.DocCount, Label: label})
	}
	return out
}

func decodeTermsBuckets(buckets []aggBucket) []result.FacetBucket {
	out := make([]result.FacetBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, result.FacetBucket{Value: bucketKeyString(b.Key), Count: b.DocCount})
	}
	return out
}

// bucketKeyString decodes a terms bucket key, which is almost always a
// JSON string but may be a number for numeric keyword fields.
func bucketKeyString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
