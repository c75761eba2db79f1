package facets

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/catalog-search-gateway/internal/domain"
	"github.com/kailas-cloud/catalog-search-gateway/internal/domain/search/facetquery"
	"github.com/kailas-cloud/catalog-search-gateway/internal/domain/search/filter"
	"github.com/kailas-cloud/catalog-search-gateway/internal/repository/engine"
)

type fakeEngine struct {
	result *engine.Result
	err    error
}

func (f *fakeEngine) Search(_ context.Context, _ map[string]any) (*engine.Result, error) {
	return f.result, f.err
}

type fakeCache struct {
	values map[string][]byte
	setN   int
}

func newFakeCache() *fakeCache { return &fakeCache{values: map[string][]byte{}} }

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := f.values[key]
	return v, ok
}

func (f *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) {
	f.setN++
	f.values[key] = value
}

func sampleQuery(t *testing.T) facetquery.FacetQuery {
	t.Helper()
	q, err := facetquery.New("shoes", "", "", filter.PriceRange{}, nil, []string{"brand"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return q
}

func TestService_Facets_CacheMissDecodesAggregations(t *testing.T) {
	eng := &fakeEngine{result: &engine.Result{
		Total:        42,
		Aggregations: json.RawMessage(`{"brand":{"buckets":[{"key":"Nike","doc_count":10}]}}`),
	}}
	cache := newFakeCache()
	svc := New(eng, cache, 600*time.Second)

	resp, err := svc.Facets(context.Background(), sampleQuery(t), "corr-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Key != "brand" {
		t.Fatalf("unexpected facets data: %+v", resp.Data)
	}
	if resp.Meta.TotalMatches != 42 {
		t.Errorf("expected totalMatches 42, got %d", resp.Meta.TotalMatches)
	}
	if cache.setN != 1 {
		t.Errorf("expected one cache write, got %d", cache.setN)
	}
}

func TestService_Facets_CacheHitRewritesMeta(t *testing.T) {
	eng := &fakeEngine{result: &engine.Result{
		Aggregations: json.RawMessage(`{"brand":{"buckets":[]}}`),
	}}
	cache := newFakeCache()
	svc := New(eng, cache, 600*time.Second)
	q := sampleQuery(t)

	if _, err := svc.Facets(context.Background(), q, "corr-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := svc.Facets(context.Background(), q, "corr-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Meta.CorrelationID != "corr-2" {
		t.Errorf("expected cache hit to carry new correlation id, got %q", second.Meta.CorrelationID)
	}
	if cache.setN != 1 {
		t.Errorf("expected only the first call to write the cache, got %d", cache.setN)
	}
}

func TestService_Facets_EngineErrorMapsToEngineUnavailable(t *testing.T) {
	eng := &fakeEngine{err: errors.New("connection refused")}
	cache := newFakeCache()
	svc := New(eng, cache, 600*time.Second)

	_, err := svc.Facets(context.Background(), sampleQuery(t), "corr-1")
	if !errors.Is(err, domain.ErrEngineUnavailable) {
		t.Errorf("expected ErrEngineUnavailable, got %v", err)
	}
}
