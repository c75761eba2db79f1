package facets

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalog-search-gateway/internal/domain"
	"github.com/kailas-cloud/catalog-search-gateway/internal/domain/search/facetquery"
	"github.com/kailas-cloud/catalog-search-gateway/internal/domain/search/result"
	"github.com/kailas-cloud/catalog-search-gateway/internal/logger"
	"github.com/kailas-cloud/catalog-search-gateway/internal/metrics"
	"github.com/kailas-cloud/catalog-search-gateway/internal/querybuilder"
	"github.com/kailas-cloud/catalog-search-gateway/internal/repository/engine"
	"github.com/kailas-cloud/catalog-search-gateway/internal/resilience"
	"github.com/kailas-cloud/catalog-search-gateway/internal/usecase"
)

// Engine is the dependency this usecase needs from the Search Engine
// Adapter.
type Engine interface {
	Search(ctx context.Context, body map[string]any) (*engine.Result, error)
}

// Cache is the dependency this usecase needs from the Response Cache.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// Response is the FacetsResponse envelope (spec §6).
type Response struct {
	Data []result.Facet `json:"data"`
	Meta Meta           `json:"meta"`
}

// Meta is the FacetsResponse meta block.
type Meta struct {
	Timestamp     time.Time `json:"timestamp"`
	CorrelationID string    `json:"correlationId,omitempty"`
	TotalMatches  int       `json:"totalMatches"`
	TookMillis    int64     `json:"took"`
}

// Service orchestrates the facets pipeline: cache check, aggregation
// query build, engine search, aggregation decode, and an opportunistic
// cache write-back (spec §4.2, §4.6).
type Service struct {
	engine   Engine
	cache    Cache
	cacheTTL time.Duration
}

// New creates a facets Service.
func New(eng Engine, cch Cache, cacheTTL time.Duration) *Service {
	return &Service{engine: eng, cache: cch, cacheTTL: cacheTTL}
}

// Facets executes the facet-aggregation pipeline for a validated query.
func (s *Service) Facets(ctx context.Context, q facetquery.FacetQuery, correlationID string) (Response, error) {
	profiler := usecase.NewProfiler()
	key := CacheKey(q)

	if response, ok := s.checkCache(ctx, profiler, key, correlationID); ok {
		return response, nil
	}

	body := querybuilder.BuildFacets(q)

	var engineResult *engine.Result
	var searchErr error
	profiler.Track("opensearch", func() {
		engineResult, searchErr = s.engine.Search(ctx, body)
	})
	if searchErr != nil {
		logger.FromContext(ctx).Warn("engine facets query failed", zap.Error(searchErr))
		return Response{}, fmt.Errorf("engine facets: %w", domain.ErrEngineUnavailable)
	}

	var facets []result.Facet
	var err error
	profiler.Track("buildResponse", func() {
		facets, err = decodeFacets(q.FacetKeys(), engineResult.Aggregations)
	})
	if err != nil {
		return Response{}, fmt.Errorf("decode facets: %w", domain.ErrInternal)
	}

	response := Response{
		Data: facets,
		Meta: Meta{
			Timestamp:     time.Now(),
			CorrelationID: correlationID,
			TotalMatches:  engineResult.Total,
		},
	}
	response.Meta.TookMillis = profiler.Total().Milliseconds()

	s.warmCache(ctx, profiler, key, response)
	return response, nil
}

func (s *Service) checkCache(ctx context.Context, profiler *usecase.Profiler, key, correlationID string) (Response, bool) {
	var cached Response
	var hit bool
	profiler.Track("cacheCheck", func() {
		raw, ok := s.cache.Get(ctx, key)
		if !ok {
			return
		}
		if err := json.Unmarshal(raw, &cached); err != nil {
			logger.FromContext(ctx).Warn("discarding corrupt cache entry", zap.String("key", key), zap.Error(err))
			return
		}
		hit = true
	})

	if !hit {
		metrics.CacheResult.WithLabelValues("facets", "miss").Inc()
		return Response{}, false
	}

	metrics.CacheResult.WithLabelValues("facets", "hit").Inc()
	cached.Meta.Timestamp = time.Now()
	cached.Meta.CorrelationID = correlationID
	return cached, true
}

func (s *Service) warmCache(ctx context.Context, profiler *usecase.Profiler, key string, response Response) {
	profiler.Track("cacheWrite", func() {
		payload, err := json.Marshal(response)
		if err != nil {
			logger.FromContext(ctx).Warn("failed to marshal facets response for caching", zap.Error(err))
			return
		}
		s.cache.Set(resilience.Background(ctx), key, payload, s.cacheTTL)
	})
}
