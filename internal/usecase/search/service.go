package search

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalog-search-gateway/internal/domain"
	domaincatalog "github.com/kailas-cloud/catalog-search-gateway/internal/domain/catalog"
	"github.com/kailas-cloud/catalog-search-gateway/internal/domain/search/query"
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

// Catalog is the dependency this usecase needs from the Catalog
// Enricher.
type Catalog interface {
	VariantOptions(ctx context.Context, productIDs []string) (map[string][]domaincatalog.VariantOption, error)
}

// Cache is the dependency this usecase needs from the Response Cache.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// Suggester runs the suggestion pipeline for zero-result queries. It
// never returns an error to its caller — suggestion failure is
// absorbed internally (spec §4.7) — so the contract here is a plain
// slice, nil meaning "no suggestions available."
type Suggester interface {
	Suggest(ctx context.Context, text string) []result.Suggestion
}

// Response is the SearchResponse envelope (spec §6).
type Response struct {
	Data        []result.ProductResult `json:"data"`
	Meta        Meta                   `json:"meta"`
	Suggestions []result.Suggestion    `json:"suggestions,omitempty"`
}

// Meta is the SearchResponse meta block.
type Meta struct {
	Timestamp     time.Time  `json:"timestamp"`
	CorrelationID string     `json:"correlationId,omitempty"`
	Pagination    Pagination `json:"pagination"`
	TookMillis    int64      `json:"took"`
}

// Pagination is the SearchResponse meta.pagination block.
type Pagination struct {
	Total      int    `json:"total"`
	Count      int    `json:"count"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// Service orchestrates the search pipeline: cache check, query build,
// engine search, catalog enrichment, grouping, and an opportunistic
// cache write-back (spec §4).
type Service struct {
	engine    Engine
	catalog   Catalog
	cache     Cache
	suggester Suggester
	cacheTTL  time.Duration
	boost     querybuilder.SalesBoostConfig
}

// Option configures an optional Service dependency.
type Option func(*Service)

// WithSuggester attaches the suggestion pipeline. Without one, zero-
// result searches simply carry no suggestions.
func WithSuggester(s Suggester) Option {
	return func(svc *Service) { svc.suggester = s }
}

// New creates a search Service.
func New(eng Engine, cat Catalog, cch Cache, cacheTTL time.Duration, boost querybuilder.SalesBoostConfig, opts ...Option) *Service {
	svc := &Service{engine: eng, catalog: cat, cache: cch, cacheTTL: cacheTTL, boost: boost}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Search executes the full pipeline for a validated query and returns
// the response envelope ready to serialize to the client.
func (s *Service) Search(ctx context.Context, q query.SearchQuery, correlationID string) (Response, error) {
	profiler := usecase.NewProfiler()
	key := CacheKey(q)

	if response, ok := s.checkCache(ctx, profiler, key, correlationID); ok {
		return response, nil
	}

	body := querybuilder.BuildSearch(q, s.boost)

	var engineResult *engine.Result
	var searchErr error
	profiler.Track("opensearch", func() {
		engineResult, searchErr = s.engine.Search(ctx, body)
	})
	if searchErr != nil {
		logger.FromContext(ctx).Warn("engine search failed", zap.Error(searchErr))
		return Response{}, fmt.Errorf("engine search: %w", domain.ErrEngineUnavailable)
	}

	productIDs, err := ProductIDs(engineResult.Hits)
	if err != nil {
		return Response{}, fmt.Errorf("decode hits: %w", domain.ErrInternal)
	}

	var variantOptions map[string][]domaincatalog.VariantOption
	profiler.Track("postgres", func() {
		variantOptions, _ = s.catalog.VariantOptions(ctx, productIDs)
	})

	var products []result.ProductResult
	profiler.Track("grouping", func() {
		products, err = GroupHits(engineResult.Hits, variantOptions)
	})
	if err != nil {
		return Response{}, fmt.Errorf("group hits: %w", domain.ErrInternal)
	}

	var response Response
	profiler.Track("buildResponse", func() {
		response = Response{
			Data: products,
			Meta: Meta{
				Timestamp:     time.Now(),
				CorrelationID: correlationID,
				Pagination: Pagination{
					Total:      engineResult.Total,
					Count:      len(products),
					NextCursor: NextCursor(engineResult.Hits, q.Limit()),
				},
			},
		}
		if engineResult.Total == 0 && s.suggester != nil {
			response.Suggestions = s.suggester.Suggest(ctx, q.Text())
		}
	})

	response.Meta.TookMillis = profiler.Total().Milliseconds()
	s.warmCache(ctx, profiler, key, response)

	logSearchProfile(ctx, profiler)
	return response, nil
}

// checkCache serves a cached response if present, rewriting its
// timestamp and correlationId to the current request's while keeping
// the cached took value (spec §4.6's staleness acknowledgment).
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
		metrics.CacheResult.WithLabelValues("search", "miss").Inc()
		return Response{}, false
	}

	metrics.CacheResult.WithLabelValues("search", "hit").Inc()
	cached.Meta.Timestamp = time.Now()
	cached.Meta.CorrelationID = correlationID
	return cached, true
}

// warmCache marshals and stores the response under a context detached
// from the inbound request's cancellation, then returns — a client
// disconnect must not abort cache warming (spec §5).
func (s *Service) warmCache(ctx context.Context, profiler *usecase.Profiler, key string, response Response) {
	profiler.Track("cacheWrite", func() {
		payload, err := json.Marshal(response)
		if err != nil {
			logger.FromContext(ctx).Warn("failed to marshal search response for caching", zap.Error(err))
			return
		}
		s.cache.Set(resilience.Background(ctx), key, payload, s.cacheTTL)
	})
}

func logSearchProfile(ctx context.Context, profiler *usecase.Profiler) {
	fields := profiler.Fields()
	logger.FromContext(ctx).Info("search profile",
		zap.Duration("cacheCheck", fields["cacheCheck"]),
		zap.Duration("opensearch", fields["opensearch"]),
		zap.Duration("postgres", fields["postgres"]),
		zap.Duration("grouping", fields["grouping"]),
		zap.Duration("buildResponse", fields["buildResponse"]),
		zap.Duration("cacheWrite", fields["cacheWrite"]),
		zap.Duration("total", fields["total"]),
	)
}
