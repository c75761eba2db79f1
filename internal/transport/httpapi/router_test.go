package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/catalog-search-gateway/internal/domain"
	"github.com/kailas-cloud/catalog-search-gateway/internal/domain/search/facetquery"
	"github.com/kailas-cloud/catalog-search-gateway/internal/domain/search/query"
	"github.com/kailas-cloud/catalog-search-gateway/internal/usecase/facets"
	"github.com/kailas-cloud/catalog-search-gateway/internal/usecase/health"
	"github.com/kailas-cloud/catalog-search-gateway/internal/usecase/search"
)

type fakeSearchService struct {
	resp search.Response
	err  error
}

func (f *fakeSearchService) Search(_ context.Context, _ query.SearchQuery, _ string) (search.Response, error) {
	return f.resp, f.err
}

type fakeFacetsService struct {
	resp facets.Response
	err  error
}

func (f *fakeFacetsService) Facets(_ context.Context, _ facetquery.FacetQuery, _ string) (facets.Response, error) {
	return f.resp, f.err
}

type fakePinger struct{ err error }

func (f *fakePinger) Ping(_ context.Context) error { return f.err }

type slowSearchService struct{ delay time.Duration }

func (s *slowSearchService) Search(ctx context.Context, _ query.SearchQuery, _ string) (search.Response, error) {
	select {
	case <-time.After(s.delay):
		return search.Response{}, nil
	case <-ctx.Done():
		return search.Response{}, ctx.Err()
	}
}

type fakeLimiter struct {
	allow bool
	err   error
}

func (f *fakeLimiter) Allow(_ context.Context, _ string) (bool, error) { return f.allow, f.err }

func newTestRouter(t *testing.T, searchSvc SearchService, facetsSvc FacetsService, limiter RateLimiter) http.Handler {
	t.Helper()
	healthSvc := health.New(&fakePinger{}, &fakePinger{}, &fakePinger{})
	h := NewHandlers(searchSvc, facetsSvc, healthSvc)
	return NewRouter(h, limiter, zap.NewNop(), "/api/v1", 30*time.Second)
}

func TestRouter_SearchSuccess(t *testing.T) {
	svc := &fakeSearchService{resp: search.Response{}}
	r := newTestRouter(t, svc, &fakeFacetsService{}, &fakeLimiter{allow: true})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=shoes", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))
}

func TestRouter_SearchMissingQueryIsBadRequest(t *testing.T) {
	r := newTestRouter(t, &fakeSearchService{}, &fakeFacetsService{}, &fakeLimiter{allow: true})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "BAD_REQUEST")
}

func TestRouter_SearchEngineUnavailableMapsTo503(t *testing.T) {
	svc := &fakeSearchService{err: domain.ErrEngineUnavailable}
	r := newTestRouter(t, svc, &fakeFacetsService{}, &fakeLimiter{allow: true})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=shoes", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "SERVICE_UNAVAILABLE")
}

func TestRouter_RateLimitedReturns429(t *testing.T) {
	r := newTestRouter(t, &fakeSearchService{}, &fakeFacetsService{}, &fakeLimiter{allow: false})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=shoes", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "RATE_LIMIT_EXCEEDED")
}

func TestRouter_HealthBypassesRateLimiter(t *testing.T) {
	r := newTestRouter(t, &fakeSearchService{}, &fakeFacetsService{}, &fakeLimiter{allow: false})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_FacetsMissingFacetKeysIsBadRequest(t *testing.T) {
	r := newTestRouter(t, &fakeSearchService{}, &fakeFacetsService{}, &fakeLimiter{allow: true})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search/facets?q=shoes", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ReadyIgnoresCacheFailure(t *testing.T) {
	healthSvc := health.New(&fakePinger{}, &fakePinger{}, &fakePinger{err: assert.AnError})
	h := NewHandlers(&fakeSearchService{}, &fakeFacetsService{}, healthSvc)
	r := NewRouter(h, &fakeLimiter{allow: true}, zap.NewNop(), "/api/v1", 30*time.Second)

	readyReq := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	readyRec := httptest.NewRecorder()
	r.ServeHTTP(readyRec, readyReq)
	assert.Equal(t, http.StatusOK, readyRec.Code)

	healthReq := httptest.NewRequest(http.MethodGet, "/health", nil)
	healthRec := httptest.NewRecorder()
	r.ServeHTTP(healthRec, healthReq)
	assert.Equal(t, http.StatusServiceUnavailable, healthRec.Code)
}

func TestRouter_GlobalDeadlineExceededReturns504(t *testing.T) {
	healthSvc := health.New(&fakePinger{}, &fakePinger{}, &fakePinger{})
	h := NewHandlers(&slowSearchService{delay: 200 * time.Millisecond}, &fakeFacetsService{}, healthSvc)
	r := NewRouter(h, &fakeLimiter{allow: true}, zap.NewNop(), "/api/v1", 20*time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=shoes", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Contains(t, rec.Body.String(), "GATEWAY_TIMEOUT")
}

func TestRouter_CorrelationIDIsEchoedWhenProvided(t *testing.T) {
	svc := &fakeSearchService{resp: search.Response{}}
	r := newTestRouter(t, svc, &fakeFacetsService{}, &fakeLimiter{allow: true})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=shoes", nil)
	req.Header.Set("X-Correlation-ID", "fixed-id")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "fixed-id", rec.Header().Get("X-Correlation-ID"))
}
