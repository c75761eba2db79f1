package httpapi

import (
	"context"
	"net/http"

	"github.com/kailas-cloud/catalog-search-gateway/internal/domain/search/facetquery"
	"github.com/kailas-cloud/catalog-search-gateway/internal/domain/search/query"
	"github.com/kailas-cloud/catalog-search-gateway/internal/usecase/facets"
	"github.com/kailas-cloud/catalog-search-gateway/internal/usecase/health"
	"github.com/kailas-cloud/catalog-search-gateway/internal/usecase/search"
)

// SearchService is the dependency the /search handler needs.
type SearchService interface {
	Search(ctx context.Context, q query.SearchQuery, correlationID string) (search.Response, error)
}

// FacetsService is the dependency the /search/facets handler needs.
type FacetsService interface {
	Facets(ctx context.Context, q facetquery.FacetQuery, correlationID string) (facets.Response, error)
}

// Handlers holds the usecase services the HTTP layer dispatches to.
type Handlers struct {
	search SearchService
	facets FacetsService
	health *health.Service
}

// NewHandlers creates the Handlers.
func NewHandlers(searchSvc SearchService, facetsSvc FacetsService, healthSvc *health.Service) *Handlers {
	return &Handlers{search: searchSvc, facets: facetsSvc, health: healthSvc}
}

// Search handles GET /search.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	q, err := parseSearchQuery(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	resp, err := h.search.Search(r.Context(), q, CorrelationID(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Facets handles GET /search/facets.
func (h *Handlers) Facets(w http.ResponseWriter, r *http.Request) {
	q, err := parseFacetQuery(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	resp, err := h.facets.Facets(r.Context(), q, CorrelationID(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// healthResponse is the /health envelope.
type healthResponse struct {
	Status string                       `json:"status"`
	Checks map[string]health.CheckResult `json:"checks"`
}

// Health handles GET /health: full dependency aggregation.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	report := h.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != health.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthResponse{Status: string(report.Status), Checks: report.Checks})
}

// Live handles GET /health/live: the process is up, no dependency checks.
func (h *Handlers) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /health/ready: engine + catalog only, excluding
// cache, per spec §6 — a cache outage degrades gracefully and must
// never pull an otherwise-serving instance out of a load balancer.
func (h *Handlers) Ready(w http.ResponseWriter, r *http.Request) {
	report := h.health.CheckReady(r.Context())

	status := http.StatusOK
	if report.Status != health.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthResponse{Status: string(report.Status), Checks: report.Checks})
}
