package httpapi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalog-search-gateway/internal/domain"
	"github.com/kailas-cloud/catalog-search-gateway/internal/logger"
)

// ErrorResponse is the wire shape of every non-2xx response (spec §6).
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
	Meta  ErrorMeta `json:"meta"`
}

// ErrorBody carries the stable error code and a client-safe message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorMeta mirrors the success envelope's meta block, minus pagination.
type ErrorMeta struct {
	Timestamp     string `json:"timestamp"`
	Path          string `json:"path"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// errorHandler matches one sentinel and writes the corresponding
// response, reporting whether it handled the error at all — the same
// dispatch-table pattern as the teacher's sentinelHandler.
type errorHandler func(w http.ResponseWriter, r *http.Request, err error) bool

// sentinelHandler returns an errorHandler bound to a single sentinel
// error, stable HTTP status, and stable error code string (spec §6/§7).
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, r *http.Request, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, r, status, code, sentinel.Error())
		return true
	}
}

// errorHandlers is the dispatch table mapping this gateway's sentinel
// errors to the stable error codes of spec §6.
var errorHandlers = []errorHandler{
	sentinelHandler(domain.ErrBadRequest, http.StatusBadRequest, "BAD_REQUEST"),
	sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED"),
	sentinelHandler(domain.ErrEngineUnavailable, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"),
	sentinelHandler(domain.ErrTimeout, http.StatusGatewayTimeout, "GATEWAY_TIMEOUT"),
}

// handleError dispatches err through the sentinel table, falling back
// to a generic 500 INTERNAL_ERROR for anything unrecognized — the
// original error is logged with full detail, the client only ever sees
// the stable code and a safe message (spec §7).
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	for _, h := range errorHandlers {
		if h(w, r, err) {
			return
		}
	}
	logger.FromContext(r.Context()).Error("unhandled error", zap.Error(err))
	writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
}
