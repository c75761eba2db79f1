package httpapi

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/catalog-search-gateway/internal/domain"
	"github.com/kailas-cloud/catalog-search-gateway/internal/logger"
	"github.com/kailas-cloud/catalog-search-gateway/internal/metrics"
)

type ctxKey int

const correlationIDKey ctxKey = iota

// CorrelationID extracts the request's correlation ID from ctx, empty
// if none was attached.
func CorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// correlationMiddleware reads X-Correlation-ID from the request, or
// generates one, then echoes it on the response and attaches it to the
// request context for handlers and logging (spec §6).
func correlationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Correlation-ID"))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Correlation-ID", id)
		ctx := context.WithValue(r.Context(), correlationIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// jsonRecoverer returns JSON instead of a plain-text stacktrace when a
// handler panics.
func jsonRecoverer(log *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					log.Error("panic recovered", zap.Any("panic", rvr), zap.Stack("stacktrace"))
					writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a single canonical log line per request and
// attaches a request-scoped logger to the context.
func wideEventMiddleware(log *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			reqLogger := log.With(
				zap.String("request_id", requestID),
				zap.String("correlation_id", CorrelationID(r.Context())),
			)
			ctx := logger.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}

// requestDeadlineMiddleware bounds the whole request by the configured
// global timeout, independent of the narrower per-dependency timeouts
// applied inside the engine/catalog adapters (spec §5). If the deadline
// fires before the handler has written a response, it short-circuits
// with 504 GATEWAY_TIMEOUT and leaves the handler's goroutine to unwind
// on its own once the cancelled context propagates to its in-flight I/O.
func requestDeadlineMiddleware(d time.Duration) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			tw := newTimeoutWriter(w)
			done := make(chan struct{})
			go func() {
				defer close(done)
				next.ServeHTTP(tw, r.WithContext(ctx))
			}()

			select {
			case <-done:
			case <-ctx.Done():
				tw.mu.Lock()
				alreadyResponded := tw.wroteHeader
				tw.timedOut = true
				tw.mu.Unlock()
				if !alreadyResponded {
					handleError(w, r, domain.ErrTimeout)
				}
			}
		})
	}
}

// timeoutWriter buffers headers written by a handler running on its own
// goroutine so a concurrent timeout response from the middleware never
// races the handler over the underlying ResponseWriter's header map.
type timeoutWriter struct {
	w http.ResponseWriter
	h http.Header

	mu          sync.Mutex
	wroteHeader bool
	timedOut    bool
}

func newTimeoutWriter(w http.ResponseWriter) *timeoutWriter {
	return &timeoutWriter{w: w, h: make(http.Header)}
}

func (tw *timeoutWriter) Header() http.Header { return tw.h }

func (tw *timeoutWriter) WriteHeader(status int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut || tw.wroteHeader {
		return
	}
	tw.wroteHeader = true
	dst := tw.w.Header()
	for k, v := range tw.h {
		dst[k] = v
	}
	tw.w.WriteHeader(status)
}

func (tw *timeoutWriter) Write(p []byte) (int, error) {
	tw.mu.Lock()
	timedOut := tw.timedOut
	wroteHeader := tw.wroteHeader
	tw.wroteHeader = true
	tw.mu.Unlock()

	if timedOut {
		return len(p), nil
	}
	if !wroteHeader {
		dst := tw.w.Header()
		for k, v := range tw.h {
			dst[k] = v
		}
		tw.w.WriteHeader(http.StatusOK)
	}
	return tw.w.Write(p)
}

// RateLimiter is the dependency the throttle middleware needs.
type RateLimiter interface {
	Allow(ctx context.Context, scope string) (bool, error)
}

// rateLimitMiddleware throttles by client IP, exempting health-probe
// paths (spec §4.8). A limiter failure is treated as an allow rather
// than rejecting traffic on a Redis hiccup.
func rateLimitMiddleware(limiter RateLimiter) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/health") {
				next.ServeHTTP(w, r)
				return
			}

			scope := clientIP(r)
			allowed, err := limiter.Allow(r.Context(), scope)
			if err != nil {
				logger.FromContext(r.Context()).Warn("rate limiter unavailable, allowing request", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				metrics.RateLimitRejections.WithLabelValues(scope).Inc()
				handleError(w, r, domain.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		return host[:idx]
	}
	return host
}
