package domain

import "errors"

// Sentinel errors for the search gateway's error taxonomy (spec §7).
// Transport-layer code maps these to HTTP status + stable error codes
// via errors.Is dispatch; nothing below carries transport concerns.
var (
	// ErrBadRequest signals a request that failed validation before any
	// external call was made.
	ErrBadRequest = errors.New("bad request")
	// ErrRateLimited signals the caller exceeded its request budget.
	ErrRateLimited = errors.New("rate limited")
	// ErrEngineUnavailable signals the search engine breaker is open or the
	// call timed out. The search path cannot degrade meaningfully from this.
	ErrEngineUnavailable = errors.New("search engine unavailable")
	// ErrTimeout signals the request's global deadline was exceeded.
	ErrTimeout = errors.New("request timeout")
	// ErrInternal signals an unexpected failure that should not leak detail
	// to the client.
	ErrInternal = errors.New("internal error")
)
