package httpapi

import (
	"encoding/json"
	"net/http"
	"time"
)

// writeJSON marshals v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the ErrorResponse envelope for a single error code.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error: ErrorBody{Code: code, Message: message},
		Meta: ErrorMeta{
			Timestamp:     time.Now().UTC().Format(time.RFC3339),
			Path:          r.URL.Path,
			CorrelationID: CorrelationID(r.Context()),
		},
	})
}
