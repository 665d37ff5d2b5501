package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"memoryd/internal/inference"
	"memoryd/internal/memindex"
	"memoryd/internal/memstore"
	"memoryd/internal/persona"
	"memoryd/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var he HTTPError
	switch {
	case errors.As(err, &he):
		return he.StatusCode()
	case errors.Is(err, memstore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, memstore.ErrEmptyContent):
		return http.StatusBadRequest
	case errors.Is(err, persona.ErrNoMessages):
		return http.StatusConflict
	case memindex.IsEmbedFailed(err):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError writes err with its mapped status and returns the status.
func writeError(w http.ResponseWriter, r *http.Request, err error) int {
	status := statusFor(err)
	if status == http.StatusTooManyRequests {
		reason := "lifecycle"
		if inference.IsTooBusy(err) {
			reason = "generation"
		}
		IncrementBackpressure(reason)
	}
	if status >= http.StatusInternalServerError {
		logger().Error().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request failed")
	}
	writeJSONError(w, status, err.Error())
	return status
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}
