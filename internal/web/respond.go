// Package web provides the HTTP server and JSON API for MusicMind.
package web

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// errorBody is the JSON error envelope used by every endpoint.
type errorBody struct {
	Error string `json:"error"`
}

// Stable error messages surfaced to the frontend.
const (
	msgNotAuthenticated = "Not authenticated"
	msgSessionExpired   = "Session expired"
	msgQueryRequired    = "Query is required"
	msgAnalyticsFailed  = "Failed to generate analytics"
	msgUpstreamFailed   = "Upstream request failed"
)

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError writes the standard error envelope, logging server-side
// failures with request context.
func respondError(w http.ResponseWriter, logger zerolog.Logger, status int, msg string, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg(msg)
	}
	respondJSON(w, status, errorBody{Error: msg})
}
