// Package handler provides HTTP request handlers.
//
// Failures cross this boundary exactly once: every handler funnels errors
// through renderError, which maps the typed failure to a status code and
// the response body. Internal failures never leak detail to the caller.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/notevault/notevault/internal/apperr"
	"github.com/notevault/notevault/internal/middleware"
)

// successResponse is the envelope for every successful response.
type successResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// errorResponse is the envelope for every failed response. Stack is
// populated only in development; Extra only when the failure carries
// structured detail.
type errorResponse struct {
	ErrorMessage string         `json:"error_message"`
	Stack        string         `json:"stack,omitempty"`
	Extra        map[string]any `json:"extra,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeSuccess writes the success envelope.
func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, successResponse{Message: message, Data: data})
}

// renderError maps err to the response body. 5xx failures are logged with
// their internal detail; the caller only ever sees the generic message.
func renderError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, development bool, err error) {
	e := apperr.From(err)

	if e.Status >= http.StatusInternalServerError {
		logger.Error("request failed",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
	}

	body := errorResponse{
		ErrorMessage: e.PublicMessage(),
		Extra:        e.Extra,
	}
	if development && len(e.Stack) > 0 {
		body.Stack = string(e.Stack)
	}

	writeJSON(w, e.Status, body)
}

// NotFound handles 404 responses for unrouted paths.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{ErrorMessage: "resource not found"})
}

// MethodNotAllowed handles 405 responses.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{ErrorMessage: "method not allowed"})
}
