// Package httpserver contains HTTP handlers and middleware.
//
// Every response uses one envelope: {"status": "success"|"error", "message"?,
// ...resource keys}. writeError is the only place a domain error becomes a
// client-facing status code and message.
package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/internx/internx/internal/domain"
	obsctx "github.com/internx/internx/internal/observability"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// errorBody is the error form of the envelope.
type errorBody struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Code      string `json:"code"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// errorClass is the client-facing projection of one taxonomy sentinel.
type errorClass struct {
	kind    error
	status  int
	code    string
	message string // used when the error carries no client-safe message
	expose  bool   // whether a domain.Error message may be shown
}

var errorClasses = []errorClass{
	{domain.ErrInvalidArgument, http.StatusBadRequest, "INVALID_ARGUMENT", "Invalid request.", true},
	{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND", "Resource not found.", true},
	{domain.ErrConflict, http.StatusConflict, "CONFLICT", "Resource already exists.", true},
	{domain.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests.", true},
	{domain.ErrUpstreamUnavailable, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "Failed to communicate with the AI service. Please try again later.", false},
	{domain.ErrSchemaInvalid, http.StatusInternalServerError, "SCHEMA_INVALID", "Failed to parse AI response.", false},
	{domain.ErrConfiguration, http.StatusInternalServerError, "CONFIGURATION", "Server configuration error.", true},
	{domain.ErrPersistence, http.StatusInternalServerError, "INTERNAL", "An unexpected server error occurred.", false},
}

var internalClass = errorClass{domain.ErrInternal, http.StatusInternalServerError, "INTERNAL", "An unexpected server error occurred.", false}

func classifyError(err error) errorClass {
	for _, c := range errorClasses {
		if errors.Is(err, c.kind) {
			return c
		}
	}
	return internalClass
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeSuccess writes {"status":"success","message":msg, ...body}.
func writeSuccess(w http.ResponseWriter, status int, msg string, body map[string]any) {
	out := make(map[string]any, len(body)+2)
	for k, v := range body {
		out[k] = v
	}
	out["status"] = statusSuccess
	if msg != "" {
		out["message"] = msg
	}
	writeJSON(w, status, out)
}

// writeError maps err onto the envelope. Internal details are logged with the
// request id and never sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	c := classifyError(err)
	body := errorBody{Status: statusError, Code: c.code, Message: c.message, RequestID: obsctx.RequestIDFromContext(r.Context())}
	if de, ok := domain.PublicError(err); ok {
		if c.expose && de.Message != "" {
			body.Message = de.Message
		}
		body.Field = de.Field
		if de.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(de.RetryAfter.Seconds()))))
		}
	}

	lg := LoggerFrom(r)
	attrs := []any{slog.String("code", c.code), slog.Int("status", c.status), slog.Any("error", err)}
	if c.status >= http.StatusInternalServerError {
		lg.Error("request failed", attrs...)
	} else {
		lg.Debug("request rejected", attrs...)
	}
	writeJSON(w, c.status, body)
}

// writeStatusError writes an error envelope for conditions detected by the
// transport itself (unknown route, oversized body).
func writeStatusError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(w, status, errorBody{Status: statusError, Code: code, Message: msg, RequestID: obsctx.RequestIDFromContext(r.Context())})
}
