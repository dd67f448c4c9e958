package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls s.respondError(w, r, err)
//  3. statusFor picks the HTTP status from the core sentinels
//  4. core.MapError supplies the user-facing message and code
//  5. The technical error is logged with the request ID, the user message
//     is rendered as JSON or as an HTML fragment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/datagrid/internal/core"
	"github.com/JonMunkholm/datagrid/internal/logging"
)

// errInvalidBody wraps request decoding failures.
var errInvalidBody = errors.New("invalid request body")

func invalidBody(err error) error {
	return fmt.Errorf("%w: %v", errInvalidBody, err)
}

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrSessionNotFound),
		errors.Is(err, core.ErrUnknownTable),
		errors.Is(err, core.ErrActionNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidEvent),
		errors.Is(err, core.ErrEditRejected),
		errors.Is(err, errInvalidBody):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrActionDisabled):
		return http.StatusConflict
	case errors.Is(err, core.ErrTooManyFetches):
		return http.StatusTooManyRequests
	case errors.Is(err, core.ErrTooManySessions):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs the technical error and writes the user-facing message
// as JSON for API clients or as an HTML fragment for page requests.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	args := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", args...)
	} else {
		logger.Warn("request error", args...)
	}

	if status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", "5")
	}

	if wantsJSON(r) {
		writeJSON(w, status, ErrorResponse{
			Error:   userMsg.Message,
			Message: userMsg.Message,
			Action:  userMsg.Action,
			Code:    userMsg.Code,
		})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := errorAlert(userMsg).Render(r.Context(), w); err != nil {
		logger.Error("render error alert", "error", err)
	}
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if isHTMX(r) {
		return false
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
