package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON or writeError so the wire shape
// stays uniform. Errors always look like:
//
//	{"message": "Company name is required!"}
//
// The client store displays that message verbatim, so it must be safe to
// show a user: driver errors and stack details never reach it.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/applytrack/internal/apperror"
)

// Messages for failures that do not come from the service layer.
const (
	MsgInvalidJSON    = "Invalid JSON body"
	MsgRouteNotFound  = "Route not found"
	MsgUnknownFailure = "An unknown error occurred"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Message string `json:"message"`
}

// writeJSON sends a JSON response with the given status code.
//
// Headers and status must be set before the body is written; once Encode
// writes, header changes are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// noCache marks a response as not cacheable. List, create and update set it
// so a browser or proxy never serves a stale collection.
func noCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-cache")
}

// statusFor maps a domain error kind to its HTTP status.
//
//	ErrValidation → 400
//	ErrNotFound   → 404
//	ErrStorage    → 500
//
// ok is false for errors outside that enumeration.
func statusFor(err error) (status int, ok bool) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, true
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, apperror.ErrStorage):
		return http.StatusInternalServerError, true
	default:
		return http.StatusInternalServerError, false
	}
}

// writeError is the single place where domain errors become HTTP responses.
//
// The service layer knows nothing about status codes; it returns
// apperror kinds, and errors.Is walks the chain (AppError unwraps to its
// sentinel) to pick the status. Anything unrecognised is a generic 500 so
// raw error text (SQL, file paths) never leaks to the client.
func writeError(w http.ResponseWriter, err error) {
	status, ok := statusFor(err)

	var appErr *apperror.AppError
	if !ok || !errors.As(err, &appErr) {
		slog.Error("unhandled error", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: MsgUnknownFailure})
		return
	}

	writeJSON(w, status, ErrorResponse{Message: appErr.Message})
}
