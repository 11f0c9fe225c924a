package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jvolkers/stagemarkt-api/internal/apperror"
)

// ErrorResponse is the standard error format returned by all endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`   // machine-readable error type
	Message string `json:"message"` // human-readable description
}

// writeJSON sends a JSON response with the given status code. Headers and
// status must be written before the body; once Encode writes, the headers
// are gone out.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to its HTTP status and sends it.
//
// All authentication failures land in the 4xx range. Token validation
// failures (expired, bad signature, wrong issuer/audience) all map to the
// same 401 unauthenticated response so the client cannot probe which
// check rejected the token. A provider outage is a 400 on the login
// request rather than a 5xx — the request cannot succeed as submitted and
// retrying is the caller's call.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"
		message := appErr.Message

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status, errorType = http.StatusBadRequest, "validation_error"
		case errors.Is(err, apperror.ErrInvalidCredentials):
			status, errorType = http.StatusBadRequest, "invalid_credentials"
		case errors.Is(err, apperror.ErrInvalidProviderToken):
			status, errorType = http.StatusBadRequest, "invalid_provider_token"
		case errors.Is(err, apperror.ErrProviderUnavailable):
			status, errorType = http.StatusBadRequest, "provider_unavailable"
		case errors.Is(err, apperror.ErrDuplicateEmail):
			status, errorType = http.StatusBadRequest, "duplicate_email"
		case errors.Is(err, apperror.ErrExpired),
			errors.Is(err, apperror.ErrInvalidSignature),
			errors.Is(err, apperror.ErrInvalidIssuer),
			errors.Is(err, apperror.ErrInvalidAudience),
			errors.Is(err, apperror.ErrUnauthenticated):
			status, errorType = http.StatusUnauthorized, "unauthenticated"
			message = "valid authentication required"
		case errors.Is(err, apperror.ErrUnauthorized):
			status, errorType = http.StatusForbidden, "forbidden"
		case errors.Is(err, apperror.ErrNotFound):
			status, errorType = http.StatusNotFound, "not_found"
		}

		writeJSON(w, status, ErrorResponse{Error: errorType, Message: message})
		return
	}

	// Unknown error — generic 500, no internal details leaked.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
