package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors for the authentication domain. Services wrap these via
// the constructors below; handlers map them to HTTP status codes with
// errors.Is.
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidProviderToken = errors.New("invalid provider token")
	ErrProviderUnavailable  = errors.New("provider unavailable")
	ErrDuplicateEmail       = errors.New("duplicate email")
	ErrExpired              = errors.New("token expired")
	ErrInvalidSignature     = errors.New("invalid token signature")
	ErrInvalidIssuer        = errors.New("invalid token issuer")
	ErrInvalidAudience      = errors.New("invalid token audience")
	ErrUnauthenticated      = errors.New("unauthenticated")
	// ErrUnauthorized exists for role-gated endpoints. No endpoint enforces
	// roles yet; the admin listing in the original API had its role check
	// commented out.
	ErrUnauthorized = errors.New("unauthorized")

	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
)

type AppError struct {
	Err     error  // sentinel, for errors.Is
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func InvalidCredentials(message string) *AppError {
	return &AppError{Err: ErrInvalidCredentials, Message: message}
}

func InvalidProviderToken(message string) *AppError {
	return &AppError{Err: ErrInvalidProviderToken, Message: message}
}

func ProviderUnavailable(provider string, cause error) *AppError {
	return &AppError{
		Err:     errors.Join(ErrProviderUnavailable, cause),
		Message: fmt.Sprintf("%s could not be reached to verify the access token", provider),
	}
}

func DuplicateEmail(email string) *AppError {
	return &AppError{
		Err:     ErrDuplicateEmail,
		Message: fmt.Sprintf("A user with email address '%s' already exists!", email),
		Field:   "emailAddress",
	}
}

func Unauthenticated() *AppError {
	return &AppError{Err: ErrUnauthenticated, Message: "valid authentication required"}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}
