package apperror

import (
	"context"
	"errors"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "InvalidCredentials wraps ErrInvalidCredentials",
			err:       InvalidCredentials("Username or password was incorrect!"),
			target:    ErrInvalidCredentials,
			wantMatch: true,
		},
		{
			name:      "InvalidProviderToken wraps ErrInvalidProviderToken",
			err:       InvalidProviderToken("Facebook access token is invalid!"),
			target:    ErrInvalidProviderToken,
			wantMatch: true,
		},
		{
			name:      "ProviderUnavailable wraps ErrProviderUnavailable",
			err:       ProviderUnavailable("Facebook", errors.New("connection refused")),
			target:    ErrProviderUnavailable,
			wantMatch: true,
		},
		{
			name:      "ProviderUnavailable keeps its cause in the chain",
			err:       ProviderUnavailable("LinkedIn", context.DeadlineExceeded),
			target:    context.DeadlineExceeded,
			wantMatch: true,
		},
		{
			name:      "DuplicateEmail wraps ErrDuplicateEmail",
			err:       DuplicateEmail("a@example.com"),
			target:    ErrDuplicateEmail,
			wantMatch: true,
		},
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("user", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "InvalidCredentials does NOT match ErrInvalidProviderToken",
			err:       InvalidCredentials("wrong"),
			target:    ErrInvalidProviderToken,
			wantMatch: false,
		},
		{
			name:      "ValidationFailed does NOT match ErrNotFound",
			err:       ValidationFailed("name", "too long"),
			target:    ErrNotFound,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "DuplicateEmail includes the address",
			err:         DuplicateEmail("a@example.com"),
			wantMessage: "A user with email address 'a@example.com' already exists!",
		},
		{
			name:        "NotFound includes resource and id",
			err:         NotFound("user", "abc123"),
			wantMessage: "user not found with id abc123",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("name", "name is required"),
			wantMessage: "name is required",
		},
		{
			name:        "InvalidCredentials uses custom message",
			err:         InvalidCredentials("Username or password was incorrect!"),
			wantMessage: "Username or password was incorrect!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestDuplicateEmailField(t *testing.T) {
	if err := DuplicateEmail("a@example.com"); err.Field != "emailAddress" {
		t.Errorf("Field = %q, want %q", err.Field, "emailAddress")
	}
}
