// Package provider defines the federated token validation strategy.
//
// Each third-party identity provider verifies an externally supplied
// access token through its own call sequence (Facebook runs a two-step
// introspection, LinkedIn exchanges an authorization code) and returns a
// normalized profile. Implementations report identity facts only; user
// creation and linking happen in the service layer.
package provider

import (
	"context"
	"fmt"

	"github.com/jvolkers/stagemarkt-api/internal/model"
)

// Kind identifies a federated provider.
type Kind string

const (
	KindFacebook Kind = "facebook"
	KindLinkedIn Kind = "linkedin"
)

// Credential is the token material supplied with a federated login
// request. It is transient — validated once, never persisted.
type Credential struct {
	AccessToken string
	// RedirectURI is LinkedIn-only: the code exchange must repeat the
	// redirect URI used in the original authorization request.
	RedirectURI string
}

// TokenValidator verifies a provider credential and produces a normalized
// profile.
//
// Failure modes: apperror.ErrInvalidProviderToken when the provider
// reports the token invalid, apperror.ErrProviderUnavailable on any
// transport failure or timeout at any step.
type TokenValidator interface {
	Kind() Kind
	// AccountType is the internal account type assigned to users first
	// seen through this provider.
	AccountType() model.AccountType
	Validate(ctx context.Context, cred Credential) (*model.ExternalProfile, error)
}

// Registry holds the configured validators and allows lookup by kind.
type Registry struct {
	validators map[Kind]TokenValidator
}

// NewRegistry registers the given validators by kind.
func NewRegistry(list ...TokenValidator) *Registry {
	m := make(map[Kind]TokenValidator, len(list))
	for _, v := range list {
		m[v.Kind()] = v
	}
	return &Registry{validators: m}
}

// Get returns the validator for the given kind, or an error if none is
// registered.
func (r *Registry) Get(kind Kind) (TokenValidator, error) {
	v, ok := r.validators[kind]
	if !ok {
		return nil, fmt.Errorf("provider: unknown provider kind: %s", kind)
	}
	return v, nil
}
