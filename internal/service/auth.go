// Package service contains the business logic layer: the authentication
// orchestrator, the identity resolver, and the account/favorite/review
// services. Handlers parse HTTP and delegate here; repositories persist.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jvolkers/stagemarkt-api/internal/apperror"
	"github.com/jvolkers/stagemarkt-api/internal/auth"
	"github.com/jvolkers/stagemarkt-api/internal/auth/provider"
	"github.com/jvolkers/stagemarkt-api/internal/model"
	"github.com/jvolkers/stagemarkt-api/internal/repository"
)

// AuthService orchestrates logins and token validation.
//
// A login runs validator → resolver → claims → token issue in sequence;
// the first failure short-circuits with the most specific error. No state
// is shared between calls beyond the user store and the immutable token
// configuration, so concurrent logins for distinct emails are fully
// independent.
type AuthService struct {
	users     repository.UserRepository
	resolver  *IdentityResolver
	providers *provider.Registry
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	tokenTTL  time.Duration
	logger    *slog.Logger
}

// NewAuthService creates an AuthService. tokenTTL is the default session
// token lifetime; federated logins may get a shorter one (see
// LoginWithProvider).
func NewAuthService(
	users repository.UserRepository,
	resolver *IdentityResolver,
	providers *provider.Registry,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	tokenTTL time.Duration,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		resolver:  resolver,
		providers: providers,
		tokens:    tokens,
		passwords: passwords,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

// LoginLocal authenticates an email/password pair and issues a session
// token.
//
// Unknown email, wrong password, and federated accounts (which have no
// password hash) all fail with the same ErrInvalidCredentials — the
// response never distinguishes "no such user" from "wrong password".
func (s *AuthService) LoginLocal(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", apperror.InvalidCredentials("Username or password was incorrect!")
		}
		return "", fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if user.AccountType != model.AccountTypeAPI || user.PasswordHash == "" {
		return "", apperror.InvalidCredentials("Username or password was incorrect!")
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return "", err
	}

	s.logger.Info("local login", slog.String("userID", user.ID))

	return s.issueFor(user, time.Time{})
}

// LoginWithProvider authenticates a federated credential and issues a
// session token, creating the internal user on first login.
//
// The provider validator fails ErrInvalidProviderToken or
// ErrProviderUnavailable before any user record is touched — a rejected
// token never creates an account. If the resolver creates a user and
// token issuing fails afterwards, the user stays; an immediate retry
// resolves to the existing record.
func (s *AuthService) LoginWithProvider(ctx context.Context, kind provider.Kind, cred provider.Credential) (string, error) {
	validator, err := s.providers.Get(kind)
	if err != nil {
		return "", err
	}

	profile, err := validator.Validate(ctx, cred)
	if err != nil {
		return "", err
	}

	if profile.Email == "" {
		return "", apperror.InvalidProviderToken(
			fmt.Sprintf("%s did not return an email address for this token", kind))
	}

	user, err := s.resolver.Resolve(ctx, profile, validator.AccountType())
	if err != nil {
		return "", err
	}

	s.logger.Info("federated login",
		slog.String("userID", user.ID),
		slog.String("provider", string(kind)),
	)

	return s.issueFor(user, profile.TokenExpiry)
}

// Register creates a local account. Thin delegation to the resolver; the
// handler owns request validation (terms acceptance, required fields).
func (s *AuthService) Register(ctx context.Context, login, password, email string) (*model.User, error) {
	return s.resolver.RegisterLocal(ctx, login, password, email)
}

// AuthenticateRequest validates a session token and returns its claims.
// Pure delegation to the token service; the HTTP middleware collapses all
// failures to a generic 401.
func (s *AuthService) AuthenticateRequest(tokenStr string) (auth.Claims, error) {
	return s.tokens.Validate(tokenStr)
}

// CheckToken reports whether a token is currently valid. Used by the
// checktoken endpoint, which always answers 200 with a boolean rather
// than leaking which check failed.
func (s *AuthService) CheckToken(tokenStr string) bool {
	_, err := s.tokens.Validate(tokenStr)
	return err == nil
}

// issueFor builds the claim set and signs a token for the user. The
// expiry is now plus the configured TTL, capped by the provider's own
// token expiry when one was reported.
func (s *AuthService) issueFor(user *model.User, providerExpiry time.Time) (string, error) {
	expiresAt := time.Now().Add(s.tokenTTL)
	if !providerExpiry.IsZero() && providerExpiry.Before(expiresAt) {
		expiresAt = providerExpiry
	}

	token, err := s.tokens.Issue(auth.BuildClaims(user), expiresAt)
	if err != nil {
		return "", fmt.Errorf("service/auth: issuing token for user %s: %w", user.ID, err)
	}

	return token, nil
}
