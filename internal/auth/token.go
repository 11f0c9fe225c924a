// Package auth provides session token issuing/validation, password
// hashing, and the request authentication middleware.
//
// Session tokens are JWTs: three base64 segments (header.payload.signature)
// signed with HMAC-SHA256. Validity is entirely a function of the signature
// and the embedded timestamps — no server-side session record exists and no
// revocation list is consulted. A token that validates is good until it
// expires.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jvolkers/stagemarkt-api/internal/apperror"
)

// DefaultClockSkew is the tolerance applied when comparing token
// timestamps against the current time, absorbing clock drift between the
// issuing and validating hosts.
const DefaultClockSkew = 5 * time.Minute

// TokenConfig is the immutable signing configuration, loaded once at
// process start and threaded into NewTokenService. Both halves of the
// round trip — Issue and Validate — read the same value.
type TokenConfig struct {
	Issuer     string
	Audience   string
	SigningKey []byte
	ClockSkew  time.Duration // zero means DefaultClockSkew
}

// TokenService issues and validates signed session tokens.
type TokenService struct {
	cfg TokenConfig
}

// NewTokenService creates a TokenService from the given config.
// The signing key must be at least 16 bytes; shorter HMAC keys are
// brute-forceable.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if len(cfg.SigningKey) < 16 {
		return nil, errors.New("auth: signing key must be at least 16 bytes")
	}
	if cfg.Issuer == "" || cfg.Audience == "" {
		return nil, errors.New("auth: issuer and audience must be set")
	}
	if cfg.ClockSkew == 0 {
		cfg.ClockSkew = DefaultClockSkew
	}
	return &TokenService{cfg: cfg}, nil
}

// tokenClaims is the JWT payload: the registered claims (issuer, audience,
// not-before, expiry) plus the custom "id" and "name" claims.
type tokenClaims struct {
	UserID string `json:"id"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// Issue signs a token carrying the given claims, valid from now until
// expiresAt.
func (s *TokenService) Issue(claims Claims, expiresAt time.Time) (string, error) {
	now := time.Now()

	c := tokenClaims{
		UserID: claims.ID,
		Name:   claims.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Audience:  jwt.ClaimStrings{s.cfg.Audience},
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.cfg.SigningKey)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a token string, returning the claims it
// carries.
//
// Checks performed: signature, algorithm (HS256 only — never trust the
// token's own alg header), issuer, audience, and the nbf/exp window. The
// clock skew applies symmetrically to both ends of the window via
// jwt.WithLeeway.
//
// Failures surface as the apperror sentinels ErrExpired,
// ErrInvalidSignature, ErrInvalidIssuer, or ErrInvalidAudience. Callers at
// the HTTP boundary collapse all of them to a generic 401.
func (s *TokenService) Validate(tokenStr string) (Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&tokenClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.cfg.SigningKey, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithAudience(s.cfg.Audience),
		jwt.WithLeeway(s.cfg.ClockSkew),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, translateJWTError(err)
	}

	c, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return Claims{}, apperror.InvalidCredentials("token claims are invalid")
	}
	if c.UserID == "" {
		return Claims{}, apperror.InvalidCredentials("token has no subject id")
	}

	return Claims{ID: c.UserID, Name: c.Name}, nil
}

// translateJWTError maps golang-jwt's sentinel errors onto the
// application taxonomy. The library joins multiple validation failures
// into one error, so errors.Is finds the specific cause regardless of
// which check tripped first.
func translateJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return &apperror.AppError{Err: apperror.ErrExpired, Message: "token has expired"}
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return &apperror.AppError{Err: apperror.ErrExpired, Message: "token is not valid yet"}
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return &apperror.AppError{Err: apperror.ErrInvalidIssuer, Message: "token issuer is not recognized"}
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return &apperror.AppError{Err: apperror.ErrInvalidAudience, Message: "token audience is not recognized"}
	default:
		return &apperror.AppError{Err: apperror.ErrInvalidSignature, Message: "token is invalid"}
	}
}
