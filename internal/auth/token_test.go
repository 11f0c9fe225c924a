package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jvolkers/stagemarkt-api/internal/apperror"
	"github.com/jvolkers/stagemarkt-api/internal/model"
)

const testSigningKey = "test-signing-key-at-least-16-bytes"

func newTestTokenService(t *testing.T, skew time.Duration) *TokenService {
	t.Helper()
	ts, err := NewTokenService(TokenConfig{
		Issuer:     "stagemarkt-test",
		Audience:   "stagemarkt-clients",
		SigningKey: []byte(testSigningKey),
		ClockSkew:  skew,
	})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

func TestNewTokenService_ShortKey(t *testing.T) {
	_, err := NewTokenService(TokenConfig{
		Issuer:     "i",
		Audience:   "a",
		SigningKey: []byte("short"),
	})
	if err == nil {
		t.Fatal("NewTokenService() should reject signing keys shorter than 16 bytes")
	}
}

func TestNewTokenService_MissingIssuer(t *testing.T) {
	_, err := NewTokenService(TokenConfig{
		Audience:   "a",
		SigningKey: []byte(testSigningKey),
	})
	if err == nil {
		t.Fatal("NewTokenService() should reject an empty issuer")
	}
}

func TestIssue_LooksLikeJWT(t *testing.T) {
	ts := newTestTokenService(t, time.Minute)

	token, err := ts.Issue(Claims{ID: "user-123", Name: "Bob"}, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if parts := strings.Split(token, "."); len(parts) != 3 {
		t.Errorf("Issue() token has %d segments, want 3 (header.payload.signature)", len(parts))
	}
}

func TestValidate_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t, time.Minute)
	want := Claims{ID: "user-abc-123", Name: "Alice Example"}

	token, err := ts.Issue(want, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	got, err := ts.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if got != want {
		t.Errorf("Validate() claims = %+v, want %+v", got, want)
	}
}

func TestValidate_ExpiredBeyondSkew(t *testing.T) {
	ts := newTestTokenService(t, time.Second)

	token, err := ts.Issue(Claims{ID: "user-123"}, time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = ts.Validate(token)
	if !errors.Is(err, apperror.ErrExpired) {
		t.Fatalf("Validate() error = %v, want ErrExpired", err)
	}
}

func TestValidate_ExpiredWithinSkew(t *testing.T) {
	// Skew is applied symmetrically: a token that expired a second ago is
	// still accepted under a five-minute tolerance.
	ts := newTestTokenService(t, 5*time.Minute)

	token, err := ts.Issue(Claims{ID: "user-123"}, time.Now().Add(-time.Second))
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := ts.Validate(token); err != nil {
		t.Fatalf("Validate() error = %v, want token accepted within clock skew", err)
	}
}

func TestValidate_TamperedSignature(t *testing.T) {
	ts := newTestTokenService(t, time.Minute)

	token, _ := ts.Issue(Claims{ID: "user-123"}, time.Now().Add(time.Hour))

	// Flip the last character of the signature segment.
	last := token[len(token)-1]
	flipped := byte('A')
	if last == 'A' {
		flipped = 'B'
	}
	tampered := token[:len(token)-1] + string(flipped)

	_, err := ts.Validate(tampered)
	if !errors.Is(err, apperror.ErrInvalidSignature) {
		t.Fatalf("Validate() error = %v, want ErrInvalidSignature", err)
	}
}

func TestValidate_WrongKey(t *testing.T) {
	ts := newTestTokenService(t, time.Minute)
	token, _ := ts.Issue(Claims{ID: "user-123"}, time.Now().Add(time.Hour))

	other, err := NewTokenService(TokenConfig{
		Issuer:     "stagemarkt-test",
		Audience:   "stagemarkt-clients",
		SigningKey: []byte("a-completely-different-32b-key!!"),
	})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	_, err = other.Validate(token)
	if !errors.Is(err, apperror.ErrInvalidSignature) {
		t.Fatalf("Validate() error = %v, want ErrInvalidSignature", err)
	}
}

func TestValidate_WrongIssuer(t *testing.T) {
	issuing := newTestTokenService(t, time.Minute)
	token, _ := issuing.Issue(Claims{ID: "user-123"}, time.Now().Add(time.Hour))

	validating, err := NewTokenService(TokenConfig{
		Issuer:     "some-other-service",
		Audience:   "stagemarkt-clients",
		SigningKey: []byte(testSigningKey),
	})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	_, err = validating.Validate(token)
	if !errors.Is(err, apperror.ErrInvalidIssuer) {
		t.Fatalf("Validate() error = %v, want ErrInvalidIssuer", err)
	}
}

func TestValidate_WrongAudience(t *testing.T) {
	issuing := newTestTokenService(t, time.Minute)
	token, _ := issuing.Issue(Claims{ID: "user-123"}, time.Now().Add(time.Hour))

	validating, err := NewTokenService(TokenConfig{
		Issuer:     "stagemarkt-test",
		Audience:   "someone-else",
		SigningKey: []byte(testSigningKey),
	})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	_, err = validating.Validate(token)
	if !errors.Is(err, apperror.ErrInvalidAudience) {
		t.Fatalf("Validate() error = %v, want ErrInvalidAudience", err)
	}
}

func TestValidate_Garbage(t *testing.T) {
	ts := newTestTokenService(t, time.Minute)

	_, err := ts.Validate("not-a-token")
	if !errors.Is(err, apperror.ErrInvalidSignature) {
		t.Fatalf("Validate() error = %v, want ErrInvalidSignature", err)
	}
}

func TestBuildClaims(t *testing.T) {
	user := &model.User{
		ID:       "user-42",
		NiceName: "Joshua",
		Email:    "joshua@example.com",
	}

	claims := BuildClaims(user)
	if claims.ID != "user-42" || claims.Name != "Joshua" {
		t.Errorf("BuildClaims() = %+v, want {ID: user-42, Name: Joshua}", claims)
	}
}
