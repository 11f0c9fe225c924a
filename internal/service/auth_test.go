package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jvolkers/stagemarkt-api/internal/apperror"
	"github.com/jvolkers/stagemarkt-api/internal/auth"
	"github.com/jvolkers/stagemarkt-api/internal/auth/provider"
	"github.com/jvolkers/stagemarkt-api/internal/model"
	"github.com/jvolkers/stagemarkt-api/internal/repository"
)

// fakeUserRepo is an in-memory repository.UserRepository. It enforces the
// same email uniqueness rule as the SQLite backend, so the find-or-create
// race behaves like production.
type fakeUserRepo struct {
	users  map[string]*model.User // keyed by internal ID
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User), nextID: 1}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, user.Email) {
			return apperror.DuplicateEmail(user.Email)
		}
	}
	user.ID = fmt.Sprintf("user-%03d", f.nextID)
	f.nextID++
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return apperror.NotFound("user", user.ID)
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return apperror.NotFound("user", id)
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) List(ctx context.Context, opts repository.ListOptions) ([]model.User, error) {
	out := []model.User{}
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

// fakeValidator is a canned provider.TokenValidator. It accepts exactly
// one token value and returns a fixed profile for it.
type fakeValidator struct {
	kind        provider.Kind
	accountType model.AccountType
	goodToken   string
	profile     model.ExternalProfile
	calls       int
}

func (f *fakeValidator) Kind() provider.Kind            { return f.kind }
func (f *fakeValidator) AccountType() model.AccountType { return f.accountType }
func (f *fakeValidator) Validate(ctx context.Context, cred provider.Credential) (*model.ExternalProfile, error) {
	f.calls++
	if cred.AccessToken != f.goodToken {
		return nil, apperror.InvalidProviderToken("Facebook access token is invalid!")
	}
	p := f.profile
	return &p, nil
}

type testEnv struct {
	repo      *fakeUserRepo
	facebook  *fakeValidator
	tokens    *auth.TokenService
	svc       *AuthService
	resolver  *IdentityResolver
	passwords *auth.PasswordService
}

func newTestEnv(t *testing.T, tokenTTL time.Duration) *testEnv {
	t.Helper()

	repo := newFakeUserRepo()
	passwords := auth.NewPasswordServiceForTest(bcrypt.MinCost)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Issuer:     "stagemarkt-test",
		Audience:   "stagemarkt-clients",
		SigningKey: []byte("test-signing-key-at-least-16-bytes"),
	})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	facebook := &fakeValidator{
		kind:        provider.KindFacebook,
		accountType: model.AccountTypeFacebook,
		goodToken:   "valid-fb-token",
		profile: model.ExternalProfile{
			DisplayName: "Ann Apple",
			Email:       "ann@example.com",
		},
	}

	resolver := NewIdentityResolver(repo, passwords, logger)
	svc := NewAuthService(repo, resolver, provider.NewRegistry(facebook), tokens, passwords, tokenTTL, logger)

	return &testEnv{
		repo:      repo,
		facebook:  facebook,
		tokens:    tokens,
		svc:       svc,
		resolver:  resolver,
		passwords: passwords,
	}
}

// seedLocalUser registers a local account directly through the resolver.
func (e *testEnv) seedLocalUser(t *testing.T, login, password, email string) *model.User {
	t.Helper()
	u, err := e.resolver.RegisterLocal(context.Background(), login, password, email)
	if err != nil {
		t.Fatalf("RegisterLocal: %v", err)
	}
	return u
}

func TestLoginLocal_Success(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	user := env.seedLocalUser(t, "bob", "correct", "a@x.com")

	token, err := env.svc.LoginLocal(context.Background(), "a@x.com", "correct")
	if err != nil {
		t.Fatalf("LoginLocal() error = %v", err)
	}

	// The issued token's claims must decode to the stored user.
	claims, err := env.svc.AuthenticateRequest(token)
	if err != nil {
		t.Fatalf("AuthenticateRequest() error = %v", err)
	}
	if claims.ID != user.ID {
		t.Errorf("token claims id = %q, want %q", claims.ID, user.ID)
	}
	if claims.Name != "bob" {
		t.Errorf("token claims name = %q, want bob", claims.Name)
	}
}

func TestLoginLocal_CaseInsensitiveEmail(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	env.seedLocalUser(t, "bob", "correct", "a@x.com")

	if _, err := env.svc.LoginLocal(context.Background(), "A@X.COM", "correct"); err != nil {
		t.Fatalf("LoginLocal() error = %v for differently-cased email", err)
	}
}

func TestLoginLocal_WrongPassword(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	env.seedLocalUser(t, "bob", "correct", "a@x.com")

	_, err := env.svc.LoginLocal(context.Background(), "a@x.com", "wrong")
	if !errors.Is(err, apperror.ErrInvalidCredentials) {
		t.Fatalf("LoginLocal() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginLocal_UnknownEmail(t *testing.T) {
	env := newTestEnv(t, time.Hour)

	_, err := env.svc.LoginLocal(context.Background(), "nobody@x.com", "whatever")
	if !errors.Is(err, apperror.ErrInvalidCredentials) {
		t.Fatalf("LoginLocal() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginLocal_FederatedAccountHasNoPassword(t *testing.T) {
	env := newTestEnv(t, time.Hour)

	// First seen via Facebook: account exists but has no password hash.
	if _, err := env.svc.LoginWithProvider(context.Background(), provider.KindFacebook,
		provider.Credential{AccessToken: "valid-fb-token"}); err != nil {
		t.Fatalf("LoginWithProvider() error = %v", err)
	}

	_, err := env.svc.LoginLocal(context.Background(), "ann@example.com", "")
	if !errors.Is(err, apperror.ErrInvalidCredentials) {
		t.Fatalf("LoginLocal() on a federated account: error = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginWithProvider_CreatesUserOnFirstLogin(t *testing.T) {
	env := newTestEnv(t, time.Hour)

	token, err := env.svc.LoginWithProvider(context.Background(), provider.KindFacebook,
		provider.Credential{AccessToken: "valid-fb-token"})
	if err != nil {
		t.Fatalf("LoginWithProvider() error = %v", err)
	}

	user, err := env.repo.GetByEmail(context.Background(), "ann@example.com")
	if err != nil {
		t.Fatalf("expected a user to be created: %v", err)
	}
	if user.AccountType != model.AccountTypeFacebook {
		t.Errorf("accountType = %q, want %q", user.AccountType, model.AccountTypeFacebook)
	}
	if user.PasswordHash != "" {
		t.Error("federated user must have no password hash")
	}

	claims, err := env.svc.AuthenticateRequest(token)
	if err != nil {
		t.Fatalf("AuthenticateRequest() error = %v", err)
	}
	if claims.ID != user.ID {
		t.Errorf("token claims id = %q, want %q", claims.ID, user.ID)
	}
}

func TestLoginWithProvider_ExistingEmailNeverDuplicates(t *testing.T) {
	env := newTestEnv(t, time.Hour)

	// The email is already registered as a local account. A federated
	// login with the same email binds to it — email-only binding, the
	// account type is not consulted.
	local := env.seedLocalUser(t, "ann", "secret", "ann@example.com")

	token, err := env.svc.LoginWithProvider(context.Background(), provider.KindFacebook,
		provider.Credential{AccessToken: "valid-fb-token"})
	if err != nil {
		t.Fatalf("LoginWithProvider() error = %v", err)
	}

	if len(env.repo.users) != 1 {
		t.Fatalf("user count = %d after federated login on existing email, want 1", len(env.repo.users))
	}

	claims, _ := env.svc.AuthenticateRequest(token)
	if claims.ID != local.ID {
		t.Errorf("token claims id = %q, want existing user %q", claims.ID, local.ID)
	}
}

func TestLoginWithProvider_InvalidTokenCreatesNoUser(t *testing.T) {
	env := newTestEnv(t, time.Hour)

	_, err := env.svc.LoginWithProvider(context.Background(), provider.KindFacebook,
		provider.Credential{AccessToken: "bad-token"})
	if !errors.Is(err, apperror.ErrInvalidProviderToken) {
		t.Fatalf("LoginWithProvider() error = %v, want ErrInvalidProviderToken", err)
	}

	if len(env.repo.users) != 0 {
		t.Errorf("user count = %d after rejected provider token, want 0", len(env.repo.users))
	}
}

func TestLoginWithProvider_EmptyEmailRejected(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	env.facebook.profile.Email = ""

	_, err := env.svc.LoginWithProvider(context.Background(), provider.KindFacebook,
		provider.Credential{AccessToken: "valid-fb-token"})
	if !errors.Is(err, apperror.ErrInvalidProviderToken) {
		t.Fatalf("LoginWithProvider() error = %v, want ErrInvalidProviderToken", err)
	}
	if len(env.repo.users) != 0 {
		t.Errorf("user count = %d, want 0", len(env.repo.users))
	}
}

func TestLoginWithProvider_UnknownKind(t *testing.T) {
	env := newTestEnv(t, time.Hour)

	_, err := env.svc.LoginWithProvider(context.Background(), provider.Kind("myspace"),
		provider.Credential{AccessToken: "whatever"})
	if err == nil {
		t.Fatal("LoginWithProvider() should fail for an unregistered provider kind")
	}
}

func TestLoginWithProvider_TokenExpiryCappedByProvider(t *testing.T) {
	// Configured TTL is an hour, but the provider token has already
	// expired: the session token is capped at the provider expiry, so a
	// strict-clock validation reads it as expired while the default
	// five-minute skew would still mask it.
	env := newTestEnv(t, time.Hour)
	env.facebook.profile.TokenExpiry = time.Now().Add(-time.Minute)

	token, err := env.svc.LoginWithProvider(context.Background(), provider.KindFacebook,
		provider.Credential{AccessToken: "valid-fb-token"})
	if err != nil {
		t.Fatalf("LoginWithProvider() error = %v", err)
	}

	strict, err := auth.NewTokenService(auth.TokenConfig{
		Issuer:     "stagemarkt-test",
		Audience:   "stagemarkt-clients",
		SigningKey: []byte("test-signing-key-at-least-16-bytes"),
		ClockSkew:  time.Nanosecond,
	})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	if _, err := strict.Validate(token); !errors.Is(err, apperror.ErrExpired) {
		t.Errorf("strict Validate() error = %v, want ErrExpired (session capped at provider expiry)", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	env.seedLocalUser(t, "bob", "p", "bob@x.com")

	_, err := env.svc.Register(context.Background(), "bob2", "p2", "BOB@X.COM")
	if !errors.Is(err, apperror.ErrDuplicateEmail) {
		t.Fatalf("Register() error = %v, want ErrDuplicateEmail", err)
	}
}

func TestRegister_HashesPassword(t *testing.T) {
	env := newTestEnv(t, time.Hour)

	user, err := env.svc.Register(context.Background(), "carol", "hunter2", "carol@x.com")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.PasswordHash == "" || user.PasswordHash == "hunter2" {
		t.Errorf("PasswordHash = %q, want a bcrypt hash", user.PasswordHash)
	}
	if user.AccountType != model.AccountTypeAPI {
		t.Errorf("accountType = %q, want %q", user.AccountType, model.AccountTypeAPI)
	}
}

func TestCheckToken(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	env.seedLocalUser(t, "bob", "correct", "a@x.com")

	token, err := env.svc.LoginLocal(context.Background(), "a@x.com", "correct")
	if err != nil {
		t.Fatalf("LoginLocal() error = %v", err)
	}

	if !env.svc.CheckToken(token) {
		t.Error("CheckToken() = false for a freshly issued token")
	}
	if env.svc.CheckToken("garbage") {
		t.Error("CheckToken() = true for garbage")
	}
}
