package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jvolkers/stagemarkt-api/internal/apperror"
	"github.com/jvolkers/stagemarkt-api/internal/auth"
	"github.com/jvolkers/stagemarkt-api/internal/model"
	"github.com/jvolkers/stagemarkt-api/internal/repository"
)

// IdentityResolver maps authenticated identities to internal user records.
// It is the only place where identity-to-user binding logic lives.
//
// Binding is by email alone: a federated profile whose email matches an
// existing account of any type resolves to that account unchanged. A
// LinkedIn login can therefore land on an account originally registered
// locally. That matches how the API has always behaved; changing it would
// strand users who signed up one way and come back another.
type IdentityResolver struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewIdentityResolver creates an IdentityResolver.
func NewIdentityResolver(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *IdentityResolver {
	return &IdentityResolver{
		users:     users,
		passwords: passwords,
		logger:    logger,
	}
}

// Resolve finds the internal user for a federated profile, creating one on
// first login.
//
// Lookup is a case-insensitive exact email match. When no user exists, a
// new record is created with the given account type and no password hash.
// There is no rollback: once created, the user stays even if a later login
// step fails — the next attempt resolves to the existing record instead of
// creating a duplicate. If two logins race on the same new email, the
// store's uniqueness constraint picks one winner and the loser surfaces
// apperror.ErrDuplicateEmail; retrying takes the found path.
func (r *IdentityResolver) Resolve(ctx context.Context, profile *model.ExternalProfile, accountType model.AccountType) (*model.User, error) {
	existing, err := r.users.GetByEmail(ctx, profile.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/identity: looking up user by email: %w", err)
	}

	user := &model.User{
		NiceName:    profile.DisplayName,
		Email:       profile.Email,
		AccountType: accountType,
	}
	if err := r.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("service/identity: creating federated user: %w", err)
	}

	r.logger.Info("federated user created",
		slog.String("userID", user.ID),
		slog.String("accountType", string(accountType)),
	)

	return user, nil
}

// RegisterLocal creates a local (API) account with a bcrypt-hashed
// password. Fails with apperror.ErrDuplicateEmail if the email is taken —
// either found up front or detected by the store's uniqueness constraint
// when two registrations race.
func (r *IdentityResolver) RegisterLocal(ctx context.Context, login, password, email string) (*model.User, error) {
	_, err := r.users.GetByEmail(ctx, email)
	if err == nil {
		return nil, apperror.DuplicateEmail(email)
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/identity: looking up user by email: %w", err)
	}

	hash, err := r.passwords.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		NiceName:     login,
		Email:        email,
		AccountType:  model.AccountTypeAPI,
		PasswordHash: hash,
	}
	if err := r.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("service/identity: creating local user: %w", err)
	}

	r.logger.Info("local user registered", slog.String("userID", user.ID))

	return user, nil
}
