// Package repository defines the storage interfaces consumed by the
// service layer. The sqlite subpackage provides the concrete backend.
package repository

import (
	"context"

	"github.com/jvolkers/stagemarkt-api/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// UserRepository is the user store. GetByEmail matches case-insensitively;
// Create fails with apperror.ErrDuplicateEmail when the email is already
// taken — the UNIQUE index in the backing store decides races, not the
// caller.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, opts ListOptions) ([]model.User, error)
}

// FavoriteRepository links users to the vacancies they marked.
type FavoriteRepository interface {
	AddFavorite(ctx context.Context, userID, vacancyID string) error
	RemoveFavorite(ctx context.Context, userID, vacancyID string) error
	ListFavorites(ctx context.Context, userID string) ([]model.Vacancy, error)
}

// ReviewRepository stores company reviews written by users.
type ReviewRepository interface {
	CreateReview(ctx context.Context, review *model.Review) error
	ListReviewsByUser(ctx context.Context, userID string) ([]model.Review, error)
}

// VacancyRepository reads published vacancies.
type VacancyRepository interface {
	CreateVacancy(ctx context.Context, vacancy *model.Vacancy) error
	GetVacancyByID(ctx context.Context, id string) (*model.Vacancy, error)
	ListVacancies(ctx context.Context, opts ListOptions) ([]model.Vacancy, error)
}
