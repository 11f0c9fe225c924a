package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jvolkers/stagemarkt-api/internal/apperror"
	"github.com/jvolkers/stagemarkt-api/internal/model"
	"github.com/jvolkers/stagemarkt-api/internal/repository"
)

const (
	MaxNiceNameLength = 100
	MinReviewRating   = 1
	MaxReviewRating   = 5
	DefaultListLimit  = 20
	MaxListLimit      = 100
)

// UserService handles the account endpoints: profile reads and updates,
// account deletion, favorites, and reviews.
type UserService struct {
	users     repository.UserRepository
	favorites repository.FavoriteRepository
	reviews   repository.ReviewRepository
	logger    *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(
	users repository.UserRepository,
	favorites repository.FavoriteRepository,
	reviews repository.ReviewRepository,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:     users,
		favorites: favorites,
		reviews:   reviews,
		logger:    logger,
	}
}

// GetByID returns the user for the given internal ID.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID must not be empty")
	}
	return s.users.GetByID(ctx, id)
}

// UpdateProfile updates the user's display name and email. The email
// uniqueness constraint applies here too — taking another account's email
// fails with ErrDuplicateEmail.
func (s *UserService) UpdateProfile(ctx context.Context, id, niceName, email string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	niceName = strings.TrimSpace(niceName)
	if niceName == "" {
		return nil, apperror.ValidationFailed("niceName", "display name must not be empty")
	}
	if len(niceName) > MaxNiceNameLength {
		return nil, apperror.ValidationFailed("niceName",
			fmt.Sprintf("display name must be %d characters or fewer", MaxNiceNameLength))
	}
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		return nil, apperror.ValidationFailed("email", "a valid email address is required")
	}

	user.NiceName = niceName
	user.Email = email
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Delete removes the account and everything attached to it.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", slog.String("userID", id))
	return nil
}

// ListFavorites returns the user's favorited vacancies.
func (s *UserService) ListFavorites(ctx context.Context, userID string) ([]model.Vacancy, error) {
	return s.favorites.ListFavorites(ctx, userID)
}

// AddFavorite marks a vacancy as a favorite of the user.
func (s *UserService) AddFavorite(ctx context.Context, userID, vacancyID string) error {
	if vacancyID == "" {
		return apperror.ValidationFailed("vacancyId", "vacancy ID must not be empty")
	}
	return s.favorites.AddFavorite(ctx, userID, vacancyID)
}

// RemoveFavorite unmarks a favorited vacancy.
func (s *UserService) RemoveFavorite(ctx context.Context, userID, vacancyID string) error {
	if vacancyID == "" {
		return apperror.ValidationFailed("vacancyId", "vacancy ID must not be empty")
	}
	return s.favorites.RemoveFavorite(ctx, userID, vacancyID)
}

// ListReviews returns the reviews written by the user.
func (s *UserService) ListReviews(ctx context.Context, userID string) ([]model.Review, error) {
	return s.reviews.ListReviewsByUser(ctx, userID)
}

// CreateReview stores a new company review for the user.
func (s *UserService) CreateReview(ctx context.Context, userID, companyName string, rating int, comment string) (*model.Review, error) {
	companyName = strings.TrimSpace(companyName)
	if companyName == "" {
		return nil, apperror.ValidationFailed("companyName", "company name must not be empty")
	}
	if rating < MinReviewRating || rating > MaxReviewRating {
		return nil, apperror.ValidationFailed("rating",
			fmt.Sprintf("rating must be between %d and %d", MinReviewRating, MaxReviewRating))
	}

	review := &model.Review{
		UserID:      userID,
		CompanyName: companyName,
		Rating:      rating,
		Comment:     comment,
	}
	if err := s.reviews.CreateReview(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}
