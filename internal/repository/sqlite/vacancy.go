package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/jvolkers/stagemarkt-api/internal/apperror"
	"github.com/jvolkers/stagemarkt-api/internal/model"
	"github.com/jvolkers/stagemarkt-api/internal/repository"
)

var (
	_ repository.VacancyRepository  = (*DB)(nil)
	_ repository.FavoriteRepository = (*DB)(nil)
	_ repository.ReviewRepository   = (*DB)(nil)
)

// CreateVacancy inserts a new vacancy and fills in ID and timestamps.
func (db *DB) CreateVacancy(ctx context.Context, vacancy *model.Vacancy) error {
	vacancy.ID = xid.New().String()
	now := time.Now()
	vacancy.CreatedAt = now
	vacancy.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO vacancies (id, company_name, title, description, city, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		vacancy.ID,
		vacancy.CompanyName,
		vacancy.Title,
		vacancy.Description,
		vacancy.City,
		vacancy.CreatedAt,
		vacancy.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting vacancy: %w", err)
	}

	return nil
}

// GetVacancyByID retrieves a single vacancy.
// Returns apperror.ErrNotFound if it does not exist.
func (db *DB) GetVacancyByID(ctx context.Context, id string) (*model.Vacancy, error) {
	var v model.Vacancy

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, company_name, title, description, city, created_at, updated_at
		 FROM vacancies WHERE id = ?`,
		id,
	).Scan(&v.ID, &v.CompanyName, &v.Title, &v.Description, &v.City, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("vacancy", id)
		}
		return nil, fmt.Errorf("sqlite: getting vacancy %s: %w", id, err)
	}

	return &v, nil
}

// ListVacancies returns vacancies ordered by creation time, newest first.
func (db *DB) ListVacancies(ctx context.Context, opts repository.ListOptions) ([]model.Vacancy, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, company_name, title, description, city, created_at, updated_at
		 FROM vacancies ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing vacancies: %w", err)
	}
	defer rows.Close()

	return scanVacancies(rows)
}

// AddFavorite links the vacancy to the user's favorites list. Adding an
// already-favorited vacancy is a no-op rather than an error.
func (db *DB) AddFavorite(ctx context.Context, userID, vacancyID string) error {
	// The foreign key rejects unknown vacancy IDs; surface that as 404.
	if _, err := db.GetVacancyByID(ctx, vacancyID); err != nil {
		return err
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO favorites (user_id, vacancy_id) VALUES (?, ?)`,
		userID, vacancyID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: adding favorite (user=%s, vacancy=%s): %w", userID, vacancyID, err)
	}

	return nil
}

// RemoveFavorite unlinks the vacancy from the user's favorites.
// Returns apperror.ErrNotFound if it was not favorited.
func (db *DB) RemoveFavorite(ctx context.Context, userID, vacancyID string) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND vacancy_id = ?`,
		userID, vacancyID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: removing favorite (user=%s, vacancy=%s): %w", userID, vacancyID, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: removing favorite: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("favorite", vacancyID)
	}

	return nil
}

// ListFavorites returns the user's favorited vacancies, most recently
// favorited first.
func (db *DB) ListFavorites(ctx context.Context, userID string) ([]model.Vacancy, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT v.id, v.company_name, v.title, v.description, v.city, v.created_at, v.updated_at
		 FROM vacancies v
		 JOIN favorites f ON f.vacancy_id = v.id
		 WHERE f.user_id = ?
		 ORDER BY f.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing favorites for user %s: %w", userID, err)
	}
	defer rows.Close()

	return scanVacancies(rows)
}

func scanVacancies(rows *sql.Rows) ([]model.Vacancy, error) {
	vacancies := []model.Vacancy{}
	for rows.Next() {
		var v model.Vacancy
		if err := rows.Scan(
			&v.ID, &v.CompanyName, &v.Title, &v.Description,
			&v.City, &v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning vacancy row: %w", err)
		}
		vacancies = append(vacancies, v)
	}
	return vacancies, rows.Err()
}

// CreateReview inserts a review and fills in ID and creation time.
func (db *DB) CreateReview(ctx context.Context, review *model.Review) error {
	review.ID = xid.New().String()
	review.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO reviews (id, user_id, company_name, rating, comment, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		review.ID,
		review.UserID,
		review.CompanyName,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting review (user=%s): %w", review.UserID, err)
	}

	return nil
}

// ListReviewsByUser returns the reviews written by the user, newest first.
func (db *DB) ListReviewsByUser(ctx context.Context, userID string) ([]model.Review, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, company_name, rating, comment, created_at
		 FROM reviews WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing reviews for user %s: %w", userID, err)
	}
	defer rows.Close()

	reviews := []model.Review{}
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(
			&rv.ID, &rv.UserID, &rv.CompanyName, &rv.Rating, &rv.Comment, &rv.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning review row: %w", err)
		}
		reviews = append(reviews, rv)
	}

	return reviews, rows.Err()
}
