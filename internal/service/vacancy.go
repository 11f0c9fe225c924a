package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jvolkers/stagemarkt-api/internal/apperror"
	"github.com/jvolkers/stagemarkt-api/internal/model"
	"github.com/jvolkers/stagemarkt-api/internal/repository"
)

// VacancyService handles the public vacancy listing and the authenticated
// publish endpoint.
type VacancyService struct {
	vacancies repository.VacancyRepository
	logger    *slog.Logger
}

// NewVacancyService creates a VacancyService.
func NewVacancyService(vacancies repository.VacancyRepository, logger *slog.Logger) *VacancyService {
	return &VacancyService{vacancies: vacancies, logger: logger}
}

// List returns published vacancies, newest first. Limit is clamped to
// [1, MaxListLimit] with DefaultListLimit when unset.
func (s *VacancyService) List(ctx context.Context, limit, offset int) ([]model.Vacancy, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	return s.vacancies.ListVacancies(ctx, repository.ListOptions{Limit: limit, Offset: offset})
}

// GetByID returns a single vacancy.
func (s *VacancyService) GetByID(ctx context.Context, id string) (*model.Vacancy, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "vacancy ID must not be empty")
	}
	return s.vacancies.GetVacancyByID(ctx, id)
}

// Create publishes a new vacancy.
func (s *VacancyService) Create(ctx context.Context, vacancy *model.Vacancy) error {
	vacancy.CompanyName = strings.TrimSpace(vacancy.CompanyName)
	vacancy.Title = strings.TrimSpace(vacancy.Title)
	if vacancy.CompanyName == "" {
		return apperror.ValidationFailed("companyName", "company name must not be empty")
	}
	if vacancy.Title == "" {
		return apperror.ValidationFailed("title", "title must not be empty")
	}

	if err := s.vacancies.CreateVacancy(ctx, vacancy); err != nil {
		return err
	}

	s.logger.Info("vacancy published",
		slog.String("vacancyID", vacancy.ID),
		slog.String("company", vacancy.CompanyName),
	)

	return nil
}
