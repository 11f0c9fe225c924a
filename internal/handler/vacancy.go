package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jvolkers/stagemarkt-api/internal/apperror"
	"github.com/jvolkers/stagemarkt-api/internal/model"
	"github.com/jvolkers/stagemarkt-api/internal/service"
)

// VacancyHandler serves the vacancy listing endpoints. Reads are public;
// publishing requires authentication.
type VacancyHandler struct {
	vacancies *service.VacancyService
	logger    *slog.Logger
}

// NewVacancyHandler creates a VacancyHandler.
func NewVacancyHandler(vacancies *service.VacancyService, logger *slog.Logger) *VacancyHandler {
	return &VacancyHandler{vacancies: vacancies, logger: logger}
}

// HandleList returns published vacancies.
//
// HTTP: GET /vacancies?maxCount=20&offset=0
func (h *VacancyHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("maxCount"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	vacancies, err := h.vacancies.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, vacancies)
}

// HandleGetByID returns a single vacancy.
//
// HTTP: GET /vacancies/{id}
func (h *VacancyHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	vacancy, err := h.vacancies.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, vacancy)
}

type createVacancyRequest struct {
	CompanyName string `json:"companyName"`
	Title       string `json:"title"`
	Description string `json:"description"`
	City        string `json:"city"`
}

// HandleCreate publishes a new vacancy.
//
// HTTP: POST /vacancies (authenticated)
func (h *VacancyHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createVacancyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "request body must be valid JSON"))
		return
	}

	vacancy := &model.Vacancy{
		CompanyName: req.CompanyName,
		Title:       req.Title,
		Description: req.Description,
		City:        req.City,
	}
	if err := h.vacancies.Create(r.Context(), vacancy); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, vacancy)
}
