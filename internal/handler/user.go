package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jvolkers/stagemarkt-api/internal/apperror"
	"github.com/jvolkers/stagemarkt-api/internal/auth"
	"github.com/jvolkers/stagemarkt-api/internal/service"
)

// UserHandler owns the protected account endpoints under /users/me.
// The auth middleware has already validated the bearer token; handlers
// read the authenticated identity from the request context.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// currentUserID pulls the authenticated user ID out of the context. On a
// RequireAuth-protected route this always succeeds; the false branch is a
// wiring bug, answered with 401 rather than a panic.
func currentUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated())
		return "", false
	}
	return claims.ID, true
}

// HandleMe returns the authenticated user's profile.
//
// HTTP: GET /users/me
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

type updateProfileRequest struct {
	NiceName string `json:"niceName"`
	Email    string `json:"email"`
}

// HandleUpdateMe updates the authenticated user's display name and email.
//
// HTTP: PUT /users/me
func (h *UserHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "request body must be valid JSON"))
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), userID, req.NiceName, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleDeleteMe deletes the authenticated user's account, including the
// login credentials, favorites, and reviews.
//
// HTTP: DELETE /users/me
func (h *UserHandler) HandleDeleteMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	if err := h.users.Delete(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "account deleted"})
}

// HandleListFavorites returns the user's favorite vacancies.
//
// HTTP: GET /users/me/favorites
func (h *UserHandler) HandleListFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	vacancies, err := h.users.ListFavorites(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, vacancies)
}

// HandleAddFavorite adds a vacancy to the user's favorites.
//
// HTTP: PUT /users/me/favorites/{vacancyId}
func (h *UserHandler) HandleAddFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	vacancyID := chi.URLParam(r, "vacancyId")
	if err := h.users.AddFavorite(r.Context(), userID, vacancyID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, nil)
}

// HandleRemoveFavorite removes a vacancy from the user's favorites.
//
// HTTP: DELETE /users/me/favorites/{vacancyId}
func (h *UserHandler) HandleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	vacancyID := chi.URLParam(r, "vacancyId")
	if err := h.users.RemoveFavorite(r.Context(), userID, vacancyID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, nil)
}

// HandleListReviews returns the reviews written by the user.
//
// HTTP: GET /users/me/reviews
func (h *UserHandler) HandleListReviews(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	reviews, err := h.users.ListReviews(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reviews)
}

type createReviewRequest struct {
	CompanyName string `json:"companyName"`
	Rating      int    `json:"rating"`
	Comment     string `json:"comment"`
}

// HandleCreateReview stores a new company review by the user.
//
// HTTP: POST /users/me/reviews
func (h *UserHandler) HandleCreateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req createReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "request body must be valid JSON"))
		return
	}

	review, err := h.users.CreateReview(r.Context(), userID, req.CompanyName, req.Rating, req.Comment)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, review)
}
