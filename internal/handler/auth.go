package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jvolkers/stagemarkt-api/internal/apperror"
	"github.com/jvolkers/stagemarkt-api/internal/auth/provider"
	"github.com/jvolkers/stagemarkt-api/internal/service"
)

// AuthHandler owns the anonymous authentication endpoints:
//
//	POST /users/login      local email/password login
//	POST /users/register   local account registration
//	POST /users/facebook   login with a Facebook access token
//	POST /users/linkedin   login with a LinkedIn authorization code
//	POST /users/checktoken report whether a session token is still valid
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type loginRequest struct {
	EmailAddress string `json:"emailAddress"`
	Password     string `json:"password"`
}

type registerRequest struct {
	Login                    string `json:"login"`
	Password                 string `json:"password"`
	EmailAddress             string `json:"emailAddress"`
	AcceptTermsAndConditions bool   `json:"acceptTermsAndConditions"`
}

type providerLoginRequest struct {
	AccessToken string `json:"accessToken"`
	RedirectURI string `json:"redirectUri"` // LinkedIn only
}

type tokenResponse struct {
	Token string `json:"token"`
}

// HandleLogin authenticates an email/password pair.
//
// HTTP: POST /users/login
// 200 {token} on success, 400 on bad credentials.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "request body must be valid JSON"))
		return
	}
	if req.EmailAddress == "" || req.Password == "" {
		writeError(w, apperror.InvalidCredentials("Username or password was incorrect!"))
		return
	}

	token, err := h.auth.LoginLocal(r.Context(), req.EmailAddress, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// HandleRegister creates a local account.
//
// HTTP: POST /users/register
// The terms checkbox is mandatory; a duplicate email is a 400.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "request body must be valid JSON"))
		return
	}

	if req.Login == "" || req.Password == "" || !strings.Contains(req.EmailAddress, "@") {
		writeError(w, apperror.ValidationFailed("", "Not all values were filled in correctly!"))
		return
	}
	if !req.AcceptTermsAndConditions {
		writeError(w, apperror.ValidationFailed("acceptTermsAndConditions",
			"You need to accept the terms and conditions before creating your account!"))
		return
	}

	if _, err := h.auth.Register(r.Context(), req.Login, req.Password, req.EmailAddress); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, nil)
}

// HandleFacebookLogin logs in with a Facebook user access token.
//
// HTTP: POST /users/facebook
// The token is validated against the Graph API before any user record is
// created; the session token expiry never exceeds the Facebook token's.
func (h *AuthHandler) HandleFacebookLogin(w http.ResponseWriter, r *http.Request) {
	h.handleProviderLogin(w, r, provider.KindFacebook, false)
}

// HandleLinkedInLogin logs in with a LinkedIn authorization code.
//
// HTTP: POST /users/linkedin
// The redirectUri must equal the one used during the original
// authorization request or the code exchange is rejected.
func (h *AuthHandler) HandleLinkedInLogin(w http.ResponseWriter, r *http.Request) {
	h.handleProviderLogin(w, r, provider.KindLinkedIn, true)
}

func (h *AuthHandler) handleProviderLogin(w http.ResponseWriter, r *http.Request, kind provider.Kind, needRedirectURI bool) {
	var req providerLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "request body must be valid JSON"))
		return
	}
	if req.AccessToken == "" {
		writeError(w, apperror.ValidationFailed("accessToken", "accessToken is required"))
		return
	}
	if needRedirectURI && req.RedirectURI == "" {
		writeError(w, apperror.ValidationFailed("redirectUri", "redirectUri is required"))
		return
	}

	token, err := h.auth.LoginWithProvider(r.Context(), kind, provider.Credential{
		AccessToken: req.AccessToken,
		RedirectURI: req.RedirectURI,
	})
	if err != nil {
		h.logger.Info("provider login failed",
			slog.String("provider", string(kind)),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

type checkTokenRequest struct {
	Token string `json:"token"`
}

type checkTokenResponse struct {
	Valid bool `json:"valid"`
}

// HandleCheckToken reports whether a session token is still valid.
//
// HTTP: POST /users/checktoken
// Always 200 with a boolean for a well-formed request; the response never
// says which validation check failed. Missing token is the one 400.
func (h *AuthHandler) HandleCheckToken(w http.ResponseWriter, r *http.Request) {
	var req checkTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeError(w, apperror.ValidationFailed("token", "token is required"))
		return
	}

	writeJSON(w, http.StatusOK, checkTokenResponse{Valid: h.auth.CheckToken(req.Token)})
}
