// Package linkedin validates LinkedIn authorization codes.
//
// Unlike Facebook, the client never holds a LinkedIn access token: it
// supplies the authorization code from the browser flow plus the redirect
// URI used to obtain it. We exchange the code for a bearer token
// server-side — LinkedIn rejects the exchange when the redirect URI does
// not exactly match the original authorization request — and then fetch
// the profile with a fixed field projection.
package linkedin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/linkedin"

	"github.com/jvolkers/stagemarkt-api/internal/apperror"
	"github.com/jvolkers/stagemarkt-api/internal/auth/provider"
	"github.com/jvolkers/stagemarkt-api/internal/model"
)

const (
	defaultAPIURL = "https://api.linkedin.com"

	// profileProjection pins the exact fields requested; anything more
	// requires additional OAuth scopes.
	profileProjection = "(id,firstName,lastName,email-address)"
)

// Validator implements provider.TokenValidator for LinkedIn.
type Validator struct {
	base   oauth2.Config // RedirectURL is set per request
	apiURL string
	client *http.Client
}

var _ provider.TokenValidator = (*Validator)(nil)

// New creates a LinkedIn validator using the public LinkedIn endpoints.
func New(clientID, clientSecret string, timeout time.Duration) *Validator {
	return &Validator{
		base: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     linkedin.Endpoint,
		},
		apiURL: defaultAPIURL,
		client: &http.Client{Timeout: timeout},
	}
}

// NewWithEndpoints creates a validator against custom token/API URLs.
// Tests point both at httptest servers.
func NewWithEndpoints(clientID, clientSecret string, timeout time.Duration, tokenURL, apiURL string) *Validator {
	return &Validator{
		base: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: tokenURL, AuthStyle: oauth2.AuthStyleInParams},
		},
		apiURL: apiURL,
		client: &http.Client{Timeout: timeout},
	}
}

func (v *Validator) Kind() provider.Kind { return provider.KindLinkedIn }

func (v *Validator) AccountType() model.AccountType { return model.AccountTypeLinkedIn }

// profile matches the projected fields of the people endpoint.
type profile struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"emailAddress"`
}

// Validate exchanges the code for a bearer token and fetches the profile.
//
// A rejected exchange (LinkedIn answered, said no) is
// ErrInvalidProviderToken; a transport failure or timeout anywhere is
// ErrProviderUnavailable.
func (v *Validator) Validate(ctx context.Context, cred provider.Credential) (*model.ExternalProfile, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, v.client)

	// Copy the config so per-request redirect URIs never race.
	cfg := v.base
	cfg.RedirectURL = cred.RedirectURI

	token, err := cfg.Exchange(ctx, cred.AccessToken)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, apperror.InvalidProviderToken("LinkedIn access token is invalid!")
		}
		return nil, apperror.ProviderUnavailable("LinkedIn", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v2/people/me?projection=%s", v.apiURL, profileProjection), nil)
	if err != nil {
		return nil, fmt.Errorf("linkedin: building profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, apperror.ProviderUnavailable("LinkedIn", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperror.ProviderUnavailable("LinkedIn",
			fmt.Errorf("linkedin: profile API returned status %d", resp.StatusCode))
	}

	var p profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, apperror.ProviderUnavailable("LinkedIn",
			fmt.Errorf("linkedin: decoding profile response: %w", err))
	}

	ext := &model.ExternalProfile{
		DisplayName: strings.TrimSpace(p.FirstName + " " + p.LastName),
		Email:       p.Email,
	}
	if !token.Expiry.IsZero() {
		ext.TokenExpiry = token.Expiry
	}

	return ext, nil
}
