// Package facebook validates Facebook user access tokens against the
// Graph API.
//
// Validation is a three-step sequence:
//
//  1. Fetch an app-level access token via the client-credentials grant.
//  2. Call the debug_token introspection endpoint with the user token and
//     the app token.
//  3. Only if introspection reports the token valid, fetch the user's
//     profile (id, email, name).
//
// Step 3 is never reached when step 2 reports the token invalid — the
// sequence short-circuits with ErrInvalidProviderToken. A transport
// failure or timeout at any step fails ErrProviderUnavailable instead.
package facebook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/jvolkers/stagemarkt-api/internal/apperror"
	"github.com/jvolkers/stagemarkt-api/internal/auth/provider"
	"github.com/jvolkers/stagemarkt-api/internal/model"
)

const defaultGraphURL = "https://graph.facebook.com"

// Validator implements provider.TokenValidator for Facebook.
type Validator struct {
	graphURL  string
	client    *http.Client
	appTokens *clientcredentials.Config
}

var _ provider.TokenValidator = (*Validator)(nil)

// New creates a Facebook validator. The timeout bounds each of the three
// remote calls individually.
func New(clientID, clientSecret string, timeout time.Duration) *Validator {
	return NewWithGraphURL(clientID, clientSecret, timeout, defaultGraphURL)
}

// NewWithGraphURL creates a validator against a custom Graph API base URL.
// Tests point this at an httptest server.
func NewWithGraphURL(clientID, clientSecret string, timeout time.Duration, graphURL string) *Validator {
	return &Validator{
		graphURL: graphURL,
		client:   &http.Client{Timeout: timeout},
		appTokens: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     graphURL + "/oauth/access_token",
		},
	}
}

func (v *Validator) Kind() provider.Kind { return provider.KindFacebook }

func (v *Validator) AccountType() model.AccountType { return model.AccountTypeFacebook }

// introspection is the debug_token response envelope. ExpiresAt is the
// unix timestamp at which the user token stops being valid.
type introspection struct {
	Data struct {
		IsValid   bool  `json:"is_valid"`
		ExpiresAt int64 `json:"expires_at"`
		UserID    string `json:"user_id"`
	} `json:"data"`
}

// profile is the subset of the Graph /me response we request.
type profile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Name      string `json:"name"`
}

// Validate runs the three-step sequence described in the package comment.
func (v *Validator) Validate(ctx context.Context, cred provider.Credential) (*model.ExternalProfile, error) {
	// Step 1: app access token via client-credentials grant. The oauth2
	// client honours our timeout-bounded http.Client through the context.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, v.client)
	appToken, err := v.appTokens.Token(ctx)
	if err != nil {
		return nil, apperror.ProviderUnavailable("Facebook", err)
	}

	// Step 2: introspect the user token with the app token.
	introspectURL := fmt.Sprintf("%s/debug_token?input_token=%s&access_token=%s",
		v.graphURL,
		url.QueryEscape(cred.AccessToken),
		url.QueryEscape(appToken.AccessToken),
	)

	var intro introspection
	if err := v.getJSON(ctx, introspectURL, &intro); err != nil {
		return nil, err
	}

	if !intro.Data.IsValid {
		return nil, apperror.InvalidProviderToken("Facebook access token is invalid!")
	}

	// Step 3: fetch the profile. Only reached for a valid token.
	profileURL := fmt.Sprintf("%s/v2.8/me?fields=id,email,first_name,last_name,name&access_token=%s",
		v.graphURL,
		url.QueryEscape(cred.AccessToken),
	)

	var p profile
	if err := v.getJSON(ctx, profileURL, &p); err != nil {
		return nil, err
	}

	ext := &model.ExternalProfile{
		DisplayName: p.Name,
		Email:       p.Email,
	}
	if intro.Data.ExpiresAt > 0 {
		ext.TokenExpiry = time.Unix(intro.Data.ExpiresAt, 0)
	}

	return ext, nil
}

// getJSON performs a GET against the Graph API and decodes the JSON body.
// Any transport error, timeout, or non-200 status maps to
// ErrProviderUnavailable.
func (v *Validator) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("facebook: building request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return apperror.ProviderUnavailable("Facebook", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperror.ProviderUnavailable("Facebook",
			fmt.Errorf("facebook: graph API returned status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperror.ProviderUnavailable("Facebook",
			fmt.Errorf("facebook: decoding graph API response: %w", err))
	}

	return nil
}
