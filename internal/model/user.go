// Package model defines the data structures used throughout the application.
package model

import "time"

// AccountType distinguishes how a user account was created. Local
// registrations carry a password hash; federated accounts never do.
type AccountType string

const (
	AccountTypeAPI      AccountType = "api_user"
	AccountTypeFacebook AccountType = "facebook_user"
	AccountTypeLinkedIn AccountType = "linkedin_user"
)

// User represents an internal user account.
//
// The email address is the identity anchor: one email maps to at most one
// user row, regardless of whether the account originated from a local
// registration or a federated login. The database enforces this with a
// UNIQUE index on lower(email).
//
// PasswordHash is only ever set for AccountTypeAPI users. Federated users
// authenticate through their provider and have an empty hash; they can
// never pass the local credential check.
type User struct {
	ID           string      `json:"id"`
	NiceName     string      `json:"niceName"`
	Email        string      `json:"email"`
	AccountType  AccountType `json:"accountType"`
	PasswordHash string      `json:"-"` // never serialized
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// ExternalProfile is the normalized identity returned by a provider token
// validation. It contains facts reported by the provider, nothing more —
// no account decisions are made at this level.
//
// TokenExpiry is the provider-reported expiry of the access token that was
// validated, when the provider exposes one. The zero value means unknown;
// the login flow caps the session token lifetime with it when present.
type ExternalProfile struct {
	DisplayName string
	Email       string
	TokenExpiry time.Time
}
