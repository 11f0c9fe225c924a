package auth

import "github.com/jvolkers/stagemarkt-api/internal/model"

// Claims is the set of custom assertions embedded in a session token.
// It is a pure projection of the user record — deriving it never fails
// and has no side effects.
type Claims struct {
	ID   string
	Name string
}

// BuildClaims derives the claim set for a user. The internal ID goes into
// the "id" claim and the display name into "name"; protected endpoints get
// everything they need from the token without a user lookup.
func BuildClaims(user *model.User) Claims {
	return Claims{
		ID:   user.ID,
		Name: user.NiceName,
	}
}
