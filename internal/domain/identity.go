package domain

import "time"

// Identity is the authenticated caller as resolved at the API boundary.
// The user ID is the stable external id used as the profile key; display
// name and email seed the lazily-created profile.
type Identity struct {
	UserID      string
	Email       string
	DisplayName string
}

// TokenIssuer issues tokens (e.g. JWT) carrying an identity.
type TokenIssuer interface {
	Issue(ident Identity, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the identity it carries.
type TokenVerifier interface {
	Verify(token string) (Identity, error)
}
