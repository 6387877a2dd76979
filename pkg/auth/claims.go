package auth

import "github.com/golang-jwt/jwt/v5"

// SessionTokenClaims is the payload of the bearer token issued by the auth
// provider. Providers that only set "sub" are supported through Subject.
type SessionTokenClaims struct {
	UserID    string `json:"user_id,omitempty"`
	SessionID string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

// Identity returns the directory user id carried by the token.
func (c *SessionTokenClaims) Identity() string {
	if c == nil {
		return ""
	}
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}
