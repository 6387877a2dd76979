// Package authtest signs bearer tokens the way the auth provider does, for
// handler and middleware tests.
package authtest

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/config"
)

// Token returns an HS256 session token for userID valid for ttl from now.
func Token(t testing.TB, cfg config.JWTConfig, userID string, ttl time.Duration) string {
	t.Helper()
	issuedAt := time.Now()
	claims := auth.SessionTokenClaims{
		UserID:    userID,
		SessionID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		t.Fatalf("sign session token: %v", err)
	}
	return signed
}
