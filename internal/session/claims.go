package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CredentialExpiry reads the exp claim of a JWT credential without verifying
// it. The client cannot verify backend signatures; this is for display only.
// ok is false when the token is opaque or has no exp.
func CredentialExpiry(token string) (exp time.Time, ok bool) {
	if token == "" {
		return time.Time{}, false
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
