// Package token mints, verifies and inspects the bearer credentials of a
// session.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Expiry peeks at the exp claim of a JWT credential without verifying
// it; the signature is the backend's business. ok is false for opaque
// credentials and tokens without exp.
func Expiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
