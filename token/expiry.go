package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Expiry reads the exp claim when the opaque token happens to be a JWT.
// The signature is not checked: only the remote API decides validity.
func Expiry(raw string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
