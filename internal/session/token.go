// Package session handles the bearer token the client attaches to API
// calls. Authentication itself lives server-side; this package only
// inspects the token's expiry claim so the CLI can warn before calls
// start failing with 401s.
package session

import (
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// TokenExpiry returns the exp claim of a JWT without verifying its
// signature (the server is the verifier; the client only schedules
// around it). ok is false for opaque tokens or tokens without exp.
func TokenExpiry(token string) (time.Time, bool) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// ExpiresWithin reports whether the token expires within d. Opaque
// tokens never report as expiring.
func ExpiresWithin(token string, d time.Duration) bool {
	exp, ok := TokenExpiry(token)
	if !ok {
		return false
	}
	return time.Until(exp) < d
}
