package session

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	got, ok := TokenExpiry(signedToken(t, exp))
	if !ok {
		t.Fatal("expected expiry from a JWT with exp claim")
	}
	if !got.Equal(exp) {
		t.Fatalf("expiry = %v, want %v", got, exp)
	}
}

func TestTokenExpiryOpaqueToken(t *testing.T) {
	if _, ok := TokenExpiry("not-a-jwt"); ok {
		t.Fatal("opaque token should not report an expiry")
	}
}

func TestExpiresWithin(t *testing.T) {
	soon := signedToken(t, time.Now().Add(10*time.Minute))
	if !ExpiresWithin(soon, time.Hour) {
		t.Fatal("token expiring in 10m should report as within 1h")
	}
	if ExpiresWithin(soon, time.Minute) {
		t.Fatal("token expiring in 10m should not report as within 1m")
	}
	if ExpiresWithin("opaque", time.Hour) {
		t.Fatal("opaque tokens never report as expiring")
	}
}
