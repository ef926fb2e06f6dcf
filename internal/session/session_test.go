package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return s
}

func TestExpiredToken(t *testing.T) {
	tok := signedToken(t, jwt.MapClaims{
		"sub": "robin",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	if !expired(tok) {
		t.Fatal("token with past exp not reported expired")
	}
}

func TestFreshTokenIsKept(t *testing.T) {
	tok := signedToken(t, jwt.MapClaims{
		"sub": "robin",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	if expired(tok) {
		t.Fatal("fresh token reported expired")
	}
}

func TestTokenWithoutExpiryIsKept(t *testing.T) {
	tok := signedToken(t, jwt.MapClaims{"sub": "robin"})
	if expired(tok) {
		t.Fatal("token without exp reported expired")
	}
}

// Opaque tokens are left for the server to judge.
func TestUnparsableTokenIsKept(t *testing.T) {
	if expired("not-a-jwt") {
		t.Fatal("unparsable token reported expired")
	}
}
