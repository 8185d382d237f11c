package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"agora/internal/domain"
	"agora/internal/domain/models"
)

func testVerifier(t *testing.T) (*SupabaseJWTVerifier, *ecdsa.PrivateKey) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	kf := func(*jwt.Token) (interface{}, error) { return &key.PublicKey, nil }
	return newVerifier(kf, slog.New(slog.NewTextHandler(io.Discard, nil))), key
}

func sign(t *testing.T, key *ecdsa.PrivateKey, c *models.SupabaseClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodES256, c).SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func validClaims() *models.SupabaseClaims {
	c := &models.SupabaseClaims{Role: "authenticated"}
	c.Subject = "u1"
	c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	return c
}

func TestVerifyToken(t *testing.T) {
	v, key := testVerifier(t)

	tests := []struct {
		name   string
		token  func() string
		wantOK bool
	}{
		{"valid", func() string { return sign(t, key, validClaims()) }, true},
		{"expired", func() string {
			c := validClaims()
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
			return sign(t, key, c)
		}, false},
		{"no expiry", func() string {
			c := validClaims()
			c.ExpiresAt = nil
			return sign(t, key, c)
		}, false},
		{"anon role", func() string {
			c := validClaims()
			c.Role = "anon"
			return sign(t, key, c)
		}, false},
		{"anonymous session", func() string {
			c := validClaims()
			c.IsAnonymous = true
			return sign(t, key, c)
		}, false},
		{"missing subject", func() string {
			c := validClaims()
			c.Subject = ""
			return sign(t, key, c)
		}, false},
		{"hmac rejected", func() string {
			s, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims()).SignedString([]byte("secret"))
			return s
		}, false},
		{"garbage", func() string { return "not-a-jwt" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := v.VerifyToken(tt.token())
			if tt.wantOK {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if claims.GetUserID() != "u1" {
					t.Errorf("user = %q", claims.GetUserID())
				}
				return
			}
			if !errors.Is(err, domain.ErrUnauthorized) {
				t.Errorf("err = %v, want ErrUnauthorized", err)
			}
		})
	}
}
