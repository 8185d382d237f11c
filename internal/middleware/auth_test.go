package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"agora/internal/domain"
	"agora/internal/domain/models"
	"agora/internal/httputil"
)

type fakeVerifier struct {
	tokens map[string]*models.SupabaseClaims
}

func (f *fakeVerifier) VerifyToken(token string) (*models.SupabaseClaims, error) {
	if c, ok := f.tokens[token]; ok {
		return c, nil
	}
	return nil, domain.ErrUnauthorized
}

func (f *fakeVerifier) Close() error { return nil }

func claims(sub string, role models.Role) *models.SupabaseClaims {
	c := &models.SupabaseClaims{Role: "authenticated"}
	c.Subject = sub
	if role == models.RoleAdmin {
		c.AppMetadata = map[string]interface{}{"role": "admin"}
	}
	return c
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestAuthMiddleware(t *testing.T) {
	verifier := &fakeVerifier{tokens: map[string]*models.SupabaseClaims{
		"user-token":  claims("u1", models.RoleUser),
		"admin-token": claims("a1", models.RoleAdmin),
	}}

	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(httputil.GetUserID(r) + "/" + string(httputil.GetRole(r))))
	})
	mux := http.NewServeMux()
	mux.Handle("GET /open", echo)
	mux.HandleFunc("GET /user", RequireAuth(echo))
	mux.HandleFunc("GET /admin", RequireAdmin(echo))
	h := AuthMiddleware(verifier, discard())(mux)

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"anonymous open", "/open", "", http.StatusOK, "/user"},
		{"user open", "/open", "Bearer user-token", http.StatusOK, "u1/user"},
		{"query token", "/open?access_token=admin-token", "", http.StatusOK, "a1/admin"},
		{"bad token", "/open", "Bearer nope", http.StatusUnauthorized, ""},
		{"anonymous protected", "/user", "", http.StatusUnauthorized, ""},
		{"user protected", "/user", "Bearer user-token", http.StatusOK, "u1/user"},
		{"user on admin route", "/admin", "Bearer user-token", http.StatusForbidden, ""},
		{"admin on admin route", "/admin", "Bearer admin-token", http.StatusOK, "a1/admin"},
		{"non bearer scheme", "/user", "Basic abc", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

type banList map[string]bool

func (b banList) IsBanned(_ context.Context, userID string) (bool, error) {
	return b[userID], nil
}

func TestRejectBanned(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := RejectBanned(banList{"bad": true}, discard())(ok)

	tests := []struct {
		name   string
		method string
		user   string
		want   int
	}{
		{"banned write", http.MethodPost, "bad", http.StatusForbidden},
		{"banned read", http.MethodGet, "bad", http.StatusNoContent},
		{"good write", http.MethodPost, "good", http.StatusNoContent},
		{"anonymous write", http.MethodPost, "", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/x", nil)
			if tt.user != "" {
				req = httputil.WithUserID(req, tt.user)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
