package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"agora/internal/auth"
	"agora/internal/domain"
	"agora/internal/httputil"
)

// AuthMiddleware verifies the bearer token when one is present and stores the
// caller's identity in the request context. Requests without a token pass
// through anonymously; RequireAuth and RequireAdmin guard protected routes.
//
// Browsers cannot set headers on WebSocket and EventSource requests, so
// the token is also read from the access_token query parameter.
func AuthMiddleware(verifier auth.JWTVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				logger.Debug("token rejected", "path", r.URL.Path, "error", err)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, httputil.WithIdentity(r, claims.GetUserID(), claims.AppRole()))
		})
	}
}

func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return ""
		}
		return strings.TrimSpace(token)
	}
	return r.URL.Query().Get("access_token")
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if httputil.GetUserID(r) == "" {
			httputil.RespondError(w, http.StatusUnauthorized, domain.ErrUnauthorized.Error())
			return
		}
		next(w, r)
	}
}

// RequireAdmin rejects anonymous requests with 401 and non-admins with 403.
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		if !httputil.IsAdmin(r) {
			httputil.RespondError(w, http.StatusForbidden, domain.ErrForbidden.Error())
			return
		}
		next(w, r)
	})
}

// BanChecker reports whether a user is currently banned.
type BanChecker interface {
	IsBanned(ctx context.Context, userID string) (bool, error)
}

// RejectBanned blocks writes from banned users. Reads stay available.
func RejectBanned(checker BanChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := httputil.GetUserID(r)
			if userID == "" || r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			banned, err := checker.IsBanned(r.Context(), userID)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				logger.Error("ban check failed", "user_id", userID, "error", err)
				httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if banned {
				httputil.RespondError(w, http.StatusForbidden, "account is suspended")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
