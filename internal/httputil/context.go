package httputil

import (
	"context"
	"net/http"

	"agora/internal/domain/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	userIDKey contextKey = "userID"
	roleKey   contextKey = "role"
)

// WithUserID adds userID to the request context
func WithUserID(r *http.Request, userID string) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, userID)
	return r.WithContext(ctx)
}

// WithIdentity adds the verified user and role to the request context
func WithIdentity(r *http.Request, userID string, role models.Role) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, userID)
	ctx = context.WithValue(ctx, roleKey, role)
	return r.WithContext(ctx)
}

// GetUserID retrieves userID from context, returns empty string if not found
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}

// GetRole returns the caller's role; anonymous callers are RoleUser
func GetRole(r *http.Request) models.Role {
	role, ok := r.Context().Value(roleKey).(models.Role)
	if !ok {
		return models.RoleUser
	}
	return role
}

// IsAdmin reports whether the caller carries the admin role
func IsAdmin(r *http.Request) bool {
	return GetRole(r) == models.RoleAdmin
}
