package services

import (
	"context"

	"agora/internal/domain/models"
)

// Actor is the authenticated caller of a mutating operation.
type Actor struct {
	UserID string
	Role   models.Role
}

// IsAdmin reports whether the actor may moderate other users' content.
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// ResourceAuthorizer checks if a user can modify resources.
// Current implementation: ownership-based, with admins allowed everywhere.
//
// Design principle: Services call authorizer before operating on resources.
// This separates authorization (who can access) from identification (which resource).
type ResourceAuthorizer interface {
	// CanModifyPost checks if actor authored the post
	CanModifyPost(ctx context.Context, actor Actor, postID string) error

	// CanModifyComment checks if actor authored the comment
	CanModifyComment(ctx context.Context, actor Actor, commentID string) error

	// CanModifyProvider checks if actor owns the provider listing
	CanModifyProvider(ctx context.Context, actor Actor, providerID string) error

	// CanModifyPortfolio checks if actor owns the portfolio
	CanModifyPortfolio(ctx context.Context, actor Actor, portfolioID string) error
}
