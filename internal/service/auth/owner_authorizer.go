package auth

import (
	"context"
	"fmt"

	"agora/internal/domain"
	"agora/internal/domain/repositories"
	"agora/internal/domain/services"
)

// OwnerBasedAuthorizer implements ResourceAuthorizer using ownership checks.
// A user can modify a resource they created; admins can modify anything.
type OwnerBasedAuthorizer struct {
	postRepo      repositories.PostRepository
	commentRepo   repositories.CommentRepository
	providerRepo  repositories.ProviderRepository
	portfolioRepo repositories.PortfolioRepository
}

// NewOwnerBasedAuthorizer creates a new ownership-based authorizer
func NewOwnerBasedAuthorizer(
	postRepo repositories.PostRepository,
	commentRepo repositories.CommentRepository,
	providerRepo repositories.ProviderRepository,
	portfolioRepo repositories.PortfolioRepository,
) *OwnerBasedAuthorizer {
	return &OwnerBasedAuthorizer{
		postRepo:      postRepo,
		commentRepo:   commentRepo,
		providerRepo:  providerRepo,
		portfolioRepo: portfolioRepo,
	}
}

// owns returns ErrForbidden unless actor is ownerID or an admin
func owns(actor services.Actor, ownerID, what, id string) error {
	if actor.IsAdmin() || (actor.UserID != "" && actor.UserID == ownerID) {
		return nil
	}
	return fmt.Errorf("access denied to %s %s: %w", what, id, domain.ErrForbidden)
}

// CanModifyPost checks if actor authored the post
func (a *OwnerBasedAuthorizer) CanModifyPost(ctx context.Context, actor services.Actor, postID string) error {
	post, err := a.postRepo.GetByID(ctx, postID, "")
	if err != nil {
		return fmt.Errorf("get post for auth: %w", err)
	}
	return owns(actor, post.AuthorID, "post", postID)
}

// CanModifyComment checks if actor authored the comment
func (a *OwnerBasedAuthorizer) CanModifyComment(ctx context.Context, actor services.Actor, commentID string) error {
	comment, err := a.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return fmt.Errorf("get comment for auth: %w", err)
	}
	return owns(actor, comment.AuthorID, "comment", commentID)
}

// CanModifyProvider checks if actor owns the provider listing
func (a *OwnerBasedAuthorizer) CanModifyProvider(ctx context.Context, actor services.Actor, providerID string) error {
	provider, err := a.providerRepo.GetByID(ctx, providerID, "")
	if err != nil {
		return fmt.Errorf("get provider for auth: %w", err)
	}
	return owns(actor, provider.UserID, "provider", providerID)
}

// CanModifyPortfolio checks if actor owns the portfolio
func (a *OwnerBasedAuthorizer) CanModifyPortfolio(ctx context.Context, actor services.Actor, portfolioID string) error {
	portfolio, err := a.portfolioRepo.GetByID(ctx, portfolioID, "")
	if err != nil {
		return fmt.Errorf("get portfolio for auth: %w", err)
	}
	return owns(actor, portfolio.OwnerID, "portfolio", portfolioID)
}
