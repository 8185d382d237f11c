package repositories

import (
	"context"

	"agora/internal/domain/models"
)

// PostFilter narrows a post listing
type PostFilter struct {
	CategoryID string
	AuthorID   string
	Page       models.Page
}

// PostRepository defines data access operations for forum posts
type PostRepository interface {
	// Create inserts a post and fills ID and timestamps
	Create(ctx context.Context, post *models.Post) error

	// GetByID retrieves a post with its author card; MyVote is resolved for viewerID ("" for anonymous)
	GetByID(ctx context.Context, id, viewerID string) (*models.Post, error)

	// List retrieves posts ordered by created_at DESC
	List(ctx context.Context, filter PostFilter, viewerID string) ([]models.Post, error)

	// Update updates title, body and category
	Update(ctx context.Context, post *models.Post) error

	// Delete hard-deletes a post; comments and votes cascade
	Delete(ctx context.Context, id string) error
}

// CommentRepository defines data access operations for comments
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)

	// ListByPost returns every comment of a post as flat rows, oldest first
	ListByPost(ctx context.Context, postID, viewerID string) ([]models.Comment, error)

	// Delete removes a comment; replies cascade
	Delete(ctx context.Context, id string) error
}

// VoteRepository stores per-user votes and maintains the denormalized tallies
type VoteRepository interface {
	// Set records vote.Value for the user (0 clears) and returns the resulting tally.
	// Setting the same value twice is a no-op.
	Set(ctx context.Context, vote models.Vote) (*models.VoteTally, error)
}

// CategoryRepository defines data access operations for forum categories
type CategoryRepository interface {
	// List returns all categories ordered by sort_order, name
	List(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error

	// Delete fails with a CATEGORY_NOT_EMPTY conflict when children or posts reference it
	Delete(ctx context.Context, id string) error
}
