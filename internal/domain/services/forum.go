package services

import (
	"context"

	"agora/internal/domain/models"
)

// CreatePostRequest represents a request to create a forum post
type CreatePostRequest struct {
	AuthorID   string  `json:"-"`
	CategoryID *string `json:"categoryId"`
	Title      string  `json:"title"`
	Body       string  `json:"body"`
}

// UpdatePostRequest updates only the provided fields
type UpdatePostRequest struct {
	Title      *string
	Body       *string
	CategoryID models.OptionalString
}

// ListPostsRequest filters a post listing
type ListPostsRequest struct {
	CategoryID string
	AuthorID   string
	Page       models.Page
}

// CreateCommentRequest represents a reply to a post or to another comment
type CreateCommentRequest struct {
	PostID   string  `json:"-"`
	AuthorID string  `json:"-"`
	ParentID *string `json:"parentId"`
	Body     string  `json:"body"`
}

// PostService defines business logic operations for forum posts
type PostService interface {
	CreatePost(ctx context.Context, req *CreatePostRequest) (*models.Post, error)

	// GetPost resolves MyVote for viewerID ("" for anonymous)
	GetPost(ctx context.Context, id, viewerID string) (*models.Post, error)
	ListPosts(ctx context.Context, req *ListPostsRequest, viewerID string) ([]models.Post, error)
	UpdatePost(ctx context.Context, id string, actor Actor, req *UpdatePostRequest) (*models.Post, error)

	// DeletePost is allowed for the author and for admins
	DeletePost(ctx context.Context, id string, actor Actor) error

	// VotePost sets the user's vote to value (1, -1, or 0 to clear)
	VotePost(ctx context.Context, id, userID string, value int) (*models.VoteTally, error)
}

// CommentService defines business logic operations for comment threads
type CommentService interface {
	CreateComment(ctx context.Context, req *CreateCommentRequest) (*models.Comment, error)

	// GetThread returns the post's comments assembled into a tree
	GetThread(ctx context.Context, postID, viewerID string) (*models.CommentThread, error)
	DeleteComment(ctx context.Context, id string, actor Actor) error
	VoteComment(ctx context.Context, id, userID string, value int) (*models.VoteTally, error)
}

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	ParentID    *string `json:"parentId"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	SortOrder   int     `json:"sortOrder"`
}

// UpdateCategoryRequest updates only the provided fields
type UpdateCategoryRequest struct {
	ParentID    models.OptionalString
	Name        *string
	Slug        *string
	Description *string
	SortOrder   *int
}

// CategoryService defines business logic operations for the category hierarchy
type CategoryService interface {
	ListCategories(ctx context.Context) ([]models.Category, error)

	// GetTree returns the assembled hierarchy, served from cache when possible
	GetTree(ctx context.Context) ([]*models.Category, error)
	CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*models.Category, error)
	UpdateCategory(ctx context.Context, id string, req *UpdateCategoryRequest) (*models.Category, error)

	// DeleteCategory fails with CATEGORY_NOT_EMPTY while children or posts reference it
	DeleteCategory(ctx context.Context, id string) error
}
