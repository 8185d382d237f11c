package client

import (
	"context"
	"net/http"
	"net/url"

	"agora/internal/domain/models"
	"agora/internal/domain/services"
)

// ListPostsParams filters GET /api/posts
type ListPostsParams struct {
	CategoryID string
	AuthorID   string
	Limit      int
	Offset     int
}

func (c *Client) ListPosts(ctx context.Context, p ListPostsParams) ([]models.Post, error) {
	q := url.Values{}
	if p.CategoryID != "" {
		q.Set("category", p.CategoryID)
	}
	if p.AuthorID != "" {
		q.Set("author", p.AuthorID)
	}
	var posts []models.Post
	err := c.do(ctx, http.MethodGet, "/api/posts", pageQuery(q, p.Limit, p.Offset), nil, &posts)
	return posts, err
}

func (c *Client) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := c.do(ctx, http.MethodGet, "/api/posts/"+url.PathEscape(id), nil, nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) CreatePost(ctx context.Context, req *services.CreatePostRequest) (*models.Post, error) {
	var post models.Post
	if err := c.do(ctx, http.MethodPost, "/api/posts", nil, req, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/posts/"+url.PathEscape(id), nil, nil, nil)
}

// VotePost sets the caller's vote: 1, -1, or 0 to clear
func (c *Client) VotePost(ctx context.Context, id string, value int) (*models.VoteTally, error) {
	return c.vote(ctx, "/api/posts/"+url.PathEscape(id)+"/vote", value)
}

// VoteComment sets the caller's vote on a comment
func (c *Client) VoteComment(ctx context.Context, id string, value int) (*models.VoteTally, error) {
	return c.vote(ctx, "/api/comments/"+url.PathEscape(id)+"/vote", value)
}

func (c *Client) vote(ctx context.Context, path string, value int) (*models.VoteTally, error) {
	var tally models.VoteTally
	body := map[string]int{"value": value}
	if err := c.do(ctx, http.MethodPut, path, nil, body, &tally); err != nil {
		return nil, err
	}
	return &tally, nil
}

// GetThread returns the post's comments as a nested tree
func (c *Client) GetThread(ctx context.Context, postID string) (*models.CommentThread, error) {
	var thread models.CommentThread
	if err := c.do(ctx, http.MethodGet, "/api/posts/"+url.PathEscape(postID)+"/comments", nil, nil, &thread); err != nil {
		return nil, err
	}
	return &thread, nil
}

// CreateComment replies to a post, or to parentID when set
func (c *Client) CreateComment(ctx context.Context, postID string, parentID *string, body string) (*models.Comment, error) {
	var comment models.Comment
	req := services.CreateCommentRequest{ParentID: parentID, Body: body}
	if err := c.do(ctx, http.MethodPost, "/api/posts/"+url.PathEscape(postID)+"/comments", nil, req, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (c *Client) DeleteComment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/comments/"+url.PathEscape(id), nil, nil, nil)
}

// ListCategories returns the flat category list
func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := c.do(ctx, http.MethodGet, "/api/categories", nil, nil, &categories)
	return categories, err
}

// CategoryTree returns the assembled category hierarchy
func (c *Client) CategoryTree(ctx context.Context) ([]*models.Category, error) {
	var roots []*models.Category
	err := c.do(ctx, http.MethodGet, "/api/categories/tree", nil, nil, &roots)
	return roots, err
}

// CreateCategory requires an admin token
func (c *Client) CreateCategory(ctx context.Context, req *services.CreateCategoryRequest) (*models.Category, error) {
	var category models.Category
	if err := c.do(ctx, http.MethodPost, "/api/admin/categories", nil, req, &category); err != nil {
		return nil, err
	}
	return &category, nil
}
