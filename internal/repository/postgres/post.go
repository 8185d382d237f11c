package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"agora/internal/domain"
	"agora/internal/domain/models"
	"agora/internal/domain/repositories"
	"agora/internal/mapper"
)

// PostgresPostRepository implements the PostRepository interface
type PostgresPostRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewPostRepository creates a new post repository
func NewPostRepository(config *RepositoryConfig) repositories.PostRepository {
	return &PostgresPostRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// selectPosts joins the author card and the viewer's vote ($1 = viewer id, may be NULL)
func (r *PostgresPostRepository) selectPosts() string {
	return fmt.Sprintf(`
		SELECT p.id, p.author_id, p.category_id, p.title, p.body,
		       p.upvotes, p.downvotes, p.comment_count, p.created_at, p.updated_at,
		       COALESCE(v.value, 0) AS my_vote,
		       a.username AS author_username,
		       a.display_name AS author_display_name,
		       a.avatar_url AS author_avatar_url
		FROM %s p
		LEFT JOIN %s a ON a.id = p.author_id
		LEFT JOIN %s v ON v.target_type = 'post' AND v.target_id = p.id AND v.user_id = $1
	`, r.tables.Posts, r.tables.Profiles, r.tables.Votes)
}

// Create inserts a post and bumps the category post count
func (r *PostgresPostRepository) Create(ctx context.Context, post *models.Post) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (author_id, category_id, title, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, r.tables.Posts)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		post.AuthorID,
		post.CategoryID,
		post.Title,
		post.Body,
		post.CreatedAt,
		post.UpdatedAt,
	).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("category does not exist: %w", domain.ErrValidation)
		}
		return fmt.Errorf("create post: %w", err)
	}

	if post.CategoryID != nil {
		if err := r.recountCategory(ctx, *post.CategoryID); err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves a post by ID
func (r *PostgresPostRepository) GetByID(ctx context.Context, id, viewerID string) (*models.Post, error) {
	query := r.selectPosts() + ` WHERE p.id = $2`

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, nullable(viewerID), id)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return collectOne(rows, mapper.ToPost, "post", id)
}

// List retrieves posts, newest first
func (r *PostgresPostRepository) List(ctx context.Context, filter repositories.PostFilter, viewerID string) ([]models.Post, error) {
	filter.Page.ApplyDefaults()

	args := []any{nullable(viewerID)}
	var where []string
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		where = append(where, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	if filter.AuthorID != "" {
		args = append(args, filter.AuthorID)
		where = append(where, fmt.Sprintf("p.author_id = $%d", len(args)))
	}

	query := r.selectPosts()
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, filter.Page.Limit, filter.Page.Offset)
	query += fmt.Sprintf(" ORDER BY p.created_at DESC, p.id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	posts, err := collect(rows, mapper.ToPost)
	if err != nil {
		return nil, fmt.Errorf("scan posts: %w", err)
	}
	return posts, nil
}

// Update updates title, body and category. Both old and new categories are recounted.
func (r *PostgresPostRepository) Update(ctx context.Context, post *models.Post) error {
	query := fmt.Sprintf(`
		WITH old AS (SELECT category_id FROM %s WHERE id = $5)
		UPDATE %s
		SET title = $1, body = $2, category_id = $3, updated_at = $4
		WHERE id = $5
		RETURNING (SELECT category_id FROM old)
	`, r.tables.Posts, r.tables.Posts)

	var previous *string
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		post.Title,
		post.Body,
		post.CategoryID,
		post.UpdatedAt,
		post.ID,
	).Scan(&previous)
	if err != nil {
		if IsPgNoRowsError(err) {
			return fmt.Errorf("post %s: %w", post.ID, domain.ErrNotFound)
		}
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("category does not exist: %w", domain.ErrValidation)
		}
		return fmt.Errorf("update post: %w", err)
	}

	for _, c := range []*string{previous, post.CategoryID} {
		if c != nil {
			if err := r.recountCategory(ctx, *c); err != nil {
				return err
			}
		}
	}
	return nil
}

// Delete hard-deletes a post
func (r *PostgresPostRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 RETURNING category_id`, r.tables.Posts)

	var category *string
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id).Scan(&category); err != nil {
		if IsPgNoRowsError(err) {
			return fmt.Errorf("post %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("delete post: %w", err)
	}

	// Votes have no FK to their polymorphic target
	cleanup := fmt.Sprintf(`DELETE FROM %s WHERE target_type = 'post' AND target_id = $1`, r.tables.Votes)
	if _, err := executor.Exec(ctx, cleanup, id); err != nil {
		return fmt.Errorf("delete post votes: %w", err)
	}

	if category != nil {
		return r.recountCategory(ctx, *category)
	}
	return nil
}

func (r *PostgresPostRepository) recountCategory(ctx context.Context, categoryID string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET post_count = (SELECT COUNT(*) FROM %s WHERE category_id = $1)
		WHERE id = $1
	`, r.tables.Categories, r.tables.Posts)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, categoryID); err != nil {
		return fmt.Errorf("recount category posts: %w", err)
	}
	return nil
}
