package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"agora/internal/domain"
	"agora/internal/domain/models"
	"agora/internal/domain/repositories"
	"agora/internal/mapper"
)

// PostgresCommentRepository implements the CommentRepository interface
type PostgresCommentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(config *RepositoryConfig) repositories.CommentRepository {
	return &PostgresCommentRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func (r *PostgresCommentRepository) selectComments() string {
	return fmt.Sprintf(`
		SELECT c.id, c.post_id, c.author_id, c.parent_id, c.body,
		       c.upvotes, c.downvotes, c.created_at, c.updated_at,
		       COALESCE(v.value, 0) AS my_vote,
		       a.username AS author_username,
		       a.display_name AS author_display_name,
		       a.avatar_url AS author_avatar_url
		FROM %s c
		LEFT JOIN %s a ON a.id = c.author_id
		LEFT JOIN %s v ON v.target_type = 'comment' AND v.target_id = c.id AND v.user_id = $1
	`, r.tables.Comments, r.tables.Profiles, r.tables.Votes)
}

// Create inserts a comment and refreshes the post's comment count.
// A parent from another post is rejected.
func (r *PostgresCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	executor := GetExecutor(ctx, r.pool)

	if comment.ParentID != nil {
		var parentPost string
		check := fmt.Sprintf(`SELECT post_id FROM %s WHERE id = $1`, r.tables.Comments)
		if err := executor.QueryRow(ctx, check, *comment.ParentID).Scan(&parentPost); err != nil {
			if IsPgNoRowsError(err) {
				return fmt.Errorf("parent comment %s: %w", *comment.ParentID, domain.ErrNotFound)
			}
			return fmt.Errorf("get parent comment: %w", err)
		}
		if parentPost != comment.PostID {
			return fmt.Errorf("parent comment belongs to another post: %w", domain.ErrValidation)
		}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (post_id, author_id, parent_id, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, r.tables.Comments)

	err := executor.QueryRow(ctx, query,
		comment.PostID,
		comment.AuthorID,
		comment.ParentID,
		comment.Body,
		comment.CreatedAt,
		comment.UpdatedAt,
	).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("post %s: %w", comment.PostID, domain.ErrNotFound)
		}
		return fmt.Errorf("create comment: %w", err)
	}

	if comment.Children == nil {
		comment.Children = []*models.Comment{}
	}
	return r.recountPost(ctx, comment.PostID)
}

// GetByID retrieves a comment without viewer state
func (r *PostgresCommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, r.selectComments()+` WHERE c.id = $2`, nil, id)
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return collectOne(rows, mapper.ToComment, "comment", id)
}

// ListByPost returns the flat comment rows of a post in creation order
func (r *PostgresCommentRepository) ListByPost(ctx context.Context, postID, viewerID string) ([]models.Comment, error) {
	query := r.selectComments() + ` WHERE c.post_id = $2 ORDER BY c.created_at, c.id`

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, nullable(viewerID), postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	comments, err := collect(rows, mapper.ToComment)
	if err != nil {
		return nil, fmt.Errorf("scan comments: %w", err)
	}
	return comments, nil
}

// Delete removes a comment and its replies
func (r *PostgresCommentRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 RETURNING post_id`, r.tables.Comments)

	var postID string
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id).Scan(&postID); err != nil {
		if IsPgNoRowsError(err) {
			return fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("delete comment: %w", err)
	}

	// Replies cascade, so sweep every comment vote left without a target
	cleanup := fmt.Sprintf(`
		DELETE FROM %s v WHERE v.target_type = 'comment'
		AND NOT EXISTS (SELECT 1 FROM %s c WHERE c.id = v.target_id)
	`, r.tables.Votes, r.tables.Comments)
	if _, err := executor.Exec(ctx, cleanup); err != nil {
		return fmt.Errorf("delete comment votes: %w", err)
	}

	return r.recountPost(ctx, postID)
}

func (r *PostgresCommentRepository) recountPost(ctx context.Context, postID string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET comment_count = (SELECT COUNT(*) FROM %s WHERE post_id = $1)
		WHERE id = $1
	`, r.tables.Posts, r.tables.Comments)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, postID); err != nil {
		return fmt.Errorf("recount post comments: %w", err)
	}
	return nil
}
