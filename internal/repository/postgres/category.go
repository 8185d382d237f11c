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

// PostgresCategoryRepository implements the CategoryRepository interface
type PostgresCategoryRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(config *RepositoryConfig) repositories.CategoryRepository {
	return &PostgresCategoryRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const categoryColumns = `id, parent_id, name, slug, description, sort_order, post_count, created_at`

// List returns all categories as flat rows
func (r *PostgresCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY sort_order, name`, categoryColumns, r.tables.Categories)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	categories, err := collect(rows, mapper.ToCategory)
	if err != nil {
		return nil, fmt.Errorf("scan categories: %w", err)
	}
	return categories, nil
}

// GetByID retrieves a category by ID
func (r *PostgresCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, categoryColumns, r.tables.Categories)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return collectOne(rows, mapper.ToCategory, "category", id)
}

// Create creates a new category
func (r *PostgresCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (parent_id, name, slug, description, sort_order, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, r.tables.Categories)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		category.ParentID,
		category.Name,
		category.Slug,
		category.Description,
		category.SortOrder,
		category.CreatedAt,
	).Scan(&category.ID, &category.CreatedAt)
	if err != nil {
		return r.translateWriteError(ctx, err, category)
	}
	if category.Children == nil {
		category.Children = []*models.Category{}
	}
	return nil
}

// Update updates a category's fields
func (r *PostgresCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $1, name = $2, slug = $3, description = $4, sort_order = $5
		WHERE id = $6
	`, r.tables.Categories)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		category.ParentID,
		category.Name,
		category.Slug,
		category.Description,
		category.SortOrder,
		category.ID,
	)
	if err != nil {
		return r.translateWriteError(ctx, err, category)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("category %s: %w", category.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a category. Children and posts hold RESTRICT foreign keys.
func (r *PostgresCategoryRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Categories)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return &domain.ConflictError{
				Message:      "category still has subcategories or posts",
				Code:         domain.CodeCategoryNotEmpty,
				ResourceType: "category",
				ResourceID:   id,
			}
		}
		return fmt.Errorf("delete category: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *PostgresCategoryRepository) translateWriteError(ctx context.Context, err error, category *models.Category) error {
	switch {
	case IsPgDuplicateError(err):
		conflict := &domain.ConflictError{
			Message:      fmt.Sprintf("category slug '%s' already exists", category.Slug),
			Code:         domain.CodeCategoryExists,
			ResourceType: "category",
		}
		query := fmt.Sprintf(`SELECT id FROM %s WHERE slug = $1`, r.tables.Categories)
		_ = GetExecutor(ctx, r.pool).QueryRow(ctx, query, category.Slug).Scan(&conflict.ResourceID)
		return conflict
	case IsPgForeignKeyError(err):
		return fmt.Errorf("parent category does not exist: %w", domain.ErrValidation)
	default:
		return fmt.Errorf("write category: %w", err)
	}
}
