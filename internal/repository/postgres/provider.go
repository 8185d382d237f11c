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

// PostgresProviderTypeRepository implements the ProviderTypeRepository interface
type PostgresProviderTypeRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewProviderTypeRepository creates a new provider type repository
func NewProviderTypeRepository(config *RepositoryConfig) repositories.ProviderTypeRepository {
	return &PostgresProviderTypeRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// List returns all provider types ordered by name
func (r *PostgresProviderTypeRepository) List(ctx context.Context) ([]models.ProviderType, error) {
	query := fmt.Sprintf(`
		SELECT id, name, slug, description, created_at FROM %s ORDER BY name
	`, r.tables.ProviderTypes)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list provider types: %w", err)
	}
	types, err := collect(rows, mapper.ToProviderType)
	if err != nil {
		return nil, fmt.Errorf("scan provider types: %w", err)
	}
	return types, nil
}

// Create creates a provider type
func (r *PostgresProviderTypeRepository) Create(ctx context.Context, pt *models.ProviderType) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, slug, description, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, r.tables.ProviderTypes)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, pt.Name, pt.Slug, pt.Description, pt.CreatedAt).Scan(&pt.ID, &pt.CreatedAt)
	if err != nil {
		if IsPgDuplicateError(err) {
			conflict := &domain.ConflictError{
				Message:      fmt.Sprintf("provider type '%s' already exists", pt.Name),
				Code:         domain.CodeProviderTypeExists,
				ResourceType: "provider_type",
			}
			lookup := fmt.Sprintf(`SELECT id FROM %s WHERE name = $1 OR slug = $2`, r.tables.ProviderTypes)
			_ = executor.QueryRow(ctx, lookup, pt.Name, pt.Slug).Scan(&conflict.ResourceID)
			return conflict
		}
		return fmt.Errorf("create provider type: %w", err)
	}
	return nil
}

// PostgresProviderRepository implements the ProviderRepository interface
type PostgresProviderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewProviderRepository creates a new provider repository
func NewProviderRepository(config *RepositoryConfig) repositories.ProviderRepository {
	return &PostgresProviderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// selectProviders resolves is_following for the viewer in $1
func (r *PostgresProviderRepository) selectProviders() string {
	return fmt.Sprintf(`
		SELECT p.id, p.user_id, p.provider_type_id, p.display_name, p.headline, p.bio,
		       p.location, p.website, p.verified, p.follower_count, p.created_at, p.updated_at,
		       EXISTS (SELECT 1 FROM %s f WHERE f.provider_id = p.id AND f.user_id = $1) AS is_following
		FROM %s p
	`, r.tables.ProviderFollows, r.tables.Providers)
}

// Create creates a provider listing
func (r *PostgresProviderRepository) Create(ctx context.Context, p *models.Provider) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, provider_type_id, display_name, headline, bio, location, website, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, r.tables.Providers)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		p.UserID,
		p.ProviderTypeID,
		p.DisplayName,
		p.Headline,
		p.Bio,
		p.Location,
		p.Website,
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if IsPgDuplicateError(err) {
			conflict := &domain.ConflictError{
				Message:      "user already has a provider listing",
				Code:         domain.CodeProviderExists,
				ResourceType: "provider",
			}
			lookup := fmt.Sprintf(`SELECT id FROM %s WHERE user_id = $1`, r.tables.Providers)
			_ = executor.QueryRow(ctx, lookup, p.UserID).Scan(&conflict.ResourceID)
			return conflict
		}
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("provider type does not exist: %w", domain.ErrValidation)
		}
		return fmt.Errorf("create provider: %w", err)
	}
	return nil
}

// GetByID retrieves a provider by ID
func (r *PostgresProviderRepository) GetByID(ctx context.Context, id, viewerID string) (*models.Provider, error) {
	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, r.selectProviders()+` WHERE p.id = $2`, nullable(viewerID), id)
	if err != nil {
		return nil, fmt.Errorf("get provider: %w", err)
	}
	return collectOne(rows, mapper.ToProvider, "provider", id)
}

// List returns providers, verified first then most followed
func (r *PostgresProviderRepository) List(ctx context.Context, filter models.ProviderFilter, viewerID string) ([]models.Provider, error) {
	filter.Page.ApplyDefaults()

	query := r.selectProviders() + `
		WHERE ($2 = '' OR p.provider_type_id::text = $2)
		ORDER BY p.verified DESC, p.follower_count DESC, p.created_at DESC
		LIMIT $3 OFFSET $4`

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, nullable(viewerID), filter.TypeID, filter.Page.Limit, filter.Page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	providers, err := collect(rows, mapper.ToProvider)
	if err != nil {
		return nil, fmt.Errorf("scan providers: %w", err)
	}
	return providers, nil
}

// ListByIDs hydrates search hits, preserving the hit order
func (r *PostgresProviderRepository) ListByIDs(ctx context.Context, ids []string, viewerID string) ([]models.Provider, error) {
	if len(ids) == 0 {
		return []models.Provider{}, nil
	}

	query := r.selectProviders() + `
		JOIN unnest($2::uuid[]) WITH ORDINALITY AS hit(id, ord) ON hit.id = p.id
		ORDER BY hit.ord`

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, nullable(viewerID), ids)
	if err != nil {
		return nil, fmt.Errorf("list providers by id: %w", err)
	}
	providers, err := collect(rows, mapper.ToProvider)
	if err != nil {
		return nil, fmt.Errorf("scan providers: %w", err)
	}
	return providers, nil
}

// All returns every provider
func (r *PostgresProviderRepository) All(ctx context.Context) ([]models.Provider, error) {
	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, r.selectProviders()+` ORDER BY p.created_at`, nil)
	if err != nil {
		return nil, fmt.Errorf("list all providers: %w", err)
	}
	providers, err := collect(rows, mapper.ToProvider)
	if err != nil {
		return nil, fmt.Errorf("scan providers: %w", err)
	}
	return providers, nil
}

// Update updates the owner-editable listing fields
func (r *PostgresProviderRepository) Update(ctx context.Context, p *models.Provider) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET provider_type_id = $1, display_name = $2, headline = $3, bio = $4,
		    location = $5, website = $6, updated_at = $7
		WHERE id = $8
	`, r.tables.Providers)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		p.ProviderTypeID,
		p.DisplayName,
		p.Headline,
		p.Bio,
		p.Location,
		p.Website,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("provider type does not exist: %w", domain.ErrValidation)
		}
		return fmt.Errorf("update provider: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("provider %s: %w", p.ID, domain.ErrNotFound)
	}
	return nil
}

// SetVerified sets the admin-controlled verified flag
func (r *PostgresProviderRepository) SetVerified(ctx context.Context, id string, verified bool) error {
	query := fmt.Sprintf(`UPDATE %s SET verified = $1, updated_at = NOW() WHERE id = $2`, r.tables.Providers)
	return execAffectingOne(ctx, GetExecutor(ctx, r.pool), query, "provider", id, verified, id)
}
