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

// PostgresPortfolioRepository implements the PortfolioRepository interface
type PostgresPortfolioRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewPortfolioRepository creates a new portfolio repository
func NewPortfolioRepository(config *RepositoryConfig) repositories.PortfolioRepository {
	return &PostgresPortfolioRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// selectPortfolios resolves is_collected for the viewer in $1
func (r *PostgresPortfolioRepository) selectPortfolios() string {
	return fmt.Sprintf(`
		SELECT f.id, f.owner_id, f.provider_id, f.title, f.description, f.cover_url, f.tags,
		       f.impression_count, f.collect_count, f.created_at, f.updated_at,
		       EXISTS (SELECT 1 FROM %s c WHERE c.portfolio_id = f.id AND c.user_id = $1) AS is_collected
		FROM %s f
	`, r.tables.PortfolioCollects, r.tables.Portfolios)
}

// Create creates a portfolio
func (r *PostgresPortfolioRepository) Create(ctx context.Context, p *models.Portfolio) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (owner_id, provider_id, title, description, cover_url, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, r.tables.Portfolios)

	if p.Tags == nil {
		p.Tags = []string{}
	}
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		p.OwnerID,
		p.ProviderID,
		p.Title,
		p.Description,
		p.CoverURL,
		p.Tags,
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("provider does not exist: %w", domain.ErrValidation)
		}
		return fmt.Errorf("create portfolio: %w", err)
	}
	return nil
}

// GetByID retrieves a portfolio with its media
func (r *PostgresPortfolioRepository) GetByID(ctx context.Context, id, viewerID string) (*models.Portfolio, error) {
	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, r.selectPortfolios()+` WHERE f.id = $2`, nullable(viewerID), id)
	if err != nil {
		return nil, fmt.Errorf("get portfolio: %w", err)
	}
	portfolio, err := collectOne(rows, mapper.ToPortfolio, "portfolio", id)
	if err != nil {
		return nil, err
	}

	media, err := r.ListMedia(ctx, id)
	if err != nil {
		return nil, err
	}
	portfolio.Media = media
	return portfolio, nil
}

// List returns portfolios newest first
func (r *PostgresPortfolioRepository) List(ctx context.Context, filter repositories.PortfolioFilter, viewerID string) ([]models.Portfolio, error) {
	filter.Page.ApplyDefaults()

	query := r.selectPortfolios() + `
		WHERE ($2 = '' OR f.owner_id::text = $2)
		  AND ($3 = '' OR f.provider_id::text = $3)
		ORDER BY f.created_at DESC, f.id
		LIMIT $4 OFFSET $5`

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query,
		nullable(viewerID), filter.OwnerID, filter.ProviderID, filter.Page.Limit, filter.Page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list portfolios: %w", err)
	}
	portfolios, err := collect(rows, mapper.ToPortfolio)
	if err != nil {
		return nil, fmt.Errorf("scan portfolios: %w", err)
	}
	return portfolios, nil
}

// Update updates the owner-editable fields
func (r *PostgresPortfolioRepository) Update(ctx context.Context, p *models.Portfolio) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET provider_id = $1, title = $2, description = $3, cover_url = $4, tags = $5, updated_at = $6
		WHERE id = $7
	`, r.tables.Portfolios)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		p.ProviderID,
		p.Title,
		p.Description,
		p.CoverURL,
		p.Tags,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("provider does not exist: %w", domain.ErrValidation)
		}
		return fmt.Errorf("update portfolio: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("portfolio %s: %w", p.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a portfolio; media rows, collects and impressions cascade
func (r *PostgresPortfolioRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Portfolios)
	return execAffectingOne(ctx, GetExecutor(ctx, r.pool), query, "portfolio", id, id)
}

// AddMedia appends a media row at the next position and sets the cover when missing
func (r *PostgresPortfolioRepository) AddMedia(ctx context.Context, media *models.PortfolioMedia) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (portfolio_id, url, content_type, position)
		VALUES ($1, $2, $3, (SELECT COALESCE(MAX(position) + 1, 0) FROM %s WHERE portfolio_id = $1))
		RETURNING id, position, created_at
	`, r.tables.PortfolioMedia, r.tables.PortfolioMedia)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, media.PortfolioID, media.URL, media.ContentType).
		Scan(&media.ID, &media.Position, &media.CreatedAt)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("portfolio %s: %w", media.PortfolioID, domain.ErrNotFound)
		}
		return fmt.Errorf("add portfolio media: %w", err)
	}

	cover := fmt.Sprintf(`
		UPDATE %s SET cover_url = $1, updated_at = NOW()
		WHERE id = $2 AND cover_url IS NULL
	`, r.tables.Portfolios)
	if _, err := executor.Exec(ctx, cover, media.URL, media.PortfolioID); err != nil {
		return fmt.Errorf("set portfolio cover: %w", err)
	}
	return nil
}

// ListMedia returns media in display order
func (r *PostgresPortfolioRepository) ListMedia(ctx context.Context, portfolioID string) ([]models.PortfolioMedia, error) {
	query := fmt.Sprintf(`
		SELECT id, portfolio_id, url, content_type, position, created_at
		FROM %s WHERE portfolio_id = $1
		ORDER BY position
	`, r.tables.PortfolioMedia)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("list portfolio media: %w", err)
	}
	media, err := collect(rows, mapper.ToPortfolioMedia)
	if err != nil {
		return nil, fmt.Errorf("scan portfolio media: %w", err)
	}
	return media, nil
}

// SetCollected adds or removes a collect and returns the refreshed collect count
func (r *PostgresPortfolioRepository) SetCollected(ctx context.Context, portfolioID, userID string, collected bool) (int, error) {
	var query string
	if collected {
		query = fmt.Sprintf(`
			INSERT INTO %s (user_id, portfolio_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, r.tables.PortfolioCollects)
	} else {
		query = fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1 AND portfolio_id = $2`, r.tables.PortfolioCollects)
	}

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, userID, portfolioID); err != nil {
		if IsPgForeignKeyError(err) {
			return 0, fmt.Errorf("portfolio %s: %w", portfolioID, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("set collected: %w", err)
	}

	recount := fmt.Sprintf(`
		UPDATE %s SET collect_count = (SELECT COUNT(*) FROM %s WHERE portfolio_id = $1)
		WHERE id = $1
		RETURNING collect_count
	`, r.tables.Portfolios, r.tables.PortfolioCollects)
	var count int
	if err := executor.QueryRow(ctx, recount, portfolioID).Scan(&count); err != nil {
		if IsPgNoRowsError(err) {
			return 0, fmt.Errorf("portfolio %s: %w", portfolioID, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("recount collects: %w", err)
	}
	return count, nil
}
