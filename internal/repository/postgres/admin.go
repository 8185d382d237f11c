package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"agora/internal/domain/models"
	"agora/internal/domain/repositories"
)

// PostgresAdminRepository implements the AdminRepository interface
type PostgresAdminRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewAdminRepository creates a new admin repository
func NewAdminRepository(config *RepositoryConfig) repositories.AdminRepository {
	return &PostgresAdminRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Stats counts the main tables in one round trip
func (r *PostgresAdminRepository) Stats(ctx context.Context) (*models.AdminStats, error) {
	query := fmt.Sprintf(`
		SELECT
			(SELECT COUNT(*) FROM %s),
			(SELECT COUNT(*) FROM %s WHERE banned_until > NOW()),
			(SELECT COUNT(*) FROM %s),
			(SELECT COUNT(*) FROM %s),
			(SELECT COUNT(*) FROM %s),
			(SELECT COUNT(*) FROM %s)
	`, r.tables.Profiles, r.tables.Profiles, r.tables.Posts, r.tables.Comments,
		r.tables.Providers, r.tables.Portfolios)

	var stats models.AdminStats
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query).Scan(
		&stats.Users,
		&stats.BannedUsers,
		&stats.Posts,
		&stats.Comments,
		&stats.Providers,
		&stats.Portfolios,
	)
	if err != nil {
		return nil, fmt.Errorf("admin stats: %w", err)
	}
	return &stats, nil
}
