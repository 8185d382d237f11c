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

// PostgresRPCRepository calls the SQL functions installed by EnsureSchema.
// JSON-returning functions are decoded through the row mappers.
type PostgresRPCRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewRPCRepository creates a new RPC repository
func NewRPCRepository(config *RepositoryConfig) repositories.RPCRepository {
	return &PostgresRPCRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// callJSON runs a JSONB-returning function; SQL NULL means the subject does not exist.
func (r *PostgresRPCRepository) callJSON(ctx context.Context, fn, what, id string, args ...any) ([]byte, error) {
	placeholders := ""
	for i := range args {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(`SELECT %s(%s)`, r.tables.Func(fn), placeholders)

	var raw []byte
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, args...).Scan(&raw); err != nil {
		return nil, fmt.Errorf("call %s: %w", fn, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%s %s: %w", what, id, domain.ErrNotFound)
	}
	return raw, nil
}

// ProfileWithStats calls get_user_profile_with_stats
func (r *PostgresRPCRepository) ProfileWithStats(ctx context.Context, userID, viewerID string) (*models.ProfileWithStats, error) {
	raw, err := r.callJSON(ctx, "get_user_profile_with_stats", "profile", userID, userID, nullable(viewerID))
	if err != nil {
		return nil, err
	}
	profile, err := mapper.Decode(raw, mapper.ToProfileWithStats)
	if err != nil {
		return nil, fmt.Errorf("get_user_profile_with_stats: %w", err)
	}
	return &profile, nil
}

// ProviderFullProfile calls get_provider_full_profile
func (r *PostgresRPCRepository) ProviderFullProfile(ctx context.Context, providerID, viewerID string) (*models.ProviderFullProfile, error) {
	raw, err := r.callJSON(ctx, "get_provider_full_profile", "provider", providerID, providerID, nullable(viewerID))
	if err != nil {
		return nil, err
	}
	full, err := mapper.Decode(raw, mapper.ToProviderFullProfile)
	if err != nil {
		return nil, fmt.Errorf("get_provider_full_profile: %w", err)
	}
	return &full, nil
}

// CalculateUserBadges calls calculate_user_badges
func (r *PostgresRPCRepository) CalculateUserBadges(ctx context.Context, userID string) ([]models.EarnedBadge, error) {
	query := fmt.Sprintf(`SELECT code, earned_at FROM %s($1) ORDER BY earned_at`, r.tables.Func("calculate_user_badges"))

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("call calculate_user_badges: %w", err)
	}
	badges, err := collect(rows, mapper.ToEarnedBadge)
	if err != nil {
		return nil, fmt.Errorf("scan badges: %w", err)
	}
	return badges, nil
}

// RecordPortfolioImpression calls record_portfolio_impression
func (r *PostgresRPCRepository) RecordPortfolioImpression(ctx context.Context, portfolioID, viewerID string) (int, error) {
	query := fmt.Sprintf(`SELECT %s($1, $2)`, r.tables.Func("record_portfolio_impression"))

	var count *int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, portfolioID, nullable(viewerID)).Scan(&count); err != nil {
		return 0, fmt.Errorf("call record_portfolio_impression: %w", err)
	}
	if count == nil {
		return 0, fmt.Errorf("portfolio %s: %w", portfolioID, domain.ErrNotFound)
	}
	return *count, nil
}
