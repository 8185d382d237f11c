package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"agora/internal/domain"
	"agora/internal/domain/repositories"
)

// PostgresFollowRepository implements the FollowRepository interface
type PostgresFollowRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(config *RepositoryConfig) repositories.FollowRepository {
	return &PostgresFollowRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// FollowUser records that follower follows followee
func (r *PostgresFollowRepository) FollowUser(ctx context.Context, followerID, followeeID string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (follower_id, followee_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, r.tables.Follows)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, followerID, followeeID); err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("profile %s: %w", followeeID, domain.ErrNotFound)
		}
		if IsPgCheckError(err) {
			return fmt.Errorf("cannot follow yourself: %w", domain.ErrValidation)
		}
		return fmt.Errorf("follow user: %w", err)
	}
	return nil
}

// UnfollowUser removes the follow if present
func (r *PostgresFollowRepository) UnfollowUser(ctx context.Context, followerID, followeeID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE follower_id = $1 AND followee_id = $2`, r.tables.Follows)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, followerID, followeeID); err != nil {
		return fmt.Errorf("unfollow user: %w", err)
	}
	return nil
}

// FollowProvider follows a provider listing and refreshes its follower count
func (r *PostgresFollowRepository) FollowProvider(ctx context.Context, userID, providerID string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, provider_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, r.tables.ProviderFollows)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, userID, providerID); err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("provider %s: %w", providerID, domain.ErrNotFound)
		}
		return fmt.Errorf("follow provider: %w", err)
	}
	return r.recountProvider(ctx, providerID)
}

// UnfollowProvider removes the provider follow if present
func (r *PostgresFollowRepository) UnfollowProvider(ctx context.Context, userID, providerID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1 AND provider_id = $2`, r.tables.ProviderFollows)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, userID, providerID); err != nil {
		return fmt.Errorf("unfollow provider: %w", err)
	}
	return r.recountProvider(ctx, providerID)
}

func (r *PostgresFollowRepository) recountProvider(ctx context.Context, providerID string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET follower_count = (SELECT COUNT(*) FROM %s WHERE provider_id = $1)
		WHERE id = $1
	`, r.tables.Providers, r.tables.ProviderFollows)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, providerID); err != nil {
		return fmt.Errorf("recount provider followers: %w", err)
	}
	return nil
}
