package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"agora/internal/domain"
	"agora/internal/domain/models"
	"agora/internal/domain/repositories"
)

// PostgresVoteRepository implements the VoteRepository interface
type PostgresVoteRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewVoteRepository creates a new vote repository
func NewVoteRepository(config *RepositoryConfig) repositories.VoteRepository {
	return &PostgresVoteRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func (r *PostgresVoteRepository) targetTable(t models.VoteTarget) (string, error) {
	switch t {
	case models.VoteTargetPost:
		return r.tables.Posts, nil
	case models.VoteTargetComment:
		return r.tables.Comments, nil
	default:
		return "", fmt.Errorf("unknown vote target %q: %w", t, domain.ErrValidation)
	}
}

// Set stores the user's vote and applies the tally delta to the target row.
// Callers run it inside a transaction so the read and both writes are atomic.
func (r *PostgresVoteRepository) Set(ctx context.Context, vote models.Vote) (*models.VoteTally, error) {
	target, err := r.targetTable(vote.TargetType)
	if err != nil {
		return nil, err
	}
	executor := GetExecutor(ctx, r.pool)

	// Lock the target row first so concurrent votes on it serialize
	lock := fmt.Sprintf(`SELECT 1 FROM %s WHERE id = $1 FOR UPDATE`, target)
	var one int
	if err := executor.QueryRow(ctx, lock, vote.TargetID).Scan(&one); err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("%s %s: %w", vote.TargetType, vote.TargetID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("lock vote target: %w", err)
	}

	previous := 0
	get := fmt.Sprintf(`
		SELECT value FROM %s
		WHERE user_id = $1 AND target_type = $2 AND target_id = $3
	`, r.tables.Votes)
	if err := executor.QueryRow(ctx, get, vote.UserID, string(vote.TargetType), vote.TargetID).Scan(&previous); err != nil && !IsPgNoRowsError(err) {
		return nil, fmt.Errorf("get vote: %w", err)
	}

	if previous != vote.Value {
		if vote.Value == 0 {
			del := fmt.Sprintf(`
				DELETE FROM %s WHERE user_id = $1 AND target_type = $2 AND target_id = $3
			`, r.tables.Votes)
			if _, err := executor.Exec(ctx, del, vote.UserID, string(vote.TargetType), vote.TargetID); err != nil {
				return nil, fmt.Errorf("delete vote: %w", err)
			}
		} else {
			upsert := fmt.Sprintf(`
				INSERT INTO %s (user_id, target_type, target_id, value)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (user_id, target_type, target_id)
				DO UPDATE SET value = EXCLUDED.value, created_at = NOW()
			`, r.tables.Votes)
			if _, err := executor.Exec(ctx, upsert, vote.UserID, string(vote.TargetType), vote.TargetID, vote.Value); err != nil {
				return nil, fmt.Errorf("upsert vote: %w", err)
			}
		}
	}

	upDelta, downDelta := tallyDelta(previous, vote.Value)
	tally := models.VoteTally{MyVote: vote.Value}
	update := fmt.Sprintf(`
		UPDATE %s SET upvotes = upvotes + $1, downvotes = downvotes + $2
		WHERE id = $3
		RETURNING upvotes, downvotes
	`, target)
	if err := executor.QueryRow(ctx, update, upDelta, downDelta, vote.TargetID).Scan(&tally.Upvotes, &tally.Downvotes); err != nil {
		return nil, fmt.Errorf("update tally: %w", err)
	}

	return &tally, nil
}

// tallyDelta returns the change to (upvotes, downvotes) when a vote moves from previous to next.
func tallyDelta(previous, next int) (int, int) {
	indicator := func(v, want int) int {
		if v == want {
			return 1
		}
		return 0
	}
	return indicator(next, 1) - indicator(previous, 1), indicator(next, -1) - indicator(previous, -1)
}
