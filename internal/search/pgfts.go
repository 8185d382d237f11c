package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PgFTS implements Searcher using PostgreSQL full-text search as a fallback.
type PgFTS struct {
	pool  *pgxpool.Pool
	table string
}

// NewPgFTS creates a PostgreSQL FTS searcher over the providers table.
func NewPgFTS(pool *pgxpool.Pool, providersTable string) *PgFTS {
	return &PgFTS{pool: pool, table: providersTable}
}

// Healthy always returns true: if Postgres is down, the whole app is down.
func (p *PgFTS) Healthy() bool {
	return true
}

// tsVector must match the expression of the providers FTS index.
const tsVector = `to_tsvector('simple', display_name || ' ' || headline || ' ' || bio || ' ' || location)`

// Search ranks providers with plainto_tsquery and ts_rank
func (p *PgFTS) Search(ctx context.Context, q Query) ([]Hit, int, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, 0, nil
	}
	q.applyDefaults()

	query := fmt.Sprintf(`
		SELECT id::text, COUNT(*) OVER () AS total
		FROM %s
		WHERE %s @@ plainto_tsquery('simple', $1)
		  AND ($2 = '' OR provider_type_id::text = $2)
		ORDER BY ts_rank(%s, plainto_tsquery('simple', $1)) DESC, follower_count DESC
		LIMIT $3 OFFSET $4
	`, p.table, tsVector, tsVector)

	rows, err := p.pool.Query(ctx, query, q.Text, q.TypeID, q.Limit, q.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("pgfts query: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	total := 0
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.ID, &total); err != nil {
			return nil, 0, fmt.Errorf("pgfts scan: %w", err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgfts rows: %w", err)
	}
	return hits, total, nil
}
