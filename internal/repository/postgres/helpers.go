package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"agora/internal/domain"
	"agora/internal/domain/repositories"
	"agora/internal/mapper"
)

// nullable maps "" to SQL NULL, used for optional viewer ids.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// collect scans all rows into R by column name and maps them to models.
func collect[R, M any](rows pgx.Rows, fn func(R) M) ([]M, error) {
	records, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[R])
	if err != nil {
		return nil, err
	}
	return mapper.Map(records, fn), nil
}

// collectOne scans exactly one row. pgx.ErrNoRows is translated to domain.ErrNotFound.
func collectOne[R, M any](rows pgx.Rows, fn func(R) M, what, id string) (*M, error) {
	record, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[R])
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("%s %s: %w", what, id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get %s: %w", what, err)
	}
	m := fn(record)
	return &m, nil
}

// execAffectingOne runs an UPDATE/DELETE and reports ErrNotFound when no row matched.
func execAffectingOne(ctx context.Context, db repositories.DBTX, query, what, id string, args ...any) error {
	result, err := db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s %s: %w", what, id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", what, id, domain.ErrNotFound)
	}
	return nil
}
