package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestPgErrorClassification(t *testing.T) {
	wrap := func(code string) error {
		return fmt.Errorf("insert vote: %w", &pgconn.PgError{Code: code, ConstraintName: "votes_pkey"})
	}

	tests := []struct {
		name      string
		err       error
		unique    bool
		retryable bool
	}{
		{"unique violation", wrap("23505"), true, false},
		{"serialization failure", wrap("40001"), false, true},
		{"deadlock", wrap("40P01"), false, true},
		{"plain error", errors.New("boom"), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPgDuplicateError(tt.err); got != tt.unique {
				t.Errorf("IsPgDuplicateError = %v", got)
			}
			if got := isRetryable(tt.err); got != tt.retryable {
				t.Errorf("isRetryable = %v", got)
			}
		})
	}

	if got := constraintName(wrap("23505")); got != "votes_pkey" {
		t.Errorf("constraintName = %q", got)
	}
}
