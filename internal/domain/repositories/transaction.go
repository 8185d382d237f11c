package repositories

import "context"

// TxFn runs with a context that carries the transaction
type TxFn func(ctx context.Context) error

// TransactionManager runs multi-statement writes atomically, e.g. a vote
// upsert together with its tally update.
type TransactionManager interface {
	// ExecTx runs fn in a transaction and commits when it returns nil.
	// When ctx already carries a transaction, fn joins it and the outermost
	// ExecTx decides commit or rollback.
	ExecTx(ctx context.Context, fn TxFn) error
}
