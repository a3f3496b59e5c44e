package repositories

import "context"

// TxFn runs within a transaction carried by its context.
type TxFn func(ctx context.Context) error

// TransactionManager scopes a function to one store transaction. Share,
// revoke and delete-with-cleanup each run as a single unit so concurrent
// writers serialize instead of producing duplicate grant rows.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
