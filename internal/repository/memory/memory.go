// Package memory provides map-backed implementations of the repository
// interfaces. They keep the same error contracts as the postgres stores and
// back the service tests without a database.
package memory

import (
	"context"

	"playbook/internal/domain/repositories"
)

// TransactionManager satisfies the TransactionManager interface without real
// transactions; the map stores are mutated under their own locks.
type TransactionManager struct{}

// NewTransactionManager creates a pass-through transaction manager.
func NewTransactionManager() repositories.TransactionManager {
	return &TransactionManager{}
}

// ExecTx runs fn directly.
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}
