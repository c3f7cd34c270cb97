package ports

import (
	"context"

	"workorders/internal/core/domain/model/kernel"
	"workorders/internal/core/domain/model/workorder"
)

// AuditEntryRepository is the append-only audit ledger. There is no update or delete.
type AuditEntryRepository interface {
	// Append stores entry. A duplicate (work order, sequence) pair returns
	// ErrConcurrentModification.
	Append(ctx context.Context, entry workorder.AuditEntry) error

	// NextSequence returns one more than the highest stored sequence of the
	// work order, or 1 when it has none.
	NextSequence(ctx context.Context, workOrderID kernel.UUID) (int, error)

	// ListByWorkOrder returns the entries of a work order in sequence order.
	ListByWorkOrder(ctx context.Context, workOrderID kernel.UUID) ([]workorder.AuditEntry, error)
}
