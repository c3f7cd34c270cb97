// Package ports defines the persistence and messaging contracts of the work
// order domain. Adapters implement them; the application layer depends only on
// these interfaces.
package ports

import (
	"context"
	"errors"

	"workorders/internal/core/domain/model/kernel"
	"workorders/internal/core/domain/model/workorder"
)

// ErrConcurrentModification is returned when a write lost an optimistic
// concurrency race: the stored version moved on, or a unique key (number,
// audit sequence) was taken by a concurrent transaction.
var ErrConcurrentModification = errors.New("work order was modified concurrently")

// WorkOrderRepository defines the persistence contract for work order aggregates.
type WorkOrderRepository interface {
	// Add persists a new work order. The aggregate must already carry its id and
	// number. On success its version is advanced by one.
	Add(ctx context.Context, aggregate *workorder.WorkOrder) error

	// Update persists an existing work order if its stored version still equals
	// aggregate.Version(), then advances the version. A mismatch returns
	// ErrConcurrentModification.
	Update(ctx context.Context, aggregate *workorder.WorkOrder) error

	// Delete removes a work order. Used only for drafts.
	Delete(ctx context.Context, id kernel.UUID) error

	// Get retrieves a work order by id without locking.
	Get(ctx context.Context, id kernel.UUID) (*workorder.WorkOrder, error)

	// GetForUpdate retrieves a work order by id and locks its row until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*workorder.WorkOrder, error)

	// ListByStatus returns every work order in status, ordered by number.
	ListByStatus(ctx context.Context, status workorder.Status) ([]*workorder.WorkOrder, error)
}
