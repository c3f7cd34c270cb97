package ports

import (
	"context"

	"workorders/internal/core/domain/model/workorder"
)

// UnitOfWorkFactory creates a new UnitOfWork for each command.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is a business transaction boundary. Repositories obtained after
// Begin share its transaction.
type UnitOfWork interface {
	// Begin starts a new database transaction. Calling it twice is a no-op.
	Begin(ctx context.Context) error

	// Commit commits the current transaction.
	// Returns error if no active transaction or commit fails.
	Commit(ctx context.Context) error

	// Rollback rolls back the current transaction and drops pending events.
	// Returns error if no active transaction or rollback fails.
	Rollback(ctx context.Context) error

	WorkOrderRepository() WorkOrderRepository
	EmployeeRepository() EmployeeRepository
	AuditEntryRepository() AuditEntryRepository

	// PendingEvents returns the events raised by appended audit entries since
	// Begin. Callers publish them after Commit.
	PendingEvents() []workorder.StatusChanged
}
