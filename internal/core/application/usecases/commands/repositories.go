package commands

import (
	"context"

	"workorders/internal/core/domain/model/workorder"
	"workorders/internal/core/ports"
)

type (
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	WorkOrderRepoFactory interface {
		WorkOrderRepository() ports.WorkOrderRepository
	}

	EmployeeRepoFactory interface {
		EmployeeRepository() ports.EmployeeRepository
	}

	AuditEntryRepoFactory interface {
		AuditEntryRepository() ports.AuditEntryRepository
	}

	EventSource interface {
		PendingEvents() []workorder.StatusChanged
	}

	StateCommandUoW interface {
		TxManager
		WorkOrderRepoFactory
		EmployeeRepoFactory
		AuditEntryRepoFactory
		EventSource
	}

	StateCommandUoWFactory interface {
		Create() StateCommandUoW
	}

	EmployeeUoW interface {
		TxManager
		EmployeeRepoFactory
	}

	EmployeeUoWFactory interface {
		Create() EmployeeUoW
	}
)
