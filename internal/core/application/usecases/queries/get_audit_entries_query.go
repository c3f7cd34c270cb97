package queries

import (
	"errors"
	"time"

	"workorders/internal/core/domain/model/kernel"
	"workorders/internal/core/domain/model/workorder"
	"workorders/internal/pkg/guard"
)

var ErrGetAuditEntriesQueryIsNotConstructed = errors.New(
	"GetAuditEntriesQuery must be created via NewGetAuditEntriesQuery constructor",
)

// GetAuditEntriesQuery reads the ledger of one work order in sequence order.
type GetAuditEntriesQuery struct {
	workOrderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetAuditEntriesQuery(workOrderID kernel.UUID) (GetAuditEntriesQuery, error) {
	if err := workOrderID.Validate(); err != nil {
		return GetAuditEntriesQuery{}, err
	}

	return GetAuditEntriesQuery{
		workOrderID: workOrderID,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (q GetAuditEntriesQuery) Validate() error {
	return q.guard.Validate(ErrGetAuditEntriesQueryIsNotConstructed)
}

func (q GetAuditEntriesQuery) WorkOrderID() kernel.UUID {
	return q.workOrderID
}

// AuditEntryView is one ledger line. EmployeeName is the actor's current
// display name, or the name archived with the entry once the actor is gone.
type AuditEntryView struct {
	Sequence     int
	Date         time.Time
	BeginStatus  workorder.Status
	EndStatus    workorder.Status
	ActionType   string
	ActionDetail string
	EmployeeID   kernel.UUID
	EmployeeName string
}
