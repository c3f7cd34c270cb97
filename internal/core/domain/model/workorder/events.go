package workorder

import (
	"time"

	"workorders/internal/core/domain/model/kernel"
)

// StatusChanged is raised once per audit entry, after the unit of work that wrote it commits.
type StatusChanged struct {
	WorkOrderID kernel.UUID
	Number      string
	Sequence    int
	BeginStatus Status
	EndStatus   Status
	Action      string
	ActorID     kernel.UUID
	OccurredAt  time.Time
}

// NewStatusChanged derives the event from the entry and the work order it belongs to.
func NewStatusChanged(wo *WorkOrder, entry AuditEntry) StatusChanged {
	return StatusChanged{
		WorkOrderID: entry.WorkOrderID(),
		Number:      wo.Number(),
		Sequence:    entry.Sequence(),
		BeginStatus: entry.BeginStatus(),
		EndStatus:   entry.EndStatus(),
		Action:      entry.ActionDetail(),
		ActorID:     entry.EmployeeID(),
		OccurredAt:  entry.Date(),
	}
}

// EventName is the routing name used by publishers.
func (StatusChanged) EventName() string {
	return "work_order.status_changed"
}
