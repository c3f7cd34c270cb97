package queries

import (
	"errors"
	"time"

	"workorders/internal/core/domain/model/kernel"
	"workorders/internal/core/domain/model/workorder"
	"workorders/internal/pkg/guard"
)

var ErrGetWorkOrderQueryIsNotConstructed = errors.New(
	"GetWorkOrderQuery must be created via NewGetWorkOrderQuery constructor",
)

// GetWorkOrderQuery reads the public fields of one work order.
//
// Example:
//
//	query, err := NewGetWorkOrderQuery(id)
//	if err != nil {
//	    return err
//	}
//	view, err := handler.Handle(ctx, query)
//	if errors.Is(err, errs.ErrObjectNotFound) {
//	    // 404
//	}
type GetWorkOrderQuery struct {
	workOrderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetWorkOrderQuery(workOrderID kernel.UUID) (GetWorkOrderQuery, error) {
	if err := workOrderID.Validate(); err != nil {
		return GetWorkOrderQuery{}, err
	}

	return GetWorkOrderQuery{
		workOrderID: workOrderID,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetWorkOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetWorkOrderQueryIsNotConstructed)
}

func (q GetWorkOrderQuery) WorkOrderID() kernel.UUID {
	return q.workOrderID
}

// WorkOrderView is the read model shared by the work order queries. Names are
// the current display names of the referenced employees, empty when the
// employee was removed.
type WorkOrderView struct {
	ID            kernel.UUID
	Number        string
	Title         string
	Description   string
	Instructions  string
	Deadline      *time.Time
	RoomTags      []string
	Status        workorder.Status
	CreatorID     kernel.UUID
	CreatorName   string
	AssigneeID    *kernel.UUID
	AssigneeName  string
	CreatedDate   *time.Time
	AssignedDate  *time.Time
	CompletedDate *time.Time
	// LastChanged is the date of the latest audit entry, or the created date
	// when the work order never changed status.
	LastChanged *time.Time
	Version     int
	Overdue     bool
}
