package queries

import (
	"errors"
	"time"

	"workorders/internal/core/domain/model/kernel"
	"workorders/internal/core/domain/model/workorder"
	"workorders/internal/pkg/errs"
	"workorders/internal/pkg/guard"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

var ErrListWorkOrdersQueryIsNotConstructed = errors.New(
	"ListWorkOrdersQuery must be created via NewListWorkOrdersQuery constructor",
)

// ListFilter narrows ListWorkOrdersQuery. Zero fields do not filter.
type ListFilter struct {
	Status     workorder.Status
	CreatorID  *kernel.UUID
	AssigneeID *kernel.UUID

	// ChangedBefore keeps work orders whose last status change happened before it.
	ChangedBefore *time.Time

	// OverdueAt keeps work orders with a deadline before it and a non-terminal status.
	OverdueAt *time.Time

	Limit int
}

// ListWorkOrdersQuery lists work order views ordered by number. The scheduler
// uses it to find candidates; the HTTP surface to list by status.
//
// Example:
//
//	query, err := NewListWorkOrdersQuery(ListFilter{Status: workorder.Complete})
//	if err != nil {
//	    return err
//	}
//	views, err := handler.Handle(ctx, query)
type ListWorkOrdersQuery struct {
	filter ListFilter

	guard guard.ConstructorGuard
}

// NewListWorkOrdersQuery checks the filter. A zero limit becomes DefaultListLimit.
func NewListWorkOrdersQuery(filter ListFilter) (ListWorkOrdersQuery, error) {
	var errList []error
	if !filter.Status.IsNone() {
		errList = append(errList, filter.Status.Validate())
	}
	if filter.CreatorID != nil {
		errList = append(errList, filter.CreatorID.Validate())
	}
	if filter.AssigneeID != nil {
		errList = append(errList, filter.AssigneeID.Validate())
	}
	switch {
	case filter.Limit == 0:
		filter.Limit = DefaultListLimit
	case filter.Limit < 0 || filter.Limit > MaxListLimit:
		errList = append(errList, errs.NewValueIsOutOfRangeError("limit", filter.Limit, 1, MaxListLimit))
	}
	if err := errors.Join(errList...); err != nil {
		return ListWorkOrdersQuery{}, err
	}

	return ListWorkOrdersQuery{
		filter: filter,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q ListWorkOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListWorkOrdersQueryIsNotConstructed)
}

func (q ListWorkOrdersQuery) Filter() ListFilter {
	return q.filter
}
