package queries

import (
	"context"

	"workorders/internal/core/domain/model/kernel"
	"workorders/internal/core/domain/model/workorder"
	"workorders/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetAuditEntriesQueryHandler struct {
	db *gorm.DB
}

func NewGetAuditEntriesQueryHandler(db *gorm.DB) GetAuditEntriesQueryHandler {
	return GetAuditEntriesQueryHandler{db: db}
}

// Handle lists the entries of an existing work order. A missing work order is
// reported as not found rather than as an empty ledger.
func (h GetAuditEntriesQueryHandler) Handle(ctx context.Context, query GetAuditEntriesQuery) ([]AuditEntryView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	db := h.db.WithContext(ctx)

	var exists bool
	err := db.Raw(`SELECT EXISTS (SELECT 1 FROM work_orders WHERE id = ?)`, query.WorkOrderID().Bytes()).
		Scan(&exists).Error
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errs.NewObjectNotFoundError("work order", query.WorkOrderID().String())
	}

	rows, err := db.Raw(`
		SELECT
			a.sequence,
			a.date,
			a.begin_status,
			a.end_status,
			a.action_type,
			a.action_detail,
			a.employee_id,
			COALESCE(NULLIF(TRIM(CONCAT(e.first_name, ' ', e.last_name)), ''), e.user_name, a.employee_name)
		FROM audit_entries a
		LEFT JOIN employees e ON e.id = a.employee_id
		WHERE a.work_order_id = ?
		ORDER BY a.sequence
	`, query.WorkOrderID().Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]AuditEntryView, 0)
	for rows.Next() {
		var (
			view       AuditEntryView
			begin, end string
			employeeID uuid.UUID
		)

		err = rows.Scan(
			&view.Sequence,
			&view.Date,
			&begin,
			&end,
			&view.ActionType,
			&view.ActionDetail,
			&employeeID,
			&view.EmployeeName,
		)
		if err != nil {
			return nil, err
		}

		if view.BeginStatus, err = workorder.Parse(begin); err != nil {
			return nil, err
		}
		if view.EndStatus, err = workorder.Parse(end); err != nil {
			return nil, err
		}
		if view.EmployeeID, err = kernel.UUIDFromBytes(employeeID[:]); err != nil {
			return nil, err
		}

		entries = append(entries, view)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
