package queries

import (
	"context"
	"strings"
	"time"

	"workorders/internal/core/domain/model/workorder"

	"gorm.io/gorm"
)

// ListWorkOrdersQueryHandler lists work order views.
type ListWorkOrdersQueryHandler struct {
	db  *gorm.DB
	now func() time.Time
}

func NewListWorkOrdersQueryHandler(db *gorm.DB) ListWorkOrdersQueryHandler {
	return ListWorkOrdersQueryHandler{db: db, now: time.Now}
}

// Handle runs the filtered query. Results are sorted by number.
func (h ListWorkOrdersQueryHandler) Handle(ctx context.Context, query ListWorkOrdersQuery) ([]WorkOrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	where, args := buildListFilter(query.Filter())
	sqlText := selectWorkOrderViews + where + `
		ORDER BY w.number
		LIMIT ?
	`
	args = append(args, query.Filter().Limit)

	rows, err := h.db.WithContext(ctx).Raw(sqlText, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	now := h.now()
	views := make([]WorkOrderView, 0)
	for rows.Next() {
		view, scanErr := scanWorkOrderView(rows, now)
		if scanErr != nil {
			return nil, scanErr
		}
		views = append(views, view)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return views, nil
}

func buildListFilter(f ListFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if !f.Status.IsNone() {
		conds = append(conds, "w.status = ?")
		args = append(args, f.Status.Key())
	}
	if f.CreatorID != nil {
		conds = append(conds, "w.creator_id = ?")
		args = append(args, f.CreatorID.Bytes())
	}
	if f.AssigneeID != nil {
		conds = append(conds, "w.assignee_id = ?")
		args = append(args, f.AssigneeID.Bytes())
	}
	if f.ChangedBefore != nil {
		conds = append(conds, `COALESCE(
			(SELECT MAX(e.date) FROM audit_entries e WHERE e.work_order_id = w.id),
			w.created_date
		) < ?`)
		args = append(args, *f.ChangedBefore)
	}
	if f.OverdueAt != nil {
		conds = append(conds, "w.deadline < ? AND w.status NOT IN (?, ?, ?)")
		args = append(args, *f.OverdueAt,
			workorder.Complete.Key(), workorder.Cancelled.Key(), workorder.Archived.Key())
	}

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}
