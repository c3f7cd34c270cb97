package queries

import (
	"context"
	"time"

	"workorders/internal/pkg/errs"

	"gorm.io/gorm"
)

// GetWorkOrderQueryHandler reads a single work order view.
type GetWorkOrderQueryHandler struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGetWorkOrderQueryHandler(db *gorm.DB) GetWorkOrderQueryHandler {
	return GetWorkOrderQueryHandler{db: db, now: time.Now}
}

// Handle returns the view or an *errs.ObjectNotFoundError.
func (h GetWorkOrderQueryHandler) Handle(ctx context.Context, query GetWorkOrderQuery) (WorkOrderView, error) {
	if err := query.Validate(); err != nil {
		return WorkOrderView{}, err
	}

	rows, err := h.db.WithContext(ctx).Raw(selectWorkOrderViews+`
		WHERE w.id = ?
	`, query.WorkOrderID().Bytes()).Rows()
	if err != nil {
		return WorkOrderView{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return WorkOrderView{}, err
		}
		return WorkOrderView{}, errs.NewObjectNotFoundError("work order", query.WorkOrderID().String())
	}

	view, err := scanWorkOrderView(rows, h.now())
	if err != nil {
		return WorkOrderView{}, err
	}
	return view, rows.Err()
}
