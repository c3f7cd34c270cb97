package queries

import (
	"database/sql"
	"time"

	"workorders/internal/core/domain/model/kernel"
	"workorders/internal/core/domain/model/workorder"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// selectWorkOrderViews is the projection behind WorkOrderView. Callers append
// their WHERE and ORDER BY clauses.
const selectWorkOrderViews = `
	SELECT
		w.id,
		w.number,
		w.title,
		w.description,
		w.instructions,
		w.deadline,
		w.room_tags,
		w.status,
		w.creator_id,
		COALESCE(NULLIF(TRIM(CONCAT(c.first_name, ' ', c.last_name)), ''), c.user_name, '') AS creator_name,
		w.assignee_id,
		COALESCE(NULLIF(TRIM(CONCAT(a.first_name, ' ', a.last_name)), ''), a.user_name, '') AS assignee_name,
		w.created_date,
		w.assigned_date,
		w.completed_date,
		COALESCE(
			(SELECT MAX(e.date) FROM audit_entries e WHERE e.work_order_id = w.id),
			w.created_date
		) AS last_changed,
		w.version
	FROM work_orders w
	LEFT JOIN employees c ON c.id = w.creator_id
	LEFT JOIN employees a ON a.id = w.assignee_id
`

func scanWorkOrderView(rows *sql.Rows, now time.Time) (WorkOrderView, error) {
	var (
		view       WorkOrderView
		id         uuid.UUID
		creatorID  uuid.UUID
		assigneeID uuid.NullUUID
		status     string
		tags       pq.StringArray
	)

	err := rows.Scan(
		&id,
		&view.Number,
		&view.Title,
		&view.Description,
		&view.Instructions,
		&view.Deadline,
		&tags,
		&status,
		&creatorID,
		&view.CreatorName,
		&assigneeID,
		&view.AssigneeName,
		&view.CreatedDate,
		&view.AssignedDate,
		&view.CompletedDate,
		&view.LastChanged,
		&view.Version,
	)
	if err != nil {
		return WorkOrderView{}, err
	}

	if view.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return WorkOrderView{}, err
	}
	if view.CreatorID, err = kernel.UUIDFromBytes(creatorID[:]); err != nil {
		return WorkOrderView{}, err
	}
	if assigneeID.Valid {
		aID, idErr := kernel.UUIDFromBytes(assigneeID.UUID[:])
		if idErr != nil {
			return WorkOrderView{}, idErr
		}
		view.AssigneeID = &aID
	}
	if view.Status, err = workorder.Parse(status); err != nil {
		return WorkOrderView{}, err
	}
	view.RoomTags = []string(tags)
	view.Overdue = view.Deadline != nil && view.Deadline.Before(now) && !view.Status.IsTerminal()

	return view, nil
}
