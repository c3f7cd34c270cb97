package ports

import (
	"context"

	"workorders/internal/core/domain/model/workorder"
)

// WorkOrderEventPublisher delivers domain events after the unit of work that
// raised them has committed. Delivery is best effort.
type WorkOrderEventPublisher interface {
	Publish(ctx context.Context, events ...workorder.StatusChanged) error
}
