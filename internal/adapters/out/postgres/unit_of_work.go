package postgres

import (
	"context"

	"workorders/internal/adapters/out/postgres/auditrepo"
	"workorders/internal/adapters/out/postgres/employeerepo"
	"workorders/internal/adapters/out/postgres/workorderrepo"
	"workorders/internal/core/domain/model/kernel"
	"workorders/internal/core/domain/model/workorder"
	"workorders/internal/core/ports"

	"gorm.io/gorm"
)

type trackedAggregate struct {
	ID        kernel.UUID
	Aggregate any
}

type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:                f.db,
		trackedAggregates: make([]trackedAggregate, 0),
	}
}

// GormUnitOfWork tracks every work order and audit entry written through its
// repositories. Audit entries become StatusChanged events once committed.
type GormUnitOfWork struct {
	db                *gorm.DB
	tx                *gorm.DB
	trackedAggregates []trackedAggregate
}

func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return err
	}

	uow.trackedAggregates = uow.trackedAggregates[:0]
	return nil
}

func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	return err
}

func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return err
}

func (uow *GormUnitOfWork) WorkOrderRepository() ports.WorkOrderRepository {
	return workorderrepo.NewGormWorkOrderRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) EmployeeRepository() ports.EmployeeRepository {
	return employeerepo.NewGormEmployeeRepository(uow.conn())
}

func (uow *GormUnitOfWork) AuditEntryRepository() ports.AuditEntryRepository {
	return auditrepo.NewGormAuditEntryRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate any) {
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{
		ID:        id,
		Aggregate: aggregate,
	})
}

// PendingEvents pairs each tracked audit entry with the latest tracked state of
// its work order.
func (uow *GormUnitOfWork) PendingEvents() []workorder.StatusChanged {
	latest := make(map[kernel.UUID]*workorder.WorkOrder)
	for _, tracked := range uow.trackedAggregates {
		if wo, ok := tracked.Aggregate.(*workorder.WorkOrder); ok {
			latest[tracked.ID] = wo
		}
	}

	var events []workorder.StatusChanged
	for _, tracked := range uow.trackedAggregates {
		entry, ok := tracked.Aggregate.(workorder.AuditEntry)
		if !ok {
			continue
		}
		wo, found := latest[tracked.ID]
		if !found {
			wo = workorder.Reference(tracked.ID)
		}
		events = append(events, workorder.NewStatusChanged(wo, entry))
	}
	return events
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}
