package auditrepo

import (
	"context"
	"fmt"

	"workorders/internal/adapters/out/postgres/pgerr"
	"workorders/internal/core/domain/model/kernel"
	"workorders/internal/core/domain/model/workorder"
	"workorders/internal/core/ports"

	"gorm.io/gorm"
)

type GormAuditEntryRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormAuditEntryRepository(db *gorm.DB, tracker aggregateTracker) *GormAuditEntryRepository {
	return &GormAuditEntryRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormAuditEntryRepository) Append(ctx context.Context, entry workorder.AuditEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	dto := fromDomain(entry)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if pgerr.IsUniqueViolation(err) {
			return fmt.Errorf("%w: audit sequence %d already written", ports.ErrConcurrentModification, dto.Sequence)
		}
		return err
	}

	r.tracker.TrackAggregate(entry.WorkOrderID(), entry)
	return nil
}

func (r *GormAuditEntryRepository) NextSequence(ctx context.Context, workOrderID kernel.UUID) (int, error) {
	if err := workOrderID.Validate(); err != nil {
		return 0, err
	}

	var last int
	err := r.db.WithContext(ctx).
		Model(&AuditEntryDTO{}).
		Where("work_order_id = ?", workOrderID.Bytes()).
		Select("COALESCE(MAX(sequence), 0)").
		Scan(&last).Error
	if err != nil {
		return 0, err
	}

	return last + 1, nil
}

func (r *GormAuditEntryRepository) ListByWorkOrder(ctx context.Context, workOrderID kernel.UUID) ([]workorder.AuditEntry, error) {
	if err := workOrderID.Validate(); err != nil {
		return nil, err
	}

	var dtos []AuditEntryDTO
	if err := r.db.WithContext(ctx).Order("sequence").Find(&dtos, "work_order_id = ?", workOrderID.Bytes()).Error; err != nil {
		return nil, err
	}

	entries := make([]workorder.AuditEntry, 0, len(dtos))
	for _, dto := range dtos {
		entry, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
