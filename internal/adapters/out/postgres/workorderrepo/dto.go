package workorderrepo

import (
	"time"

	"workorders/internal/core/domain/model/kernel"
	"workorders/internal/core/domain/model/workorder"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type WorkOrderDTO struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Number        string         `gorm:"size:20;not null;uniqueIndex"`
	Title         string         `gorm:"size:300;not null"`
	Description   string         `gorm:"size:4000;not null"`
	Instructions  string         `gorm:"size:4000;not null;default:''"`
	Deadline      *time.Time     `gorm:"index"`
	RoomTags      pq.StringArray `gorm:"type:text[]"`
	Status        string         `gorm:"size:3;not null;index"`
	CreatorID     uuid.UUID      `gorm:"type:uuid;not null;index"`
	AssigneeID    *uuid.UUID     `gorm:"type:uuid;index"`
	CreatedDate   *time.Time
	AssignedDate  *time.Time
	CompletedDate *time.Time
	Version       int            `gorm:"not null"`
}

func (WorkOrderDTO) TableName() string {
	return "work_orders"
}

func fromDomain(wo *workorder.WorkOrder) WorkOrderDTO {
	var assigneeID *uuid.UUID
	if id := wo.AssigneeID(); id != nil {
		raw := id.Bytes()
		assigneeID = &raw
	}

	tags := wo.RoomTags()
	if tags == nil {
		tags = []string{}
	}

	return WorkOrderDTO{
		ID:            wo.ID().Bytes(),
		Number:        wo.Number(),
		Title:         wo.Title(),
		Description:   wo.Description(),
		Instructions:  wo.Instructions(),
		Deadline:      wo.Deadline(),
		RoomTags:      pq.StringArray(tags),
		Status:        wo.Status().Key(),
		CreatorID:     wo.CreatorID().Bytes(),
		AssigneeID:    assigneeID,
		CreatedDate:   wo.CreatedDate(),
		AssignedDate:  wo.AssignedDate(),
		CompletedDate: wo.CompletedDate(),
		Version:       wo.Version(),
	}
}

func toDomain(dto WorkOrderDTO) (*workorder.WorkOrder, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	creatorID, err := kernel.UUIDFromBytes(dto.CreatorID[:])
	if err != nil {
		return nil, err
	}

	var assigneeID *kernel.UUID
	if dto.AssigneeID != nil {
		aID, assigneeErr := kernel.UUIDFromBytes((*dto.AssigneeID)[:])
		if assigneeErr != nil {
			return nil, assigneeErr
		}

		assigneeID = &aID
	}

	status, err := workorder.Parse(dto.Status)
	if err != nil {
		return nil, err
	}

	return workorder.Restore(workorder.Snapshot{
		ID:            id,
		Number:        dto.Number,
		Title:         dto.Title,
		Description:   dto.Description,
		Instructions:  dto.Instructions,
		Deadline:      dto.Deadline,
		RoomTags:      dto.RoomTags,
		Status:        status,
		CreatorID:     creatorID,
		AssigneeID:    assigneeID,
		CreatedDate:   dto.CreatedDate,
		AssignedDate:  dto.AssignedDate,
		CompletedDate: dto.CompletedDate,
		Version:       dto.Version,
	})
}
