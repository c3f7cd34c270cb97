package auditrepo

import (
	"time"

	"workorders/internal/core/domain/model/kernel"
	"workorders/internal/core/domain/model/workorder"

	"github.com/google/uuid"
)

// AuditEntryDTO has no foreign key to employees: entries outlive the employees
// they name, which is why the display name is archived with them.
type AuditEntryDTO struct {
	WorkOrderID  uuid.UUID `gorm:"type:uuid;primaryKey;autoIncrement:false"`
	Sequence     int       `gorm:"primaryKey;autoIncrement:false"`
	EmployeeID   uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeName string    `gorm:"size:201;not null"`
	Date         time.Time `gorm:"not null"`
	BeginStatus  string    `gorm:"size:3;not null"`
	EndStatus    string    `gorm:"size:3;not null"`
	ActionType   string    `gorm:"size:50;not null"`
	ActionDetail string    `gorm:"size:50;not null"`
}

func (AuditEntryDTO) TableName() string {
	return "audit_entries"
}

func fromDomain(entry workorder.AuditEntry) AuditEntryDTO {
	return AuditEntryDTO{
		WorkOrderID:  entry.WorkOrderID().Bytes(),
		Sequence:     entry.Sequence(),
		EmployeeID:   entry.EmployeeID().Bytes(),
		EmployeeName: entry.EmployeeName(),
		Date:         entry.Date(),
		BeginStatus:  entry.BeginStatus().Key(),
		EndStatus:    entry.EndStatus().Key(),
		ActionType:   entry.ActionType(),
		ActionDetail: entry.ActionDetail(),
	}
}

func toDomain(dto AuditEntryDTO) (workorder.AuditEntry, error) {
	workOrderID, err := kernel.UUIDFromBytes(dto.WorkOrderID[:])
	if err != nil {
		return workorder.AuditEntry{}, err
	}

	employeeID, err := kernel.UUIDFromBytes(dto.EmployeeID[:])
	if err != nil {
		return workorder.AuditEntry{}, err
	}

	begin, err := workorder.Parse(dto.BeginStatus)
	if err != nil {
		return workorder.AuditEntry{}, err
	}

	end, err := workorder.Parse(dto.EndStatus)
	if err != nil {
		return workorder.AuditEntry{}, err
	}

	return workorder.RestoreAuditEntry(workOrderID, dto.Sequence, employeeID, dto.EmployeeName,
		dto.Date, begin, end, dto.ActionType, dto.ActionDetail)
}
