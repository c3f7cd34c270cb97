package employeerepo

import (
	"workorders/internal/core/domain/model/employee"
	"workorders/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

type EmployeeDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserName  string    `gorm:"size:100;not null;uniqueIndex"`
	FirstName string    `gorm:"size:100;not null"`
	LastName  string    `gorm:"size:100;not null"`
	Email     string    `gorm:"size:320;not null;default:''"`
}

func (EmployeeDTO) TableName() string {
	return "employees"
}

func fromDomain(e *employee.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:        e.ID().Bytes(),
		UserName:  e.UserName(),
		FirstName: e.FirstName(),
		LastName:  e.LastName(),
		Email:     e.Email(),
	}
}

func toDomain(dto EmployeeDTO) (*employee.Employee, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	return employee.RestoreEmployee(id, dto.UserName, dto.FirstName, dto.LastName, dto.Email)
}
