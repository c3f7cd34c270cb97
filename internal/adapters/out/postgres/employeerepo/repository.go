package employeerepo

import (
	"context"
	"errors"
	"fmt"

	"workorders/internal/adapters/out/postgres/pgerr"
	"workorders/internal/core/domain/model/employee"
	"workorders/internal/core/domain/model/kernel"
	"workorders/internal/core/ports"
	"workorders/internal/pkg/errs"

	"gorm.io/gorm"
)

type GormEmployeeRepository struct {
	db *gorm.DB
}

func NewGormEmployeeRepository(db *gorm.DB) *GormEmployeeRepository {
	return &GormEmployeeRepository{db: db}
}

func (r *GormEmployeeRepository) Add(ctx context.Context, e *employee.Employee) error {
	if err := e.Validate(); err != nil {
		return err
	}

	dto := fromDomain(e)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if pgerr.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ports.ErrUserNameTaken, dto.UserName)
		}
		return err
	}
	return nil
}

func (r *GormEmployeeRepository) Get(ctx context.Context, id kernel.UUID) (*employee.Employee, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto EmployeeDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("employee", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormEmployeeRepository) GetByUserName(ctx context.Context, userName string) (*employee.Employee, error) {
	var dto EmployeeDTO
	if err := r.db.WithContext(ctx).First(&dto, "lower(user_name) = lower(?)", userName).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("employee", userName)
		}
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormEmployeeRepository) Delete(ctx context.Context, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Delete(&EmployeeDTO{}, "id = ?", id.Bytes())
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("employee", id.String())
	}
	return nil
}

func (r *GormEmployeeRepository) List(ctx context.Context) ([]*employee.Employee, error) {
	var dtos []EmployeeDTO
	if err := r.db.WithContext(ctx).Order("last_name, first_name").Find(&dtos).Error; err != nil {
		return nil, err
	}

	employees := make([]*employee.Employee, 0, len(dtos))
	for _, dto := range dtos {
		e, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}

	return employees, nil
}
