package ports

import (
	"context"
	"errors"

	"workorders/internal/core/domain/model/employee"
	"workorders/internal/core/domain/model/kernel"
)

// ErrUserNameTaken is returned by Add when another employee already uses the user name.
var ErrUserNameTaken = errors.New("user name is already taken")

// EmployeeRepository defines the persistence contract for the employee roster.
// The state command handler only reads from it.
type EmployeeRepository interface {
	Add(ctx context.Context, e *employee.Employee) error
	Get(ctx context.Context, id kernel.UUID) (*employee.Employee, error)
	GetByUserName(ctx context.Context, userName string) (*employee.Employee, error)

	// Delete removes an employee. Audit entries keep the archived display name.
	Delete(ctx context.Context, id kernel.UUID) error

	List(ctx context.Context) ([]*employee.Employee, error)
}
