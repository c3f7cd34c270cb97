package commands

import (
	"errors"

	"workorders/internal/core/domain/model/kernel"
	"workorders/internal/pkg/guard"
)

var ErrRemoveEmployeeCommandIsNotConstructed = errors.New(
	"RemoveEmployeeCommand must be created via NewRemoveEmployeeCommand constructor",
)

// RemoveEmployeeCommand takes a person off the roster. Their audit entries stay
// and keep showing the name archived at write time.
type RemoveEmployeeCommand struct { //nolint:recvcheck //using for validation
	employeeID kernel.UUID

	guard guard.ConstructorGuard
}

func NewRemoveEmployeeCommand(employeeID kernel.UUID) (RemoveEmployeeCommand, error) {
	if err := employeeID.Validate(); err != nil {
		return RemoveEmployeeCommand{}, err
	}

	return RemoveEmployeeCommand{
		employeeID: employeeID,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c RemoveEmployeeCommand) Validate() error {
	return c.guard.Validate(ErrRemoveEmployeeCommandIsNotConstructed)
}

func (c RemoveEmployeeCommand) EmployeeID() kernel.UUID {
	return c.employeeID
}
