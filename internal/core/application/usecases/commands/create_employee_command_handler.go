package commands

import (
	"context"

	"workorders/internal/core/domain/model/employee"
)

// CreateEmployeeCommandHandler persists new roster entries.
type CreateEmployeeCommandHandler struct {
	uowFactory EmployeeUoWFactory
}

func NewCreateEmployeeCommandHandler(uowFactory EmployeeUoWFactory) CreateEmployeeCommandHandler {
	return CreateEmployeeCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle creates the employee inside a transaction. A taken user name is
// reported by the repository.
func (h *CreateEmployeeCommandHandler) Handle(ctx context.Context, cmd CreateEmployeeCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	e, err := employee.NewEmployee(cmd.EmployeeID(), cmd.UserName(), cmd.FirstName(), cmd.LastName(), cmd.Email())
	if err != nil {
		return err
	}

	if err = uow.EmployeeRepository().Add(ctx, e); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
