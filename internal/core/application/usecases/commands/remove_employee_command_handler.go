package commands

import (
	"context"
)

type RemoveEmployeeCommandHandler struct {
	uowFactory EmployeeUoWFactory
}

func NewRemoveEmployeeCommandHandler(uowFactory EmployeeUoWFactory) RemoveEmployeeCommandHandler {
	return RemoveEmployeeCommandHandler{
		uowFactory: uowFactory,
	}
}

func (h *RemoveEmployeeCommandHandler) Handle(ctx context.Context, cmd RemoveEmployeeCommand) error {
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

	if err := uow.EmployeeRepository().Delete(ctx, cmd.EmployeeID()); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
