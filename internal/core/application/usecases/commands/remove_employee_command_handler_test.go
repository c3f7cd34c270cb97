package commands_test

import (
	"errors"
	"testing"

	"workorders/internal/core/application/usecases/commands"
	"workorders/internal/core/domain/model/kernel"
	"workorders/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewRemoveEmployeeCommand(t *testing.T) {
	id := kernel.NewUUID()
	cmd, err := commands.NewRemoveEmployeeCommand(id)
	require.NoError(t, err)
	assert.Equal(t, id, cmd.EmployeeID())

	_, err = commands.NewRemoveEmployeeCommand(kernel.UUID{})
	assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
}

func TestRemoveEmployeeCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	id := kernel.NewUUID()
	cmd, _ := commands.NewRemoveEmployeeCommand(id)

	repo := new(MockEmployeeRepository)
	uow := new(MockEmployeeUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("EmployeeRepository").Return(repo).Once(),
		repo.On("Delete", ctx, id).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockEmployeeUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewRemoveEmployeeCommandHandler(factory)
	err := h.Handle(ctx, cmd)
	require.NoError(t, err)
	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
	factory.AssertExpectations(t)
}

func TestRemoveEmployeeCommandHandler_Handle_NotFound(t *testing.T) {
	ctx := t.Context()
	id := kernel.NewUUID()
	cmd, _ := commands.NewRemoveEmployeeCommand(id)

	repo := new(MockEmployeeRepository)
	uow := new(MockEmployeeUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("EmployeeRepository").Return(repo).Once(),
		repo.On("Delete", ctx, id).Return(errs.NewObjectNotFoundError("employee", id)).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockEmployeeUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewRemoveEmployeeCommandHandler(factory)
	err := h.Handle(ctx, cmd)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	uow.AssertExpectations(t)
}

func TestRemoveEmployeeCommandHandler_Handle_Errors(t *testing.T) {
	ctx := t.Context()

	t.Run("not constructed", func(t *testing.T) {
		h := commands.NewRemoveEmployeeCommandHandler(new(MockEmployeeUoWFactory))
		err := h.Handle(ctx, commands.RemoveEmployeeCommand{})
		require.ErrorIs(t, err, commands.ErrRemoveEmployeeCommandIsNotConstructed)
	})

	t.Run("begin", func(t *testing.T) {
		cmd, _ := commands.NewRemoveEmployeeCommand(kernel.NewUUID())
		uow := new(MockEmployeeUoW)
		factory := new(MockEmployeeUoWFactory)
		mock.InOrder(
			factory.On("Create").Return(uow).Once(),
			uow.On("Begin", ctx).Return(errors.New("begin error")).Once(),
		)

		h := commands.NewRemoveEmployeeCommandHandler(factory)
		err := h.Handle(ctx, cmd)
		require.Error(t, err)
		uow.AssertExpectations(t)
	})
}
