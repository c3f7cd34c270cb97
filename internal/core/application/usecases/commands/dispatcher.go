package commands

import (
	"context"

	"workorders/internal/core/domain/statecommand"
)

// StateCommandDispatcher delivers a command to its handler and returns the
// result. Local and remote implementations are interchangeable: a caller cannot
// tell from the result which one ran the command.
type StateCommandDispatcher interface {
	Dispatch(ctx context.Context, cmd statecommand.Command) (StateCommandResult, error)
}

type stateCommandHandler interface {
	Handle(ctx context.Context, cmd statecommand.Command) (StateCommandResult, error)
}

// LocalDispatcher runs commands in-process.
type LocalDispatcher struct {
	handler stateCommandHandler
}

func NewLocalDispatcher(handler stateCommandHandler) *LocalDispatcher {
	return &LocalDispatcher{handler: handler}
}

func (d *LocalDispatcher) Dispatch(ctx context.Context, cmd statecommand.Command) (StateCommandResult, error) {
	return d.handler.Handle(ctx, cmd)
}

// DispatcherFunc adapts a function to StateCommandDispatcher.
type DispatcherFunc func(ctx context.Context, cmd statecommand.Command) (StateCommandResult, error)

func (f DispatcherFunc) Dispatch(ctx context.Context, cmd statecommand.Command) (StateCommandResult, error) {
	return f(ctx, cmd)
}
