package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"workorders/internal/core/domain/model/employee"
	"workorders/internal/core/domain/model/kernel"
	"workorders/internal/core/domain/model/workorder"
	"workorders/internal/core/domain/services"
	"workorders/internal/core/domain/statecommand"
	"workorders/internal/core/ports"
	"workorders/internal/pkg/errs"
)

const defaultMaxAttempts = 2

// HandlerOption customizes a StateCommandHandler.
type HandlerOption func(*StateCommandHandler)

// WithClock replaces the time source used for timestamps and audit dates.
func WithClock(now func() time.Time) HandlerOption {
	return func(h *StateCommandHandler) { h.now = now }
}

// WithNumberAssigner replaces the assigner used for first saves.
func WithNumberAssigner(assigner services.NumberAssigner) HandlerOption {
	return func(h *StateCommandHandler) { h.assigner = assigner }
}

// WithMaxAttempts bounds how often a unit of work is run when it loses a
// concurrent write. Values below one are ignored.
func WithMaxAttempts(n int) HandlerOption {
	return func(h *StateCommandHandler) {
		if n > 0 {
			h.maxAttempts = n
		}
	}
}

// StateCommandHandler is the only writer of work orders. The command it gets
// may have crossed the bus, so it trusts nothing but ids and intended edits:
// the actor and the work order are re-read inside the unit of work and the
// transition is checked against the stored state.
//
// Example:
//
//	handler := commands.NewStateCommandHandler(uowFactory, publisher, logger)
//	cmd, _ := statecommand.NewBegin(wo, assignee)
//	result, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    return err // not found or infrastructure
//	}
//	if !result.Succeeded() {
//	    // result.Rejection or result.Messages explain why
//	}
type StateCommandHandler struct {
	uowFactory  StateCommandUoWFactory
	publisher   ports.WorkOrderEventPublisher
	assigner    services.NumberAssigner
	now         func() time.Time
	maxAttempts int
	logger      *slog.Logger
}

// NewStateCommandHandler creates the handler. publisher may be nil, in which
// case events are dropped after commit.
func NewStateCommandHandler(
	uowFactory StateCommandUoWFactory,
	publisher ports.WorkOrderEventPublisher,
	logger *slog.Logger,
	opts ...HandlerOption,
) *StateCommandHandler {
	h := &StateCommandHandler{
		uowFactory:  uowFactory,
		publisher:   publisher,
		assigner:    services.NewNumberAssigner(),
		now:         func() time.Time { return time.Now().UTC() },
		maxAttempts: defaultMaxAttempts,
		logger:      logger.With("component", "StateCommandHandler"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle runs cmd in its own unit of work. Optimistic conflicts rerun the whole
// unit of work; the rerun sees the winner's state, so a command that was valid
// only before the conflict comes back as not valid instead of overwriting.
func (h *StateCommandHandler) Handle(ctx context.Context, cmd statecommand.Command) (StateCommandResult, error) {
	if err := cmd.Validate(); err != nil {
		return StateCommandResult{}, err
	}

	var err error
	for attempt := 1; attempt <= h.maxAttempts; attempt++ {
		var (
			result StateCommandResult
			events []workorder.StatusChanged
		)
		result, events, err = h.handleOnce(ctx, cmd)
		if err == nil {
			h.logResult(ctx, cmd, result)
			h.publish(ctx, events)
			return result, nil
		}
		if !errors.Is(err, ports.ErrConcurrentModification) {
			return StateCommandResult{}, err
		}

		h.logger.WarnContext(ctx, "state command lost a concurrent write",
			"command", cmd.Name(),
			"work_order_id", cmd.WorkOrderID().String(),
			"attempt", attempt,
			"error", err,
		)
	}

	return StateCommandResult{}, err
}

func (h *StateCommandHandler) handleOnce(
	ctx context.Context,
	cmd statecommand.Command,
) (StateCommandResult, []workorder.StatusChanged, error) {
	def := cmd.Definition()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return StateCommandResult{}, nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	employees := uow.EmployeeRepository()
	actor, err := employees.Get(ctx, cmd.ActorID())
	if err != nil {
		return StateCommandResult{}, nil, err
	}

	draftID := h.draftID(cmd, actor)
	current, err := h.resolveWorkOrder(ctx, uow, cmd, actor, draftID)
	if err != nil {
		return StateCommandResult{}, nil, err
	}

	if rejection := def.Check(current, actor.ID()); rejection != statecommand.RejectionNone {
		return notValid(current, def.PastVerb(), rejection), nil, nil
	}

	changed := current.Clone()
	if err = def.ApplyEdits(changed, cmd.Edits()); err != nil {
		return StateCommandResult{}, nil, err
	}
	if err = h.resolveAssignee(ctx, employees, current, changed); err != nil {
		return StateCommandResult{}, nil, err
	}
	if messages := def.FieldErrors(changed); len(messages) > 0 {
		return validationFailed(current, def.PastVerb(), messages), nil, nil
	}

	if def.Deletes() {
		if err = uow.WorkOrderRepository().Delete(ctx, current.ID()); err != nil {
			return StateCommandResult{}, nil, err
		}
		if err = uow.Commit(ctx); err != nil {
			return StateCommandResult{}, nil, err
		}
		return deleted(current, def.PastVerb()), nil, nil
	}

	at := h.now()
	begin := current.Status()
	if err = def.Execute(changed, at); err != nil {
		return StateCommandResult{}, nil, err
	}

	if err = h.persist(ctx, uow.WorkOrderRepository(), changed, draftID); err != nil {
		return StateCommandResult{}, nil, err
	}

	var entry *workorder.AuditEntry
	if !begin.Equal(changed.Status()) {
		entry, err = h.appendAuditEntry(ctx, uow.AuditEntryRepository(), changed, actor, begin, def.PresentVerb(), at)
		if err != nil {
			return StateCommandResult{}, nil, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return StateCommandResult{}, nil, err
	}

	return succeeded(changed, def.PastVerb(), entry), uow.PendingEvents(), nil
}

// draftID is the id a draft created by cmd will get. It is zero unless cmd
// creates drafts, names no work order and carries a correlation id.
func (h *StateCommandHandler) draftID(cmd statecommand.Command, actor *employee.Employee) kernel.UUID {
	if !cmd.WorkOrderID().IsZero() || !cmd.Definition().CreatesDraft() || cmd.CorrelationID() == "" {
		return kernel.UUID{}
	}
	return services.DraftIDFor(actor.ID(), cmd.CorrelationID())
}

// resolveWorkOrder re-reads the target under a row lock. A command for a work
// order that was never saved gets a fresh draft owned by the actor, but only if
// its kind creates drafts; anything else is checked against an identity-only
// reference, which has no status and is therefore never valid.
//
// With a draftID the row a previous delivery of the same command created is
// used instead, so the replay is checked against what it already did.
func (h *StateCommandHandler) resolveWorkOrder(
	ctx context.Context,
	uow StateCommandUoW,
	cmd statecommand.Command,
	actor *employee.Employee,
	draftID kernel.UUID,
) (*workorder.WorkOrder, error) {
	if id := cmd.WorkOrderID(); !id.IsZero() {
		return uow.WorkOrderRepository().GetForUpdate(ctx, id)
	}

	if !cmd.Definition().CreatesDraft() {
		return workorder.Reference(cmd.WorkOrderID()), nil
	}
	if !draftID.IsZero() {
		stored, err := uow.WorkOrderRepository().GetForUpdate(ctx, draftID)
		if err == nil {
			return stored, nil
		}
		if !errors.Is(err, errs.ErrObjectNotFound) {
			return nil, err
		}
	}
	return workorder.NewDraft(actor.ID(), "", "")
}

// resolveAssignee makes sure a newly named assignee exists.
func (h *StateCommandHandler) resolveAssignee(
	ctx context.Context,
	employees ports.EmployeeRepository,
	current, changed *workorder.WorkOrder,
) error {
	next := changed.AssigneeID()
	if next == nil {
		return nil
	}
	if prev := current.AssigneeID(); prev != nil && prev.IsEqual(*next) {
		return nil
	}

	_, err := employees.Get(ctx, *next)
	return err
}

func (h *StateCommandHandler) persist(
	ctx context.Context,
	repo ports.WorkOrderRepository,
	wo *workorder.WorkOrder,
	draftID kernel.UUID,
) error {
	if wo.IsPersisted() {
		return repo.Update(ctx, wo)
	}

	var err error
	if draftID.IsZero() {
		err = h.assigner.Assign(wo)
	} else {
		err = h.assigner.AssignID(wo, draftID)
	}
	if err != nil {
		return err
	}
	return repo.Add(ctx, wo)
}

func (h *StateCommandHandler) appendAuditEntry(
	ctx context.Context,
	repo ports.AuditEntryRepository,
	wo *workorder.WorkOrder,
	actor *employee.Employee,
	begin workorder.Status,
	verb string,
	at time.Time,
) (*workorder.AuditEntry, error) {
	sequence, err := repo.NextSequence(ctx, wo.ID())
	if err != nil {
		return nil, err
	}

	entry, err := workorder.NewAuditEntry(wo.ID(), sequence, actor.ID(), actor.DisplayName(), at, begin, wo.Status(), verb)
	if err != nil {
		return nil, err
	}

	if err = repo.Append(ctx, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (h *StateCommandHandler) publish(ctx context.Context, events []workorder.StatusChanged) {
	if h.publisher == nil || len(events) == 0 {
		return
	}
	if err := h.publisher.Publish(ctx, events...); err != nil {
		h.logger.ErrorContext(ctx, "failed to publish work order events", "count", len(events), "error", err)
	}
}

func (h *StateCommandHandler) logResult(ctx context.Context, cmd statecommand.Command, result StateCommandResult) {
	attrs := []any{
		"command", cmd.Name(),
		"actor_id", cmd.ActorID().String(),
		"outcome", result.Outcome.String(),
	}
	if cmd.CorrelationID() != "" {
		attrs = append(attrs, "correlation_id", cmd.CorrelationID())
	}
	if result.WorkOrder != nil && result.WorkOrder.IsPersisted() {
		attrs = append(attrs, "work_order", result.WorkOrder.Number())
	}

	switch result.Outcome {
	case OutcomeNotValid:
		h.logger.InfoContext(ctx, "state command not valid", append(attrs, "reason", result.Rejection.String())...)
	case OutcomeValidationFailed:
		h.logger.InfoContext(ctx, "state command failed validation", append(attrs, "messages", result.Messages)...)
	default:
		h.logger.DebugContext(ctx, "state command executed", attrs...)
	}
}
