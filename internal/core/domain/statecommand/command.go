// Package statecommand holds the transition table of the work order lifecycle
// and the Command value that names one transition for one work order.
//
// Each Kind maps to a Definition: begin and end status, the actor allowed to
// perform it, the timestamps it stamps and the fields it may write and must
// validate. Nothing in this package touches storage; the handler in the
// application layer resolves references, runs Check and persists the result.
//
// A Command embeds copies of the work order and the acting employee. After a
// trip across the message bus those copies are detached: only their ids and
// the caller's intended edits are trusted.
package statecommand

import (
	"errors"
	"slices"
	"time"

	"workorders/internal/core/domain/model/employee"
	"workorders/internal/core/domain/model/kernel"
	"workorders/internal/core/domain/model/workorder"
	"workorders/internal/pkg/guard"
)

var (
	// ErrCommandIsNotConstructed is returned for Command values built without New.
	ErrCommandIsNotConstructed = errors.New("Command must be created via New constructor")

	// ErrUnknownCommand is returned for kinds or names outside the transition table.
	ErrUnknownCommand = errors.New("unknown state command")

	// ErrDeleteIsNotATransition is returned when Execute is called for Delete.
	ErrDeleteIsNotATransition = errors.New("delete removes the work order instead of transitioning it")
)

// Edits carries the values a caller intends to write. Nil means "leave as is".
// A non-nil empty RoomTags clears the tags; ClearDeadline removes the deadline.
type Edits struct {
	Title         *string
	Description   *string
	Instructions  *string
	Deadline      *time.Time
	ClearDeadline bool
	RoomTags      []string
	AssigneeID    *kernel.UUID
}

// EditsFrom captures every editable field of wo, for callers that changed a
// local copy and want all of it written.
func EditsFrom(wo *workorder.WorkOrder) Edits {
	title := wo.Title()
	description := wo.Description()
	instructions := wo.Instructions()
	tags := wo.RoomTags()
	if tags == nil {
		tags = []string{}
	}
	return Edits{
		Title:         &title,
		Description:   &description,
		Instructions:  &instructions,
		Deadline:      wo.Deadline(),
		ClearDeadline: wo.Deadline() == nil,
		RoomTags:      tags,
		AssigneeID:    wo.AssigneeID(),
	}
}

func (e Edits) clone() Edits {
	return Edits{
		Title:         clonePtr(e.Title),
		Description:   clonePtr(e.Description),
		Instructions:  clonePtr(e.Instructions),
		Deadline:      clonePtr(e.Deadline),
		ClearDeadline: e.ClearDeadline,
		RoomTags:      slices.Clone(e.RoomTags),
		AssigneeID:    clonePtr(e.AssigneeID),
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Option customizes a Command built by New.
type Option func(*Command)

// WithEdits attaches the values the command should write.
func WithEdits(edits Edits) Option {
	return func(c *Command) { c.edits = edits.clone() }
}

// WithCorrelationID tags the command so replies and logs can be matched to a request.
func WithCorrelationID(id string) Option {
	return func(c *Command) { c.correlationID = id }
}

// WithAssignee is shorthand for an Edits with only AssigneeID set, merged into existing edits.
func WithAssignee(assigneeID kernel.UUID) Option {
	return func(c *Command) { c.edits.AssigneeID = &assigneeID }
}

// Command is an immutable request to run one transition on one work order.
//
// Example:
//
//	cmd, err := statecommand.New(statecommand.KindBegin, wo, assignee)
//	if err != nil {
//	    return err
//	}
//	if !cmd.IsValid() {
//	    // hide the button
//	}
//	result, err := dispatcher.Dispatch(ctx, cmd)
type Command struct { //nolint:recvcheck // value receivers keep the command immutable
	def           Definition
	workOrder     *workorder.WorkOrder
	actor         *employee.Employee
	edits         Edits
	correlationID string

	guard guard.ConstructorGuard
}

// New builds a command of the given kind. The work order and actor are copied,
// so later changes by the caller do not leak into the command.
func New(kind Kind, wo *workorder.WorkOrder, actor *employee.Employee, opts ...Option) (Command, error) {
	def, err := Lookup(kind)
	if err != nil {
		return Command{}, err
	}
	if err = errors.Join(wo.Validate(), actor.Validate()); err != nil {
		return Command{}, err
	}
	if err = actor.ID().Validate(); err != nil {
		return Command{}, err
	}

	c := Command{
		def:       def,
		workOrder: wo.Clone(),
		actor:     actor.Clone(),
		guard:     guard.NewConstructorGuard(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c, nil
}

// NewByName is New with the kind resolved from its registered name.
func NewByName(name string, wo *workorder.WorkOrder, actor *employee.Employee, opts ...Option) (Command, error) {
	kind, err := KindByName(name)
	if err != nil {
		return Command{}, err
	}
	return New(kind, wo, actor, opts...)
}

// Validate ensures the command was created through New.
func (c Command) Validate() error {
	return c.guard.Validate(ErrCommandIsNotConstructed)
}

// Definition returns the transition table row of the command.
func (c Command) Definition() Definition { return c.def }

// Kind returns the command kind.
func (c Command) Kind() Kind { return c.def.kind }

// Name returns the registered name, for example "Re-Open".
func (c Command) Name() string { return c.def.name }

// PresentVerb returns the verb written to the audit ledger.
func (c Command) PresentVerb() string { return c.def.presentVerb }

// PastVerb returns the verb reported on success.
func (c Command) PastVerb() string { return c.def.pastVerb }

// WorkOrder returns a copy of the embedded work order.
func (c Command) WorkOrder() *workorder.WorkOrder { return c.workOrder.Clone() }

// WorkOrderID returns the id of the target work order, zero for a new draft.
func (c Command) WorkOrderID() kernel.UUID { return c.workOrder.ID() }

// Actor returns a copy of the acting employee.
func (c Command) Actor() *employee.Employee { return c.actor.Clone() }

// ActorID returns the id of the acting employee.
func (c Command) ActorID() kernel.UUID { return c.actor.ID() }

// Edits returns a copy of the intended field values.
func (c Command) Edits() Edits { return c.edits.clone() }

// CorrelationID returns the correlation id, possibly empty.
func (c Command) CorrelationID() string { return c.correlationID }

// BeginStatus is the status the command expects, computed from the embedded copy.
func (c Command) BeginStatus() workorder.Status {
	return c.def.BeginStatus(c.workOrder.Status())
}

// EndStatus is the status the command would produce from the embedded copy.
func (c Command) EndStatus() workorder.Status {
	return c.def.EndStatus(c.workOrder.Status())
}

// IsValid is the pure validity predicate over the embedded copy: the current
// status equals the begin status and the actor is authorized. UIs and the bus
// use it to decide what to offer; the handler re-checks against the stored
// aggregate before executing.
func (c Command) IsValid() bool {
	return c.Validate() == nil && c.def.Check(c.workOrder, c.actor.ID()) == RejectionNone
}

// WithCorrelationID returns a copy of the command carrying id.
func (c Command) WithCorrelationID(id string) Command {
	c.correlationID = id
	return c
}

// NewSave builds a Save command.
func NewSave(wo *workorder.WorkOrder, actor *employee.Employee, opts ...Option) (Command, error) {
	return New(KindSave, wo, actor, opts...)
}

// NewAssign builds an Assign command for assigneeID.
func NewAssign(wo *workorder.WorkOrder, actor *employee.Employee, assigneeID kernel.UUID, opts ...Option) (Command, error) {
	return New(KindAssign, wo, actor, append(opts, WithAssignee(assigneeID))...)
}

// NewBegin builds a Begin command.
func NewBegin(wo *workorder.WorkOrder, actor *employee.Employee, opts ...Option) (Command, error) {
	return New(KindBegin, wo, actor, opts...)
}

// NewComplete builds a Complete command.
func NewComplete(wo *workorder.WorkOrder, actor *employee.Employee, opts ...Option) (Command, error) {
	return New(KindComplete, wo, actor, opts...)
}

// NewShelve builds a Shelve command.
func NewShelve(wo *workorder.WorkOrder, actor *employee.Employee, opts ...Option) (Command, error) {
	return New(KindShelve, wo, actor, opts...)
}

// NewCancel builds a Cancel command.
func NewCancel(wo *workorder.WorkOrder, actor *employee.Employee, opts ...Option) (Command, error) {
	return New(KindCancel, wo, actor, opts...)
}

// NewReopen builds a Re-Open command.
func NewReopen(wo *workorder.WorkOrder, actor *employee.Employee, opts ...Option) (Command, error) {
	return New(KindReopen, wo, actor, opts...)
}

// NewArchive builds an Archive command.
func NewArchive(wo *workorder.WorkOrder, actor *employee.Employee, opts ...Option) (Command, error) {
	return New(KindArchive, wo, actor, opts...)
}

// NewDelete builds a Delete command.
func NewDelete(wo *workorder.WorkOrder, actor *employee.Employee, opts ...Option) (Command, error) {
	return New(KindDelete, wo, actor, opts...)
}

// NewUpdateDescription builds an UpdateDescription command writing description and instructions.
func NewUpdateDescription(wo *workorder.WorkOrder, actor *employee.Employee, description, instructions string, opts ...Option) (Command, error) {
	edits := WithEdits(Edits{Description: &description, Instructions: &instructions})
	return New(KindUpdateDescription, wo, actor, append([]Option{edits}, opts...)...)
}
