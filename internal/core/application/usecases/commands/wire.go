package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"workorders/internal/core/domain/model/employee"
	"workorders/internal/core/domain/model/kernel"
	"workorders/internal/core/domain/model/workorder"
	"workorders/internal/core/domain/statecommand"
	"workorders/internal/pkg/errs"
)

// Error kinds carried by a StateCommandReply.
const (
	ErrorKindNotFound       = "not_found"
	ErrorKindInvalidCommand = "invalid_command"
	ErrorKindInternal       = "internal"
)

// ErrRemoteFailure is wrapped by errors decoded from a reply that are neither
// not found nor invalid command.
var ErrRemoteFailure = errors.New("remote command handler failed")

// ErrInvalidCommand is wrapped by errors about malformed command messages.
var ErrInvalidCommand = errors.New("invalid state command message")

// WorkOrderPayload is the wire form of a work order snapshot.
type WorkOrderPayload struct {
	ID            kernel.UUID  `json:"id"`
	Number        string       `json:"number,omitempty"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Instructions  string       `json:"instructions,omitempty"`
	Deadline      *time.Time   `json:"deadline,omitempty"`
	RoomTags      []string     `json:"roomTags,omitempty"`
	Status        string       `json:"status"`
	CreatorID     kernel.UUID  `json:"creatorId"`
	AssigneeID    *kernel.UUID `json:"assigneeId,omitempty"`
	CreatedDate   *time.Time   `json:"createdDate,omitempty"`
	AssignedDate  *time.Time   `json:"assignedDate,omitempty"`
	CompletedDate *time.Time   `json:"completedDate,omitempty"`
	Version       int          `json:"version"`
}

// EmployeePayload is the wire form of an employee.
type EmployeePayload struct {
	ID        kernel.UUID `json:"id"`
	UserName  string      `json:"userName,omitempty"`
	FirstName string      `json:"firstName,omitempty"`
	LastName  string      `json:"lastName,omitempty"`
	Email     string      `json:"email,omitempty"`
}

// EditsPayload is the wire form of statecommand.Edits. RoomTags is a pointer
// so that an empty list, which clears the tags, survives encoding.
type EditsPayload struct {
	Title         *string      `json:"title,omitempty"`
	Description   *string      `json:"description,omitempty"`
	Instructions  *string      `json:"instructions,omitempty"`
	Deadline      *time.Time   `json:"deadline,omitempty"`
	ClearDeadline bool         `json:"clearDeadline,omitempty"`
	RoomTags      *[]string    `json:"roomTags,omitempty"`
	AssigneeID    *kernel.UUID `json:"assigneeId,omitempty"`
}

// AuditEntryPayload is the wire form of an audit entry.
type AuditEntryPayload struct {
	WorkOrderID  kernel.UUID `json:"workOrderId"`
	Sequence     int         `json:"sequence"`
	EmployeeID   kernel.UUID `json:"employeeId"`
	EmployeeName string      `json:"employeeName"`
	Date         time.Time   `json:"date"`
	BeginStatus  string      `json:"beginStatus"`
	EndStatus    string      `json:"endStatus"`
	ActionType   string      `json:"actionType"`
	ActionDetail string      `json:"actionDetail"`
}

// StateCommandMessage is a command on its way to a remote handler.
type StateCommandMessage struct {
	CorrelationID string           `json:"correlationId"`
	ReplyTo       string           `json:"replyTo,omitempty"`
	Command       string           `json:"command"`
	WorkOrder     WorkOrderPayload `json:"workOrder"`
	Actor         EmployeePayload  `json:"actor"`
	Edits         EditsPayload     `json:"edits"`
	SentAt        time.Time        `json:"sentAt"`
}

// ReplyError describes a failure that was returned as an error, not as an outcome.
type ReplyError struct {
	Kind     string `json:"kind"`
	Message  string `json:"message"`
	Resource string `json:"resource,omitempty"`
	ID       string `json:"id,omitempty"`
}

// StateCommandReply carries either a result or an error back to the sender.
type StateCommandReply struct {
	CorrelationID string             `json:"correlationId"`
	Outcome       string             `json:"outcome,omitempty"`
	Rejection     string             `json:"rejection,omitempty"`
	Verb          string             `json:"verb,omitempty"`
	Messages      []string           `json:"messages,omitempty"`
	Deleted       bool               `json:"deleted,omitempty"`
	WorkOrder     *WorkOrderPayload  `json:"workOrder,omitempty"`
	AuditEntry    *AuditEntryPayload `json:"auditEntry,omitempty"`
	Error         *ReplyError        `json:"error,omitempty"`
}

// EncodeStateCommand serializes cmd. The work order and actor travel as full
// snapshots, but the receiver treats them as detached copies.
func EncodeStateCommand(cmd statecommand.Command, replyTo string, sentAt time.Time) ([]byte, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	msg := StateCommandMessage{
		CorrelationID: cmd.CorrelationID(),
		ReplyTo:       replyTo,
		Command:       cmd.Name(),
		WorkOrder:     workOrderToPayload(cmd.WorkOrder()),
		Actor:         employeeToPayload(cmd.Actor()),
		Edits:         editsToPayload(cmd.Edits()),
		SentAt:        sentAt,
	}
	return json.Marshal(msg)
}

// DecodeStateCommand parses a message produced by EncodeStateCommand and
// rebuilds the command.
func DecodeStateCommand(data []byte) (statecommand.Command, StateCommandMessage, error) {
	var msg StateCommandMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return statecommand.Command{}, msg, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}

	cmd, err := msg.ToCommand()
	if err != nil {
		return statecommand.Command{}, msg, err
	}
	return cmd, msg, nil
}

// ToCommand rebuilds the command described by the message.
func (m StateCommandMessage) ToCommand() (statecommand.Command, error) {
	wo, err := workOrderFromPayload(m.WorkOrder)
	if err != nil {
		return statecommand.Command{}, fmt.Errorf("%w: work order: %w", ErrInvalidCommand, err)
	}

	actor, err := employeeFromPayload(m.Actor)
	if err != nil {
		return statecommand.Command{}, fmt.Errorf("%w: actor: %w", ErrInvalidCommand, err)
	}

	cmd, err := statecommand.NewByName(m.Command, wo, actor,
		statecommand.WithEdits(editsFromPayload(m.Edits)),
		statecommand.WithCorrelationID(m.CorrelationID),
	)
	if err != nil {
		return statecommand.Command{}, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}
	return cmd, nil
}

// NewResultReply builds the reply for a handled command.
func NewResultReply(correlationID string, result StateCommandResult) StateCommandReply {
	reply := StateCommandReply{
		CorrelationID: correlationID,
		Outcome:       result.Outcome.String(),
		Verb:          result.Verb,
		Messages:      result.Messages,
		Deleted:       result.Deleted,
	}
	if result.Rejection != statecommand.RejectionNone {
		reply.Rejection = result.Rejection.String()
	}
	if result.WorkOrder != nil {
		p := workOrderToPayload(result.WorkOrder)
		reply.WorkOrder = &p
	}
	if result.AuditEntry != nil {
		p := auditEntryToPayload(*result.AuditEntry)
		reply.AuditEntry = &p
	}
	return reply
}

// NewErrorReply builds the reply for a command that failed with err.
func NewErrorReply(correlationID string, err error) StateCommandReply {
	replyErr := &ReplyError{Kind: ErrorKindInternal, Message: err.Error()}

	var notFound *errs.ObjectNotFoundError
	switch {
	case errors.As(err, &notFound):
		replyErr.Kind = ErrorKindNotFound
		replyErr.Resource = notFound.ParamName
		replyErr.ID = fmt.Sprint(notFound.ID)
	case errors.Is(err, ErrInvalidCommand),
		errors.Is(err, statecommand.ErrUnknownCommand),
		errors.Is(err, statecommand.ErrCommandIsNotConstructed):
		replyErr.Kind = ErrorKindInvalidCommand
	}

	return StateCommandReply{CorrelationID: correlationID, Error: replyErr}
}

// Result turns the reply back into what the local handler would have
// returned. Not found errors come back as *errs.ObjectNotFoundError.
func (r StateCommandReply) Result() (StateCommandResult, error) {
	if r.Error != nil {
		switch r.Error.Kind {
		case ErrorKindNotFound:
			return StateCommandResult{}, errs.NewObjectNotFoundError(r.Error.Resource, r.Error.ID)
		case ErrorKindInvalidCommand:
			return StateCommandResult{}, fmt.Errorf("%w: %s", ErrInvalidCommand, r.Error.Message)
		default:
			return StateCommandResult{}, fmt.Errorf("%w: %s", ErrRemoteFailure, r.Error.Message)
		}
	}

	outcome, err := ParseOutcome(r.Outcome)
	if err != nil {
		return StateCommandResult{}, fmt.Errorf("%w: %w", ErrRemoteFailure, err)
	}

	result := StateCommandResult{
		Outcome:   outcome,
		Rejection: statecommand.ParseRejection(r.Rejection),
		Verb:      r.Verb,
		Messages:  r.Messages,
		Deleted:   r.Deleted,
	}
	if r.WorkOrder != nil {
		if result.WorkOrder, err = workOrderFromPayload(*r.WorkOrder); err != nil {
			return StateCommandResult{}, fmt.Errorf("%w: %w", ErrRemoteFailure, err)
		}
	}
	if r.AuditEntry != nil {
		entry, entryErr := auditEntryFromPayload(*r.AuditEntry)
		if entryErr != nil {
			return StateCommandResult{}, fmt.Errorf("%w: %w", ErrRemoteFailure, entryErr)
		}
		result.AuditEntry = &entry
	}
	return result, nil
}

func workOrderToPayload(wo *workorder.WorkOrder) WorkOrderPayload {
	s := wo.Snapshot()
	return WorkOrderPayload{
		ID:            s.ID,
		Number:        s.Number,
		Title:         s.Title,
		Description:   s.Description,
		Instructions:  s.Instructions,
		Deadline:      s.Deadline,
		RoomTags:      s.RoomTags,
		Status:        s.Status.String(),
		CreatorID:     s.CreatorID,
		AssigneeID:    s.AssigneeID,
		CreatedDate:   s.CreatedDate,
		AssignedDate:  s.AssignedDate,
		CompletedDate: s.CompletedDate,
		Version:       s.Version,
	}
}

// workOrderFromPayload restores a snapshot. Payloads without a status or a
// creator are identity-only references.
func workOrderFromPayload(p WorkOrderPayload) (*workorder.WorkOrder, error) {
	status, err := workorder.Parse(p.Status)
	if err != nil && p.Status != "" {
		return nil, err
	}
	if status.IsNone() || p.CreatorID.IsZero() {
		return workorder.Reference(p.ID), nil
	}

	return workorder.Restore(workorder.Snapshot{
		ID:            p.ID,
		Number:        p.Number,
		Title:         p.Title,
		Description:   p.Description,
		Instructions:  p.Instructions,
		Deadline:      p.Deadline,
		RoomTags:      p.RoomTags,
		Status:        status,
		CreatorID:     p.CreatorID,
		AssigneeID:    p.AssigneeID,
		CreatedDate:   p.CreatedDate,
		AssignedDate:  p.AssignedDate,
		CompletedDate: p.CompletedDate,
		Version:       p.Version,
	})
}

func employeeToPayload(e *employee.Employee) EmployeePayload {
	return EmployeePayload{
		ID:        e.ID(),
		UserName:  e.UserName(),
		FirstName: e.FirstName(),
		LastName:  e.LastName(),
		Email:     e.Email(),
	}
}

// employeeFromPayload restores the actor, or an identity-only reference when
// the payload carries nothing but the id.
func employeeFromPayload(p EmployeePayload) (*employee.Employee, error) {
	if err := p.ID.Validate(); err != nil {
		return nil, err
	}
	if p.UserName == "" {
		return employee.Reference(p.ID), nil
	}
	return employee.RestoreEmployee(p.ID, p.UserName, p.FirstName, p.LastName, p.Email)
}

func editsToPayload(e statecommand.Edits) EditsPayload {
	p := EditsPayload{
		Title:         e.Title,
		Description:   e.Description,
		Instructions:  e.Instructions,
		Deadline:      e.Deadline,
		ClearDeadline: e.ClearDeadline,
		AssigneeID:    e.AssigneeID,
	}
	if e.RoomTags != nil {
		tags := append([]string{}, e.RoomTags...)
		p.RoomTags = &tags
	}
	return p
}

func editsFromPayload(p EditsPayload) statecommand.Edits {
	e := statecommand.Edits{
		Title:         p.Title,
		Description:   p.Description,
		Instructions:  p.Instructions,
		Deadline:      p.Deadline,
		ClearDeadline: p.ClearDeadline,
		AssigneeID:    p.AssigneeID,
	}
	if p.RoomTags != nil {
		e.RoomTags = append([]string{}, *p.RoomTags...)
	}
	return e
}

func auditEntryToPayload(e workorder.AuditEntry) AuditEntryPayload {
	return AuditEntryPayload{
		WorkOrderID:  e.WorkOrderID(),
		Sequence:     e.Sequence(),
		EmployeeID:   e.EmployeeID(),
		EmployeeName: e.EmployeeName(),
		Date:         e.Date(),
		BeginStatus:  e.BeginStatus().Key(),
		EndStatus:    e.EndStatus().Key(),
		ActionType:   e.ActionType(),
		ActionDetail: e.ActionDetail(),
	}
}

func auditEntryFromPayload(p AuditEntryPayload) (workorder.AuditEntry, error) {
	begin, err := workorder.Parse(p.BeginStatus)
	if err != nil {
		return workorder.AuditEntry{}, err
	}
	end, err := workorder.Parse(p.EndStatus)
	if err != nil {
		return workorder.AuditEntry{}, err
	}
	return workorder.RestoreAuditEntry(p.WorkOrderID, p.Sequence, p.EmployeeID, p.EmployeeName,
		p.Date, begin, end, p.ActionType, p.ActionDetail)
}
