package statecommand

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"workorders/internal/core/domain/model/kernel"
	"workorders/internal/core/domain/model/workorder"
)

// Kind tags one row of the transition table.
type Kind int

const (
	KindUnknown Kind = iota
	KindSave
	KindAssign
	KindBegin
	KindComplete
	KindShelve
	KindCancel
	KindReopen
	KindArchive
	KindDelete
	KindUpdateDescription
)

// Kinds returns every command kind in table order.
func Kinds() []Kind {
	return []Kind{
		KindSave, KindAssign, KindBegin, KindComplete, KindShelve,
		KindCancel, KindReopen, KindArchive, KindDelete, KindUpdateDescription,
	}
}

// String returns the registered name of the kind.
func (k Kind) String() string {
	if def, ok := table[k]; ok {
		return def.name
	}
	return "Unknown"
}

// Actor is the authorization rule of a command, evaluated against the work
// order's creator and assignee at execution time.
type Actor int

const (
	ActorCreator Actor = iota + 1
	ActorAssignee
	ActorCreatorOrAssignee
)

// Allows reports whether employeeID may act on wo under this rule.
func (a Actor) Allows(wo *workorder.WorkOrder, employeeID kernel.UUID) bool {
	switch a {
	case ActorCreator:
		return wo.IsCreator(employeeID)
	case ActorAssignee:
		return wo.IsAssignee(employeeID)
	case ActorCreatorOrAssignee:
		return wo.IsCreator(employeeID) || wo.IsAssignee(employeeID)
	default:
		return false
	}
}

func (a Actor) String() string {
	switch a {
	case ActorCreator:
		return "creator"
	case ActorAssignee:
		return "assignee"
	case ActorCreatorOrAssignee:
		return "creator or assignee"
	default:
		return "nobody"
	}
}

// Field is a bit set of work order fields a command may write or must validate.
type Field uint8

const (
	FieldTitle Field = 1 << iota
	FieldDescription
	FieldInstructions
	FieldDeadline
	FieldRoomTags
	FieldAssignee

	fieldsEditable = FieldTitle | FieldDescription | FieldInstructions | FieldDeadline | FieldRoomTags | FieldAssignee
	fieldsText     = FieldDescription | FieldInstructions
)

// Has reports whether f contains every bit of other.
func (f Field) Has(other Field) bool {
	return other != 0 && f&other == other
}

// Rejection explains why a command is not valid. Both non-empty values collapse
// to "not valid" for callers; they differ only in logs.
type Rejection int

const (
	RejectionNone Rejection = iota
	RejectionInvalidTransition
	RejectionUnauthorized
)

func (r Rejection) String() string {
	switch r {
	case RejectionNone:
		return "none"
	case RejectionInvalidTransition:
		return "invalid_transition"
	case RejectionUnauthorized:
		return "unauthorized"
	default:
		return fmt.Sprintf("rejection(%d)", int(r))
	}
}

// ParseRejection is the inverse of Rejection.String.
func ParseRejection(s string) Rejection {
	switch s {
	case "invalid_transition":
		return RejectionInvalidTransition
	case "unauthorized":
		return RejectionUnauthorized
	default:
		return RejectionNone
	}
}

// Field validation messages.
const (
	MsgTitleRequired       = "Title is required."
	MsgTitleTooLong        = "Title must be 300 characters or fewer."
	MsgDescriptionRequired = "Description is required."
	MsgAssigneeRequired    = "Assignee is required."
)

// beginRule computes the status a command expects, given the current one.
type beginRule func(current workorder.Status) workorder.Status

func fixedBegin(s workorder.Status) beginRule {
	return func(workorder.Status) workorder.Status { return s }
}

// oneOfBegin yields the current status when it is allowed and None otherwise,
// so a command with several acceptable starting points still compares equal
// against exactly one status.
func oneOfBegin(allowed ...workorder.Status) beginRule {
	return func(current workorder.Status) workorder.Status {
		for _, s := range allowed {
			if current.Equal(s) {
				return current
			}
		}
		return workorder.None
	}
}

func anyBegin(current workorder.Status) workorder.Status {
	if current.Validate() != nil {
		return workorder.None
	}
	return current
}

// Definition is the immutable per-kind data of one transition.
type Definition struct {
	kind        Kind
	name        string
	presentVerb string
	pastVerb    string

	begin           beginRule
	end             workorder.Status
	preservesStatus bool
	deletes         bool
	createsDraft    bool

	actor     Actor
	stamps    workorder.Stamp
	writable  Field
	validates Field
}

var table = map[Kind]Definition{
	KindSave: {
		kind:         KindSave,
		name:         "Save",
		presentVerb:  "Save",
		pastVerb:     "Saved",
		begin:        fixedBegin(workorder.Draft),
		end:          workorder.Draft,
		createsDraft: true,
		actor:        ActorCreator,
		stamps:       workorder.StampCreated,
		writable:     fieldsEditable,
		validates:    FieldTitle | FieldDescription,
	},
	KindAssign: {
		kind:         KindAssign,
		name:         "Assign",
		presentVerb:  "Assign",
		pastVerb:     "Assigned",
		begin:        fixedBegin(workorder.Draft),
		end:          workorder.Assigned,
		createsDraft: true,
		actor:        ActorCreator,
		stamps:       workorder.StampCreated | workorder.StampAssigned,
		writable:     fieldsEditable,
		validates:    FieldTitle | FieldDescription | FieldAssignee,
	},
	KindBegin: {
		kind:        KindBegin,
		name:        "Begin",
		presentVerb: "Begin",
		pastVerb:    "Begun",
		begin:       fixedBegin(workorder.Assigned),
		end:         workorder.InProgress,
		actor:       ActorAssignee,
		stamps:      workorder.StampNone,
	},
	KindComplete: {
		kind:        KindComplete,
		name:        "Complete",
		presentVerb: "Complete",
		pastVerb:    "Completed",
		begin:       fixedBegin(workorder.InProgress),
		end:         workorder.Complete,
		actor:       ActorAssignee,
		stamps:      workorder.StampCompleted,
	},
	KindShelve: {
		kind:        KindShelve,
		name:        "Shelve",
		presentVerb: "Shelve",
		pastVerb:    "Shelved",
		begin:       fixedBegin(workorder.InProgress),
		end:         workorder.Assigned,
		actor:       ActorAssignee,
		stamps:      workorder.StampNone,
	},
	KindCancel: {
		kind:        KindCancel,
		name:        "Cancel",
		presentVerb: "Cancel",
		pastVerb:    "Cancelled",
		begin:       oneOfBegin(workorder.Assigned, workorder.InProgress),
		end:         workorder.Cancelled,
		actor:       ActorCreator,
		stamps:      workorder.StampNone,
	},
	KindReopen: {
		kind:        KindReopen,
		name:        "Re-Open",
		presentVerb: "Re-Open",
		pastVerb:    "Re-Opened",
		begin:       fixedBegin(workorder.Complete),
		end:         workorder.InProgress,
		actor:       ActorCreatorOrAssignee,
		stamps:      workorder.StampNone,
	},
	KindArchive: {
		kind:        KindArchive,
		name:        "Archive",
		presentVerb: "Archive",
		pastVerb:    "Archived",
		begin:       fixedBegin(workorder.Complete),
		end:         workorder.Archived,
		actor:       ActorCreatorOrAssignee,
		stamps:      workorder.StampNone,
	},
	KindDelete: {
		kind:        KindDelete,
		name:        "Delete",
		presentVerb: "Delete",
		pastVerb:    "Deleted",
		begin:       fixedBegin(workorder.Draft),
		end:         workorder.None,
		deletes:     true,
		actor:       ActorCreator,
		stamps:      workorder.StampNone,
	},
	KindUpdateDescription: {
		kind:            KindUpdateDescription,
		name:            "UpdateDescription",
		presentVerb:     "Save",
		pastVerb:        "Saved",
		begin:           anyBegin,
		preservesStatus: true,
		actor:           ActorCreatorOrAssignee,
		stamps:          workorder.StampNone,
		writable:        fieldsText,
		validates:       FieldDescription,
	},
}

// Lookup returns the definition of a kind.
func Lookup(kind Kind) (Definition, error) {
	def, ok := table[kind]
	if !ok {
		return Definition{}, fmt.Errorf("%w: kind %d", ErrUnknownCommand, int(kind))
	}
	return def, nil
}

// KindByName resolves a registered command name. Matching ignores case, spaces
// and hyphens, so "Re-Open", "reopen" and "RE OPEN" are the same command.
func KindByName(name string) (Kind, error) {
	wanted := normalizeName(name)
	for _, k := range Kinds() {
		if normalizeName(table[k].name) == wanted {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.NewReplacer("-", "", " ", "", "_", "").Replace(strings.TrimSpace(name)))
}

func (d Definition) Kind() Kind              { return d.kind }
func (d Definition) Name() string            { return d.name }
func (d Definition) PresentVerb() string     { return d.presentVerb }
func (d Definition) PastVerb() string        { return d.pastVerb }
func (d Definition) Actor() Actor            { return d.actor }
func (d Definition) Stamps() workorder.Stamp { return d.stamps }
func (d Definition) Writable() Field         { return d.writable }
func (d Definition) Deletes() bool           { return d.deletes }
func (d Definition) PreservesStatus() bool   { return d.preservesStatus }
func (d Definition) CreatesDraft() bool      { return d.createsDraft }

// BeginStatus is the status the command requires, given the work order's current status.
// For Cancel it is the current status when that is Assigned or InProgress and None otherwise.
func (d Definition) BeginStatus(current workorder.Status) workorder.Status {
	return d.begin(current)
}

// EndStatus is the status after execution. Status-preserving commands return
// current; Delete returns None.
func (d Definition) EndStatus(current workorder.Status) workorder.Status {
	if d.preservesStatus {
		return current
	}
	return d.end
}

// Check evaluates transition validity against wo as it is now. Status is
// checked before authorization so a stale command reports InvalidTransition
// even when the actor also lost access.
func (d Definition) Check(wo *workorder.WorkOrder, actorID kernel.UUID) Rejection {
	current := wo.Status()
	begin := d.BeginStatus(current)
	if begin.IsNone() || !current.Equal(begin) {
		return RejectionInvalidTransition
	}
	if !d.actor.Allows(wo, actorID) {
		return RejectionUnauthorized
	}
	return RejectionNone
}

// ApplyEdits copies the fields this command may write from edits into wo.
// Fields outside Writable are ignored.
func (d Definition) ApplyEdits(wo *workorder.WorkOrder, edits Edits) error {
	if d.writable.Has(FieldTitle) && edits.Title != nil {
		wo.ChangeTitle(*edits.Title)
	}
	if d.writable.Has(FieldDescription) && edits.Description != nil {
		wo.ChangeDescription(*edits.Description)
	}
	if d.writable.Has(FieldInstructions) && edits.Instructions != nil {
		wo.ChangeInstructions(*edits.Instructions)
	}
	if d.writable.Has(FieldDeadline) {
		switch {
		case edits.ClearDeadline:
			wo.ChangeDeadline(nil)
		case edits.Deadline != nil:
			wo.ChangeDeadline(edits.Deadline)
		}
	}
	if d.writable.Has(FieldRoomTags) && edits.RoomTags != nil {
		wo.ChangeRoomTags(edits.RoomTags)
	}
	if d.writable.Has(FieldAssignee) && edits.AssigneeID != nil {
		return wo.AssignTo(*edits.AssigneeID)
	}
	return nil
}

// FieldErrors runs field validation over wo and returns every message at once.
// An empty result means the command may execute.
func (d Definition) FieldErrors(wo *workorder.WorkOrder) []string {
	var messages []string
	if d.validates.Has(FieldTitle) {
		switch {
		case strings.TrimSpace(wo.Title()) == "":
			messages = append(messages, MsgTitleRequired)
		case utf8.RuneCountInString(wo.Title()) > workorder.MaxTitleLength:
			messages = append(messages, MsgTitleTooLong)
		}
	}
	if d.validates.Has(FieldDescription) && strings.TrimSpace(wo.Description()) == "" {
		messages = append(messages, MsgDescriptionRequired)
	}
	if d.validates.Has(FieldAssignee) && wo.AssigneeID() == nil {
		messages = append(messages, MsgAssigneeRequired)
	}
	return messages
}

// Execute applies the end status and the declared stamps. Deleting commands are
// not executed against the aggregate; the handler removes the row instead.
func (d Definition) Execute(wo *workorder.WorkOrder, at time.Time) error {
	if d.deletes {
		return ErrDeleteIsNotATransition
	}
	return wo.Transition(d.EndStatus(wo.Status()), d.stamps, at)
}
