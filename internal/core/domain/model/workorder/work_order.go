package workorder

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"workorders/internal/core/domain/model/kernel"
	"workorders/internal/pkg/errs"
)

const (
	// MaxTitleLength bounds the title, in characters.
	MaxTitleLength = 300

	// MaxTextLength is the ceiling applied to description and instructions.
	// Longer input is truncated, never rejected.
	MaxTextLength = 4000
)

var (
	// ErrWorkOrderIsNotConstructed is returned when a WorkOrder was not created through
	// NewDraft, Restore or Reference.
	ErrWorkOrderIsNotConstructed = errors.New("WorkOrder must be created via NewDraft or Restore constructor")

	// ErrWorkOrderAlreadyPersisted is returned when identity is assigned twice.
	ErrWorkOrderAlreadyPersisted = errors.New("work order already has an identity")
)

// Stamp selects which lifecycle timestamps a transition sets.
type Stamp uint8

const (
	// StampCreated sets createdDate unless it is already set.
	StampCreated Stamp = 1 << iota

	// StampAssigned sets assignedDate.
	StampAssigned

	// StampCompleted sets completedDate.
	StampCompleted

	// StampNone sets nothing.
	StampNone Stamp = 0
)

// Has reports whether every bit of other is set in s.
func (s Stamp) Has(other Stamp) bool {
	return other != 0 && s&other == other
}

// WorkOrder is the aggregate root of the maintenance domain. It is mutated only
// by the state command handler; every status change is paired with an AuditEntry
// written in the same unit of work.
//
// WorkOrder follows these invariants:
//   - status is always one of All() once persisted
//   - creatorID never changes after construction
//   - description and instructions never exceed MaxTextLength characters
//   - version grows by one on every successful write
type WorkOrder struct {
	id     kernel.UUID
	number string

	title        string
	description  string
	instructions string
	deadline     *time.Time
	roomTags     []string

	status     Status
	creatorID  kernel.UUID
	assigneeID *kernel.UUID

	createdDate   *time.Time
	assignedDate  *time.Time
	completedDate *time.Time

	version int

	isConstructed bool
}

// Snapshot is a plain copy of every WorkOrder field. It is what repositories
// persist and what crosses process boundaries.
type Snapshot struct {
	ID            kernel.UUID
	Number        string
	Title         string
	Description   string
	Instructions  string
	Deadline      *time.Time
	RoomTags      []string
	Status        Status
	CreatorID     kernel.UUID
	AssigneeID    *kernel.UUID
	CreatedDate   *time.Time
	AssignedDate  *time.Time
	CompletedDate *time.Time
	Version       int
}

// NewDraft creates an unpersisted work order in Draft owned by creatorID.
// Title and description may still be blank here; field validation happens when
// a command that needs them runs.
//
// Example:
//
//	wo, err := workorder.NewDraft(creator.ID(), "Fix lighting", "Replace bulb")
//	if err != nil {
//	    return err
//	}
//	wo.IsPersisted() // false until the handler saves it
func NewDraft(creatorID kernel.UUID, title, description string) (*WorkOrder, error) {
	wo := &WorkOrder{
		status:        Draft,
		isConstructed: true,
	}

	if err := wo.setCreator(creatorID); err != nil {
		return nil, err
	}
	wo.ChangeTitle(title)
	wo.ChangeDescription(description)

	return wo, nil
}

// Restore rebuilds a work order from a snapshot, typically a database row or a
// decoded message. The id may be zero for drafts that were never saved.
func Restore(s Snapshot) (*WorkOrder, error) {
	wo := &WorkOrder{
		id:            s.ID,
		number:        s.Number,
		deadline:      copyTime(s.Deadline),
		assigneeID:    copyUUID(s.AssigneeID),
		createdDate:   copyTime(s.CreatedDate),
		assignedDate:  copyTime(s.AssignedDate),
		completedDate: copyTime(s.CompletedDate),
		isConstructed: true,
	}

	if err := errors.Join(
		wo.setCreator(s.CreatorID),
		wo.setStatus(s.Status),
		wo.setVersion(s.Version),
	); err != nil {
		return nil, err
	}

	wo.ChangeTitle(s.Title)
	wo.ChangeDescription(s.Description)
	wo.ChangeInstructions(s.Instructions)
	wo.ChangeRoomTags(s.RoomTags)

	return wo, nil
}

// Reference builds a detached, identity-only work order. The handler never reads
// anything but the id from it; schedulers use it to name a target they have not loaded.
func Reference(id kernel.UUID) *WorkOrder {
	return &WorkOrder{
		id:            id,
		status:        None,
		isConstructed: true,
	}
}

// Validate ensures the work order was created through one of its constructors.
func (w *WorkOrder) Validate() error {
	if w == nil || !w.isConstructed {
		return ErrWorkOrderIsNotConstructed
	}
	return nil
}

// ID returns the identity, zero until first persisted.
func (w *WorkOrder) ID() kernel.UUID { return w.id }

// Number returns the human-facing number, empty until first persisted.
func (w *WorkOrder) Number() string { return w.number }

// Title returns the title.
func (w *WorkOrder) Title() string { return w.title }

// Description returns the description.
func (w *WorkOrder) Description() string { return w.description }

// Instructions returns the free-text instructions.
func (w *WorkOrder) Instructions() string { return w.instructions }

// Deadline returns a copy of the deadline or nil.
func (w *WorkOrder) Deadline() *time.Time { return copyTime(w.deadline) }

// RoomTags returns a copy of the room tags.
func (w *WorkOrder) RoomTags() []string { return slices.Clone(w.roomTags) }

// Status returns the current status.
func (w *WorkOrder) Status() Status { return w.status }

// CreatorID returns the id of the employee who created the work order.
func (w *WorkOrder) CreatorID() kernel.UUID { return w.creatorID }

// AssigneeID returns a copy of the assignee id or nil.
func (w *WorkOrder) AssigneeID() *kernel.UUID { return copyUUID(w.assigneeID) }

// CreatedDate returns when the work order was first saved.
func (w *WorkOrder) CreatedDate() *time.Time { return copyTime(w.createdDate) }

// AssignedDate returns when the work order was last assigned.
func (w *WorkOrder) AssignedDate() *time.Time { return copyTime(w.assignedDate) }

// CompletedDate returns when the work order was last completed.
func (w *WorkOrder) CompletedDate() *time.Time { return copyTime(w.completedDate) }

// Version returns the optimistic concurrency version.
func (w *WorkOrder) Version() int { return w.version }

// IsPersisted reports whether the work order has an identity.
func (w *WorkOrder) IsPersisted() bool {
	return !w.id.IsZero()
}

// IsCreator reports whether employeeID created the work order.
func (w *WorkOrder) IsCreator(employeeID kernel.UUID) bool {
	return !employeeID.IsZero() && w.creatorID.IsEqual(employeeID)
}

// IsAssignee reports whether employeeID is the current assignee.
func (w *WorkOrder) IsAssignee(employeeID kernel.UUID) bool {
	return !employeeID.IsZero() && w.assigneeID != nil && w.assigneeID.IsEqual(employeeID)
}

// IsOverdue reports whether the deadline has passed while work is still expected.
func (w *WorkOrder) IsOverdue(now time.Time) bool {
	return w.deadline != nil && w.deadline.Before(now) && !w.status.IsTerminal()
}

// ChangeTitle replaces the title. Length is checked by field validation so the
// caller gets a message instead of an error.
func (w *WorkOrder) ChangeTitle(title string) {
	w.title = title
}

// ChangeDescription replaces the description, truncated to MaxTextLength characters.
func (w *WorkOrder) ChangeDescription(description string) {
	w.description = truncate(description, MaxTextLength)
}

// ChangeInstructions replaces the instructions, truncated to MaxTextLength characters.
func (w *WorkOrder) ChangeInstructions(instructions string) {
	w.instructions = truncate(instructions, MaxTextLength)
}

// ChangeDeadline replaces the deadline. Nil clears it.
func (w *WorkOrder) ChangeDeadline(deadline *time.Time) {
	w.deadline = copyTime(deadline)
}

// ChangeRoomTags replaces the room tags. Tags are trimmed, blanks dropped and
// duplicates removed while keeping first-seen order.
func (w *WorkOrder) ChangeRoomTags(tags []string) {
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || slices.Contains(normalized, tag) {
			continue
		}
		normalized = append(normalized, tag)
	}
	w.roomTags = normalized
}

// AssignTo sets the assignee.
func (w *WorkOrder) AssignTo(assigneeID kernel.UUID) error {
	if err := assigneeID.Validate(); err != nil {
		return err
	}
	w.assigneeID = &assigneeID
	return nil
}

// Transition moves the work order to end and applies the requested stamps at the given time.
// It performs no legality checks; those belong to the command that asks for it.
func (w *WorkOrder) Transition(end Status, stamps Stamp, at time.Time) error {
	if err := end.Validate(); err != nil {
		return err
	}

	w.status = end
	if stamps.Has(StampCreated) && w.createdDate == nil {
		w.createdDate = copyTime(&at)
	}
	if stamps.Has(StampAssigned) {
		w.assignedDate = copyTime(&at)
	}
	if stamps.Has(StampCompleted) {
		w.completedDate = copyTime(&at)
	}
	return nil
}

// AssignIdentity gives a new work order its id and number. It fails if the work
// order already has an identity.
func (w *WorkOrder) AssignIdentity(id kernel.UUID, number string) error {
	if w.IsPersisted() {
		return ErrWorkOrderAlreadyPersisted
	}
	if err := id.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(number) == "" {
		return errs.NewValueIsRequiredError("number")
	}

	w.id = id
	w.number = number
	return nil
}

// AdvanceVersion is called by the repository after a successful write.
func (w *WorkOrder) AdvanceVersion() {
	w.version++
}

// Snapshot copies the current state.
func (w *WorkOrder) Snapshot() Snapshot {
	return Snapshot{
		ID:            w.id,
		Number:        w.number,
		Title:         w.title,
		Description:   w.description,
		Instructions:  w.instructions,
		Deadline:      copyTime(w.deadline),
		RoomTags:      slices.Clone(w.roomTags),
		Status:        w.status,
		CreatorID:     w.creatorID,
		AssigneeID:    copyUUID(w.assigneeID),
		CreatedDate:   copyTime(w.createdDate),
		AssignedDate:  copyTime(w.assignedDate),
		CompletedDate: copyTime(w.completedDate),
		Version:       w.version,
	}
}

// Clone returns an independent deep copy. The handler mutates clones so a
// failed validation leaves the loaded aggregate untouched.
func (w *WorkOrder) Clone() *WorkOrder {
	c := *w
	c.deadline = copyTime(w.deadline)
	c.roomTags = slices.Clone(w.roomTags)
	c.assigneeID = copyUUID(w.assigneeID)
	c.createdDate = copyTime(w.createdDate)
	c.assignedDate = copyTime(w.assignedDate)
	c.completedDate = copyTime(w.completedDate)
	return &c
}

func (w *WorkOrder) setCreator(creatorID kernel.UUID) error {
	if err := creatorID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("creator", err)
	}
	w.creatorID = creatorID
	return nil
}

func (w *WorkOrder) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	w.status = status
	return nil
}

func (w *WorkOrder) setVersion(version int) error {
	if version < 0 {
		return errs.NewVersionIsInvalidError("version", fmt.Errorf("%d is negative", version))
	}
	w.version = version
	return nil
}

// truncate cuts s to at most limit characters without splitting a rune.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func copyUUID(id *kernel.UUID) *kernel.UUID {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
