package services

import (
	"fmt"
	"strings"

	"workorders/internal/core/domain/model/kernel"
	"workorders/internal/core/domain/model/workorder"

	"github.com/google/uuid"
)

// NumberPrefix starts every work order number.
const NumberPrefix = "WO-"

// NumberAssigner assigns identity to work orders on their first save.
//
// Numbers are derived from the new id: NumberPrefix followed by the first eight
// hex digits, upper-cased. They are short enough to read over the phone. A
// collision is caught by the unique index on the number column and surfaces as
// a concurrent modification, which the handler retries with a fresh id.
//
// Example:
//
//	assigner := services.NewNumberAssigner()
//	if err := assigner.Assign(wo); err != nil {
//	    return err
//	}
//	wo.Number() // "WO-3F2504E0"
type NumberAssigner struct {
	newID func() kernel.UUID
}

// NewNumberAssigner creates an assigner backed by random v4 ids.
func NewNumberAssigner() NumberAssigner {
	return NumberAssigner{newID: kernel.NewUUID}
}

// NewNumberAssignerWithSource creates an assigner that draws ids from source.
func NewNumberAssignerWithSource(source func() kernel.UUID) NumberAssigner {
	return NumberAssigner{newID: source}
}

// Assign gives wo a new id and number. Work orders that are already persisted
// are rejected with workorder.ErrWorkOrderAlreadyPersisted.
func (a NumberAssigner) Assign(wo *workorder.WorkOrder) error {
	if err := wo.Validate(); err != nil {
		return err
	}
	newID := a.newID
	if newID == nil {
		newID = kernel.NewUUID
	}

	id := newID()
	return wo.AssignIdentity(id, NumberFor(id))
}

// AssignID gives wo the given id and the number derived from it.
func (a NumberAssigner) AssignID(wo *workorder.WorkOrder, id kernel.UUID) error {
	if err := wo.Validate(); err != nil {
		return err
	}
	return wo.AssignIdentity(id, NumberFor(id))
}

// draftNamespace scopes the name-based ids of DraftIDFor.
var draftNamespace = uuid.MustParse("3b0c6f52-8d1e-5a47-9c2b-e41f7a9d0c63")

// DraftIDFor derives the id of a draft created by a command that carries a
// correlation id. Replaying the command resolves the row it created instead of
// creating another one.
//
// Example:
//
//	id := services.DraftIDFor(actor.ID(), "retry-1") // same inputs, same id
func DraftIDFor(actorID kernel.UUID, correlationID string) kernel.UUID {
	raw := actorID.Bytes()
	name := append(raw[:], correlationID...)
	return kernel.UUIDFromGoogle(uuid.NewSHA1(draftNamespace, name))
}

// NumberFor derives the work order number of id.
func NumberFor(id kernel.UUID) string {
	raw := id.Bytes()
	return NumberPrefix + strings.ToUpper(fmt.Sprintf("%x", raw[:4]))
}
