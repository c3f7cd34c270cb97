package workorder

import (
	"errors"
	"fmt"
	"strings"

	"workorders/internal/pkg/errs"
)

// ErrUnknownStatus is returned by Parse when a key does not name a status.
var ErrUnknownStatus = errors.New("unknown status")

// Status is a lifecycle state of a work order. Two statuses are equal when their
// keys are equal; the struct is comparable so it can be used as a map key.
//
// The sort order exists for display only. Transition rules never look at it.
type Status struct {
	key       string
	name      string
	sortOrder int
}

var (
	// None is the sentinel for "no status", used for work orders that have not
	// been persisted and for transitions that are not applicable.
	None = Status{key: "NON", name: "None", sortOrder: 0}

	Draft      = Status{key: "DFT", name: "Draft", sortOrder: 1}
	Assigned   = Status{key: "ASD", name: "Assigned", sortOrder: 2}
	InProgress = Status{key: "IPG", name: "In Progress", sortOrder: 3}
	Complete   = Status{key: "CMP", name: "Complete", sortOrder: 4}
	Cancelled  = Status{key: "CNL", name: "Cancelled", sortOrder: 5}
	Archived   = Status{key: "ARC", name: "Archived", sortOrder: 6}
)

// All returns every real status in display order. None is not included.
func All() []Status {
	return []Status{Draft, Assigned, InProgress, Complete, Cancelled, Archived}
}

// Parse resolves a status from its key, ignoring case. The None key is accepted.
//
// Example:
//
//	s, err := workorder.Parse("ipg") // InProgress
func Parse(key string) (Status, error) {
	trimmed := strings.TrimSpace(key)
	if strings.EqualFold(trimmed, None.key) {
		return None, nil
	}
	for _, s := range All() {
		if strings.EqualFold(trimmed, s.key) {
			return s, nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownStatus, key)
}

// Key returns the stable three letter key stored in the database and sent over the wire.
func (s Status) Key() string {
	return s.key
}

// Name returns the display name.
func (s Status) Name() string {
	return s.name
}

// SortOrder returns the display position.
func (s Status) SortOrder() int {
	return s.sortOrder
}

// Equal compares by key.
func (s Status) Equal(other Status) bool {
	return s.key == other.key
}

// IsNone reports whether s is the None sentinel or the zero value.
func (s Status) IsNone() bool {
	return s.key == "" || s.key == None.key
}

// IsTerminal reports whether no further work is expected: Complete, Cancelled or Archived.
func (s Status) IsTerminal() bool {
	return s.Equal(Complete) || s.Equal(Cancelled) || s.Equal(Archived)
}

// Validate rejects the zero value and None. Persisted work orders always carry a real status.
func (s Status) Validate() error {
	for _, known := range All() {
		if s == known {
			return nil
		}
	}
	return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s.key))
}

// String returns the key, which keeps log lines short and greppable.
func (s Status) String() string {
	if s.key == "" {
		return None.key
	}
	return s.key
}
