package workorder

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"workorders/internal/core/domain/model/kernel"
	"workorders/internal/pkg/errs"
)

// ActionStatusChange is the action type of every entry the handler writes.
const ActionStatusChange = "StatusChange"

// ErrAuditEntryIsNotConstructed is returned for AuditEntry values built without NewAuditEntry.
var ErrAuditEntryIsNotConstructed = errors.New("AuditEntry must be created via NewAuditEntry constructor")

// AuditEntry is one immutable line of a work order's ledger. Entries are only
// ever appended; Sequence starts at 1 and is gap-free per work order.
//
// EmployeeName is a snapshot of the actor's display name at write time. Readers
// fall back to it when the employee record no longer exists.
type AuditEntry struct {
	workOrderID  kernel.UUID
	sequence     int
	employeeID   kernel.UUID
	employeeName string
	date         time.Time
	beginStatus  Status
	endStatus    Status
	actionType   string
	actionDetail string

	isConstructed bool
}

// NewAuditEntry records a status change performed by an employee.
// actionDetail is the present-tense verb of the transition, for example "Cancel".
func NewAuditEntry(
	workOrderID kernel.UUID,
	sequence int,
	employeeID kernel.UUID,
	employeeName string,
	date time.Time,
	beginStatus, endStatus Status,
	actionDetail string,
) (AuditEntry, error) {
	return RestoreAuditEntry(workOrderID, sequence, employeeID, employeeName, date,
		beginStatus, endStatus, ActionStatusChange, actionDetail)
}

// RestoreAuditEntry rebuilds a stored entry. Unlike NewAuditEntry it accepts any action type.
func RestoreAuditEntry(
	workOrderID kernel.UUID,
	sequence int,
	employeeID kernel.UUID,
	employeeName string,
	date time.Time,
	beginStatus, endStatus Status,
	actionType, actionDetail string,
) (AuditEntry, error) {
	var errList []error
	if err := workOrderID.Validate(); err != nil {
		errList = append(errList, errs.NewValueIsRequiredErrorWithCause("work order", err))
	}
	if err := employeeID.Validate(); err != nil {
		errList = append(errList, errs.NewValueIsRequiredErrorWithCause("employee", err))
	}
	if sequence < 1 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause(
			"sequence", fmt.Errorf("%d is not greater than 0", sequence)))
	}
	if date.IsZero() {
		errList = append(errList, errs.NewValueIsRequiredError("date"))
	}
	if err := beginStatus.Validate(); err != nil {
		errList = append(errList, err)
	}
	if err := endStatus.Validate(); err != nil {
		errList = append(errList, err)
	}
	if strings.TrimSpace(actionType) == "" {
		errList = append(errList, errs.NewValueIsRequiredError("action type"))
	}
	if err := errors.Join(errList...); err != nil {
		return AuditEntry{}, err
	}

	return AuditEntry{
		workOrderID:   workOrderID,
		sequence:      sequence,
		employeeID:    employeeID,
		employeeName:  employeeName,
		date:          date,
		beginStatus:   beginStatus,
		endStatus:     endStatus,
		actionType:    actionType,
		actionDetail:  actionDetail,
		isConstructed: true,
	}, nil
}

// Validate ensures the entry was created through a constructor.
func (e AuditEntry) Validate() error {
	if !e.isConstructed {
		return ErrAuditEntryIsNotConstructed
	}
	return nil
}

func (e AuditEntry) WorkOrderID() kernel.UUID { return e.workOrderID }
func (e AuditEntry) Sequence() int            { return e.sequence }
func (e AuditEntry) EmployeeID() kernel.UUID  { return e.employeeID }
func (e AuditEntry) EmployeeName() string     { return e.employeeName }
func (e AuditEntry) Date() time.Time          { return e.date }
func (e AuditEntry) BeginStatus() Status      { return e.beginStatus }
func (e AuditEntry) EndStatus() Status        { return e.endStatus }
func (e AuditEntry) ActionType() string       { return e.actionType }
func (e AuditEntry) ActionDetail() string     { return e.actionDetail }
