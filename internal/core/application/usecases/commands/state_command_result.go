package commands

import (
	"fmt"

	"workorders/internal/core/domain/model/workorder"
	"workorders/internal/core/domain/statecommand"
)

// Outcome is the coarse result of a handled state command.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomeSucceeded
	OutcomeValidationFailed
	OutcomeNotValid
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeValidationFailed:
		return "validation_failed"
	case OutcomeNotValid:
		return "not_valid"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// ParseOutcome is the inverse of Outcome.String.
func ParseOutcome(s string) (Outcome, error) {
	for _, o := range []Outcome{OutcomeSucceeded, OutcomeValidationFailed, OutcomeNotValid} {
		if o.String() == s {
			return o, nil
		}
	}
	return OutcomeUnknown, fmt.Errorf("unknown outcome %q", s)
}

// StateCommandResult is what a caller learns from a dispatched command. Business
// refusals are data here; only infrastructure problems and unresolvable
// references are returned as errors.
type StateCommandResult struct {
	Outcome Outcome

	// Rejection is set when Outcome is OutcomeNotValid.
	Rejection statecommand.Rejection

	// WorkOrder is the persisted state after success, or the unchanged stored
	// state after a refusal. For Delete it is the state before removal.
	WorkOrder *workorder.WorkOrder

	// Verb is the past tense verb of the command, for example "Assigned".
	Verb string

	// Messages lists every field validation failure.
	Messages []string

	Deleted bool

	// AuditEntry is the ledger line written by a status change, nil otherwise.
	AuditEntry *workorder.AuditEntry
}

// Succeeded reports whether the command executed.
func (r StateCommandResult) Succeeded() bool {
	return r.Outcome == OutcomeSucceeded
}

func succeeded(wo *workorder.WorkOrder, verb string, entry *workorder.AuditEntry) StateCommandResult {
	return StateCommandResult{
		Outcome:    OutcomeSucceeded,
		WorkOrder:  wo,
		Verb:       verb,
		AuditEntry: entry,
	}
}

func deleted(wo *workorder.WorkOrder, verb string) StateCommandResult {
	return StateCommandResult{
		Outcome:   OutcomeSucceeded,
		WorkOrder: wo,
		Verb:      verb,
		Deleted:   true,
	}
}

func validationFailed(wo *workorder.WorkOrder, verb string, messages []string) StateCommandResult {
	return StateCommandResult{
		Outcome:   OutcomeValidationFailed,
		WorkOrder: wo,
		Verb:      verb,
		Messages:  messages,
	}
}

func notValid(wo *workorder.WorkOrder, verb string, rejection statecommand.Rejection) StateCommandResult {
	return StateCommandResult{
		Outcome:   OutcomeNotValid,
		Rejection: rejection,
		WorkOrder: wo,
		Verb:      verb,
	}
}
