// Package workorder provides the WorkOrder aggregate, its lifecycle Status and
// the AuditEntry records written for every status change.
//
// The package holds state and invariants only. Which transitions are legal, who
// may perform them and which fields they may write is decided by the
// statecommand package; the aggregate exposes the primitive mutations those
// commands are built from.
//
// Lifecycle:
//
//	Draft ──> Assigned ──> InProgress ──> Complete ──> Archived
//	             ^             │  ^           │
//	             └── Shelve ───┘  └─ Re-Open ─┘
//
//	Assigned, InProgress ──> Cancelled
//
// Key business rules:
//   - Title is required and bounded to MaxTitleLength characters
//   - Description and instructions are truncated to MaxTextLength characters
//   - The creator never changes once set
//   - assignedDate and completedDate are stamped by transitions, not by callers
package workorder
