package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"workorders/internal/core/application/usecases/commands"
	"workorders/internal/core/application/usecases/queries"
	"workorders/internal/core/domain/model/employee"
	"workorders/internal/core/domain/model/kernel"
	"workorders/internal/core/domain/model/workorder"
	"workorders/internal/core/domain/statecommand"
)

// CandidateFinder is the read side a task polls. ListWorkOrdersQueryHandler
// satisfies it.
type CandidateFinder interface {
	Handle(ctx context.Context, query queries.ListWorkOrdersQuery) ([]queries.WorkOrderView, error)
}

// RunStats summarizes one run of a task.
type RunStats struct {
	Candidates int
	Skipped    int
	Succeeded  int
	NotValid   int
	Failed     int
}

// PollingTask finds work orders matching its spec and dispatches one command
// per match. Commands carry only references; the handler re-reads and
// re-checks everything, so overlapping runs and other callers are harmless.
type PollingTask struct {
	spec       TaskSpec
	finder     CandidateFinder
	dispatcher commands.StateCommandDispatcher
	now        func() time.Time
	logger     *slog.Logger
}

func NewPollingTask(
	spec TaskSpec,
	finder CandidateFinder,
	dispatcher commands.StateCommandDispatcher,
	logger *slog.Logger,
) *PollingTask {
	return &PollingTask{
		spec:       spec,
		finder:     finder,
		dispatcher: dispatcher,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger.With("component", "polling_task", "task", spec.Name),
	}
}

func (t *PollingTask) Name() string     { return t.spec.Name }
func (t *PollingTask) Schedule() string { return t.spec.Schedule }

// Run executes the task once. Dispatch errors are logged and counted; only a
// failing candidate search is returned.
func (t *PollingTask) Run(ctx context.Context) (RunStats, error) {
	var stats RunStats
	now := t.now()

	query, err := queries.NewListWorkOrdersQuery(t.filter(now))
	if err != nil {
		return stats, err
	}
	candidates, err := t.finder.Handle(ctx, query)
	if err != nil {
		return stats, fmt.Errorf("find candidates: %w", err)
	}
	stats.Candidates = len(candidates)

	def, err := statecommand.Lookup(t.spec.Kind)
	if err != nil {
		return stats, err
	}

	for _, view := range candidates {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}

		actorID, ok := t.actor(view)
		if !ok || !t.matches(def, view, actorID) {
			stats.Skipped++
			continue
		}

		cmd, cmdErr := statecommand.New(t.spec.Kind, workorder.Reference(view.ID), employee.Reference(actorID),
			statecommand.WithCorrelationID(fmt.Sprintf("task:%s:%s:%d", t.spec.Name, view.ID, now.Unix())))
		if cmdErr != nil {
			stats.Failed++
			t.logger.ErrorContext(ctx, "failed to build command", "work_order", view.Number, "error", cmdErr)
			continue
		}

		result, dispatchErr := t.dispatcher.Dispatch(ctx, cmd)
		switch {
		case dispatchErr != nil:
			stats.Failed++
			t.logger.ErrorContext(ctx, "scheduled command failed", "work_order", view.Number, "error", dispatchErr)
		case result.Succeeded():
			stats.Succeeded++
		default:
			// Someone else moved the work order since the search.
			stats.NotValid++
		}
	}

	return stats, nil
}

func (t *PollingTask) filter(now time.Time) queries.ListFilter {
	f := queries.ListFilter{
		Status: t.spec.Status,
		Limit:  t.spec.Limit,
	}
	if t.spec.OlderThan > 0 {
		cutoff := now.Add(-t.spec.OlderThan)
		f.ChangedBefore = &cutoff
	}
	if t.spec.Overdue {
		f.OverdueAt = &now
	}
	return f
}

func (t *PollingTask) actor(view queries.WorkOrderView) (kernel.UUID, bool) {
	if t.spec.ActAs == ActAsAssignee {
		if view.AssigneeID == nil {
			return kernel.UUID{}, false
		}
		return *view.AssigneeID, true
	}
	return view.CreatorID, true
}

// matches runs the transition check against the candidate as it was read, so
// a stale or mismatched row is never sent.
func (t *PollingTask) matches(def statecommand.Definition, view queries.WorkOrderView, actorID kernel.UUID) bool {
	wo, err := workorder.Restore(workorder.Snapshot{
		ID:         view.ID,
		Number:     view.Number,
		Status:     view.Status,
		CreatorID:  view.CreatorID,
		AssigneeID: view.AssigneeID,
		Version:    view.Version,
	})
	if err != nil {
		return false
	}
	return def.Check(wo, actorID) == statecommand.RejectionNone
}
