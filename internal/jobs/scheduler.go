package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs every polling task on one cron instance. Each task is skipped
// while its previous run is still going.
type Scheduler struct {
	tasks   []*PollingTask
	timeout time.Duration
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewScheduler creates a scheduler. timeout bounds a single task run; zero
// means no bound.
func NewScheduler(tasks []*PollingTask, timeout time.Duration, logger *slog.Logger) *Scheduler {
	logger = logger.With("component", "scheduler")
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))

	return &Scheduler{
		tasks:   tasks,
		timeout: timeout,
		cron: cron.New(
			cron.WithParser(scheduleParser),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		logger: logger,
	}
}

func (s *Scheduler) Name() string { return "scheduler" }

// Start registers every task and starts the cron loop.
func (s *Scheduler) Start() error {
	for _, task := range s.tasks {
		if _, err := s.cron.AddFunc(task.Schedule(), s.runFunc(task)); err != nil {
			return fmt.Errorf("schedule task %q: %w", task.Name(), err)
		}
	}

	s.cron.Start()
	s.logger.InfoContext(context.Background(), "Scheduler started", "tasks", len(s.tasks))
	return nil
}

// Stop stops the cron loop and waits for running tasks to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.InfoContext(context.Background(), "Scheduler stopped")
}

func (s *Scheduler) runFunc(task *PollingTask) func() {
	return func() {
		ctx := context.Background()
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}

		stats, err := task.Run(ctx)
		if err != nil {
			s.logger.ErrorContext(ctx, "Scheduled task failed", "task", task.Name(), "error", err)
			return
		}
		if stats.Candidates > 0 {
			s.logger.InfoContext(ctx, "Scheduled task finished",
				"task", task.Name(),
				"candidates", stats.Candidates,
				"succeeded", stats.Succeeded,
				"not_valid", stats.NotValid,
				"skipped", stats.Skipped,
				"failed", stats.Failed,
			)
		}
	}
}
