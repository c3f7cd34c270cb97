// Package jobs provides scheduled background tasks for the work order service.
//
// Timer-driven callers are modelled as named polling tasks run by a single
// Scheduler built on github.com/robfig/cron/v3. Each task searches for work
// orders in one status and dispatches one state command per match through the
// same dispatcher interactive callers use.
//
// # Configuration
//
// Tasks are read from a YAML file:
//
//	tasks:
//	  - name: archive-completed
//	    schedule: "0 0 3 * * *"   # seconds field is optional
//	    command: Archive
//	    status: CMP
//	    actAs: creator            # or assignee
//	    olderThan: 720h           # last status change before now-olderThan
//	    overdue: false            # only work orders past their deadline
//	    limit: 100
//
// # Usage
//
//	specs, err := jobs.LoadTasks(path)
//	...
//	scheduler := jobs.NewScheduler(tasks, time.Minute, logger)
//	jobManager := jobs.NewJobManager(scheduler)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// Tasks never rely on their own bookkeeping for correctness. A candidate that
// another caller moved in the meantime comes back as not valid and is counted,
// not retried. Dispatch errors are logged per work order and the run goes on.
package jobs
