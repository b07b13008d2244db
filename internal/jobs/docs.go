// Package jobs provides scheduled background tasks for the dispatch service.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// DispatchSweepJob runs every 30 seconds by default and offers active orders
// without a rider to the dispatcher again. Orders nobody can take, or that a
// concurrent request already bound, are skipped by the command handler; the
// job only logs real failures.
//
// # Usage
//
//	jobManager := jobs.NewJobManager(dispatchHandler, cfg.DispatchSchedule, cfg.DispatchBatch, logger)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// Overlapping runs are skipped: a sweep still in progress delays the next one.
package jobs
