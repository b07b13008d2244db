package jobs

import (
	"context"
	"log/slog"

	"orderdispatch/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DefaultDispatchSchedule runs the sweep every 30 seconds.
const DefaultDispatchSchedule = "*/30 * * * * *"

// PendingOrdersDispatcher retries dispatch for orders still waiting for a rider.
type PendingOrdersDispatcher interface {
	Handle(ctx context.Context, cmd commands.DispatchPendingOrdersCommand) (int, error)
}

// DispatchSweepJob periodically offers unassigned active orders to riders
// again, picking up orders that found nobody when they were placed or rejected.
type DispatchSweepJob struct {
	handler  PendingOrdersDispatcher
	schedule string
	limit    int
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewDispatchSweepJob creates the sweep. schedule is a six-field cron
// expression (seconds first); limit bounds the orders handled per run.
func NewDispatchSweepJob(handler PendingOrdersDispatcher, schedule string, limit int, logger *slog.Logger) *DispatchSweepJob {
	if schedule == "" {
		schedule = DefaultDispatchSchedule
	}
	return &DispatchSweepJob{
		handler:  handler,
		schedule: schedule,
		limit:    limit,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "dispatch_sweep_job"),
	}
}

// Start registers the sweep and starts the scheduler.
func (j *DispatchSweepJob) Start() error {
	cmd, err := commands.NewDispatchPendingOrdersCommand(j.limit)
	if err != nil {
		return err
	}

	if _, err = j.cron.AddFunc(j.schedule, func() { j.run(context.Background(), cmd) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("Dispatch sweep job started", "schedule", j.schedule, "limit", j.limit)
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (j *DispatchSweepJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("Dispatch sweep job stopped")
}

func (j *DispatchSweepJob) run(ctx context.Context, cmd commands.DispatchPendingOrdersCommand) {
	dispatched, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Dispatch sweep failed", "dispatched", dispatched, "error", err)
		return
	}
	if dispatched > 0 {
		j.logger.InfoContext(ctx, "Dispatch sweep assigned riders", "dispatched", dispatched)
	}
}
