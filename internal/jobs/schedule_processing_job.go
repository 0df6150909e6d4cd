package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// ScheduleProcessor is the external scheduling collaborator. Each invocation
// processes the schedules that have come due since the last run.
type ScheduleProcessor interface {
	ProcessDueSchedules(ctx context.Context) error
}

// ScheduleProcessingJob invokes the schedule processor on a fixed hourly
// interval. Each invocation runs in its own failure boundary: an error or a
// panic is logged and does not terminate the interval or the process.
type ScheduleProcessingJob struct {
	processor ScheduleProcessor
	cron      *cron.Cron
	logger    *slog.Logger
}

// NewScheduleProcessingJob creates the hourly schedule-processing job.
func NewScheduleProcessingJob(processor ScheduleProcessor, logger *slog.Logger) *ScheduleProcessingJob {
	return &ScheduleProcessingJob{
		processor: processor,
		cron:      cron.New(),
		logger:    logger.With("component", "schedule_processing_job"),
	}
}

// Start begins the hourly schedule.
func (j *ScheduleProcessingJob) Start() error {
	_, err := j.cron.AddFunc("0 * * * *", j.runOnce)
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Schedule processing job started (running hourly)")
	return nil
}

// Stop stops the job. Does not interrupt an invocation already in progress.
func (j *ScheduleProcessingJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Schedule processing job stopped")
}

// runOnce executes one invocation inside the failure boundary.
func (j *ScheduleProcessingJob) runOnce() {
	ctx := context.Background()

	defer func() {
		if r := recover(); r != nil {
			j.logger.ErrorContext(ctx, "Schedule processing panicked", "panic", fmt.Sprint(r))
		}
	}()

	if err := j.processor.ProcessDueSchedules(ctx); err != nil {
		j.logger.ErrorContext(ctx, "Schedule processing failed", "error", err)
	}
}
