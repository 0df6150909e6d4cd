package jobs

import (
	"fmt"
	"log/slog"

	"warehouse/internal/core/application/usecases/queries"
	"warehouse/internal/core/ports"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	scheduleProcessingJob *ScheduleProcessingJob
	zoneBroadcastJob      *ZoneBroadcastJob
}

// NewJobManager creates a job manager with all required jobs.
func NewJobManager(
	processor ScheduleProcessor,
	zoneSummaryHandler queries.GetZoneSummaryQueryHandler,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		scheduleProcessingJob: NewScheduleProcessingJob(processor, logger),
		zoneBroadcastJob:      NewZoneBroadcastJob(zoneSummaryHandler, publisher, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.scheduleProcessingJob.Start(); err != nil {
		return fmt.Errorf("failed to start schedule processing job: %w", err)
	}

	if err := jm.zoneBroadcastJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.scheduleProcessingJob.Stop()
		return fmt.Errorf("failed to start zone broadcast job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.zoneBroadcastJob.Stop()
	jm.scheduleProcessingJob.Stop()
}
