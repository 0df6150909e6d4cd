package jobs

import (
	"context"
	"log/slog"

	"warehouse/internal/core/application/usecases/queries"
	"warehouse/internal/core/ports"

	"github.com/robfig/cron/v3"
)

// ZoneBroadcastJob periodically recomputes per-zone workload numbers and
// broadcasts a zone:updated event to each zone's subscribers. Supervisors
// watching a zone see workload drift without any worker action triggering
// an event.
type ZoneBroadcastJob struct {
	handler   queries.GetZoneSummaryQueryHandler
	publisher ports.EventPublisher
	cron      *cron.Cron
	logger    *slog.Logger
}

// NewZoneBroadcastJob creates the zone workload broadcast job.
func NewZoneBroadcastJob(
	handler queries.GetZoneSummaryQueryHandler,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) *ZoneBroadcastJob {
	return &ZoneBroadcastJob{
		handler:   handler,
		publisher: publisher,
		cron:      cron.New(),
		logger:    logger.With("component", "zone_broadcast_job"),
	}
}

// Start begins broadcasting zone summaries every minute.
func (j *ZoneBroadcastJob) Start() error {
	_, err := j.cron.AddFunc("* * * * *", j.runOnce)
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Zone broadcast job started (running every minute)")
	return nil
}

// Stop stops the job.
func (j *ZoneBroadcastJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Zone broadcast job stopped")
}

func (j *ZoneBroadcastJob) runOnce() {
	ctx := context.Background()

	zones, err := j.handler.Handle(ctx, queries.NewGetZoneSummaryQuery())
	if err != nil {
		j.logger.ErrorContext(ctx, "Zone summary query failed", "error", err)
		return
	}

	for _, zone := range zones {
		j.publisher.Publish(ports.Event{
			Name:   ports.EventZoneUpdated,
			Scope:  ports.ScopeZone,
			ZoneID: zone.ZoneID,
			Payload: ports.ZoneUpdatedPayload{
				ZoneID:      zone.ZoneID,
				TaskCount:   zone.TaskCount,
				PickerCount: zone.PickerCount,
			},
		})
	}
}
