package jobs

import (
	"context"
	"fmt"

	"warehouse/internal/core/application/usecases/queries"
	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/ports"
)

// BackorderNotifier implements ScheduleProcessor. Each run lists the orders
// still parked in the backorder branch and raises an operator notification
// for each, so stock-waiting orders never drop off the radar between shifts.
type BackorderNotifier struct {
	handler   queries.GetBackorderedOrdersQueryHandler
	publisher ports.EventPublisher
}

// NewBackorderNotifier creates the processor backing the hourly schedule run.
func NewBackorderNotifier(
	handler queries.GetBackorderedOrdersQueryHandler,
	publisher ports.EventPublisher,
) *BackorderNotifier {
	return &BackorderNotifier{
		handler:   handler,
		publisher: publisher,
	}
}

// ProcessDueSchedules publishes one notification:new event per backordered
// order. A run with nothing backordered publishes nothing.
func (n *BackorderNotifier) ProcessDueSchedules(ctx context.Context) error {
	orders, err := n.handler.Handle(ctx, queries.NewGetBackorderedOrdersQuery())
	if err != nil {
		return err
	}

	for _, o := range orders {
		n.publisher.Publish(ports.Event{
			Name:  ports.EventNotificationNew,
			Scope: ports.ScopeOrders,
			Payload: ports.NotificationNewPayload{
				NotificationID: kernel.NewUUID().String(),
				Title:          "Order awaiting stock",
				Message: fmt.Sprintf(
					"order %s has %d pick tasks waiting on replenishment",
					o.ID, o.TaskCount,
				),
			},
		})
	}

	return nil
}
