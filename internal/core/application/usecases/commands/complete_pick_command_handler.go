package commands

import (
	"context"

	"warehouse/internal/core/domain/model/order"
	"warehouse/internal/core/domain/services"
	"warehouse/internal/core/ports"
)

// CompletePickCommandHandler finishes one pick task and recomputes the owning
// order's progress. If the completion was the last outstanding task, the
// order advances to PICKED and an order:completed event follows the
// pick:completed event.
type CompletePickCommandHandler struct {
	uowFactory OrderUoWFactory
	publisher  ports.EventPublisher
	deriver    services.ProgressDeriver
	locks      *OrderLocks
}

// NewCompletePickCommandHandler creates a handler for pick completions.
// The OrderLocks instance must be shared with every handler that recomputes
// order progress.
func NewCompletePickCommandHandler(
	uowFactory OrderUoWFactory,
	publisher ports.EventPublisher,
	locks *OrderLocks,
) CompletePickCommandHandler {
	return CompletePickCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		deriver:    services.NewProgressDeriver(),
		locks:      locks,
	}
}

// Handle completes the task inside the per-order lock and publishes the
// resulting events after commit.
func (h *CompletePickCommandHandler) Handle(ctx context.Context, cmd CompletePickCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	key := cmd.OrderID().String()
	h.locks.Lock(key)
	defer h.locks.Unlock(key)

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	task, err := o.TaskByID(cmd.TaskID())
	if err != nil {
		return err
	}

	if err = task.Complete(); err != nil {
		return err
	}

	if err = h.deriver.Recompute(o); err != nil {
		return err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.publisher.Publish(ports.Event{
		Name:  ports.EventPickCompleted,
		Scope: ports.ScopeOrders,
		Payload: ports.PickCompletedPayload{
			OrderID:     cmd.OrderID().String(),
			OrderItemID: cmd.TaskID().String(),
		},
	})

	if o.Status() == order.Picked {
		pickerID := ""
		if p := o.Picker(); p != nil {
			pickerID = p.String()
		}
		h.publisher.Publish(ports.Event{
			Name:  ports.EventOrderCompleted,
			Scope: ports.ScopeOrders,
			Payload: ports.OrderCompletedPayload{
				OrderID:  cmd.OrderID().String(),
				PickerID: pickerID,
			},
		})
	}

	return nil
}
