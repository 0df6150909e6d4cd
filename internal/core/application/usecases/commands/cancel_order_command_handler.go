package commands

import (
	"context"

	"warehouse/internal/core/ports"
)

// CancelOrderCommandHandler aborts a pending or picking order and announces
// the cancellation. Cancellation takes the per-order lock so it cannot
// interleave with a concurrent progress recomputation on the same order.
type CancelOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	publisher  ports.EventPublisher
	locks      *OrderLocks
}

// NewCancelOrderCommandHandler creates a handler for order cancellations.
func NewCancelOrderCommandHandler(
	uowFactory OrderUoWFactory,
	publisher ports.EventPublisher,
	locks *OrderLocks,
) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		locks:      locks,
	}
}

// Handle cancels the order and publishes order:cancelled after commit.
func (h *CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) error {
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

	if err = o.Cancel(); err != nil {
		return err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.publisher.Publish(ports.Event{
		Name:  ports.EventOrderCancelled,
		Scope: ports.ScopeOrders,
		Payload: ports.OrderCancelledPayload{
			OrderID: cmd.OrderID().String(),
			Reason:  cmd.Reason(),
		},
	})

	return nil
}
