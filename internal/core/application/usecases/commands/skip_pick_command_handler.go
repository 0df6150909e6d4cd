package commands

import (
	"context"

	"warehouse/internal/core/domain/services"
	"warehouse/internal/core/ports"
)

// SkipPickCommandHandler abandons one pick task and recomputes the owning
// order's progress. A skipped task leaves the order in PICKING until
// exception handling resolves it, so no order:completed event can follow.
type SkipPickCommandHandler struct {
	uowFactory OrderUoWFactory
	publisher  ports.EventPublisher
	deriver    services.ProgressDeriver
	locks      *OrderLocks
}

// NewSkipPickCommandHandler creates a handler for pick skips.
// The OrderLocks instance must be shared with every handler that recomputes
// order progress.
func NewSkipPickCommandHandler(
	uowFactory OrderUoWFactory,
	publisher ports.EventPublisher,
	locks *OrderLocks,
) SkipPickCommandHandler {
	return SkipPickCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		deriver:    services.NewProgressDeriver(),
		locks:      locks,
	}
}

// Handle skips the task inside the per-order lock and publishes
// pick:completed after commit, because the task reached a terminal state.
func (h *SkipPickCommandHandler) Handle(ctx context.Context, cmd SkipPickCommand) error {
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

	if err = task.Skip(); err != nil {
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

	return nil
}
