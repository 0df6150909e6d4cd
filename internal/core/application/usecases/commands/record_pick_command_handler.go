package commands

import (
	"context"

	"warehouse/internal/core/domain/services"
	"warehouse/internal/core/ports"
)

// RecordPickCommandHandler applies a picked-quantity update to one task and
// recomputes the owning order's progress.
//
// Recomputation for a given order is serialized through OrderLocks: two
// workers updating different tasks on the same order take turns, so an
// interleaved read-modify-write can never regress the derived status.
// Updates to different orders proceed concurrently.
type RecordPickCommandHandler struct {
	uowFactory OrderUoWFactory
	publisher  ports.EventPublisher
	deriver    services.ProgressDeriver
	locks      *OrderLocks
}

// NewRecordPickCommandHandler creates a handler for pick-progress updates.
// The OrderLocks instance must be shared with every handler that recomputes
// order progress.
func NewRecordPickCommandHandler(
	uowFactory OrderUoWFactory,
	publisher ports.EventPublisher,
	locks *OrderLocks,
) RecordPickCommandHandler {
	return RecordPickCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		deriver:    services.NewProgressDeriver(),
		locks:      locks,
	}
}

// Handle records the picked quantity, recomputes order progress inside the
// per-order lock, and publishes pick:updated after commit.
func (h *RecordPickCommandHandler) Handle(ctx context.Context, cmd RecordPickCommand) error {
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

	if err = task.RecordPick(cmd.Picked()); err != nil {
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
		Name:  ports.EventPickUpdated,
		Scope: ports.ScopeOrders,
		Payload: ports.PickUpdatedPayload{
			OrderID:        cmd.OrderID().String(),
			OrderItemID:    cmd.TaskID().String(),
			PickedQuantity: cmd.Picked().Value(),
		},
	})

	return nil
}
