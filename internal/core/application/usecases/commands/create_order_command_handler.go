package commands

import (
	"context"

	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/order"
)

// CreateOrderCommandHandler handles the business logic for order creation.
// Turns line items into pick tasks and persists the new order in PENDING
// status, ready to be claimed by a picker.
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
}

// NewCreateOrderCommandHandler creates a handler for order creation.
func NewCreateOrderCommandHandler(uowFactory OrderUoWFactory) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the order creation command.
// Uses a transaction to ensure the order and its tasks are persisted
// atomically or rolled back on error.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	tasks := make([]*order.PickTask, 0, len(cmd.Lines()))
	for _, line := range cmd.Lines() {
		qty, err := kernel.NewQuantity(line.Quantity)
		if err != nil {
			return err
		}

		task, err := order.NewPickTask(kernel.NewUUID(), line.SKU, line.BinLocation, line.ZoneID, qty)
		if err != nil {
			return err
		}
		tasks = append(tasks, task)
	}

	o, err := order.NewOrder(cmd.OrderID(), tasks)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	return nil
}
