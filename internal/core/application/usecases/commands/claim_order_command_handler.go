package commands

import (
	"context"

	"warehouse/internal/core/ports"
)

// ClaimOrderCommandHandler handles the business logic for claiming an order.
// Moves the order from PENDING to PICKING, records the picker, and announces
// the claim to subscribed clients after the transaction commits.
type ClaimOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	publisher  ports.EventPublisher
}

// NewClaimOrderCommandHandler creates a handler for order claims.
func NewClaimOrderCommandHandler(uowFactory OrderUoWFactory, publisher ports.EventPublisher) ClaimOrderCommandHandler {
	return ClaimOrderCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle processes the claim command. The order:claimed event is published
// only after a successful commit, so subscribers never observe uncommitted
// state.
func (h *ClaimOrderCommandHandler) Handle(ctx context.Context, cmd ClaimOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

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

	if err = o.Claim(cmd.PickerID()); err != nil {
		return err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.publisher.Publish(ports.Event{
		Name:  ports.EventOrderClaimed,
		Scope: ports.ScopeOrders,
		Payload: ports.OrderClaimedPayload{
			OrderID:    cmd.OrderID().String(),
			PickerID:   cmd.PickerID().String(),
			PickerName: cmd.PickerName(),
		},
	})

	return nil
}
