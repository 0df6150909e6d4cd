package commands

import (
	"errors"

	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/pkg/guard"
)

var (
	ErrClaimOrderCommandIsNotConstructed = errors.New(
		"ClaimOrderCommand must be created via NewClaimOrderCommand constructor",
	)
	ErrPickerNameIsRequired = errors.New("picker name is required")
)

// ClaimOrderCommand represents a picker taking ownership of a pending order.
// The picker name travels with the command because it is part of the
// order:claimed event payload shown to supervisors.
type ClaimOrderCommand struct { //nolint:recvcheck //using for validation
	orderID    kernel.UUID
	pickerID   kernel.UUID
	pickerName string

	guard guard.ConstructorGuard
}

// NewClaimOrderCommand creates a command for claiming an order.
// Validates that both identifiers are valid and the picker name is not empty.
func NewClaimOrderCommand(orderID, pickerID kernel.UUID, pickerName string) (ClaimOrderCommand, error) {
	cmd := ClaimOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setPickerID(pickerID),
		cmd.setPickerName(pickerName),
	); err != nil {
		return ClaimOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ClaimOrderCommand) Validate() error {
	return c.guard.Validate(ErrClaimOrderCommandIsNotConstructed)
}

// OrderID returns the order being claimed.
func (c ClaimOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// PickerID returns the claiming picker's identifier.
func (c ClaimOrderCommand) PickerID() kernel.UUID {
	return c.pickerID
}

// PickerName returns the claiming picker's display name.
func (c ClaimOrderCommand) PickerName() string {
	return c.pickerName
}

func (c *ClaimOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *ClaimOrderCommand) setPickerID(pickerID kernel.UUID) error {
	if err := pickerID.Validate(); err != nil {
		return err
	}
	c.pickerID = pickerID
	return nil
}

func (c *ClaimOrderCommand) setPickerName(pickerName string) error {
	if pickerName == "" {
		return ErrPickerNameIsRequired
	}
	c.pickerName = pickerName
	return nil
}
