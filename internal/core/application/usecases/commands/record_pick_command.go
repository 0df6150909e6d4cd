package commands

import (
	"errors"

	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/pkg/guard"
)

var ErrRecordPickCommandIsNotConstructed = errors.New(
	"RecordPickCommand must be created via NewRecordPickCommand constructor",
)

// RecordPickCommand represents a worker scanning items into a pick task.
// Carries the running picked total, not a delta, matching the scanner
// firmware's reporting model.
type RecordPickCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	taskID  kernel.UUID
	picked  kernel.Quantity

	guard guard.ConstructorGuard
}

// NewRecordPickCommand creates a command for recording pick progress.
func NewRecordPickCommand(orderID, taskID kernel.UUID, picked kernel.Quantity) (RecordPickCommand, error) {
	cmd := RecordPickCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setTaskID(taskID),
		cmd.setPicked(picked),
	); err != nil {
		return RecordPickCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c RecordPickCommand) Validate() error {
	return c.guard.Validate(ErrRecordPickCommandIsNotConstructed)
}

// OrderID returns the order owning the task.
func (c RecordPickCommand) OrderID() kernel.UUID {
	return c.orderID
}

// TaskID returns the pick task being updated.
func (c RecordPickCommand) TaskID() kernel.UUID {
	return c.taskID
}

// Picked returns the running picked quantity.
func (c RecordPickCommand) Picked() kernel.Quantity {
	return c.picked
}

func (c *RecordPickCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *RecordPickCommand) setTaskID(taskID kernel.UUID) error {
	if err := taskID.Validate(); err != nil {
		return err
	}
	c.taskID = taskID
	return nil
}

func (c *RecordPickCommand) setPicked(picked kernel.Quantity) error {
	if err := picked.Validate(); err != nil {
		return err
	}
	c.picked = picked
	return nil
}
