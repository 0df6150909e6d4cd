package commands

import (
	"errors"

	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/pkg/guard"
)

var ErrSkipPickCommandIsNotConstructed = errors.New(
	"SkipPickCommand must be created via NewSkipPickCommand constructor",
)

// SkipPickCommand represents a worker abandoning a pick task, typically
// because the bin was empty or the item is damaged.
type SkipPickCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	taskID  kernel.UUID

	guard guard.ConstructorGuard
}

// NewSkipPickCommand creates a command for skipping a pick task.
func NewSkipPickCommand(orderID, taskID kernel.UUID) (SkipPickCommand, error) {
	cmd := SkipPickCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setTaskID(taskID),
	); err != nil {
		return SkipPickCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c SkipPickCommand) Validate() error {
	return c.guard.Validate(ErrSkipPickCommandIsNotConstructed)
}

// OrderID returns the order owning the task.
func (c SkipPickCommand) OrderID() kernel.UUID {
	return c.orderID
}

// TaskID returns the pick task being skipped.
func (c SkipPickCommand) TaskID() kernel.UUID {
	return c.taskID
}

func (c *SkipPickCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *SkipPickCommand) setTaskID(taskID kernel.UUID) error {
	if err := taskID.Validate(); err != nil {
		return err
	}
	c.taskID = taskID
	return nil
}
