package commands

import (
	"errors"

	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/pkg/guard"
)

var ErrCompletePickCommandIsNotConstructed = errors.New(
	"CompletePickCommand must be created via NewCompletePickCommand constructor",
)

// CompletePickCommand represents a worker confirming a fully picked task.
type CompletePickCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	taskID  kernel.UUID

	guard guard.ConstructorGuard
}

// NewCompletePickCommand creates a command for completing a pick task.
func NewCompletePickCommand(orderID, taskID kernel.UUID) (CompletePickCommand, error) {
	cmd := CompletePickCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setTaskID(taskID),
	); err != nil {
		return CompletePickCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CompletePickCommand) Validate() error {
	return c.guard.Validate(ErrCompletePickCommandIsNotConstructed)
}

// OrderID returns the order owning the task.
func (c CompletePickCommand) OrderID() kernel.UUID {
	return c.orderID
}

// TaskID returns the pick task being completed.
func (c CompletePickCommand) TaskID() kernel.UUID {
	return c.taskID
}

func (c *CompletePickCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *CompletePickCommand) setTaskID(taskID kernel.UUID) error {
	if err := taskID.Validate(); err != nil {
		return err
	}
	c.taskID = taskID
	return nil
}
