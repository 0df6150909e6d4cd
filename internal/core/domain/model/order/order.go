package order

import (
	"errors"

	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not
	// created through NewOrder or RestoreOrder. This ensures all orders are
	// properly validated.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")

	// ErrTaskNotFound is returned when an order does not contain the
	// requested pick task.
	ErrTaskNotFound = errors.New("pick task not found on order")
)

// Order represents a customer fulfillment request in the warehouse. It is the
// aggregate root that owns the order's pick tasks and manages the lifecycle
// from intake through picking, packing, and shipment.
//
// Order follows these invariants:
//   - Must have a valid unique identifier
//   - Progress equals round-half-up(100 × completed tasks / all tasks) while
//     status is Picking, and 0 otherwise
//   - The order leaves Picking only once every task is terminal
//   - The lifecycle never regresses: a derived status is never earlier than
//     the current one
//   - Can only be created through NewOrder or RestoreOrder
//
// Mutation of status and progress happens only through the aggregate's
// methods; concurrent recomputation for the same order must be serialized by
// the caller (the command layer holds a per-order lock).
type Order struct {
	// id is the unique identifier for the order
	id kernel.UUID

	// pickerID is the worker who claimed the order (nil if unclaimed)
	pickerID *kernel.UUID

	// status represents the current state in the order lifecycle
	status Status

	// progress is the picking completion percentage, 0..100.
	// Non-zero only while status is Picking.
	progress int

	// tasks is the ordered collection of pick tasks for the order's line items
	tasks []*PickTask

	// isConstructed ensures the order was created via a constructor
	isConstructed bool
}

// NewOrder creates a new Order in Pending status owning the given pick tasks.
// An order may be created with no tasks; its picking progress is then
// undefined and reported as 0.
func NewOrder(id kernel.UUID, tasks []*PickTask) (*Order, error) {
	o := &Order{
		status:        Pending,
		isConstructed: true,
	}

	if err := o.setID(id); err != nil {
		return nil, err
	}

	for _, task := range tasks {
		if err := task.Validate(); err != nil {
			return nil, err
		}
	}
	o.tasks = tasks

	return o, nil
}

// RestoreOrder reconstructs an order from persistence.
// Status and progress are validated but transition rules are not re-applied.
func RestoreOrder(
	id kernel.UUID,
	pickerID *kernel.UUID,
	status Status,
	progress int,
	tasks []*PickTask,
) (*Order, error) {
	o := &Order{
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		status.Validate(),
	); err != nil {
		return nil, err
	}

	if progress < 0 || progress > 100 {
		return nil, errs.NewValueIsOutOfRangeError("progress", progress, 0, 100)
	}

	if pickerID != nil {
		if err := pickerID.Validate(); err != nil {
			return nil, err
		}
	}

	for _, task := range tasks {
		if err := task.Validate(); err != nil {
			return nil, err
		}
	}

	o.pickerID = pickerID
	o.status = status
	o.progress = progress
	o.tasks = tasks
	return o, nil
}

// Validate ensures the Order instance was properly constructed.
// This prevents bypassing validation by directly instantiating the struct.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// Status returns the current status of the order.
func (o *Order) Status() Status {
	return o.status
}

// Progress returns the picking completion percentage (0..100).
func (o *Order) Progress() int {
	return o.progress
}

// Picker returns the ID of the worker who claimed the order.
// Returns nil if the order is unclaimed.
func (o *Order) Picker() *kernel.UUID {
	return o.pickerID
}

// Tasks returns the order's pick tasks in line-item order.
func (o *Order) Tasks() []*PickTask {
	return o.tasks
}

// TaskByID returns the pick task with the given identifier.
// Returns ErrTaskNotFound if the order owns no such task.
func (o *Order) TaskByID(taskID kernel.UUID) (*PickTask, error) {
	for _, task := range o.tasks {
		if task.ID().IsEqual(taskID) {
			return task, nil
		}
	}
	return nil, ErrTaskNotFound
}

// TaskStatuses returns the multiset of task statuses, the input to progress
// derivation.
func (o *Order) TaskStatuses() []TaskStatus {
	statuses := make([]TaskStatus, len(o.tasks))
	for i, task := range o.tasks {
		statuses[i] = task.Status()
	}
	return statuses
}

// Claim assigns the order to a picker and moves it to Picking.
//
// Business rules:
//   - The picker ID must be valid
//   - The order must be in Pending status
func (o *Order) Claim(pickerID kernel.UUID) error {
	if err := pickerID.Validate(); err != nil {
		return err
	}

	newStatus, err := o.status.StartPicking()
	if err != nil {
		return err
	}

	o.status = newStatus
	o.pickerID = &pickerID
	return nil
}

// ApplyDerivedProgress installs the status and progress computed by the
// progress deriver. The new status must equal the current one or be a legal
// forward step; a derivation that would regress the lifecycle is rejected so
// that interleaved recomputations can never move an order backwards.
func (o *Order) ApplyDerivedProgress(newStatus Status, progress int) error {
	if err := newStatus.Validate(); err != nil {
		return err
	}

	if progress < 0 || progress > 100 {
		return errs.NewValueIsOutOfRangeError("progress", progress, 0, 100)
	}

	if newStatus != o.status && !o.status.IsBefore(newStatus) {
		return invalidTransition(o.status, "derive "+newStatus.String()+" from")
	}

	o.status = newStatus
	o.progress = progress
	return nil
}

// StartPacking moves a fully picked order to the packing station.
func (o *Order) StartPacking() error {
	newStatus, err := o.status.StartPacking()
	if err != nil {
		return err
	}

	o.status = newStatus
	o.progress = 0
	return nil
}

// FinishPacking marks packing complete; the order awaits carrier pickup.
func (o *Order) FinishPacking() error {
	newStatus, err := o.status.FinishPacking()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// Ship marks the order as handed to the carrier. This is the successful
// final state.
func (o *Order) Ship() error {
	newStatus, err := o.status.Ship()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// Cancel aborts the order. Only pending and picking orders may be cancelled.
func (o *Order) Cancel() error {
	newStatus, err := o.status.Cancel()
	if err != nil {
		return err
	}

	o.status = newStatus
	o.progress = 0
	return nil
}

// MarkBackordered parks the order until stock arrives. Triggered by external
// exception handling, never by progress derivation.
func (o *Order) MarkBackordered() error {
	newStatus, err := o.status.MarkBackordered()
	if err != nil {
		return err
	}

	o.status = newStatus
	o.progress = 0
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}
