package order

import (
	"errors"
	"fmt"

	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/pkg/errs"
)

var (
	// ErrTaskIsNotConstructed is returned when a PickTask instance was not
	// created through NewPickTask or RestorePickTask.
	ErrTaskIsNotConstructed = errors.New("PickTask must be created via NewPickTask or RestorePickTask")

	// ErrSKUIsRequired is returned when a task is created without a SKU.
	ErrSKUIsRequired = errors.New("sku is required")

	// ErrBinLocationIsRequired is returned when a task is created without a bin location.
	ErrBinLocationIsRequired = errors.New("bin location is required")

	// ErrZoneIsRequired is returned when a task is created without a zone.
	ErrZoneIsRequired = errors.New("zone is required")
)

// PickTask is the unit of work representing retrieval of one line item from a
// bin location. Each task belongs to exactly one Order and tracks the ordered,
// picked, and verified quantities alongside its lifecycle status.
//
// PickTask follows these invariants:
//   - Must have a valid unique identifier, SKU, bin location, and zone
//   - Picked quantity never exceeds the ordered quantity
//   - Status transitions follow the TaskStatus state machine
//   - Can only be created through NewPickTask or RestorePickTask
type PickTask struct {
	id          kernel.UUID
	sku         string
	binLocation string
	zoneID      string
	ordered     kernel.Quantity
	picked      kernel.Quantity
	verified    kernel.Quantity

	status TaskStatus

	isConstructed bool
}

// NewPickTask creates a pick task in TaskPending status with zero picked and
// verified quantities. Called when an order enters picking and its line items
// are turned into work units.
func NewPickTask(id kernel.UUID, sku, binLocation, zoneID string, ordered kernel.Quantity) (*PickTask, error) {
	zero, err := kernel.NewQuantity(0)
	if err != nil {
		return nil, err
	}

	task := &PickTask{
		status:        TaskPending,
		picked:        zero,
		verified:      zero,
		isConstructed: true,
	}

	if err := errors.Join(
		task.setID(id),
		task.setSKU(sku),
		task.setBinLocation(binLocation),
		task.setZoneID(zoneID),
		task.setOrdered(ordered),
	); err != nil {
		return nil, err
	}

	return task, nil
}

// RestorePickTask reconstructs a pick task from persistence without replaying
// its transition history. Quantities and status are validated but the
// transition rules are not re-applied, because a stored task may already be in
// any legal state.
func RestorePickTask(
	id kernel.UUID,
	sku, binLocation, zoneID string,
	ordered, picked, verified kernel.Quantity,
	status TaskStatus,
) (*PickTask, error) {
	task := &PickTask{
		isConstructed: true,
	}

	if err := errors.Join(
		task.setID(id),
		task.setSKU(sku),
		task.setBinLocation(binLocation),
		task.setZoneID(zoneID),
		task.setOrdered(ordered),
		status.Validate(),
		picked.Validate(),
		verified.Validate(),
	); err != nil {
		return nil, err
	}

	if picked.Value() > ordered.Value() {
		return nil, errs.NewValueIsOutOfRangeError("picked quantity", picked.Value(), 0, ordered.Value())
	}

	task.picked = picked
	task.verified = verified
	task.status = status
	return task, nil
}

// Validate ensures the PickTask instance was properly constructed.
func (t *PickTask) Validate() error {
	if t == nil || !t.isConstructed {
		return ErrTaskIsNotConstructed
	}
	return nil
}

// ID returns the task's unique identifier.
func (t *PickTask) ID() kernel.UUID {
	return t.id
}

// SKU returns the stock-keeping unit the task retrieves.
func (t *PickTask) SKU() string {
	return t.sku
}

// BinLocation returns the warehouse bin the item is picked from.
func (t *PickTask) BinLocation() string {
	return t.binLocation
}

// ZoneID returns the warehouse zone containing the bin.
func (t *PickTask) ZoneID() string {
	return t.zoneID
}

// Ordered returns the quantity the customer ordered.
func (t *PickTask) Ordered() kernel.Quantity {
	return t.ordered
}

// Picked returns the quantity retrieved so far.
func (t *PickTask) Picked() kernel.Quantity {
	return t.picked
}

// Verified returns the quantity confirmed at the packing station.
func (t *PickTask) Verified() kernel.Quantity {
	return t.verified
}

// Status returns the current task status.
func (t *PickTask) Status() TaskStatus {
	return t.status
}

// RecordPick updates the picked quantity. A pending task is started
// implicitly, because the first bin scan both starts the task and records
// progress. The picked quantity may not exceed the ordered quantity and a
// terminal task rejects further picks.
func (t *PickTask) RecordPick(picked kernel.Quantity) error {
	if err := picked.Validate(); err != nil {
		return err
	}

	if picked.Value() > t.ordered.Value() {
		return errs.NewValueIsOutOfRangeError("picked quantity", picked.Value(), 0, t.ordered.Value())
	}

	if t.status == TaskPending {
		newStatus, err := t.status.Start()
		if err != nil {
			return err
		}
		t.status = newStatus
	}

	if t.status != TaskInProgress {
		return invalidTaskTransition(t.status, "record a pick for")
	}

	t.picked = picked
	return nil
}

// Complete marks the task as finished. The full ordered quantity must have
// been picked; short picks are resolved with Skip.
func (t *PickTask) Complete() error {
	if t.picked.Value() != t.ordered.Value() {
		return errs.NewValueIsInvalidErrorWithCause("picked quantity",
			fmt.Errorf("picked %d of %d ordered", t.picked.Value(), t.ordered.Value()))
	}

	newStatus, err := t.status.Complete()
	if err != nil {
		return err
	}

	t.status = newStatus
	return nil
}

// Skip abandons the task. Whatever quantity was picked so far is kept for the
// exception report.
func (t *PickTask) Skip() error {
	newStatus, err := t.status.Skip()
	if err != nil {
		return err
	}

	t.status = newStatus
	return nil
}

// Verify records the quantity confirmed at the packing station.
func (t *PickTask) Verify(verified kernel.Quantity) error {
	if err := verified.Validate(); err != nil {
		return err
	}

	if verified.Value() > t.picked.Value() {
		return errs.NewValueIsOutOfRangeError("verified quantity", verified.Value(), 0, t.picked.Value())
	}

	t.verified = verified
	return nil
}

func (t *PickTask) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	t.id = id
	return nil
}

func (t *PickTask) setSKU(sku string) error {
	if sku == "" {
		return ErrSKUIsRequired
	}
	t.sku = sku
	return nil
}

func (t *PickTask) setBinLocation(binLocation string) error {
	if binLocation == "" {
		return ErrBinLocationIsRequired
	}
	t.binLocation = binLocation
	return nil
}

func (t *PickTask) setZoneID(zoneID string) error {
	if zoneID == "" {
		return ErrZoneIsRequired
	}
	t.zoneID = zoneID
	return nil
}

func (t *PickTask) setOrdered(ordered kernel.Quantity) error {
	if err := ordered.Validate(); err != nil {
		return err
	}
	if ordered.Value() == 0 {
		return errs.NewValueIsInvalidErrorWithCause("ordered quantity",
			fmt.Errorf("a pick task must order at least one unit"))
	}
	t.ordered = ordered
	return nil
}
