package kernel

import (
	"fmt"

	"warehouse/internal/pkg/errs"
	"warehouse/internal/pkg/guard"
)

// MaxQuantity is the largest item count a single pick task line can carry.
// Larger orders are split into multiple tasks upstream.
const MaxQuantity = 10000

// ErrQuantityIsNotConstructed is returned when attempting to use an improperly
// initialized Quantity. Quantities must be created with NewQuantity.
var ErrQuantityIsNotConstructed = errs.NewValueIsRequiredError(
	"quantity must be created via the NewQuantity constructor")

// Quantity represents a validated non-negative item count.
// It is an immutable value object used for the ordered, picked, and verified
// amounts on a pick task. The zero value is invalid and fails validation;
// use NewQuantity to create instances.
//
// Example:
//
//	qty, err := kernel.NewQuantity(12)
//	if err != nil {
//	    // Handle validation error
//	}
//	fmt.Printf("picked %d units", qty.Value())
type Quantity struct { //nolint:recvcheck //using for validation
	value int
	guard guard.ConstructorGuard
}

// NewQuantity creates a Quantity with the given item count.
// The count must be within [0..MaxQuantity]; zero is a legal count because a
// freshly created pick task has picked no units yet.
func NewQuantity(value int) (Quantity, error) {
	q := Quantity{
		guard: guard.NewConstructorGuard(),
	}

	if value < 0 || value > MaxQuantity {
		return Quantity{}, errs.NewValueIsOutOfRangeError("quantity", value, 0, MaxQuantity)
	}
	q.value = value

	return q, nil
}

// Value returns the item count.
func (q Quantity) Value() int {
	return q.value
}

// Add returns a new Quantity increased by delta.
// Returns an error if the result leaves the valid range.
func (q Quantity) Add(delta int) (Quantity, error) {
	return NewQuantity(q.value + delta)
}

// IsEqual reports whether two quantities hold the same count.
func (q Quantity) IsEqual(other Quantity) bool {
	return q.value == other.value
}

// String returns the decimal representation of the count.
func (q Quantity) String() string {
	return fmt.Sprintf("%d", q.value)
}

// Validate ensures the Quantity was created via NewQuantity.
func (q Quantity) Validate() error {
	return q.guard.Validate(ErrQuantityIsNotConstructed)
}
