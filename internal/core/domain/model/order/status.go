package order

import (
	"fmt"

	"warehouse/internal/pkg/errs"
)

// Status represents the lifecycle state of a fulfillment order.
// It implements a state machine with defined transitions to ensure orders
// follow the warehouse workflow.
//
// State transitions:
//
//	Pending ──> Picking ──> Picked ──> Packing ──> Packed ──> Shipped
//	   │           │
//	   ├───────────┼──> Cancelled
//	   └───────────┴──> Backorder
//
// Cancelled and Backorder are alternate terminal branches reachable only from
// Pending and Picking; they are triggered by external exception handling, not
// by progress derivation.
//
// Status is a value object that validates state transitions and provides
// string representations for persistence and display.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status of a newly received order.
	Pending

	// Picking indicates workers are actively retrieving the order's items.
	Picking

	// Picked indicates every pick task finished and none were skipped.
	Picked

	// Packing indicates the picked items are being packed for shipment.
	Packing

	// Packed indicates packing finished and the order awaits carrier pickup.
	Packed

	// Shipped is the successful final state.
	Shipped

	// Cancelled is a terminal branch entered when an order is cancelled
	// before completion.
	Cancelled

	// Backorder is a terminal branch entered when stock cannot cover
	// the order's items.
	Backorder
)

// getStatusStrings returns a map of Status values to their string representations.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "Unknown",
		Pending:   "PENDING",
		Picking:   "PICKING",
		Picked:    "PICKED",
		Packing:   "PACKING",
		Packed:    "PACKED",
		Shipped:   "SHIPPED",
		Cancelled: "CANCELLED",
		Backorder: "BACKORDER",
	}
}

// statusRanks orders the happy-path statuses along the lifecycle so that
// derivation can enforce monotonic progression. Cancelled and Backorder are
// side branches and carry no rank.
func statusRanks() map[Status]int {
	return map[Status]int{
		Pending: 0,
		Picking: 1,
		Picked:  2,
		Packing: 3,
		Packed:  4,
		Shipped: 5,
	}
}

// Validate checks if the Status value is one of the defined lifecycle states.
// Unknown (0) and any other values are invalid.
func (s Status) Validate() error {
	if s == Unknown {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid",
			fmt.Errorf("%d is not a valid status", s))
	}
	if _, ok := getStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid",
			fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire representation of the status ("PENDING", "PICKING", ...).
// Implements fmt.Stringer and is safe to call on any value, including invalid ones.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// StatusFromString parses the wire representation back into a Status.
// Returns an error for unrecognized strings.
func StatusFromString(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if str == s && status != Unknown {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid",
		fmt.Errorf("%q is not a valid status", s))
}

// IsTerminal reports whether the status allows no further transitions.
func (s Status) IsTerminal() bool {
	return s == Shipped || s == Cancelled || s == Backorder
}

// IsBefore reports whether s precedes other on the happy path.
// Statuses off the happy path (Cancelled, Backorder, Unknown) are never
// considered before anything, so derivation can never regress into or out
// of a side branch.
func (s Status) IsBefore(other Status) bool {
	ranks := statusRanks()
	sr, okS := ranks[s]
	or, okO := ranks[other]
	return okS && okO && sr < or
}

// StartPicking transitions the status to Picking.
//
// Valid transitions:
//   - Pending -> Picking (first task dispatched)
func (s Status) StartPicking() (Status, error) {
	if s != Pending {
		return 0, invalidTransition(s, "start picking")
	}
	return Picking, nil
}

// FinishPicking transitions the status to Picked.
//
// Valid transitions:
//   - Picking -> Picked (every task terminal, none skipped)
func (s Status) FinishPicking() (Status, error) {
	if s != Picking {
		return 0, invalidTransition(s, "finish picking")
	}
	return Picked, nil
}

// StartPacking transitions the status to Packing.
//
// Valid transitions:
//   - Picked -> Packing
func (s Status) StartPacking() (Status, error) {
	if s != Picked {
		return 0, invalidTransition(s, "start packing")
	}
	return Packing, nil
}

// FinishPacking transitions the status to Packed.
//
// Valid transitions:
//   - Packing -> Packed
func (s Status) FinishPacking() (Status, error) {
	if s != Packing {
		return 0, invalidTransition(s, "finish packing")
	}
	return Packed, nil
}

// Ship transitions the status to Shipped, the successful final state.
//
// Valid transitions:
//   - Packed -> Shipped
func (s Status) Ship() (Status, error) {
	if s != Packed {
		return 0, invalidTransition(s, "ship")
	}
	return Shipped, nil
}

// Cancel transitions the status to Cancelled.
//
// Valid transitions:
//   - Pending -> Cancelled
//   - Picking -> Cancelled
//
// Orders past picking have committed packing work and cannot be cancelled
// through this path.
func (s Status) Cancel() (Status, error) {
	if s != Pending && s != Picking {
		return 0, invalidTransition(s, "cancel")
	}
	return Cancelled, nil
}

// MarkBackordered transitions the status to Backorder.
//
// Valid transitions:
//   - Pending -> Backorder
//   - Picking -> Backorder
func (s Status) MarkBackordered() (Status, error) {
	if s != Pending && s != Picking {
		return 0, invalidTransition(s, "backorder")
	}
	return Backorder, nil
}

func invalidTransition(s Status, action string) error {
	return errs.NewValueIsInvalidErrorWithCause("status is invalid",
		fmt.Errorf("%s is not a valid status to %s", s.String(), action))
}
