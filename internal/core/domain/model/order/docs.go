// Package order provides domain entities and business logic for fulfillment
// order management in the warehouse. It implements the Order aggregate root
// with lifecycle management, pick tasks, and progress derivation inputs.
//
// The package includes:
//   - Order: The aggregate root owning identity, lifecycle status, picking
//     progress, and the collection of pick tasks
//   - PickTask: The unit of work for retrieving one line item from a bin
//   - Status: A state machine enforcing the order lifecycle
//     PENDING -> PICKING -> PICKED -> PACKING -> PACKED -> SHIPPED, with
//     CANCELLED and BACKORDER as externally triggered side branches
//   - TaskStatus: A state machine for pick tasks with COMPLETED and SKIPPED
//     as terminal states
//
// Key business rules:
//   - Progress equals round-half-up(100 × completed tasks / all tasks) while
//     the order is PICKING, and 0 otherwise
//   - An order leaves PICKING only once every task is terminal
//   - The lifecycle never regresses; derived statuses that would move an
//     order backwards are rejected
//   - Recomputation for one order must be serialized by the caller
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package order
