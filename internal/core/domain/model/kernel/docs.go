// Package kernel contains shared value objects used across the fulfillment
// domain model.
//
// The package includes:
//   - UUID: An immutable identifier value object wrapping github.com/google/uuid
//   - Quantity: A validated non-negative item count used for ordered, picked,
//     and verified amounts on pick tasks
//
// All value objects follow the constructor pattern: the zero value is invalid
// and must be created through the provided factory functions, which enforce
// the value's invariants at construction time.
package kernel
