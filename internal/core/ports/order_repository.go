package ports

import (
	"context"

	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/order"
)

// OrderRepository defines persistence operations for the Order aggregate.
// Implementations must persist the aggregate together with its pick tasks.
type OrderRepository interface {
	// Add saves a new order. Returns an error if an order with the same
	// ID already exists.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update saves changes to an existing order and its tasks.
	// Returns an ObjectNotFoundError if the order does not exist.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get loads an order with its pick tasks.
	// Returns an ObjectNotFoundError if the order does not exist.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)
}
