package queries

import (
	"errors"

	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/pkg/guard"
)

var (
	ErrGetBackorderedOrdersQueryIsNotConstructed = errors.New(
		"GetBackorderedOrdersQuery must be created via NewGetBackorderedOrdersQuery constructor",
	)
)

// GetBackorderedOrdersQuery lists orders parked in the backorder branch.
// The schedule processor uses it to remind operators which orders are still
// waiting on stock.
type GetBackorderedOrdersQuery struct {
	guard guard.ConstructorGuard
}

// NewGetBackorderedOrdersQuery creates a query for backordered orders.
func NewGetBackorderedOrdersQuery() GetBackorderedOrdersQuery {
	return GetBackorderedOrdersQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetBackorderedOrdersQueryIsNotConstructed if validation fails.
func (q GetBackorderedOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetBackorderedOrdersQueryIsNotConstructed)
}

// GetBackorderedOrdersQueryResponse represents one backordered order and
// how many pick tasks it is waiting to fulfil.
type GetBackorderedOrdersQueryResponse struct {
	ID        kernel.UUID
	TaskCount int
}
