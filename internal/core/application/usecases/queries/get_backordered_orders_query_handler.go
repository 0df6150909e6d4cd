package queries

import (
	"context"

	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetBackorderedOrdersQueryHandler lists orders waiting on stock.
type GetBackorderedOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetBackorderedOrdersQueryHandler creates a handler for backorder queries.
// Requires a GORM database connection for query execution.
func NewGetBackorderedOrdersQueryHandler(db *gorm.DB) GetBackorderedOrdersQueryHandler {
	return GetBackorderedOrdersQueryHandler{db: db}
}

// Handle executes the query. Results are sorted by order ID for consistent
// output.
func (h GetBackorderedOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetBackorderedOrdersQuery,
) ([]GetBackorderedOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders := make([]GetBackorderedOrdersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			o.id,
			COUNT(t.id)
		FROM orders o
		LEFT JOIN pick_tasks t ON t.order_id = o.id
		WHERE o.status = ?
		GROUP BY o.id
		ORDER BY o.id
	`, order.Backorder).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id        uuid.UUID
			taskCount int
		)

		if err = rows.Scan(&id, &taskCount); err != nil {
			return nil, err
		}

		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}

		orders = append(orders, GetBackorderedOrdersQueryResponse{
			ID:        orderID,
			TaskCount: taskCount,
		})
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
