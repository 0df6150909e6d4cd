package queries

import (
	"context"
	"database/sql"

	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetActiveOrdersQueryHandler retrieves the workboard rows for every order
// that has not reached a terminal status. Reads the orders table directly,
// bypassing the aggregate, since no business rules apply to a listing.
type GetActiveOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetActiveOrdersQueryHandler creates a handler for active order queries.
// Requires a GORM database connection for query execution.
func NewGetActiveOrdersQueryHandler(db *gorm.DB) GetActiveOrdersQueryHandler {
	return GetActiveOrdersQueryHandler{db: db}
}

// Handle executes the query to retrieve all active orders.
// Results are sorted by order ID for consistent output.
func (h GetActiveOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetActiveOrdersQuery,
) ([]GetActiveOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders := make([]GetActiveOrdersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			o.id,
			o.status,
			o.progress,
			o.picker_id,
			COUNT(t.id)
		FROM orders o
		LEFT JOIN pick_tasks t ON t.order_id = o.id
		WHERE o.status NOT IN (?, ?, ?)
		GROUP BY o.id, o.status, o.progress, o.picker_id
		ORDER BY o.id
	`, order.Shipped, order.Cancelled, order.Backorder).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var orderResp GetActiveOrdersQueryResponse
		var id uuid.UUID
		var status int
		var progress int
		var pickerID sql.NullString
		var taskCount int

		err = rows.Scan(
			&id,
			&status,
			&progress,
			&pickerID,
			&taskCount,
		)
		if err != nil {
			return nil, err
		}

		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}

		orderResp.ID = orderID
		orderResp.Status = order.Status(status).String()
		orderResp.Progress = progress
		orderResp.TaskCount = taskCount
		if pickerID.Valid {
			orderResp.PickerID = pickerID.String
		}
		orders = append(orders, orderResp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
