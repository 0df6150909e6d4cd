package queries

import (
	"context"

	"warehouse/internal/core/domain/model/order"

	"gorm.io/gorm"
)

// GetZoneSummaryQueryHandler aggregates open pick-task counts per zone.
type GetZoneSummaryQueryHandler struct {
	db *gorm.DB
}

// NewGetZoneSummaryQueryHandler creates a handler for zone workload queries.
// Requires a GORM database connection for query execution.
func NewGetZoneSummaryQueryHandler(db *gorm.DB) GetZoneSummaryQueryHandler {
	return GetZoneSummaryQueryHandler{db: db}
}

// Handle executes the query. Zones with no open tasks are absent from the
// result. Results are sorted by zone ID for consistent output.
func (h GetZoneSummaryQueryHandler) Handle(
	ctx context.Context,
	query GetZoneSummaryQuery,
) ([]GetZoneSummaryQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	zones := make([]GetZoneSummaryQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			t.zone_id,
			COUNT(t.id),
			COUNT(DISTINCT o.picker_id) FILTER (WHERE o.picker_id IS NOT NULL)
		FROM pick_tasks t
		JOIN orders o ON o.id = t.order_id
		WHERE t.status IN (?, ?)
		GROUP BY t.zone_id
		ORDER BY t.zone_id
	`, order.TaskPending, order.TaskInProgress).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var zone GetZoneSummaryQueryResponse

		err = rows.Scan(
			&zone.ZoneID,
			&zone.TaskCount,
			&zone.PickerCount,
		)
		if err != nil {
			return nil, err
		}

		zones = append(zones, zone)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return zones, nil
}
