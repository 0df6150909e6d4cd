package queries

import (
	"errors"

	"warehouse/internal/pkg/guard"
)

var (
	ErrGetZoneSummaryQueryIsNotConstructed = errors.New(
		"GetZoneSummaryQuery must be created via NewGetZoneSummaryQuery constructor",
	)
)

// GetZoneSummaryQuery retrieves per-zone workload numbers: how many pick
// tasks are still open in each zone and how many pickers are working there.
// Feeds the floor supervisor dashboard and the zone:updated broadcast.
type GetZoneSummaryQuery struct {
	guard guard.ConstructorGuard
}

// NewGetZoneSummaryQuery creates a query for per-zone workload numbers.
func NewGetZoneSummaryQuery() GetZoneSummaryQuery {
	return GetZoneSummaryQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetZoneSummaryQueryIsNotConstructed if validation fails.
func (q GetZoneSummaryQuery) Validate() error {
	return q.guard.Validate(ErrGetZoneSummaryQueryIsNotConstructed)
}

// GetZoneSummaryQueryResponse represents one zone's workload.
// TaskCount counts pick tasks that have not reached a terminal state;
// PickerCount counts distinct pickers holding orders with open tasks in
// the zone.
type GetZoneSummaryQueryResponse struct {
	ZoneID      string
	TaskCount   int
	PickerCount int
}
