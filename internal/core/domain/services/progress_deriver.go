package services

import (
	"warehouse/internal/core/domain/model/order"
)

// ProgressDeriver is a domain service that derives an order's status and
// completion percentage from the multiset of its task statuses.
//
// Key responsibilities:
//   - Computing the picking completion percentage with round-half-up rounding
//   - Advancing PICKING to PICKED once every task is terminal and none were
//     skipped
//   - Never regressing the lifecycle and never entering the CANCELLED or
//     BACKORDER branches, which belong to external exception handling
//
// Derivation is pure: the same inputs always produce the same outputs. The
// caller is responsible for serializing recomputation per order (the command
// layer holds a per-order lock) so concurrent task completions cannot
// interleave into an inconsistent result.
type ProgressDeriver struct{}

// NewProgressDeriver creates a new ProgressDeriver instance.
func NewProgressDeriver() ProgressDeriver {
	return ProgressDeriver{}
}

// ProgressPercent computes round-half-up(100 × completed / total) in pure
// integer arithmetic: floor(100c/t + 1/2) = floor((200c + t) / 2t).
// Returns 0 when total is 0, because an order with no tasks has undefined
// picking progress.
func ProgressPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*completed + total) / (2 * total)
}

// Derive computes the order status and progress implied by the task statuses.
//
// Rules:
//   - An order with no tasks keeps its current status with progress 0
//   - Progress is non-zero only while the order is PICKING
//   - While PICKING, progress counts COMPLETED tasks only
//   - Once every task is terminal and none were skipped, PICKING advances
//     to PICKED
//   - If every task is terminal but some were skipped, the order stays in
//     PICKING with its partial progress; exception handling decides between
//     cancellation and backorder
//   - Statuses outside PICKING pass through unchanged with progress 0
func (ProgressDeriver) Derive(current order.Status, taskStatuses []order.TaskStatus) (order.Status, int) {
	total := len(taskStatuses)
	if total == 0 || current != order.Picking {
		return current, 0
	}

	completed := 0
	terminal := 0
	for _, ts := range taskStatuses {
		if ts == order.TaskCompleted {
			completed++
		}
		if ts.IsTerminal() {
			terminal++
		}
	}

	if terminal == total && completed == total {
		return order.Picked, 0
	}

	return order.Picking, ProgressPercent(completed, total)
}

// Recompute derives the order's status and progress from its own tasks and
// installs the result on the aggregate. Returns an error if the derived
// status would be an illegal transition.
func (d ProgressDeriver) Recompute(o *order.Order) error {
	if err := o.Validate(); err != nil {
		return err
	}

	status, progress := d.Derive(o.Status(), o.TaskStatuses())
	return o.ApplyDerivedProgress(status, progress)
}
