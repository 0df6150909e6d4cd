package order

import (
	"fmt"

	"warehouse/internal/pkg/errs"
)

// TaskStatus represents the lifecycle state of a single pick task.
//
// State transitions:
//
//	TaskPending ──> TaskInProgress ──> TaskCompleted
//	     │                │
//	     └────────────────┴──────────> TaskSkipped
//
// TaskCompleted and TaskSkipped are terminal.
type TaskStatus int

const (
	// TaskUnknown represents an invalid or undefined task status.
	TaskUnknown TaskStatus = iota

	// TaskPending is the initial status of a task created when its order
	// enters picking.
	TaskPending

	// TaskInProgress indicates a picker has started retrieving the item.
	TaskInProgress

	// TaskCompleted indicates the full picked quantity was retrieved.
	TaskCompleted

	// TaskSkipped indicates the task was abandoned, typically because the
	// bin was empty or the item is damaged.
	TaskSkipped
)

// getTaskStatusStrings returns a map of TaskStatus values to their wire representations.
func getTaskStatusStrings() map[TaskStatus]string {
	return map[TaskStatus]string{
		TaskUnknown:    "Unknown",
		TaskPending:    "PENDING",
		TaskInProgress: "IN_PROGRESS",
		TaskCompleted:  "COMPLETED",
		TaskSkipped:    "SKIPPED",
	}
}

// Validate checks if the TaskStatus value is one of the defined states.
func (s TaskStatus) Validate() error {
	if s == TaskUnknown {
		return errs.NewValueIsInvalidErrorWithCause("task status is invalid",
			fmt.Errorf("%d is not a valid task status", s))
	}
	if _, ok := getTaskStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("task status is invalid",
			fmt.Errorf("%d is not a valid task status", s))
	}
	return nil
}

// String returns the wire representation of the task status.
func (s TaskStatus) String() string {
	if str, ok := getTaskStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsTerminal reports whether the task status allows no further transitions.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskCompleted || s == TaskSkipped
}

// Start transitions the task status to TaskInProgress.
//
// Valid transitions:
//   - TaskPending -> TaskInProgress
func (s TaskStatus) Start() (TaskStatus, error) {
	if s != TaskPending {
		return 0, invalidTaskTransition(s, "start")
	}
	return TaskInProgress, nil
}

// Complete transitions the task status to TaskCompleted.
//
// Valid transitions:
//   - TaskInProgress -> TaskCompleted
func (s TaskStatus) Complete() (TaskStatus, error) {
	if s != TaskInProgress {
		return 0, invalidTaskTransition(s, "complete")
	}
	return TaskCompleted, nil
}

// Skip transitions the task status to TaskSkipped.
//
// Valid transitions:
//   - TaskPending -> TaskSkipped
//   - TaskInProgress -> TaskSkipped
func (s TaskStatus) Skip() (TaskStatus, error) {
	if s != TaskPending && s != TaskInProgress {
		return 0, invalidTaskTransition(s, "skip")
	}
	return TaskSkipped, nil
}

func invalidTaskTransition(s TaskStatus, action string) error {
	return errs.NewValueIsInvalidErrorWithCause("task status is invalid",
		fmt.Errorf("%s is not a valid task status to %s", s.String(), action))
}
