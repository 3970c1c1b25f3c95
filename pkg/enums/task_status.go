package enums

import "fmt"

// TaskStatus maps to the task_status enum in Postgres.
type TaskStatus string

const (
	TaskStatusOpen       TaskStatus = "OPEN"
	TaskStatusClaimed    TaskStatus = "CLAIMED"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusSubmitted  TaskStatus = "SUBMITTED"
	TaskStatusInReview   TaskStatus = "IN_REVIEW"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusRejected   TaskStatus = "REJECTED"
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusCancelled  TaskStatus = "CANCELLED"
)

var validTaskStatuses = []TaskStatus{
	TaskStatusOpen,
	TaskStatusClaimed,
	TaskStatusInProgress,
	TaskStatusSubmitted,
	TaskStatusInReview,
	TaskStatusCompleted,
	TaskStatusRejected,
	TaskStatusPending,
	TaskStatusCancelled,
}

// IsValid reports whether the value matches the canonical task status enum.
func (s TaskStatus) IsValid() bool {
	for _, candidate := range validTaskStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is allowed from this status.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusRejected || s == TaskStatusCancelled
}

// ParseTaskStatus converts raw input into TaskStatus.
func ParseTaskStatus(value string) (TaskStatus, error) {
	for _, candidate := range validTaskStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid task status %q", value)
}
