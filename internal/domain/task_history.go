package domain

import "time"

// HistoryAction represents the type of task history entry.
type HistoryAction string

const (
	HistoryActionCreated   HistoryAction = "CREATED"
	HistoryActionUpdated   HistoryAction = "UPDATED"
	HistoryActionCompleted HistoryAction = "COMPLETED"
	HistoryActionCancelled HistoryAction = "CANCELLED"
	HistoryActionDeleted   HistoryAction = "DELETED"
)

// TaskHistory represents an append-only audit log entry for a task. Entries
// are never mutated or deleted; they outlive the task row they reference.
type TaskHistory struct {
	ID          string
	TaskID      string
	Action      HistoryAction
	OldStatus   *TaskStatus
	NewStatus   *TaskStatus
	Description string
	CreatedAt   time.Time
}

// ActionForStatus returns the history action recorded for a transition to
// the given status.
func ActionForStatus(status TaskStatus) HistoryAction {
	switch status {
	case TaskStatusCompleted:
		return HistoryActionCompleted
	case TaskStatusCancelled:
		return HistoryActionCancelled
	default:
		return HistoryActionUpdated
	}
}
