package domain

import "time"

// TaskStatus represents the status of a task in the state machine.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusCancelled  TaskStatus = "CANCELLED"
)

// IsTerminal returns true if the status is terminal (no transitions allowed).
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusCancelled
}

// IsValid checks if the status is one of the allowed values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the state machine allows moving to next.
// Terminal statuses accept no further transitions.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	if s.IsTerminal() || s == next {
		return false
	}
	switch s {
	case TaskStatusPending:
		return next == TaskStatusInProgress || next == TaskStatusCompleted || next == TaskStatusCancelled
	case TaskStatusInProgress:
		return next == TaskStatusCompleted || next == TaskStatusCancelled
	default:
		return false
	}
}

// TaskPriority represents the priority level of a task.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
	TaskPriorityUrgent TaskPriority = "URGENT"
)

// IsValid checks if the priority is one of the allowed values.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	default:
		return false
	}
}

// RecurrenceType represents how a template task repeats.
type RecurrenceType string

const (
	RecurrenceDaily  RecurrenceType = "DAILY"
	RecurrenceWeekly RecurrenceType = "WEEKLY"
)

// IsValid checks if the recurrence type is one of the supported values.
func (r RecurrenceType) IsValid() bool {
	return r == RecurrenceDaily || r == RecurrenceWeekly
}

// TaskKind classifies a task as a recurring template, a generated instance,
// or a plain standalone task.
type TaskKind string

const (
	TaskKindTemplate   TaskKind = "template"
	TaskKindInstance   TaskKind = "instance"
	TaskKindStandalone TaskKind = "standalone"
)

// Task represents a tracked task. A task is exactly one of: a recurring
// template (IsRecurring set, no parent), an instance generated from a
// template (parent set, never itself recurring), or a standalone task.
type Task struct {
	ID             string
	Title          string
	Description    string
	Priority       TaskPriority
	Status         TaskStatus
	CategoryID     *string
	DueDate        *time.Time
	IsRecurring    bool
	RecurrenceType *RecurrenceType
	RecurrenceDays []int // weekday indices, 0=Sunday..6=Saturday; WEEKLY only
	ParentTaskID   *string
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Kind returns the task's classification.
func (t *Task) Kind() TaskKind {
	switch {
	case t.IsRecurring && t.ParentTaskID == nil:
		return TaskKindTemplate
	case t.ParentTaskID != nil:
		return TaskKindInstance
	default:
		return TaskKindStandalone
	}
}

// IsTemplate reports whether the task is a recurring template.
func (t *Task) IsTemplate() bool {
	return t.Kind() == TaskKindTemplate
}

// IsInstance reports whether the task was generated from a template.
func (t *Task) IsInstance() bool {
	return t.Kind() == TaskKindInstance
}

// ValidateShape rejects illegal field combinations: a recurring instance,
// recurrence without a type, or WEEKLY recurrence without selected days.
func (t *Task) ValidateShape() error {
	if t.IsRecurring && t.ParentTaskID != nil {
		return ErrRecurringInstance
	}
	if t.IsRecurring {
		if t.RecurrenceType == nil {
			return ErrRecurrenceTypeRequired
		}
		if !t.RecurrenceType.IsValid() {
			return ErrInvalidRecurrenceType
		}
		if *t.RecurrenceType == RecurrenceWeekly && len(t.RecurrenceDays) == 0 {
			return ErrRecurrenceDaysRequired
		}
	}
	return nil
}
