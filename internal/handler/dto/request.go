package dto

import "time"

// CreateTaskRequest represents the request body for POST /tasks.
type CreateTaskRequest struct {
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Priority       string     `json:"priority,omitempty"`
	CategoryID     *string    `json:"category_id,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	IsRecurring    bool       `json:"is_recurring,omitempty"`
	RecurrenceType *string    `json:"recurrence_type,omitempty"`
	RecurrenceDays []int      `json:"recurrence_days,omitempty"`
}

// UpdateTaskRequest represents the request body for PUT /tasks/:id.
// Absent fields are left unchanged.
type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	Status      *string    `json:"status,omitempty"`
	CategoryID  *string    `json:"category_id,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// UpdateRecurringTaskRequest represents the request body for
// PUT /recurring-tasks/:id. Absent fields are left unchanged.
type UpdateRecurringTaskRequest struct {
	Title          *string `json:"title,omitempty"`
	Description    *string `json:"description,omitempty"`
	Priority       *string `json:"priority,omitempty"`
	CategoryID     *string `json:"category_id,omitempty"`
	RecurrenceType *string `json:"recurrence_type,omitempty"`
	RecurrenceDays []int   `json:"recurrence_days,omitempty"`
}

// CreateCategoryRequest represents the request body for POST /categories.
type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Color       string `json:"color,omitempty"`
	Description string `json:"description,omitempty"`
}
