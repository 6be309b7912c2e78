package domain

import "errors"

// Domain-specific errors for business logic validation.
var (
	// Task errors
	ErrTaskNotFound      = errors.New("task not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotTemplate       = errors.New("task is not a recurring template")

	// Category errors
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category name already exists")

	// Validation errors
	ErrInvalidStatus          = errors.New("invalid task status")
	ErrInvalidPriority        = errors.New("invalid task priority")
	ErrTitleRequired          = errors.New("title is required")
	ErrRecurringInstance      = errors.New("an instance cannot itself be recurring")
	ErrRecurrenceTypeRequired = errors.New("recurrence type is required for recurring tasks")
	ErrInvalidRecurrenceType  = errors.New("invalid recurrence type")
	ErrRecurrenceDaysRequired = errors.New("weekly recurrence requires at least one day")
)
