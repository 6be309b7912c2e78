package domain

import "time"

// Category represents a user-defined grouping for tasks.
type Category struct {
	ID          string
	Name        string
	Color       string
	Description string
	CreatedAt   time.Time
}
