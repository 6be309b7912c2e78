package service

import (
	"fmt"

	"github.com/kormoapp/kormo/internal/domain"
)

// ValidateTransition checks that the state machine allows moving the task to
// the new status. Terminal statuses reject all transitions.
func ValidateTransition(task *domain.Task, newStatus domain.TaskStatus) error {
	if !newStatus.IsValid() {
		return fmt.Errorf("%w: %s", domain.ErrInvalidStatus, newStatus)
	}
	if !task.Status.CanTransitionTo(newStatus) {
		return fmt.Errorf("%w: task %s cannot transition %s -> %s",
			domain.ErrInvalidTransition, task.ID, task.Status, newStatus)
	}
	return nil
}
