package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kormoapp/kormo/internal/domain"
	"github.com/kormoapp/kormo/internal/repository"
)

// PropagatorStore is the task-storage surface the propagator depends on.
// *repository.TaskRepository satisfies it; tests use an in-memory fake.
type PropagatorStore interface {
	GetByID(ctx context.Context, taskID string) (*domain.Task, error)
	UpdateTask(ctx context.Context, taskID string, params repository.UpdateTaskParams) (*domain.Task, error)
	BulkUpdateInstances(ctx context.Context, parentTaskID string, content repository.InstanceContent, from time.Time) (int64, error)
	DeleteByParent(ctx context.Context, parentTaskID string) (int64, error)
	DeleteTask(ctx context.Context, taskID string) error
}

// Propagator applies edits and deletions made to a recurring template to its
// existing instances.
type Propagator struct {
	store   PropagatorStore
	history HistoryAppender
	now     func() time.Time
}

// NewPropagator creates a new Propagator.
func NewPropagator(store PropagatorStore, history HistoryAppender) *Propagator {
	return &Propagator{
		store:   store,
		history: history,
		now:     time.Now,
	}
}

// UpdateRecurringParams holds the optional fields for a template update.
// Nil fields are left unchanged.
type UpdateRecurringParams struct {
	Title          *string
	Description    *string
	Priority       *domain.TaskPriority
	CategoryID     *string
	RecurrenceType *domain.RecurrenceType
	RecurrenceDays []int
}

// UpdateRecurringTask writes the given fields to the template, then copies
// the content fields (title, description, priority, category) onto every
// instance that is due today or later and not COMPLETED. Past-dated and
// completed instances are never altered; recurrence fields are never copied
// onto instances. Validation failures are rejected before any write.
func (p *Propagator) UpdateRecurringTask(ctx context.Context, templateID string, params UpdateRecurringParams) (*domain.Task, error) {
	template, err := p.store.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if !template.IsTemplate() {
		return nil, fmt.Errorf("%w: task %s", domain.ErrNotTemplate, templateID)
	}

	if err := validateRecurrenceChange(template, params); err != nil {
		return nil, err
	}

	updated, err := p.store.UpdateTask(ctx, templateID, repository.UpdateTaskParams{
		Title:          params.Title,
		Description:    params.Description,
		Priority:       params.Priority,
		CategoryID:     params.CategoryID,
		RecurrenceType: params.RecurrenceType,
		RecurrenceDays: params.RecurrenceDays,
	})
	if err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}

	count, err := p.store.BulkUpdateInstances(ctx, templateID, repository.InstanceContent{
		Title:       updated.Title,
		Description: updated.Description,
		Priority:    updated.Priority,
		CategoryID:  updated.CategoryID,
	}, StartOfDay(p.now()))
	if err != nil {
		return nil, fmt.Errorf("propagate to instances: %w", err)
	}

	slog.Info("recurring template updated",
		"template_id", templateID,
		"instances_updated", count,
	)

	return updated, nil
}

// DeleteRecurringTask removes every instance of the template first, so no
// instance is left pointing at a deleted parent, then deletes the template
// itself with the usual history-then-delete sequence.
func (p *Propagator) DeleteRecurringTask(ctx context.Context, templateID string) error {
	template, err := p.store.GetByID(ctx, templateID)
	if err != nil {
		return err
	}
	if !template.IsTemplate() {
		return fmt.Errorf("%w: task %s", domain.ErrNotTemplate, templateID)
	}

	deleted, err := p.store.DeleteByParent(ctx, templateID)
	if err != nil {
		return fmt.Errorf("delete instances: %w", err)
	}

	oldStatus := template.Status
	entry := &domain.TaskHistory{
		TaskID:      templateID,
		Action:      domain.HistoryActionDeleted,
		OldStatus:   &oldStatus,
		Description: "Recurring template deleted",
	}
	if err := p.history.Append(ctx, entry); err != nil {
		return fmt.Errorf("append history: %w", err)
	}

	if err := p.store.DeleteTask(ctx, templateID); err != nil {
		return fmt.Errorf("delete template: %w", err)
	}

	slog.Info("recurring template deleted",
		"template_id", templateID,
		"instances_deleted", deleted,
	)

	return nil
}

// validateRecurrenceChange rejects updates that would leave the template
// with an invalid recurrence configuration.
func validateRecurrenceChange(template *domain.Task, params UpdateRecurringParams) error {
	recurrenceType := template.RecurrenceType
	if params.RecurrenceType != nil {
		recurrenceType = params.RecurrenceType
	}
	if recurrenceType == nil {
		return domain.ErrRecurrenceTypeRequired
	}
	if !recurrenceType.IsValid() {
		return fmt.Errorf("%w: %s", domain.ErrInvalidRecurrenceType, *recurrenceType)
	}

	days := template.RecurrenceDays
	if params.RecurrenceDays != nil {
		days = params.RecurrenceDays
	}
	if *recurrenceType == domain.RecurrenceWeekly && len(days) == 0 {
		return domain.ErrRecurrenceDaysRequired
	}

	return nil
}
