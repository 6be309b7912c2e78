package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kormoapp/kormo/internal/config"
	"github.com/kormoapp/kormo/internal/domain"
)

// TemplateStore is the task-storage surface the materializer depends on.
// *repository.TaskRepository satisfies it; tests use an in-memory fake.
type TemplateStore interface {
	ListTemplates(ctx context.Context) ([]*domain.Task, error)
	FindInstanceForDay(ctx context.Context, parentTaskID string, dayStart, dayEnd time.Time) (*domain.Task, error)
	CreateInstance(ctx context.Context, instance *domain.Task) (bool, error)
}

// HistoryAppender appends task history entries.
type HistoryAppender interface {
	Append(ctx context.Context, entry *domain.TaskHistory) error
}

// Materializer expands recurring templates into concrete dated task
// instances over a rolling horizon.
type Materializer struct {
	store       TemplateStore
	history     HistoryAppender
	horizonDays int
	now         func() time.Time
}

// NewMaterializer creates a new Materializer with the default horizon.
func NewMaterializer(store TemplateStore, history HistoryAppender) *Materializer {
	return &Materializer{
		store:       store,
		history:     history,
		horizonDays: config.GenerationHorizonDays,
		now:         time.Now,
	}
}

// TemplateResult is the outcome of expanding one template during a bulk run.
type TemplateResult struct {
	TemplateID string
	Created    int
	Err        error
}

// GenerateAll expands every active recurring template over the generation
// horizon starting today. A failure for one template is recorded in its
// result and does not stop the remaining templates; the returned error is
// non-nil only when the template listing itself fails.
func (m *Materializer) GenerateAll(ctx context.Context) ([]TemplateResult, error) {
	templates, err := m.store.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	start := StartOfDay(m.now())
	end := start.AddDate(0, 0, m.horizonDays)

	results := make([]TemplateResult, 0, len(templates))
	failed := 0
	for _, template := range templates {
		created, err := m.MaterializeTemplate(ctx, template, start, end)
		if err != nil {
			slog.Error("failed to materialize template",
				"template_id", template.ID,
				"error", err,
			)
			failed++
		}
		results = append(results, TemplateResult{
			TemplateID: template.ID,
			Created:    created,
			Err:        err,
		})
	}

	slog.Info("generated recurring instances",
		"templates", len(templates),
		"failed", failed,
	)

	return results, nil
}

// MaterializeHorizon expands a single template over the generation horizon
// starting today. Used right after a recurring template is created.
func (m *Materializer) MaterializeHorizon(ctx context.Context, template *domain.Task) (int, error) {
	start := StartOfDay(m.now())
	return m.MaterializeTemplate(ctx, template, start, start.AddDate(0, 0, m.horizonDays))
}

// MaterializeTemplate walks every calendar day from start to end inclusive,
// in ascending order, and creates the missing instance for each day the
// template is due. Days that already have an instance are skipped silently,
// so re-running over an overlapping range never creates duplicates. An
// inverted range is a no-op. Returns the number of instances created.
func (m *Materializer) MaterializeTemplate(ctx context.Context, template *domain.Task, start, end time.Time) (int, error) {
	if !template.IsTemplate() {
		return 0, fmt.Errorf("%w: task %s", domain.ErrNotTemplate, template.ID)
	}

	start = StartOfDay(start)
	end = StartOfDay(end)

	created := 0
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if !IsDueOn(template, day) {
			continue
		}

		n, err := m.materializeDay(ctx, template, day)
		if err != nil {
			return created, err
		}
		created += n
	}

	return created, nil
}

// materializeDay creates the instance for one due day unless it already
// exists. Returns 1 if an instance was created, 0 if the day already had one.
func (m *Materializer) materializeDay(ctx context.Context, template *domain.Task, day time.Time) (int, error) {
	_, err := m.store.FindInstanceForDay(ctx, template.ID, day, day.AddDate(0, 0, 1))
	if err == nil {
		return 0, nil
	}
	if !errors.Is(err, domain.ErrTaskNotFound) {
		return 0, fmt.Errorf("check existing instance: %w", err)
	}

	dueDate := day
	parentID := template.ID
	instance := &domain.Task{
		Title:        template.Title,
		Description:  template.Description,
		Priority:     template.Priority,
		Status:       domain.TaskStatusPending,
		CategoryID:   template.CategoryID,
		DueDate:      &dueDate,
		IsRecurring:  false,
		ParentTaskID: &parentID,
	}

	inserted, err := m.store.CreateInstance(ctx, instance)
	if err != nil {
		return 0, fmt.Errorf("create instance: %w", err)
	}
	if !inserted {
		// A concurrent run created the instance first; the unique index
		// on (parent, due day) turned this insert into a no-op.
		return 0, nil
	}

	newStatus := domain.TaskStatusPending
	entry := &domain.TaskHistory{
		TaskID:      template.ID,
		Action:      domain.HistoryActionCreated,
		NewStatus:   &newStatus,
		Description: fmt.Sprintf("Generated recurring instance for %s", day.Format("2006-01-02")),
	}
	if err := m.history.Append(ctx, entry); err != nil {
		return 0, fmt.Errorf("append history: %w", err)
	}

	slog.Debug("instance created",
		"template_id", template.ID,
		"instance_id", instance.ID,
		"due_date", day.Format("2006-01-02"),
	)

	return 1, nil
}
