package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kormoapp/kormo/internal/domain"
	"github.com/kormoapp/kormo/internal/repository"
)

// TaskService coordinates task CRUD, status transitions, and the recurring
// instance generation triggered by template creation.
type TaskService struct {
	pool         *pgxpool.Pool
	taskRepo     *repository.TaskRepository
	historyRepo  *repository.TaskHistoryRepository
	categoryRepo *repository.CategoryRepository
	materializer *Materializer
}

// NewTaskService creates a new TaskService.
func NewTaskService(
	pool *pgxpool.Pool,
	taskRepo *repository.TaskRepository,
	historyRepo *repository.TaskHistoryRepository,
	categoryRepo *repository.CategoryRepository,
	materializer *Materializer,
) *TaskService {
	return &TaskService{
		pool:         pool,
		taskRepo:     taskRepo,
		historyRepo:  historyRepo,
		categoryRepo: categoryRepo,
		materializer: materializer,
	}
}

// createHistoryAndCommit persists a history entry within the transaction, then commits.
func (s *TaskService) createHistoryAndCommit(ctx context.Context, tx pgx.Tx, entry *domain.TaskHistory) error {
	if err := s.historyRepo.Create(ctx, tx, entry); err != nil {
		return fmt.Errorf("create history: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// rollback rolls back a transaction, logging unexpected failures.
func rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && err.Error() != "tx is closed" {
		slog.Error("failed to rollback transaction", "error", err)
	}
}

// CreateTaskParams holds the fields for creating a task.
type CreateTaskParams struct {
	Title          string
	Description    string
	Priority       domain.TaskPriority
	CategoryID     *string
	DueDate        *time.Time
	IsRecurring    bool
	RecurrenceType *domain.RecurrenceType
	RecurrenceDays []int
}

// CreateTask creates a task and its CREATED history entry. When the task is
// a recurring template, its first horizon of instances is generated
// synchronously; a failure there is logged and does not fail the creation —
// the next bulk run backfills the missing instances.
func (s *TaskService) CreateTask(ctx context.Context, params CreateTaskParams) (*domain.Task, error) {
	if params.Title == "" {
		return nil, domain.ErrTitleRequired
	}

	task := &domain.Task{
		Title:          params.Title,
		Description:    params.Description,
		Priority:       params.Priority,
		Status:         domain.TaskStatusPending,
		CategoryID:     params.CategoryID,
		DueDate:        params.DueDate,
		IsRecurring:    params.IsRecurring,
		RecurrenceType: params.RecurrenceType,
		RecurrenceDays: params.RecurrenceDays,
	}
	if err := task.ValidateShape(); err != nil {
		return nil, err
	}

	if params.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *params.CategoryID); err != nil {
			return nil, err
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	task, err = s.taskRepo.Create(ctx, tx, task)
	if err != nil {
		return nil, err
	}

	description := "Task created"
	if task.IsRecurring {
		description = "Recurring template created"
	}
	newStatus := task.Status
	entry := &domain.TaskHistory{
		TaskID:      task.ID,
		Action:      domain.HistoryActionCreated,
		NewStatus:   &newStatus,
		Description: description,
	}
	if err := s.createHistoryAndCommit(ctx, tx, entry); err != nil {
		return nil, err
	}

	slog.Info("task created",
		"task_id", task.ID,
		"kind", task.Kind(),
	)

	if task.IsTemplate() {
		created, err := s.materializer.MaterializeHorizon(ctx, task)
		if err != nil {
			// Non-fatal: the template exists; instances are backfilled by
			// the next bulk generation run.
			slog.Error("failed to generate initial instances",
				"template_id", task.ID,
				"error", err,
			)
		} else {
			slog.Info("initial instances generated",
				"template_id", task.ID,
				"created", created,
			)
		}
	}

	return task, nil
}

// GetTask retrieves a task along with its history entries, newest first.
func (s *TaskService) GetTask(ctx context.Context, taskID string) (*domain.Task, []*domain.TaskHistory, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}

	histories, err := s.historyRepo.GetByTaskID(ctx, taskID)
	if err != nil {
		return nil, nil, fmt.Errorf("get task history: %w", err)
	}

	return task, histories, nil
}

// ListTasks retrieves tasks matching the filters.
func (s *TaskService) ListTasks(ctx context.Context, filters repository.TaskListFilters) ([]*domain.Task, error) {
	return s.taskRepo.List(ctx, filters)
}

// UpdateTaskParams holds the optional fields for a task update. Nil fields
// are left unchanged.
type UpdateTaskParams struct {
	Title       *string
	Description *string
	Priority    *domain.TaskPriority
	Status      *domain.TaskStatus
	CategoryID  *string
	DueDate     *time.Time
}

// UpdateTask applies the given fields to a task. A status change is checked
// against the state machine and recorded in history; transitioning to
// COMPLETED stamps completed_at and any other status clears it.
func (s *TaskService) UpdateTask(ctx context.Context, taskID string, params UpdateTaskParams) (*domain.Task, error) {
	if params.Priority != nil && !params.Priority.IsValid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidPriority, *params.Priority)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	current, err := s.taskRepo.GetByIDForUpdate(ctx, tx, taskID)
	if err != nil {
		return nil, err
	}

	repoParams := repository.UpdateTaskParams{
		Title:       params.Title,
		Description: params.Description,
		Priority:    params.Priority,
		CategoryID:  params.CategoryID,
		DueDate:     params.DueDate,
	}

	statusChanged := params.Status != nil && *params.Status != current.Status
	if statusChanged {
		if err := ValidateTransition(current, *params.Status); err != nil {
			return nil, err
		}
		repoParams.Status = params.Status
		if *params.Status == domain.TaskStatusCompleted {
			completedAt := time.Now()
			repoParams.CompletedAt = &completedAt
		} else {
			repoParams.ClearCompletedAt = true
		}
	}

	updated, err := s.taskRepo.Update(ctx, tx, taskID, repoParams)
	if err != nil {
		return nil, err
	}

	if statusChanged {
		oldStatus := current.Status
		newStatus := *params.Status
		entry := &domain.TaskHistory{
			TaskID:      taskID,
			Action:      domain.ActionForStatus(newStatus),
			OldStatus:   &oldStatus,
			NewStatus:   &newStatus,
			Description: fmt.Sprintf("Status changed: %s -> %s", oldStatus, newStatus),
		}
		if err := s.createHistoryAndCommit(ctx, tx, entry); err != nil {
			return nil, err
		}

		slog.Info("task status changed",
			"task_id", taskID,
			"old_status", oldStatus,
			"new_status", newStatus,
		)

		return updated, nil
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return updated, nil
}

// DeleteTask writes the final DELETED history entry, then removes the task.
// History has no foreign key on tasks, so the entry survives the deletion.
func (s *TaskService) DeleteTask(ctx context.Context, taskID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	current, err := s.taskRepo.GetByIDForUpdate(ctx, tx, taskID)
	if err != nil {
		return err
	}

	oldStatus := current.Status
	entry := &domain.TaskHistory{
		TaskID:      taskID,
		Action:      domain.HistoryActionDeleted,
		OldStatus:   &oldStatus,
		Description: "Task deleted",
	}
	if err := s.historyRepo.Create(ctx, tx, entry); err != nil {
		return fmt.Errorf("create history: %w", err)
	}

	if err := s.taskRepo.Delete(ctx, tx, taskID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("task deleted", "task_id", taskID)

	return nil
}
