package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kormoapp/kormo/internal/domain"
)

// taskColumns is the shared list of columns for task queries.
var taskColumns = []string{
	"id", "title", "description", "priority", "status", "category_id",
	"due_date", "is_recurring", "recurrence_type", "recurrence_days",
	"parent_task_id", "completed_at", "created_at", "updated_at",
}

// TaskRepository handles database operations for tasks.
type TaskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

// scanTask scans a single row into a Task struct.
func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Priority,
		&task.Status,
		&task.CategoryID,
		&task.DueDate,
		&task.IsRecurring,
		&task.RecurrenceType,
		&task.RecurrenceDays,
		&task.ParentTaskID,
		&task.CompletedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	return &task, nil
}

// scanTasks scans multiple rows into a slice of Task structs.
func scanTasks(rows pgx.Rows) ([]*domain.Task, error) {
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return tasks, nil
}

// GetByID retrieves a task by ID.
func (r *TaskRepository) GetByID(ctx context.Context, taskID string) (*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for task: %w", err)
	}

	return scanTask(r.pool.QueryRow(ctx, query, args...))
}

// GetByIDForUpdate retrieves a task by ID with FOR UPDATE lock (within transaction).
func (r *TaskRepository) GetByIDForUpdate(ctx context.Context, q Querier, taskID string) (*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"id": taskID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByIDForUpdate query for task %s: %w", taskID, err)
	}

	return scanTask(q.QueryRow(ctx, query, args...))
}

// Create inserts a new task. Defaults are applied for priority and status.
// The query runs on q so callers can create within a transaction.
func (r *TaskRepository) Create(ctx context.Context, q Querier, task *domain.Task) (*domain.Task, error) {
	if task.Priority == "" {
		task.Priority = domain.TaskPriorityMedium
	}
	if task.Status == "" {
		task.Status = domain.TaskStatusPending
	}
	if task.RecurrenceDays == nil {
		task.RecurrenceDays = []int{}
	}

	query, args, err := psql.
		Insert("tasks").
		Columns(
			"title", "description", "priority", "status", "category_id",
			"due_date", "is_recurring", "recurrence_type", "recurrence_days",
			"parent_task_id", "completed_at",
		).
		Values(
			task.Title,
			task.Description,
			task.Priority,
			task.Status,
			task.CategoryID,
			task.DueDate,
			task.IsRecurring,
			task.RecurrenceType,
			task.RecurrenceDays,
			task.ParentTaskID,
			task.CompletedAt,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Create query for task: %w", err)
	}

	err = q.QueryRow(ctx, query, args...).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	return task, nil
}

// CreateInstance inserts a generated recurring-task instance. The insert is
// idempotent per template per calendar day: a conflicting row (same parent,
// same due day) leaves the table unchanged and CreateInstance returns false.
func (r *TaskRepository) CreateInstance(ctx context.Context, instance *domain.Task) (bool, error) {
	if instance.RecurrenceDays == nil {
		instance.RecurrenceDays = []int{}
	}

	query, args, err := psql.
		Insert("tasks").
		Columns(
			"title", "description", "priority", "status", "category_id",
			"due_date", "is_recurring", "parent_task_id",
		).
		Values(
			instance.Title,
			instance.Description,
			instance.Priority,
			instance.Status,
			instance.CategoryID,
			instance.DueDate,
			instance.IsRecurring,
			instance.ParentTaskID,
		).
		Suffix("ON CONFLICT (parent_task_id, ((due_date AT TIME ZONE 'UTC')::date)) WHERE parent_task_id IS NOT NULL DO NOTHING").
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build CreateInstance query: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(&instance.ID, &instance.CreatedAt, &instance.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Conflict with an existing instance for that day.
			return false, nil
		}
		return false, fmt.Errorf("create instance: %w", err)
	}

	return true, nil
}

// UpdateTaskParams holds the optional fields for a task update. Nil fields
// are left unchanged.
type UpdateTaskParams struct {
	Title            *string
	Description      *string
	Priority         *domain.TaskPriority
	Status           *domain.TaskStatus
	CategoryID       *string
	DueDate          *time.Time
	RecurrenceType   *domain.RecurrenceType
	RecurrenceDays   []int
	CompletedAt      *time.Time
	ClearCompletedAt bool
}

// Update applies the given fields to a task and returns the updated row.
func (r *TaskRepository) Update(ctx context.Context, q Querier, taskID string, params UpdateTaskParams) (*domain.Task, error) {
	qb := psql.Update("tasks").Set("updated_at", sq.Expr("NOW()"))

	if params.Title != nil {
		qb = qb.Set("title", *params.Title)
	}
	if params.Description != nil {
		qb = qb.Set("description", *params.Description)
	}
	if params.Priority != nil {
		qb = qb.Set("priority", *params.Priority)
	}
	if params.Status != nil {
		qb = qb.Set("status", *params.Status)
	}
	if params.CategoryID != nil {
		qb = qb.Set("category_id", *params.CategoryID)
	}
	if params.DueDate != nil {
		qb = qb.Set("due_date", *params.DueDate)
	}
	if params.RecurrenceType != nil {
		qb = qb.Set("recurrence_type", *params.RecurrenceType)
	}
	if params.RecurrenceDays != nil {
		qb = qb.Set("recurrence_days", params.RecurrenceDays)
	}
	if params.CompletedAt != nil {
		qb = qb.Set("completed_at", *params.CompletedAt)
	} else if params.ClearCompletedAt {
		qb = qb.Set("completed_at", nil)
	}

	query, args, err := qb.
		Where(sq.Eq{"id": taskID}).
		Suffix("RETURNING " + strings.Join(taskColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Update query for task %s: %w", taskID, err)
	}

	return scanTask(q.QueryRow(ctx, query, args...))
}

// UpdateTask applies the given fields outside any transaction.
func (r *TaskRepository) UpdateTask(ctx context.Context, taskID string, params UpdateTaskParams) (*domain.Task, error) {
	return r.Update(ctx, r.pool, taskID, params)
}

// Delete removes a task by ID.
func (r *TaskRepository) Delete(ctx context.Context, q Querier, taskID string) error {
	query, args, err := psql.
		Delete("tasks").
		Where(sq.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Delete query for task %s: %w", taskID, err)
	}

	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// DeleteTask removes a task by ID outside any transaction.
func (r *TaskRepository) DeleteTask(ctx context.Context, taskID string) error {
	return r.Delete(ctx, r.pool, taskID)
}

// TaskListFilters holds the supported filters for task listing.
type TaskListFilters struct {
	Status     *domain.TaskStatus
	Priority   *domain.TaskPriority
	CategoryID *string
}

// List retrieves tasks matching the filters, newest first.
func (r *TaskRepository) List(ctx context.Context, filters TaskListFilters) ([]*domain.Task, error) {
	qb := psql.Select(taskColumns...).From("tasks")

	if filters.Status != nil {
		qb = qb.Where(sq.Eq{"status": *filters.Status})
	}
	if filters.Priority != nil {
		qb = qb.Where(sq.Eq{"priority": *filters.Priority})
	}
	if filters.CategoryID != nil {
		qb = qb.Where(sq.Eq{"category_id": *filters.CategoryID})
	}

	query, args, err := qb.OrderBy("created_at DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build List query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}

	return scanTasks(rows)
}

// ListTemplates retrieves every active recurring template: recurring, no
// parent, still PENDING. Completed or cancelled templates are not expanded.
func (r *TaskRepository) ListTemplates(ctx context.Context) ([]*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{
			"is_recurring":   true,
			"parent_task_id": nil,
			"status":         domain.TaskStatusPending,
		}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListTemplates query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}

	return scanTasks(rows)
}

// ListInstances retrieves all instances generated from a template, ordered
// by due date.
func (r *TaskRepository) ListInstances(ctx context.Context, parentTaskID string) ([]*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"parent_task_id": parentTaskID}).
		OrderBy("due_date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListInstances query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query instances: %w", err)
	}

	return scanTasks(rows)
}

// FindInstanceForDay looks up an existing instance of a template whose due
// date falls within [dayStart, dayEnd). Returns domain.ErrTaskNotFound when
// no instance exists for that day.
func (r *TaskRepository) FindInstanceForDay(ctx context.Context, parentTaskID string, dayStart, dayEnd time.Time) (*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"parent_task_id": parentTaskID}).
		Where(sq.GtOrEq{"due_date": dayStart}).
		Where(sq.Lt{"due_date": dayEnd}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build FindInstanceForDay query: %w", err)
	}

	return scanTask(r.pool.QueryRow(ctx, query, args...))
}

// InstanceContent holds the template fields propagated onto instances.
// Recurrence fields are deliberately absent: instances never recur.
type InstanceContent struct {
	Title       string
	Description string
	Priority    domain.TaskPriority
	CategoryID  *string
}

// BulkUpdateInstances copies the template's content fields onto every
// not-yet-completed instance due today or later. Past-dated and COMPLETED
// instances are left untouched. Returns the number of rows updated.
func (r *TaskRepository) BulkUpdateInstances(ctx context.Context, parentTaskID string, content InstanceContent, from time.Time) (int64, error) {
	query, args, err := psql.
		Update("tasks").
		Set("title", content.Title).
		Set("description", content.Description).
		Set("priority", content.Priority).
		Set("category_id", content.CategoryID).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"parent_task_id": parentTaskID}).
		Where(sq.GtOrEq{"due_date": from}).
		Where(sq.NotEq{"status": domain.TaskStatusCompleted}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build BulkUpdateInstances query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("bulk update instances: %w", err)
	}

	return tag.RowsAffected(), nil
}

// DeleteByParent removes every instance generated from a template. Returns
// the number of rows deleted.
func (r *TaskRepository) DeleteByParent(ctx context.Context, parentTaskID string) (int64, error) {
	query, args, err := psql.
		Delete("tasks").
		Where(sq.Eq{"parent_task_id": parentTaskID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build DeleteByParent query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete instances: %w", err)
	}

	return tag.RowsAffected(), nil
}
