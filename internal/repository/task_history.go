package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kormoapp/kormo/internal/domain"
)

// TaskHistoryRepository handles database operations for task history entries.
// History is append-only: there are no update or delete methods.
type TaskHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewTaskHistoryRepository creates a new TaskHistoryRepository.
func NewTaskHistoryRepository(pool *pgxpool.Pool) *TaskHistoryRepository {
	return &TaskHistoryRepository{pool: pool}
}

// Create appends a history entry. The query runs on q so callers can append
// within the transaction that mutates the referenced task.
func (r *TaskHistoryRepository) Create(ctx context.Context, q Querier, entry *domain.TaskHistory) error {
	query, args, err := psql.
		Insert("task_histories").
		Columns("task_id", "action", "old_status", "new_status", "description").
		Values(entry.TaskID, entry.Action, entry.OldStatus, entry.NewStatus, entry.Description).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	err = q.QueryRow(ctx, query, args...).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("create task history: %w", err)
	}

	return nil
}

// Append appends a history entry outside any transaction.
func (r *TaskHistoryRepository) Append(ctx context.Context, entry *domain.TaskHistory) error {
	return r.Create(ctx, r.pool, entry)
}

// GetByTaskID retrieves all history entries for a task, newest first.
func (r *TaskHistoryRepository) GetByTaskID(ctx context.Context, taskID string) ([]*domain.TaskHistory, error) {
	query, args, err := psql.
		Select("id", "task_id", "action", "old_status", "new_status", "description", "created_at").
		From("task_histories").
		Where(sq.Eq{"task_id": taskID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query task histories: %w", err)
	}
	defer rows.Close()

	var entries []*domain.TaskHistory
	for rows.Next() {
		var entry domain.TaskHistory
		err := rows.Scan(
			&entry.ID,
			&entry.TaskID,
			&entry.Action,
			&entry.OldStatus,
			&entry.NewStatus,
			&entry.Description,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan task history: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return entries, nil
}
