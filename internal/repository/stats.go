package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/kormoapp/kormo/internal/domain"
)

// OverviewStatsResult holds task counts by status plus the overdue count.
type OverviewStatsResult struct {
	Total           int
	TasksByStatus   map[string]int
	TasksByPriority map[string]int
	OverdueCount    int
}

// CategoryStatsResult holds the task count for a single category.
type CategoryStatsResult struct {
	CategoryID   string
	CategoryName string
	Color        string
	TaskCount    int
}

// DailyCompletionResult holds the number of completions recorded on one day.
type DailyCompletionResult struct {
	Day   time.Time
	Count int
}

// GetOverviewStats retrieves task counts by status and priority and the
// number of overdue tasks (due in the past and not COMPLETED).
func (r *TaskRepository) GetOverviewStats(ctx context.Context) (*OverviewStatsResult, error) {
	result := &OverviewStatsResult{
		TasksByStatus:   make(map[string]int),
		TasksByPriority: make(map[string]int),
	}

	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*)
		FROM tasks
		GROUP BY status
	`)
	if err != nil {
		return nil, fmt.Errorf("query tasks by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		result.TasksByStatus[status] = count
		result.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status rows: %w", err)
	}

	prioRows, err := r.pool.Query(ctx, `
		SELECT priority, COUNT(*)
		FROM tasks
		GROUP BY priority
	`)
	if err != nil {
		return nil, fmt.Errorf("query tasks by priority: %w", err)
	}
	defer prioRows.Close()

	for prioRows.Next() {
		var priority string
		var count int
		if err := prioRows.Scan(&priority, &count); err != nil {
			return nil, fmt.Errorf("scan priority count: %w", err)
		}
		result.TasksByPriority[priority] = count
	}
	if err := prioRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate priority rows: %w", err)
	}

	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM tasks
		WHERE due_date < NOW() AND status <> $1
	`, domain.TaskStatusCompleted).Scan(&result.OverdueCount)
	if err != nil {
		return nil, fmt.Errorf("count overdue tasks: %w", err)
	}

	return result, nil
}

// GetCategoryStats retrieves per-category task counts.
func (r *TaskRepository) GetCategoryStats(ctx context.Context) ([]CategoryStatsResult, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.name, c.color, COUNT(t.id)
		FROM categories c
		LEFT JOIN tasks t ON t.category_id = c.id
		GROUP BY c.id, c.name, c.color
		ORDER BY c.name
	`)
	if err != nil {
		return nil, fmt.Errorf("query category stats: %w", err)
	}
	defer rows.Close()

	var results []CategoryStatsResult
	for rows.Next() {
		var result CategoryStatsResult
		err := rows.Scan(&result.CategoryID, &result.CategoryName, &result.Color, &result.TaskCount)
		if err != nil {
			return nil, fmt.Errorf("scan category stats: %w", err)
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category stats rows: %w", err)
	}

	return results, nil
}

// GetRecentCompletions retrieves per-day completion counts from the history
// log for the given number of trailing days.
func (r *TaskRepository) GetRecentCompletions(ctx context.Context, days int) ([]DailyCompletionResult, error) {
	since := time.Now().AddDate(0, 0, -days)

	rows, err := r.pool.Query(ctx, `
		SELECT date_trunc('day', created_at) AS day, COUNT(*)
		FROM task_histories
		WHERE action = $1 AND created_at >= $2
		GROUP BY day
		ORDER BY day
	`, domain.HistoryActionCompleted, since)
	if err != nil {
		return nil, fmt.Errorf("query recent completions: %w", err)
	}
	defer rows.Close()

	var results []DailyCompletionResult
	for rows.Next() {
		var result DailyCompletionResult
		if err := rows.Scan(&result.Day, &result.Count); err != nil {
			return nil, fmt.Errorf("scan completion count: %w", err)
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completion rows: %w", err)
	}

	return results, nil
}
