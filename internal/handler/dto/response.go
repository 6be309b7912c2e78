package dto

import (
	"time"

	"github.com/kormoapp/kormo/internal/domain"
	"github.com/kormoapp/kormo/internal/repository"
	"github.com/kormoapp/kormo/internal/service"
)

// TaskResponse represents a task in API responses.
type TaskResponse struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Priority       string     `json:"priority"`
	Status         string     `json:"status"`
	CategoryID     *string    `json:"category_id"`
	DueDate        *time.Time `json:"due_date"`
	IsRecurring    bool       `json:"is_recurring"`
	RecurrenceType *string    `json:"recurrence_type,omitempty"`
	RecurrenceDays []int      `json:"recurrence_days,omitempty"`
	ParentTaskID   *string    `json:"parent_task_id"`
	CompletedAt    *time.Time `json:"completed_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TasksListResponse represents the response for GET /tasks.
type TasksListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Total int            `json:"total"`
}

// TaskHistoryInfo represents a single history entry.
type TaskHistoryInfo struct {
	ID          string    `json:"id"`
	Action      string    `json:"action"`
	OldStatus   *string   `json:"old_status"`
	NewStatus   *string   `json:"new_status"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// TaskDetailResponse represents full task details with history.
type TaskDetailResponse struct {
	Task      TaskResponse      `json:"task"`
	Histories []TaskHistoryInfo `json:"histories"`
}

// CategoryResponse represents a category in API responses.
type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// TemplateOutcome represents the per-template result of a bulk generation run.
type TemplateOutcome struct {
	TemplateID string `json:"template_id"`
	Created    int    `json:"created"`
	Error      string `json:"error,omitempty"`
}

// GenerateInstancesResponse represents the response for
// POST /recurring-tasks/create-instances.
type GenerateInstancesResponse struct {
	Templates int               `json:"templates"`
	Created   int               `json:"created"`
	Failed    int               `json:"failed"`
	Results   []TemplateOutcome `json:"results"`
}

// StatisticsResponse represents the response for GET /statistics.
type StatisticsResponse struct {
	Overview          OverviewStats     `json:"overview"`
	Priority          map[string]int    `json:"priority"`
	Categories        []CategoryStats   `json:"categories"`
	CompletionRate    float64           `json:"completion_rate_percent"`
	RecentCompletions []DailyCompletion `json:"recent_completions"`
}

// OverviewStats holds task counts by status plus the overdue count.
type OverviewStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Cancelled  int `json:"cancelled"`
	Overdue    int `json:"overdue"`
}

// CategoryStats holds the task count for one category.
type CategoryStats struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	TaskCount int    `json:"task_count"`
}

// DailyCompletion holds the number of completions recorded on one day.
type DailyCompletion struct {
	Day   time.Time `json:"day"`
	Count int       `json:"count"`
}

// ToTaskResponse converts domain.Task to TaskResponse.
func ToTaskResponse(task *domain.Task) TaskResponse {
	var recurrenceType *string
	if task.RecurrenceType != nil {
		s := string(*task.RecurrenceType)
		recurrenceType = &s
	}

	return TaskResponse{
		ID:             task.ID,
		Title:          task.Title,
		Description:    task.Description,
		Priority:       string(task.Priority),
		Status:         string(task.Status),
		CategoryID:     task.CategoryID,
		DueDate:        task.DueDate,
		IsRecurring:    task.IsRecurring,
		RecurrenceType: recurrenceType,
		RecurrenceDays: task.RecurrenceDays,
		ParentTaskID:   task.ParentTaskID,
		CompletedAt:    task.CompletedAt,
		CreatedAt:      task.CreatedAt,
		UpdatedAt:      task.UpdatedAt,
	}
}

// ToTaskDetailResponse converts a task and its history entries.
func ToTaskDetailResponse(task *domain.Task, histories []*domain.TaskHistory) TaskDetailResponse {
	response := TaskDetailResponse{
		Task:      ToTaskResponse(task),
		Histories: make([]TaskHistoryInfo, len(histories)),
	}

	for i, entry := range histories {
		var oldStatus, newStatus *string
		if entry.OldStatus != nil {
			s := string(*entry.OldStatus)
			oldStatus = &s
		}
		if entry.NewStatus != nil {
			s := string(*entry.NewStatus)
			newStatus = &s
		}

		response.Histories[i] = TaskHistoryInfo{
			ID:          entry.ID,
			Action:      string(entry.Action),
			OldStatus:   oldStatus,
			NewStatus:   newStatus,
			Description: entry.Description,
			CreatedAt:   entry.CreatedAt,
		}
	}

	return response
}

// ToCategoryResponse converts domain.Category to CategoryResponse.
func ToCategoryResponse(category *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Color:       category.Color,
		Description: category.Description,
		CreatedAt:   category.CreatedAt,
	}
}

// ToGenerateInstancesResponse converts bulk generation results.
func ToGenerateInstancesResponse(results []service.TemplateResult) GenerateInstancesResponse {
	response := GenerateInstancesResponse{
		Templates: len(results),
		Results:   make([]TemplateOutcome, len(results)),
	}

	for i, result := range results {
		outcome := TemplateOutcome{
			TemplateID: result.TemplateID,
			Created:    result.Created,
		}
		if result.Err != nil {
			outcome.Error = result.Err.Error()
			response.Failed++
		}
		response.Created += result.Created
		response.Results[i] = outcome
	}

	return response
}

// ToStatisticsResponse assembles the statistics payload.
func ToStatisticsResponse(
	overview *repository.OverviewStatsResult,
	categories []repository.CategoryStatsResult,
	completions []repository.DailyCompletionResult,
) StatisticsResponse {
	completionRate := 0.0
	completed := overview.TasksByStatus[string(domain.TaskStatusCompleted)]
	if overview.Total > 0 {
		completionRate = float64(completed) / float64(overview.Total) * 100
	}

	response := StatisticsResponse{
		Overview: OverviewStats{
			Total:      overview.Total,
			Pending:    overview.TasksByStatus[string(domain.TaskStatusPending)],
			InProgress: overview.TasksByStatus[string(domain.TaskStatusInProgress)],
			Completed:  completed,
			Cancelled:  overview.TasksByStatus[string(domain.TaskStatusCancelled)],
			Overdue:    overview.OverdueCount,
		},
		Priority:          overview.TasksByPriority,
		Categories:        make([]CategoryStats, len(categories)),
		CompletionRate:    completionRate,
		RecentCompletions: make([]DailyCompletion, len(completions)),
	}

	for i, cat := range categories {
		response.Categories[i] = CategoryStats{
			ID:        cat.CategoryID,
			Name:      cat.CategoryName,
			Color:     cat.Color,
			TaskCount: cat.TaskCount,
		}
	}
	for i, completion := range completions {
		response.RecentCompletions[i] = DailyCompletion{
			Day:   completion.Day,
			Count: completion.Count,
		}
	}

	return response
}
