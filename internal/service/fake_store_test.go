package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kormoapp/kormo/internal/domain"
	"github.com/kormoapp/kormo/internal/repository"
)

// fakeStore is an in-memory task store used by the materializer and
// propagator tests. It enforces the same per-day uniqueness for instances
// that the database index does.
type fakeStore struct {
	mu     sync.Mutex
	nextID int
	tasks  map[string]*domain.Task
	order  []string

	histories []*domain.TaskHistory

	listTemplatesErr error
	findInstanceErr  error
	createErr        error

	// failTemplates makes CreateInstance fail for instances of these
	// template IDs, to exercise continue-on-failure in bulk runs.
	failTemplates map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tasks:         make(map[string]*domain.Task),
		failTemplates: make(map[string]bool),
	}
}

func (f *fakeStore) addTask(task *domain.Task) *domain.Task {
	f.mu.Lock()
	defer f.mu.Unlock()

	if task.ID == "" {
		f.nextID++
		task.ID = fmt.Sprintf("task-%d", f.nextID)
	}
	if task.Status == "" {
		task.Status = domain.TaskStatusPending
	}
	if task.Priority == "" {
		task.Priority = domain.TaskPriorityMedium
	}
	f.tasks[task.ID] = task
	f.order = append(f.order, task.ID)
	return task
}

func (f *fakeStore) ListTemplates(ctx context.Context) ([]*domain.Task, error) {
	if f.listTemplatesErr != nil {
		return nil, f.listTemplatesErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var templates []*domain.Task
	for _, id := range f.order {
		task := f.tasks[id]
		if task.IsTemplate() && task.Status == domain.TaskStatusPending {
			templates = append(templates, task)
		}
	}
	return templates, nil
}

func (f *fakeStore) FindInstanceForDay(ctx context.Context, parentTaskID string, dayStart, dayEnd time.Time) (*domain.Task, error) {
	if f.findInstanceErr != nil {
		return nil, f.findInstanceErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, id := range f.order {
		task := f.tasks[id]
		if task.ParentTaskID == nil || *task.ParentTaskID != parentTaskID || task.DueDate == nil {
			continue
		}
		if !task.DueDate.Before(dayStart) && task.DueDate.Before(dayEnd) {
			return task, nil
		}
	}
	return nil, domain.ErrTaskNotFound
}

func (f *fakeStore) CreateInstance(ctx context.Context, instance *domain.Task) (bool, error) {
	if f.createErr != nil {
		return false, f.createErr
	}
	if instance.ParentTaskID != nil && f.failTemplates[*instance.ParentTaskID] {
		return false, fmt.Errorf("simulated insert failure for template %s", *instance.ParentTaskID)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// Same per-day uniqueness the database index enforces.
	day := StartOfDay(instance.DueDate.UTC())
	for _, id := range f.order {
		existing := f.tasks[id]
		if existing.ParentTaskID == nil || *existing.ParentTaskID != *instance.ParentTaskID || existing.DueDate == nil {
			continue
		}
		if StartOfDay(existing.DueDate.UTC()).Equal(day) {
			return false, nil
		}
	}

	f.nextID++
	instance.ID = fmt.Sprintf("task-%d", f.nextID)
	f.tasks[instance.ID] = instance
	f.order = append(f.order, instance.ID)
	return true, nil
}

func (f *fakeStore) GetByID(ctx context.Context, taskID string) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	task, ok := f.tasks[taskID]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

func (f *fakeStore) UpdateTask(ctx context.Context, taskID string, params repository.UpdateTaskParams) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	task, ok := f.tasks[taskID]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}

	if params.Title != nil {
		task.Title = *params.Title
	}
	if params.Description != nil {
		task.Description = *params.Description
	}
	if params.Priority != nil {
		task.Priority = *params.Priority
	}
	if params.Status != nil {
		task.Status = *params.Status
	}
	if params.CategoryID != nil {
		task.CategoryID = params.CategoryID
	}
	if params.DueDate != nil {
		task.DueDate = params.DueDate
	}
	if params.RecurrenceType != nil {
		task.RecurrenceType = params.RecurrenceType
	}
	if params.RecurrenceDays != nil {
		task.RecurrenceDays = params.RecurrenceDays
	}
	return task, nil
}

func (f *fakeStore) BulkUpdateInstances(ctx context.Context, parentTaskID string, content repository.InstanceContent, from time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var updated int64
	for _, id := range f.order {
		task := f.tasks[id]
		if task.ParentTaskID == nil || *task.ParentTaskID != parentTaskID {
			continue
		}
		if task.Status == domain.TaskStatusCompleted {
			continue
		}
		if task.DueDate == nil || task.DueDate.Before(from) {
			continue
		}
		task.Title = content.Title
		task.Description = content.Description
		task.Priority = content.Priority
		task.CategoryID = content.CategoryID
		updated++
	}
	return updated, nil
}

func (f *fakeStore) DeleteByParent(ctx context.Context, parentTaskID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var deleted int64
	remaining := f.order[:0]
	for _, id := range f.order {
		task := f.tasks[id]
		if task.ParentTaskID != nil && *task.ParentTaskID == parentTaskID {
			delete(f.tasks, id)
			deleted++
			continue
		}
		remaining = append(remaining, id)
	}
	f.order = remaining
	return deleted, nil
}

func (f *fakeStore) DeleteTask(ctx context.Context, taskID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.tasks[taskID]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(f.tasks, taskID)
	for i, id := range f.order {
		if id == taskID {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

// instances returns every instance of the given template, insertion order.
func (f *fakeStore) instances(parentTaskID string) []*domain.Task {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []*domain.Task
	for _, id := range f.order {
		task := f.tasks[id]
		if task.ParentTaskID != nil && *task.ParentTaskID == parentTaskID {
			result = append(result, task)
		}
	}
	return result
}

// fakeHistory records appended history entries in memory.
type fakeHistory struct {
	mu      sync.Mutex
	entries []*domain.TaskHistory

	appendErr error
}

func (f *fakeHistory) Append(ctx context.Context, entry *domain.TaskHistory) error {
	if f.appendErr != nil {
		return f.appendErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeHistory) forTask(taskID string) []*domain.TaskHistory {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []*domain.TaskHistory
	for _, entry := range f.entries {
		if entry.TaskID == taskID {
			result = append(result, entry)
		}
	}
	return result
}
