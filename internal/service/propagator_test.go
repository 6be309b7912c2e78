package service

import (
	"context"
	"testing"
	"time"

	"github.com/kormoapp/kormo/internal/domain"
	"github.com/kormoapp/kormo/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPropagator(store *fakeStore, history *fakeHistory) *Propagator {
	p := NewPropagator(store, history)
	p.now = func() time.Time { return testToday }
	return p
}

// seedTemplateWithInstances creates a weekly template plus one past, one
// completed-future, and two open future instances.
func seedTemplateWithInstances(store *fakeStore) (template, past, completedFuture, future1, future2 *domain.Task) {
	template = store.addTask(weeklyTemplate([]int{1, 3, 5}))
	parentID := template.ID

	addInstance := func(dayOffset int, status domain.TaskStatus) *domain.Task {
		due := StartOfDay(testToday).AddDate(0, 0, dayOffset)
		return store.addTask(&domain.Task{
			Title:        template.Title,
			Description:  template.Description,
			Priority:     domain.TaskPriorityMedium,
			Status:       status,
			DueDate:      &due,
			ParentTaskID: &parentID,
		})
	}

	past = addInstance(-2, domain.TaskStatusPending)
	completedFuture = addInstance(1, domain.TaskStatusCompleted)
	future1 = addInstance(3, domain.TaskStatusPending)
	future2 = addInstance(5, domain.TaskStatusInProgress)
	return
}

func TestUpdateRecurringTask_PropagatesContentToOpenFutureInstances(t *testing.T) {
	store := newFakeStore()
	history := &fakeHistory{}
	template, past, completedFuture, future1, future2 := seedTemplateWithInstances(store)
	p := newTestPropagator(store, history)

	newTitle := "Weekly planning"
	newPriority := domain.TaskPriorityHigh
	updated, err := p.UpdateRecurringTask(context.Background(), template.ID, UpdateRecurringParams{
		Title:    &newTitle,
		Priority: &newPriority,
	})
	require.NoError(t, err)
	assert.Equal(t, newTitle, updated.Title)

	// Future open instances pick up the new content.
	assert.Equal(t, newTitle, future1.Title)
	assert.Equal(t, newPriority, future1.Priority)
	assert.Equal(t, newTitle, future2.Title)
	assert.Equal(t, newPriority, future2.Priority)

	// Past and completed instances are untouched.
	assert.Equal(t, "Weekly review", past.Title)
	assert.Equal(t, domain.TaskPriorityMedium, past.Priority)
	assert.Equal(t, "Weekly review", completedFuture.Title)
}

func TestUpdateRecurringTask_TodayCountsAsFuture(t *testing.T) {
	store := newFakeStore()
	history := &fakeHistory{}
	template := store.addTask(dailyTemplate())
	parentID := template.ID
	due := StartOfDay(testToday)
	today := store.addTask(&domain.Task{
		Title:        template.Title,
		DueDate:      &due,
		ParentTaskID: &parentID,
	})
	p := newTestPropagator(store, history)

	newTitle := "Standup"
	_, err := p.UpdateRecurringTask(context.Background(), template.ID, UpdateRecurringParams{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, newTitle, today.Title)
}

func TestUpdateRecurringTask_RecurrenceFieldsNotCopiedToInstances(t *testing.T) {
	store := newFakeStore()
	history := &fakeHistory{}
	template, _, _, future1, _ := seedTemplateWithInstances(store)
	p := newTestPropagator(store, history)

	updated, err := p.UpdateRecurringTask(context.Background(), template.ID, UpdateRecurringParams{
		RecurrenceDays: []int{2, 4},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4}, updated.RecurrenceDays)

	// Instances stay non-recurring with no recurrence config.
	assert.False(t, future1.IsRecurring)
	assert.Nil(t, future1.RecurrenceType)
	assert.Empty(t, future1.RecurrenceDays)
}

func TestUpdateRecurringTask_RejectsNonTemplate(t *testing.T) {
	store := newFakeStore()
	history := &fakeHistory{}
	standalone := store.addTask(&domain.Task{Title: "Buy groceries"})
	p := newTestPropagator(store, history)

	title := "Renamed"
	_, err := p.UpdateRecurringTask(context.Background(), standalone.ID, UpdateRecurringParams{Title: &title})
	assert.ErrorIs(t, err, domain.ErrNotTemplate)
}

func TestUpdateRecurringTask_RejectsUnknownTask(t *testing.T) {
	store := newFakeStore()
	history := &fakeHistory{}
	p := newTestPropagator(store, history)

	title := "Renamed"
	_, err := p.UpdateRecurringTask(context.Background(), "missing", UpdateRecurringParams{Title: &title})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestUpdateRecurringTask_RejectsInvalidRecurrenceType(t *testing.T) {
	store := newFakeStore()
	history := &fakeHistory{}
	template, _, _, future1, _ := seedTemplateWithInstances(store)
	p := newTestPropagator(store, history)

	bad := domain.RecurrenceType("MONTHLY")
	title := "Renamed"
	_, err := p.UpdateRecurringTask(context.Background(), template.ID, UpdateRecurringParams{
		Title:          &title,
		RecurrenceType: &bad,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRecurrenceType)

	// Rejected before any write.
	assert.Equal(t, "Weekly review", template.Title)
	assert.Equal(t, "Weekly review", future1.Title)
}

func TestUpdateRecurringTask_RejectsWeeklyWithoutDays(t *testing.T) {
	store := newFakeStore()
	history := &fakeHistory{}
	template := store.addTask(dailyTemplate())
	p := newTestPropagator(store, history)

	weekly := domain.RecurrenceWeekly
	_, err := p.UpdateRecurringTask(context.Background(), template.ID, UpdateRecurringParams{
		RecurrenceType: &weekly,
	})
	assert.ErrorIs(t, err, domain.ErrRecurrenceDaysRequired)
}

func TestUpdateRecurringTask_SwitchToWeeklyWithDays(t *testing.T) {
	store := newFakeStore()
	history := &fakeHistory{}
	template := store.addTask(dailyTemplate())
	p := newTestPropagator(store, history)

	weekly := domain.RecurrenceWeekly
	updated, err := p.UpdateRecurringTask(context.Background(), template.ID, UpdateRecurringParams{
		RecurrenceType: &weekly,
		RecurrenceDays: []int{0, 6},
	})
	require.NoError(t, err)
	require.NotNil(t, updated.RecurrenceType)
	assert.Equal(t, weekly, *updated.RecurrenceType)
	assert.Equal(t, []int{0, 6}, updated.RecurrenceDays)
}

func TestDeleteRecurringTask_RemovesInstancesThenTemplate(t *testing.T) {
	store := newFakeStore()
	history := &fakeHistory{}
	template, _, _, _, _ := seedTemplateWithInstances(store)
	p := newTestPropagator(store, history)

	err := p.DeleteRecurringTask(context.Background(), template.ID)
	require.NoError(t, err)

	assert.Empty(t, store.instances(template.ID))
	_, err = store.GetByID(context.Background(), template.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	entries := history.forTask(template.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.HistoryActionDeleted, entries[0].Action)
	require.NotNil(t, entries[0].OldStatus)
	assert.Equal(t, domain.TaskStatusPending, *entries[0].OldStatus)
}

func TestDeleteRecurringTask_RejectsNonTemplate(t *testing.T) {
	store := newFakeStore()
	history := &fakeHistory{}
	parentID := "some-template"
	instance := store.addTask(&domain.Task{Title: "Generated", ParentTaskID: &parentID})
	p := newTestPropagator(store, history)

	err := p.DeleteRecurringTask(context.Background(), instance.ID)
	assert.ErrorIs(t, err, domain.ErrNotTemplate)
}

var _ PropagatorStore = (*fakeStore)(nil)
var _ TemplateStore = (*fakeStore)(nil)
var _ HistoryAppender = (*fakeHistory)(nil)
var _ PropagatorStore = (*repository.TaskRepository)(nil)
