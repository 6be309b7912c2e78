package service_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kormoapp/kormo/internal/database"
	"github.com/kormoapp/kormo/internal/domain"
	"github.com/kormoapp/kormo/internal/repository"
	"github.com/kormoapp/kormo/internal/service"
	"github.com/stretchr/testify/suite"
)

// TaskServiceTestSuite is the database-backed test suite for TaskService.
type TaskServiceTestSuite struct {
	suite.Suite
	pool         *pgxpool.Pool
	taskService  *service.TaskService
	taskRepo     *repository.TaskRepository
	historyRepo  *repository.TaskHistoryRepository
	categoryRepo *repository.CategoryRepository
}

// SetupSuite runs once before all tests.
func (s *TaskServiceTestSuite) SetupSuite() {
	databaseURL := os.Getenv("DATABASE_URL")

	ctx := context.Background()

	db, err := database.New(ctx, databaseURL)
	s.Require().NoError(err, "failed to connect to database")

	s.pool = db.Pool()

	err = database.RunMigrations(ctx, s.pool)
	s.Require().NoError(err, "failed to run migrations")

	s.taskRepo = repository.NewTaskRepository(s.pool)
	s.historyRepo = repository.NewTaskHistoryRepository(s.pool)
	s.categoryRepo = repository.NewCategoryRepository(s.pool)

	materializer := service.NewMaterializer(s.taskRepo, s.historyRepo)
	s.taskService = service.NewTaskService(
		s.pool,
		s.taskRepo,
		s.historyRepo,
		s.categoryRepo,
		materializer,
	)
}

// SetupTest runs before each test.
func (s *TaskServiceTestSuite) SetupTest() {
	ctx := context.Background()

	_, err := s.pool.Exec(ctx, "TRUNCATE tasks, task_histories CASCADE")
	s.Require().NoError(err, "failed to truncate tables")
}

// TearDownSuite runs once after all tests.
func (s *TaskServiceTestSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *TaskServiceTestSuite) TestCreateTask_Standalone() {
	ctx := context.Background()

	task, err := s.taskService.CreateTask(ctx, service.CreateTaskParams{
		Title:       "Buy groceries",
		Description: "Milk, eggs, bread",
		Priority:    domain.TaskPriorityHigh,
	})
	s.Require().NoError(err)
	s.Equal(domain.TaskStatusPending, task.Status)
	s.Equal(domain.TaskKindStandalone, task.Kind())

	histories, err := s.historyRepo.GetByTaskID(ctx, task.ID)
	s.Require().NoError(err)
	s.Require().Len(histories, 1)
	s.Equal(domain.HistoryActionCreated, histories[0].Action)
}

func (s *TaskServiceTestSuite) TestCreateTask_EmptyTitle() {
	ctx := context.Background()

	_, err := s.taskService.CreateTask(ctx, service.CreateTaskParams{})
	s.ErrorIs(err, domain.ErrTitleRequired)
}

func (s *TaskServiceTestSuite) TestCreateTask_UnknownCategory() {
	ctx := context.Background()

	missing := "00000000-0000-0000-0000-0000000000ff"
	_, err := s.taskService.CreateTask(ctx, service.CreateTaskParams{
		Title:      "Buy groceries",
		CategoryID: &missing,
	})
	s.ErrorIs(err, domain.ErrCategoryNotFound)
}

func (s *TaskServiceTestSuite) TestCreateTask_TemplateGeneratesHorizon() {
	ctx := context.Background()

	recurrenceType := domain.RecurrenceDaily
	template, err := s.taskService.CreateTask(ctx, service.CreateTaskParams{
		Title:          "Daily standup notes",
		IsRecurring:    true,
		RecurrenceType: &recurrenceType,
	})
	s.Require().NoError(err)
	s.True(template.IsTemplate())

	instances, err := s.taskRepo.ListInstances(ctx, template.ID)
	s.Require().NoError(err)
	// Today plus 30 days, both ends inclusive.
	s.Len(instances, 31)

	for _, instance := range instances {
		s.Equal(domain.TaskStatusPending, instance.Status)
		s.False(instance.IsRecurring)
		s.Require().NotNil(instance.ParentTaskID)
		s.Equal(template.ID, *instance.ParentTaskID)
	}
}

func (s *TaskServiceTestSuite) TestCreateTask_WeeklyWithoutDays() {
	ctx := context.Background()

	recurrenceType := domain.RecurrenceWeekly
	_, err := s.taskService.CreateTask(ctx, service.CreateTaskParams{
		Title:          "Weekly review",
		IsRecurring:    true,
		RecurrenceType: &recurrenceType,
	})
	s.ErrorIs(err, domain.ErrRecurrenceDaysRequired)
}

func (s *TaskServiceTestSuite) TestUpdateTask_StatusTransition() {
	ctx := context.Background()

	task, err := s.taskService.CreateTask(ctx, service.CreateTaskParams{Title: "Buy groceries"})
	s.Require().NoError(err)

	inProgress := domain.TaskStatusInProgress
	updated, err := s.taskService.UpdateTask(ctx, task.ID, service.UpdateTaskParams{Status: &inProgress})
	s.Require().NoError(err)
	s.Equal(domain.TaskStatusInProgress, updated.Status)

	histories, err := s.historyRepo.GetByTaskID(ctx, task.ID)
	s.Require().NoError(err)
	s.Require().Len(histories, 2)
	s.Equal(domain.HistoryActionUpdated, histories[0].Action)
}

func (s *TaskServiceTestSuite) TestUpdateTask_CompletionStampsCompletedAt() {
	ctx := context.Background()

	task, err := s.taskService.CreateTask(ctx, service.CreateTaskParams{Title: "Buy groceries"})
	s.Require().NoError(err)

	completed := domain.TaskStatusCompleted
	updated, err := s.taskService.UpdateTask(ctx, task.ID, service.UpdateTaskParams{Status: &completed})
	s.Require().NoError(err)
	s.Require().NotNil(updated.CompletedAt)
	s.WithinDuration(time.Now(), *updated.CompletedAt, 5*time.Second)
}

func (s *TaskServiceTestSuite) TestUpdateTask_InvalidTransition() {
	ctx := context.Background()

	task, err := s.taskService.CreateTask(ctx, service.CreateTaskParams{Title: "Buy groceries"})
	s.Require().NoError(err)

	completed := domain.TaskStatusCompleted
	_, err = s.taskService.UpdateTask(ctx, task.ID, service.UpdateTaskParams{Status: &completed})
	s.Require().NoError(err)

	pending := domain.TaskStatusPending
	_, err = s.taskService.UpdateTask(ctx, task.ID, service.UpdateTaskParams{Status: &pending})
	s.ErrorIs(err, domain.ErrInvalidTransition)
}

func (s *TaskServiceTestSuite) TestDeleteTask_HistorySurvives() {
	ctx := context.Background()

	task, err := s.taskService.CreateTask(ctx, service.CreateTaskParams{Title: "Buy groceries"})
	s.Require().NoError(err)

	err = s.taskService.DeleteTask(ctx, task.ID)
	s.Require().NoError(err)

	_, _, err = s.taskService.GetTask(ctx, task.ID)
	s.ErrorIs(err, domain.ErrTaskNotFound)

	histories, err := s.historyRepo.GetByTaskID(ctx, task.ID)
	s.Require().NoError(err)
	s.Require().Len(histories, 2)
	s.Equal(domain.HistoryActionDeleted, histories[0].Action)
}

func (s *TaskServiceTestSuite) TestGenerateAll_IdempotentAcrossRuns() {
	ctx := context.Background()

	recurrenceType := domain.RecurrenceWeekly
	template, err := s.taskService.CreateTask(ctx, service.CreateTaskParams{
		Title:          "Weekly review",
		IsRecurring:    true,
		RecurrenceType: &recurrenceType,
		RecurrenceDays: []int{1, 3, 5},
	})
	s.Require().NoError(err)

	instances, err := s.taskRepo.ListInstances(ctx, template.ID)
	s.Require().NoError(err)
	before := len(instances)

	materializer := service.NewMaterializer(s.taskRepo, s.historyRepo)
	results, err := materializer.GenerateAll(ctx)
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.NoError(results[0].Err)
	s.Equal(0, results[0].Created)

	instances, err = s.taskRepo.ListInstances(ctx, template.ID)
	s.Require().NoError(err)
	s.Len(instances, before)
}

func TestTaskServiceTestSuite(t *testing.T) {
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set; skipping database tests")
	}
	suite.Run(t, new(TaskServiceTestSuite))
}
