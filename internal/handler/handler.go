package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/kormoapp/kormo/docs" // Import generated docs
	"github.com/kormoapp/kormo/internal/handler/dto"
	"github.com/kormoapp/kormo/internal/middleware"
	"github.com/kormoapp/kormo/internal/repository"
	"github.com/kormoapp/kormo/internal/service"
	"github.com/kormoapp/kormo/internal/static"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	pool         *pgxpool.Pool
	taskService  *service.TaskService
	materializer *service.Materializer
	propagator   *service.Propagator
	taskRepo     *repository.TaskRepository
	historyRepo  *repository.TaskHistoryRepository
	categoryRepo *repository.CategoryRepository
}

// New creates a new Handler instance with all dependencies.
func New(pool *pgxpool.Pool) *Handler {
	// Create repositories
	taskRepo := repository.NewTaskRepository(pool)
	historyRepo := repository.NewTaskHistoryRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)

	// Create services
	materializer := service.NewMaterializer(taskRepo, historyRepo)
	propagator := service.NewPropagator(taskRepo, historyRepo)
	taskService := service.NewTaskService(pool, taskRepo, historyRepo, categoryRepo, materializer)

	return &Handler{
		pool:         pool,
		taskService:  taskService,
		materializer: materializer,
		propagator:   propagator,
		taskRepo:     taskRepo,
		historyRepo:  historyRepo,
		categoryRepo: categoryRepo,
	}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Landing page and health check
	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("GET /healthz", h.handleHealthz)

	// Swagger UI
	mux.HandleFunc("GET /swagger/", httpSwagger.Handler())

	// API v1 routes
	mux.Handle("GET /api/v1/tasks", middleware.RequestLogger(http.HandlerFunc(h.handleListTasks)))
	mux.Handle("POST /api/v1/tasks", middleware.RequestLogger(http.HandlerFunc(h.handleCreateTask)))
	mux.Handle("GET /api/v1/tasks/{id}", middleware.RequestLogger(http.HandlerFunc(h.handleGetTask)))
	mux.Handle("PUT /api/v1/tasks/{id}", middleware.RequestLogger(http.HandlerFunc(h.handleUpdateTask)))
	mux.Handle("DELETE /api/v1/tasks/{id}", middleware.RequestLogger(http.HandlerFunc(h.handleDeleteTask)))
	mux.Handle("GET /api/v1/tasks/{id}/instances", middleware.RequestLogger(http.HandlerFunc(h.handleListInstances)))
	mux.Handle("POST /api/v1/recurring-tasks/create-instances", middleware.RequestLogger(http.HandlerFunc(h.handleCreateInstances)))
	mux.Handle("PUT /api/v1/recurring-tasks/{id}", middleware.RequestLogger(http.HandlerFunc(h.handleUpdateRecurringTask)))
	mux.Handle("DELETE /api/v1/recurring-tasks/{id}", middleware.RequestLogger(http.HandlerFunc(h.handleDeleteRecurringTask)))
	mux.Handle("GET /api/v1/categories", middleware.RequestLogger(http.HandlerFunc(h.handleListCategories)))
	mux.Handle("POST /api/v1/categories", middleware.RequestLogger(http.HandlerFunc(h.handleCreateCategory)))
	mux.Handle("GET /api/v1/statistics", middleware.RequestLogger(http.HandlerFunc(h.handleGetStatistics)))
}

// handleIndex serves the embedded landing page.
func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(static.IndexHTML))
}

// handleHealthz returns 200 OK if the database is reachable.
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.pool.Ping(ctx); err != nil {
		slog.Error("database health check failed", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Ping checks if the database is reachable (used for testing).
func (h *Handler) Ping(ctx context.Context) error {
	return h.pool.Ping(ctx)
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes a standard error response.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, dto.NewErrorResponse(code, message))
}

// extractTaskID extracts and validates task ID from path parameter.
// Returns (taskID, true) if valid, ("", false) if invalid (error already sent to client).
func extractTaskID(w http.ResponseWriter, r *http.Request) (string, bool) {
	taskID := r.PathValue("id")
	if taskID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "task id is required")
		return "", false
	}

	if _, err := uuid.Parse(taskID); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "task id must be a valid UUID")
		return "", false
	}

	return taskID, true
}
