package handler

import (
	"encoding/json"
	"net/http"

	"github.com/kormoapp/kormo/internal/domain"
	"github.com/kormoapp/kormo/internal/handler/dto"
	"github.com/kormoapp/kormo/internal/repository"
	"github.com/kormoapp/kormo/internal/service"
)

// handleListTasks handles GET /api/v1/tasks
// @Summary List tasks
// @Description Get tasks, optionally filtered by status, priority, or category
// @Tags tasks
// @Produce json
// @Param status query string false "Filter by status" Enums(PENDING, IN_PROGRESS, COMPLETED, CANCELLED)
// @Param priority query string false "Filter by priority" Enums(LOW, MEDIUM, HIGH, URGENT)
// @Param category_id query string false "Filter by category ID"
// @Success 200 {object} dto.TasksListResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/tasks [get]
func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filters := repository.TaskListFilters{}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.TaskStatus(raw)
		if !status.IsValid() {
			respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid status: "+raw)
			return
		}
		filters.Status = &status
	}
	if raw := r.URL.Query().Get("priority"); raw != "" {
		priority := domain.TaskPriority(raw)
		if !priority.IsValid() {
			respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid priority: "+raw)
			return
		}
		filters.Priority = &priority
	}
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		filters.CategoryID = &raw
	}

	tasks, err := h.taskService.ListTasks(ctx, filters)
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	response := dto.TasksListResponse{
		Tasks: make([]dto.TaskResponse, len(tasks)),
		Total: len(tasks),
	}
	for i, task := range tasks {
		response.Tasks[i] = dto.ToTaskResponse(task)
	}

	respondJSON(w, http.StatusOK, response)
}

// handleCreateTask handles POST /api/v1/tasks
// @Summary Create a task
// @Description Create a standalone task or a recurring template. Creating a template also generates its first horizon of instances.
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body dto.CreateTaskRequest true "Task to create"
// @Success 201 {object} dto.TaskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /api/v1/tasks [post]
func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid JSON body")
		return
	}

	params := service.CreateTaskParams{
		Title:          req.Title,
		Description:    req.Description,
		Priority:       domain.TaskPriority(req.Priority),
		CategoryID:     req.CategoryID,
		DueDate:        req.DueDate,
		IsRecurring:    req.IsRecurring,
		RecurrenceDays: req.RecurrenceDays,
	}
	if req.RecurrenceType != nil {
		recurrenceType := domain.RecurrenceType(*req.RecurrenceType)
		params.RecurrenceType = &recurrenceType
	}
	if req.Priority != "" && !params.Priority.IsValid() {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid priority: "+req.Priority)
		return
	}

	task, err := h.taskService.CreateTask(ctx, params)
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	respondJSON(w, http.StatusCreated, dto.ToTaskResponse(task))
}

// handleGetTask handles GET /api/v1/tasks/{id}
// @Summary Get a task
// @Description Get a task with its full history, newest entries first
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} dto.TaskDetailResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/tasks/{id} [get]
func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskID, ok := extractTaskID(w, r)
	if !ok {
		return
	}

	task, histories, err := h.taskService.GetTask(ctx, taskID)
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTaskDetailResponse(task, histories))
}

// handleUpdateTask handles PUT /api/v1/tasks/{id}
// @Summary Update a task
// @Description Update task fields. Status changes are validated against the task state machine and recorded in history.
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body dto.UpdateTaskRequest true "Fields to update"
// @Success 200 {object} dto.TaskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /api/v1/tasks/{id} [put]
func (h *Handler) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskID, ok := extractTaskID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid JSON body")
		return
	}

	params := service.UpdateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		DueDate:     req.DueDate,
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		params.Priority = &priority
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		params.Status = &status
	}

	task, err := h.taskService.UpdateTask(ctx, taskID, params)
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTaskResponse(task))
}

// handleDeleteTask handles DELETE /api/v1/tasks/{id}
// @Summary Delete a task
// @Description Delete a task. The DELETED history entry is written before removal and survives it.
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 204 "No Content"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/tasks/{id} [delete]
func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskID, ok := extractTaskID(w, r)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(ctx, taskID); err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleListInstances handles GET /api/v1/tasks/{id}/instances
// @Summary List instances of a recurring template
// @Description Get every generated instance of a recurring template, ordered by due date
// @Tags tasks
// @Produce json
// @Param id path string true "Template task ID"
// @Success 200 {object} dto.TasksListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /api/v1/tasks/{id}/instances [get]
func (h *Handler) handleListInstances(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskID, ok := extractTaskID(w, r)
	if !ok {
		return
	}

	template, err := h.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}
	if !template.IsTemplate() {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "task is not a recurring template")
		return
	}

	instances, err := h.taskRepo.ListInstances(ctx, taskID)
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	response := dto.TasksListResponse{
		Tasks: make([]dto.TaskResponse, len(instances)),
		Total: len(instances),
	}
	for i, instance := range instances {
		response.Tasks[i] = dto.ToTaskResponse(instance)
	}

	respondJSON(w, http.StatusOK, response)
}
