package handler

import (
	"encoding/json"
	"net/http"

	"github.com/kormoapp/kormo/internal/domain"
	"github.com/kormoapp/kormo/internal/handler/dto"
	"github.com/kormoapp/kormo/internal/service"
)

// handleCreateInstances handles POST /api/v1/recurring-tasks/create-instances
// @Summary Generate recurring task instances
// @Description Expand every active recurring template over the generation horizon. Safe to call repeatedly; existing instances are never duplicated. A failure for one template does not stop the others.
// @Tags recurring-tasks
// @Produce json
// @Success 200 {object} dto.GenerateInstancesResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/recurring-tasks/create-instances [post]
func (h *Handler) handleCreateInstances(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	results, err := h.materializer.GenerateAll(ctx)
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToGenerateInstancesResponse(results))
}

// handleUpdateRecurringTask handles PUT /api/v1/recurring-tasks/{id}
// @Summary Update a recurring template
// @Description Update a recurring template and propagate title, description, priority, and category to its future non-completed instances. Past-dated and completed instances are left untouched.
// @Tags recurring-tasks
// @Accept json
// @Produce json
// @Param id path string true "Template task ID"
// @Param request body dto.UpdateRecurringTaskRequest true "Fields to update"
// @Success 200 {object} dto.TaskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /api/v1/recurring-tasks/{id} [put]
func (h *Handler) handleUpdateRecurringTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskID, ok := extractTaskID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateRecurringTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid JSON body")
		return
	}

	params := service.UpdateRecurringParams{
		Title:          req.Title,
		Description:    req.Description,
		CategoryID:     req.CategoryID,
		RecurrenceDays: req.RecurrenceDays,
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		if !priority.IsValid() {
			respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid priority: "+*req.Priority)
			return
		}
		params.Priority = &priority
	}
	if req.RecurrenceType != nil {
		recurrenceType := domain.RecurrenceType(*req.RecurrenceType)
		params.RecurrenceType = &recurrenceType
	}

	task, err := h.propagator.UpdateRecurringTask(ctx, taskID, params)
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTaskResponse(task))
}

// handleDeleteRecurringTask handles DELETE /api/v1/recurring-tasks/{id}
// @Summary Delete a recurring template
// @Description Delete a recurring template and all of its instances. Instances are removed first so none is left pointing at a deleted parent.
// @Tags recurring-tasks
// @Produce json
// @Param id path string true "Template task ID"
// @Success 204 "No Content"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /api/v1/recurring-tasks/{id} [delete]
func (h *Handler) handleDeleteRecurringTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskID, ok := extractTaskID(w, r)
	if !ok {
		return
	}

	if err := h.propagator.DeleteRecurringTask(ctx, taskID); err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
