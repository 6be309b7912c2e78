package handler

import (
	"net/http"

	"github.com/kormoapp/kormo/internal/handler/dto"
)

// recentCompletionDays is the window for the completion-per-day series.
const recentCompletionDays = 7

// handleGetStatistics handles GET /api/v1/statistics
// @Summary Get task statistics
// @Description Get task counts by status and priority, per-category counts, the completion rate, and the last week of completions
// @Tags statistics
// @Produce json
// @Success 200 {object} dto.StatisticsResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/statistics [get]
func (h *Handler) handleGetStatistics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	overview, err := h.taskRepo.GetOverviewStats(ctx)
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	categories, err := h.taskRepo.GetCategoryStats(ctx)
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	completions, err := h.taskRepo.GetRecentCompletions(ctx, recentCompletionDays)
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToStatisticsResponse(overview, categories, completions))
}
