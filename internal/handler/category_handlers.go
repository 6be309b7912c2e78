package handler

import (
	"encoding/json"
	"net/http"

	"github.com/kormoapp/kormo/internal/domain"
	"github.com/kormoapp/kormo/internal/handler/dto"
)

// handleListCategories handles GET /api/v1/categories
// @Summary List categories
// @Description Get all categories ordered by name
// @Tags categories
// @Produce json
// @Success 200 {array} dto.CategoryResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/categories [get]
func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categories, err := h.categoryRepo.List(ctx)
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	response := make([]dto.CategoryResponse, len(categories))
	for i, category := range categories {
		response[i] = dto.ToCategoryResponse(category)
	}

	respondJSON(w, http.StatusOK, response)
}

// handleCreateCategory handles POST /api/v1/categories
// @Summary Create a category
// @Description Create a category with a unique name
// @Tags categories
// @Accept json
// @Produce json
// @Param request body dto.CreateCategoryRequest true "Category to create"
// @Success 201 {object} dto.CategoryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /api/v1/categories [post]
func (h *Handler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid JSON body")
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "category name is required")
		return
	}
	if req.Color == "" {
		req.Color = "#6b7280"
	}

	category, err := h.categoryRepo.Create(ctx, &domain.Category{
		Name:        req.Name,
		Color:       req.Color,
		Description: req.Description,
	})
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	respondJSON(w, http.StatusCreated, dto.ToCategoryResponse(category))
}
