package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/experience-marketplace/internal/domain"
	"github.com/prohmpiriya/experience-marketplace/internal/dto"
	"github.com/prohmpiriya/experience-marketplace/internal/service"
	"github.com/prohmpiriya/experience-marketplace/pkg/response"
)

// CategoryHandler handles category HTTP requests
type CategoryHandler struct {
	categoryService service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// List handles GET /categories. Admins may pass ?all=true to include
// inactive categories.
func (h *CategoryHandler) List(c *gin.Context) {
	all := false
	if actor := optionalActor(c); actor != nil && actor.IsAdmin() {
		all = c.Query("all") == "true"
	}

	categories, err := h.categoryService.ListCategories(c.Request.Context(), all)
	if err != nil {
		respondError(c, err, "Failed to list categories")
		return
	}

	result := make([]*dto.CategoryResponse, len(categories))
	for i, category := range categories {
		result[i] = toCategoryResponse(category)
	}
	c.JSON(http.StatusOK, response.Success(result))
}

// Create handles POST /admin/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.BadRequest(msg))
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create category")
		return
	}

	c.JSON(http.StatusCreated, response.Success(toCategoryResponse(category)))
}

func toCategoryResponse(category *domain.ExperienceCategory) *dto.CategoryResponse {
	return &dto.CategoryResponse{
		ID:          category.ID,
		Slug:        category.Slug,
		Name:        category.Name,
		Description: category.Description,
		Kind:        category.Kind().String(),
		IsActive:    category.IsActive,
	}
}
