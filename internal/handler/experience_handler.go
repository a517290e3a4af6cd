package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/experience-marketplace/internal/domain"
	"github.com/prohmpiriya/experience-marketplace/internal/dto"
	"github.com/prohmpiriya/experience-marketplace/internal/service"
	"github.com/prohmpiriya/experience-marketplace/pkg/response"
)

// ExperienceHandler handles experience-related HTTP requests
type ExperienceHandler struct {
	experienceService service.ExperienceService
}

// NewExperienceHandler creates a new ExperienceHandler
func NewExperienceHandler(experienceService service.ExperienceService) *ExperienceHandler {
	return &ExperienceHandler{
		experienceService: experienceService,
	}
}

// List handles GET /experiences - lists published experiences
func (h *ExperienceHandler) List(c *gin.Context) {
	var filter dto.ExperienceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid query parameters"))
		return
	}

	experiences, total, err := h.experienceService.ListPublished(c.Request.Context(), &filter)
	if err != nil {
		respondError(c, err, "Failed to list experiences")
		return
	}

	c.JSON(http.StatusOK, response.Paginated(toExperienceResponses(experiences), filter.Page, filter.Limit, int64(total)))
}

// Get handles GET /experiences/:id
func (h *ExperienceHandler) Get(c *gin.Context) {
	exp, err := h.experienceService.GetExperience(c.Request.Context(), c.Param("id"), optionalActor(c))
	if err != nil {
		respondError(c, err, "Failed to get experience")
		return
	}

	c.JSON(http.StatusOK, response.Success(toExperienceResponse(exp)))
}

// Create handles POST /host/experiences - creates a draft experience
func (h *ExperienceHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req dto.CreateExperienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}
	req.HostID = actor.UserID

	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.BadRequest(msg))
		return
	}

	exp, err := h.experienceService.CreateExperience(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			c.JSON(http.StatusBadRequest, response.BadRequest("Category not found"))
			return
		}
		respondError(c, err, "Failed to create experience")
		return
	}

	c.JSON(http.StatusCreated, response.Success(toExperienceResponse(exp)))
}

// ListMine handles GET /host/experiences - lists the caller's experiences
func (h *ExperienceHandler) ListMine(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var filter dto.ExperienceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid query parameters"))
		return
	}

	experiences, total, err := h.experienceService.ListByHost(c.Request.Context(), actor.UserID, &filter)
	if err != nil {
		respondError(c, err, "Failed to list experiences")
		return
	}

	c.JSON(http.StatusOK, response.Paginated(toExperienceResponses(experiences), filter.Page, filter.Limit, int64(total)))
}

// ListAll handles GET /admin/experiences - lists experiences in any status
func (h *ExperienceHandler) ListAll(c *gin.Context) {
	var filter dto.ExperienceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid query parameters"))
		return
	}

	experiences, total, err := h.experienceService.ListAll(c.Request.Context(), &filter)
	if err != nil {
		respondError(c, err, "Failed to list experiences")
		return
	}

	c.JSON(http.StatusOK, response.Paginated(toExperienceResponses(experiences), filter.Page, filter.Limit, int64(total)))
}

// Update handles PUT /host/experiences/:id
func (h *ExperienceHandler) Update(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req dto.UpdateExperienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.BadRequest(msg))
		return
	}

	exp, err := h.experienceService.UpdateExperience(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			c.JSON(http.StatusBadRequest, response.BadRequest("Category not found"))
			return
		}
		respondError(c, err, "Failed to update experience")
		return
	}

	c.JSON(http.StatusOK, response.Success(toExperienceResponse(exp)))
}

// Action returns a handler running one lifecycle action, e.g.
// POST /host/experiences/:id/submit or DELETE /host/experiences/:id.
// The optional JSON body carries the reason.
func (h *ExperienceHandler) Action(action domain.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c)
		if !ok {
			return
		}

		var req dto.ExperienceActionRequest
		if err := bindOptionalJSON(c, &req); err != nil {
			c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
			return
		}

		exp, err := h.experienceService.ApplyAction(c.Request.Context(), actor, c.Param("id"), action, req.Reason)
		if err != nil {
			respondError(c, err, "Failed to "+string(action)+" experience")
			return
		}

		c.JSON(http.StatusOK, response.Success(toExperienceResponse(exp)))
	}
}

func toExperienceResponses(experiences []*domain.Experience) []*dto.ExperienceResponse {
	result := make([]*dto.ExperienceResponse, len(experiences))
	for i, exp := range experiences {
		result[i] = toExperienceResponse(exp)
	}
	return result
}

// toExperienceResponse converts domain.Experience to dto.ExperienceResponse
func toExperienceResponse(exp *domain.Experience) *dto.ExperienceResponse {
	return &dto.ExperienceResponse{
		ID:               exp.ID,
		HostID:           exp.HostID,
		CategoryID:       exp.CategoryID,
		Category:         exp.CategorySlug,
		Title:            exp.Title,
		Slug:             exp.Slug,
		Description:      exp.Description,
		Location:         exp.Location,
		PricePerPackage:  exp.PricePerPackage,
		Currency:         exp.Currency,
		MinParticipants:  exp.MinParticipants,
		MaxParticipants:  exp.MaxParticipants,
		DurationMinutes:  exp.DurationMinutes,
		Status:           exp.Status.String(),
		RejectionReason:  exp.RejectionReason,
		RejectedAt:       formatTimePtr(exp.RejectedAt),
		SuspensionReason: exp.SuspensionReason,
		SuspendedAt:      formatTimePtr(exp.SuspendedAt),
		PublishedAt:      formatTimePtr(exp.PublishedAt),
		CreatedAt:        formatTime(exp.CreatedAt),
		UpdatedAt:        formatTime(exp.UpdatedAt),
	}
}
