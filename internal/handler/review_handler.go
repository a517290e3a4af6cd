package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/experience-marketplace/internal/domain"
	"github.com/prohmpiriya/experience-marketplace/internal/dto"
	"github.com/prohmpiriya/experience-marketplace/internal/service"
	"github.com/prohmpiriya/experience-marketplace/pkg/response"
)

// ReviewHandler handles review HTTP requests
type ReviewHandler struct {
	reviewService service.ReviewService
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// Create handles POST /reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}
	req.TravelerID = actor.UserID

	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.BadRequest(msg))
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create review")
		return
	}

	c.JSON(http.StatusCreated, response.Success(toReviewResponse(review)))
}

// ListByExperience handles GET /experiences/:id/reviews
func (h *ReviewHandler) ListByExperience(c *gin.Context) {
	var page dto.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid query parameters"))
		return
	}

	reviews, total, summary, err := h.reviewService.ListExperienceReviews(c.Request.Context(), c.Param("id"), &page)
	if err != nil {
		respondError(c, err, "Failed to list reviews")
		return
	}

	result := &dto.ReviewListResponse{
		Reviews:       make([]*dto.ReviewResponse, len(reviews)),
		AverageRating: summary.AverageRating,
		ReviewCount:   summary.ReviewCount,
	}
	for i, r := range reviews {
		result.Reviews[i] = toReviewResponse(r)
	}
	c.JSON(http.StatusOK, response.Paginated(result, page.Page, page.Limit, int64(total)))
}

// SetVisibility handles PATCH /admin/reviews/:id/visibility
func (h *ReviewHandler) SetVisibility(c *gin.Context) {
	var req dto.ReviewVisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("is_visible is required"))
		return
	}

	review, err := h.reviewService.SetReviewVisibility(c.Request.Context(), c.Param("id"), *req.IsVisible)
	if err != nil {
		respondError(c, err, "Failed to update review")
		return
	}

	c.JSON(http.StatusOK, response.Success(toReviewResponse(review)))
}

func toReviewResponse(r *domain.Review) *dto.ReviewResponse {
	return &dto.ReviewResponse{
		ID:           r.ID,
		BookingID:    r.BookingID,
		ExperienceID: r.ExperienceID,
		TravelerID:   r.TravelerID,
		Rating:       r.Rating,
		Comment:      r.Comment,
		IsVisible:    r.IsVisible,
		CreatedAt:    formatTime(r.CreatedAt),
	}
}
