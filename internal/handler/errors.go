package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prohmpiriya/experience-marketplace/internal/domain"
	"github.com/prohmpiriya/experience-marketplace/pkg/logger"
	"github.com/prohmpiriya/experience-marketplace/pkg/middleware"
	"github.com/prohmpiriya/experience-marketplace/pkg/response"
)

// respondError maps a service error onto the response envelope.
// Unclassified errors are logged and answered with fallback.
func respondError(c *gin.Context, err error, fallback string) {
	switch {
	case domain.IsTransitionError(err):
		c.JSON(http.StatusBadRequest, response.Error(response.ErrCodeInvalidTransition, err.Error()))
	case errors.Is(err, domain.ErrHasActiveBookings):
		c.JSON(http.StatusBadRequest, response.ErrorWithDetails(
			response.ErrCodeActiveBookings,
			"Experience has active bookings and cannot be deleted",
			"suspend the experience instead",
		))
	case errors.Is(err, domain.ErrExperienceNotBookable):
		c.JSON(http.StatusBadRequest, response.Error(response.ErrCodeNotBookable, err.Error()))
	case domain.IsValidationError(err):
		c.JSON(http.StatusBadRequest, response.Error(response.ErrCodeValidation, err.Error()))
	case domain.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, response.NotFound(err.Error()))
	case domain.IsForbiddenError(err):
		c.JSON(http.StatusForbidden, response.Forbidden(err.Error()))
	case domain.IsConflictError(err):
		c.JSON(http.StatusConflict, response.Conflict(err.Error()))
	default:
		logger.Get().Error(fallback,
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, response.InternalError(fallback))
	}
}

// bindOptionalJSON binds a body that may be absent. Chunked bodies carry
// no Content-Length, so only a read that yields nothing counts as empty.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return nil
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// currentActor returns the authenticated caller
func currentActor(c *gin.Context) (domain.Actor, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok || userID == "" {
		return domain.Actor{}, false
	}
	return domain.Actor{UserID: userID, Role: domain.Role(middleware.GetUserRole(c))}, true
}

// optionalActor returns nil for anonymous callers
func optionalActor(c *gin.Context) *domain.Actor {
	actor, ok := currentActor(c)
	if !ok {
		return nil
	}
	return &actor
}

func requireActor(c *gin.Context) (domain.Actor, bool) {
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized("User not authenticated"))
	}
	return actor, ok
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}
