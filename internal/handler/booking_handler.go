package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/experience-marketplace/internal/domain"
	"github.com/prohmpiriya/experience-marketplace/internal/dto"
	"github.com/prohmpiriya/experience-marketplace/internal/service"
	"github.com/prohmpiriya/experience-marketplace/pkg/middleware"
	"github.com/prohmpiriya/experience-marketplace/pkg/response"
)

// BookingHandler handles booking HTTP requests
type BookingHandler struct {
	bookingService service.BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
	}
}

// Quote handles POST /bookings/quote - prices a booking without saving it
func (h *BookingHandler) Quote(c *gin.Context) {
	var req dto.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	quote, err := h.bookingService.QuoteBooking(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to quote booking")
		return
	}

	c.JSON(http.StatusOK, response.Success(&dto.QuoteResponse{
		ExperienceID:         req.ExperienceID,
		Category:             quote.Category.String(),
		TotalPrice:           quote.TotalPrice,
		Currency:             quote.Currency,
		CategorySpecificData: quote.Details,
	}))
}

// Create handles POST /bookings. Anonymous callers book as guests.
func (h *BookingHandler) Create(c *gin.Context) {
	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	if key, ok := middleware.GetIdempotencyKey(c); ok {
		req.IdempotencyKey = key
	}
	if actor, ok := currentActor(c); ok {
		req.TravelerID = &actor.UserID
		if req.GuestEmail == "" {
			req.GuestEmail = middleware.GetUserEmail(c)
		}
	}

	if valid, msg := req.Validate(time.Now()); !valid {
		c.JSON(http.StatusBadRequest, response.BadRequest(msg))
		return
	}

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create booking")
		return
	}

	c.JSON(http.StatusCreated, response.Success(toBookingResponse(booking)))
}

// Get handles GET /bookings/:id
func (h *BookingHandler) Get(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.GetBooking(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get booking")
		return
	}

	c.JSON(http.StatusOK, response.Success(toBookingResponse(booking)))
}

// ListMine handles GET /bookings/me - lists the caller's bookings
func (h *BookingHandler) ListMine(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	h.list(c, func(f *dto.BookingListFilter) { f.TravelerID = actor.UserID })
}

// ListHost handles GET /host/bookings - lists bookings of the caller's experiences
func (h *BookingHandler) ListHost(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	h.list(c, func(f *dto.BookingListFilter) { f.HostID = actor.UserID })
}

// ListAll handles GET /admin/bookings
func (h *BookingHandler) ListAll(c *gin.Context) {
	h.list(c, func(*dto.BookingListFilter) {})
}

func (h *BookingHandler) list(c *gin.Context, scope func(f *dto.BookingListFilter)) {
	var filter dto.BookingListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid query parameters"))
		return
	}
	scope(&filter)

	bookings, total, err := h.bookingService.ListBookings(c.Request.Context(), &filter)
	if err != nil {
		respondError(c, err, "Failed to list bookings")
		return
	}

	result := make([]*dto.BookingResponse, len(bookings))
	for i, b := range bookings {
		result[i] = toBookingResponse(b)
	}
	c.JSON(http.StatusOK, response.Paginated(result, filter.Page, filter.Limit, int64(total)))
}

// Cancel handles POST /bookings/:id/cancel
func (h *BookingHandler) Cancel(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req dto.CancelBookingRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	booking, err := h.bookingService.CancelBooking(c.Request.Context(), actor, c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err, "Failed to cancel booking")
		return
	}

	c.JSON(http.StatusOK, response.Success(toBookingResponse(booking)))
}

// Advance returns a handler for the host-side status actions,
// e.g. POST /host/bookings/:id/confirm
func (h *BookingHandler) Advance(action domain.BookingAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c)
		if !ok {
			return
		}

		booking, err := h.bookingService.AdvanceBooking(c.Request.Context(), actor, c.Param("id"), action)
		if err != nil {
			respondError(c, err, "Failed to "+string(action)+" booking")
			return
		}

		c.JSON(http.StatusOK, response.Success(toBookingResponse(booking)))
	}
}

// toBookingResponse converts domain.Booking to dto.BookingResponse
func toBookingResponse(b *domain.Booking) *dto.BookingResponse {
	return &dto.BookingResponse{
		ID:                   b.ID,
		Reference:            b.Reference,
		ExperienceID:         b.ExperienceID,
		TravelerID:           b.TravelerID,
		GuestName:            b.GuestName,
		GuestEmail:           b.GuestEmail,
		GuestPhone:           b.GuestPhone,
		BookingDate:          b.BookingDate.Format(dto.BookingDateLayout),
		StartTime:            b.StartTime,
		ParticipantCount:     b.ParticipantCount,
		TotalPrice:           b.TotalPrice,
		Currency:             b.Currency,
		Status:               b.Status.String(),
		Category:             b.Category.String(),
		CategorySpecificData: b.CategoryDetails,
		SpecialRequests:      strings.TrimSpace(b.SpecialRequests),
		CancellationReason:   b.CancellationReason,
		ConfirmedAt:          formatTimePtr(b.ConfirmedAt),
		CancelledAt:          formatTimePtr(b.CancelledAt),
		CompletedAt:          formatTimePtr(b.CompletedAt),
		CreatedAt:            formatTime(b.CreatedAt),
		UpdatedAt:            formatTime(b.UpdatedAt),
	}
}
