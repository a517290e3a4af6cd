package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"github.com/prohmpiriya/experience-marketplace/internal/domain"
	"github.com/prohmpiriya/experience-marketplace/internal/dto"
	"github.com/prohmpiriya/experience-marketplace/pkg/middleware"
	"github.com/prohmpiriya/experience-marketplace/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockExperienceService is a mock implementation of ExperienceService
type MockExperienceService struct {
	mock.Mock
}

func (m *MockExperienceService) CreateExperience(ctx context.Context, req *dto.CreateExperienceRequest) (*domain.Experience, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Experience), args.Error(1)
}

func (m *MockExperienceService) GetExperience(ctx context.Context, id string, viewer *domain.Actor) (*domain.Experience, error) {
	args := m.Called(ctx, id, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Experience), args.Error(1)
}

func (m *MockExperienceService) ListPublished(ctx context.Context, filter *dto.ExperienceListFilter) ([]*domain.Experience, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*domain.Experience), args.Int(1), args.Error(2)
}

func (m *MockExperienceService) ListByHost(ctx context.Context, hostID string, filter *dto.ExperienceListFilter) ([]*domain.Experience, int, error) {
	args := m.Called(ctx, hostID, filter)
	return args.Get(0).([]*domain.Experience), args.Int(1), args.Error(2)
}

func (m *MockExperienceService) ListAll(ctx context.Context, filter *dto.ExperienceListFilter) ([]*domain.Experience, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*domain.Experience), args.Int(1), args.Error(2)
}

func (m *MockExperienceService) UpdateExperience(ctx context.Context, actor domain.Actor, id string, req *dto.UpdateExperienceRequest) (*domain.Experience, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Experience), args.Error(1)
}

func (m *MockExperienceService) ApplyAction(ctx context.Context, actor domain.Actor, id string, action domain.Action, reason string) (*domain.Experience, error) {
	args := m.Called(ctx, actor, id, action, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Experience), args.Error(1)
}

// MockBookingService is a mock implementation of BookingService
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) QuoteBooking(ctx context.Context, req *dto.QuoteRequest) (*domain.Quote, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *MockBookingService) CreateBooking(ctx context.Context, req *dto.CreateBookingRequest) (*domain.Booking, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) GetBooking(ctx context.Context, actor domain.Actor, id string) (*domain.Booking, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) ListBookings(ctx context.Context, filter *dto.BookingListFilter) ([]*domain.Booking, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*domain.Booking), args.Int(1), args.Error(2)
}

func (m *MockBookingService) CancelBooking(ctx context.Context, actor domain.Actor, id, reason string) (*domain.Booking, error) {
	args := m.Called(ctx, actor, id, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) AdvanceBooking(ctx context.Context, actor domain.Actor, id string, action domain.BookingAction) (*domain.Booking, error) {
	args := m.Called(ctx, actor, id, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

// MockReviewService is a mock implementation of ReviewService
type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) CreateReview(ctx context.Context, req *dto.CreateReviewRequest) (*domain.Review, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *MockReviewService) ListExperienceReviews(ctx context.Context, experienceID string, page *dto.Pagination) ([]*domain.Review, int, *domain.RatingSummary, error) {
	args := m.Called(ctx, experienceID, page)
	var summary *domain.RatingSummary
	if s := args.Get(2); s != nil {
		summary = s.(*domain.RatingSummary)
	}
	return args.Get(0).([]*domain.Review), args.Int(1), summary, args.Error(3)
}

func (m *MockReviewService) SetReviewVisibility(ctx context.Context, id string, visible bool) (*domain.Review, error) {
	args := m.Called(ctx, id, visible)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

// MockCategoryService is a mock implementation of CategoryService
type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) ListCategories(ctx context.Context, all bool) ([]*domain.ExperienceCategory, error) {
	args := m.Called(ctx, all)
	return args.Get(0).([]*domain.ExperienceCategory), args.Error(1)
}

func (m *MockCategoryService) CreateCategory(ctx context.Context, req *dto.CreateCategoryRequest) (*domain.ExperienceCategory, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExperienceCategory), args.Error(1)
}

// newTestRouter sets the caller identity from X-User-ID and X-User-Role
func newTestRouter() *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			c.Set(middleware.ContextKeyUserID, userID)
			c.Set(middleware.ContextKeyRole, c.GetHeader("X-User-Role"))
		}
		c.Next()
	})
	return router
}

func doRequest(router *gin.Engine, method, path string, body any, userID, role string) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != nil {
		raw, _ := json.Marshal(body)
		buf = bytes.NewBuffer(raw)
	} else {
		buf = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
		req.Header.Set("X-User-Role", role)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// doChunkedRequest sends body without a Content-Length, the way a
// client streaming with Transfer-Encoding: chunked does
func doChunkedRequest(router *gin.Engine, method, path, body, userID, role string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, struct{ io.Reader }{strings.NewReader(body)})
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
		req.Header.Set("X-User-Role", role)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}
