package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/experience-marketplace/internal/domain"
	"github.com/prohmpiriya/experience-marketplace/internal/dto"
	"github.com/prohmpiriya/experience-marketplace/pkg/logger"
)

var (
	travelerActor = domain.Actor{UserID: "traveler-1", Role: domain.RoleTraveler}
	strangerActor = domain.Actor{UserID: "traveler-2", Role: domain.RoleTraveler}
)

type bookingFixture struct {
	svc       BookingService
	expRepo   *MockExperienceRepository
	bookRepo  *MockBookingRepository
	publisher *recordingPublisher
}

func newBookingFixture() *bookingFixture {
	f := &bookingFixture{
		expRepo:   NewMockExperienceRepository(),
		bookRepo:  NewMockBookingRepository(),
		publisher: &recordingPublisher{},
	}
	f.svc = NewBookingService(f.bookRepo, f.expRepo, f.publisher, logger.NewNop())

	f.addExperience("exp-guide", "guide", domain.ExperienceStatusPublished, 100)
	f.addExperience("exp-photo", "photographer", domain.ExperienceStatusPublished, 100)
	f.addExperience("exp-trip", "tripplanner", domain.ExperienceStatusPublished, 500)
	f.addExperience("exp-combo", "combo", domain.ExperienceStatusPublished, 100)
	f.addExperience("exp-draft", "guide", domain.ExperienceStatusDraft, 100)
	f.addExperience("exp-paused", "guide", domain.ExperienceStatusPaused, 100)
	f.addExperience("exp-suspended", "guide", domain.ExperienceStatusSuspended, 100)
	return f
}

func (f *bookingFixture) addExperience(id, category string, status domain.ExperienceStatus, price float64) {
	f.expRepo.experiences[id] = &domain.Experience{
		ID:              id,
		HostID:          hostActor.UserID,
		CategorySlug:    category,
		Title:           id,
		PricePerPackage: price,
		Currency:        "IDR",
		MinParticipants: 1,
		MaxParticipants: 6,
		Status:          status,
	}
}

func nextWeek() string {
	return time.Now().UTC().AddDate(0, 0, 7).Format(dto.BookingDateLayout)
}

func travelerRequest(experienceID string, participants int) *dto.CreateBookingRequest {
	traveler := travelerActor.UserID
	return &dto.CreateBookingRequest{
		ExperienceID:     experienceID,
		BookingDate:      nextWeek(),
		StartTime:        "09:00",
		ParticipantCount: participants,
		TravelerID:       &traveler,
	}
}

func (f *bookingFixture) book(t *testing.T, experienceID string) *domain.Booking {
	t.Helper()
	booking, err := f.svc.CreateBooking(context.Background(), travelerRequest(experienceID, 2))
	require.NoError(t, err)
	return booking
}

func TestBookingService_QuoteBooking(t *testing.T) {
	tests := []struct {
		name         string
		req          *dto.QuoteRequest
		wantCategory domain.Category
		wantPrice    float64
	}{
		{
			name:         "guide per participant",
			req:          &dto.QuoteRequest{ExperienceID: "exp-guide", ParticipantCount: 3},
			wantCategory: domain.CategoryGuide,
			wantPrice:    300,
		},
		{
			name: "photographer premium",
			req: &dto.QuoteRequest{
				ExperienceID:    "exp-photo",
				CategoryDetails: domain.BookingDetails{PackageType: "premium"},
			},
			wantCategory: domain.CategoryPhotographer,
			wantPrice:    200,
		},
		{
			name:         "trip planner flat",
			req:          &dto.QuoteRequest{ExperienceID: "exp-trip", ParticipantCount: 4},
			wantCategory: domain.CategoryTripPlanner,
			wantPrice:    500,
		},
		{
			name: "combo with photography",
			req: &dto.QuoteRequest{
				ExperienceID:    "exp-combo",
				CategoryDetails: domain.BookingDetails{SelectedServices: []string{"guide", "photography"}},
			},
			wantCategory: domain.CategoryCombo,
			wantPrice:    180,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture()
			quote, err := f.svc.QuoteBooking(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCategory, quote.Category)
			assert.Equal(t, tt.wantPrice, quote.TotalPrice)
			assert.Equal(t, tt.wantCategory, quote.Details.Category())
			assert.Empty(t, f.bookRepo.bookings)
		})
	}
}

func TestBookingService_QuoteBooking_Capacity(t *testing.T) {
	tests := []struct {
		name    string
		req     *dto.QuoteRequest
		wantErr error
	}{
		{
			name:    "top-level count over capacity",
			req:     &dto.QuoteRequest{ExperienceID: "exp-guide", ParticipantCount: 50},
			wantErr: domain.ErrParticipantsOutOfRange,
		},
		{
			name:    "negative count",
			req:     &dto.QuoteRequest{ExperienceID: "exp-guide", ParticipantCount: -2},
			wantErr: domain.ErrInvalidParticipants,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture()
			_, err := f.svc.QuoteBooking(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBookingService_QuoteBooking_NestedCountIgnored(t *testing.T) {
	var req dto.QuoteRequest
	require.NoError(t, json.Unmarshal(
		[]byte(`{"experience_id":"exp-guide","category_details":{"participant_count":50}}`), &req))

	f := newBookingFixture()
	quote, err := f.svc.QuoteBooking(context.Background(), &req)
	require.NoError(t, err)
	assert.Equal(t, float64(100), quote.TotalPrice)
}

func TestBookingService_CreateBooking(t *testing.T) {
	f := newBookingFixture()

	booking := f.book(t, "exp-guide")

	assert.Equal(t, domain.BookingStatusPending, booking.Status)
	assert.Equal(t, 200.0, booking.TotalPrice)
	assert.Equal(t, "IDR", booking.Currency)
	assert.Equal(t, domain.CategoryGuide, booking.Category)
	assert.Regexp(t, `^BK-[0-9A-F]{10}$`, booking.Reference)
	assert.True(t, booking.BelongsToTraveler(travelerActor.UserID))

	details, ok := booking.CategoryDetails.(domain.GuideDetails)
	require.True(t, ok)
	assert.Equal(t, []string{"Indonesian", "English"}, details.Languages)

	payment := f.bookRepo.payments[booking.ID]
	require.NotNil(t, payment)
	assert.Equal(t, domain.PaymentStatusPending, payment.Status)
	assert.Equal(t, booking.TotalPrice, payment.Amount)

	events := f.publisher.ofType(domain.EventBookingCreated)
	require.Len(t, events, 1)
	assert.Equal(t, booking.ID, events[0].AggregateID)
}

func TestBookingService_CreateBooking_Guest(t *testing.T) {
	f := newBookingFixture()

	booking, err := f.svc.CreateBooking(context.Background(), &dto.CreateBookingRequest{
		ExperienceID:     "exp-photo",
		BookingDate:      nextWeek(),
		ParticipantCount: 1,
		GuestName:        "Ayu",
		GuestEmail:       "ayu@example.com",
	})
	require.NoError(t, err)

	assert.True(t, booking.IsGuest())
	assert.Equal(t, 100.0, booking.TotalPrice)
	details, ok := booking.CategoryDetails.(domain.PhotographerDetails)
	require.True(t, ok)
	assert.Equal(t, "standard", details.PackageType)
	assert.Equal(t, 25, details.EditedPhotos)
}

func TestBookingService_CreateBooking_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *dto.CreateBookingRequest)
		wantErr error
		checkFn func(error) bool
	}{
		{
			name:    "draft experience",
			mutate:  func(r *dto.CreateBookingRequest) { r.ExperienceID = "exp-draft" },
			wantErr: domain.ErrExperienceNotBookable,
		},
		{
			name:    "paused experience",
			mutate:  func(r *dto.CreateBookingRequest) { r.ExperienceID = "exp-paused" },
			wantErr: domain.ErrExperienceNotBookable,
		},
		{
			name:    "suspended experience",
			mutate:  func(r *dto.CreateBookingRequest) { r.ExperienceID = "exp-suspended" },
			wantErr: domain.ErrExperienceNotBookable,
		},
		{
			name:    "missing experience",
			mutate:  func(r *dto.CreateBookingRequest) { r.ExperienceID = "exp-missing" },
			wantErr: domain.ErrExperienceNotFound,
		},
		{
			name:    "over capacity",
			mutate:  func(r *dto.CreateBookingRequest) { r.ParticipantCount = 7 },
			wantErr: domain.ErrParticipantsOutOfRange,
		},
		{
			name: "past date",
			mutate: func(r *dto.CreateBookingRequest) {
				r.BookingDate = time.Now().UTC().AddDate(0, 0, -1).Format(dto.BookingDateLayout)
			},
			checkFn: domain.IsValidationError,
		},
		{
			name: "guest without contact",
			mutate: func(r *dto.CreateBookingRequest) {
				r.TravelerID = nil
				r.GuestName = "Ayu"
			},
			checkFn: domain.IsValidationError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture()
			req := travelerRequest("exp-guide", 2)
			tt.mutate(req)

			_, err := f.svc.CreateBooking(context.Background(), req)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.checkFn != nil {
				assert.True(t, tt.checkFn(err), "unexpected error %v", err)
			}
			assert.Empty(t, f.bookRepo.bookings)
			assert.Empty(t, f.publisher.events)
		})
	}
}

func TestBookingService_CreateBooking_StorageFailure(t *testing.T) {
	f := newBookingFixture()
	f.bookRepo.createErr = errBroker

	_, err := f.svc.CreateBooking(context.Background(), travelerRequest("exp-guide", 1))

	assert.ErrorIs(t, err, errBroker)
	assert.Empty(t, f.publisher.events)
}

func TestBookingService_GetBooking_Access(t *testing.T) {
	f := newBookingFixture()
	booking := f.book(t, "exp-guide")

	tests := []struct {
		name    string
		actor   domain.Actor
		wantErr bool
	}{
		{name: "traveler", actor: travelerActor},
		{name: "host", actor: hostActor},
		{name: "admin", actor: adminActor},
		{name: "other traveler", actor: strangerActor, wantErr: true},
		{name: "other host", actor: otherHost, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.GetBooking(context.Background(), tt.actor, booking.ID)
			if (err != nil) != tt.wantErr {
				t.Errorf("GetBooking() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrBookingAccessDenied)
			}
		})
	}
}

func TestBookingService_CancelBooking(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture()
	booking := f.book(t, "exp-guide")

	_, err := f.svc.CancelBooking(ctx, strangerActor, booking.ID, "")
	assert.ErrorIs(t, err, domain.ErrBookingAccessDenied)

	got, err := f.svc.CancelBooking(ctx, travelerActor, booking.ID, "change of plans")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, got.Status)
	assert.Equal(t, "change of plans", got.CancellationReason)
	assert.NotNil(t, got.CancelledAt)
	assert.Equal(t, domain.BookingStatusCancelled, f.bookRepo.bookings[booking.ID].Status)

	_, err = f.svc.CancelBooking(ctx, travelerActor, booking.ID, "")
	assert.True(t, domain.IsTransitionError(err))

	events := f.publisher.ofType(domain.EventBookingStatusChanged)
	require.Len(t, events, 1)
	payload := events[0].Data.(domain.BookingStatusChanged)
	assert.Equal(t, domain.BookingStatusPending, payload.From)
	assert.Equal(t, domain.BookingStatusCancelled, payload.To)
}

func TestBookingService_AdvanceBooking(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture()
	booking := f.book(t, "exp-guide")

	_, err := f.svc.AdvanceBooking(ctx, travelerActor, booking.ID, domain.BookingActionConfirm)
	assert.ErrorIs(t, err, domain.ErrBookingAccessDenied)

	_, err = f.svc.AdvanceBooking(ctx, hostActor, booking.ID, domain.BookingActionCancel)
	assert.ErrorIs(t, err, domain.ErrUnknownAction)

	_, err = f.svc.AdvanceBooking(ctx, hostActor, booking.ID, domain.BookingActionComplete)
	assert.True(t, domain.IsTransitionError(err))

	for _, step := range []struct {
		action domain.BookingAction
		want   domain.BookingStatus
	}{
		{domain.BookingActionConfirm, domain.BookingStatusConfirmed},
		{domain.BookingActionStart, domain.BookingStatusInProgress},
		{domain.BookingActionComplete, domain.BookingStatusCompleted},
	} {
		got, err := f.svc.AdvanceBooking(ctx, hostActor, booking.ID, step.action)
		require.NoError(t, err, "action %s", step.action)
		assert.Equal(t, step.want, got.Status)
	}

	stored := f.bookRepo.bookings[booking.ID]
	assert.NotNil(t, stored.ConfirmedAt)
	assert.NotNil(t, stored.CompletedAt)
	assert.Len(t, f.publisher.ofType(domain.EventBookingStatusChanged), 3)
}

func TestBookingService_ListBookings(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture()
	f.book(t, "exp-guide")
	f.book(t, "exp-trip")

	bookings, total, err := f.svc.ListBookings(ctx, &dto.BookingListFilter{TravelerID: travelerActor.UserID})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, bookings, 2)

	_, total, err = f.svc.ListBookings(ctx, &dto.BookingListFilter{TravelerID: strangerActor.UserID})
	require.NoError(t, err)
	assert.Zero(t, total)

	_, _, err = f.svc.ListBookings(ctx, &dto.BookingListFilter{Status: "lost"})
	assert.True(t, domain.IsValidationError(err))
}
