package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStatuses = []ExperienceStatus{
	ExperienceStatusDraft,
	ExperienceStatusPendingReview,
	ExperienceStatusPublished,
	ExperienceStatusRejected,
	ExperienceStatusPaused,
	ExperienceStatusSuspended,
	ExperienceStatusDeleted,
}

func TestTransition(t *testing.T) {
	tests := []struct {
		action  Action
		from    ExperienceStatus
		want    ExperienceStatus
		wantErr bool
	}{
		{ActionSubmit, ExperienceStatusDraft, ExperienceStatusPendingReview, false},
		{ActionSubmit, ExperienceStatusPublished, ExperienceStatusPublished, true},
		{ActionPublish, ExperienceStatusDraft, ExperienceStatusPublished, false},
		{ActionPublish, ExperienceStatusPendingReview, ExperienceStatusPublished, false},
		{ActionPublish, ExperienceStatusRejected, ExperienceStatusPublished, false},
		{ActionPublish, ExperienceStatusPaused, ExperienceStatusPaused, true},
		{ActionReject, ExperienceStatusPendingReview, ExperienceStatusRejected, false},
		{ActionReject, ExperienceStatusDraft, ExperienceStatusDraft, true},
		{ActionResubmit, ExperienceStatusRejected, ExperienceStatusPendingReview, false},
		{ActionResubmit, ExperienceStatusDraft, ExperienceStatusDraft, true},
		{ActionPause, ExperienceStatusPublished, ExperienceStatusPaused, false},
		{ActionPause, ExperienceStatusDraft, ExperienceStatusDraft, true},
		{ActionResume, ExperienceStatusPaused, ExperienceStatusPublished, false},
		{ActionResume, ExperienceStatusSuspended, ExperienceStatusSuspended, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.action)+"_from_"+string(tt.from), func(t *testing.T) {
			got, err := Transition(tt.from, tt.action)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Transition() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Transition() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestTransition_ErrorMessage(t *testing.T) {
	_, err := Transition(ExperienceStatusPublished, ActionSubmit)
	require.Error(t, err)
	assert.Equal(t, "cannot submit from published status", err.Error())
	assert.True(t, IsTransitionError(err))
}

func TestTransition_SuspendAndDeleteFromAnyStatus(t *testing.T) {
	for _, status := range allStatuses {
		got, err := Transition(status, ActionSuspend)
		assert.NoError(t, err)
		assert.Equal(t, ExperienceStatusSuspended, got)

		got, err = Transition(status, ActionDelete)
		assert.NoError(t, err)
		assert.Equal(t, ExperienceStatusDeleted, got)
	}
}

func TestTransition_UnknownAction(t *testing.T) {
	got, err := Transition(ExperienceStatusDraft, Action("archive"))
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.Equal(t, ExperienceStatusDraft, got)
}

func TestPublishFromDraftClearsRejection(t *testing.T) {
	rejectedAt := time.Now().Add(-time.Hour)
	exp := &Experience{
		Status:          ExperienceStatusDraft,
		RejectionReason: "blurry photos",
		RejectedAt:      &rejectedAt,
	}

	now := time.Now()
	require.NoError(t, exp.Apply(ActionPublish, "", now))

	assert.Equal(t, ExperienceStatusPublished, exp.Status)
	assert.Empty(t, exp.RejectionReason)
	assert.Nil(t, exp.RejectedAt)
	assert.Equal(t, &now, exp.PublishedAt)
}

func TestPublishFailsOutsideReviewableStatuses(t *testing.T) {
	for _, status := range allStatuses {
		if status == ExperienceStatusDraft || status == ExperienceStatusPendingReview || status == ExperienceStatusRejected {
			continue
		}
		exp := &Experience{Status: status}
		err := exp.Apply(ActionPublish, "", time.Now())

		var te *TransitionError
		if !errors.As(err, &te) {
			t.Fatalf("publish from %s: expected TransitionError, got %v", status, err)
		}
		assert.Equal(t, status, exp.Status, "status must be unchanged")
	}
}

func TestRejectThenResubmit(t *testing.T) {
	exp := &Experience{Status: ExperienceStatusPendingReview}
	now := time.Now()

	require.NoError(t, exp.Apply(ActionReject, "missing itinerary", now))
	assert.Equal(t, ExperienceStatusRejected, exp.Status)
	assert.Equal(t, "missing itinerary", exp.RejectionReason)
	assert.Equal(t, &now, exp.RejectedAt)

	require.NoError(t, exp.Apply(ActionResubmit, "", now.Add(time.Minute)))
	assert.Equal(t, ExperienceStatusPendingReview, exp.Status)
	assert.Empty(t, exp.RejectionReason)
	assert.Nil(t, exp.RejectedAt)
}

func TestRejectOnlyFromPendingReview(t *testing.T) {
	for _, status := range allStatuses {
		if status == ExperienceStatusPendingReview {
			continue
		}
		exp := &Experience{Status: status}
		assert.Error(t, exp.Apply(ActionReject, "reason", time.Now()), "reject from %s", status)
		assert.Equal(t, status, exp.Status)
	}
}

func TestRejectAndSuspendRequireReason(t *testing.T) {
	exp := &Experience{Status: ExperienceStatusPendingReview}
	assert.ErrorIs(t, exp.Apply(ActionReject, "  ", time.Now()), ErrReasonRequired)
	assert.Equal(t, ExperienceStatusPendingReview, exp.Status)

	exp = &Experience{Status: ExperienceStatusPublished}
	assert.ErrorIs(t, exp.Apply(ActionSuspend, "", time.Now()), ErrReasonRequired)
	assert.Equal(t, ExperienceStatusPublished, exp.Status)
}

func TestSuspendRecordsReason(t *testing.T) {
	exp := &Experience{Status: ExperienceStatusPublished}
	now := time.Now()

	require.NoError(t, exp.Apply(ActionSuspend, "fraud report", now))
	assert.Equal(t, ExperienceStatusSuspended, exp.Status)
	assert.Equal(t, "fraud report", exp.SuspensionReason)
	assert.Equal(t, &now, exp.SuspendedAt)
}

func TestDeleteStampsDeletedAt(t *testing.T) {
	exp := &Experience{Status: ExperienceStatusPaused}
	now := time.Now()

	require.NoError(t, exp.Apply(ActionDelete, "", now))
	assert.Equal(t, ExperienceStatusDeleted, exp.Status)
	assert.Equal(t, &now, exp.DeletedAt)
}

func TestCanBeBooked(t *testing.T) {
	for _, status := range allStatuses {
		exp := &Experience{Status: status}
		want := status == ExperienceStatusPublished
		// pure read: repeated calls agree
		assert.Equal(t, want, exp.CanBeBooked())
		assert.Equal(t, want, exp.CanBeBooked())
	}
}

func TestCanBeDeleted(t *testing.T) {
	assert.True(t, CanBeDeleted(0))
	assert.False(t, CanBeDeleted(1))
	assert.False(t, CanBeDeleted(3))
}

func TestExperience_Validate(t *testing.T) {
	valid := func() *Experience {
		return &Experience{
			Title:           "Ubud rice terrace walk",
			CategoryID:      "cat-1",
			PricePerPackage: 350000,
			Currency:        "IDR",
			MinParticipants: 1,
			MaxParticipants: 8,
		}
	}

	tests := []struct {
		name   string
		mutate func(e *Experience)
		want   error
	}{
		{"valid", func(e *Experience) {}, nil},
		{"no max is fine", func(e *Experience) { e.MaxParticipants = 0 }, nil},
		{"blank title", func(e *Experience) { e.Title = " " }, ErrInvalidTitle},
		{"no category", func(e *Experience) { e.CategoryID = "" }, ErrInvalidCategoryID},
		{"zero price", func(e *Experience) { e.PricePerPackage = 0 }, ErrInvalidPrice},
		{"bad currency", func(e *Experience) { e.Currency = "RP" }, ErrInvalidCurrency},
		{"zero min", func(e *Experience) { e.MinParticipants = 0 }, ErrInvalidCapacity},
		{"max below min", func(e *Experience) { e.MinParticipants = 4; e.MaxParticipants = 2 }, ErrInvalidCapacity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid()
			tt.mutate(e)
			err := e.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAcceptsParticipants(t *testing.T) {
	exp := &Experience{MinParticipants: 2, MaxParticipants: 6}

	assert.ErrorIs(t, exp.AcceptsParticipants(0), ErrInvalidParticipants)
	assert.ErrorIs(t, exp.AcceptsParticipants(1), ErrParticipantsOutOfRange)
	assert.NoError(t, exp.AcceptsParticipants(2))
	assert.NoError(t, exp.AcceptsParticipants(6))
	assert.ErrorIs(t, exp.AcceptsParticipants(7), ErrParticipantsOutOfRange)

	unbounded := &Experience{MinParticipants: 1}
	assert.NoError(t, unbounded.AcceptsParticipants(40))
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, IsNotFoundError(ErrExperienceNotFound))
	assert.True(t, IsValidationError(ErrReasonRequired))
	assert.True(t, IsConflictError(ErrReviewExists))
	assert.True(t, IsForbiddenError(ErrNotOwner))
	assert.False(t, IsValidationError(ErrHasActiveBookings))
}
