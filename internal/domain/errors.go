package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Experience errors
	ErrExperienceNotFound    = errors.New("experience not found")
	ErrExperienceNotBookable = errors.New("experience is not open for booking")
	ErrHasActiveBookings     = errors.New("experience has active bookings")
	ErrNotOwner              = errors.New("experience belongs to another host")
	ErrAdminRequired         = errors.New("action requires an admin")
	ErrReasonRequired        = errors.New("reason is required")
	ErrUnknownAction         = errors.New("unknown action")
	ErrSlugTaken             = errors.New("experience slug already taken")

	// Experience validation errors
	ErrInvalidTitle      = errors.New("title is required")
	ErrInvalidPrice      = errors.New("price must be greater than zero")
	ErrInvalidCurrency   = errors.New("currency must be a 3-letter code")
	ErrInvalidCapacity   = errors.New("participant bounds are invalid")
	ErrInvalidCategoryID = errors.New("category id is required")

	// Booking errors
	ErrBookingNotFound        = errors.New("booking not found")
	ErrBookingAccessDenied    = errors.New("booking belongs to another user")
	ErrInvalidParticipants    = errors.New("participant count must be at least 1")
	ErrParticipantsOutOfRange = errors.New("participant count is outside the experience capacity")
	ErrGuestContactRequired   = errors.New("guest name and email are required")
	ErrInvalidBookingDate     = errors.New("booking date must not be in the past")

	// Category errors
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category slug already exists")

	// Review errors
	ErrReviewNotFound      = errors.New("review not found")
	ErrReviewExists        = errors.New("booking has already been reviewed")
	ErrInvalidRating       = errors.New("rating must be between 1 and 5")
	ErrBookingNotCompleted = errors.New("only completed bookings can be reviewed")
)

// TransitionError reports a status change the current status does not allow
type TransitionError struct {
	Action string
	From   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s from %s status", e.Action, e.From)
}

// ValidationError carries a request validation message
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError wraps msg as a validation failure
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// IsTransitionError checks if err is a rejected status change
func IsTransitionError(err error) bool {
	var te *TransitionError
	return errors.As(err, &te)
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrExperienceNotFound) ||
		errors.Is(err, ErrBookingNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrReviewNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) ||
		errors.Is(err, ErrReasonRequired) ||
		errors.Is(err, ErrUnknownAction) ||
		errors.Is(err, ErrInvalidTitle) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrInvalidCurrency) ||
		errors.Is(err, ErrInvalidCapacity) ||
		errors.Is(err, ErrInvalidCategoryID) ||
		errors.Is(err, ErrInvalidParticipants) ||
		errors.Is(err, ErrParticipantsOutOfRange) ||
		errors.Is(err, ErrGuestContactRequired) ||
		errors.Is(err, ErrInvalidBookingDate) ||
		errors.Is(err, ErrInvalidRating) ||
		errors.Is(err, ErrBookingNotCompleted)
}

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrCategoryExists) ||
		errors.Is(err, ErrReviewExists) ||
		errors.Is(err, ErrSlugTaken)
}

// IsForbiddenError checks if the caller may not touch the resource
func IsForbiddenError(err error) bool {
	return errors.Is(err, ErrNotOwner) ||
		errors.Is(err, ErrAdminRequired) ||
		errors.Is(err, ErrBookingAccessDenied)
}
