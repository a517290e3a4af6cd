package domain

import (
	"slices"
	"strings"
	"time"
)

// ExperienceStatus represents the lifecycle status of an experience
type ExperienceStatus string

const (
	ExperienceStatusDraft         ExperienceStatus = "draft"
	ExperienceStatusPendingReview ExperienceStatus = "pending_review"
	ExperienceStatusPublished     ExperienceStatus = "published"
	ExperienceStatusRejected      ExperienceStatus = "rejected"
	ExperienceStatusPaused        ExperienceStatus = "paused"
	ExperienceStatusSuspended     ExperienceStatus = "suspended"
	ExperienceStatusDeleted       ExperienceStatus = "deleted"
)

// IsValid checks if the status is a known ExperienceStatus
func (s ExperienceStatus) IsValid() bool {
	switch s {
	case ExperienceStatusDraft, ExperienceStatusPendingReview, ExperienceStatusPublished,
		ExperienceStatusRejected, ExperienceStatusPaused, ExperienceStatusSuspended, ExperienceStatusDeleted:
		return true
	}
	return false
}

func (s ExperienceStatus) String() string {
	return string(s)
}

// Action is a lifecycle operation on an experience
type Action string

const (
	ActionSubmit   Action = "submit"
	ActionPublish  Action = "publish"
	ActionReject   Action = "reject"
	ActionResubmit Action = "resubmit"
	ActionPause    Action = "pause"
	ActionResume   Action = "resume"
	ActionSuspend  Action = "suspend"
	ActionDelete   Action = "delete"
)

type transitionRule struct {
	// from lists allowed source statuses; nil means any status
	from []ExperienceStatus
	to   ExperienceStatus
}

var experienceTransitions = map[Action]transitionRule{
	ActionSubmit: {
		from: []ExperienceStatus{ExperienceStatusDraft},
		to:   ExperienceStatusPendingReview,
	},
	ActionPublish: {
		from: []ExperienceStatus{ExperienceStatusDraft, ExperienceStatusPendingReview, ExperienceStatusRejected},
		to:   ExperienceStatusPublished,
	},
	ActionReject: {
		from: []ExperienceStatus{ExperienceStatusPendingReview},
		to:   ExperienceStatusRejected,
	},
	ActionResubmit: {
		from: []ExperienceStatus{ExperienceStatusRejected},
		to:   ExperienceStatusPendingReview,
	},
	ActionPause: {
		from: []ExperienceStatus{ExperienceStatusPublished},
		to:   ExperienceStatusPaused,
	},
	ActionResume: {
		from: []ExperienceStatus{ExperienceStatusPaused},
		to:   ExperienceStatusPublished,
	},
	// admin override
	ActionSuspend: {to: ExperienceStatusSuspended},
	// gated by CanBeDeleted, which needs booking state
	ActionDelete: {to: ExperienceStatusDeleted},
}

// Transition returns the status reached by applying action to current.
// It has no side effects; persisting the result is up to the caller.
func Transition(current ExperienceStatus, action Action) (ExperienceStatus, error) {
	rule, ok := experienceTransitions[action]
	if !ok {
		return current, ErrUnknownAction
	}
	if rule.from != nil && !slices.Contains(rule.from, current) {
		return current, &TransitionError{Action: string(action), From: string(current)}
	}
	return rule.to, nil
}

// Experience represents a bookable offering listed by a host
type Experience struct {
	ID              string           `json:"id"`
	HostID          string           `json:"host_id"`
	CategoryID      string           `json:"category_id"`
	CategorySlug    string           `json:"category_slug"`
	Title           string           `json:"title"`
	Slug            string           `json:"slug"`
	Description     string           `json:"description"`
	Location        string           `json:"location"`
	PricePerPackage float64          `json:"price_per_package"`
	Currency        string           `json:"currency"`
	MinParticipants int              `json:"min_participants"`
	MaxParticipants int              `json:"max_participants"`
	DurationMinutes int              `json:"duration_minutes"`
	Status          ExperienceStatus `json:"status"`

	RejectionReason  string     `json:"rejection_reason,omitempty"`
	RejectedAt       *time.Time `json:"rejected_at,omitempty"`
	SuspensionReason string     `json:"suspension_reason,omitempty"`
	SuspendedAt      *time.Time `json:"suspended_at,omitempty"`
	PublishedAt      *time.Time `json:"published_at,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Validate checks the host-editable fields
func (e *Experience) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrInvalidTitle
	}
	if strings.TrimSpace(e.CategoryID) == "" {
		return ErrInvalidCategoryID
	}
	if e.PricePerPackage <= 0 {
		return ErrInvalidPrice
	}
	if len(e.Currency) != 3 {
		return ErrInvalidCurrency
	}
	if e.MinParticipants < 1 || (e.MaxParticipants > 0 && e.MaxParticipants < e.MinParticipants) {
		return ErrInvalidCapacity
	}
	return nil
}

// Category returns the pricing category of the experience
func (e *Experience) Category() Category {
	return ParseCategory(e.CategorySlug)
}

// CanBeBooked reports whether travelers may book the experience
func (e *Experience) CanBeBooked() bool {
	return e.Status == ExperienceStatusPublished
}

// OwnedBy reports whether userID is the host of the experience
func (e *Experience) OwnedBy(userID string) bool {
	return e.HostID == userID
}

// AcceptsParticipants checks n against the capacity bounds
func (e *Experience) AcceptsParticipants(n int) error {
	if n < 1 {
		return ErrInvalidParticipants
	}
	if n < e.MinParticipants || (e.MaxParticipants > 0 && n > e.MaxParticipants) {
		return ErrParticipantsOutOfRange
	}
	return nil
}

// CanBeDeleted reports whether an experience with activeBookings bookings
// in an active status may be soft-deleted
func CanBeDeleted(activeBookings int) bool {
	return activeBookings == 0
}

// Apply runs action against the in-memory record: it moves the status
// and updates the reason and timestamp fields that go with it. Status is
// left unchanged when an error is returned.
func (e *Experience) Apply(action Action, reason string, now time.Time) error {
	next, err := Transition(e.Status, action)
	if err != nil {
		return err
	}

	reason = strings.TrimSpace(reason)
	if (action == ActionReject || action == ActionSuspend) && reason == "" {
		return ErrReasonRequired
	}

	switch action {
	case ActionPublish:
		e.clearRejection()
		e.PublishedAt = &now
	case ActionReject:
		e.RejectionReason = reason
		e.RejectedAt = &now
	case ActionResubmit:
		e.clearRejection()
	case ActionSuspend:
		e.SuspensionReason = reason
		e.SuspendedAt = &now
	case ActionDelete:
		e.DeletedAt = &now
	}

	e.Status = next
	e.UpdatedAt = now
	return nil
}

func (e *Experience) clearRejection() {
	e.RejectionReason = ""
	e.RejectedAt = nil
}
