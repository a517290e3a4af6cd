package dto

import "strings"

// CreateExperienceRequest represents the request to create a new experience
type CreateExperienceRequest struct {
	CategoryID      string  `json:"category_id" binding:"required"`
	Title           string  `json:"title" binding:"required,min=1,max=255"`
	Description     string  `json:"description"`
	Location        string  `json:"location" binding:"max=255"`
	PricePerPackage float64 `json:"price_per_package" binding:"required"`
	Currency        string  `json:"currency"`
	MinParticipants int     `json:"min_participants"`
	MaxParticipants int     `json:"max_participants"`
	DurationMinutes int     `json:"duration_minutes"`
	HostID          string  `json:"-"` // Set from context
}

// Validate validates the CreateExperienceRequest
func (r *CreateExperienceRequest) Validate() (bool, string) {
	if strings.TrimSpace(r.Title) == "" {
		return false, "Title is required"
	}
	if r.CategoryID == "" {
		return false, "Category is required"
	}
	if r.PricePerPackage <= 0 {
		return false, "Price per package must be greater than zero"
	}
	if r.Currency != "" && len(r.Currency) != 3 {
		return false, "Currency must be a 3-letter code"
	}
	if r.MinParticipants < 0 || r.MaxParticipants < 0 {
		return false, "Participant bounds cannot be negative"
	}
	if r.MaxParticipants > 0 && r.MinParticipants > r.MaxParticipants {
		return false, "Max participants must not be below min participants"
	}
	if r.DurationMinutes < 0 {
		return false, "Duration cannot be negative"
	}
	return true, ""
}

// UpdateExperienceRequest represents the request to update an experience.
// Nil fields are left unchanged.
type UpdateExperienceRequest struct {
	CategoryID      *string  `json:"category_id"`
	Title           *string  `json:"title" binding:"omitempty,min=1,max=255"`
	Description     *string  `json:"description"`
	Location        *string  `json:"location" binding:"omitempty,max=255"`
	PricePerPackage *float64 `json:"price_per_package"`
	Currency        *string  `json:"currency"`
	MinParticipants *int     `json:"min_participants"`
	MaxParticipants *int     `json:"max_participants"`
	DurationMinutes *int     `json:"duration_minutes"`
}

// Validate validates the UpdateExperienceRequest
func (r *UpdateExperienceRequest) Validate() (bool, string) {
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return false, "Title cannot be empty"
	}
	if r.PricePerPackage != nil && *r.PricePerPackage <= 0 {
		return false, "Price per package must be greater than zero"
	}
	if r.Currency != nil && len(*r.Currency) != 3 {
		return false, "Currency must be a 3-letter code"
	}
	if r.MinParticipants != nil && *r.MinParticipants < 1 {
		return false, "Min participants must be at least 1"
	}
	if r.MaxParticipants != nil && *r.MaxParticipants < 0 {
		return false, "Max participants cannot be negative"
	}
	if r.DurationMinutes != nil && *r.DurationMinutes < 0 {
		return false, "Duration cannot be negative"
	}
	return true, ""
}

// ExperienceActionRequest carries the optional reason of a lifecycle action
type ExperienceActionRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}

// ExperienceResponse represents the response for an experience
type ExperienceResponse struct {
	ID               string  `json:"id"`
	HostID           string  `json:"host_id"`
	CategoryID       string  `json:"category_id"`
	Category         string  `json:"category"`
	Title            string  `json:"title"`
	Slug             string  `json:"slug"`
	Description      string  `json:"description"`
	Location         string  `json:"location"`
	PricePerPackage  float64 `json:"price_per_package"`
	Currency         string  `json:"currency"`
	MinParticipants  int     `json:"min_participants"`
	MaxParticipants  int     `json:"max_participants"`
	DurationMinutes  int     `json:"duration_minutes"`
	Status           string  `json:"status"`
	RejectionReason  string  `json:"rejection_reason,omitempty"`
	RejectedAt       *string `json:"rejected_at,omitempty"`
	SuspensionReason string  `json:"suspension_reason,omitempty"`
	SuspendedAt      *string `json:"suspended_at,omitempty"`
	PublishedAt      *string `json:"published_at,omitempty"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

// ExperienceListFilter represents filters for listing experiences
type ExperienceListFilter struct {
	Pagination
	Status     string   `form:"status"`
	Category   string   `form:"category"`
	CategoryID string   `form:"category_id"`
	HostID     string   `form:"host_id"`
	Search     string   `form:"search"`
	MinPrice   *float64 `form:"min_price"`
	MaxPrice   *float64 `form:"max_price"`
}

// Validate validates the ExperienceListFilter
func (f *ExperienceListFilter) Validate() (bool, string) {
	if f.MinPrice != nil && *f.MinPrice < 0 {
		return false, "min_price cannot be negative"
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MaxPrice < *f.MinPrice {
		return false, "max_price must not be below min_price"
	}
	return true, ""
}
