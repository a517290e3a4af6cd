package dto

// CreateReviewRequest represents the request to review a completed booking
type CreateReviewRequest struct {
	BookingID  string `json:"booking_id" binding:"required"`
	Rating     int    `json:"rating" binding:"required"`
	Comment    string `json:"comment" binding:"max=2000"`
	TravelerID string `json:"-"` // Set from context
}

// Validate validates the CreateReviewRequest
func (r *CreateReviewRequest) Validate() (bool, string) {
	if r.BookingID == "" {
		return false, "Booking ID is required"
	}
	if r.Rating < 1 || r.Rating > 5 {
		return false, "Rating must be between 1 and 5"
	}
	return true, ""
}

// ReviewVisibilityRequest toggles whether a review is shown publicly
type ReviewVisibilityRequest struct {
	IsVisible *bool `json:"is_visible" binding:"required"`
}

// ReviewResponse represents the response for a review
type ReviewResponse struct {
	ID           string `json:"id"`
	BookingID    string `json:"booking_id"`
	ExperienceID string `json:"experience_id"`
	TravelerID   string `json:"traveler_id"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment,omitempty"`
	IsVisible    bool   `json:"is_visible"`
	CreatedAt    string `json:"created_at"`
}

// ReviewListResponse is a page of reviews with the rating summary
type ReviewListResponse struct {
	Reviews       []*ReviewResponse `json:"reviews"`
	AverageRating float64           `json:"average_rating"`
	ReviewCount   int64             `json:"review_count"`
}
