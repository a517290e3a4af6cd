package dto

import "regexp"

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// CreateCategoryRequest represents the request to create a category
type CreateCategoryRequest struct {
	Slug        string `json:"slug" binding:"required,max=100"`
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
}

// Validate validates the CreateCategoryRequest
func (r *CreateCategoryRequest) Validate() (bool, string) {
	if !slugPattern.MatchString(r.Slug) {
		return false, "Slug must be lowercase letters, digits and dashes"
	}
	if r.Name == "" {
		return false, "Name is required"
	}
	return true, ""
}

// CategoryResponse represents the response for a category
type CategoryResponse struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
	IsActive    bool   `json:"is_active"`
}
