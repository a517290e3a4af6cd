package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/prohmpiriya/experience-marketplace/internal/domain"
	"github.com/prohmpiriya/experience-marketplace/internal/dto"
	"github.com/prohmpiriya/experience-marketplace/internal/repository"
)

// categoryService implements CategoryService
type categoryService struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

// ListCategories lists categories
func (s *categoryService) ListCategories(ctx context.Context, all bool) ([]*domain.ExperienceCategory, error) {
	return s.categoryRepo.List(ctx, !all)
}

// CreateCategory creates an active category. A slug outside the known
// pricing categories is accepted and priced as a guide booking.
func (s *categoryService) CreateCategory(ctx context.Context, req *dto.CreateCategoryRequest) (*domain.ExperienceCategory, error) {
	if valid, msg := req.Validate(); !valid {
		return nil, domain.NewValidationError(msg)
	}

	now := time.Now().UTC()
	category := &domain.ExperienceCategory{
		ID:          uuid.New().String(),
		Slug:        req.Slug,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}
