package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/prohmpiriya/experience-marketplace/internal/domain"
	"github.com/prohmpiriya/experience-marketplace/internal/repository"
	"github.com/prohmpiriya/experience-marketplace/pkg/kafka"
)

// MockExperienceRepository is a mock implementation of ExperienceRepository
type MockExperienceRepository struct {
	experiences map[string]*domain.Experience
	slugs       map[string]bool
	createErr   error
	updateErr   error
	// slugRaces makes the next n creates lose the slug to another writer
	slugRaces   int
}

func NewMockExperienceRepository() *MockExperienceRepository {
	return &MockExperienceRepository{
		experiences: make(map[string]*domain.Experience),
		slugs:       make(map[string]bool),
	}
}

func (m *MockExperienceRepository) Create(ctx context.Context, exp *domain.Experience) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.slugRaces > 0 {
		m.slugRaces--
		return domain.ErrSlugTaken
	}
	if m.slugs[exp.Slug] {
		return domain.ErrSlugTaken
	}
	cp := *exp
	m.experiences[exp.ID] = &cp
	m.slugs[exp.Slug] = true
	return nil
}

func (m *MockExperienceRepository) GetByID(ctx context.Context, id string) (*domain.Experience, error) {
	exp, ok := m.experiences[id]
	if !ok || exp.DeletedAt != nil {
		return nil, domain.ErrExperienceNotFound
	}
	cp := *exp
	return &cp, nil
}

func (m *MockExperienceRepository) Update(ctx context.Context, exp *domain.Experience) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.experiences[exp.ID]; !ok {
		return domain.ErrExperienceNotFound
	}
	cp := *exp
	m.experiences[exp.ID] = &cp
	return nil
}

func (m *MockExperienceRepository) List(ctx context.Context, filter *repository.ExperienceFilter, limit, offset int) ([]*domain.Experience, int, error) {
	var result []*domain.Experience
	for _, exp := range m.experiences {
		if exp.DeletedAt != nil {
			continue
		}
		if filter.Status != "" && exp.Status != filter.Status {
			continue
		}
		if filter.HostID != "" && exp.HostID != filter.HostID {
			continue
		}
		if filter.CategorySlug != "" && exp.CategorySlug != filter.CategorySlug {
			continue
		}
		result = append(result, exp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	total := len(result)
	if offset >= total {
		return []*domain.Experience{}, total, nil
	}
	end := min(offset+limit, total)
	return result[offset:end], total, nil
}

func (m *MockExperienceRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	return m.slugs[slug], nil
}

// stored returns the persisted copy, deleted or not
func (m *MockExperienceRepository) stored(id string) *domain.Experience {
	return m.experiences[id]
}

// MockCategoryRepository is a mock implementation of CategoryRepository
type MockCategoryRepository struct {
	categories map[string]*domain.ExperienceCategory
}

func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{categories: make(map[string]*domain.ExperienceCategory)}
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *domain.ExperienceCategory) error {
	for _, c := range m.categories {
		if c.Slug == category.Slug {
			return domain.ErrCategoryExists
		}
	}
	m.categories[category.ID] = category
	return nil
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id string) (*domain.ExperienceCategory, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	return c, nil
}

func (m *MockCategoryRepository) List(ctx context.Context, activeOnly bool) ([]*domain.ExperienceCategory, error) {
	var result []*domain.ExperienceCategory
	for _, c := range m.categories {
		if activeOnly && !c.IsActive {
			continue
		}
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// MockBookingRepository is a mock implementation of BookingRepository
type MockBookingRepository struct {
	bookings  map[string]*domain.Booking
	payments  map[string]*domain.Payment
	createErr error
}

func NewMockBookingRepository() *MockBookingRepository {
	return &MockBookingRepository{
		bookings: make(map[string]*domain.Booking),
		payments: make(map[string]*domain.Payment),
	}
}

func (m *MockBookingRepository) CreateWithPayment(ctx context.Context, booking *domain.Booking, payment *domain.Payment) error {
	if m.createErr != nil {
		return m.createErr
	}
	cp := *booking
	m.bookings[booking.ID] = &cp
	m.payments[booking.ID] = payment
	return nil
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *MockBookingRepository) List(ctx context.Context, filter *repository.BookingFilter, limit, offset int) ([]*domain.Booking, int, error) {
	var result []*domain.Booking
	for _, b := range m.bookings {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if filter.ExperienceID != "" && b.ExperienceID != filter.ExperienceID {
			continue
		}
		if filter.TravelerID != "" && !b.BelongsToTraveler(filter.TravelerID) {
			continue
		}
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	total := len(result)
	if offset >= total {
		return []*domain.Booking{}, total, nil
	}
	end := min(offset+limit, total)
	return result[offset:end], total, nil
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, booking *domain.Booking) error {
	if _, ok := m.bookings[booking.ID]; !ok {
		return domain.ErrBookingNotFound
	}
	cp := *booking
	m.bookings[booking.ID] = &cp
	return nil
}

func (m *MockBookingRepository) CountActiveByExperience(ctx context.Context, experienceID string) (int, error) {
	count := 0
	for _, b := range m.bookings {
		if b.ExperienceID == experienceID && b.Status.IsActive() {
			count++
		}
	}
	return count, nil
}

// MockReviewRepository is a mock implementation of ReviewRepository
type MockReviewRepository struct {
	reviews map[string]*domain.Review
}

func NewMockReviewRepository() *MockReviewRepository {
	return &MockReviewRepository{reviews: make(map[string]*domain.Review)}
}

func (m *MockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	for _, r := range m.reviews {
		if r.BookingID == review.BookingID {
			return domain.ErrReviewExists
		}
	}
	m.reviews[review.ID] = review
	return nil
}

func (m *MockReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	r, ok := m.reviews[id]
	if !ok {
		return nil, domain.ErrReviewNotFound
	}
	return r, nil
}

func (m *MockReviewRepository) ListByExperience(ctx context.Context, experienceID string, visibleOnly bool, limit, offset int) ([]*domain.Review, int, error) {
	var result []*domain.Review
	for _, r := range m.reviews {
		if r.ExperienceID != experienceID || (visibleOnly && !r.IsVisible) {
			continue
		}
		result = append(result, r)
	}
	total := len(result)
	if offset >= total {
		return []*domain.Review{}, total, nil
	}
	return result[offset:min(offset+limit, total)], total, nil
}

func (m *MockReviewRepository) Summary(ctx context.Context, experienceID string) (*domain.RatingSummary, error) {
	summary := &domain.RatingSummary{ExperienceID: experienceID}
	sum := 0
	for _, r := range m.reviews {
		if r.ExperienceID == experienceID && r.IsVisible {
			summary.ReviewCount++
			sum += r.Rating
		}
	}
	if summary.ReviewCount > 0 {
		summary.AverageRating = float64(sum) / float64(summary.ReviewCount)
	}
	return summary, nil
}

func (m *MockReviewRepository) SetVisibility(ctx context.Context, id string, visible bool) error {
	r, ok := m.reviews[id]
	if !ok {
		return domain.ErrReviewNotFound
	}
	r.IsVisible = visible
	return nil
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []*domain.DomainEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event *domain.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error {
	return nil
}

func (p *recordingPublisher) ofType(t domain.EventType) []*domain.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var result []*domain.DomainEvent
	for _, e := range p.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// fakeProducer captures produced messages
type fakeProducer struct {
	messages []*kafka.Message
	err      error
	closed   bool
}

func (p *fakeProducer) Produce(ctx context.Context, msg *kafka.Message) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg)
	return nil
}

func (p *fakeProducer) Close() {
	p.closed = true
}

var errBroker = errors.New("broker unavailable")
