package domain

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
	"time"
)

// Category selects the price formula and the detail payload of a booking
type Category string

const (
	CategoryGuide        Category = "guide"
	CategoryPhotographer Category = "photographer"
	CategoryTripPlanner  Category = "tripplanner"
	CategoryCombo        Category = "combo"
	CategoryUnknown      Category = "unknown"
)

// ParseCategory maps a category slug onto a Category. Unrecognised slugs
// become CategoryUnknown.
func ParseCategory(slug string) Category {
	switch c := Category(strings.ToLower(strings.TrimSpace(slug))); c {
	case CategoryGuide, CategoryPhotographer, CategoryTripPlanner, CategoryCombo:
		return c
	}
	return CategoryUnknown
}

func (c Category) String() string {
	return string(c)
}

// ExperienceCategory is a row of the categories table
type ExperienceCategory struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Kind returns the pricing category the row maps to
func (c *ExperienceCategory) Kind() Category {
	return ParseCategory(c.Slug)
}

// PricingPolicy holds the business-policy constants of the price engine.
// The values are product decisions, not derived pricing rules.
type PricingPolicy struct {
	PhotographerMultipliers   map[string]float64
	DefaultMultiplier         float64
	ComboPhotographyService   string
	ComboPhotographySurcharge float64
}

// DefaultPricing is the pricing policy used for bookings
var DefaultPricing = PricingPolicy{
	PhotographerMultipliers: map[string]float64{
		"basic":    1.0,
		"standard": 1.5,
		"premium":  2.0,
	},
	DefaultMultiplier:         1.0,
	ComboPhotographyService:   "photography",
	ComboPhotographySurcharge: 0.8,
}

// DetailDefaults holds the value used for every detail field a caller omits
type DetailDefaults struct {
	GuideLanguages        []string
	GuideSpecialInterests []string

	PhotoPackageType         string
	PhotoStyle               string
	PhotoSessionMinutes      int
	PhotoCount               int
	PhotoEditedCount         int
	PhotoOutfitChanges       int
	PhotoPreferredLocations  []string
	PhotoEditingTimelineDays int
	PhotoDeliveryFormat      string
	PhotoPrintRights         bool
	PhotoCommercialUse       bool

	TripInterests     []string
	TripRevisionCount int
	TripMaxRevisions  int
	TripPDFDelivery   string

	ComboServices        []string
	ComboComplexity      string
	ComboServiceTimeline map[string]any
}

// Defaults is the default table applied by BuildCategoryDetails
var Defaults = DetailDefaults{
	GuideLanguages:        []string{"Indonesian", "English"},
	GuideSpecialInterests: []string{},

	PhotoPackageType:         "standard",
	PhotoStyle:               "lifestyle",
	PhotoSessionMinutes:      120,
	PhotoCount:               50,
	PhotoEditedCount:         25,
	PhotoOutfitChanges:       1,
	PhotoPreferredLocations:  []string{},
	PhotoEditingTimelineDays: 7,
	PhotoDeliveryFormat:      "digital_gallery",
	PhotoPrintRights:         true,
	PhotoCommercialUse:       false,

	TripInterests:     []string{},
	TripRevisionCount: 0,
	TripMaxRevisions:  2,
	TripPDFDelivery:   "email",

	ComboServices:        []string{"guide", "photography"},
	ComboComplexity:      "moderate",
	ComboServiceTimeline: map[string]any{},
}

// BookingDetails is the caller-supplied input of a booking. Every
// category reads the fields it knows and ignores the rest. Nil slices and
// pointers mean "not supplied". ParticipantCount is copied from the
// capacity-checked top-level request field and never decoded from input.
type BookingDetails struct {
	ParticipantCount int `json:"-"`

	// guide
	TourDuration        int      `json:"tour_duration,omitempty"` // minutes
	MeetingPoint        string   `json:"meeting_point,omitempty"`
	Languages           []string `json:"languages,omitempty"`
	SpecialInterests    []string `json:"special_interests,omitempty"`
	AccessibilityNeeds  string   `json:"accessibility_needs,omitempty"`
	DietaryRestrictions string   `json:"dietary_restrictions,omitempty"`

	// photographer
	PackageType        string   `json:"package_type,omitempty"`
	PhotographyStyle   string   `json:"photography_style,omitempty"`
	SessionDuration    int      `json:"session_duration,omitempty"` // minutes
	NumberOfPhotos     int      `json:"number_of_photos,omitempty"`
	EditedPhotos       *int     `json:"edited_photos,omitempty"`
	OutfitChanges      *int     `json:"outfit_changes,omitempty"`
	PreferredLocations []string `json:"preferred_locations,omitempty"`
	BackupDate         string   `json:"backup_date,omitempty"`

	// tripplanner
	Destination       string   `json:"destination,omitempty"`
	TripDuration      int      `json:"trip_duration,omitempty"` // days
	StartDate         string   `json:"start_date,omitempty"`
	EndDate           string   `json:"end_date,omitempty"`
	BudgetRange       string   `json:"budget_range,omitempty"`
	TravelStyle       string   `json:"travel_style,omitempty"`
	Interests         []string `json:"interests,omitempty"`
	MaxRevisions      *int     `json:"max_revisions,omitempty"`
	PDFDeliveryMethod string   `json:"pdf_delivery_method,omitempty"`
	PlanningNotes     string   `json:"planning_notes,omitempty"`

	// combo
	SelectedServices       []string       `json:"selected_services,omitempty"`
	GuideDuration          int            `json:"guide_duration,omitempty"`       // minutes
	PhotographyDuration    int            `json:"photography_duration,omitempty"` // minutes
	CoordinationComplexity string         `json:"coordination_complexity,omitempty"`
	TeamCoordinationNotes  string         `json:"team_coordination_notes,omitempty"`
	ServiceTimeline        map[string]any `json:"service_timeline,omitempty"`
}

func (d BookingDetails) participants() int {
	if d.ParticipantCount < 1 {
		return 1
	}
	return d.ParticipantCount
}

// CategoryDetails is the category-shaped payload stored with a booking
type CategoryDetails interface {
	Category() Category
}

// GuideDetails is the payload of a guided tour booking
type GuideDetails struct {
	TourDuration        int      `json:"tour_duration,omitempty"`
	MeetingPoint        string   `json:"meeting_point,omitempty"`
	Languages           []string `json:"languages"`
	SpecialInterests    []string `json:"special_interests"`
	AccessibilityNeeds  string   `json:"accessibility_needs,omitempty"`
	DietaryRestrictions string   `json:"dietary_restrictions,omitempty"`
}

func (GuideDetails) Category() Category { return CategoryGuide }

// PhotographerDetails is the payload of a photo session booking
type PhotographerDetails struct {
	PackageType         string   `json:"package_type"`
	PhotographyStyle    string   `json:"photography_style"`
	SessionDuration     int      `json:"session_duration"`
	NumberOfPhotos      int      `json:"number_of_photos"`
	EditedPhotos        int      `json:"edited_photos"`
	OutfitChanges       int      `json:"outfit_changes"`
	PreferredLocations  []string `json:"preferred_locations"`
	BackupDate          string   `json:"backup_date,omitempty"`
	EditingTimelineDays int      `json:"editing_timeline_days"`
	DeliveryFormat      string   `json:"delivery_format"`
	PrintRights         bool     `json:"print_rights"`
	CommercialUse       bool     `json:"commercial_use"`
}

func (PhotographerDetails) Category() Category { return CategoryPhotographer }

// TripPlannerDetails is the payload of a trip planning booking
type TripPlannerDetails struct {
	Destination       string   `json:"destination,omitempty"`
	TripDuration      int      `json:"trip_duration,omitempty"`
	StartDate         string   `json:"start_date,omitempty"`
	EndDate           string   `json:"end_date,omitempty"`
	BudgetRange       string   `json:"budget_range,omitempty"`
	TravelStyle       string   `json:"travel_style,omitempty"`
	Interests         []string `json:"interests"`
	RevisionCount     int      `json:"revision_count"`
	MaxRevisions      int      `json:"max_revisions"`
	PDFDeliveryMethod string   `json:"pdf_delivery_method"`
	PlanningNotes     string   `json:"planning_notes,omitempty"`
}

func (TripPlannerDetails) Category() Category { return CategoryTripPlanner }

// ComboDetails is the payload of a combined guide and photography booking
type ComboDetails struct {
	SelectedServices       []string       `json:"selected_services"`
	GuideDuration          int            `json:"guide_duration,omitempty"`
	PhotographyDuration    int            `json:"photography_duration,omitempty"`
	CoordinationComplexity string         `json:"coordination_complexity"`
	TeamCoordinationNotes  string         `json:"team_coordination_notes,omitempty"`
	ServiceTimeline        map[string]any `json:"service_timeline"`
}

func (ComboDetails) Category() Category { return CategoryCombo }

// UnknownDetails is the empty payload of an unrecognised category
type UnknownDetails struct{}

func (UnknownDetails) Category() Category { return CategoryUnknown }

// CalculateTotalPrice computes the booking total with DefaultPricing
func CalculateTotalPrice(category Category, exp *Experience, details BookingDetails) float64 {
	return DefaultPricing.TotalPrice(category, exp.PricePerPackage, details)
}

// TotalPrice computes the total for a base package price, rounded to the
// nearest whole currency unit.
func (p PricingPolicy) TotalPrice(category Category, base float64, details BookingDetails) float64 {
	var total float64

	switch category {
	case CategoryPhotographer:
		multiplier, ok := p.PhotographerMultipliers[details.PackageType]
		if !ok {
			multiplier = p.DefaultMultiplier
		}
		total = base * multiplier
	case CategoryTripPlanner:
		total = base
	case CategoryCombo:
		total = base
		if slices.Contains(details.SelectedServices, p.ComboPhotographyService) {
			total += base * p.ComboPhotographySurcharge
		}
	default:
		// guide, and the fallback for unknown categories
		total = base * float64(details.participants())
	}

	return math.Round(total)
}

// BuildCategoryDetails builds the stored payload for category, filling
// every omitted field from Defaults. It never fails.
func BuildCategoryDetails(category Category, details BookingDetails) CategoryDetails {
	d := Defaults

	switch category {
	case CategoryGuide:
		return GuideDetails{
			TourDuration:        details.TourDuration,
			MeetingPoint:        details.MeetingPoint,
			Languages:           orDefault(details.Languages, d.GuideLanguages),
			SpecialInterests:    orDefault(details.SpecialInterests, d.GuideSpecialInterests),
			AccessibilityNeeds:  details.AccessibilityNeeds,
			DietaryRestrictions: details.DietaryRestrictions,
		}
	case CategoryPhotographer:
		return PhotographerDetails{
			PackageType:         orString(details.PackageType, d.PhotoPackageType),
			PhotographyStyle:    orString(details.PhotographyStyle, d.PhotoStyle),
			SessionDuration:     orInt(details.SessionDuration, d.PhotoSessionMinutes),
			NumberOfPhotos:      orInt(details.NumberOfPhotos, d.PhotoCount),
			EditedPhotos:        orIntPtr(details.EditedPhotos, d.PhotoEditedCount),
			OutfitChanges:       orIntPtr(details.OutfitChanges, d.PhotoOutfitChanges),
			PreferredLocations:  orDefault(details.PreferredLocations, d.PhotoPreferredLocations),
			BackupDate:          details.BackupDate,
			EditingTimelineDays: d.PhotoEditingTimelineDays,
			DeliveryFormat:      d.PhotoDeliveryFormat,
			PrintRights:         d.PhotoPrintRights,
			CommercialUse:       d.PhotoCommercialUse,
		}
	case CategoryTripPlanner:
		return TripPlannerDetails{
			Destination:       details.Destination,
			TripDuration:      details.TripDuration,
			StartDate:         details.StartDate,
			EndDate:           details.EndDate,
			BudgetRange:       details.BudgetRange,
			TravelStyle:       details.TravelStyle,
			Interests:         orDefault(details.Interests, d.TripInterests),
			RevisionCount:     d.TripRevisionCount,
			MaxRevisions:      orIntPtr(details.MaxRevisions, d.TripMaxRevisions),
			PDFDeliveryMethod: orString(details.PDFDeliveryMethod, d.TripPDFDelivery),
			PlanningNotes:     details.PlanningNotes,
		}
	case CategoryCombo:
		timeline := details.ServiceTimeline
		if timeline == nil {
			timeline = maps.Clone(d.ComboServiceTimeline)
		}
		return ComboDetails{
			SelectedServices:       orDefault(details.SelectedServices, d.ComboServices),
			GuideDuration:          details.GuideDuration,
			PhotographyDuration:    details.PhotographyDuration,
			CoordinationComplexity: orString(details.CoordinationComplexity, d.ComboComplexity),
			TeamCoordinationNotes:  details.TeamCoordinationNotes,
			ServiceTimeline:        timeline,
		}
	default:
		return UnknownDetails{}
	}
}

// Quote is the price and payload of a booking, derived together
type Quote struct {
	Category   Category        `json:"category"`
	TotalPrice float64         `json:"total_price"`
	Currency   string          `json:"currency"`
	Details    CategoryDetails `json:"category_specific_data"`
}

// NewQuote runs both engine functions with the category of exp so the
// price and the payload can never disagree on the category.
func NewQuote(exp *Experience, details BookingDetails) Quote {
	category := exp.Category()
	return Quote{
		Category:   category,
		TotalPrice: CalculateTotalPrice(category, exp, details),
		Currency:   exp.Currency,
		Details:    BuildCategoryDetails(category, details),
	}
}

// DecodeCategoryDetails restores a stored payload into its typed variant
func DecodeCategoryDetails(category Category, raw []byte) (CategoryDetails, error) {
	var target CategoryDetails
	switch category {
	case CategoryGuide:
		var d GuideDetails
		if err := unmarshalPayload(raw, &d); err != nil {
			return nil, err
		}
		target = d
	case CategoryPhotographer:
		var d PhotographerDetails
		if err := unmarshalPayload(raw, &d); err != nil {
			return nil, err
		}
		target = d
	case CategoryTripPlanner:
		var d TripPlannerDetails
		if err := unmarshalPayload(raw, &d); err != nil {
			return nil, err
		}
		target = d
	case CategoryCombo:
		var d ComboDetails
		if err := unmarshalPayload(raw, &d); err != nil {
			return nil, err
		}
		target = d
	default:
		target = UnknownDetails{}
	}
	return target, nil
}

func unmarshalPayload(raw []byte, dest any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("failed to decode category details: %w", err)
	}
	return nil
}

func orDefault(v, def []string) []string {
	if v == nil {
		return slices.Clone(def)
	}
	return v
}

func orString(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func orInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func orIntPtr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
