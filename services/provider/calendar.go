package provider

import (
	"context"

	"easybook/models"
	"easybook/utils"
	"easybook/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GetAvailability lists the provider's date-specific calendar inside dates, earliest first.
func (s *DefaultProviderService) GetAvailability(ctx context.Context, providerID string, dates models.DateRange) ([]models.ProviderAvailability, error) {
	if _, err := s.GetProfile(ctx, providerID); err != nil {
		return nil, err
	}
	entries, err := s.Availability.List(ctx, providerID, dates)
	if err != nil {
		return nil, utils.NewInternalError("Failed to load availability", err)
	}
	return entries, nil
}

// SetAvailability creates or replaces the provider's entry for one day.
func (s *DefaultProviderService) SetAvailability(ctx context.Context, providerID string, req models.AvailabilityRequest) (*models.ProviderAvailability, error) {
	date, err := validation.ValidateAvailability(&req)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetProfile(ctx, providerID); err != nil {
		return nil, err
	}
	working := true
	if req.IsWorkingDay != nil {
		working = *req.IsWorkingDay
	}
	slots := req.TimeSlots
	if slots == nil {
		slots = []models.AvailabilitySlot{}
	}
	entry, err := s.Availability.Upsert(ctx, &models.ProviderAvailability{
		ID:           uuid.New().String(),
		ProviderID:   providerID,
		Date:         date,
		TimeSlots:    slots,
		IsWorkingDay: working,
		Notes:        req.Notes,
	})
	if err != nil {
		return nil, utils.NewInternalError("Failed to save availability", err)
	}
	utils.GetLogger().Info("Provider availability updated",
		zap.String("providerId", providerID), zap.Time("date", date), zap.Int("slots", len(slots)))
	return entry, nil
}

// Reviews pages through the provider's rated bookings, newest review first.
// rating narrows the page to one star value; the stats always cover every star.
func (s *DefaultProviderService) Reviews(ctx context.Context, providerID string, rating int, page models.Page) (*Reviews, error) {
	if rating < 0 || rating > 5 {
		return nil, utils.NewValidationError("Validation failed", utils.FieldError{Field: "rating", Message: "rating must be between 1 and 5"})
	}
	if _, err := s.GetProfile(ctx, providerID); err != nil {
		return nil, err
	}
	filter := models.BookingFilter{ProviderID: providerID, Rated: true, Rating: rating, Sort: models.SortByReviewed}
	reviews, total, err := s.Bookings.List(ctx, filter, page)
	if err != nil {
		return nil, utils.NewInternalError("Failed to load reviews", err)
	}
	stats, err := s.Bookings.RatingCounts(ctx, models.BookingFilter{ProviderID: providerID})
	if err != nil {
		return nil, utils.NewInternalError("Failed to load rating stats", err)
	}
	return &Reviews{Reviews: reviews, RatingStats: stats, Pagination: models.NewPagination(page, total)}, nil
}
