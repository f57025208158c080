package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"easybook/database/repository"
	"easybook/models"
	"easybook/utils"
	"easybook/validation"

	"go.uber.org/zap"
)

func (s *DefaultBookingService) Get(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, storeError(err, "")
	}
	if !actor.IsAdmin() && !b.IsParty(actor.ID) {
		return nil, utils.NewForbiddenError("Not authorized to view this booking")
	}
	return b, nil
}

// List scopes the filter to the actor: customers and providers only ever see
// their own bookings.
func (s *DefaultBookingService) List(ctx context.Context, actor models.Actor, filter models.BookingFilter, page models.Page) ([]models.Booking, int64, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, utils.NewValidationError("Validation failed", utils.FieldError{Field: "status", Message: "unknown booking status"})
	}
	switch actor.Role {
	case models.RoleCustomer:
		filter.CustomerID, filter.ProviderID, filter.PartyID = actor.ID, "", ""
	case models.RoleProvider:
		filter.ProviderID, filter.CustomerID, filter.PartyID = actor.ID, "", ""
	case models.RoleAdmin:
	default:
		return nil, 0, utils.NewForbiddenError("Not authorized to list bookings")
	}
	bookings, total, err := s.Bookings.List(ctx, filter, page)
	if err != nil {
		return nil, 0, utils.NewInternalError("failed to list bookings", err)
	}
	return bookings, total, nil
}

// Review stores the customer's single review of a completed booking and folds
// the rating into the listing and provider averages.
func (s *DefaultBookingService) Review(ctx context.Context, customerID, bookingID string, req models.ReviewBookingRequest) (*models.Booking, error) {
	req.Review = strings.TrimSpace(req.Review)
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}
	current, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, storeError(err, "")
	}
	if current.CustomerID != customerID {
		return nil, utils.NewForbiddenError("Not authorized to review this booking")
	}
	if current.Status != models.StatusCompleted {
		return nil, utils.NewInvalidStateError("Only completed bookings can be reviewed")
	}
	if current.Rating > 0 {
		return nil, utils.NewInvalidStateError("Booking has already been reviewed")
	}

	b, err := s.Bookings.SetReview(ctx, bookingID, req.Rating, req.Review, s.Now())
	if err != nil {
		if errors.Is(err, repository.ErrStale) {
			return nil, utils.NewInvalidStateError("Booking has already been reviewed")
		}
		return nil, storeError(err, "")
	}

	logger := utils.GetLogger().With(zap.String("bookingId", b.ID))
	if err := s.Services.ApplyRating(ctx, b.ServiceID, req.Rating); err != nil {
		logger.Warn("service rating not updated", zap.Error(err))
	}
	if err := s.Users.ApplyProviderRating(ctx, b.ProviderID, req.Rating); err != nil {
		logger.Warn("provider rating not updated", zap.Error(err))
	}

	s.notify(ctx, b, b.ProviderID, models.NotifyReview, "New Review",
		fmt.Sprintf("%s rated %s %d/5", b.CustomerName, b.ServiceName, req.Rating))
	return b, nil
}
