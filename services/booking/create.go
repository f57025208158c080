package booking

import (
	"context"
	"errors"
	"fmt"

	"easybook/database/repository"
	"easybook/models"
	"easybook/utils"
	"easybook/validation"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Create validates the request, snapshots the listing and both parties onto
// a new pending booking and notifies the provider.
func (s *DefaultBookingService) Create(ctx context.Context, customerID string, req models.CreateBookingRequest) (*models.Booking, error) {
	now := s.Now()
	date, err := validation.ValidateBookingRequest(&req, now)
	if err != nil {
		return nil, err
	}

	customer, err := s.Users.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NewUnauthorizedError("User not found")
		}
		return nil, utils.NewInternalError("failed to load customer", err)
	}

	service, err := s.Services.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NewNotFoundError("Service not found")
		}
		return nil, utils.NewInternalError("failed to load service", err)
	}
	if !service.IsActive {
		return nil, utils.NewValidationError("Service is not available")
	}
	if service.ProviderID == customerID {
		return nil, utils.NewValidationError("You cannot book your own service")
	}

	provider, err := s.Users.GetByID(ctx, service.ProviderID)
	if err != nil || !provider.IsActive {
		if err == nil || errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NewNotFoundError("Provider is not available")
		}
		return nil, utils.NewInternalError("failed to load provider", err)
	}

	b := &models.Booking{
		ID:                  uuid.New().String(),
		BookingNumber:       "BK-" + ulid.Make().String(),
		ServiceID:           service.ID,
		ServiceName:         service.Name,
		ServiceCategory:     service.Category,
		CustomerID:          customer.ID,
		CustomerName:        customer.FullName(),
		ProviderID:          provider.ID,
		ProviderName:        provider.DisplayName(),
		BookingDate:         date,
		TimeSlot:            req.TimeSlot,
		Address:             req.Address,
		Status:              models.StatusPending,
		TotalAmount:         service.Price,
		Notes:               req.Notes,
		SpecialInstructions: req.SpecialInstructions,
		CustomerPhone:       customer.Phone,
		CustomerEmail:       customer.Email,
		Payment:             models.Payment{Status: models.PaymentPending},
		CreatedAt:           now,
	}
	if err := s.Bookings.Create(ctx, b); err != nil {
		return nil, utils.NewInternalError("failed to create booking", err)
	}

	utils.GetLogger().Info("booking created",
		zap.String("bookingId", b.ID),
		zap.String("bookingNumber", b.BookingNumber),
		zap.String("customerId", b.CustomerID),
		zap.String("providerId", b.ProviderID))

	s.notify(ctx, b, b.ProviderID, models.NotifyNewBooking, "New Booking Request",
		fmt.Sprintf("You have a new booking request for %s on %s at %s", b.ServiceName, b.BookingDate.Format("Jan 2, 2006"), b.TimeSlot))
	return b, nil
}
