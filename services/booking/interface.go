package booking

import (
	"context"
	"time"

	bookingRepo "easybook/database/repository/booking"
	serviceRepo "easybook/database/repository/service"
	userRepo "easybook/database/repository/user"
	"easybook/models"
	"easybook/services/notification"
)

// BookingService runs the booking lifecycle. Every transition is checked
// against the status table and written with a compare-and-set on status.
type BookingService interface {
	Create(ctx context.Context, customerID string, req models.CreateBookingRequest) (*models.Booking, error)
	Accept(ctx context.Context, providerID, bookingID string, req models.AcceptBookingRequest) (*models.Booking, error)
	Decline(ctx context.Context, providerID, bookingID string, req models.DeclineBookingRequest) (*models.Booking, error)
	Start(ctx context.Context, providerID, bookingID string) (*models.Booking, error)
	Complete(ctx context.Context, providerID, bookingID string, req models.CompleteBookingRequest) (*models.Booking, error)
	Cancel(ctx context.Context, actor models.Actor, bookingID, reason string) (*models.Booking, error)

	Get(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error)
	List(ctx context.Context, actor models.Actor, filter models.BookingFilter, page models.Page) ([]models.Booking, int64, error)
	Review(ctx context.Context, customerID, bookingID string, req models.ReviewBookingRequest) (*models.Booking, error)
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Users      userRepo.UserRepository
	Services   serviceRepo.ServiceRepository
	Bookings   bookingRepo.BookingRepository
	Dispatcher notification.Dispatcher
	// Now is the clock; tests replace it.
	Now func() time.Time
}

func NewDefaultBookingService(
	users userRepo.UserRepository,
	services serviceRepo.ServiceRepository,
	bookings bookingRepo.BookingRepository,
	dispatcher notification.Dispatcher,
) *DefaultBookingService {
	return &DefaultBookingService{
		Users:      users,
		Services:   services,
		Bookings:   bookings,
		Dispatcher: dispatcher,
		Now:        func() time.Time { return time.Now().UTC() },
	}
}
