package bookingRepo

import (
	"context"
	"time"

	"easybook/models"
)

// GroupKey selects the dimension of a performance rollup.
type GroupKey string

const (
	ByProvider GroupKey = "provider"
	ByService  GroupKey = "service"
)

// BookingRepository defines methods for booking data access. Every mutation
// after Create is conditional on the state the caller last observed.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter, page models.Page) ([]models.Booking, int64, error)

	// TransitionStatus moves a booking from change.From to change.To. It returns
	// repository.ErrStale when the stored status is no longer change.From.
	TransitionStatus(ctx context.Context, id string, change models.StatusChange) (*models.Booking, error)
	// UpdatePayment replaces the payment sub-record when its status still equals expected.
	UpdatePayment(ctx context.Context, id string, expected models.PaymentStatus, payment models.Payment) (*models.Booking, error)
	// SetReview stores the single review of a completed booking.
	SetReview(ctx context.Context, id string, rating int, review string, at time.Time) (*models.Booking, error)

	StatusCounts(ctx context.Context, filter models.BookingFilter) (models.BookingStatusCounts, error)
	// CompletedRevenue sums totalAmount over completed bookings matching filter.
	CompletedRevenue(ctx context.Context, filter models.BookingFilter) (float64, error)
	// Buckets groups bookings matching filter by creation bucket, ascending by key.
	Buckets(ctx context.Context, filter models.BookingFilter, bucket models.Bucket) ([]models.BookingBucket, error)
	PerformanceTotals(ctx context.Context, dateRange models.DateRange, key GroupKey) ([]models.PerformanceTotals, error)
	// ReviewTotals counts reviews per service and star, dated by reviewedAt.
	ReviewTotals(ctx context.Context, dateRange models.DateRange) ([]models.ReviewTotals, error)
	// RatingCounts counts reviewed bookings matching filter per star, ascending.
	RatingCounts(ctx context.Context, filter models.BookingFilter) ([]models.RatingCount, error)
	// FavoriteTotals ranks a customer's completed bookings grouped by key,
	// most booked first, then most recently booked.
	FavoriteTotals(ctx context.Context, customerID string, key GroupKey, limit int) ([]models.FavoriteTotals, error)
}
