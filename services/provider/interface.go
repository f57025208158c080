package provider

import (
	"context"
	"fmt"
	"time"

	availabilityRepo "easybook/database/repository/availability"
	bookingRepo "easybook/database/repository/booking"
	serviceRepo "easybook/database/repository/service"
	userRepo "easybook/database/repository/user"
	"easybook/models"
)

type ProviderService interface {
	// Profile
	GetProfile(ctx context.Context, providerID string) (*models.User, error)
	UpdateProfile(ctx context.Context, providerID string, update models.ProviderProfileUpdate) (*models.User, error)
	UpdateWorkingHours(ctx context.Context, providerID string, hours map[string]models.DayHours) (*models.User, error)

	// Reporting
	Dashboard(ctx context.Context, providerID string) (*Dashboard, error)
	Earnings(ctx context.Context, providerID string, dateRange models.DateRange, bucket models.Bucket) (*Earnings, error)
	Reviews(ctx context.Context, providerID string, rating int, page models.Page) (*Reviews, error)

	// Calendar
	GetAvailability(ctx context.Context, providerID string, dates models.DateRange) ([]models.ProviderAvailability, error)
	SetAvailability(ctx context.Context, providerID string, req models.AvailabilityRequest) (*models.ProviderAvailability, error)
}

// Dashboard is the provider home-screen summary.
type Dashboard struct {
	BookingsByStatus models.BookingStatusCounts `json:"bookingsByStatus"`
	TotalBookings    int64                      `json:"totalBookings"`
	ActiveServices   int64                      `json:"activeServices"`
	Earnings30Days   float64                    `json:"earningsLast30Days"`
	Completed30Days  int64                      `json:"completedLast30Days"`
	Rating           models.RatingSummary       `json:"rating"`
	RecentBookings   []models.Booking           `json:"recentBookings"`
	TodaysBookings   []models.Booking           `json:"todaysBookings"`
	IsAvailable      bool                       `json:"isAvailable"`
}

type EarningsSummary struct {
	TotalEarnings  float64 `json:"totalEarnings"`
	TotalBookings  int64   `json:"totalBookings"`
	AverageEarning float64 `json:"averageEarning"`
}

// Earnings is completed-booking revenue for one provider, bucketed by creation date.
type Earnings struct {
	Period   models.Bucket          `json:"period"`
	Range    models.DateRange       `json:"dateRange"`
	Summary  EarningsSummary        `json:"summary"`
	Earnings []models.BookingBucket `json:"earnings"`
}

// Reviews is one page of a provider's rated bookings plus the star histogram.
type Reviews struct {
	Reviews     []models.Booking     `json:"reviews"`
	RatingStats []models.RatingCount `json:"ratingStats"`
	Pagination  models.Pagination    `json:"pagination"`
}

// DefaultProviderService is the production implementation.
type DefaultProviderService struct {
	Users        userRepo.UserRepository
	Services     serviceRepo.ServiceRepository
	Bookings     bookingRepo.BookingRepository
	Availability availabilityRepo.AvailabilityRepository
	Now          func() time.Time
}

func NewDefaultProviderService(
	users userRepo.UserRepository,
	services serviceRepo.ServiceRepository,
	bookings bookingRepo.BookingRepository,
	availability availabilityRepo.AvailabilityRepository,
) (*DefaultProviderService, error) {
	if users == nil || services == nil || bookings == nil || availability == nil {
		return nil, fmt.Errorf("provider service initialization error: one or more dependencies are nil")
	}
	return &DefaultProviderService{
		Users:        users,
		Services:     services,
		Bookings:     bookings,
		Availability: availability,
		Now:          func() time.Time { return time.Now().UTC() },
	}, nil
}
