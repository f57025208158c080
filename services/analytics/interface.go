package analytics

import (
	"context"
	"time"

	bookingRepo "easybook/database/repository/booking"
	serviceRepo "easybook/database/repository/service"
	userRepo "easybook/database/repository/user"
	"easybook/models"
	"easybook/utils"
)

// AnalyticsService produces read-only rollups for the admin dashboards.
// Every ratio is 0 when its denominator is 0.
type AnalyticsService interface {
	Overview(ctx context.Context, dateRange models.DateRange, bucket models.Bucket) (*models.AnalyticsOverview, error)
	UserAnalytics(ctx context.Context, dateRange models.DateRange, bucket models.Bucket) ([]models.UserBucket, error)
	BookingAnalytics(ctx context.Context, dateRange models.DateRange, bucket models.Bucket) ([]models.BookingBucket, error)
	CategoryAnalytics(ctx context.Context) ([]models.CategoryStat, error)
	RevenueAnalytics(ctx context.Context, dateRange models.DateRange, bucket models.Bucket) ([]models.RevenueBucket, error)
	Performance(ctx context.Context, dateRange models.DateRange) (*models.PerformanceReport, error)
	ProviderPerformance(ctx context.Context, dateRange models.DateRange) ([]models.ProviderPerformance, error)
	ServicePerformance(ctx context.Context, dateRange models.DateRange) ([]models.ServicePerformance, error)
	ReviewAnalytics(ctx context.Context, dateRange models.DateRange) (*models.ReviewAnalytics, error)
	Dashboard(ctx context.Context) (*models.DashboardStats, error)
}

// DefaultAnalyticsService implements AnalyticsService on top of the repositories.
type DefaultAnalyticsService struct {
	users    userRepo.UserRepository
	services serviceRepo.ServiceRepository
	bookings bookingRepo.BookingRepository
	cache    *utils.JSONCache
	now      func() time.Time
}

// NewDefaultAnalyticsService builds the service. cache may be nil.
func NewDefaultAnalyticsService(
	users userRepo.UserRepository,
	services serviceRepo.ServiceRepository,
	bookings bookingRepo.BookingRepository,
	cache *utils.JSONCache,
) *DefaultAnalyticsService {
	return &DefaultAnalyticsService{
		users:    users,
		services: services,
		bookings: bookings,
		cache:    cache,
		now:      func() time.Time { return time.Now().UTC() },
	}
}
