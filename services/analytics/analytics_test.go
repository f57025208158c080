package analytics

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"easybook/database/repository/memory"
	"easybook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seeded struct {
	svc      *DefaultAnalyticsService
	users    *memory.UserRepo
	services *memory.ServiceRepo
	bookings *memory.BookingRepo
}

func newSeeded(t *testing.T) *seeded {
	t.Helper()
	s := &seeded{
		users:    memory.NewUserRepo(),
		services: memory.NewServiceRepo(),
		bookings: memory.NewBookingRepo(),
	}
	s.svc = NewDefaultAnalyticsService(s.users, s.services, s.bookings, nil)
	s.svc.now = func() time.Time { return time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC) }
	return s
}

func day(d int) time.Time {
	return time.Date(2024, 3, d, 10, 0, 0, 0, time.UTC)
}

func (s *seeded) booking(t *testing.T, id, providerID, serviceID string, status models.BookingStatus, amount float64, created time.Time, rating int) {
	t.Helper()
	b := &models.Booking{
		ID:              id,
		BookingNumber:   "BK-" + id,
		ServiceID:       serviceID,
		ServiceName:     "svc " + serviceID,
		ServiceCategory: models.CategoryCleaning,
		CustomerID:      "c-1",
		ProviderID:      providerID,
		ProviderName:    "prov " + providerID,
		Status:          status,
		TotalAmount:     amount,
		Rating:          rating,
		CreatedAt:       created,
	}
	if rating > 0 {
		at := created.Add(time.Hour)
		b.ReviewedAt = &at
	}
	require.NoError(t, s.bookings.Create(context.Background(), b))
}

func assertFinite(t *testing.T, values ...float64) {
	t.Helper()
	for _, v := range values {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "value %v is not finite", v)
	}
}

func TestEmptyDatasetReportsZeros(t *testing.T) {
	s := newSeeded(t)
	ctx := context.Background()
	r := models.DateRange{From: day(1), To: day(31)}

	overview, err := s.svc.Overview(ctx, r, models.BucketDaily)
	require.NoError(t, err)
	assert.Empty(t, overview.UserAnalytics)
	assert.Empty(t, overview.BookingAnalytics)
	assert.Empty(t, overview.CategoryAnalytics)
	assert.Empty(t, overview.RevenueAnalytics)

	reviews, err := s.svc.ReviewAnalytics(ctx, r)
	require.NoError(t, err)
	assert.Zero(t, reviews.TotalReviews)
	assert.Zero(t, reviews.AverageRating)
	assert.Len(t, reviews.RatingDistribution, 5)
	assert.NotNil(t, reviews.TopRatedServices)

	dash, err := s.svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Zero(t, dash.TotalBookings)
	assert.Zero(t, dash.Revenue30Days)
	assert.Len(t, dash.BookingsByStatus, len(models.AllBookingStatuses))
}

func TestCompletionRateGuardsZeroTotals(t *testing.T) {
	perf := providerPerformance([]models.PerformanceTotals{{Key: "p-0"}})
	require.Len(t, perf, 1)
	assert.Zero(t, perf[0].CompletionRate)
	assert.Zero(t, perf[0].AverageRating)
	assertFinite(t, perf[0].CompletionRate, perf[0].AverageRating)

	rev := revenueBuckets([]models.BookingBucket{{Period: "2024-03-01"}})
	assert.Zero(t, rev[0].AverageOrderValue)
}

func TestBookingAndRevenueBuckets(t *testing.T) {
	s := newSeeded(t)
	ctx := context.Background()
	s.booking(t, "b1", "p1", "s1", models.StatusCompleted, 100, day(4), 0)
	s.booking(t, "b2", "p1", "s1", models.StatusCancelled, 80, day(4), 0)
	s.booking(t, "b3", "p2", "s2", models.StatusCompleted, 50, day(5), 0)
	s.booking(t, "b4", "p2", "s2", models.StatusPending, 70, day(5), 0)
	s.booking(t, "b5", "p2", "s2", models.StatusCompleted, 999, time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC), 0)

	r := models.DateRange{From: day(1), To: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)}
	daily, err := s.svc.BookingAnalytics(ctx, r, models.BucketDaily)
	require.NoError(t, err)
	require.Len(t, daily, 2)
	assert.Equal(t, models.BookingBucket{Period: "2024-03-04", TotalBookings: 2, CompletedBookings: 1, CancelledBookings: 1, TotalRevenue: 100}, daily[0])
	assert.Equal(t, models.BookingBucket{Period: "2024-03-05", TotalBookings: 2, CompletedBookings: 1, TotalRevenue: 50}, daily[1])

	monthly, err := s.svc.RevenueAnalytics(ctx, r, models.BucketMonthly)
	require.NoError(t, err)
	require.Len(t, monthly, 1)
	assert.Equal(t, "2024-03", monthly[0].Period)
	assert.Equal(t, 150.0, monthly[0].TotalRevenue)
	assert.EqualValues(t, 2, monthly[0].CompletedBookings)
	assert.Equal(t, 75.0, monthly[0].AverageOrderValue)
}

func TestPerformanceSortedByRevenue(t *testing.T) {
	s := newSeeded(t)
	ctx := context.Background()
	s.booking(t, "b1", "p1", "s1", models.StatusCompleted, 100, day(4), 4)
	s.booking(t, "b2", "p1", "s1", models.StatusCancelled, 80, day(4), 0)
	s.booking(t, "b3", "p2", "s2", models.StatusCompleted, 300, day(5), 5)
	s.booking(t, "b4", "p2", "s3", models.StatusCompleted, 100, day(5), 3)

	report, err := s.svc.Performance(ctx, models.DateRange{})
	require.NoError(t, err)

	require.Len(t, report.ProviderPerformance, 2)
	top := report.ProviderPerformance[0]
	assert.Equal(t, "p2", top.ProviderID)
	assert.Equal(t, "prov p2", top.ProviderName)
	assert.Equal(t, 400.0, top.TotalRevenue)
	assert.Equal(t, 100.0, top.CompletionRate)
	assert.Equal(t, 4.0, top.AverageRating)

	second := report.ProviderPerformance[1]
	assert.Equal(t, 50.0, second.CompletionRate)
	assert.EqualValues(t, 1, second.CancelledBookings)

	require.Len(t, report.ServicePerformance, 3)
	assert.Equal(t, "s2", report.ServicePerformance[0].ServiceID)
	assert.Equal(t, models.CategoryCleaning, report.ServicePerformance[0].Category)
}

func TestReviewAnalyticsTopRated(t *testing.T) {
	s := newSeeded(t)
	ctx := context.Background()
	s.booking(t, "b1", "p1", "s1", models.StatusCompleted, 10, day(2), 5)
	s.booking(t, "b2", "p1", "s2", models.StatusCompleted, 10, day(2), 5)
	s.booking(t, "b3", "p1", "s2", models.StatusCompleted, 10, day(3), 5)
	s.booking(t, "b4", "p1", "s3", models.StatusCompleted, 10, day(3), 2)
	for i := 0; i < 12; i++ {
		s.booking(t, fmt.Sprintf("x%d", i), "p9", fmt.Sprintf("t%02d", i), models.StatusCompleted, 10, day(6), 1)
	}

	report, err := s.svc.ReviewAnalytics(ctx, models.DateRange{From: day(1), To: day(31)})
	require.NoError(t, err)
	assert.EqualValues(t, 16, report.TotalReviews)
	assert.EqualValues(t, 3, report.RatingDistribution["5"])
	assert.EqualValues(t, 1, report.RatingDistribution["2"])
	assert.EqualValues(t, 12, report.RatingDistribution["1"])
	assert.InDelta(t, 29.0/16.0, report.AverageRating, 1e-9)

	require.Len(t, report.TopRatedServices, 10)
	assert.Equal(t, "s2", report.TopRatedServices[0].ServiceID)
	assert.EqualValues(t, 2, report.TopRatedServices[0].TotalReviews)
	assert.Equal(t, "s1", report.TopRatedServices[1].ServiceID)
	assert.Equal(t, "s3", report.TopRatedServices[2].ServiceID)
	assert.Equal(t, "t00", report.TopRatedServices[3].ServiceID)
}

func TestCategoryAndUserAnalytics(t *testing.T) {
	s := newSeeded(t)
	ctx := context.Background()
	for i, c := range []models.Category{models.CategoryCleaning, models.CategoryCleaning, models.CategoryPlumbing} {
		require.NoError(t, s.services.Create(ctx, &models.Service{
			ID:       fmt.Sprintf("s%d", i),
			Category: c,
			Price:    float64(100 * (i + 1)),
			Rating:   4,
			IsActive: true,
		}))
	}
	require.NoError(t, s.services.Create(ctx, &models.Service{ID: "off", Category: models.CategoryHVAC, IsActive: false}))

	stats, err := s.svc.CategoryAnalytics(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, models.CategoryCleaning, stats[0].Category)
	assert.EqualValues(t, 2, stats[0].TotalServices)
	assert.Equal(t, 150.0, stats[0].AveragePrice)
	assert.Equal(t, 4.0, stats[0].AverageRating)

	for i, role := range []models.Role{models.RoleCustomer, models.RoleProvider, models.RoleCustomer} {
		require.NoError(t, s.users.Create(ctx, &models.User{
			ID:        fmt.Sprintf("u%d", i),
			Email:     fmt.Sprintf("u%d@example.com", i),
			Role:      role,
			CreatedAt: day(3 + 7*i),
		}))
	}
	weekly, err := s.svc.UserAnalytics(ctx, models.DateRange{From: day(1), To: day(31)}, models.BucketWeekly)
	require.NoError(t, err)
	require.Len(t, weekly, 3)
	assert.Equal(t, "2024-09", weekly[0].Period)
	assert.EqualValues(t, 1, weekly[0].Customers)
	assert.EqualValues(t, 1, weekly[1].Providers)
}
