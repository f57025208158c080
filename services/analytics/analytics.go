package analytics

import (
	"context"
	"fmt"
	"time"

	bookingRepo "easybook/database/repository/booking"
	"easybook/models"
	"easybook/utils"

	"golang.org/x/sync/errgroup"
)

const recentLimit = 5

func rangeKey(r models.DateRange) string {
	return fmt.Sprintf("%d-%d", r.From.Unix(), r.To.Unix())
}

// cached serves key from the Redis cache when present and fills it otherwise.
func cached[T any](ctx context.Context, c *utils.JSONCache, key string, load func() (T, error)) (T, error) {
	var value T
	if c.Get(ctx, key, &value) {
		return value, nil
	}
	value, err := load()
	if err != nil {
		return value, err
	}
	c.Set(ctx, key, value)
	return value, nil
}

func internal(what string, err error) error {
	return utils.NewInternalError("failed to compute "+what, err)
}

func (s *DefaultAnalyticsService) UserAnalytics(ctx context.Context, dateRange models.DateRange, bucket models.Bucket) ([]models.UserBucket, error) {
	rows, err := s.users.SignupBuckets(ctx, dateRange, bucket)
	if err != nil {
		return nil, internal("user analytics", err)
	}
	return rows, nil
}

func (s *DefaultAnalyticsService) BookingAnalytics(ctx context.Context, dateRange models.DateRange, bucket models.Bucket) ([]models.BookingBucket, error) {
	rows, err := s.bookings.Buckets(ctx, models.BookingFilter{Created: dateRange}, bucket)
	if err != nil {
		return nil, internal("booking analytics", err)
	}
	return rows, nil
}

func (s *DefaultAnalyticsService) CategoryAnalytics(ctx context.Context) ([]models.CategoryStat, error) {
	totals, err := s.services.CategoryTotals(ctx)
	if err != nil {
		return nil, internal("category analytics", err)
	}
	return categoryStats(totals), nil
}

func (s *DefaultAnalyticsService) RevenueAnalytics(ctx context.Context, dateRange models.DateRange, bucket models.Bucket) ([]models.RevenueBucket, error) {
	filter := models.BookingFilter{Created: dateRange, Status: models.StatusCompleted}
	rows, err := s.bookings.Buckets(ctx, filter, bucket)
	if err != nil {
		return nil, internal("revenue analytics", err)
	}
	return revenueBuckets(rows), nil
}

func (s *DefaultAnalyticsService) ProviderPerformance(ctx context.Context, dateRange models.DateRange) ([]models.ProviderPerformance, error) {
	totals, err := s.bookings.PerformanceTotals(ctx, dateRange, bookingRepo.ByProvider)
	if err != nil {
		return nil, internal("provider performance", err)
	}
	return providerPerformance(totals), nil
}

func (s *DefaultAnalyticsService) ServicePerformance(ctx context.Context, dateRange models.DateRange) ([]models.ServicePerformance, error) {
	totals, err := s.bookings.PerformanceTotals(ctx, dateRange, bookingRepo.ByService)
	if err != nil {
		return nil, internal("service performance", err)
	}
	return servicePerformance(totals), nil
}

func (s *DefaultAnalyticsService) ReviewAnalytics(ctx context.Context, dateRange models.DateRange) (*models.ReviewAnalytics, error) {
	return cached(ctx, s.cache, "reviews:"+rangeKey(dateRange), func() (*models.ReviewAnalytics, error) {
		rows, err := s.bookings.ReviewTotals(ctx, dateRange)
		if err != nil {
			return nil, internal("review analytics", err)
		}
		return reviewAnalytics(rows), nil
	})
}

// Overview runs the four dashboard rollups concurrently.
func (s *DefaultAnalyticsService) Overview(ctx context.Context, dateRange models.DateRange, bucket models.Bucket) (*models.AnalyticsOverview, error) {
	key := fmt.Sprintf("overview:%s:%s", bucket, rangeKey(dateRange))
	return cached(ctx, s.cache, key, func() (*models.AnalyticsOverview, error) {
		out := &models.AnalyticsOverview{Period: bucket, Range: dateRange}
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			out.UserAnalytics, err = s.UserAnalytics(gctx, dateRange, bucket)
			return err
		})
		g.Go(func() (err error) {
			out.BookingAnalytics, err = s.BookingAnalytics(gctx, dateRange, bucket)
			return err
		})
		g.Go(func() (err error) {
			out.CategoryAnalytics, err = s.CategoryAnalytics(gctx)
			return err
		})
		g.Go(func() (err error) {
			out.RevenueAnalytics, err = s.RevenueAnalytics(gctx, dateRange, bucket)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return out, nil
	})
}

func (s *DefaultAnalyticsService) Performance(ctx context.Context, dateRange models.DateRange) (*models.PerformanceReport, error) {
	return cached(ctx, s.cache, "performance:"+rangeKey(dateRange), func() (*models.PerformanceReport, error) {
		out := &models.PerformanceReport{Range: dateRange}
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			out.ProviderPerformance, err = s.ProviderPerformance(gctx, dateRange)
			return err
		})
		g.Go(func() (err error) {
			out.ServicePerformance, err = s.ServicePerformance(gctx, dateRange)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return out, nil
	})
}

// Dashboard is never cached; it backs the admin landing page.
func (s *DefaultAnalyticsService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	out := &models.DashboardStats{}
	last30 := models.DateRange{From: s.now().Add(-30 * 24 * time.Hour)}
	recent := models.Page{Page: 1, Limit: recentLimit}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		roles, err := s.users.CountByRole(gctx)
		if err != nil {
			return internal("user counts", err)
		}
		for _, n := range roles {
			out.TotalUsers += n
		}
		out.TotalProviders = roles[models.RoleProvider]
		out.TotalCustomers = roles[models.RoleCustomer]
		return nil
	})
	g.Go(func() (err error) {
		if out.TotalServices, err = s.services.CountActive(gctx); err != nil {
			return internal("service count", err)
		}
		return nil
	})
	g.Go(func() error {
		counts, err := s.bookings.StatusCounts(gctx, models.BookingFilter{})
		if err != nil {
			return internal("booking counts", err)
		}
		out.BookingsByStatus = counts
		out.TotalBookings = counts.Total()
		return nil
	})
	g.Go(func() (err error) {
		if out.Revenue30Days, err = s.bookings.CompletedRevenue(gctx, models.BookingFilter{Created: last30}); err != nil {
			return internal("revenue", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if out.RecentBookings, _, err = s.bookings.List(gctx, models.BookingFilter{}, recent); err != nil {
			return internal("recent bookings", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if out.RecentUsers, _, err = s.users.List(gctx, models.UserFilter{}, recent); err != nil {
			return internal("recent users", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
