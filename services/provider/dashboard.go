package provider

import (
	"context"
	"time"

	"easybook/models"
	"easybook/utils"

	"golang.org/x/sync/errgroup"
)

const recentBookings = 5

// Dashboard gathers the provider's counts, 30-day earnings and today's schedule.
func (s *DefaultProviderService) Dashboard(ctx context.Context, providerID string) (*Dashboard, error) {
	provider, err := s.GetProfile(ctx, providerID)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	mine := models.BookingFilter{ProviderID: providerID}
	last30 := models.BookingFilter{ProviderID: providerID, Status: models.StatusCompleted, Created: models.DateRange{From: now.AddDate(0, 0, -30)}}

	out := &Dashboard{
		Rating:      provider.ProviderInfo.Rating,
		IsAvailable: provider.ProviderInfo.IsAvailable,
	}
	var todays [2][]models.Booking

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := s.Bookings.StatusCounts(gctx, mine)
		if err != nil {
			return err
		}
		out.BookingsByStatus = counts
		out.TotalBookings = counts.Total()
		return nil
	})
	g.Go(func() error {
		_, total, err := s.Services.List(gctx, models.ServiceFilter{ProviderID: providerID}, models.Page{Page: 1, Limit: 1})
		out.ActiveServices = total
		return err
	})
	g.Go(func() (err error) {
		out.Earnings30Days, err = s.Bookings.CompletedRevenue(gctx, last30)
		return err
	})
	g.Go(func() error {
		counts, err := s.Bookings.StatusCounts(gctx, last30)
		out.Completed30Days = counts[models.StatusCompleted]
		return err
	})
	g.Go(func() (err error) {
		out.RecentBookings, _, err = s.Bookings.List(gctx, mine, models.Page{Page: 1, Limit: recentBookings})
		return err
	})
	for i, status := range []models.BookingStatus{models.StatusAccepted, models.StatusInProgress} {
		i, status := i, status
		g.Go(func() (err error) {
			filter := models.BookingFilter{
				ProviderID: providerID,
				Status:     status,
				Scheduled:  models.DateRange{From: today, To: today.AddDate(0, 0, 1)},
			}
			todays[i], _, err = s.Bookings.List(gctx, filter, models.Page{})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, utils.NewInternalError("Failed to build provider dashboard", err)
	}
	out.TodaysBookings = append(todays[0], todays[1]...)
	if out.TodaysBookings == nil {
		out.TodaysBookings = []models.Booking{}
	}
	return out, nil
}

// Earnings reports completed-booking revenue. The range defaults to the last 30 days and the bucket to monthly.
func (s *DefaultProviderService) Earnings(ctx context.Context, providerID string, dateRange models.DateRange, bucket models.Bucket) (*Earnings, error) {
	if _, err := s.GetProfile(ctx, providerID); err != nil {
		return nil, err
	}
	if dateRange.IsZero() {
		now := s.Now()
		dateRange = models.DateRange{From: now.AddDate(0, 0, -30), To: now}
	}
	if bucket == "" {
		bucket = models.BucketMonthly
	}
	filter := models.BookingFilter{ProviderID: providerID, Status: models.StatusCompleted, Created: dateRange}
	rows, err := s.Bookings.Buckets(ctx, filter, bucket)
	if err != nil {
		return nil, utils.NewInternalError("Failed to compute earnings", err)
	}

	out := &Earnings{Period: bucket, Range: dateRange, Earnings: rows}
	for _, row := range rows {
		out.Summary.TotalEarnings += row.TotalRevenue
		out.Summary.TotalBookings += row.CompletedBookings
	}
	if out.Summary.TotalBookings > 0 {
		out.Summary.AverageEarning = out.Summary.TotalEarnings / float64(out.Summary.TotalBookings)
	}
	return out, nil
}
