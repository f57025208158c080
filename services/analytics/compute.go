package analytics

import (
	"sort"
	"strconv"

	"easybook/models"
)

const topRatedLimit = 10

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func percent(part, total int64) float64 {
	return ratio(float64(part), float64(total)) * 100
}

func categoryStats(totals []models.CategoryTotals) []models.CategoryStat {
	out := make([]models.CategoryStat, 0, len(totals))
	for _, t := range totals {
		out = append(out, models.CategoryStat{
			Category:      t.Category,
			TotalServices: t.Count,
			AveragePrice:  ratio(t.PriceSum, float64(t.Count)),
			AverageRating: ratio(t.RatingSum, float64(t.Count)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalServices > out[j].TotalServices })
	return out
}

func revenueBuckets(rows []models.BookingBucket) []models.RevenueBucket {
	out := make([]models.RevenueBucket, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.RevenueBucket{
			Period:            row.Period,
			TotalRevenue:      row.TotalRevenue,
			CompletedBookings: row.CompletedBookings,
			AverageOrderValue: ratio(row.TotalRevenue, float64(row.CompletedBookings)),
		})
	}
	return out
}

func byRevenue(a, b models.PerformanceTotals) bool {
	if a.Revenue != b.Revenue {
		return a.Revenue > b.Revenue
	}
	return a.Key < b.Key
}

func providerPerformance(totals []models.PerformanceTotals) []models.ProviderPerformance {
	sort.SliceStable(totals, func(i, j int) bool { return byRevenue(totals[i], totals[j]) })
	out := make([]models.ProviderPerformance, 0, len(totals))
	for _, t := range totals {
		out = append(out, models.ProviderPerformance{
			ProviderID:        t.Key,
			ProviderName:      t.Name,
			TotalBookings:     t.Total,
			CompletedBookings: t.Completed,
			CancelledBookings: t.Cancelled,
			TotalRevenue:      t.Revenue,
			AverageRating:     ratio(t.RatingSum, float64(t.RatingCount)),
			CompletionRate:    percent(t.Completed, t.Total),
		})
	}
	return out
}

func servicePerformance(totals []models.PerformanceTotals) []models.ServicePerformance {
	sort.SliceStable(totals, func(i, j int) bool { return byRevenue(totals[i], totals[j]) })
	out := make([]models.ServicePerformance, 0, len(totals))
	for _, t := range totals {
		out = append(out, models.ServicePerformance{
			ServiceID:         t.Key,
			ServiceName:       t.Name,
			Category:          t.Category,
			TotalBookings:     t.Total,
			CompletedBookings: t.Completed,
			CancelledBookings: t.Cancelled,
			TotalRevenue:      t.Revenue,
			AverageRating:     ratio(t.RatingSum, float64(t.RatingCount)),
			CompletionRate:    percent(t.Completed, t.Total),
		})
	}
	return out
}

// reviewAnalytics folds per-service, per-star counts into the review report.
// Top services are ranked by average rating, then review count, then id.
func reviewAnalytics(rows []models.ReviewTotals) *models.ReviewAnalytics {
	report := &models.ReviewAnalytics{
		RatingDistribution: map[string]int64{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0},
		TopRatedServices:   []models.TopRatedService{},
	}

	type serviceSum struct {
		name  string
		sum   int64
		count int64
	}
	perService := make(map[string]*serviceSum)
	var starSum int64
	for _, row := range rows {
		if row.Rating < 1 || row.Rating > 5 {
			continue
		}
		report.TotalReviews += row.Count
		report.RatingDistribution[strconv.Itoa(row.Rating)] += row.Count
		starSum += int64(row.Rating) * row.Count

		s, ok := perService[row.ServiceID]
		if !ok {
			s = &serviceSum{}
			perService[row.ServiceID] = s
		}
		if row.ServiceName != "" {
			s.name = row.ServiceName
		}
		s.sum += int64(row.Rating) * row.Count
		s.count += row.Count
	}
	report.AverageRating = ratio(float64(starSum), float64(report.TotalReviews))

	for id, s := range perService {
		report.TopRatedServices = append(report.TopRatedServices, models.TopRatedService{
			ServiceID:     id,
			ServiceName:   s.name,
			AverageRating: ratio(float64(s.sum), float64(s.count)),
			TotalReviews:  s.count,
		})
	}
	top := report.TopRatedServices
	sort.Slice(top, func(i, j int) bool {
		if top[i].AverageRating != top[j].AverageRating {
			return top[i].AverageRating > top[j].AverageRating
		}
		if top[i].TotalReviews != top[j].TotalReviews {
			return top[i].TotalReviews > top[j].TotalReviews
		}
		return top[i].ServiceID < top[j].ServiceID
	})
	if len(top) > topRatedLimit {
		report.TopRatedServices = top[:topRatedLimit]
	}
	return report
}
