package models

import (
	"fmt"
	"strings"
	"time"
)

// Bucket is the time granularity of a rollup.
type Bucket string

const (
	BucketDaily   Bucket = "daily"
	BucketWeekly  Bucket = "weekly"
	BucketMonthly Bucket = "monthly"
)

// ParseBucket accepts daily, weekly and monthly; empty defaults to daily.
func ParseBucket(s string) (Bucket, error) {
	switch b := Bucket(strings.ToLower(s)); b {
	case "":
		return BucketDaily, nil
	case BucketDaily, BucketWeekly, BucketMonthly:
		return b, nil
	}
	return "", fmt.Errorf("invalid period: %s", s)
}

// Key formats t (in UTC) as the bucket label: 2006-01-02, 2006-WW or 2006-01.
// Weeks start on Sunday and the days before the first Sunday are week 00.
func (b Bucket) Key(t time.Time) string {
	t = t.UTC()
	switch b {
	case BucketMonthly:
		return t.Format("2006-01")
	case BucketWeekly:
		week := (t.YearDay() - 1 + 7 - int(t.Weekday())) / 7
		return fmt.Sprintf("%04d-%02d", t.Year(), week)
	default:
		return t.Format("2006-01-02")
	}
}

// MongoFormat is the $dateToString format producing the same labels as Key.
func (b Bucket) MongoFormat() string {
	switch b {
	case BucketMonthly:
		return "%Y-%m"
	case BucketWeekly:
		return "%Y-%U"
	default:
		return "%Y-%m-%d"
	}
}

type UserBucket struct {
	Period     string `bson:"_id" json:"period"`
	TotalUsers int64  `bson:"totalUsers" json:"totalUsers"`
	Providers  int64  `bson:"providers" json:"providers"`
	Customers  int64  `bson:"customers" json:"customers"`
}

type BookingBucket struct {
	Period            string  `bson:"_id" json:"period"`
	TotalBookings     int64   `bson:"totalBookings" json:"totalBookings"`
	CompletedBookings int64   `bson:"completedBookings" json:"completedBookings"`
	CancelledBookings int64   `bson:"cancelledBookings" json:"cancelledBookings"`
	TotalRevenue      float64 `bson:"totalRevenue" json:"totalRevenue"`
}

type RevenueBucket struct {
	Period            string  `json:"period"`
	TotalRevenue      float64 `json:"totalRevenue"`
	CompletedBookings int64   `json:"completedBookings"`
	AverageOrderValue float64 `json:"averageOrderValue"`
}

// CategoryTotals is the raw per-category group read from storage.
type CategoryTotals struct {
	Category  Category `bson:"_id"`
	Count     int64    `bson:"count"`
	PriceSum  float64  `bson:"priceSum"`
	RatingSum float64  `bson:"ratingSum"`
}

type CategoryStat struct {
	Category      Category `json:"category"`
	TotalServices int64    `json:"totalServices"`
	AveragePrice  float64  `json:"averagePrice"`
	AverageRating float64  `json:"averageRating"`
}

// PerformanceTotals is the raw per-provider or per-service group read from storage.
type PerformanceTotals struct {
	Key         string   `bson:"_id"`
	Name        string   `bson:"name"`
	Category    Category `bson:"category"`
	Total       int64    `bson:"total"`
	Completed   int64    `bson:"completed"`
	Cancelled   int64    `bson:"cancelled"`
	Revenue     float64  `bson:"revenue"`
	RatingSum   float64  `bson:"ratingSum"`
	RatingCount int64    `bson:"ratingCount"`
}

type ProviderPerformance struct {
	ProviderID        string  `json:"providerId"`
	ProviderName      string  `json:"providerName"`
	TotalBookings     int64   `json:"totalBookings"`
	CompletedBookings int64   `json:"completedBookings"`
	CancelledBookings int64   `json:"cancelledBookings"`
	TotalRevenue      float64 `json:"totalRevenue"`
	AverageRating     float64 `json:"averageRating"`
	CompletionRate    float64 `json:"completionRate"`
}

type ServicePerformance struct {
	ServiceID         string   `json:"serviceId"`
	ServiceName       string   `json:"serviceName"`
	Category          Category `json:"category"`
	TotalBookings     int64    `json:"totalBookings"`
	CompletedBookings int64    `json:"completedBookings"`
	CancelledBookings int64    `json:"cancelledBookings"`
	TotalRevenue      float64  `json:"totalRevenue"`
	AverageRating     float64  `json:"averageRating"`
	CompletionRate    float64  `json:"completionRate"`
}

// ReviewTotals counts reviews of one service at one star rating.
type ReviewTotals struct {
	ServiceID   string `bson:"serviceId"`
	ServiceName string `bson:"serviceName"`
	Rating      int    `bson:"rating"`
	Count       int64  `bson:"count"`
}

type TopRatedService struct {
	ServiceID     string  `json:"serviceId"`
	ServiceName   string  `json:"serviceName"`
	AverageRating float64 `json:"averageRating"`
	TotalReviews  int64   `json:"totalReviews"`
}

type ReviewAnalytics struct {
	TotalReviews       int64             `json:"totalReviews"`
	AverageRating      float64           `json:"averageRating"`
	RatingDistribution map[string]int64  `json:"ratingDistribution"`
	TopRatedServices   []TopRatedService `json:"topRatedServices"`
}

// AnalyticsOverview is the admin analytics payload.
type AnalyticsOverview struct {
	Period            Bucket          `json:"period"`
	Range             DateRange       `json:"dateRange"`
	UserAnalytics     []UserBucket    `json:"userAnalytics"`
	BookingAnalytics  []BookingBucket `json:"bookingAnalytics"`
	CategoryAnalytics []CategoryStat  `json:"categoryAnalytics"`
	RevenueAnalytics  []RevenueBucket `json:"revenueAnalytics"`
}

type PerformanceReport struct {
	Range               DateRange             `json:"dateRange"`
	ProviderPerformance []ProviderPerformance `json:"providerPerformance"`
	ServicePerformance  []ServicePerformance  `json:"servicePerformance"`
}

// DashboardStats is the admin dashboard summary.
type DashboardStats struct {
	TotalUsers       int64               `json:"totalUsers"`
	TotalProviders   int64               `json:"totalProviders"`
	TotalCustomers   int64               `json:"totalCustomers"`
	TotalServices    int64               `json:"totalServices"`
	TotalBookings    int64               `json:"totalBookings"`
	BookingsByStatus BookingStatusCounts `json:"bookingsByStatus"`
	Revenue30Days    float64             `json:"revenueLast30Days"`
	RecentBookings   []Booking           `json:"recentBookings"`
	RecentUsers      []User              `json:"recentUsers"`
}
