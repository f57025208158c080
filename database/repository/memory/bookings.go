package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"easybook/database/repository"
	bookingRepo "easybook/database/repository/booking"
	"easybook/models"
)

// BookingRepo is an in-memory bookingRepo.BookingRepository. Conditional
// writes check and mutate under one lock, which gives the same
// compare-and-set behaviour as the Mongo filters.
type BookingRepo struct {
	mu       sync.RWMutex
	bookings map[string]*models.Booking
	order    []string
}

func NewBookingRepo() *BookingRepo {
	return &BookingRepo{bookings: make(map[string]*models.Booking)}
}

var _ bookingRepo.BookingRepository = (*BookingRepo)(nil)

func (r *BookingRepo) Create(_ context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[booking.ID]; ok {
		return repository.ErrDuplicate
	}
	for _, existing := range r.bookings {
		if existing.BookingNumber == booking.BookingNumber {
			return repository.ErrDuplicate
		}
	}
	now := time.Now().UTC()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}
	booking.UpdatedAt = now
	booking.Version = 1
	r.bookings[booking.ID] = cloneBooking(booking)
	r.order = append(r.order, booking.ID)
	return nil
}

func (r *BookingRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneBooking(b), nil
}

func matchesBooking(b *models.Booking, filter models.BookingFilter) bool {
	if filter.CustomerID != "" && b.CustomerID != filter.CustomerID {
		return false
	}
	if filter.ProviderID != "" && b.ProviderID != filter.ProviderID {
		return false
	}
	if filter.PartyID != "" && !b.IsParty(filter.PartyID) {
		return false
	}
	if filter.Status != "" && b.Status != filter.Status {
		return false
	}
	if filter.HasPayment && b.Payment.TransactionID == "" {
		return false
	}
	if filter.Rating > 0 && b.Rating != filter.Rating {
		return false
	}
	if filter.Rated && b.Rating < 1 {
		return false
	}
	if !filter.Scheduled.IsZero() && !filter.Scheduled.Contains(b.BookingDate) {
		return false
	}
	return filter.Created.Contains(b.CreatedAt)
}

// each visits bookings in insertion order.
func (r *BookingRepo) each(fn func(*models.Booking)) {
	for _, id := range r.order {
		fn(r.bookings[id])
	}
}

func (r *BookingRepo) List(_ context.Context, filter models.BookingFilter, page models.Page) ([]models.Booking, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []models.Booking{}
	r.each(func(b *models.Booking) {
		if matchesBooking(b, filter) {
			matched = append(matched, *cloneBooking(b))
		}
	})
	sort.SliceStable(matched, func(i, j int) bool {
		return bookingLess(&matched[i], &matched[j], filter.Sort)
	})
	return paginate(matched, page), int64(len(matched)), nil
}

func reviewedAt(b *models.Booking) time.Time {
	if b.ReviewedAt == nil {
		return time.Time{}
	}
	return *b.ReviewedAt
}

func bookingLess(a, b *models.Booking, by models.BookingSort) bool {
	switch by {
	case models.SortBySchedule:
		if !a.BookingDate.Equal(b.BookingDate) {
			return a.BookingDate.After(b.BookingDate)
		}
	case models.SortByReviewed:
		if ra, rb := reviewedAt(a), reviewedAt(b); !ra.Equal(rb) {
			return ra.After(rb)
		}
		return a.ID < b.ID
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}

// compareAndSet runs mutate when guard holds for the stored booking.
func (r *BookingRepo) compareAndSet(id string, guard func(*models.Booking) bool, mutate func(*models.Booking)) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !guard(b) {
		return nil, repository.ErrStale
	}
	mutate(b)
	b.Version++
	return cloneBooking(b), nil
}

func (r *BookingRepo) TransitionStatus(_ context.Context, id string, change models.StatusChange) (*models.Booking, error) {
	return r.compareAndSet(id,
		func(b *models.Booking) bool { return b.Status == change.From },
		func(b *models.Booking) {
			b.Status = change.To
			b.UpdatedAt = change.At
			if change.ProviderResponse != nil {
				resp := *change.ProviderResponse
				b.ProviderResponse = &resp
			}
			if change.StartedAt != nil {
				t := *change.StartedAt
				b.StartedAt = &t
			}
			if change.CompletionDetails != nil {
				details := *change.CompletionDetails
				b.CompletionDetails = &details
			}
			if change.Cancellation != nil {
				c := *change.Cancellation
				b.Cancellation = &c
			}
		})
}

func (r *BookingRepo) UpdatePayment(_ context.Context, id string, expected models.PaymentStatus, payment models.Payment) (*models.Booking, error) {
	return r.compareAndSet(id,
		func(b *models.Booking) bool { return b.Payment.Status == expected },
		func(b *models.Booking) {
			b.Payment = payment
			b.UpdatedAt = time.Now().UTC()
		})
}

func (r *BookingRepo) SetReview(_ context.Context, id string, rating int, review string, at time.Time) (*models.Booking, error) {
	return r.compareAndSet(id,
		func(b *models.Booking) bool { return b.Status == models.StatusCompleted && b.Rating == 0 },
		func(b *models.Booking) {
			b.Rating = rating
			b.Review = review
			t := at
			b.ReviewedAt = &t
			b.UpdatedAt = at
		})
}

func (r *BookingRepo) StatusCounts(_ context.Context, filter models.BookingFilter) (models.BookingStatusCounts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(models.BookingStatusCounts, len(models.AllBookingStatuses))
	for _, status := range models.AllBookingStatuses {
		counts[status] = 0
	}
	r.each(func(b *models.Booking) {
		if matchesBooking(b, filter) {
			counts[b.Status]++
		}
	})
	return counts, nil
}

func (r *BookingRepo) CompletedRevenue(_ context.Context, filter models.BookingFilter) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	filter.Status = models.StatusCompleted
	var revenue float64
	r.each(func(b *models.Booking) {
		if matchesBooking(b, filter) {
			revenue += b.TotalAmount
		}
	})
	return revenue, nil
}

func (r *BookingRepo) Buckets(_ context.Context, filter models.BookingFilter, bucket models.Bucket) ([]models.BookingBucket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byKey := make(map[string]*models.BookingBucket)
	r.each(func(b *models.Booking) {
		if !matchesBooking(b, filter) {
			return
		}
		key := bucket.Key(b.CreatedAt)
		row, ok := byKey[key]
		if !ok {
			row = &models.BookingBucket{Period: key}
			byKey[key] = row
		}
		row.TotalBookings++
		switch b.Status {
		case models.StatusCompleted:
			row.CompletedBookings++
			row.TotalRevenue += b.TotalAmount
		case models.StatusCancelled:
			row.CancelledBookings++
		}
	})
	out := make([]models.BookingBucket, 0, len(byKey))
	for _, key := range sortedKeys(byKey) {
		out = append(out, *byKey[key])
	}
	return out, nil
}

func (r *BookingRepo) PerformanceTotals(_ context.Context, dateRange models.DateRange, key bookingRepo.GroupKey) ([]models.PerformanceTotals, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byKey := make(map[string]*models.PerformanceTotals)
	r.each(func(b *models.Booking) {
		if !dateRange.Contains(b.CreatedAt) {
			return
		}
		id, name := b.ProviderID, b.ProviderName
		if key == bookingRepo.ByService {
			id, name = b.ServiceID, b.ServiceName
		}
		row, ok := byKey[id]
		if !ok {
			row = &models.PerformanceTotals{Key: id}
			byKey[id] = row
		}
		row.Name = name
		row.Category = b.ServiceCategory
		row.Total++
		switch b.Status {
		case models.StatusCompleted:
			row.Completed++
			row.Revenue += b.TotalAmount
		case models.StatusCancelled:
			row.Cancelled++
		}
		if b.Rating > 0 {
			row.RatingSum += float64(b.Rating)
			row.RatingCount++
		}
	})
	out := make([]models.PerformanceTotals, 0, len(byKey))
	for _, row := range byKey {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

func (r *BookingRepo) ReviewTotals(_ context.Context, dateRange models.DateRange) ([]models.ReviewTotals, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type groupKey struct {
		serviceID string
		rating    int
	}
	byKey := make(map[groupKey]*models.ReviewTotals)
	var keys []groupKey
	r.each(func(b *models.Booking) {
		if b.Rating < 1 || b.Rating > 5 || b.ReviewedAt == nil || !dateRange.Contains(*b.ReviewedAt) {
			return
		}
		k := groupKey{b.ServiceID, b.Rating}
		row, ok := byKey[k]
		if !ok {
			row = &models.ReviewTotals{ServiceID: b.ServiceID, Rating: b.Rating}
			byKey[k] = row
			keys = append(keys, k)
		}
		row.ServiceName = b.ServiceName
		row.Count++
	})
	out := make([]models.ReviewTotals, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byKey[k])
	}
	return out, nil
}

func (r *BookingRepo) RatingCounts(_ context.Context, filter models.BookingFilter) ([]models.RatingCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	filter.Rated = true
	byRating := make(map[int]int64)
	r.each(func(b *models.Booking) {
		if matchesBooking(b, filter) {
			byRating[b.Rating]++
		}
	})
	out := make([]models.RatingCount, 0, len(byRating))
	for rating, count := range byRating {
		out = append(out, models.RatingCount{Rating: rating, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rating < out[j].Rating })
	return out, nil
}

func (r *BookingRepo) FavoriteTotals(_ context.Context, customerID string, key bookingRepo.GroupKey, limit int) ([]models.FavoriteTotals, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byKey := make(map[string]*models.FavoriteTotals)
	r.each(func(b *models.Booking) {
		if b.CustomerID != customerID || b.Status != models.StatusCompleted {
			return
		}
		id, name := b.ProviderID, b.ProviderName
		if key == bookingRepo.ByService {
			id, name = b.ServiceID, b.ServiceName
		}
		row, ok := byKey[id]
		if !ok {
			row = &models.FavoriteTotals{Key: id}
			byKey[id] = row
		}
		row.Name = name
		row.ProviderID = b.ProviderID
		row.ProviderName = b.ProviderName
		row.BookingCount++
		row.TotalSpent += b.TotalAmount
		if b.CreatedAt.After(row.LastBooked) {
			row.LastBooked = b.CreatedAt
		}
	})
	out := make([]models.FavoriteTotals, 0, len(byKey))
	for _, row := range byKey {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BookingCount != out[j].BookingCount {
			return out[i].BookingCount > out[j].BookingCount
		}
		if !out[i].LastBooked.Equal(out[j].LastBooked) {
			return out[i].LastBooked.After(out[j].LastBooked)
		}
		return out[i].Key < out[j].Key
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
