package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	availabilityRepo "easybook/database/repository/availability"
	"easybook/models"
)

// AvailabilityRepo is an in-memory availabilityRepo.AvailabilityRepository.
type AvailabilityRepo struct {
	mu      sync.RWMutex
	entries map[string]models.ProviderAvailability // providerId|date
}

func NewAvailabilityRepo() *AvailabilityRepo {
	return &AvailabilityRepo{entries: make(map[string]models.ProviderAvailability)}
}

var _ availabilityRepo.AvailabilityRepository = (*AvailabilityRepo)(nil)

func availabilityKey(providerID string, date time.Time) string {
	return providerID + "|" + date.UTC().Format("2006-01-02")
}

func (r *AvailabilityRepo) Upsert(_ context.Context, entry *models.ProviderAvailability) (*models.ProviderAvailability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	key := availabilityKey(entry.ProviderID, entry.Date)
	stored, ok := r.entries[key]
	if !ok {
		stored = models.ProviderAvailability{ID: entry.ID, ProviderID: entry.ProviderID, Date: entry.Date, CreatedAt: now}
	}
	stored.TimeSlots = append([]models.AvailabilitySlot(nil), entry.TimeSlots...)
	stored.IsWorkingDay = entry.IsWorkingDay
	stored.Notes = entry.Notes
	stored.UpdatedAt = now
	r.entries[key] = stored

	out := stored
	out.TimeSlots = append([]models.AvailabilitySlot(nil), stored.TimeSlots...)
	return &out, nil
}

func (r *AvailabilityRepo) List(_ context.Context, providerID string, dates models.DateRange) ([]models.ProviderAvailability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.ProviderAvailability{}
	for _, entry := range r.entries {
		if entry.ProviderID != providerID || !dates.Contains(entry.Date) {
			continue
		}
		entry.TimeSlots = append([]models.AvailabilitySlot(nil), entry.TimeSlots...)
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
