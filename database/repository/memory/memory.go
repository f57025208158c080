// Package memory holds process-local repositories selected with
// DATABASE_DRIVER=memory. They honour the same conditional-write contracts
// as the Mongo repositories and back the service tests.
package memory

import (
	"sort"

	"easybook/models"
)

func paginate[T any](items []T, page models.Page) []T {
	if page.Limit <= 0 {
		return items
	}
	start := page.Skip()
	if start < 0 || start >= len(items) {
		return []T{}
	}
	end := start + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneUser(u *models.User) *models.User {
	out := *u
	if u.ProviderInfo != nil {
		info := *u.ProviderInfo
		info.Services = cloneStrings(info.Services)
		if info.WorkingHours != nil {
			hours := make(map[string]models.DayHours, len(info.WorkingHours))
			for day, h := range info.WorkingHours {
				hours[day] = h
			}
			info.WorkingHours = hours
		}
		out.ProviderInfo = &info
	}
	if u.CustomerInfo != nil {
		info := *u.CustomerInfo
		if info.Address != nil {
			addr := *info.Address
			info.Address = &addr
		}
		out.CustomerInfo = &info
	}
	if u.LastLogin != nil {
		t := *u.LastLogin
		out.LastLogin = &t
	}
	return &out
}

func cloneService(s *models.Service) *models.Service {
	out := *s
	out.Images = cloneStrings(s.Images)
	out.ServiceArea = cloneStrings(s.ServiceArea)
	out.Tags = cloneStrings(s.Tags)
	if s.Availability != nil {
		avail := make(map[string][]models.TimeWindow, len(s.Availability))
		for day, windows := range s.Availability {
			avail[day] = append([]models.TimeWindow(nil), windows...)
		}
		out.Availability = avail
	}
	return &out
}

func cloneBooking(b *models.Booking) *models.Booking {
	out := *b
	if b.ProviderResponse != nil {
		resp := *b.ProviderResponse
		out.ProviderResponse = &resp
	}
	if b.CompletionDetails != nil {
		details := *b.CompletionDetails
		details.BeforePhotos = cloneStrings(details.BeforePhotos)
		details.AfterPhotos = cloneStrings(details.AfterPhotos)
		out.CompletionDetails = &details
	}
	if b.Cancellation != nil {
		c := *b.Cancellation
		out.Cancellation = &c
	}
	if b.Address.Coordinates != nil {
		p := *b.Address.Coordinates
		out.Address.Coordinates = &p
	}
	return &out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
