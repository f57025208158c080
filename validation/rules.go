package validation

import (
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"

	"easybook/models"
	"easybook/utils"
)

// IsWeekday reports whether s is a lowercase weekday key.
func IsWeekday(s string) bool {
	for _, day := range models.Weekdays {
		if s == day {
			return true
		}
	}
	return false
}

// IsTimeSlot accepts "HH:MM" or "HH:MM-HH:MM" with start before end.
func IsTimeSlot(s string) bool {
	parts := strings.Split(s, "-")
	switch len(parts) {
	case 1:
		return hhmmPattern.MatchString(strings.TrimSpace(parts[0]))
	case 2:
		start, end := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		return hhmmPattern.MatchString(start) && hhmmPattern.MatchString(end) && minutes(start) < minutes(end)
	}
	return false
}

func minutes(hhmm string) int {
	var h, m int
	_, _ = fmt.Sscanf(hhmm, "%d:%d", &h, &m)
	return h*60 + m
}

// NormalizeEmail lowercases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateRegistration checks a sign-up payload. Providers must name a category.
func ValidateRegistration(req *models.RegistrationRequest) error {
	req.Email = NormalizeEmail(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if req.Role == "" {
		req.Role = models.RoleCustomer
	}
	if err := Struct(req); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return utils.NewValidationError("Validation failed", utils.FieldError{Field: "email", Message: "Please provide a valid email"})
	}
	if req.Role == models.RoleProvider && req.ServiceCategory == "" {
		return utils.NewValidationError("Validation failed", utils.FieldError{
			Field:   "serviceCategory",
			Message: "Service category is required for providers",
		})
	}
	return nil
}

// ValidateProfileUpdate checks the self-service profile fields.
func ValidateProfileUpdate(update models.ProfileUpdate) error {
	var fields []utils.FieldError
	if update.FirstName != nil {
		if n := len(strings.TrimSpace(*update.FirstName)); n < 2 || n > 50 {
			fields = append(fields, utils.FieldError{Field: "firstName", Message: "firstName must be between 2 and 50 characters"})
		}
	}
	if update.LastName != nil && len(strings.TrimSpace(*update.LastName)) > 50 {
		fields = append(fields, utils.FieldError{Field: "lastName", Message: "lastName cannot exceed 50 characters"})
	}
	if update.Phone != nil && *update.Phone != "" && !phonePattern.MatchString(*update.Phone) {
		fields = append(fields, utils.FieldError{Field: "phone", Message: "Please provide a valid phone number"})
	}
	if update.ProfileImage != nil && *update.ProfileImage != "" && !strings.HasPrefix(*update.ProfileImage, "http") {
		fields = append(fields, utils.FieldError{Field: "profileImage", Message: "profileImage must be a valid URL"})
	}
	if len(fields) > 0 {
		return utils.NewValidationError("Validation failed", fields...)
	}
	return nil
}

// ValidateProviderProfile checks editable provider business fields.
func ValidateProviderProfile(update models.ProviderProfileUpdate) error {
	var fields []utils.FieldError
	if update.BusinessName != nil && len(*update.BusinessName) > 100 {
		fields = append(fields, utils.FieldError{Field: "businessName", Message: "businessName cannot exceed 100 characters"})
	}
	if update.BusinessAddress != nil && len(*update.BusinessAddress) > 200 {
		fields = append(fields, utils.FieldError{Field: "businessAddress", Message: "businessAddress cannot exceed 200 characters"})
	}
	if update.Experience != nil && (*update.Experience < 0 || *update.Experience > 60) {
		fields = append(fields, utils.FieldError{Field: "experience", Message: "experience must be between 0 and 60 years"})
	}
	if len(fields) > 0 {
		return utils.NewValidationError("Validation failed", fields...)
	}
	return nil
}

// ValidateWorkingHours requires known weekdays, HH:MM times and start before end on working days.
func ValidateWorkingHours(hours map[string]models.DayHours) error {
	var fields []utils.FieldError
	for day, h := range hours {
		if !IsWeekday(day) {
			fields = append(fields, utils.FieldError{Field: "workingHours." + day, Message: "unknown weekday"})
			continue
		}
		if !h.IsWorking {
			continue
		}
		if !hhmmPattern.MatchString(h.Start) || !hhmmPattern.MatchString(h.End) {
			fields = append(fields, utils.FieldError{Field: "workingHours." + day, Message: "start and end must be in HH:MM format"})
			continue
		}
		if minutes(h.Start) >= minutes(h.End) {
			fields = append(fields, utils.FieldError{Field: "workingHours." + day, Message: "start must be before end"})
		}
	}
	if len(fields) > 0 {
		return utils.NewValidationError("Validation failed", fields...)
	}
	return nil
}

// ValidateServiceInput checks a listing payload including availability windows.
func ValidateServiceInput(in *models.ServiceInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := Struct(in); err != nil {
		return err
	}
	var fields []utils.FieldError
	for day, windows := range in.Availability {
		for i, w := range windows {
			if minutes(w.Start) >= minutes(w.End) {
				fields = append(fields, utils.FieldError{
					Field:   fmt.Sprintf("availability.%s[%d]", day, i),
					Message: "start must be before end",
				})
			}
		}
	}
	if len(fields) > 0 {
		return utils.NewValidationError("Validation failed", fields...)
	}
	return nil
}

// ParseBookingDate accepts YYYY-MM-DD or RFC3339 and returns the date in UTC.
func ParseBookingDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// ValidateBookingRequest checks a booking payload and returns the parsed date.
// Dates before today (UTC, day granularity) are rejected.
func ValidateBookingRequest(req *models.CreateBookingRequest, now time.Time) (time.Time, error) {
	if err := Struct(req); err != nil {
		return time.Time{}, err
	}
	var fields []utils.FieldError
	date, err := ParseBookingDate(req.BookingDate)
	if err != nil {
		fields = append(fields, utils.FieldError{Field: "bookingDate", Message: "bookingDate must be YYYY-MM-DD or an RFC3339 timestamp"})
	} else {
		today := now.UTC().Truncate(24 * time.Hour)
		if date.Truncate(24 * time.Hour).Before(today) {
			fields = append(fields, utils.FieldError{Field: "bookingDate", Message: "bookingDate cannot be in the past"})
		}
	}
	if strings.TrimSpace(req.Address.Street) == "" {
		fields = append(fields, utils.FieldError{Field: "address.street", Message: "address.street is required"})
	}
	if strings.TrimSpace(req.Address.City) == "" {
		fields = append(fields, utils.FieldError{Field: "address.city", Message: "address.city is required"})
	}
	if c := req.Address.Coordinates; c != nil && (c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180) {
		fields = append(fields, utils.FieldError{Field: "address.coordinates", Message: "coordinates out of range"})
	}
	if len(fields) > 0 {
		return time.Time{}, utils.NewValidationError("Validation failed", fields...)
	}
	return date, nil
}

// ValidateAvailability checks a date-specific calendar entry and returns the
// day at midnight UTC. Slots must run forward and may not overlap.
func ValidateAvailability(req *models.AvailabilityRequest) (time.Time, error) {
	req.Notes = strings.TrimSpace(req.Notes)
	if err := Struct(req); err != nil {
		return time.Time{}, err
	}
	date, err := ParseBookingDate(req.Date)
	if err != nil {
		return time.Time{}, utils.NewValidationError("Validation failed", utils.FieldError{Field: "date", Message: "Valid date is required"})
	}
	var fields []utils.FieldError
	slots := append([]models.AvailabilitySlot(nil), req.TimeSlots...)
	sort.Slice(slots, func(i, j int) bool { return minutes(slots[i].Start) < minutes(slots[j].Start) })
	for i, slot := range slots {
		if minutes(slot.Start) >= minutes(slot.End) {
			fields = append(fields, utils.FieldError{Field: fmt.Sprintf("timeSlots[%s-%s]", slot.Start, slot.End), Message: "start must be before end"})
			continue
		}
		if i > 0 && minutes(slot.Start) < minutes(slots[i-1].End) {
			fields = append(fields, utils.FieldError{Field: fmt.Sprintf("timeSlots[%s-%s]", slot.Start, slot.End), Message: "time slots cannot overlap"})
		}
	}
	if len(fields) > 0 {
		return time.Time{}, utils.NewValidationError("Validation failed", fields...)
	}
	return date.Truncate(24 * time.Hour), nil
}
