package models

import "time"

// AvailabilitySlot is one window on a provider's calendar day.
type AvailabilitySlot struct {
	Start       string `bson:"start" json:"start" validate:"required,hhmm"`
	End         string `bson:"end" json:"end" validate:"required,hhmm"`
	IsAvailable bool   `bson:"isAvailable" json:"isAvailable"`
	BookingID   string `bson:"bookingId,omitempty" json:"bookingId,omitempty"`
}

// ProviderAvailability overrides a provider's weekly hours for one calendar
// day. There is at most one per provider and date.
type ProviderAvailability struct {
	ID           string             `bson:"id" json:"id"`
	ProviderID   string             `bson:"providerId" json:"providerId"`
	Date         time.Time          `bson:"date" json:"date"` // midnight UTC
	TimeSlots    []AvailabilitySlot `bson:"timeSlots" json:"timeSlots"`
	IsWorkingDay bool               `bson:"isWorkingDay" json:"isWorkingDay"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// AvailabilityRequest is the body of POST /api/providers/availability.
// Slots default to available and the day to working.
type AvailabilityRequest struct {
	Date         string             `json:"date" validate:"required"`
	TimeSlots    []AvailabilitySlot `json:"timeSlots" validate:"dive"`
	IsWorkingDay *bool              `json:"isWorkingDay"`
	Notes        string             `json:"notes" validate:"max=200"`
}
