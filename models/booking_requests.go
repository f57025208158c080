package models

import "time"

// CreateBookingRequest is the customer's booking payload.
type CreateBookingRequest struct {
	ServiceID           string  `json:"serviceId" validate:"required"`
	BookingDate         string  `json:"bookingDate" validate:"required"`
	TimeSlot            string  `json:"timeSlot" validate:"required,timeslot"`
	Address             Address `json:"address"`
	Notes               string  `json:"notes" validate:"max=500"`
	SpecialInstructions string  `json:"specialInstructions" validate:"max=500"`
}

type AcceptBookingRequest struct {
	EstimatedArrival *time.Time `json:"estimatedArrival"`
	Notes            string     `json:"notes" validate:"max=500"`
}

type DeclineBookingRequest struct {
	Reason string `json:"declineReason" validate:"required,max=500"`
	Notes  string `json:"notes" validate:"max=500"`
}

type CompleteBookingRequest struct {
	CompletionNotes   string   `json:"completionNotes" validate:"max=1000"`
	BeforePhotos      []string `json:"beforePhotos" validate:"omitempty,max=10,dive,url"`
	AfterPhotos       []string `json:"afterPhotos" validate:"omitempty,max=10,dive,url"`
	CustomerSignature string   `json:"customerSignature"`
	ProviderSignature string   `json:"providerSignature"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type ReviewBookingRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Review string `json:"review" validate:"max=500"`
}

// ProcessPaymentRequest charges a booking.
type ProcessPaymentRequest struct {
	BookingID       string        `json:"bookingId" validate:"required"`
	Amount          float64       `json:"amount" validate:"gte=0"`
	PaymentMethod   PaymentMethod `json:"paymentMethod" validate:"required,oneof=credit_card debit_card stripe paypal"`
	PaymentMethodID string        `json:"paymentMethodId"`
}

// RefundPaymentRequest refunds a paid booking. Amount 0 means the full paid amount.
type RefundPaymentRequest struct {
	BookingID string  `json:"bookingId" validate:"required"`
	Amount    float64 `json:"amount" validate:"gte=0"`
	Reason    string  `json:"reason" validate:"max=500"`
}
