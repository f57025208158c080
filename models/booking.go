package models

import "time"

// ProviderResponse is stamped when the provider accepts or declines.
type ProviderResponse struct {
	Status           BookingStatus `bson:"status" json:"status"`
	ResponseTime     time.Time     `bson:"responseTime" json:"responseTime"`
	DeclineReason    string        `bson:"declineReason,omitempty" json:"declineReason,omitempty"`
	EstimatedArrival *time.Time    `bson:"estimatedArrival,omitempty" json:"estimatedArrival,omitempty"`
	Notes            string        `bson:"notes,omitempty" json:"notes,omitempty"`
}

// CompletionDetails is stamped when the provider finishes the job.
type CompletionDetails struct {
	CompletedAt       time.Time `bson:"completedAt" json:"completedAt"`
	CompletionNotes   string    `bson:"completionNotes,omitempty" json:"completionNotes,omitempty"`
	BeforePhotos      []string  `bson:"beforePhotos,omitempty" json:"beforePhotos,omitempty"`
	AfterPhotos       []string  `bson:"afterPhotos,omitempty" json:"afterPhotos,omitempty"`
	CustomerSignature string    `bson:"customerSignature,omitempty" json:"customerSignature,omitempty"`
	ProviderSignature string    `bson:"providerSignature,omitempty" json:"providerSignature,omitempty"`
}

// Cancellation records who cancelled and why.
type Cancellation struct {
	CancelledBy  Role      `bson:"cancelledBy" json:"cancelledBy"`
	CancelledAt  time.Time `bson:"cancelledAt" json:"cancelledAt"`
	Reason       string    `bson:"reason" json:"reason"`
	RefundAmount float64   `bson:"refundAmount" json:"refundAmount"`
}

// Booking is the reservation of a service by a customer from a provider.
type Booking struct {
	ID            string `bson:"id" json:"id"`
	BookingNumber string `bson:"bookingId" json:"bookingId"`

	ServiceID       string   `bson:"serviceId" json:"serviceId"`
	ServiceName     string   `bson:"serviceName" json:"serviceName"`
	ServiceCategory Category `bson:"serviceCategory" json:"serviceCategory"`
	CustomerID      string   `bson:"customerId" json:"customerId"`
	CustomerName    string   `bson:"customerName" json:"customerName"`
	ProviderID      string   `bson:"providerId" json:"providerId"`
	ProviderName    string   `bson:"providerName" json:"providerName"`

	BookingDate time.Time `bson:"bookingDate" json:"bookingDate"`
	TimeSlot    string    `bson:"timeSlot" json:"timeSlot"`
	Address     Address   `bson:"address" json:"address"`

	Status              BookingStatus `bson:"status" json:"status"`
	TotalAmount         float64       `bson:"totalAmount" json:"totalAmount"`
	Notes               string        `bson:"notes,omitempty" json:"notes,omitempty"`
	SpecialInstructions string        `bson:"specialInstructions,omitempty" json:"specialInstructions,omitempty"`
	CustomerPhone       string        `bson:"customerPhone,omitempty" json:"customerPhone,omitempty"`
	CustomerEmail       string        `bson:"customerEmail,omitempty" json:"customerEmail,omitempty"`

	ProviderResponse  *ProviderResponse  `bson:"providerResponse,omitempty" json:"providerResponse,omitempty"`
	StartedAt         *time.Time         `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	CompletionDetails *CompletionDetails `bson:"completionDetails,omitempty" json:"completionDetails,omitempty"`
	Cancellation      *Cancellation      `bson:"cancellation,omitempty" json:"cancellation,omitempty"`
	Payment           Payment            `bson:"payment" json:"payment"`

	Rating     int        `bson:"rating,omitempty" json:"rating,omitempty"`
	Review     string     `bson:"review,omitempty" json:"review,omitempty"`
	ReviewedAt *time.Time `bson:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`

	// Version increases on every conditional write.
	Version   int64     `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IsParty reports whether userID is the booking's customer or provider.
func (b *Booking) IsParty(userID string) bool {
	return userID != "" && (b.CustomerID == userID || b.ProviderID == userID)
}

// StatusChange is the patch applied together with a status transition.
// Only the non-nil sub-records are written.
type StatusChange struct {
	From              BookingStatus
	To                BookingStatus
	ProviderResponse  *ProviderResponse
	StartedAt         *time.Time
	CompletionDetails *CompletionDetails
	Cancellation      *Cancellation
	At                time.Time
}

// BookingFilter narrows booking listings.
type BookingFilter struct {
	CustomerID string
	ProviderID string
	PartyID    string // customer or provider
	Status     BookingStatus
	Created    DateRange
	Scheduled  DateRange
	HasPayment bool
	Rated      bool // only bookings carrying a review
	Rating     int  // exact star rating, 0 for any
	Sort       BookingSort
}

// BookingSort orders booking listings. The zero value is newest first by creation.
type BookingSort string

const (
	SortByCreated  BookingSort = ""
	SortBySchedule BookingSort = "schedule" // bookingDate desc, then createdAt desc
	SortByReviewed BookingSort = "reviewed" // reviewedAt desc
)

// RatingCount is the number of reviews at one star rating.
type RatingCount struct {
	Rating int   `bson:"_id" json:"_id"`
	Count  int64 `bson:"count" json:"count"`
}

// FavoriteTotals groups a customer's completed bookings by service or provider.
type FavoriteTotals struct {
	Key          string    `bson:"_id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	ProviderID   string    `bson:"providerId" json:"providerId"`
	ProviderName string    `bson:"providerName" json:"providerName"`
	BookingCount int64     `bson:"bookingCount" json:"bookingCount"`
	TotalSpent   float64   `bson:"totalSpent" json:"totalSpent"`
	LastBooked   time.Time `bson:"lastBooked" json:"lastBooked"`
}

// BookingStatusCounts maps each status to the number of bookings in it.
type BookingStatusCounts map[BookingStatus]int64

// Total sums every status.
func (c BookingStatusCounts) Total() int64 {
	var total int64
	for _, n := range c {
		total += n
	}
	return total
}
