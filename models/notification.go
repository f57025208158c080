package models

import "time"

type NotificationType string

const (
	NotifyNewBooking       NotificationType = "new_booking"
	NotifyBookingAccepted  NotificationType = "booking_accepted"
	NotifyBookingDeclined  NotificationType = "booking_declined"
	NotifyServiceStarted   NotificationType = "service_started"
	NotifyServiceCompleted NotificationType = "service_completed"
	NotifyBookingCancelled NotificationType = "booking_cancelled"
	NotifyPayment          NotificationType = "payment"
	NotifyReview           NotificationType = "review"
	NotifyGeneral          NotificationType = "general"
)

// Notification is an outbound message to a single user. Delivered notifications
// are also kept in the user's inbox.
type Notification struct {
	ID        string            `bson:"id" json:"id"`
	UserID    string            `bson:"userId" json:"userId"`
	Type      NotificationType  `bson:"type" json:"type"`
	Title     string            `bson:"title" json:"title"`
	Body      string            `bson:"body" json:"body"`
	Data      map[string]string `bson:"data,omitempty" json:"data,omitempty"`
	BookingID string            `bson:"bookingId,omitempty" json:"bookingId,omitempty"`
	Pushed    bool              `bson:"pushed" json:"pushed"`
	Emailed   bool              `bson:"emailed" json:"emailed"`
	Read      bool              `bson:"read" json:"read"`
	CreatedAt time.Time         `bson:"createdAt" json:"createdAt"`
}

// DedupKey identifies the transition that produced a booking notification.
func (n Notification) DedupKey() string {
	if n.BookingID == "" {
		return n.ID
	}
	return n.BookingID + ":" + string(n.Type) + ":" + n.UserID
}

// DeliveryResult mirrors the dispatcher contract {success, error?}.
type DeliveryResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// EmailMessage is a plain outbound email.
type EmailMessage struct {
	To      string
	Subject string
	Text    string
	HTML    string
}
