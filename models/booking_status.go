package models

import "fmt"

// BookingStatus represents the current state of a booking in its lifecycle.
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusAccepted   BookingStatus = "accepted"
	StatusDeclined   BookingStatus = "declined"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
)

// BookingAction is a lifecycle operation requested against a booking.
type BookingAction string

const (
	ActionAccept   BookingAction = "accept"
	ActionDecline  BookingAction = "decline"
	ActionStart    BookingAction = "start"
	ActionComplete BookingAction = "complete"
	ActionCancel   BookingAction = "cancel"
)

// transitions is the single authority for legal (state, action) pairs.
var transitions = map[BookingStatus]map[BookingAction]BookingStatus{
	StatusPending: {
		ActionAccept:  StatusAccepted,
		ActionDecline: StatusDeclined,
		ActionCancel:  StatusCancelled,
	},
	StatusAccepted: {
		ActionStart:  StatusInProgress,
		ActionCancel: StatusCancelled,
	},
	StatusInProgress: {
		ActionComplete: StatusCompleted,
		ActionCancel:   StatusCancelled,
	},
	// a declined request can still be withdrawn so it leaves the active lists
	StatusDeclined: {
		ActionCancel: StatusCancelled,
	},
	StatusCompleted: {},
	StatusCancelled: {},
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, exists := transitions[s]
	return exists
}

// Next returns the status reached by applying action, or false when the
// action is not allowed from s.
func (s BookingStatus) Next(action BookingAction) (BookingStatus, bool) {
	next, ok := transitions[s][action]
	return next, ok
}

// CanTransitionTo returns true if some action moves s to target.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s BookingStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts a string to a BookingStatus, returning an error if invalid.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}

// AllBookingStatuses in lifecycle order.
var AllBookingStatuses = []BookingStatus{
	StatusPending, StatusAccepted, StatusDeclined, StatusInProgress, StatusCompleted, StatusCancelled,
}
