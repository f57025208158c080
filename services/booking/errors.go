package booking

import (
	"errors"

	"easybook/database/repository"
	"easybook/utils"
)

const (
	msgBookingNotFound  = "Booking not found"
	msgNotPending       = "Booking is no longer pending"
	msgNotAccepted      = "Booking must be accepted before starting"
	msgNotInProgress    = "Service must be in progress to complete"
	msgNotCancellable   = "Booking cannot be cancelled"
	msgNotOwnerProvider = "Not authorized to update this booking"
)

// guardMessage is the InvalidState message reported for a refused action.
var guardMessage = map[string]string{
	"accept":   msgNotPending,
	"decline":  msgNotPending,
	"start":    msgNotAccepted,
	"complete": msgNotInProgress,
	"cancel":   msgNotCancellable,
}

// storeError maps repository sentinels onto API errors.
func storeError(err error, action string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return utils.NewNotFoundError(msgBookingNotFound)
	case errors.Is(err, repository.ErrStale):
		return utils.NewInvalidStateError(guardMessage[action])
	}
	return utils.NewInternalError("booking store failure", err)
}
