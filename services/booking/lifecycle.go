package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"easybook/database/repository"
	"easybook/models"
	"easybook/utils"
	"easybook/validation"

	"go.uber.org/zap"
)

// transition is one lifecycle step: authorize against the current booking,
// look the action up in the status table and compare-and-set the result.
type transition struct {
	action models.BookingAction
	// authorize returns nil when the actor may perform action on b.
	authorize func(b *models.Booking) error
	// patch fills the sub-records written together with the status.
	patch func(b *models.Booking, change *models.StatusChange)
}

func (s *DefaultBookingService) apply(ctx context.Context, bookingID string, t transition) (*models.Booking, error) {
	current, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, storeError(err, string(t.action))
	}
	if err := t.authorize(current); err != nil {
		return nil, err
	}
	next, ok := current.Status.Next(t.action)
	if !ok {
		return nil, utils.NewInvalidStateError(guardMessage[string(t.action)])
	}

	change := models.StatusChange{From: current.Status, To: next, At: s.Now()}
	if t.patch != nil {
		t.patch(current, &change)
	}
	updated, err := s.Bookings.TransitionStatus(ctx, bookingID, change)
	if err != nil {
		if errors.Is(err, repository.ErrStale) {
			utils.GetLogger().Info("booking transition lost a race",
				zap.String("bookingId", bookingID),
				zap.String("action", string(t.action)),
				zap.String("expected", string(change.From)))
		}
		return nil, storeError(err, string(t.action))
	}

	utils.GetLogger().Info("booking transitioned",
		zap.String("bookingId", updated.ID),
		zap.String("action", string(t.action)),
		zap.String("from", string(change.From)),
		zap.String("to", string(change.To)))
	return updated, nil
}

func ownedByProvider(providerID string) func(*models.Booking) error {
	return func(b *models.Booking) error {
		if b.ProviderID != providerID {
			return utils.NewForbiddenError(msgNotOwnerProvider)
		}
		return nil
	}
}

func (s *DefaultBookingService) Accept(ctx context.Context, providerID, bookingID string, req models.AcceptBookingRequest) (*models.Booking, error) {
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}
	b, err := s.apply(ctx, bookingID, transition{
		action:    models.ActionAccept,
		authorize: ownedByProvider(providerID),
		patch: func(_ *models.Booking, change *models.StatusChange) {
			change.ProviderResponse = &models.ProviderResponse{
				Status:           models.StatusAccepted,
				ResponseTime:     change.At,
				EstimatedArrival: req.EstimatedArrival,
				Notes:            req.Notes,
			}
		},
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, b, b.CustomerID, models.NotifyBookingAccepted, "Booking Accepted",
		fmt.Sprintf("%s accepted your booking for %s", b.ProviderName, b.ServiceName))
	return b, nil
}

func (s *DefaultBookingService) Decline(ctx context.Context, providerID, bookingID string, req models.DeclineBookingRequest) (*models.Booking, error) {
	req.Reason = strings.TrimSpace(req.Reason)
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}
	b, err := s.apply(ctx, bookingID, transition{
		action:    models.ActionDecline,
		authorize: ownedByProvider(providerID),
		patch: func(_ *models.Booking, change *models.StatusChange) {
			change.ProviderResponse = &models.ProviderResponse{
				Status:        models.StatusDeclined,
				ResponseTime:  change.At,
				DeclineReason: req.Reason,
				Notes:         req.Notes,
			}
		},
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, b, b.CustomerID, models.NotifyBookingDeclined, "Booking Declined",
		fmt.Sprintf("%s declined your booking for %s: %s", b.ProviderName, b.ServiceName, req.Reason))
	return b, nil
}

func (s *DefaultBookingService) Start(ctx context.Context, providerID, bookingID string) (*models.Booking, error) {
	b, err := s.apply(ctx, bookingID, transition{
		action:    models.ActionStart,
		authorize: ownedByProvider(providerID),
		patch: func(_ *models.Booking, change *models.StatusChange) {
			at := change.At
			change.StartedAt = &at
		},
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, b, b.CustomerID, models.NotifyServiceStarted, "Service Started",
		fmt.Sprintf("%s has started your %s service", b.ProviderName, b.ServiceName))
	return b, nil
}

func (s *DefaultBookingService) Complete(ctx context.Context, providerID, bookingID string, req models.CompleteBookingRequest) (*models.Booking, error) {
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}
	b, err := s.apply(ctx, bookingID, transition{
		action:    models.ActionComplete,
		authorize: ownedByProvider(providerID),
		patch: func(_ *models.Booking, change *models.StatusChange) {
			change.CompletionDetails = &models.CompletionDetails{
				CompletedAt:       change.At,
				CompletionNotes:   req.CompletionNotes,
				BeforePhotos:      req.BeforePhotos,
				AfterPhotos:       req.AfterPhotos,
				CustomerSignature: req.CustomerSignature,
				ProviderSignature: req.ProviderSignature,
			}
		},
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, b, b.CustomerID, models.NotifyServiceCompleted, "Service Completed",
		fmt.Sprintf("Your %s service has been completed. Leave a review for %s!", b.ServiceName, b.ProviderName))
	return b, nil
}

// Cancel is open to either party and to admins. The notification goes to the
// party that did not cancel; an admin cancellation notifies the customer.
func (s *DefaultBookingService) Cancel(ctx context.Context, actor models.Actor, bookingID, reason string) (*models.Booking, error) {
	req := models.CancelBookingRequest{Reason: strings.TrimSpace(reason)}
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}

	var cancelledBy models.Role
	b, err := s.apply(ctx, bookingID, transition{
		action: models.ActionCancel,
		authorize: func(b *models.Booking) error {
			switch {
			case b.CustomerID == actor.ID:
				cancelledBy = models.RoleCustomer
			case b.ProviderID == actor.ID:
				cancelledBy = models.RoleProvider
			case actor.IsAdmin():
				cancelledBy = models.RoleAdmin
			default:
				return utils.NewForbiddenError("Not authorized to cancel this booking")
			}
			return nil
		},
		patch: func(b *models.Booking, change *models.StatusChange) {
			var refund float64
			if b.Payment.Status == models.PaymentPaid {
				refund = b.TotalAmount
			}
			change.Cancellation = &models.Cancellation{
				CancelledBy:  cancelledBy,
				CancelledAt:  change.At,
				Reason:       req.Reason,
				RefundAmount: refund,
			}
		},
	})
	if err != nil {
		return nil, err
	}

	recipient, by := b.CustomerID, "The provider"
	switch cancelledBy {
	case models.RoleCustomer:
		recipient, by = b.ProviderID, b.CustomerName
	case models.RoleAdmin:
		by = "An administrator"
	}
	s.notify(ctx, b, recipient, models.NotifyBookingCancelled, "Booking Cancelled",
		fmt.Sprintf("%s cancelled the booking for %s: %s", by, b.ServiceName, req.Reason))
	return b, nil
}
