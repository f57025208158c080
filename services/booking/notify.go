package booking

import (
	"context"

	"easybook/models"
	"easybook/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// notify hands exactly one notification to the dispatcher. It runs after the
// booking write has committed and never fails the caller.
func (s *DefaultBookingService) notify(ctx context.Context, b *models.Booking, userID string, kind models.NotificationType, title, body string) {
	if s.Dispatcher == nil {
		return
	}
	n := models.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      kind,
		Title:     title,
		Body:      body,
		BookingID: b.ID,
		Data: map[string]string{
			"bookingId":     b.ID,
			"bookingNumber": b.BookingNumber,
			"status":        string(b.Status),
			"type":          string(kind),
		},
		CreatedAt: s.Now(),
	}
	result := s.Dispatcher.Dispatch(ctx, n)
	if !result.Success {
		utils.GetLogger().Warn("booking notification not dispatched",
			zap.String("bookingId", b.ID),
			zap.String("type", string(kind)),
			zap.String("userId", userID),
			zap.String("error", result.Error))
	}
}
