package payment

import (
	"context"
	"errors"
	"fmt"
	"math"

	"easybook/database/repository"
	"easybook/models"
	"easybook/utils"
	"easybook/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	msgBookingNotFound = "Booking not found"
	msgNotAuthorized   = "Not authorized to pay for this booking"
	msgPaymentChanged  = "Payment state changed, please reload the booking"
)

func (s *DefaultPaymentService) load(ctx context.Context, id string) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NewNotFoundError(msgBookingNotFound)
		}
		return nil, utils.NewInternalError("Failed to load booking", err)
	}
	return b, nil
}

func (s *DefaultPaymentService) gateway(method models.PaymentMethod) (Gateway, error) {
	g, ok := s.Gateways[method.Gateway()]
	if !ok {
		return nil, utils.NewUpstreamError(fmt.Sprintf("Payment gateway %s is not configured", method.Gateway()), nil)
	}
	return g, nil
}

func sameAmount(a, b float64) bool {
	return math.Abs(a-b) < 0.005
}

// Process charges the booking total. The booking is marked paid only when the
// gateway reports a captured payment; a gateway failure is recorded as failed.
func (s *DefaultPaymentService) Process(ctx context.Context, actor models.Actor, req models.ProcessPaymentRequest) (*Receipt, error) {
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}
	b, err := s.load(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != actor.ID && !actor.IsAdmin() {
		return nil, utils.NewForbiddenError(msgNotAuthorized)
	}
	if b.Status == models.StatusDeclined || b.Status == models.StatusCancelled {
		return nil, utils.NewInvalidStateError("Cannot pay for a declined or cancelled booking")
	}
	switch b.Payment.Status {
	case models.PaymentPaid:
		return nil, utils.NewInvalidStateError("Booking is already paid")
	case models.PaymentRefunded:
		return nil, utils.NewInvalidStateError("Booking payment was refunded")
	}
	if b.Payment.Status == models.PaymentPending && b.Payment.TransactionID != "" {
		return nil, utils.NewInvalidStateError("A payment for this booking is awaiting approval")
	}
	if !sameAmount(req.Amount, b.TotalAmount) {
		return nil, utils.NewValidationError("Validation failed", utils.FieldError{
			Field:   "amount",
			Message: fmt.Sprintf("Payment amount must equal the booking total of %.2f", b.TotalAmount),
		})
	}
	if req.PaymentMethod != models.MethodPayPal && req.PaymentMethodID == "" {
		return nil, utils.NewValidationError("Validation failed", utils.FieldError{Field: "paymentMethodId", Message: "paymentMethodId is required for card payments"})
	}
	g, err := s.gateway(req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	expected := b.Payment.Status
	result, err := g.Charge(ctx, models.ChargeRequest{
		BookingID:       b.ID,
		BookingNumber:   b.BookingNumber,
		Amount:          b.TotalAmount,
		Currency:        s.Currency,
		Method:          req.PaymentMethod,
		PaymentMethodID: req.PaymentMethodID,
		Description:     fmt.Sprintf("EasyBook %s: %s", b.BookingNumber, b.ServiceName),
		IdempotencyKey:  fmt.Sprintf("charge-%s-v%d", b.ID, b.Version),
	})
	if err != nil || !result.Success {
		reason := "payment declined"
		if err != nil {
			reason = err.Error()
		} else if result.Message != "" {
			reason = result.Message
		}
		s.recordFailure(ctx, b, expected, req.PaymentMethod, reason)
		return nil, utils.NewUpstreamError("Payment processing failed", err)
	}

	now := s.Now()
	payment := models.Payment{
		Status:        models.PaymentPending,
		Method:        req.PaymentMethod,
		TransactionID: result.PaymentID,
		Amount:        b.TotalAmount,
	}
	if result.Status == models.PaymentPaid {
		payment.Status = models.PaymentPaid
		payment.PaidAt = &now
	}
	updated, err := s.Bookings.UpdatePayment(ctx, b.ID, expected, payment)
	if err != nil {
		utils.GetLogger().Error("Charge succeeded but booking payment was not recorded",
			zap.String("bookingId", b.ID), zap.String("transactionId", result.PaymentID), zap.Error(err))
		return nil, storeError(err)
	}
	if payment.Status == models.PaymentPaid {
		s.notify(ctx, updated, updated.ProviderID, "Payment Received",
			fmt.Sprintf("Payment of %.2f received for booking %s", payment.Amount, updated.BookingNumber))
	}
	return &Receipt{BookingID: updated.ID, Payment: updated.Payment, ApprovalURL: result.ApprovalURL}, nil
}

// Capture completes a payer-approved charge (PayPal orders).
func (s *DefaultPaymentService) Capture(ctx context.Context, actor models.Actor, bookingID string) (*Receipt, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != actor.ID && !actor.IsAdmin() {
		return nil, utils.NewForbiddenError(msgNotAuthorized)
	}
	if b.Payment.Status != models.PaymentPending || b.Payment.TransactionID == "" {
		return nil, utils.NewInvalidStateError("No payment is awaiting capture")
	}
	g, err := s.gateway(b.Payment.Method)
	if err != nil {
		return nil, err
	}
	capturer, ok := g.(Capturer)
	if !ok {
		return nil, utils.NewInvalidStateError("This payment method does not support capture")
	}

	result, err := capturer.Capture(ctx, b.Payment.TransactionID)
	if err != nil || !result.Success || result.Status != models.PaymentPaid {
		if err == nil {
			err = fmt.Errorf("capture status %s: %s", result.Status, result.Message)
		}
		return nil, utils.NewUpstreamError("Payment capture failed", err)
	}

	now := s.Now()
	payment := b.Payment
	payment.Status = models.PaymentPaid
	payment.TransactionID = result.PaymentID
	payment.PaidAt = &now
	updated, err := s.Bookings.UpdatePayment(ctx, b.ID, models.PaymentPending, payment)
	if err != nil {
		return nil, storeError(err)
	}
	s.notify(ctx, updated, updated.ProviderID, "Payment Received",
		fmt.Sprintf("Payment of %.2f received for booking %s", payment.Amount, updated.BookingNumber))
	return &Receipt{BookingID: updated.ID, Payment: updated.Payment}, nil
}

// Refund returns some or all of a paid amount. The booking keeps its paid
// status if the gateway refuses.
func (s *DefaultPaymentService) Refund(ctx context.Context, actor models.Actor, req models.RefundPaymentRequest) (*Receipt, error) {
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}
	b, err := s.load(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != actor.ID && b.ProviderID != actor.ID && !actor.IsAdmin() {
		return nil, utils.NewForbiddenError("Not authorized to refund this booking")
	}
	if b.Payment.Status != models.PaymentPaid {
		return nil, utils.NewInvalidStateError("Booking payment is not in paid status")
	}
	amount := req.Amount
	if amount == 0 {
		amount = b.Payment.Amount
	}
	if amount > b.Payment.Amount+0.005 {
		return nil, utils.NewValidationError("Validation failed", utils.FieldError{Field: "amount", Message: "Refund amount cannot exceed the paid amount"})
	}
	g, err := s.gateway(b.Payment.Method)
	if err != nil {
		return nil, err
	}
	reason := req.Reason
	if reason == "" {
		reason = "Customer requested refund"
	}

	result, err := g.Refund(ctx, models.RefundRequest{
		PaymentID:      b.Payment.TransactionID,
		Amount:         amount,
		Reason:         reason,
		Currency:       s.Currency,
		IdempotencyKey: fmt.Sprintf("refund-%s-v%d", b.ID, b.Version),
	})
	if err != nil || !result.Success {
		if err == nil {
			err = fmt.Errorf("refund status %s: %s", result.Status, result.Message)
		}
		utils.GetLogger().Warn("Refund rejected", zap.String("bookingId", b.ID), zap.Error(err))
		return nil, utils.NewUpstreamError("Refund failed", err)
	}

	now := s.Now()
	payment := b.Payment
	payment.Status = models.PaymentRefunded
	payment.RefundID = result.RefundID
	payment.RefundedAmount = amount
	payment.RefundedAt = &now
	updated, err := s.Bookings.UpdatePayment(ctx, b.ID, models.PaymentPaid, payment)
	if err != nil {
		utils.GetLogger().Error("Refund succeeded but booking payment was not recorded",
			zap.String("bookingId", b.ID), zap.String("refundId", result.RefundID), zap.Error(err))
		return nil, storeError(err)
	}
	s.notify(ctx, updated, updated.CustomerID, "Refund Processed",
		fmt.Sprintf("A refund of %.2f for booking %s is on its way", amount, updated.BookingNumber))
	return &Receipt{BookingID: updated.ID, Payment: updated.Payment}, nil
}

// Status asks the gateway that handles method about a payment id.
func (s *DefaultPaymentService) Status(ctx context.Context, paymentID string, method models.PaymentMethod) (*models.PaymentStatusResult, error) {
	if paymentID == "" {
		return nil, utils.NewValidationError("Payment id is required")
	}
	if method == "" {
		method = models.MethodStripe
	}
	if !method.IsValid() {
		return nil, utils.NewValidationError("Invalid payment method")
	}
	g, err := s.gateway(method)
	if err != nil {
		return nil, err
	}
	status, err := g.Status(ctx, paymentID)
	if err != nil {
		return nil, utils.NewUpstreamError("Failed to get payment status", err)
	}
	return status, nil
}

// History lists the caller's bookings that carry a payment.
func (s *DefaultPaymentService) History(ctx context.Context, actor models.Actor, page models.Page) ([]Record, int64, error) {
	filter := models.BookingFilter{PartyID: actor.ID, HasPayment: true}
	if actor.Role == models.RoleCustomer {
		filter = models.BookingFilter{CustomerID: actor.ID, HasPayment: true}
	}
	bookings, total, err := s.Bookings.List(ctx, filter, page.Normalize(10, 50))
	if err != nil {
		return nil, 0, utils.NewInternalError("Failed to list payments", err)
	}
	records := make([]Record, 0, len(bookings))
	for _, b := range bookings {
		records = append(records, Record{
			BookingID:     b.ID,
			BookingNumber: b.BookingNumber,
			ServiceName:   b.ServiceName,
			TotalAmount:   b.TotalAmount,
			Payment:       b.Payment,
			CreatedAt:     b.CreatedAt,
		})
	}
	return records, total, nil
}

func (s *DefaultPaymentService) recordFailure(ctx context.Context, b *models.Booking, expected models.PaymentStatus, method models.PaymentMethod, reason string) {
	payment := models.Payment{Status: models.PaymentFailed, Method: method, Amount: b.TotalAmount, FailureReason: reason}
	if _, err := s.Bookings.UpdatePayment(ctx, b.ID, expected, payment); err != nil {
		utils.GetLogger().Warn("Failed to record payment failure", zap.String("bookingId", b.ID), zap.Error(err))
	}
}

func storeError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return utils.NewNotFoundError(msgBookingNotFound)
	case errors.Is(err, repository.ErrStale):
		return utils.NewInvalidStateError(msgPaymentChanged)
	default:
		return utils.NewInternalError("Failed to update payment", err)
	}
}

func (s *DefaultPaymentService) notify(ctx context.Context, b *models.Booking, userID, title, body string) {
	if s.Dispatcher == nil {
		return
	}
	n := models.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      models.NotifyPayment,
		Title:     title,
		Body:      body,
		BookingID: b.ID,
		Data: map[string]string{
			"bookingId":     b.ID,
			"bookingNumber": b.BookingNumber,
			"paymentStatus": string(b.Payment.Status),
			"type":          string(models.NotifyPayment),
		},
		CreatedAt: s.Now(),
	}
	if result := s.Dispatcher.Dispatch(ctx, n); !result.Success {
		utils.GetLogger().Warn("payment notification not dispatched", zap.String("bookingId", b.ID), zap.String("error", result.Error))
	}
}
