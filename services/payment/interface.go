package payment

import (
	"context"
	"time"

	bookingRepo "easybook/database/repository/booking"
	"easybook/models"
	"easybook/services/notification"
)

// PaymentService charges and refunds bookings. The only payment state is
// booking.payment.status and every change to it is a conditional write.
type PaymentService interface {
	Process(ctx context.Context, actor models.Actor, req models.ProcessPaymentRequest) (*Receipt, error)
	Capture(ctx context.Context, actor models.Actor, bookingID string) (*Receipt, error)
	Refund(ctx context.Context, actor models.Actor, req models.RefundPaymentRequest) (*Receipt, error)
	Status(ctx context.Context, paymentID string, method models.PaymentMethod) (*models.PaymentStatusResult, error)
	History(ctx context.Context, actor models.Actor, page models.Page) ([]Record, int64, error)
}

// Gateway is a payment provider adapter.
type Gateway interface {
	Charge(ctx context.Context, req models.ChargeRequest) (*models.ChargeResult, error)
	Refund(ctx context.Context, req models.RefundRequest) (*models.RefundResult, error)
	Status(ctx context.Context, paymentID string) (*models.PaymentStatusResult, error)
}

// Capturer is implemented by gateways whose charges need a second, payer-approved step.
type Capturer interface {
	Capture(ctx context.Context, paymentID string) (*models.ChargeResult, error)
}

// Receipt is returned by the payment operations.
type Receipt struct {
	BookingID   string         `json:"bookingId"`
	Payment     models.Payment `json:"payment"`
	ApprovalURL string         `json:"approvalUrl,omitempty"`
}

// Record is one row of a payment history.
type Record struct {
	BookingID     string         `json:"bookingId"`
	BookingNumber string         `json:"bookingNumber"`
	ServiceName   string         `json:"serviceName"`
	TotalAmount   float64        `json:"totalAmount"`
	Payment       models.Payment `json:"payment"`
	CreatedAt     time.Time      `json:"createdAt"`
}

type DefaultPaymentService struct {
	Bookings   bookingRepo.BookingRepository
	Gateways   map[string]Gateway
	Dispatcher notification.Dispatcher
	Currency   string
	Now        func() time.Time
}

// NewDefaultPaymentService wires the gateways by name ("stripe", "paypal"). Nil gateways are skipped.
func NewDefaultPaymentService(bookings bookingRepo.BookingRepository, dispatcher notification.Dispatcher, gateways map[string]Gateway) *DefaultPaymentService {
	wired := make(map[string]Gateway, len(gateways))
	for name, g := range gateways {
		if g != nil {
			wired[name] = g
		}
	}
	return &DefaultPaymentService{
		Bookings:   bookings,
		Gateways:   wired,
		Dispatcher: dispatcher,
		Currency:   "usd",
		Now:        func() time.Time { return time.Now().UTC() },
	}
}
