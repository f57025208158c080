package payment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"easybook/database/repository/memory"
	"easybook/models"
	"easybook/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (d *recordingDispatcher) Dispatch(_ context.Context, n models.Notification) models.DeliveryResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, n)
	return models.DeliveryResult{Success: true}
}

func (d *recordingDispatcher) For(userID string) []models.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []models.Notification
	for _, n := range d.sent {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

type fakeGateway struct {
	charge    *models.ChargeResult
	chargeErr error
	refund    *models.RefundResult
	capture   *models.ChargeResult
	charges   []models.ChargeRequest
	refunds   []models.RefundRequest
}

func (g *fakeGateway) Charge(_ context.Context, req models.ChargeRequest) (*models.ChargeResult, error) {
	g.charges = append(g.charges, req)
	return g.charge, g.chargeErr
}

func (g *fakeGateway) Refund(_ context.Context, req models.RefundRequest) (*models.RefundResult, error) {
	g.refunds = append(g.refunds, req)
	return g.refund, nil
}

func (g *fakeGateway) Status(_ context.Context, id string) (*models.PaymentStatusResult, error) {
	return &models.PaymentStatusResult{PaymentID: id, Status: "succeeded"}, nil
}

type capturingGateway struct {
	fakeGateway
}

func (g *capturingGateway) Capture(_ context.Context, id string) (*models.ChargeResult, error) {
	return g.capture, nil
}

var (
	customer = models.Actor{ID: "cust-1", Role: models.RoleCustomer}
	provider = models.Actor{ID: "prov-1", Role: models.RoleProvider}
	stranger = models.Actor{ID: "cust-2", Role: models.RoleCustomer}
)

type fixture struct {
	svc        *DefaultPaymentService
	bookings   *memory.BookingRepo
	stripe     *fakeGateway
	paypal     *capturingGateway
	dispatcher *recordingDispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		bookings:   memory.NewBookingRepo(),
		stripe:     &fakeGateway{charge: &models.ChargeResult{Success: true, PaymentID: "pi_1", Status: models.PaymentPaid}},
		paypal:     &capturingGateway{},
		dispatcher: &recordingDispatcher{},
	}
	f.svc = NewDefaultPaymentService(f.bookings, f.dispatcher, map[string]Gateway{"stripe": f.stripe, "paypal": f.paypal})
	f.svc.Now = func() time.Time { return time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC) }

	require.NoError(t, f.bookings.Create(context.Background(), &models.Booking{
		ID:            "bk-1",
		BookingNumber: "BK-0001",
		ServiceName:   "Deep clean",
		CustomerID:    "cust-1",
		ProviderID:    "prov-1",
		Status:        models.StatusAccepted,
		TotalAmount:   120,
		Payment:       models.Payment{Status: models.PaymentPending},
	}))
	return f
}

func cardPayment(amount float64) models.ProcessPaymentRequest {
	return models.ProcessPaymentRequest{BookingID: "bk-1", Amount: amount, PaymentMethod: models.MethodCreditCard, PaymentMethodID: "pm_card_visa"}
}

func TestProcessMarksBookingPaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	receipt, err := f.svc.Process(ctx, customer, cardPayment(120))
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, receipt.Payment.Status)
	assert.Equal(t, "pi_1", receipt.Payment.TransactionID)
	require.NotNil(t, receipt.Payment.PaidAt)

	require.Len(t, f.stripe.charges, 1)
	assert.Equal(t, "charge-bk-1-v1", f.stripe.charges[0].IdempotencyKey)
	assert.Equal(t, "usd", f.stripe.charges[0].Currency)

	sent := f.dispatcher.For("prov-1")
	require.Len(t, sent, 1)
	assert.Equal(t, "Payment Received", sent[0].Title)

	_, err = f.svc.Process(ctx, customer, cardPayment(120))
	assert.True(t, utils.IsKind(err, utils.KindInvalidState))
	assert.Len(t, f.stripe.charges, 1)
}

func TestProcessRejectsBadRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Process(ctx, customer, cardPayment(99.99))
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	_, err = f.svc.Process(ctx, stranger, cardPayment(120))
	assert.True(t, utils.IsKind(err, utils.KindForbidden))

	req := cardPayment(120)
	req.PaymentMethodID = ""
	_, err = f.svc.Process(ctx, customer, req)
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	_, err = f.svc.Process(ctx, customer, models.ProcessPaymentRequest{BookingID: "missing", Amount: 1, PaymentMethod: models.MethodStripe, PaymentMethodID: "pm"})
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	assert.Empty(t, f.stripe.charges)
}

func TestProcessFailureIsRecorded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stripe.charge = &models.ChargeResult{Success: false, Status: models.PaymentFailed, Message: "card declined"}

	_, err := f.svc.Process(ctx, customer, cardPayment(120))
	assert.True(t, utils.IsKind(err, utils.KindUpstream))

	b, err := f.bookings.GetByID(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, b.Payment.Status)
	assert.Equal(t, "card declined", b.Payment.FailureReason)
	assert.Empty(t, f.dispatcher.For("prov-1"))

	f.stripe.charge = nil
	f.stripe.chargeErr = errors.New("connection reset")
	_, err = f.svc.Process(ctx, customer, cardPayment(120))
	assert.True(t, utils.IsKind(err, utils.KindUpstream))
	b, err = f.bookings.GetByID(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, b.Payment.Status)

	f.stripe.chargeErr = nil
	f.stripe.charge = &models.ChargeResult{Success: true, PaymentID: "pi_2", Status: models.PaymentPaid}
	receipt, err := f.svc.Process(ctx, customer, cardPayment(120))
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, receipt.Payment.Status)
	assert.Empty(t, receipt.Payment.FailureReason)
}

func TestProcessRejectsCancelledBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.bookings.TransitionStatus(ctx, "bk-1", models.StatusChange{From: models.StatusAccepted, To: models.StatusCancelled})
	require.NoError(t, err)

	_, err = f.svc.Process(ctx, customer, cardPayment(120))
	assert.True(t, utils.IsKind(err, utils.KindInvalidState))
}

func TestPayPalApprovalThenCapture(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.paypal.charge = &models.ChargeResult{Success: true, PaymentID: "ORDER-1", Status: models.PaymentPending, ApprovalURL: "https://paypal.test/approve"}
	f.paypal.capture = &models.ChargeResult{Success: true, PaymentID: "CAPTURE-1", Status: models.PaymentPaid}

	receipt, err := f.svc.Process(ctx, customer, models.ProcessPaymentRequest{BookingID: "bk-1", Amount: 120, PaymentMethod: models.MethodPayPal})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, receipt.Payment.Status)
	assert.Equal(t, "ORDER-1", receipt.Payment.TransactionID)
	assert.Equal(t, "https://paypal.test/approve", receipt.ApprovalURL)
	assert.Empty(t, f.dispatcher.For("prov-1"))

	_, err = f.svc.Process(ctx, customer, models.ProcessPaymentRequest{BookingID: "bk-1", Amount: 120, PaymentMethod: models.MethodPayPal})
	assert.True(t, utils.IsKind(err, utils.KindInvalidState))

	receipt, err = f.svc.Capture(ctx, customer, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, receipt.Payment.Status)
	assert.Equal(t, "CAPTURE-1", receipt.Payment.TransactionID)
	assert.Len(t, f.dispatcher.For("prov-1"), 1)

	_, err = f.svc.Capture(ctx, customer, "bk-1")
	assert.True(t, utils.IsKind(err, utils.KindInvalidState))
}

func TestRefundFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Refund(ctx, customer, models.RefundPaymentRequest{BookingID: "bk-1"})
	assert.True(t, utils.IsKind(err, utils.KindInvalidState))

	_, err = f.svc.Process(ctx, customer, cardPayment(120))
	require.NoError(t, err)

	_, err = f.svc.Refund(ctx, stranger, models.RefundPaymentRequest{BookingID: "bk-1"})
	assert.True(t, utils.IsKind(err, utils.KindForbidden))

	_, err = f.svc.Refund(ctx, customer, models.RefundPaymentRequest{BookingID: "bk-1", Amount: 500})
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	f.stripe.refund = &models.RefundResult{Success: true, RefundID: "re_1", Status: "succeeded"}
	receipt, err := f.svc.Refund(ctx, provider, models.RefundPaymentRequest{BookingID: "bk-1"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentRefunded, receipt.Payment.Status)
	assert.Equal(t, "re_1", receipt.Payment.RefundID)
	assert.Equal(t, 120.0, receipt.Payment.RefundedAmount)

	require.Len(t, f.stripe.refunds, 1)
	assert.Equal(t, "pi_1", f.stripe.refunds[0].PaymentID)
	assert.Equal(t, "Customer requested refund", f.stripe.refunds[0].Reason)

	sent := f.dispatcher.For("cust-1")
	require.Len(t, sent, 1)
	assert.Equal(t, "Refund Processed", sent[0].Title)
}

func TestRefundRejectedKeepsPaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Process(ctx, customer, cardPayment(120))
	require.NoError(t, err)

	f.stripe.refund = &models.RefundResult{Success: false, Status: "failed", Message: "charge disputed"}
	_, err = f.svc.Refund(ctx, customer, models.RefundPaymentRequest{BookingID: "bk-1", Amount: 50})
	assert.True(t, utils.IsKind(err, utils.KindUpstream))

	b, err := f.bookings.GetByID(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, b.Payment.Status)
}

func TestMissingGateway(t *testing.T) {
	f := newFixture(t)
	delete(f.svc.Gateways, "paypal")

	_, err := f.svc.Process(context.Background(), customer, models.ProcessPaymentRequest{BookingID: "bk-1", Amount: 120, PaymentMethod: models.MethodPayPal})
	assert.True(t, utils.IsKind(err, utils.KindUpstream))

	_, err = f.svc.Status(context.Background(), "ORDER-1", models.MethodPayPal)
	assert.True(t, utils.IsKind(err, utils.KindUpstream))
}

func TestHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.bookings.Create(ctx, &models.Booking{
		ID: "bk-2", BookingNumber: "BK-0002", CustomerID: "cust-2", ProviderID: "prov-1",
		Status: models.StatusCompleted, TotalAmount: 40,
		Payment: models.Payment{Status: models.PaymentPaid, TransactionID: "pi_9", Amount: 40},
	}))
	_, err := f.svc.Process(ctx, customer, cardPayment(120))
	require.NoError(t, err)

	records, total, err := f.svc.History(ctx, customer, models.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, records, 1)
	assert.Equal(t, "BK-0001", records[0].BookingNumber)

	_, total, err = f.svc.History(ctx, provider, models.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}
