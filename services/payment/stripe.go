package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"easybook/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeGateway charges cards through PaymentIntents.
type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(secretKey string, timeout time.Duration, retries int) *StripeGateway {
	backend := func(kind stripe.SupportedBackend) stripe.Backend {
		return stripe.GetBackendWithConfig(kind, &stripe.BackendConfig{
			HTTPClient:        &http.Client{Timeout: timeout},
			MaxNetworkRetries: stripe.Int64(int64(retries)),
		})
	}
	api := client.New(secretKey, &stripe.Backends{
		API:     backend(stripe.APIBackend),
		Connect: backend(stripe.ConnectBackend),
		Uploads: backend(stripe.UploadsBackend),
	})
	return &StripeGateway{api: api}
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// chargeStatus maps a PaymentIntent status onto the booking payment vocabulary.
func chargeStatus(status stripe.PaymentIntentStatus) (models.PaymentStatus, bool) {
	switch status {
	case stripe.PaymentIntentStatusSucceeded:
		return models.PaymentPaid, true
	case stripe.PaymentIntentStatusProcessing, stripe.PaymentIntentStatusRequiresAction, stripe.PaymentIntentStatusRequiresCapture:
		return models.PaymentPending, true
	default:
		return models.PaymentFailed, false
	}
}

// declined turns a card error into an unsuccessful result; other errors are returned as is.
func declined(err error) (*models.ChargeResult, error) {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
		return &models.ChargeResult{Success: false, Status: models.PaymentFailed, Message: stripeErr.Msg}, nil
	}
	return nil, fmt.Errorf("stripe: %w", err)
}

func (g *StripeGateway) Charge(ctx context.Context, req models.ChargeRequest) (*models.ChargeResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(toCents(req.Amount)),
		Currency:      stripe.String(req.Currency),
		Description:   stripe.String(req.Description),
		PaymentMethod: stripe.String(req.PaymentMethodID),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	if req.CustomerEmail != "" {
		params.ReceiptEmail = stripe.String(req.CustomerEmail)
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.IdempotencyKey)
	params.AddMetadata("bookingId", req.BookingID)
	params.AddMetadata("bookingNumber", req.BookingNumber)

	intent, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return declined(err)
	}
	status, ok := chargeStatus(intent.Status)
	result := &models.ChargeResult{Success: ok, PaymentID: intent.ID, Status: status}
	if !ok && intent.LastPaymentError != nil {
		result.Message = intent.LastPaymentError.Msg
	}
	return result, nil
}

// Capture settles an intent that needed customer authentication or manual capture.
func (g *StripeGateway) Capture(ctx context.Context, paymentID string) (*models.ChargeResult, error) {
	get := &stripe.PaymentIntentParams{}
	get.Context = ctx
	intent, err := g.api.PaymentIntents.Get(paymentID, get)
	if err != nil {
		return nil, fmt.Errorf("stripe: %w", err)
	}
	if intent.Status == stripe.PaymentIntentStatusRequiresCapture {
		capture := &stripe.PaymentIntentCaptureParams{}
		capture.Context = ctx
		capture.SetIdempotencyKey("capture-" + paymentID)
		if intent, err = g.api.PaymentIntents.Capture(paymentID, capture); err != nil {
			return declined(err)
		}
	}
	status, ok := chargeStatus(intent.Status)
	return &models.ChargeResult{Success: ok, PaymentID: intent.ID, Status: status}, nil
}

func (g *StripeGateway) Refund(ctx context.Context, req models.RefundRequest) (*models.RefundResult, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(req.PaymentID),
		Amount:        stripe.Int64(toCents(req.Amount)),
		Reason:        stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.IdempotencyKey)
	params.AddMetadata("reason", req.Reason)

	refund, err := g.api.Refunds.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: %w", err)
	}
	ok := refund.Status == stripe.RefundStatusSucceeded || refund.Status == stripe.RefundStatusPending
	return &models.RefundResult{Success: ok, RefundID: refund.ID, Status: string(refund.Status)}, nil
}

func (g *StripeGateway) Status(ctx context.Context, paymentID string) (*models.PaymentStatusResult, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	intent, err := g.api.PaymentIntents.Get(paymentID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: %w", err)
	}
	return &models.PaymentStatusResult{
		PaymentID: intent.ID,
		Status:    string(intent.Status),
		Amount:    float64(intent.Amount) / 100,
		Currency:  string(intent.Currency),
	}, nil
}
