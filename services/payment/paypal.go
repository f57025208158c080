package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"easybook/models"
	"easybook/utils"

	"github.com/cenkalti/backoff/v4"
	"github.com/plutov/paypal/v4"
	"go.uber.org/zap"
)

// PayPalGateway talks to the PayPal Orders v2 REST API. Charges create an order the
// payer approves through ApprovalURL; Capture then settles it.
type PayPalGateway struct {
	client  *paypal.Client
	retries int
}

func NewPayPalGateway(clientID, secret, baseURL string, timeout time.Duration, retries int) *PayPalGateway {
	g := &PayPalGateway{retries: retries}
	client, err := paypal.NewClient(clientID, secret, strings.TrimRight(baseURL, "/"))
	if err != nil {
		utils.GetLogger().Error("paypal: client initialization failed", zap.Error(err))
		return g
	}
	client.Client = &http.Client{Timeout: timeout}
	g.client = client
	return g
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

func parseAmount(a *paypal.PurchaseUnitAmount) (float64, string) {
	if a == nil {
		return 0, ""
	}
	v, _ := strconv.ParseFloat(a.Value, 64)
	return v, a.Currency
}

func statusCode(err error) int {
	var resp *paypal.ErrorResponse
	if errors.As(err, &resp) && resp.Response != nil {
		return resp.Response.StatusCode
	}
	return 0
}

func retryable(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return !errors.Is(err, context.Canceled)
	}
	code := statusCode(err)
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// send issues one authenticated call. A PayPal-Request-Id makes POSTs safe to
// retry, so only GETs and keyed POSTs are retried.
func (g *PayPalGateway) send(ctx context.Context, method, path, requestID string, body, out interface{}) error {
	if g.client == nil {
		return utils.NewUpstreamError("PayPal is not configured", nil)
	}
	retries := 0
	if method == http.MethodGet || requestID != "" {
		retries = max(g.retries, 0)
	}
	policy := backoff.NewExponentialBackOff(backoff.WithInitialInterval(200 * time.Millisecond))
	err := backoff.Retry(func() error {
		req, err := g.client.NewRequest(ctx, method, g.client.APIBase+path, body)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Prefer", "return=representation")
		if requestID != "" {
			req.Header.Set("PayPal-Request-Id", requestID)
		}
		if err := g.client.SendWithAuth(req, out); err != nil {
			if !retryable(err) {
				return backoff.Permanent(err)
			}
			utils.GetLogger().Debug("Retrying PayPal request", zap.String("path", path), zap.Error(err))
			return err
		}
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(retries)), ctx))
	if err != nil {
		return fmt.Errorf("paypal: %w", err)
	}
	return nil
}

func declineMessage(err error) string {
	var resp *paypal.ErrorResponse
	if errors.As(err, &resp) && resp.Message != "" {
		return resp.Message
	}
	return err.Error()
}

type createOrder struct {
	Intent        string                       `json:"intent"`
	PurchaseUnits []paypal.PurchaseUnitRequest `json:"purchase_units"`
}

func (g *PayPalGateway) Charge(ctx context.Context, req models.ChargeRequest) (*models.ChargeResult, error) {
	body := createOrder{
		Intent: "CAPTURE",
		PurchaseUnits: []paypal.PurchaseUnitRequest{{
			ReferenceID: req.BookingID,
			InvoiceID:   req.BookingNumber,
			Description: req.Description,
			Amount:      &paypal.PurchaseUnitAmount{Currency: strings.ToUpper(req.Currency), Value: formatAmount(req.Amount)},
		}},
	}
	var order paypal.Order
	if err := g.send(ctx, http.MethodPost, "/v2/checkout/orders", req.IdempotencyKey, body, &order); err != nil {
		if statusCode(err) == http.StatusUnprocessableEntity {
			return &models.ChargeResult{Success: false, Status: models.PaymentFailed, Message: declineMessage(err)}, nil
		}
		return nil, err
	}

	result := &models.ChargeResult{Success: true, PaymentID: order.ID, Status: models.PaymentPending}
	for _, link := range order.Links {
		if link.Rel == "approve" || link.Rel == "payer-action" {
			result.ApprovalURL = link.Href
		}
	}
	return result, nil
}

// Capture settles an approved order. The returned PaymentID is the capture id used for refunds.
func (g *PayPalGateway) Capture(ctx context.Context, orderID string) (*models.ChargeResult, error) {
	var order paypal.CaptureOrderResponse
	path := "/v2/checkout/orders/" + orderID + "/capture"
	if err := g.send(ctx, http.MethodPost, path, "capture-"+orderID, paypal.CaptureOrderRequest{}, &order); err != nil {
		if statusCode(err) == http.StatusUnprocessableEntity {
			return &models.ChargeResult{Success: false, PaymentID: orderID, Status: models.PaymentPending, Message: declineMessage(err)}, nil
		}
		return nil, err
	}
	for _, unit := range order.PurchaseUnits {
		if unit.Payments == nil {
			continue
		}
		for _, c := range unit.Payments.Captures {
			if c.Status == "COMPLETED" {
				return &models.ChargeResult{Success: true, PaymentID: c.ID, Status: models.PaymentPaid}, nil
			}
		}
	}
	return &models.ChargeResult{Success: false, PaymentID: orderID, Status: models.PaymentPending, Message: "order status " + order.Status}, nil
}

func (g *PayPalGateway) Refund(ctx context.Context, req models.RefundRequest) (*models.RefundResult, error) {
	body := paypal.RefundCaptureRequest{
		Amount:      &paypal.Money{Currency: strings.ToUpper(req.Currency), Value: formatAmount(req.Amount)},
		NoteToPayer: req.Reason,
	}
	var refund paypal.RefundResponse
	if err := g.send(ctx, http.MethodPost, "/v2/payments/captures/"+req.PaymentID+"/refund", req.IdempotencyKey, body, &refund); err != nil {
		return nil, err
	}
	ok := refund.Status == "COMPLETED" || refund.Status == "PENDING"
	return &models.RefundResult{Success: ok, RefundID: refund.ID, Status: strings.ToLower(refund.Status)}, nil
}

// Status looks the id up as a capture first and as an order second.
func (g *PayPalGateway) Status(ctx context.Context, paymentID string) (*models.PaymentStatusResult, error) {
	var capture paypal.CaptureAmount
	err := g.send(ctx, http.MethodGet, "/v2/payments/captures/"+paymentID, "", nil, &capture)
	if err == nil {
		amount, currency := parseAmount(capture.Amount)
		return &models.PaymentStatusResult{
			PaymentID: capture.ID,
			Status:    strings.ToLower(capture.Status),
			Amount:    amount,
			Currency:  currency,
		}, nil
	}
	if statusCode(err) != http.StatusNotFound {
		return nil, err
	}

	var order paypal.Order
	if err := g.send(ctx, http.MethodGet, "/v2/checkout/orders/"+paymentID, "", nil, &order); err != nil {
		return nil, err
	}
	out := &models.PaymentStatusResult{PaymentID: order.ID, Status: strings.ToLower(order.Status)}
	if len(order.PurchaseUnits) > 0 {
		out.Amount, out.Currency = parseAmount(order.PurchaseUnits[0].Amount)
	}
	return out, nil
}
