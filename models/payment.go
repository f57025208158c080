package models

import "time"

// PaymentStatus is the only payment-state vocabulary; it lives on Booking.Payment.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentFailed   PaymentStatus = "failed"
)

type PaymentMethod string

const (
	MethodCreditCard PaymentMethod = "credit_card"
	MethodDebitCard  PaymentMethod = "debit_card"
	MethodStripe     PaymentMethod = "stripe"
	MethodPayPal     PaymentMethod = "paypal"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodCreditCard, MethodDebitCard, MethodStripe, MethodPayPal:
		return true
	}
	return false
}

// Gateway names the adapter that handles this method.
func (m PaymentMethod) Gateway() string {
	if m == MethodPayPal {
		return "paypal"
	}
	return "stripe"
}

// Payment is the payment sub-record owned by a booking.
type Payment struct {
	Status         PaymentStatus `bson:"status" json:"status"`
	Method         PaymentMethod `bson:"method,omitempty" json:"method,omitempty"`
	TransactionID  string        `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	Amount         float64       `bson:"amount,omitempty" json:"amount,omitempty"`
	PaidAt         *time.Time    `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	RefundID       string        `bson:"refundId,omitempty" json:"refundId,omitempty"`
	RefundedAmount float64       `bson:"refundedAmount,omitempty" json:"refundedAmount,omitempty"`
	RefundedAt     *time.Time    `bson:"refundedAt,omitempty" json:"refundedAt,omitempty"`
	FailureReason  string        `bson:"failureReason,omitempty" json:"failureReason,omitempty"`
}

// ChargeRequest is what the payment adapters need to take money.
type ChargeRequest struct {
	BookingID       string
	BookingNumber   string
	Amount          float64
	Currency        string
	Method          PaymentMethod
	PaymentMethodID string
	CustomerEmail   string
	Description     string
	IdempotencyKey  string
}

// ChargeResult mirrors the adapter contract {success, paymentId, status}.
// Status is PaymentPaid when the money was captured and PaymentPending when the
// payer still has to approve (PayPal) or authenticate (3-D Secure).
type ChargeResult struct {
	Success     bool          `json:"success"`
	PaymentID   string        `json:"paymentId"`
	Status      PaymentStatus `json:"status"`
	Message     string        `json:"message,omitempty"`
	ApprovalURL string        `json:"approvalUrl,omitempty"`
}

// RefundRequest identifies a previous charge to reverse.
type RefundRequest struct {
	PaymentID      string
	Amount         float64
	Reason         string
	Currency       string
	IdempotencyKey string
}

// RefundResult mirrors the adapter contract {success, refundId, status}.
type RefundResult struct {
	Success  bool   `json:"success"`
	RefundID string `json:"refundId"`
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
}

// PaymentStatusResult is a gateway-side view of a payment.
type PaymentStatusResult struct {
	PaymentID string  `json:"paymentId"`
	Status    string  `json:"status"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
}
