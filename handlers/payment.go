package handlers

import (
	"net/http"

	"easybook/models"
	"easybook/services/payment"
	"easybook/utils"

	"github.com/gin-gonic/gin"
)

// PaymentHandler serves /api/payments.
type PaymentHandler struct {
	Payments payment.PaymentService
}

func NewPaymentHandler(svc payment.PaymentService) *PaymentHandler {
	return &PaymentHandler{Payments: svc}
}

func (h *PaymentHandler) Process(c *gin.Context) {
	var req models.ProcessPaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	receipt, err := h.Payments.Process(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	message := "Payment processed successfully"
	if receipt.Payment.Status == models.PaymentPending {
		message = "Payment awaiting approval"
	}
	utils.RespondOK(c, http.StatusOK, message, receipt)
}

// Capture completes a payment the payer has approved with the gateway.
func (h *PaymentHandler) Capture(c *gin.Context) {
	var req struct {
		BookingID string `json:"bookingId"`
	}
	if !bindJSON(c, &req) {
		return
	}
	receipt, err := h.Payments.Capture(c.Request.Context(), actorFrom(c), req.BookingID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Payment captured successfully", receipt)
}

func (h *PaymentHandler) Refund(c *gin.Context) {
	var req models.RefundPaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	receipt, err := h.Payments.Refund(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Refund processed successfully", receipt)
}

func (h *PaymentHandler) Status(c *gin.Context) {
	status, err := h.Payments.Status(c.Request.Context(), c.Param("paymentId"), models.PaymentMethod(c.Query("method")))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "", status)
}

func (h *PaymentHandler) History(c *gin.Context) {
	page := pageFrom(c, 10, 50)
	records, total, err := h.Payments.History(c.Request.Context(), actorFrom(c), page)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	respondPage(c, "payments", records, page, total)
}
