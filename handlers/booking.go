package handlers

import (
	"net/http"

	"easybook/models"
	"easybook/services/booking"
	"easybook/utils"

	"github.com/gin-gonic/gin"
)

// BookingHandler serves /api/bookings.
type BookingHandler struct {
	Bookings booking.BookingService
}

func NewBookingHandler(svc booking.BookingService) *BookingHandler {
	return &BookingHandler{Bookings: svc}
}

func (h *BookingHandler) respond(c *gin.Context, status int, message string, b *models.Booking, err error) {
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, status, message, gin.H{"booking": b})
}

func (h *BookingHandler) Create(c *gin.Context) {
	var req models.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Bookings.Create(c.Request.Context(), actorFrom(c).ID, req)
	h.respond(c, http.StatusCreated, "Booking created successfully", b, err)
}

func (h *BookingHandler) Accept(c *gin.Context) {
	var req models.AcceptBookingRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	b, err := h.Bookings.Accept(c.Request.Context(), actorFrom(c).ID, c.Param("id"), req)
	h.respond(c, http.StatusOK, "Booking accepted successfully", b, err)
}

func (h *BookingHandler) Decline(c *gin.Context) {
	var req models.DeclineBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Bookings.Decline(c.Request.Context(), actorFrom(c).ID, c.Param("id"), req)
	h.respond(c, http.StatusOK, "Booking declined", b, err)
}

func (h *BookingHandler) Start(c *gin.Context) {
	b, err := h.Bookings.Start(c.Request.Context(), actorFrom(c).ID, c.Param("id"))
	h.respond(c, http.StatusOK, "Service started", b, err)
}

func (h *BookingHandler) Complete(c *gin.Context) {
	var req models.CompleteBookingRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	b, err := h.Bookings.Complete(c.Request.Context(), actorFrom(c).ID, c.Param("id"), req)
	h.respond(c, http.StatusOK, "Service completed successfully", b, err)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	var req models.CancelBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Bookings.Cancel(c.Request.Context(), actorFrom(c), c.Param("id"), req.Reason)
	h.respond(c, http.StatusOK, "Booking cancelled successfully", b, err)
}

func (h *BookingHandler) Get(c *gin.Context) {
	b, err := h.Bookings.Get(c.Request.Context(), actorFrom(c), c.Param("id"))
	h.respond(c, http.StatusOK, "", b, err)
}

func (h *BookingHandler) Review(c *gin.Context) {
	var req models.ReviewBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Bookings.Review(c.Request.Context(), actorFrom(c).ID, c.Param("id"), req)
	h.respond(c, http.StatusOK, "Review submitted successfully", b, err)
}

// List returns the caller's bookings; admins see all of them.
func (h *BookingHandler) List(c *gin.Context) {
	h.list(c, 50, false)
}

// AdminList backs /api/admin/bookings with a date range filter.
func (h *BookingHandler) AdminList(c *gin.Context) {
	h.list(c, 100, true)
}

func (h *BookingHandler) list(c *gin.Context, max int, withRange bool) {
	filter := models.BookingFilter{Status: models.BookingStatus(c.Query("status"))}
	if withRange && (c.Query("startDate") != "" || c.Query("endDate") != "") {
		r, err := dateRangeFrom(c, timeNow(), 0)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		filter.Created = r
	}
	page := pageFrom(c, 10, max)
	bookings, total, err := h.Bookings.List(c.Request.Context(), actorFrom(c), filter, page)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	respondPage(c, "bookings", bookings, page, total)
}
