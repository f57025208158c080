package handlers

import (
	"net/http"
	"strconv"
	"time"

	"easybook/models"
	"easybook/services/provider"
	"easybook/services/user"
	"easybook/utils"

	"github.com/gin-gonic/gin"
)

// ProviderHandler serves /api/providers for the signed-in provider.
type ProviderHandler struct {
	Providers provider.ProviderService
}

func NewProviderHandler(providers provider.ProviderService) *ProviderHandler {
	return &ProviderHandler{Providers: providers}
}

func (h *ProviderHandler) GetProfile(c *gin.Context) {
	usr, err := h.Providers.GetProfile(c.Request.Context(), actorFrom(c).ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "", gin.H{"provider": usr})
}

func (h *ProviderHandler) UpdateProfile(c *gin.Context) {
	var req models.ProviderProfileUpdate
	if !bindJSON(c, &req) {
		return
	}
	usr, err := h.Providers.UpdateProfile(c.Request.Context(), actorFrom(c).ID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Profile updated successfully", gin.H{"provider": usr})
}

func (h *ProviderHandler) UpdateWorkingHours(c *gin.Context) {
	var req struct {
		WorkingHours map[string]models.DayHours `json:"workingHours"`
	}
	if !bindJSON(c, &req) {
		return
	}
	usr, err := h.Providers.UpdateWorkingHours(c.Request.Context(), actorFrom(c).ID, req.WorkingHours)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Working hours updated successfully", gin.H{"workingHours": usr.ProviderInfo.WorkingHours})
}

func (h *ProviderHandler) Dashboard(c *gin.Context) {
	dash, err := h.Providers.Dashboard(c.Request.Context(), actorFrom(c).ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "", dash)
}

// Earnings reads period and an optional startDate/endDate. Without them the
// service reports the last 30 days by month.
func (h *ProviderHandler) Earnings(c *gin.Context) {
	var (
		bucket    models.Bucket
		dateRange models.DateRange
		err       error
	)
	if c.Query("period") != "" {
		if bucket, err = bucketFrom(c); err != nil {
			utils.RespondError(c, err)
			return
		}
	}
	if c.Query("startDate") != "" || c.Query("endDate") != "" {
		if dateRange, err = dateRangeFrom(c, timeNow(), 0); err != nil {
			utils.RespondError(c, err)
			return
		}
	}
	earnings, err := h.Providers.Earnings(c.Request.Context(), actorFrom(c).ID, dateRange, bucket)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "", earnings)
}

// GetAvailability reads optional startDate and endDate (inclusive).
func (h *ProviderHandler) GetAvailability(c *gin.Context) {
	var dates models.DateRange
	if c.Query("startDate") != "" || c.Query("endDate") != "" {
		var err error
		if dates, err = dateRangeFrom(c, timeNow(), 0); err != nil {
			utils.RespondError(c, err)
			return
		}
		if c.Query("endDate") == "" {
			dates.To = time.Time{}
		}
	}
	entries, err := h.Providers.GetAvailability(c.Request.Context(), actorFrom(c).ID, dates)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "", gin.H{"availability": entries})
}

func (h *ProviderHandler) SetAvailability(c *gin.Context) {
	var req models.AvailabilityRequest
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.Providers.SetAvailability(c.Request.Context(), actorFrom(c).ID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Availability updated successfully", gin.H{"availability": entry})
}

func (h *ProviderHandler) Reviews(c *gin.Context) {
	rating := 0
	if raw := c.Query("rating"); raw != "" {
		var err error
		if rating, err = strconv.Atoi(raw); err != nil || rating < 1 || rating > 5 {
			utils.RespondError(c, utils.NewValidationError("Validation failed", utils.FieldError{Field: "rating", Message: "rating must be between 1 and 5"}))
			return
		}
	}
	reviews, err := h.Providers.Reviews(c.Request.Context(), actorFrom(c).ID, rating, pageFrom(c, 10, 50))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "", reviews)
}

// CustomerHandler serves /api/customers for the signed-in customer.
type CustomerHandler struct {
	Users user.UserService
}

func NewCustomerHandler(users user.UserService) *CustomerHandler {
	return &CustomerHandler{Users: users}
}

func (h *CustomerHandler) GetProfile(c *gin.Context) {
	usr, err := h.Users.GetUserByID(c.Request.Context(), actorFrom(c).ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "", gin.H{"customer": usr})
}

func (h *CustomerHandler) UpdateProfile(c *gin.Context) {
	var req models.CustomerProfileUpdate
	if !bindJSON(c, &req) {
		return
	}
	usr, err := h.Users.UpdateCustomerProfile(c.Request.Context(), actorFrom(c).ID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Profile updated successfully", gin.H{"customer": usr})
}

func (h *CustomerHandler) Dashboard(c *gin.Context) {
	dash, err := h.Users.CustomerDashboard(c.Request.Context(), actorFrom(c).ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "", dash)
}

func (h *CustomerHandler) BookingHistory(c *gin.Context) {
	page := pageFrom(c, 20, 50)
	bookings, total, err := h.Users.BookingHistory(c.Request.Context(), actorFrom(c).ID, models.BookingStatus(c.Query("status")), page)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	respondPage(c, "bookings", bookings, page, total)
}

func (h *CustomerHandler) Favorites(c *gin.Context) {
	favs, err := h.Users.Favorites(c.Request.Context(), actorFrom(c).ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "", favs)
}
