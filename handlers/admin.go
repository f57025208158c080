package handlers

import (
	"net/http"
	"strings"

	"easybook/models"
	"easybook/services/analytics"
	"easybook/services/user"
	"easybook/utils"

	"github.com/gin-gonic/gin"
)

// analyticsDefaultDays is the window used when no startDate is given.
const analyticsDefaultDays = 30

// AdminHandler serves /api/admin.
type AdminHandler struct {
	AnalyticsSvc analytics.AnalyticsService
	Users        user.UserService
}

func NewAdminHandler(analyticsSvc analytics.AnalyticsService, users user.UserService) *AdminHandler {
	return &AdminHandler{AnalyticsSvc: analyticsSvc, Users: users}
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.AnalyticsSvc.Dashboard(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "", stats)
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	filter := models.UserFilter{
		Role:   models.Role(c.Query("role")),
		Status: models.AccountStatus(c.Query("status")),
		Search: strings.TrimSpace(c.Query("search")),
	}
	page := pageFrom(c, 10, 100)
	users, total, err := h.Users.ListUsers(c.Request.Context(), filter, page)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	respondPage(c, "users", users, page, total)
}

func (h *AdminHandler) SetUserStatus(c *gin.Context) {
	var req struct {
		Status models.AccountStatus `json:"status"`
		Reason string               `json:"reason"`
	}
	if !bindJSON(c, &req) {
		return
	}
	usr, err := h.Users.SetStatus(c.Request.Context(), c.Param("id"), req.Status, req.Reason)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "User status updated successfully", gin.H{"user": usr})
}

func (h *AdminHandler) SetUserRole(c *gin.Context) {
	var req struct {
		Role models.Role `json:"role"`
	}
	if !bindJSON(c, &req) {
		return
	}
	usr, err := h.Users.SetRole(c.Request.Context(), actorFrom(c), c.Param("id"), req.Role)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "User role updated successfully", gin.H{"user": usr})
}

// Analytics returns the user, booking, category and revenue sections.
func (h *AdminHandler) Analytics(c *gin.Context) {
	bucket, err := bucketFrom(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	dateRange, err := dateRangeFrom(c, timeNow(), analyticsDefaultDays)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	overview, err := h.AnalyticsSvc.Overview(c.Request.Context(), dateRange, bucket)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "", overview)
}

func (h *AdminHandler) Performance(c *gin.Context) {
	dateRange, err := dateRangeFrom(c, timeNow(), analyticsDefaultDays)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	report, err := h.AnalyticsSvc.Performance(c.Request.Context(), dateRange)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "", report)
}

func (h *AdminHandler) Reviews(c *gin.Context) {
	dateRange, err := dateRangeFrom(c, timeNow(), analyticsDefaultDays)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	report, err := h.AnalyticsSvc.ReviewAnalytics(c.Request.Context(), dateRange)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "", report)
}
