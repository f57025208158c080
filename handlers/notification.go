package handlers

import (
	"net/http"
	"strconv"

	"easybook/services/notification"
	"easybook/utils"

	"github.com/gin-gonic/gin"
)

// NotificationHandler serves the inbox under /api/notifications.
type NotificationHandler struct {
	Notifications notification.NotificationService
}

func NewNotificationHandler(svc notification.NotificationService) *NotificationHandler {
	return &NotificationHandler{Notifications: svc}
}

func (h *NotificationHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	userID := actorFrom(c).ID
	unreadOnly, _ := strconv.ParseBool(c.Query("unreadOnly"))
	page := pageFrom(c, 20, 100)

	items, total, err := h.Notifications.List(ctx, userID, unreadOnly, page)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	unread, err := h.Notifications.CountUnread(ctx, userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "", gin.H{
		"notifications": items,
		"unreadCount":   unread,
		"pagination":    paginationFor(page, total),
	})
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	if err := h.Notifications.MarkAsRead(c.Request.Context(), actorFrom(c).ID, c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Notification marked as read", nil)
}

func (h *NotificationHandler) Send(c *gin.Context) {
	var req notification.SendRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.Notifications.Send(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if !result.Success {
		utils.RespondError(c, utils.NewUpstreamError("Failed to send notification", nil))
		return
	}
	utils.RespondOK(c, http.StatusOK, "Notification sent successfully", result)
}

func (h *NotificationHandler) SendBulk(c *gin.Context) {
	var req notification.BulkRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.Notifications.SendBulk(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Bulk notification process completed", result)
}
