package handlers

import (
	"net/http"

	"easybook/utils"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct{}

// Health reports the last dependency snapshot. It answers 503 when a check failed.
func (HealthHandler) Health(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"success":   status.Healthy,
		"message":   "EasyBook API",
		"checks":    status.Checks,
		"checkedAt": status.CheckedAt,
	})
}
