package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// forwardedHeaders are consulted in order; the first parseable address wins.
var forwardedHeaders = []string{"X-Forwarded-For", "X-Real-IP"}

// clientIP keys the rate limiter and request log. Proxies append to
// X-Forwarded-For, so only its first entry names the caller.
func clientIP(c *gin.Context) string {
	for _, h := range forwardedHeaders {
		first, _, _ := strings.Cut(c.GetHeader(h), ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	addr := c.Request.RemoteAddr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
