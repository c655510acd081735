package auth

import "github.com/gin-gonic/gin"

const userIDHeader = "X-User-ID"

// UserID returns the acting user for audit trails. Requests arriving
// without the header (internal jobs, probes) are attributed to "system".
func UserID(c *gin.Context) string {
	if v := c.GetHeader(userIDHeader); v != "" {
		return v
	}
	return "system"
}
