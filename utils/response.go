package utils

import (
	"github.com/gin-gonic/gin"
)

// RespondData renders the success envelope used by every endpoint:
// {"success": true, "data": ...}
func RespondData(c *gin.Context, status int, data interface{}) {
	c.PureJSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// RespondError renders the failure envelope:
// {"success": false, "error": {"code": ..., "message": ...}}
func RespondError(c *gin.Context, status int, code, message string) {
	c.PureJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
