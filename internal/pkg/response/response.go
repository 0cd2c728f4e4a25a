package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Success writes {"success": true} merged with the given fields.
func Success(c *gin.Context, fields gin.H) {
	out := gin.H{"success": true}
	for key, value := range fields {
		out[key] = value
	}
	c.JSON(http.StatusOK, out)
}

func Error(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}
