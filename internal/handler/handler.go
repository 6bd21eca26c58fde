package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carepulse/hms-api/pkg/errors"
)

// Error writes a failure envelope, mapping AppError codes to HTTP statuses.
func Error(c *gin.Context, err error) {
	if appErr, ok := errors.AsAppError(err); ok {
		c.JSON(appErr.HTTPStatus(), gin.H{"status": "error", "message": appErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
}

// Success writes the success envelope used across all handlers.
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"status": "success", "data": data})
}
