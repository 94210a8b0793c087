package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"macro-backtest/internal/api/models"
)

// ErrorHandler recovers from handler panics, logs them and answers with the
// standard error envelope.
func ErrorHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Printf("[API] Recovered from panic on %s %s: %v",
			c.Request.Method, c.Request.URL.Path, recovered)

		message := "An unexpected error occurred"
		if s, ok := recovered.(string); ok {
			message = s
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: message,
			},
		})
		c.Abort()
	})
}
