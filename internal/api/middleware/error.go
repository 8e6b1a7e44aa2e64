package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"grid-backtest/internal/api/models"
)

// ErrorHandler recovers from panics and turns them into the structured
// error envelope every other failure path uses.
func ErrorHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		msg := "An unexpected error occurred"
		if s, ok := recovered.(string); ok {
			msg = s
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: msg,
			},
		})
	})
}
