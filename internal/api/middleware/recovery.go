package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/timmy/clueso/internal/domain"
	"github.com/timmy/clueso/internal/logger"
)

// Recovery turns handler panics into a JSON 500.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.CtxError(c.Request.Context(), "Server error: %v", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal server error",
			Details: fmt.Sprint(recovered),
		})
	})
}
