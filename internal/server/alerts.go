package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	alertdomain "github.com/smallbiznis/stockroom/internal/alert/domain"
)

// CheckInventoryAlerts sweeps every product at or below the threshold and
// returns the summary as-is.
func (s *Server) CheckInventoryAlerts(c *gin.Context) {
	result, err := s.alertSvc.CheckAll(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) ListNotificationLogs(c *gin.Context) {
	limit, err := parseOptionalInt(c.Query("limit"))
	if err != nil {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
		return
	}
	n := alertdomain.DefaultLogLimit
	if limit != nil && *limit > 0 {
		n = *limit
	}

	logs, err := s.alertSvc.ListLogs(c.Request.Context(), n)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": logs})
}
