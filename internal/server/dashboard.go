package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	dashboarddomain "github.com/smallbiznis/stockroom/internal/dashboard/domain"
)

func (s *Server) GetStats(c *gin.Context) {
	day, err := parseOptionalTime(c.Query("date"), false)
	if err != nil {
		AbortWithError(c, newValidationError("date", "invalid_date", "invalid date"))
		return
	}

	stats, err := s.dashboardSvc.Stats(c.Request.Context(), day)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stats})
}

func (s *Server) ListRecords(c *gin.Context) {
	start, err := parseOptionalTime(c.Query("startDate"), false)
	if err != nil {
		AbortWithError(c, newValidationError("startDate", "invalid_start_date", "invalid start date"))
		return
	}
	end, err := parseOptionalTime(c.Query("endDate"), true)
	if err != nil {
		AbortWithError(c, newValidationError("endDate", "invalid_end_date", "invalid end date"))
		return
	}

	records, err := s.dashboardSvc.Records(c.Request.Context(), dashboarddomain.RecordsRequest{
		StartDate: start,
		EndDate:   end,
		Search:    strings.TrimSpace(c.Query("search")),
		Type:      strings.TrimSpace(c.Query("type")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}
