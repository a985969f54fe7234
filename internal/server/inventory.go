package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	inventorydomain "github.com/smallbiznis/stockroom/internal/inventory/domain"
)

func (s *Server) ListInventory(c *gin.Context) {
	var query struct {
		Search string `form:"search"`
		Series string `form:"series"`
		Status string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.inventorySvc.List(c.Request.Context(), inventorydomain.ListRequest{
		Search: strings.TrimSpace(query.Search),
		Series: strings.TrimSpace(query.Series),
		Status: strings.TrimSpace(query.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// UpsertInventory sets a product's stock level. Dropping to the alert
// threshold triggers a low-stock email after the write commits.
func (s *Server) UpsertInventory(c *gin.Context) {
	var req inventorydomain.UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.inventorySvc.Upsert(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
