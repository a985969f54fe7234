package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	recipientdomain "github.com/smallbiznis/stockroom/internal/recipient/domain"
)

func (s *Server) ListRecipients(c *gin.Context) {
	resp, err := s.recipientSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateRecipient(c *gin.Context) {
	var req recipientdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.recipientSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) SetRecipientActive(c *gin.Context) {
	var req recipientdomain.SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.recipientSvc.SetActive(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteRecipient(c *gin.Context) {
	if err := s.recipientSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Query("id"))); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
