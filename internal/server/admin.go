package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/stockroom/internal/auth/domain"
	obslogger "github.com/smallbiznis/stockroom/internal/observability/logger"
)

type sendVerificationRequest struct {
	Email string `json:"email"`
}

func (s *Server) ListUsers(c *gin.Context) {
	users, err := s.authsvc.ListUsers(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

func (s *Server) CreateUser(c *gin.Context) {
	var req authdomain.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	user, err := s.authsvc.CreateUser(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": user})
}

func (s *Server) AdminChangePassword(c *gin.Context) {
	var req authdomain.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.authsvc.ChangePassword(c.Request.Context(), req); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SendVerification mails a one-time code for the target email to the
// configured admin address.
func (s *Server) SendVerification(c *gin.Context) {
	var req sendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	target := strings.TrimSpace(req.Email)

	if !allowOrAbort(c, s.limiter.AllowVerification(c.Request.Context(), target)) {
		return
	}

	if err := s.codes.Send(c.Request.Context(), target); err != nil {
		AbortWithError(c, err)
		return
	}

	obslogger.WithContext(c.Request.Context(), s.log).Info("verification code sent")
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"sent": true}})
}
