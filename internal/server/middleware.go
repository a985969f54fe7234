package server

import (
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/stockroom/internal/auth/domain"
	obscontext "github.com/smallbiznis/stockroom/internal/observability/context"
	"github.com/smallbiznis/stockroom/internal/ratelimit"
)

const contextPrincipalKey = "principal"

// WebAuthRequired resolves the session cookie (or a bearer token) into a
// principal and stores it on the request.
func (s *Server) WebAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		principal, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextPrincipalKey, principal)
		ctx := obscontext.WithActor(c.Request.Context(), principal.Role, snowflake.ID(principal.UserID).String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func principalFromContext(c *gin.Context) (*authdomain.Principal, bool) {
	value, ok := c.Get(contextPrincipalKey)
	if !ok {
		return nil, false
	}
	principal, ok := value.(*authdomain.Principal)
	return principal, ok && principal != nil
}

func (s *Server) authorize(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := principalFromContext(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if err := s.authzSvc.Authorize(c.Request.Context(), principal.Role, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// LoginRateLimit throttles credential attempts per client address.
func (s *Server) LoginRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		res := s.limiter.AllowLogin(c.Request.Context(), c.ClientIP())
		if !allowOrAbort(c, res) {
			return
		}
		c.Next()
	}
}

func allowOrAbort(c *gin.Context, res *ratelimit.Result) bool {
	if res == nil || res.Allowed {
		return true
	}
	if res.Limit > 0 {
		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	}
	if secs := int(res.RetryAfter.Seconds()); secs > 0 {
		c.Header("Retry-After", strconv.Itoa(secs))
	}
	AbortWithError(c, ErrTooManyRequests)
	return false
}
