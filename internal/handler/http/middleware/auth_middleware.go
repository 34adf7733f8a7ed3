package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shoplite/auth-service/internal/domain/service"
)

const (
	AuthHeaderKey  = "Authorization"
	AuthTypeBearer = "bearer"

	GinContextUserIDKey    = "userID"
	GinContextSessionIDKey = "sessionID"
	GinContextRoleKey      = "role"
	GinContextClaimsKey    = "claims"
)

// AuthMiddleware validates the bearer token minted by the session provider
// and stores the session claims in the request context.
func AuthMiddleware(verifier service.TokenVerifier, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
				"code":  "unauthorized",
			})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != AuthTypeBearer {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header format must be Bearer <token>",
				"code":  "unauthorized",
			})
			return
		}

		claims, err := verifier.ValidateAccessToken(parts[1])
		if err != nil {
			logger.Warn("Invalid access token", zap.Error(err), zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
				"code":  "unauthorized",
			})
			return
		}

		c.Set(GinContextClaimsKey, claims)
		c.Set(GinContextUserIDKey, claims.UserID)
		c.Set(GinContextSessionIDKey, claims.SessionID)
		c.Set(GinContextRoleKey, claims.Role)

		c.Next()
	}
}

// SessionFromContext returns the claims stored by AuthMiddleware, or nil when
// the request was not authenticated.
func SessionFromContext(c *gin.Context) *service.SessionClaims {
	v, ok := c.Get(GinContextClaimsKey)
	if !ok {
		return nil
	}
	claims, ok := v.(*service.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}
