package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainErrors "github.com/shoplite/auth-service/internal/domain/errors"
	"github.com/shoplite/auth-service/internal/domain/models"
	"github.com/shoplite/auth-service/internal/domain/repository"
	"github.com/shoplite/auth-service/internal/domain/service"
	utilsLogger "github.com/shoplite/auth-service/internal/utils/logger"
)

// ElevationCookieName is the cookie carrying the signed elevation token.
const ElevationCookieName = "mfa_verified"

// RequireElevation gates protected actions behind a valid second-factor
// elevation. Users who have not finished enabling a factor pass through on
// their primary session alone; once mfa_status is enabled the cookie is
// mandatory and must belong to the requesting user. Expiry is absolute from
// issuance, there is no sliding renewal.
func RequireElevation(elevation service.ElevationService, userRepo repository.UserRepository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := SessionFromContext(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  "unauthorized",
			})
			return
		}

		user, err := userRepo.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, domainErrors.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "Unknown user",
					"code":  "unauthorized",
				})
				return
			}
			utilsLogger.WithUserID(logger, claims.UserID.String()).
				Error("Failed to load user for elevation check", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
				"error": "Authorization backend unavailable",
				"code":  "dependency_failure",
			})
			return
		}

		if user.MFAStatus != models.MFAStatusEnabled {
			c.Next()
			return
		}

		cookie, err := c.Cookie(ElevationCookieName)
		if err != nil || cookie == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Second factor verification required",
				"code":  "elevation_required",
			})
			return
		}

		elevClaims, err := elevation.Validate(cookie)
		if err != nil || elevClaims.UserID != claims.UserID {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Second factor verification required",
				"code":  "elevation_required",
			})
			return
		}

		c.Next()
	}
}
