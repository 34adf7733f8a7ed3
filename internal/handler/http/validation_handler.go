package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	domainErrors "github.com/shoplite/auth-service/internal/domain/errors"
	"github.com/shoplite/auth-service/internal/domain/models"
	"github.com/shoplite/auth-service/internal/domain/repository"
	"github.com/shoplite/auth-service/internal/domain/service"
	"github.com/shoplite/auth-service/internal/utils/metrics"
)

// ValidationHandler serves the internal permission check endpoint used by
// other services.
type ValidationHandler struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
}

func NewValidationHandler(userRepo repository.UserRepository, logger *zap.Logger) *ValidationHandler {
	return &ValidationHandler{
		userRepo: userRepo,
		logger:   logger,
	}
}

// CheckPermission handles POST /validation/permission. A missing user is a
// plain deny, not an error, so callers can treat the response uniformly.
func (h *ValidationHandler) CheckPermission(c *gin.Context) {
	var req struct {
		UserID     string `json:"user_id" binding:"required"`
		Permission string `json:"permission" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, "Invalid request body", "invalid_request", h.logger)
		return
	}

	permission, ok := models.ParsePermission(req.Permission)
	if !ok {
		RespondWithError(c, http.StatusBadRequest, "Unknown permission", "invalid_request", h.logger)
		return
	}

	var user *models.User
	if userID, err := uuid.Parse(req.UserID); err == nil {
		user, err = h.userRepo.FindByID(c.Request.Context(), userID)
		if err != nil && !errors.Is(err, domainErrors.ErrUserNotFound) {
			RespondWithDomainError(c, domainErrors.NewAppError(err, "Failed to load user", http.StatusBadGateway, "dependency_failure"), h.logger)
			return
		}
	}

	allowed := service.Can(user, permission)
	metrics.PermissionChecksTotal.WithLabelValues(strconv.FormatBool(allowed)).Inc()

	RespondWithData(c, http.StatusOK, gin.H{
		"has_permission": allowed,
	})
}
