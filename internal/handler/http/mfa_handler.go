package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shoplite/auth-service/internal/domain/models"
	"github.com/shoplite/auth-service/internal/domain/service"
	"github.com/shoplite/auth-service/internal/handler/http/middleware"
	"github.com/shoplite/auth-service/internal/utils/metrics"
)

// MFAHandler serves factor enrollment and verification endpoints.
type MFAHandler struct {
	enrollment   service.EnrollmentService
	verification service.VerificationService
	backup       service.BackupCodeService
	environment  string
	logger       *zap.Logger
}

func NewMFAHandler(enrollment service.EnrollmentService, verification service.VerificationService, backup service.BackupCodeService, environment string, logger *zap.Logger) *MFAHandler {
	return &MFAHandler{
		enrollment:   enrollment,
		verification: verification,
		backup:       backup,
		environment:  environment,
		logger:       logger,
	}
}

// Setup handles POST /auth/mfa/setup.
func (h *MFAHandler) Setup(c *gin.Context) {
	claims := middleware.SessionFromContext(c)
	if claims == nil {
		RespondWithError(c, http.StatusUnauthorized, "Authentication required", "unauthorized", h.logger)
		return
	}

	var req struct {
		Type string `json:"type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, "Invalid request body", "invalid_request", h.logger)
		return
	}
	factorType, ok := models.ParseMFAType(req.Type)
	if !ok {
		RespondWithError(c, http.StatusBadRequest, "Unsupported factor type", "invalid_request", h.logger)
		return
	}

	result, err := h.enrollment.Setup(c.Request.Context(), claims.UserID, factorType)
	if err != nil {
		metrics.MFAEnrollmentsTotal.WithLabelValues(string(factorType), "error").Inc()
		RespondWithDomainError(c, err, h.logger)
		return
	}
	metrics.MFAEnrollmentsTotal.WithLabelValues(string(factorType), "success").Inc()

	resp := gin.H{
		"success": true,
		"type":    result.Type,
	}
	if result.Type == models.MFATypeApp {
		resp["secret"] = result.Secret
		resp["otpauthUrl"] = result.OTPAuthURL
		resp["qrCode"] = result.QRCode
	} else {
		resp["message"] = result.Message
	}
	RespondWithData(c, http.StatusOK, resp)
}

// Verify handles POST /auth/mfa/verify. On success it sets the mfa_verified
// elevation cookie for 24 hours, absolute from issuance.
func (h *MFAHandler) Verify(c *gin.Context) {
	claims := middleware.SessionFromContext(c)
	if claims == nil {
		RespondWithError(c, http.StatusUnauthorized, "Authentication required", "unauthorized", h.logger)
		return
	}

	var req struct {
		UserID string `json:"userId" binding:"required"`
		Type   string `json:"type" binding:"required"`
		Code   string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, "userId, type and code are required", "invalid_request", h.logger)
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		RespondWithError(c, http.StatusBadRequest, "Invalid userId", "invalid_request", h.logger)
		return
	}
	factorType, ok := models.ParseMFAType(req.Type)
	if !ok {
		RespondWithError(c, http.StatusBadRequest, "Unsupported factor type", "invalid_request", h.logger)
		return
	}

	result, err := h.verification.Submit(c.Request.Context(), claims, userID, factorType, req.Code)
	if err != nil {
		metrics.MFAVerificationsTotal.WithLabelValues(string(factorType), "error").Inc()
		RespondWithDomainError(c, err, h.logger)
		return
	}
	metrics.MFAVerificationsTotal.WithLabelValues(string(factorType), "success").Inc()

	h.setElevationCookie(c, result.ElevationToken, result.ExpiresAt)

	RespondWithData(c, http.StatusOK, gin.H{
		"success": true,
		"message": "Verification successful",
	})
}

// Resend handles POST /auth/mfa/resend for pending sms and email factors.
func (h *MFAHandler) Resend(c *gin.Context) {
	claims := middleware.SessionFromContext(c)
	if claims == nil {
		RespondWithError(c, http.StatusUnauthorized, "Authentication required", "unauthorized", h.logger)
		return
	}

	var req struct {
		Type string `json:"type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, "Invalid request body", "invalid_request", h.logger)
		return
	}
	factorType, ok := models.ParseMFAType(req.Type)
	if !ok {
		RespondWithError(c, http.StatusBadRequest, "Unsupported factor type", "invalid_request", h.logger)
		return
	}

	if err := h.enrollment.Resend(c.Request.Context(), claims.UserID, factorType); err != nil {
		RespondWithDomainError(c, err, h.logger)
		return
	}

	RespondWithData(c, http.StatusOK, gin.H{
		"success": true,
		"message": "Verification code sent",
	})
}

// Disable handles POST /auth/mfa/disable. The elevation cookie is cleared so a
// re-enrolled factor must be verified again before protected actions.
func (h *MFAHandler) Disable(c *gin.Context) {
	claims := middleware.SessionFromContext(c)
	if claims == nil {
		RespondWithError(c, http.StatusUnauthorized, "Authentication required", "unauthorized", h.logger)
		return
	}

	var req struct {
		Type string `json:"type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, "Invalid request body", "invalid_request", h.logger)
		return
	}
	factorType, ok := models.ParseMFAType(req.Type)
	if !ok {
		RespondWithError(c, http.StatusBadRequest, "Unsupported factor type", "invalid_request", h.logger)
		return
	}

	if err := h.enrollment.Disable(c.Request.Context(), claims.UserID, factorType); err != nil {
		RespondWithDomainError(c, err, h.logger)
		return
	}

	h.clearElevationCookie(c)

	RespondWithData(c, http.StatusOK, gin.H{
		"success": true,
		"message": "Factor disabled",
	})
}

// BackupCodes handles POST /auth/mfa/backup-codes. One endpoint, three
// actions: generate a fresh batch, count what remains, or verify (spend) a
// code as a fallback second factor.
func (h *MFAHandler) BackupCodes(c *gin.Context) {
	claims := middleware.SessionFromContext(c)
	if claims == nil {
		RespondWithError(c, http.StatusUnauthorized, "Authentication required", "unauthorized", h.logger)
		return
	}

	var req struct {
		Action string `json:"action" binding:"required"`
		Count  int    `json:"count"`
		Code   string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, "action is required", "invalid_request", h.logger)
		return
	}

	switch req.Action {
	case "generate":
		codes, err := h.backup.Generate(c.Request.Context(), claims.UserID, req.Count)
		if err != nil {
			RespondWithDomainError(c, err, h.logger)
			return
		}
		RespondWithData(c, http.StatusOK, gin.H{
			"success":     true,
			"backupCodes": codes,
		})

	case "count":
		count, err := h.backup.Count(c.Request.Context(), claims.UserID)
		if err != nil {
			RespondWithDomainError(c, err, h.logger)
			return
		}
		RespondWithData(c, http.StatusOK, gin.H{
			"success": true,
			"count":   count,
		})

	case "verify":
		if req.Code == "" {
			RespondWithError(c, http.StatusBadRequest, "code is required", "invalid_request", h.logger)
			return
		}
		result, err := h.backup.Redeem(c.Request.Context(), claims, req.Code)
		if err != nil {
			RespondWithDomainError(c, err, h.logger)
			return
		}
		h.setElevationCookie(c, result.ElevationToken, result.ExpiresAt)
		RespondWithData(c, http.StatusOK, gin.H{
			"success": true,
			"message": "Backup code accepted",
		})

	default:
		RespondWithError(c, http.StatusBadRequest, "Unsupported action", "invalid_request", h.logger)
	}
}

func (h *MFAHandler) setElevationCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.ElevationCookieName, token, maxAge, "/", "", h.environment == "production", true)
}

func (h *MFAHandler) clearElevationCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.ElevationCookieName, "", -1, "/", "", h.environment == "production", true)
}
