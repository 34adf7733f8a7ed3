package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainErrors "github.com/shoplite/auth-service/internal/domain/errors"
)

// ResponseError is the error envelope for API responses.
type ResponseError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// RespondWithError sends an error response and logs it.
func RespondWithError(c *gin.Context, statusCode int, message string, errorCode string, logger *zap.Logger) {
	logger.Error("API error response",
		zap.Int("status_code", statusCode),
		zap.String("error_message", message),
		zap.String("error_code", errorCode),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
	)

	c.JSON(statusCode, ResponseError{
		Error: message,
		Code:  errorCode,
	})
}

// RespondWithData sends a success response with just the payload.
func RespondWithData(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// RespondWithDomainError maps a domain error onto the API error taxonomy.
// Wrong, expired and consumed codes all map to the same invalid_code response
// so callers learn nothing about which codes exist.
func RespondWithDomainError(c *gin.Context, err error, logger *zap.Logger) {
	var appErr *domainErrors.AppError
	if errors.As(err, &appErr) {
		RespondWithError(c, appErr.StatusCode, appErr.Message, appErr.Code, logger)
		return
	}

	switch {
	case errors.Is(err, domainErrors.ErrInvalidCode):
		RespondWithError(c, http.StatusBadRequest, "Invalid verification code", "invalid_code", logger)
	case errors.Is(err, domainErrors.ErrInvalidRequest):
		RespondWithError(c, http.StatusBadRequest, err.Error(), "invalid_request", logger)
	case domainErrors.IsPrecondition(err):
		RespondWithError(c, http.StatusPreconditionFailed, err.Error(), "precondition_failed", logger)
	case domainErrors.IsNotFound(err):
		RespondWithError(c, http.StatusNotFound, err.Error(), "not_found", logger)
	case domainErrors.IsConflict(err):
		RespondWithError(c, http.StatusConflict, err.Error(), "conflict", logger)
	case domainErrors.IsUnauthorized(err):
		RespondWithError(c, http.StatusUnauthorized, "Unauthorized", "unauthorized", logger)
	case errors.Is(err, domainErrors.ErrForbidden):
		RespondWithError(c, http.StatusForbidden, "Forbidden", "forbidden", logger)
	case errors.Is(err, domainErrors.ErrRateLimited):
		RespondWithError(c, http.StatusTooManyRequests, "Too many attempts, try again later", "rate_limited", logger)
	case errors.Is(err, domainErrors.ErrDependency):
		RespondWithError(c, http.StatusBadGateway, "Upstream dependency failure", "dependency_failure", logger)
	default:
		RespondWithError(c, http.StatusInternalServerError, "Internal server error", "internal_error", logger)
	}
}
