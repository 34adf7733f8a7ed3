package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redisClient "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shoplite/auth-service/internal/config"
	"github.com/shoplite/auth-service/internal/domain/repository"
	"github.com/shoplite/auth-service/internal/domain/service"
	"github.com/shoplite/auth-service/internal/handler/http/middleware"
)

// RouterDeps carries everything SetupRouter wires into handlers.
type RouterDeps struct {
	Config       *config.Config
	Logger       *zap.Logger
	Enrollment   service.EnrollmentService
	Verification service.VerificationService
	Backup       service.BackupCodeService
	Elevation    service.ElevationService
	Verifier     service.TokenVerifier
	UserRepo     repository.UserRepository
	Limiter      service.AttemptLimiter
	DBPool       *pgxpool.Pool
	Redis        *redisClient.Client
}

// SetupRouter builds the HTTP routing tree.
func SetupRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(deps.Logger))
	router.Use(middleware.LoggingMiddleware(deps.Logger))
	router.Use(middleware.CorsMiddleware())
	router.Use(middleware.MetricsMiddleware())
	if deps.Limiter != nil {
		router.Use(middleware.RateLimitMiddleware(deps.Limiter, deps.Config.Security.RateLimiting.GeneralIP, deps.Logger))
	}

	mfaHandler := NewMFAHandler(deps.Enrollment, deps.Verification, deps.Backup, deps.Config.Environment, deps.Logger)
	validationHandler := NewValidationHandler(deps.UserRepo, deps.Logger)
	healthHandler := NewHealthHandler(deps.DBPool, deps.Redis, deps.Logger)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", healthHandler.Health)
	router.GET("/readiness", healthHandler.Readiness)

	api := router.Group("/api/v1")
	{
		// Internal endpoints for service-to-service permission checks.
		validation := api.Group("/validation")
		{
			validation.POST("/permission", validationHandler.CheckPermission)
		}

		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(deps.Verifier, deps.Logger))
		{
			mfa := protected.Group("/auth/mfa")
			{
				mfa.POST("/setup", mfaHandler.Setup)
				mfa.POST("/verify", mfaHandler.Verify)
				mfa.POST("/resend", mfaHandler.Resend)
				mfa.POST("/backup-codes", mfaHandler.BackupCodes)

				// Disabling a factor is itself a protected action: once MFA is
				// enabled it requires a fresh elevation, not just a session.
				mfa.POST("/disable",
					middleware.RequireElevation(deps.Elevation, deps.UserRepo, deps.Logger),
					mfaHandler.Disable)
			}
		}
	}

	return router
}
