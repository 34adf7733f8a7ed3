package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	redisClient "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shoplite/auth-service/internal/config"
	"github.com/shoplite/auth-service/internal/domain/service"
	"github.com/shoplite/auth-service/internal/events/kafka"
	httpHandler "github.com/shoplite/auth-service/internal/handler/http"
	"github.com/shoplite/auth-service/internal/infrastructure/database"
	"github.com/shoplite/auth-service/internal/infrastructure/security"
	"github.com/shoplite/auth-service/internal/notifier"
	"github.com/shoplite/auth-service/internal/utils/logger"
	"github.com/shoplite/auth-service/internal/utils/rate"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	log.Info("Starting auth service",
		zap.String("environment", cfg.Environment),
		zap.Int("port", cfg.Server.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.AutoMigrate {
		if err := runMigrations(cfg.Database); err != nil {
			log.Fatal("Failed to run migrations", zap.Error(err))
		}
		log.Info("Database migrations applied")
	}

	dbPool, err := database.NewDBPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer dbPool.Close()

	rdb := redisClient.NewClient(&redisClient.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close() //nolint:errcheck
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unavailable at startup, rate limiting degraded", zap.Error(err))
	}

	factorRepo := database.NewPgxMFAFactorRepository(dbPool)
	codeRepo := database.NewPgxVerificationCodeRepository(dbPool)
	backupRepo := database.NewPgxBackupCodeRepository(dbPool)
	userRepo := database.NewPgxUserRepository(dbPool)

	generator := security.NewCryptoGenerator()
	totpService := security.NewPquernaTOTPService(cfg.MFA.TOTPIssuerName)
	cipher := security.NewAESGCMEncryptionService()

	elevation, err := security.NewJWTElevationService(cfg.JWT.ElevationSecret, cfg.JWT.Issuer, cfg.JWT.ElevationTTL)
	if err != nil {
		log.Fatal("Failed to initialize elevation service", zap.Error(err))
	}
	verifier, err := security.NewHMACTokenVerifier(cfg.JWT.AccessTokenSecret)
	if err != nil {
		log.Fatal("Failed to initialize token verifier", zap.Error(err))
	}

	limiter := rate.NewLimiter(rdb, log)

	var publisher service.EventPublisher
	var codeNotifier service.Notifier
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Source, log)
		if err != nil {
			log.Fatal("Failed to initialize Kafka producer", zap.Error(err))
		}
		defer producer.Close() //nolint:errcheck
		publisher = producer
		codeNotifier = kafka.NewNotifier(producer)
	} else {
		log.Warn("Kafka disabled, one-time codes are logged instead of dispatched")
		codeNotifier = notifier.NewLogNotifier(log)
	}

	enrollment := service.NewEnrollmentService(service.EnrollmentServiceConfig{
		MFAConfig:  &cfg.MFA,
		RateConfig: &cfg.Security.RateLimiting,
		Generator:  generator,
		TOTP:       totpService,
		Cipher:     cipher,
		FactorRepo: factorRepo,
		CodeRepo:   codeRepo,
		BackupRepo: backupRepo,
		UserRepo:   userRepo,
		Notifier:   codeNotifier,
		Publisher:  publisher,
		Limiter:    limiter,
		Logger:     log,
	})
	verification := service.NewVerificationService(service.VerificationServiceConfig{
		MFAConfig:  &cfg.MFA,
		RateConfig: &cfg.Security.RateLimiting,
		TOTP:       totpService,
		Cipher:     cipher,
		Elevation:  elevation,
		FactorRepo: factorRepo,
		CodeRepo:   codeRepo,
		UserRepo:   userRepo,
		Publisher:  publisher,
		Limiter:    limiter,
		Logger:     log,
	})
	backup := service.NewBackupCodeService(service.BackupCodeServiceConfig{
		MFAConfig:  &cfg.MFA,
		RateConfig: &cfg.Security.RateLimiting,
		Generator:  generator,
		Elevation:  elevation,
		BackupRepo: backupRepo,
		UserRepo:   userRepo,
		Publisher:  publisher,
		Limiter:    limiter,
		Logger:     log,
	})

	// Expired codes are already unredeemable; this sweep is housekeeping only.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := codeRepo.DeleteExpired(ctx); err != nil {
					log.Warn("Failed to sweep expired verification codes", zap.Error(err))
				} else if n > 0 {
					log.Debug("Swept expired verification codes", zap.Int64("deleted", n))
				}
			}
		}
	}()

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Config:       cfg,
		Logger:       log,
		Enrollment:   enrollment,
		Verification: verification,
		Backup:       backup,
		Elevation:    elevation,
		Verifier:     verifier,
		UserRepo:     userRepo,
		Limiter:      limiter,
		DBPool:       dbPool,
		Redis:        rdb,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
	log.Info("Server stopped")
}

func runMigrations(cfg config.DatabaseConfig) error {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName, cfg.SSLMode)

	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	defer m.Close() //nolint:errcheck

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
