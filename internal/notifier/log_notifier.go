// Package notifier provides a development stand-in for the code delivery
// pipeline.
package notifier

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shoplite/auth-service/internal/domain/models"
	"github.com/shoplite/auth-service/internal/domain/service"
)

// LogNotifier writes codes to the log instead of dispatching them. Used when
// Kafka is disabled in local development.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("log_notifier")}
}

func (n *LogNotifier) Send(_ context.Context, userID uuid.UUID, channel models.MFAType, recipient string, code string, expiresAt time.Time) error {
	n.logger.Info("Verification code issued (not dispatched, log notifier)",
		zap.String("user_id", userID.String()),
		zap.String("channel", string(channel)),
		zap.String("recipient", recipient),
		zap.String("code", code),
		zap.Time("expires_at", expiresAt),
	)
	return nil
}

var _ service.Notifier = (*LogNotifier)(nil)
