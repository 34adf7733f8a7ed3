package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shoplite/auth-service/internal/domain/models"
	"github.com/shoplite/auth-service/internal/domain/service"
)

// Notifier dispatches one-time codes to the notification pipeline. The actual
// SMS/email transport is owned by the downstream consumer; from this side the
// send is complete once the event is durably accepted by the broker. A broker
// failure propagates to the caller so enrollment fails rather than silently
// issuing an undeliverable code.
type Notifier struct {
	producer *Producer
}

func NewNotifier(producer *Producer) *Notifier {
	return &Notifier{producer: producer}
}

func (n *Notifier) Send(ctx context.Context, userID uuid.UUID, channel models.MFAType, recipient string, code string, expiresAt time.Time) error {
	payload := models.MFACodeIssuedEvent{
		UserID:    userID.String(),
		Channel:   channel,
		Recipient: recipient,
		Code:      code,
		ExpiresAt: expiresAt,
		IssuedAt:  time.Now().UTC(),
	}
	if err := n.producer.PublishToTopic(ctx, NotificationsTopic, models.AuthMFACodeIssuedV1, userID.String(), payload); err != nil {
		return fmt.Errorf("failed to dispatch verification code: %w", err)
	}
	return nil
}

var _ service.Notifier = (*Notifier)(nil)
