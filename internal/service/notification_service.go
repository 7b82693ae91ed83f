package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/vaccine-scheduler/internal/config"
	"github.com/spec-kit/vaccine-scheduler/internal/events"
)

// NotificationService delivers notifications for domain events. The
// email and webhook transports are stubs until real providers are
// configured; delivery is best-effort and never affects the booking
// that triggered it.
type NotificationService struct {
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		logger: logger,
		cfg:    cfg,
	}
}

// Notify routes one event to its notification channels.
func (n *NotificationService) Notify(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.EventReservationBooked, events.EventReservationCancelled:
		n.logger.Info(string(event.Type), zap.Any("payload", event.Payload))
		n.sendEmail(ctx, event)
		n.sendWebhook(ctx, event)
	case events.EventAvailabilityPublished, events.EventDosesRestocked:
		n.logger.Info(string(event.Type), zap.Any("payload", event.Payload))
		n.sendWebhook(ctx, event)
	default:
		n.logger.Debug("no notification channel for event", zap.String("type", string(event.Type)))
	}
	return nil
}

func (n *NotificationService) sendEmail(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("email notification",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhook(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("webhook notification",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_type", string(event.Type)))
}
