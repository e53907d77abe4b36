package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/tutor_market/internal/events"
	"go.uber.org/zap"
)

const outboundTimeout = 5 * time.Second

// publish sends a domain event; failures are logged and never returned
func publish(ctx context.Context, p events.Publisher, logger *zap.Logger, key string, data any) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), outboundTimeout)
	defer cancel()

	if err := p.Publish(ctx, key, data); err != nil {
		logger.Warn("Failed to publish event",
			zap.String("event", key),
			zap.Error(err))
	}
}
