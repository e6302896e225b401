package bus

import (
	"context"
	"log/slog"
)

type NullBus struct {
	logger *slog.Logger
}

func NewNullBus(logger *slog.Logger) *NullBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &NullBus{logger: logger}
}

func (nb *NullBus) Publish(ctx context.Context, e Event) error {
	nb.logger.Debug("event dropped", "kind", e.Kind, "client_id", e.ClientID)
	return nil
}

func (nb *NullBus) HealthCheck(ctx context.Context) error { return nil }

func (nb *NullBus) Close() error { return nil }
