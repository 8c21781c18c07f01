package worker

import (
	"context"
	"fmt"
	"log/slog"

	"opsboard/internal/amqp"
)

// EndpointApplier stores a replicated endpoint and restarts without re-broadcasting.
type EndpointApplier interface {
	Apply(ctx context.Context, url string) error
}

// SettingsWorker applies endpoint changes published by other replicas.
type SettingsWorker struct {
	applier EndpointApplier
}

func NewSettingsWorker(applier EndpointApplier) *SettingsWorker {
	return &SettingsWorker{applier: applier}
}

// HandleEndpointChanged processes a single endpoint change message from AMQP
func (w *SettingsWorker) HandleEndpointChanged(ctx context.Context, msg *amqp.EndpointChangedMessage) error {
	slog.InfoContext(ctx, "Processing endpoint change",
		"origin", msg.Origin,
		"published_at", msg.Timestamp)

	if err := w.applier.Apply(ctx, msg.URL); err != nil {
		return fmt.Errorf("apply endpoint change: %w", err)
	}
	return nil
}

// Run consumes endpoint changes until ctx is cancelled.
func (w *SettingsWorker) Run(ctx context.Context, client *amqp.Client) error {
	return client.ConsumeEndpointChanged(ctx, w.HandleEndpointChanged)
}
