package notification

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LogNotifier delivers notifications by logging them. It stands in for the
// push/email channel, which is a separate service; the transaction core only
// needs a fire-and-forget sink that never fails the caller.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier that writes to the given logger
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// Notify records the notification. Best effort only.
func (n *LogNotifier) Notify(ctx context.Context, userID uuid.UUID, eventType string, payload map[string]any) {
	n.logger.Info("User notification",
		zap.String("user_id", userID.String()),
		zap.String("event_type", eventType),
		zap.Any("payload", payload),
	)
}
