package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/kbridge/backend/internal/domain/shared"
)

// AuditLogHandler records every domain event in the structured log. It is a
// wildcard subscriber; the log line is the audit trail for order, dispute
// and review activity.
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates a new audit log handler
func NewAuditLogHandler(logger *zap.Logger) *AuditLogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditLogHandler{logger: logger}
}

// Handle logs the event
func (h *AuditLogHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	h.logger.Info("Domain event",
		zap.String("event_type", evt.EventType()),
		zap.String("event_id", evt.EventID().String()),
		zap.String("aggregate_id", evt.AggregateID().String()),
		zap.Time("occurred_at", evt.OccurredAt()),
	)
	return nil
}

// EventTypes returns an empty slice so the handler receives all events
func (h *AuditLogHandler) EventTypes() []string {
	return nil
}
