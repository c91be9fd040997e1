package order

import (
	"context"

	"github.com/google/uuid"

	"github.com/kbridge/backend/internal/domain/shared/valueobject"
)

// PaymentGateway abstracts the external payment processor. Capture runs
// before MarkPaid and Refund runs during dispute settlement; both are called
// outside storage transactions.
type PaymentGateway interface {
	// Capture charges the buyer and returns the gateway's reference for the
	// captured funds.
	Capture(ctx context.Context, orderID uuid.UUID, amount valueobject.Money) (string, error)

	// Refund returns previously captured funds to the buyer.
	Refund(ctx context.Context, gatewayReference string, amount valueobject.Money) error
}

// Notifier delivers user-facing notifications for order and dispute events.
// Delivery is best effort; failures never fail the triggering operation.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, eventType string, payload map[string]any)
}
