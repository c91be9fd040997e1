package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/kbridge/backend/internal/domain/shared/valueobject"
	"github.com/kbridge/backend/internal/infrastructure/config"
)

// HTTPGateway implements order.PaymentGateway against the platform's payment
// service. Captures and refunds settle in KRW; the CNY leg of an order is a
// display mirror, not a settlement amount.
type HTTPGateway struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPGateway creates a payment gateway client from configuration
func NewHTTPGateway(cfg config.PaymentConfig) *HTTPGateway {
	return &HTTPGateway{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type captureRequest struct {
	OrderID  string `json:"order_id"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type captureResponse struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

type refundRequest struct {
	Reference string `json:"reference"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Capture charges the buyer and places the amount in escrow at the gateway.
// Returns the gateway's capture reference.
func (g *HTTPGateway) Capture(ctx context.Context, orderID uuid.UUID, amount valueobject.Money) (string, error) {
	body := captureRequest{
		OrderID:  orderID.String(),
		Amount:   amount.Amount().String(),
		Currency: string(amount.Currency()),
	}

	var result captureResponse
	if err := g.post(ctx, "/v1/captures", body, &result); err != nil {
		return "", fmt.Errorf("payment capture failed: %w", err)
	}
	if result.Reference == "" {
		return "", fmt.Errorf("payment capture returned no reference")
	}
	return result.Reference, nil
}

// Refund returns the amount to the buyer against an earlier capture
func (g *HTTPGateway) Refund(ctx context.Context, reference string, amount valueobject.Money) error {
	body := refundRequest{
		Reference: reference,
		Amount:    amount.Amount().String(),
		Currency:  string(amount.Currency()),
	}

	if err := g.post(ctx, "/v1/refunds", body, nil); err != nil {
		return fmt.Errorf("payment refund failed: %w", err)
	}
	return nil
}

func (g *HTTPGateway) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var gwErr errorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&gwErr); decodeErr == nil && gwErr.Code != "" {
			return fmt.Errorf("gateway rejected request: %s (%s)", gwErr.Message, gwErr.Code)
		}
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
