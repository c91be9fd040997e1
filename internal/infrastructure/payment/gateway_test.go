package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbridge/backend/internal/domain/shared/valueobject"
	"github.com/kbridge/backend/internal/infrastructure/config"
)

func newTestGateway(serverURL string) *HTTPGateway {
	return NewHTTPGateway(config.PaymentConfig{
		BaseURL: serverURL,
		APIKey:  "test-key",
		Timeout: 2 * time.Second,
	})
}

func TestHTTPGateway_Capture(t *testing.T) {
	t.Run("captures and returns the gateway reference", func(t *testing.T) {
		orderID := uuid.New()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/captures", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, orderID.String(), body["order_id"])
			assert.Equal(t, "118300", body["amount"])
			assert.Equal(t, "KRW", body["currency"])

			_, _ = w.Write([]byte(`{"reference":"pay_abc123","status":"captured"}`))
		}))
		defer server.Close()

		gateway := newTestGateway(server.URL)
		amount := valueobject.NewMoneyKRW(decimal.NewFromInt(118300))

		ref, err := gateway.Capture(context.Background(), orderID, amount)

		require.NoError(t, err)
		assert.Equal(t, "pay_abc123", ref)
	})

	t.Run("rejects a capture without a reference", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":"captured"}`))
		}))
		defer server.Close()

		gateway := newTestGateway(server.URL)
		_, err := gateway.Capture(context.Background(), uuid.New(), valueobject.NewMoneyKRW(decimal.NewFromInt(1000)))

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no reference")
	})

	t.Run("surfaces the gateway's error code", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusPaymentRequired)
			_, _ = w.Write([]byte(`{"code":"INSUFFICIENT_FUNDS","message":"Card declined"}`))
		}))
		defer server.Close()

		gateway := newTestGateway(server.URL)
		_, err := gateway.Capture(context.Background(), uuid.New(), valueobject.NewMoneyKRW(decimal.NewFromInt(1000)))

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "INSUFFICIENT_FUNDS")
	})
}

func TestHTTPGateway_Refund(t *testing.T) {
	t.Run("refunds against a capture reference", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/refunds", r.URL.Path)

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "pay_abc123", body["reference"])
			assert.Equal(t, "82810", body["amount"])

			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		gateway := newTestGateway(server.URL)
		err := gateway.Refund(context.Background(), "pay_abc123", valueobject.NewMoneyKRW(decimal.NewFromInt(82810)))

		assert.NoError(t, err)
	})

	t.Run("fails on a plain non-2xx status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		gateway := newTestGateway(server.URL)
		err := gateway.Refund(context.Background(), "pay_abc123", valueobject.NewMoneyKRW(decimal.NewFromInt(1000)))

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "status 500")
	})

	t.Run("fails when the gateway is unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		gateway := newTestGateway(server.URL)
		err := gateway.Refund(context.Background(), "pay_abc123", valueobject.NewMoneyKRW(decimal.NewFromInt(1000)))

		assert.Error(t, err)
	})
}
