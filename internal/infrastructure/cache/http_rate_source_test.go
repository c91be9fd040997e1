package cache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbridge/backend/internal/infrastructure/config"
)

func newTestRateSource(serverURL string) *HTTPRateSource {
	return NewHTTPRateSource(config.FXCacheConfig{
		BaseURL: serverURL,
		Timeout: 2 * time.Second,
	})
}

func TestHTTPRateSource_KRWPerCNY(t *testing.T) {
	t.Run("fetches the current rate", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/rates/KRW-CNY", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"pair":"KRW-CNY","rate":"185.23"}`))
		}))
		defer server.Close()

		source := newTestRateSource(server.URL)
		rate, err := source.KRWPerCNY(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "185.23", rate.String())
	})

	t.Run("rejects a non-200 response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		source := newTestRateSource(server.URL)
		_, err := source.KRWPerCNY(context.Background())

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "status 502")
	})

	t.Run("rejects a non-positive rate", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"pair":"KRW-CNY","rate":"0"}`))
		}))
		defer server.Close()

		source := newTestRateSource(server.URL)
		_, err := source.KRWPerCNY(context.Background())

		assert.Error(t, err)
	})

	t.Run("rejects malformed payloads", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer server.Close()

		source := newTestRateSource(server.URL)
		_, err := source.KRWPerCNY(context.Background())

		assert.Error(t, err)
	})

	t.Run("fails when the service is unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		source := newTestRateSource(server.URL)
		_, err := source.KRWPerCNY(context.Background())

		assert.Error(t, err)
	})
}
