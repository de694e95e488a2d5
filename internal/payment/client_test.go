package payment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sferrors "github.com/luxecurl/storefront/internal/errors"
	"github.com/luxecurl/storefront/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(config.PaymentConfig{
		BaseURL:     srv.URL,
		SecretKey:   "sk_test_123",
		CallbackURL: "https://shop.example/checkout/callback",
		Timeout:     2 * time.Second,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return client, srv
}

func Test_Initialize(t *testing.T) {
	testCases := []struct {
		name        string
		handler     http.HandlerFunc
		expectedURL string
		expectedErr error
	}{
		{
			name: "success",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/transaction/initialize", r.URL.Path)
				assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"status":true,"message":"Authorization URL created","data":{"authorization_url":"https://pay.example/abc","access_code":"abc","reference":"SF-1"}}`))
			},
			expectedURL: "https://pay.example/abc",
		},
		{
			name: "rejected by gateway",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"status":false,"message":"Invalid amount"}`))
			},
			expectedErr: sferrors.ErrPaymentRejected,
		},
		{
			name: "gateway down",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			expectedErr: sferrors.ErrGatewayUnavailable,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestClient(t, tc.handler)

			url, err := client.Initialize(context.Background(), InitRequest{
				Email:       "ada@example.com",
				AmountMinor: 57_000,
				Currency:    "NGN",
				Reference:   "SF-1",
				CallbackURL: client.CallbackURL(),
			})

			if tc.expectedErr != nil {
				assert.True(t, errors.Is(err, tc.expectedErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedURL, url)
		})
	}
}

func Test_Initialize_NotConfigured(t *testing.T) {
	client := NewClient(config.PaymentConfig{BaseURL: "http://localhost:0", Timeout: time.Second},
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := client.Initialize(context.Background(), InitRequest{})

	assert.True(t, errors.Is(err, sferrors.ErrPaymentNotConfigured))
}

func Test_Verify(t *testing.T) {
	testCases := []struct {
		name        string
		handler     http.HandlerFunc
		expectedErr error
	}{
		{
			name: "success",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/transaction/verify/SF-42", r.URL.Path)
				_, _ = w.Write([]byte(`{"status":true,"message":"Verification successful","data":{"status":"success","amount":57000,"currency":"NGN","reference":"SF-42","customer":{"email":"ada@example.com"},"paid_at":"2024-05-01T12:00:00Z"}}`))
			},
		},
		{
			name: "transaction failed",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"status":true,"message":"Verification successful","data":{"status":"failed","amount":57000,"currency":"NGN","reference":"SF-42","customer":{"email":"ada@example.com"}}}`))
			},
			expectedErr: sferrors.ErrPaymentRejected,
		},
		{
			name: "gateway unavailable",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			expectedErr: sferrors.ErrGatewayUnavailable,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestClient(t, tc.handler)

			v, err := client.Verify(context.Background(), "SF-42")

			if tc.expectedErr != nil {
				assert.True(t, errors.Is(err, tc.expectedErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "success", v.Status)
			assert.Equal(t, int64(57_000), v.AmountMinor)
			assert.Equal(t, "NGN", v.Currency)
			assert.Equal(t, "SF-42", v.Reference)
			assert.Equal(t, "ada@example.com", v.CustomerEmail)
			assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), v.PaidAt)
		})
	}
}

func Test_Verify_ConnectionFailure(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {})
	srv.Close()

	_, err := client.Verify(context.Background(), "SF-42")

	assert.True(t, errors.Is(err, sferrors.ErrGatewayUnavailable), "got %v", err)
}
