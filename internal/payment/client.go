// Package payment is a thin client for the hosted payment gateway. Amounts
// always cross the wire in the currency's smallest unit.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	sferrors "github.com/luxecurl/storefront/internal/errors"
	"github.com/luxecurl/storefront/pkg/config"
)

// InitRequest carries everything the gateway needs to start a transaction.
type InitRequest struct {
	Email       string            `json:"email"`
	AmountMinor int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Reference   string            `json:"reference"`
	CallbackURL string            `json:"callback_url"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Verification is the gateway's answer for a completed transaction.
type Verification struct {
	Status        string    `json:"status"`
	AmountMinor   int64     `json:"amount"`
	Currency      string    `json:"currency"`
	Reference     string    `json:"reference"`
	CustomerEmail string    `json:"customer_email"`
	PaidAt        time.Time `json:"paid_at"`
}

// gatewayEnvelope is the wire shape shared by both endpoints.
type gatewayEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type initData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type verifyData struct {
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Customer struct {
		Email string `json:"email"`
	} `json:"customer"`
	Reference string `json:"reference"`
	PaidAt    string `json:"paid_at"`
}

// Client calls the hosted gateway over HTTP with a bounded per-call timeout.
type Client struct {
	baseURL     string
	secretKey   string
	callbackURL string
	http        *http.Client
	logger      *slog.Logger
}

// NewClient creates a gateway client from configuration.
func NewClient(cfg config.PaymentConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL:     cfg.BaseURL,
		secretKey:   cfg.SecretKey,
		callbackURL: cfg.CallbackURL,
		http:        &http.Client{Timeout: cfg.Timeout},
		logger:      logger.With("component", "payment"),
	}
}

// CallbackURL is where the gateway redirects the customer after payment.
func (c *Client) CallbackURL() string {
	return c.callbackURL
}

// Initialize starts a transaction and returns the hosted authorization URL
// the customer is redirected to. Returns ErrPaymentNotConfigured when no
// secret key is set, ErrGatewayUnavailable when the gateway cannot be
// reached or answers 5xx, and ErrPaymentRejected when it refuses the
// transaction.
func (c *Client) Initialize(ctx context.Context, req InitRequest) (string, error) {
	if c.secretKey == "" {
		return "", sferrors.ErrPaymentNotConfigured
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode init request: %w", err)
	}

	var data initData
	if err := c.post(ctx, "/transaction/initialize", body, &data); err != nil {
		return "", err
	}
	if data.AuthorizationURL == "" {
		return "", fmt.Errorf("gateway returned no authorization URL: %w", sferrors.ErrPaymentRejected)
	}
	return data.AuthorizationURL, nil
}

// Verify asks the gateway for the final state of a transaction. A reachable
// gateway reporting anything but success yields ErrPaymentRejected; an
// unreachable gateway yields ErrGatewayUnavailable so callers can tell
// "connection failed" apart from "payment declined".
func (c *Client) Verify(ctx context.Context, reference string) (*Verification, error) {
	if c.secretKey == "" {
		return nil, sferrors.ErrPaymentNotConfigured
	}

	var data verifyData
	if err := c.get(ctx, "/transaction/verify/"+reference, &data); err != nil {
		return nil, err
	}
	if data.Status != "success" {
		return nil, fmt.Errorf("transaction %s is %q: %w", reference, data.Status, sferrors.ErrPaymentRejected)
	}

	v := &Verification{
		Status:        data.Status,
		AmountMinor:   data.Amount,
		Currency:      data.Currency,
		Reference:     data.Reference,
		CustomerEmail: data.Customer.Email,
	}
	if t, perr := time.Parse(time.RFC3339, data.PaidAt); perr == nil {
		v.PaidAt = t
	}
	return v, nil
}

func (c *Client) post(ctx context.Context, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	return c.do(req, out)
}

// do executes one gateway call and maps transport failures and 5xx answers
// to ErrGatewayUnavailable, 4xx answers to ErrPaymentRejected.
func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", sferrors.ErrGatewayUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("gateway answered %d: %w", resp.StatusCode, sferrors.ErrGatewayUnavailable)
	}

	var envelope gatewayEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest || !envelope.Status {
		return fmt.Errorf("gateway refused: %s: %w", envelope.Message, sferrors.ErrPaymentRejected)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode gateway payload: %w", err)
	}
	return nil
}
