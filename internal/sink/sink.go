// Package sink holds the clients for the external persistence boundaries:
// the pricing-update API and the URL-activation API. Both are
// last-writer-wins, no automatic retry; callers handle rollback.
package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RequestError is a non-success response from a sink, carrying the upstream
// status and whatever structured body it returned.
type RequestError struct {
	URL    string
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("sink request to %s failed with status %d: %s", e.URL, e.Status, e.Body)
}

// PricingUpdate is one row of a pricing-update batch, keyed by the
// seller/product/marketplace composite identity.
type PricingUpdate struct {
	ProductKey  string   `json:"ean"`
	SellerID    string   `json:"key_loja"`
	Marketplace string   `json:"marketplace"`
	FloorPrice  *float64 `json:"preco_pricing,omitempty"`
	BuyboxPrice *float64 `json:"preco_buybox,omitempty"`
}

// ActivationToggle marks one (product, marketplace) listing link as active or
// inactive for ongoing tracking.
type ActivationToggle struct {
	ProductKey  string `json:"ean"`
	Marketplace string `json:"marketplace"`
	Active      bool   `json:"active"`
}

// Client talks to both sinks.
type Client struct {
	httpClient    *http.Client
	pricingURL    string
	activationURL string
	apiKey        string
}

// NewClient builds a sink client. apiKey may be empty when the sinks are
// unauthenticated.
func NewClient(pricingURL, activationURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient:    &http.Client{Timeout: timeout},
		pricingURL:    pricingURL,
		activationURL: activationURL,
		apiKey:        apiKey,
	}
}

// UpdatePricing sends a pricing-update batch. A non-2xx response returns a
// *RequestError; the caller reverts its optimistic mutation on any error.
func (c *Client) UpdatePricing(ctx context.Context, updates []PricingUpdate) error {
	return c.patch(ctx, c.pricingURL, updates)
}

// ToggleActivation sends a batch of listing activation toggles.
func (c *Client) ToggleActivation(ctx context.Context, toggles []ActivationToggle) error {
	return c.patch(ctx, c.activationURL, toggles)
}

func (c *Client) patch(ctx context.Context, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode sink payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build sink request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Internal-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sink request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &RequestError{URL: url, Status: resp.StatusCode, Body: string(detail)}
	}
	return nil
}
