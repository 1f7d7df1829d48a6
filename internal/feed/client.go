// Package feed fetches the upstream listing and URL feeds over HTTP.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/pricetrack/buybox-service/internal/offer"
)

// FetchError reports a failed fetch after retries were exhausted.
type FetchError struct {
	URL        string
	Attempts   int
	LastStatus int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
	}
	return fmt.Sprintf("fetch %s failed after %d attempts: status %d", e.URL, e.Attempts, e.LastStatus)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Config controls retry and throttling of upstream requests.
type Config struct {
	ListingURL string
	URLFeedURL string
	Timeout    time.Duration
	MaxRetries int
	// RequestsPerSecond throttles all outbound requests on a shared limiter.
	RequestsPerSecond float64
}

// Client fetches and decodes the upstream feeds.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewClient creates a feed client. Zero config values fall back to sane
// defaults (30s timeout, 2 retries, 5 req/s).
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:  logger.With().Str("component", "feed_client").Logger(),
	}
}

// listingEnvelope matches the wrapped feed shape {"results": [...]}.
type listingEnvelope struct {
	Results []offer.RawOffer `json:"results"`
}

// FetchListings retrieves and decodes the raw listing feed. The payload may
// be either a bare JSON array or an object wrapping the array under
// "results".
func (c *Client) FetchListings(ctx context.Context) ([]offer.RawOffer, error) {
	body, err := c.get(ctx, c.cfg.ListingURL)
	if err != nil {
		return nil, err
	}

	var raws []offer.RawOffer
	if err := json.Unmarshal(body, &raws); err == nil {
		return raws, nil
	}

	var env listingEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode listing feed: %w", err)
	}
	if env.Results == nil {
		return nil, fmt.Errorf("decode listing feed: no results array")
	}
	return env.Results, nil
}

// FetchURLs retrieves the URL lookup feed. An unconfigured URL feed yields
// an empty record set rather than an error.
func (c *Client) FetchURLs(ctx context.Context) ([]offer.URLRecord, error) {
	if c.cfg.URLFeedURL == "" {
		return nil, nil
	}
	body, err := c.get(ctx, c.cfg.URLFeedURL)
	if err != nil {
		return nil, err
	}

	var urls []offer.URLRecord
	if err := json.Unmarshal(body, &urls); err != nil {
		return nil, fmt.Errorf("decode url feed: %w", err)
	}
	return urls, nil
}

// FetchAll retrieves both feeds concurrently. Either fetch failing fails the
// whole call; no partial data is returned.
func (c *Client) FetchAll(ctx context.Context) ([]offer.RawOffer, []offer.URLRecord, error) {
	var (
		raws []offer.RawOffer
		urls []offer.URLRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		raws, err = c.FetchListings(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		urls, err = c.FetchURLs(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return raws, urls, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	var lastStatus int
	var lastErr error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		if attempt > 0 {
			c.logger.Warn().
				Str("url", url).
				Int("attempt", attempt+1).
				Int("last_status", lastStatus).
				Msg("retrying feed fetch")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff(attempt)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, &FetchError{URL: url, Attempts: attempt + 1, Err: err}
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		lastStatus = resp.StatusCode
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				lastErr = err
				continue
			}
			return body, nil
		}

		resp.Body.Close()
		if !retryable(resp.StatusCode) {
			return nil, &FetchError{URL: url, Attempts: attempt + 1, LastStatus: resp.StatusCode}
		}
	}

	return nil, &FetchError{
		URL:        url,
		Attempts:   c.cfg.MaxRetries + 1,
		LastStatus: lastStatus,
		Err:        lastErr,
	}
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// backoff grows exponentially from 500ms with light jitter.
func backoff(attempt int) time.Duration {
	base := 500 * math.Pow(2, float64(attempt-1))
	jitter := rand.Float64() * 0.25 * base
	return time.Duration(base+jitter) * time.Millisecond
}
