// Package client provides the single-attempt HTTP client used for all
// map-service requests, with structured logging, Prometheus metrics, and
// an optional Redis-backed response cache.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/geofetch/arcfetch/pkg/cache"
	"github.com/geofetch/arcfetch/pkg/logging"
)

// Prometheus metrics for map-service requests.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arcgis_requests_total",
		Help: "Total map-service requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "arcgis_request_duration_seconds",
		Help:    "Map-service request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arcgis_errors_total",
		Help: "Total map-service errors by class",
	}, []string{"class"})
)

// Config holds the client configuration.
type Config struct {
	// UserAgent header sent with every request.
	UserAgent string

	// Timeout per request.
	Timeout time.Duration

	// Cache is an optional response cache. Nil disables caching.
	Cache *cache.Manager

	// CacheTTL is how long cached responses stay fresh.
	CacheTTL time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		UserAgent: "arcfetch/0.1.0",
		Timeout:   30 * time.Second,
		CacheTTL:  5 * time.Minute,
	}
}

// Client performs map-service GET requests. Every request is a single
// best-effort attempt; failures are returned to the caller, never
// retried.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// New creates a new map-service client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Cache != nil && cfg.CacheTTL <= 0 {
		return nil, fmt.Errorf("cache_ttl must be positive when caching is enabled (got %v)", cfg.CacheTTL)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logging.NewLogger("http-client"),
	}, nil
}

// Get performs a GET against endpoint with the given query parameters and
// returns the response body. Non-2xx responses are returned as *HTTPError.
func (c *Client) Get(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	cacheKey := cache.Key{Endpoint: endpoint, Query: query}

	if c.config.Cache != nil {
		entry, err := c.config.Cache.Get(ctx, cacheKey)
		if err == nil {
			c.logger.Debug().
				Str("url", endpoint).
				Dur("ttl", entry.TTL()).
				Msg("Response cache hit")
			requestsTotal.WithLabelValues(endpoint, "cached").Inc()
			return entry.Data, nil
		}
		if err != cache.ErrCacheMiss {
			c.logger.Warn().Err(err).Str("url", endpoint).Msg("Cache get error")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.URL.RawQuery = query.Encode()
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("url", endpoint).
		Msg("Executing map-service request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		c.logger.Error().Err(err).Str("url", endpoint).Msg("HTTP request failed")
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, fmt.Errorf("read response body: %w", err)
	}

	requestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		httpErr := &HTTPError{
			StatusCode: resp.StatusCode,
			ErrorClass: classifyStatus(resp.StatusCode),
			URL:        endpoint,
		}
		errorsTotal.WithLabelValues(string(httpErr.ErrorClass)).Inc()
		c.logger.Warn().
			Str("url", endpoint).
			Int("status_code", resp.StatusCode).
			Str("error_class", string(httpErr.ErrorClass)).
			Msg("Map-service request error")
		return nil, httpErr
	}

	if c.config.Cache != nil {
		if err := c.config.Cache.Set(ctx, cacheKey, body, resp.StatusCode, c.config.CacheTTL); err != nil {
			c.logger.Warn().Err(err).Str("url", endpoint).Msg("Failed to cache response")
		}
	}

	return body, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
