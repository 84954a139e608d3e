// Package clients reads gateway accounts, Stripe setup and services from the upstream
// connector and adminusers APIs.
package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"

	"selfservice/internal/common/middleware"
)

// maxBodyBytes caps how much of an upstream response is read.
const maxBodyBytes = 1 << 20

// Common errors
var (
	ErrNotFound    = errors.New("upstream resource not found")
	ErrUnavailable = errors.New("upstream unavailable")
)

// StatusError is returned for non-2xx responses other than 404.
type StatusError struct {
	Upstream   string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s GET %s returned %d: %s", e.Upstream, e.Path, e.StatusCode, e.Body)
}

// Is reports server errors as ErrUnavailable.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnavailable && e.StatusCode >= http.StatusInternalServerError
}

// IsNotFound checks if an error is an upstream not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnavailable checks if an error means the upstream could not be reached or failed
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// Config holds upstream configuration
type Config struct {
	ConnectorURL    string        `envconfig:"CONNECTOR_URL" default:"http://localhost:9300"`
	AdminUsersURL   string        `envconfig:"ADMINUSERS_URL" default:"http://localhost:9700"`
	Timeout         time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"5s"`
	MaxRetries      uint64        `envconfig:"UPSTREAM_MAX_RETRIES" default:"2"`
	RetryInterval   time.Duration `envconfig:"UPSTREAM_RETRY_INTERVAL" default:"100ms"`
	BreakerFailures uint32        `envconfig:"UPSTREAM_BREAKER_FAILURES" default:"5"`
	BreakerTimeout  time.Duration `envconfig:"UPSTREAM_BREAKER_TIMEOUT" default:"30s"`
}

// Client is a JSON GET client for one upstream. It retries transient failures and stops calling
// the upstream while its circuit breaker is open.
type Client struct {
	name          string
	baseURL       string
	http          *http.Client
	breaker       *gobreaker.CircuitBreaker[any]
	maxRetries    uint64
	retryInterval time.Duration
	logger        *slog.Logger
}

// NewClient creates a new upstream client. A nil httpClient gets one with cfg.Timeout.
func NewClient(name, baseURL string, cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		// Not found, other 4xx and caller cancellation leave the breaker alone.
		IsSuccessful: func(err error) bool {
			return err == nil || !IsUnavailable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("upstream circuit breaker state changed",
				"upstream", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &Client{
		name:          name,
		baseURL:       baseURL,
		http:          httpClient,
		breaker:       gobreaker.NewCircuitBreaker[any](settings),
		maxRetries:    cfg.MaxRetries,
		retryInterval: cfg.RetryInterval,
		logger:        logger,
	}
}

// GetJSON fetches path and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, path string, out interface{}) error {
	var body []byte
	attempt := 0

	operation := func() error {
		attempt++
		result, err := c.breaker.Execute(func() (any, error) {
			return c.get(ctx, path)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(fmt.Errorf("%s: %w: %w", c.name, ErrUnavailable, err))
			}
			if !IsUnavailable(err) {
				return backoff.Permanent(err)
			}
			c.logger.Warn("upstream request failed",
				"upstream", c.name,
				"path", path,
				"attempt", attempt,
				"error", err,
			)
			return err
		}
		body = result.([]byte)
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryInterval
	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, c.maxRetries), ctx)); err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", c.name, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", c.name, err)
	}
	req.Header.Set("Accept", "application/json")
	if correlationID := middleware.GetCorrelationID(ctx); correlationID != "" {
		req.Header.Set(middleware.CorrelationHeader, correlationID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// The caller gave up, e.g. a sibling fetch failed. Not the upstream's fault.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("calling %s: %w", c.name, ctxErr)
		}
		return nil, fmt.Errorf("calling %s: %w: %w", c.name, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("reading %s response: %w", c.name, ctxErr)
		}
		return nil, fmt.Errorf("reading %s response: %w: %w", c.name, ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s GET %s: %w", c.name, path, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &StatusError{
			Upstream:   c.name,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       truncate(string(body), 256),
		}
	}

	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
