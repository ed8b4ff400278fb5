// Package client provides the HeadHunter API HTTP client with retry,
// backoff and error classification.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/market-radar/pkg/logging"
	"github.com/Sternrassler/market-radar/pkg/ratelimit"
	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the public HeadHunter API.
	DefaultBaseURL = "https://api.hh.ru"

	// DefaultUserAgent identifies the application to HH; anonymous clients
	// without one are rejected.
	DefaultUserAgent = "market-radar/0.1.0 (+https://github.com/Sternrassler/market-radar)"

	maxBodyBytes = 10 << 20
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors (except 429).
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 Too Many Requests.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassMalformed represents bodies that do not match the expected shape.
	ErrorClassMalformed ErrorClass = "malformed"
)

// Client is the HeadHunter API client. It holds no global state; the owner
// creates it for one run and closes it afterwards.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the API, without trailing path.
	BaseURL string

	// UserAgent is sent as both User-Agent and HH-User-Agent (REQUIRED by HH).
	UserAgent string

	// Timeout per HTTP attempt.
	Timeout time.Duration

	Retry RetryConfig
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: userAgent,
		Timeout:   10 * time.Second,
		Retry:     DefaultRetryConfig(),
	}
}

// New creates a new HH client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.UserAgent) == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	baseURL, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if baseURL.Scheme != "http" && baseURL.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http(s) (got %q)", cfg.BaseURL)
	}

	if cfg.Retry.MaxAttempts < 1 {
		return nil, fmt.Errorf("retry max_attempts must be >= 1 (got %d)", cfg.Retry.MaxAttempts)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: baseURL,
		config:  cfg,
		logger:  logging.NewLogger("hh-client"),
	}, nil
}

// getJSON performs a GET with retry and decodes the body into out.
// label is the endpoint template used for metrics and logs.
func (c *Client) getJSON(ctx context.Context, endpoint, label string, query url.Values, out any) error {
	body, err := c.get(ctx, endpoint, label, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		hhErrorsTotal.WithLabelValues(string(ErrorClassMalformed)).Inc()
		c.logger.Error().Err(err).Str("endpoint", label).Msg("Failed to decode response")
		return &MalformedResponseError{Endpoint: endpoint, Err: err}
	}
	return nil
}

// get executes the request, retrying transient failures, and returns the body
// of the successful response.
func (c *Client) get(ctx context.Context, endpoint, label string, query url.Values) ([]byte, error) {
	target := c.baseURL.JoinPath(endpoint)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var body []byte
	err := retryWithBackoff(ctx, c.config.Retry, label, c.logger, func(attempt int) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.config.UserAgent)
		req.Header.Set("HH-User-Agent", c.config.UserAgent)
		req.Header.Set("Accept", "application/json")

		c.logger.Debug().
			Str("endpoint", label).
			Str("url", target.String()).
			Int("attempt", attempt).
			Msg("Executing HH request")

		startTime := time.Now()
		resp, err := c.httpClient.Do(req)
		hhRequestDuration.WithLabelValues(label).Observe(time.Since(startTime).Seconds())

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return fmt.Errorf("%w: %w", ErrContextCancelled, ctxErr)
			}
			errClass := c.classifyError(nil, err)
			hhErrorsTotal.WithLabelValues(string(errClass)).Inc()
			hhRequestsTotal.WithLabelValues(label, "network_error").Inc()
			c.logger.Warn().Err(err).Str("endpoint", label).Msg("HTTP request failed")
			return &retryableError{class: errClass, err: err}
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			hhErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			hhRequestsTotal.WithLabelValues(label, "network_error").Inc()
			return &retryableError{class: ErrorClassNetwork, err: fmt.Errorf("read response body: %w", err)}
		}

		hhRequestsTotal.WithLabelValues(label, strconv.Itoa(resp.StatusCode)).Inc()

		if resp.StatusCode >= 400 {
			errClass := c.classifyError(resp, nil)
			hhErrorsTotal.WithLabelValues(string(errClass)).Inc()

			apiErr := newAPIError(resp, errClass, data)
			apiErr.RetryAfter = ratelimit.RetryAfter(resp.Header, time.Now())

			c.logger.Warn().
				Str("endpoint", label).
				Int("status", resp.StatusCode).
				Str("error_class", string(errClass)).
				Strs("types", apiErr.Types).
				Msg("HH request error")

			return &retryableError{class: errClass, retryAfter: apiErr.RetryAfter, err: apiErr}
		}

		body = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// classifyError categorizes an error for observability and handling.
func (c *Client) classifyError(resp *http.Response, err error) ErrorClass {
	if err != nil {
		return ErrorClassNetwork
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return ErrorClassClient
	case resp.StatusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// Close releases idle connections held by the client.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
