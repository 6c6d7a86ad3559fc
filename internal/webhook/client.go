package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/zinc-sig/ftlaunch/internal/logging"
	"github.com/zinc-sig/ftlaunch/internal/retry"
)

// Client represents a webhook HTTP client
type Client struct {
	httpClient *http.Client
	config     *Config
	policy     *retry.Policy
	logger     *zap.Logger
}

// NewClient creates a new webhook client
func NewClient(config *Config, policy *retry.Policy, logger *zap.Logger) *Client {
	if config.Method == "" {
		config.Method = http.MethodPost
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if policy == nil {
		policy = DefaultRetryPolicy()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second, // Per-request timeout
		},
		config: config,
		policy: policy,
		logger: logging.OrNop(logger),
	}
}

// Send sends the payload to the webhook with retry logic
func (c *Client) Send(ctx context.Context, payload any) error {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	// Overall timeout covers every attempt
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	policy := *c.policy
	policy.Notify = func(attempt int, delay time.Duration, err error) {
		c.logger.Info("retrying webhook",
			zap.String("url", c.config.URL),
			zap.Int("attempt", attempt),
			zap.Int("max_retries", policy.MaxRetries),
			zap.Duration("delay", delay),
			zap.Error(err))
	}

	err = retry.Do(ctx, &policy, func(attempt int) error {
		statusCode, err := c.sendRequest(ctx, jsonPayload)
		if err != nil {
			return fmt.Errorf("attempt %d failed: %w", attempt+1, err)
		}
		if statusCode >= 200 && statusCode < 300 {
			c.logger.Debug("webhook delivered", zap.String("url", c.config.URL), zap.Int("status", statusCode))
			return nil
		}

		statusErr := fmt.Errorf("attempt %d failed with status %d", attempt+1, statusCode)
		if !isRetryableStatus(statusCode) {
			c.logger.Warn("non-retryable webhook status", zap.Int("status", statusCode))
			return retry.Permanent(statusErr)
		}
		return statusErr
	})
	if err != nil {
		return fmt.Errorf("webhook %w", err)
	}
	return nil
}

func (c *Client) sendRequest(ctx context.Context, payload []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, c.config.Method, c.config.URL, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.config.Headers {
		req.Header.Set(k, v)
	}

	switch c.config.AuthType {
	case "bearer":
		req.Header.Set("Authorization", "Bearer "+c.config.AuthToken)
	case "api-key":
		req.Header.Set("X-API-Key", c.config.AuthToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	// Drain response body to reuse connection
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}
