// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"move-improve-workers/internal/common/config"
	"move-improve-workers/internal/common/errors"
	"move-improve-workers/internal/common/logger"
)

// Client wraps the Zeebe gRPC client with connection retry and health checks.
type Client struct {
	client zbc.Client
	config *ClientConfig
}

// ClientConfig holds configuration for the Camunda/Zeebe client.
type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	RetryConfig            *RetryConfig
}

// RetryConfig defines retry behavior for transient failures.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

var DefaultRetryConfig = &RetryConfig{
	MaxRetries: 10,
	BaseDelay:  2 * time.Second,
	MaxDelay:   30 * time.Second,
}

// ConfigFrom builds a plaintext client config from the camunda section.
func ConfigFrom(cfg config.CamundaConfig) *ClientConfig {
	timeout := config.GetDuration(cfg.RequestTimeout)
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ClientConfig{
		GatewayAddress:         cfg.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      timeout,
		RetryConfig:            DefaultRetryConfig,
	}
}

// Connect dials the gateway and waits for a topology response, retrying
// transient failures with exponential backoff.
func Connect(ctx context.Context, cfg *ClientConfig, log logger.Logger) (*Client, error) {
	if cfg.RetryConfig == nil {
		cfg.RetryConfig = DefaultRetryConfig
	}

	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.GatewayAddress,
		UsePlaintextConnection: cfg.UsePlaintextConnection,
	})
	if err != nil {
		return nil, errors.NewWorkflowEngineError("create client", err, false)
	}

	c := &Client{client: zeebeClient, config: cfg}
	err = c.withRetry(ctx, "topology", log, func(ctx context.Context) error {
		return c.HealthCheck(ctx)
	})
	if err != nil {
		zeebeClient.Close()
		return nil, err
	}
	return c, nil
}

// GetClient returns the raw Zeebe client for job workers.
func (c *Client) GetClient() zbc.Client {
	return c.client
}

func (c *Client) Close() error {
	return c.client.Close()
}

// HealthCheck asks the gateway for its topology.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectionTimeout)
	defer cancel()

	if _, err := c.client.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

func (c *Client) withRetry(ctx context.Context, operation string, log logger.Logger, fn func(context.Context) error) error {
	rc := c.config.RetryConfig
	var lastErr error

	for attempt := 0; attempt <= rc.MaxRetries; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !isRetryableZeebeError(lastErr) || attempt == rc.MaxRetries {
			break
		}

		delay := backoff(rc, attempt)
		log.Warn("zeebe request failed, retrying", map[string]interface{}{
			"operation":   operation,
			"attempt":     attempt + 1,
			"maxRetries":  rc.MaxRetries,
			"nextRetryIn": delay.String(),
			"error":       lastErr,
		})

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return errors.NewWorkflowEngineError(operation, ctx.Err(), true)
		}
	}
	return mapZeebeError(operation, lastErr)
}

func backoff(rc *RetryConfig, attempt int) time.Duration {
	delay := rc.BaseDelay * time.Duration(1<<attempt)
	if delay > rc.MaxDelay || delay <= 0 {
		delay = rc.MaxDelay
	}
	return delay
}

var retryablePhrases = []string{
	"connection refused",
	"connection reset",
	"timeout",
	"deadline exceeded",
	"unavailable",
	"unreachable",
	"broken pipe",
}

// isRetryableZeebeError checks if the error is transient and should be retried.
func isRetryableZeebeError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, phrase := range retryablePhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

func mapZeebeError(operation string, err error) error {
	return errors.NewWorkflowEngineError(operation, err, isRetryableZeebeError(err))
}
