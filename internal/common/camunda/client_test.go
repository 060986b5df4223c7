// internal/common/camunda/client_test.go
package camunda

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "crs-workers/internal/common/errors"
)

func testClient() *Client {
	return &Client{
		config: &ClientConfig{
			GatewayAddress:    "localhost:26500",
			ConnectionTimeout: time.Second,
			RequestTimeout:    time.Second,
			RetryConfig: &RetryConfig{
				MaxRetries: 3,
				BaseDelay:  time.Millisecond,
				MaxDelay:   5 * time.Millisecond,
			},
		},
	}
}

func TestIsRetryableZeebeError(t *testing.T) {
	retryable := []string{
		"connection refused",
		"rpc error: connection reset by peer",
		"context deadline exceeded",
		"UNAVAILABLE: io exception",
		"write: broken pipe",
	}
	for _, msg := range retryable {
		assert.True(t, isRetryableZeebeError(errors.New(msg)), msg)
	}

	notRetryable := []string{
		"element not found",
		"invalid argument",
		"deployment already exists",
	}
	for _, msg := range notRetryable {
		assert.False(t, isRetryableZeebeError(errors.New(msg)), msg)
	}
}

func TestMapZeebeError(t *testing.T) {
	c := testClient()

	tests := []struct {
		name     string
		err      error
		wantCode apperrors.ErrorCode
	}{
		{"connection refused", errors.New("connection refused"), "EXTERNAL_SERVICE_ERROR"},
		{"unavailable", errors.New("UNAVAILABLE: io exception"), "EXTERNAL_SERVICE_ERROR"},
		{"deadline exceeded", errors.New("context deadline exceeded"), "TIMEOUT_ERROR"},
		{"not found", errors.New("process definition not found"), "RESOURCE_NOT_FOUND"},
		{"already exists", errors.New("deployment already exists"), "BUSINESS_RULE_VIOLATION"},
		{"unknown", errors.New("something unexpected"), "EXTERNAL_SERVICE_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := c.mapZeebeError(tt.err, "deploy", 1)

			var stdErr *apperrors.StandardError
			require.ErrorAs(t, mapped, &stdErr)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.Contains(t, stdErr.Message+stdErr.Details, "deploy")
		})
	}
}

func TestExecuteWithRetry(t *testing.T) {
	t.Run("succeeds after transient failures", func(t *testing.T) {
		c := testClient()
		attempts := 0

		result, err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
			attempts++
			if attempts < 3 {
				return nil, errors.New("connection refused")
			}
			return "ok", nil
		}, "topology")

		require.NoError(t, err)
		assert.Equal(t, "ok", result)
		assert.Equal(t, 3, attempts)
	})

	t.Run("non-retryable error fails immediately", func(t *testing.T) {
		c := testClient()
		attempts := 0

		_, err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
			attempts++
			return nil, errors.New("invalid argument")
		}, "deploy")

		require.Error(t, err)
		assert.Equal(t, 1, attempts)

		var stdErr *apperrors.StandardError
		require.ErrorAs(t, err, &stdErr)
	})

	t.Run("exhausts retries on persistent transient error", func(t *testing.T) {
		c := testClient()
		attempts := 0

		_, err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
			attempts++
			return nil, fmt.Errorf("attempt %d: connection reset", attempts)
		}, "topology")

		require.Error(t, err)
		assert.Equal(t, c.config.RetryConfig.MaxRetries+1, attempts)
	})

	t.Run("respects context cancellation between retries", func(t *testing.T) {
		c := testClient()
		c.config.RetryConfig.BaseDelay = 100 * time.Millisecond

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := c.ExecuteWithRetry(ctx, func(ctx context.Context) (interface{}, error) {
			return nil, errors.New("connection refused")
		}, "topology")

		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
