package gen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"songsmith/internal/logger"
)

const maxOverloadRetries = 3

// baseRetryDelay is the first backoff interval; it doubles on each retry.
const baseRetryDelay = 2 * time.Second

// generateWithRetry wraps the underlying call with the shared overload
// policy: retry only on overload signals, exponential backoff starting at
// two seconds, give up after maxOverloadRetries retries. Every other error
// propagates on the first attempt.
func (c *Client) generateWithRetry(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= maxOverloadRetries; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(attempt)
			logger.Warn("Model overloaded, retrying",
				"model", model,
				"attempt", attempt,
				"delay", delay.String())
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
			c.sleep(delay)
		}

		resp, err := c.call(ctx, model, contents, config)
		if err == nil {
			return resp, nil
		}
		if !isOverloaded(err) {
			return nil, fmt.Errorf("generation request failed: %w", err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %v", ErrModelOverloaded, lastErr)
}

// backoffDelay returns 2s, 4s, 8s for attempts 1, 2, 3.
func backoffDelay(attempt int) time.Duration {
	return baseRetryDelay << (attempt - 1)
}

// isOverloaded reports whether an error is a transient capacity signal
// worth retrying: HTTP 503, an UNAVAILABLE status, or the capacity phrases
// the API embeds in plain messages.
func isOverloaded(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == 503 || apiErr.Status == "UNAVAILABLE" {
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "overloaded") || strings.Contains(msg, "temporarily unavailable")
}
