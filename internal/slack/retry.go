package slack

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// sleepFunc suspends for d or until ctx is done. Injected so tests don't
// wait out real backoff delays.
type sleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// withRetry runs fn, retrying up to tuning.MaxAttempts times with
// exponential backoff starting at tuning.BackoffBase. A rate-limit error
// carrying a Retry-After longer than the computed backoff wins. The last
// error is returned once the retry budget is exhausted.
func (c *Client) withRetry(ctx context.Context, op string, fn func() error) error {
	backoff := c.tuning.BackoffBase
	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt >= c.tuning.MaxAttempts {
			break
		}

		wait := backoff
		var rateLimited *slack.RateLimitedError
		if errors.As(err, &rateLimited) && rateLimited.RetryAfter > wait {
			wait = rateLimited.RetryAfter
		}

		c.logger.Warn("Request failed, backing off",
			zap.String("operation", op),
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait),
			zap.Error(err))

		if serr := c.sleep(ctx, wait); serr != nil {
			return serr
		}
		backoff *= 2
	}
	return fmt.Errorf("%s failed after %d retries: %w", op, c.tuning.MaxAttempts, err)
}
