package scraper

import (
	"context"
	"time"

	"github.com/aluiziolira/go-scrape-yes24/config"
)

// retryPolicy bounds how often a single page is re-requested.
type retryPolicy struct {
	max        int
	base       time.Duration
	backoffMax time.Duration
}

func newRetryPolicy(cfg *config.Config) retryPolicy {
	return retryPolicy{
		max:        cfg.MaxRetries,
		base:       cfg.RetryBackoff,
		backoffMax: cfg.RetryBackoffMax,
	}
}

// allow reports whether another attempt may follow the given failed one
// (attempts are 1-based).
func (rp retryPolicy) allow(attempt int, err error) bool {
	return attempt <= rp.max && retryable(err)
}

func (rp retryPolicy) backoff(attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}

	base := rp.base
	if base <= 0 {
		base = 100 * time.Millisecond
	}

	delay := base * time.Duration(1<<(attempt-1))
	if max := rp.backoffMax; max > 0 && delay > max {
		delay = max
	}
	return delay
}

// wait sleeps for the backoff of attempt or until ctx is done.
func (rp retryPolicy) wait(ctx context.Context, attempt int) error {
	timer := time.NewTimer(rp.backoff(attempt))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
