// Package backoff provides the bounded linear-retry policy used by the
// profile bootstrap. It is a thin combinator over sethvargo/go-retry so the
// attempt budget and wait schedule live in one tested place instead of being
// inlined as loop-with-sleep at call sites.
package backoff

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sethvargo/go-retry"
)

// Linear returns a backoff that waits base, 2*base, 3*base, ... between
// attempts.
func Linear(base time.Duration) retry.Backoff {
	var attempt int64
	return retry.BackoffFunc(func() (time.Duration, bool) {
		n := atomic.AddInt64(&attempt, 1)
		return time.Duration(n) * base, false
	})
}

// Transient marks err as retryable. Errors not wrapped by Transient abort the
// retry loop immediately.
func Transient(err error) error {
	return retry.RetryableError(err)
}

// Do runs f up to maxAttempts times, waiting base, 2*base, ... between
// attempts. Only errors marked Transient are retried; the context cancels the
// wait.
func Do(ctx context.Context, maxAttempts uint64, base time.Duration, f func(context.Context) error) error {
	if maxAttempts == 0 {
		maxAttempts = 1
	}
	b := retry.WithMaxRetries(maxAttempts-1, Linear(base))
	return retry.Do(ctx, b, f)
}
