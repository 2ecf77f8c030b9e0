package backoff

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDo(t *testing.T) {
	ctx := context.Background()

	t.Run("SucceedsFirstAttempt", func(t *testing.T) {
		calls := 0
		err := Do(ctx, 3, time.Millisecond, func(ctx context.Context) error {
			calls++
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("RetriesTransientThenSucceeds", func(t *testing.T) {
		calls := 0
		err := Do(ctx, 3, time.Millisecond, func(ctx context.Context) error {
			calls++
			if calls < 2 {
				return Transient(errors.New("flaky"))
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("BudgetExhaustedAtMaxAttempts", func(t *testing.T) {
		calls := 0
		boom := errors.New("still down")
		err := Do(ctx, 3, time.Millisecond, func(ctx context.Context) error {
			calls++
			return Transient(boom)
		})
		assert.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 3, calls)
	})

	t.Run("NonTransientAbortsImmediately", func(t *testing.T) {
		calls := 0
		fatal := errors.New("expired")
		err := Do(ctx, 3, time.Millisecond, func(ctx context.Context) error {
			calls++
			return fatal
		})
		assert.ErrorIs(t, err, fatal)
		assert.Equal(t, 1, calls)
	})

	t.Run("ContextCancelStopsWaiting", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		calls := 0
		go func() {
			time.Sleep(5 * time.Millisecond)
			cancel()
		}()
		err := Do(cctx, 10, time.Hour, func(ctx context.Context) error {
			calls++
			return Transient(errors.New("flaky"))
		})
		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}

func TestLinear(t *testing.T) {
	b := Linear(time.Second)
	d1, stop1 := b.Next()
	d2, stop2 := b.Next()
	assert.False(t, stop1)
	assert.False(t, stop2)
	assert.Equal(t, time.Second, d1)
	assert.Equal(t, 2*time.Second, d2)
}
