package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbooks/finbooks/pkg/retry"
)

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), retry.Config{MaxAttempts: 3, InitialBackoff: time.Millisecond}, func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoSucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), retry.Config{MaxAttempts: 5, InitialBackoff: time.Millisecond, MaxBackoff: 4 * time.Millisecond}, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAndReturnsLastError(t *testing.T) {
	lastErr := errors.New("attempt 3")
	calls := 0
	err := retry.Do(context.Background(), retry.Config{MaxAttempts: 3, InitialBackoff: time.Millisecond}, func(context.Context) error {
		calls++
		if calls == 3 {
			return lastErr
		}
		return errors.New("earlier")
	})
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, lastErr)
}

func TestDoBackoffDoublesUpToMax(t *testing.T) {
	var gaps []time.Duration
	last := time.Now()
	cfg := retry.Config{MaxAttempts: 4, InitialBackoff: 20 * time.Millisecond, MaxBackoff: 40 * time.Millisecond}
	_ = retry.Do(context.Background(), cfg, func(context.Context) error {
		now := time.Now()
		gaps = append(gaps, now.Sub(last))
		last = now
		return errors.New("always")
	})
	require.Len(t, gaps, 4)
	// gaps[0] is the immediate first attempt; the sleeps are 20ms, 40ms, 40ms (capped).
	assert.Less(t, gaps[0], 10*time.Millisecond)
	assert.GreaterOrEqual(t, gaps[1], 20*time.Millisecond)
	assert.GreaterOrEqual(t, gaps[2], 40*time.Millisecond)
	assert.GreaterOrEqual(t, gaps[3], 40*time.Millisecond)
	assert.Less(t, gaps[3], 200*time.Millisecond)
}

func TestDoContextCanceledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	errCh := make(chan error, 1)
	go func() {
		errCh <- retry.Do(ctx, retry.Config{MaxAttempts: 3, InitialBackoff: time.Hour}, func(context.Context) error {
			calls++
			return errors.New("fail")
		})
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	case <-time.After(2 * time.Second):
		t.Fatal("Do did not honor cancellation")
	}
}

func TestDoRejectsInvalidConfig(t *testing.T) {
	err := retry.Do(context.Background(), retry.Config{MaxAttempts: 0}, func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestDoPermanentStopsImmediately(t *testing.T) {
	calls := 0
	base := errors.New("bad input")
	err := retry.Do(context.Background(), retry.Config{MaxAttempts: 5, InitialBackoff: time.Millisecond}, func(context.Context) error {
		calls++
		return retry.Permanent(base)
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, base)
}

func TestPermanentNilIsNil(t *testing.T) {
	assert.NoError(t, retry.Permanent(nil))
}
