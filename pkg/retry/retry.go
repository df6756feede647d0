// Package retry wraps fallible operations with exponential backoff. It is the
// consumer-side budget applied to recoverable errors before an event is
// routed to the dead-letter queue.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Config controls the retry behavior.
type Config struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// InitialBackoff is the sleep before the second attempt.
	InitialBackoff time.Duration
	// MaxBackoff caps the doubling.
	MaxBackoff time.Duration
}

// DefaultConfig is the per-message retry budget used by consumers.
var DefaultConfig = Config{
	MaxAttempts:    3,
	InitialBackoff: 100 * time.Millisecond,
	MaxBackoff:     5 * time.Second,
}

func (c Config) validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("retry: MaxAttempts must be >= 1, got %d", c.MaxAttempts)
	}
	if c.InitialBackoff < 0 || c.MaxBackoff < 0 {
		return fmt.Errorf("retry: backoff durations must be non-negative")
	}
	return nil
}

// PermanentError wraps an error that must not consume further attempts.
type PermanentError struct {
	Err error
}

// Permanent marks err as not retryable. Do stops immediately and returns the
// wrapped error.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Do runs op until it succeeds or the budget is exhausted. The first attempt
// runs immediately; each failure sleeps the current backoff and doubles it up
// to MaxBackoff. The last error is returned after MaxAttempts attempts. An
// error wrapped with Permanent returns at once, unwrapped. Context
// cancellation during a sleep aborts with the context error.
func Do(ctx context.Context, cfg Config, op func(ctx context.Context) error) error {
	if err := cfg.validate(); err != nil {
		return err
	}

	backoff := cfg.InitialBackoff
	var lastErr error
	for attempt := 1; ; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		var perm *PermanentError
		if errors.As(lastErr, &perm) {
			return perm.Err
		}
		if attempt >= cfg.MaxAttempts {
			return lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
		if cfg.MaxBackoff > 0 && backoff > cfg.MaxBackoff {
			backoff = cfg.MaxBackoff
		}
	}
}
