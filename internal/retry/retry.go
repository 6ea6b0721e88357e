// Package retry runs a call with bounded, deterministic exponential backoff.
package retry

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Policy configures an Invoker.
type Policy struct {
	// MaxAttempts counts the first call. Values below 1 are treated as 1.
	MaxAttempts int
	BaseDelay   time.Duration
	// MaxDelay caps a single wait. Zero means no cap.
	MaxDelay time.Duration
	// RetryOn lists the error kinds that are retried, matched with errors.Is.
	// Any other error is returned after the first attempt.
	RetryOn []error
}

// Delay returns the wait after the given failed attempt (1-indexed):
// min(BaseDelay * 2^(attempt-1), MaxDelay).
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if p.MaxDelay > 0 && delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

// Retryable reports whether err matches one of the configured kinds.
func (p Policy) Retryable(err error) bool {
	for _, kind := range p.RetryOn {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// SleepFunc waits for d. It returns early with an error if ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Invoker executes calls under a Policy. Waits happen on the calling goroutine,
// so concurrent invocations never block each other.
type Invoker struct {
	policy Policy
	sleep  SleepFunc
	logger *slog.Logger
}

// Option customizes an Invoker.
type Option func(*Invoker)

// WithSleep replaces the wait function, mainly for tests.
func WithSleep(fn SleepFunc) Option {
	return func(i *Invoker) { i.sleep = fn }
}

// NewInvoker returns an Invoker for policy.
func NewInvoker(policy Policy, logger *slog.Logger, opts ...Option) *Invoker {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	inv := &Invoker{policy: policy, sleep: sleepContext, logger: logger}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Do calls fn until it succeeds, fails with a non-retryable error, or the
// attempts are exhausted. The last error is returned unchanged.
func (i *Invoker) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= i.policy.MaxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !i.policy.Retryable(err) {
			return err
		}
		if attempt == i.policy.MaxAttempts {
			i.logger.ErrorContext(ctx, "call failed, no attempts left",
				"attempts", attempt,
				"error", err,
			)
			return err
		}

		delay := i.policy.Delay(attempt)
		i.logger.WarnContext(ctx, "call failed, retrying",
			"attempt", attempt,
			"max_attempts", i.policy.MaxAttempts,
			"delay", delay,
			"error", err,
		)
		if sleepErr := i.sleep(ctx, delay); sleepErr != nil {
			return errors.Join(err, sleepErr)
		}
	}
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
