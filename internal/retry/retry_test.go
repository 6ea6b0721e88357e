package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errTransient = errors.New("transient")
	errFatal     = errors.New("fatal")
)

type recorder struct {
	delays []time.Duration
}

func (r *recorder) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func newTestInvoker(maxAttempts int, rec *recorder) *Invoker {
	return NewInvoker(Policy{
		MaxAttempts: maxAttempts,
		BaseDelay:   2 * time.Second,
		MaxDelay:    5 * time.Second,
		RetryOn:     []error{errTransient},
	}, nil, WithSleep(rec.sleep))
}

func TestPolicy_Delay(t *testing.T) {
	p := Policy{BaseDelay: time.Second, MaxDelay: 10 * time.Second}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 10 * time.Second},
		{40, 10 * time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Delay(tt.attempt), "attempt %d", tt.attempt)
	}

	uncapped := Policy{BaseDelay: time.Second}
	assert.Equal(t, 16*time.Second, uncapped.Delay(5))
}

func TestInvoker_SucceedsAfterFailures(t *testing.T) {
	for n := range 3 {
		rec := &recorder{}
		inv := newTestInvoker(3, rec)

		calls := 0
		var got string
		err := inv.Do(context.Background(), func(context.Context) error {
			calls++
			if calls <= n {
				return errTransient
			}
			got = "ok"
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, "ok", got)
		assert.Equal(t, n+1, calls)
		assert.Len(t, rec.delays, n)
	}
}

func TestInvoker_ExhaustsAttempts(t *testing.T) {
	rec := &recorder{}
	inv := newTestInvoker(3, rec)

	calls := 0
	err := inv.Do(context.Background(), func(context.Context) error {
		calls++
		return errTransient
	})

	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, rec.delays)
}

func TestInvoker_NonRetryableFailsFast(t *testing.T) {
	rec := &recorder{}
	inv := newTestInvoker(5, rec)

	calls := 0
	err := inv.Do(context.Background(), func(context.Context) error {
		calls++
		return errFatal
	})

	assert.ErrorIs(t, err, errFatal)
	assert.Equal(t, 1, calls)
	assert.Empty(t, rec.delays)
}

func TestInvoker_MinimumOneAttempt(t *testing.T) {
	rec := &recorder{}
	inv := newTestInvoker(0, rec)

	calls := 0
	_ = inv.Do(context.Background(), func(context.Context) error {
		calls++
		return errTransient
	})
	assert.Equal(t, 1, calls)
}

func TestInvoker_StopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inv := NewInvoker(Policy{MaxAttempts: 3, BaseDelay: time.Hour, RetryOn: []error{errTransient}}, nil)

	calls := 0
	err := inv.Do(ctx, func(context.Context) error {
		calls++
		return errTransient
	})

	assert.ErrorIs(t, err, errTransient)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
