package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chinmaygupta26/elyx/types"
)

func fastPolicy() Policy {
	return Policy{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		MaxDelay:     4 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func transient() error {
	return types.NewError(types.ErrRateLimited, "slow down").WithRetryable(true)
}

func TestRetryer_SucceedsFirstTime(t *testing.T) {
	r := New(fastPolicy(), zap.NewNop())

	calls := 0
	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryer_RetriesTransientErrors(t *testing.T) {
	var waits []time.Duration
	p := fastPolicy()
	p.OnRetry = func(_ int, _ error, d time.Duration) { waits = append(waits, d) }
	r := New(p, zap.NewNop())

	calls := 0
	got, err := Do(context.Background(), r, func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", transient()
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, waits)
}

func TestRetryer_StopsOnPermanentError(t *testing.T) {
	r := New(fastPolicy(), zap.NewNop())
	permanent := types.NewError(types.ErrUnauthorized, "bad key")

	calls := 0
	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		return permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestRetryer_ExhaustsAttempts(t *testing.T) {
	r := New(fastPolicy(), zap.NewNop())

	calls := 0
	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		return transient()
	})

	require.Error(t, err)
	assert.Equal(t, 4, calls)
	assert.True(t, types.IsErrorCode(err, types.ErrRateLimited))
	assert.Contains(t, err.Error(), "failed after 3 retries")
}

func TestRetryer_CustomClassifier(t *testing.T) {
	p := fastPolicy()
	p.MaxRetries = 1
	p.ShouldRetry = func(error) bool { return true }
	r := New(p, nil)

	calls := 0
	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		return errors.New("plain")
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetryer_ContextCancelled(t *testing.T) {
	p := fastPolicy()
	p.InitialDelay = time.Hour
	p.MaxDelay = time.Hour
	r := New(p, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := r.Do(ctx, func(context.Context) error {
		calls++
		cancel()
		return transient()
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRetryer_DelayIsCappedAndJitterBounded(t *testing.T) {
	p := Policy{MaxRetries: 10, InitialDelay: 10 * time.Millisecond, MaxDelay: 40 * time.Millisecond, Multiplier: 2, Jitter: true}
	r := New(p, zap.NewNop())

	for attempt := 1; attempt <= 10; attempt++ {
		d := r.delay(attempt)
		assert.GreaterOrEqual(t, d, 10*time.Millisecond)
		assert.LessOrEqual(t, d, 50*time.Millisecond)
	}
}

func TestNew_NormalisesPolicy(t *testing.T) {
	r := New(Policy{MaxRetries: -2, Multiplier: 0.1}, nil)

	assert.Equal(t, 0, r.policy.MaxRetries)
	assert.Equal(t, 2.0, r.policy.Multiplier)
	assert.Equal(t, r.policy.InitialDelay, r.policy.MaxDelay)
	assert.NotNil(t, r.policy.ShouldRetry)
}
