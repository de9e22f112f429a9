package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

var errFail = errors.New("fail")

func fail(context.Context) error { return errFail }
func ok(context.Context) error   { return nil }

func newTestBreaker(threshold int) (*Breaker, *time.Time) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := NewBreaker(BreakerConfig{Name: "test", FailureThreshold: threshold, ResetTimeout: time.Minute})
	b.now = func() time.Time { return now }
	return b, &now
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b, _ := newTestBreaker(3)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, b.Do(ctx, fail), errFail)
	}
	assert.Equal(t, Closed, b.State())
	assert.Equal(t, 2, b.Failures())

	assert.ErrorIs(t, b.Do(ctx, fail), errFail)
	assert.Equal(t, Open, b.State())

	called := false
	err := b.Do(ctx, func(context.Context) error { called = true; return nil })
	assert.True(t, errors.Is(err, ErrCircuitOpen))
	assert.False(t, called)
}

func TestBreaker_SuccessResetsFailures(t *testing.T) {
	b, _ := newTestBreaker(3)
	ctx := context.Background()

	_ = b.Do(ctx, fail)
	_ = b.Do(ctx, fail)
	require.NoError(t, b.Do(ctx, ok))
	assert.Zero(t, b.Failures())

	_ = b.Do(ctx, fail)
	assert.Equal(t, Closed, b.State())
}

func TestBreaker_HalfOpenProbe(t *testing.T) {
	b, now := newTestBreaker(1)
	ctx := context.Background()

	_ = b.Do(ctx, fail)
	require.Equal(t, Open, b.State())

	*now = now.Add(time.Minute)
	assert.Equal(t, HalfOpen, b.State())

	// failed probe reopens
	assert.ErrorIs(t, b.Do(ctx, fail), errFail)
	assert.Equal(t, Open, b.State())
	assert.ErrorIs(t, b.Do(ctx, ok), ErrCircuitOpen)

	*now = now.Add(2 * time.Minute)
	require.NoError(t, b.Do(ctx, ok))
	assert.Equal(t, Closed, b.State())
}

func TestBreaker_ShouldTrip(t *testing.T) {
	ignored := errors.New("ignored")
	b := NewBreaker(BreakerConfig{
		FailureThreshold: 1,
		ShouldTrip:       func(err error) bool { return !errors.Is(err, ignored) },
	})

	_ = b.Do(context.Background(), func(context.Context) error { return ignored })
	assert.Equal(t, Closed, b.State())
}

func TestCall_ReturnsValue(t *testing.T) {
	b, _ := newTestBreaker(1)
	v, err := Call(context.Background(), b, func(context.Context) (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	_, _ = Call(context.Background(), b, func(context.Context) (int, error) { return 0, errFail })
	v, err = Call(context.Background(), b, func(context.Context) (int, error) { return 7, nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Zero(t, v)
}

func TestBreaker_Concurrent(t *testing.T) {
	b := NewBreaker(BreakerConfig{FailureThreshold: 1000})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_ = b.Do(context.Background(), fail)
			} else {
				_ = b.Do(context.Background(), ok)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, Closed, b.State())
}

func TestBreakerConfigFrom(t *testing.T) {
	cfg := BreakerConfigFrom("store", 0, 0)
	assert.Equal(t, 5, cfg.FailureThreshold)
	assert.Equal(t, 30*time.Second, cfg.ResetTimeout)

	cfg = BreakerConfigFrom("store", 2, 10)
	assert.Equal(t, "store", cfg.Name)
	assert.Equal(t, 2, cfg.FailureThreshold)
	assert.Equal(t, 10*time.Second, cfg.ResetTimeout)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", Closed.String())
	assert.Equal(t, "open", Open.String())
	assert.Equal(t, "half-open", HalfOpen.String())
	assert.Equal(t, "unknown", State(9).String())
}
