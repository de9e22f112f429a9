package resilience

import (
	"context"
	"errors"
	"math/rand/v2"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// RetryConfig bounds Retry.
type RetryConfig struct {
	MaxAttempts    int           // total attempts including the first; default 3
	InitialBackoff time.Duration // default 200ms, doubled per attempt
	MaxBackoff     time.Duration // default 5s

	// ShouldRetry defaults to IsTransient.
	ShouldRetry func(err error) bool
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 200 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 5 * time.Second
	}
	if c.ShouldRetry == nil {
		c.ShouldRetry = IsTransient
	}
	return c
}

// Retry calls fn until it succeeds, returns a non-retryable error, runs out
// of attempts or ctx is done. Only idempotent operations belong here.
func Retry(ctx context.Context, cfg RetryConfig, op string, fn func(ctx context.Context) error) error {
	cfg = cfg.withDefaults()

	delay := cfg.InitialBackoff
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt >= cfg.MaxAttempts || ctx.Err() != nil || !cfg.ShouldRetry(err) {
			return err
		}

		zap.L().Warn("resilience: retrying",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		// ±25% jitter
		wait := delay + time.Duration((rand.Float64()*0.5-0.25)*float64(delay))
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}

		delay *= 2
		if delay > cfg.MaxBackoff {
			delay = cfg.MaxBackoff
		}
	}
}

// transientMessages are driver error fragments worth another attempt.
var transientMessages = []string{
	"database is locked",
	"sqlite_busy",
	"connection reset by peer",
	"connection refused",
	"broken pipe",
	"i/o timeout",
	"too many clients",
}

// IsTransient reports whether err looks like a temporary store condition:
// a network timeout, a pgx error that is safe to retry, a lock contention
// error or a dropped connection. Context cancellation is never transient.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, m := range transientMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
