package resilience

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/findings-cli/internal/model"
	"github.com/sells-group/findings-cli/internal/store"
)

// GuardedStore wraps a FindingStore. Reads go through a Breaker and are
// never retried; finding inserts upsert by id, so they are retried on
// transient errors before counting against the breaker.
type GuardedStore struct {
	store.FindingStore

	breaker *Breaker
	retry   RetryConfig
}

// NewGuardedStore wraps s. Rejected query shapes (store.ErrInvalidQuery) do
// not count as breaker failures.
func NewGuardedStore(s store.FindingStore, cfg BreakerConfig, retry RetryConfig) *GuardedStore {
	trip := cfg.ShouldTrip
	cfg.ShouldTrip = func(err error) bool {
		if err == nil || eris.Is(err, store.ErrInvalidQuery) {
			return false
		}
		return trip == nil || trip(err)
	}
	return &GuardedStore{FindingStore: s, breaker: NewBreaker(cfg), retry: retry}
}

// Breaker exposes the underlying breaker for health reporting.
func (g *GuardedStore) Breaker() *Breaker {
	return g.breaker
}

// GetAll runs one store query through the breaker.
func (g *GuardedStore) GetAll(ctx context.Context, opts model.QueryOptions) ([]model.Finding, error) {
	return Call(ctx, g.breaker, func(ctx context.Context) ([]model.Finding, error) {
		return g.FindingStore.GetAll(ctx, opts)
	})
}

// InsertFindings retries transient failures inside one breaker call.
func (g *GuardedStore) InsertFindings(ctx context.Context, findings []model.Finding) (int64, error) {
	return Call(ctx, g.breaker, func(ctx context.Context) (int64, error) {
		var n int64
		err := Retry(ctx, g.retry, "insert findings", func(ctx context.Context) error {
			var err error
			n, err = g.FindingStore.InsertFindings(ctx, findings)
			return err
		})
		return n, err
	})
}
