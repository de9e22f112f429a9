package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/findings-cli/internal/config"
	"github.com/sells-group/findings-cli/internal/department"
	"github.com/sells-group/findings-cli/internal/query"
	"github.com/sells-group/findings-cli/internal/resilience"
	"github.com/sells-group/findings-cli/internal/store"
	"github.com/sells-group/findings-cli/internal/tagger"
)

// appEnv holds the collaborators shared by the store-backed commands.
type appEnv struct {
	Store       store.FindingStore
	Guarded     *resilience.GuardedStore
	Departments *department.Service
}

// Close releases the underlying store.
func (e *appEnv) Close() {
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("close store", zap.Error(err))
	}
}

// initStore opens the configured findings store.
func initStore(ctx context.Context, c *config.Config) (store.FindingStore, error) {
	switch c.Store.Driver {
	case "sqlite":
		return store.NewSQLite(c.Store.SQLitePath)
	case "postgres":
		return store.NewPostgres(ctx, c.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: c.Store.MaxConns,
			MinConns: c.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", c.Store.Driver)
	}
}

// initEnv opens and migrates the store and wraps it for query and import use.
func initEnv(ctx context.Context, c *config.Config) (*appEnv, error) {
	st, err := initStore(ctx, c)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	guarded := resilience.NewGuardedStore(st,
		resilience.BreakerConfigFrom("findings-store", c.Breaker.FailureThreshold, c.Breaker.ResetTimeoutSecs),
		resilience.RetryConfig{MaxAttempts: c.Breaker.RetryAttempts},
	)
	return &appEnv{
		Store:       st,
		Guarded:     guarded,
		Departments: department.NewService(st),
	}, nil
}

// buildMatcher registers the built-in patterns plus any custom pattern file.
func buildMatcher(c *config.Config) (*query.Matcher, error) {
	m, err := query.NewMatcher(query.DefaultPatterns()...)
	if err != nil {
		return nil, eris.Wrap(err, "register default patterns")
	}
	if c.Query.CustomPatterns == "" {
		return m, nil
	}

	custom, err := query.LoadPatternFile(c.Query.CustomPatterns)
	if err != nil {
		return nil, err
	}
	for _, p := range custom {
		if err := m.AddPattern(p); err != nil {
			return nil, eris.Wrapf(err, "register custom pattern %q", p.ID)
		}
	}
	zap.L().Info("loaded custom patterns",
		zap.String("file", c.Query.CustomPatterns),
		zap.Int("count", len(custom)),
	)
	return m, nil
}

// buildProcessor wires the matcher and an executor over env's guarded store.
func buildProcessor(c *config.Config, env *appEnv) (*query.Processor, error) {
	m, err := buildMatcher(c)
	if err != nil {
		return nil, err
	}
	exec := query.NewExecutor(env.Guarded, env.Departments,
		query.WithDefaultLimit(c.Query.DefaultLimit),
		query.WithParallelFanout(c.Query.ParallelFanout),
	)
	return query.NewProcessor(m, exec), nil
}

func newTagger(c *config.Config) *tagger.Tagger {
	if len(c.Tagging.Keywords) > 0 {
		return tagger.New(c.Tagging.Keywords)
	}
	return tagger.New(tagger.DefaultKeywords())
}
