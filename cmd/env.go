package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/orgmap-cli/internal/config"
	"github.com/sells-group/orgmap-cli/internal/pipeline"
	"github.com/sells-group/orgmap-cli/internal/source"
	"github.com/sells-group/orgmap-cli/internal/store"
)

// initStore opens and migrates the configured store.
func initStore(ctx context.Context, c *config.Config) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch c.Store.Driver {
	case "sqlite":
		st, err = store.NewSQLite(c.Store.DatabaseURL)
	case "postgres":
		st, err = store.NewPostgres(ctx, c.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", c.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	if n, err := st.DeleteExpired(ctx); err != nil {
		zap.L().Warn("store: cache cleanup failed", zap.Error(err))
	} else if n > 0 {
		zap.L().Debug("store: expired cache entries removed", zap.Int("count", n))
	}
	return st, nil
}

// pipelineEnv holds the long-lived pieces a command needs.
type pipelineEnv struct {
	Store    store.Store
	Guard    *source.Guard
	Pipeline *pipeline.Pipeline
}

// Close releases the store.
func (e *pipelineEnv) Close() {
	if e.Store != nil {
		if err := e.Store.Close(); err != nil {
			zap.L().Warn("store: close failed", zap.Error(err))
		}
	}
}

// initPipeline validates config for mode and wires store, sources and pipeline.
func initPipeline(ctx context.Context, c *config.Config, mode string, opts pipeline.Options) (*pipelineEnv, error) {
	if err := c.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx, c)
	if err != nil {
		return nil, err
	}

	guard := source.GuardFromConfig(c, st)
	searcher, err := source.NewSearcher(c, guard)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	fetcher := source.NewFetcher(c, guard)

	return &pipelineEnv{
		Store:    st,
		Guard:    guard,
		Pipeline: pipeline.New(opts, searcher, fetcher, st),
	}, nil
}
