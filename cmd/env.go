package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/draftedge/prospect-rank/internal/engine"
	"github.com/draftedge/prospect-rank/internal/rankcache"
	"github.com/draftedge/prospect-rank/internal/service"
	"github.com/draftedge/prospect-rank/internal/store"
)

// env bundles the wired subsystems a command needs.
type env struct {
	Store   store.Store
	Service *service.Ranking
}

// Close releases held resources.
func (e *env) Close() {
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("close store", zap.Error(err))
	}
}

// openStore opens the configured store backend.
func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// initService wires store, engine, cache, and the ranking service.
func initService(ctx context.Context) (*env, error) {
	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	weights, err := engine.LoadWeights(cfg.Ranking.WeightsFile)
	if err != nil {
		st.Close()
		return nil, err
	}

	eng := engine.New(cfg.Ranking, weights)
	cache := rankcache.New(cfg.Ranking.CacheTTL())
	svc := service.New(st, eng, cache, cfg.Ranking.Lookback())

	return &env{Store: st, Service: svc}, nil
}
