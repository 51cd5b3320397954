// Package store is the persistence boundary of the ranking engine. The
// ingestion pipeline writes prospects and observations; the engine only
// performs bulk reads per ranking pass.
package store

import (
	"context"
	"time"

	"github.com/draftedge/prospect-rank/internal/model"
)

// Store defines the persistence interface consumed by the ranking engine.
type Store interface {
	// Bulk reads (one per ranking pass).
	ListProspects(ctx context.Context) ([]model.Prospect, error)
	ListObservations(ctx context.Context, lookback time.Duration) ([]model.MetricObservation, error)

	// Writes, used by the ingestion collaborator and seed tooling.
	InsertProspect(ctx context.Context, p model.Prospect) error
	InsertObservation(ctx context.Context, o model.MetricObservation) error

	// Lifecycle.
	Migrate(ctx context.Context) error
	Close() error
}
