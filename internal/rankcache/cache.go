// Package rankcache memoizes computed ranking snapshots for a bounded
// validity window with single-flight recomputation per key.
package rankcache

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/draftedge/prospect-rank/internal/model"
)

// State describes a cache key's position in its lifecycle. Exposed for
// introspection and tests; Get callers never need it.
type State int

const (
	StateEmpty State = iota
	StateComputing
	StateReady
	StateStale
)

func (s State) String() string {
	switch s {
	case StateComputing:
		return "computing"
	case StateReady:
		return "ready"
	case StateStale:
		return "stale"
	default:
		return "empty"
	}
}

// ComputeFunc builds a fresh snapshot. It must perform the full-pool
// computation; the cache never stores partial results.
type ComputeFunc func(ctx context.Context) (*model.Snapshot, error)

type entry struct {
	snap      *model.Snapshot
	fetchedAt time.Time
}

// Cache is the only shared mutable state of the ranking engine. Per key,
// exactly one computation runs at a time; concurrent callers of Get wait
// for and share the in-flight result. On computation failure a prior stale
// snapshot is retained (the next Get retries) and the error is surfaced to
// every waiter of that flight.
type Cache struct {
	ttl   time.Duration
	group singleflight.Group

	mu       sync.Mutex
	entries  map[string]*entry
	inflight map[string]bool

	now func() time.Time
}

// New creates a Cache whose snapshots are valid for ttl.
func New(ttl time.Duration) *Cache {
	return &Cache{
		ttl:      ttl,
		entries:  make(map[string]*entry),
		inflight: make(map[string]bool),
		now:      time.Now,
	}
}

// fresh reports whether an entry is within its validity window.
func (c *Cache) fresh(e *entry) bool {
	return e != nil && c.now().Sub(e.fetchedAt) < c.ttl
}

// Get returns the snapshot for key, computing it if absent or expired.
// If the caller's context is canceled while a computation is in flight,
// the computation continues to completion for other waiters and the caller
// gets a retryable error.
func (c *Cache) Get(ctx context.Context, key string, compute ComputeFunc) (*model.Snapshot, error) {
	c.mu.Lock()
	if e := c.entries[key]; c.fresh(e) {
		c.mu.Unlock()
		return e.snap, nil
	}
	c.mu.Unlock()

	// Detach the computation from the triggering caller so a disconnect
	// does not waste work other waiters depend on.
	computeCtx := context.WithoutCancel(ctx)

	ch := c.group.DoChan(key, func() (any, error) {
		c.setInflight(key, true)
		defer c.setInflight(key, false)

		// A racing caller may have completed a computation between our
		// freshness check and this flight starting.
		c.mu.Lock()
		if e := c.entries[key]; c.fresh(e) {
			c.mu.Unlock()
			return e.snap, nil
		}
		c.mu.Unlock()

		snap, err := compute(computeCtx)
		if err != nil {
			zap.L().Warn("rankcache: computation failed",
				zap.String("key", key),
				zap.Error(err),
			)
			return nil, eris.Wrap(err, "rankcache: compute snapshot")
		}

		c.mu.Lock()
		c.entries[key] = &entry{snap: snap, fetchedAt: c.now()}
		c.mu.Unlock()
		return snap, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.Snapshot), nil
	case <-ctx.Done():
		return nil, eris.Wrap(ctx.Err(), "rankcache: wait for in-flight computation")
	}
}

// Invalidate forces the next Get for key to recompute.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidateAll drops every cached snapshot.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]*entry)
	c.mu.Unlock()
}

// State reports the lifecycle state of a key.
func (c *Cache) State(key string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[key] {
		return StateComputing
	}
	e, ok := c.entries[key]
	switch {
	case !ok:
		return StateEmpty
	case c.fresh(e):
		return StateReady
	default:
		return StateStale
	}
}

func (c *Cache) setInflight(key string, v bool) {
	c.mu.Lock()
	if v {
		c.inflight[key] = true
	} else {
		delete(c.inflight, key)
	}
	c.mu.Unlock()
}
