package rankcache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftedge/prospect-rank/internal/model"
)

func snapshotWithID(id string) *model.Snapshot {
	return &model.Snapshot{ID: id, GeneratedAt: time.Now()}
}

func TestCache_GetComputesOnce(t *testing.T) {
	c := New(time.Minute)
	var computes atomic.Int32

	compute := func(ctx context.Context) (*model.Snapshot, error) {
		computes.Add(1)
		return snapshotWithID("snap-1"), nil
	}

	first, err := c.Get(context.Background(), "global", compute)
	require.NoError(t, err)
	second, err := c.Get(context.Background(), "global", compute)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int32(1), computes.Load())
	assert.Equal(t, StateReady, c.State("global"))
}

// N concurrent callers against a cold cache trigger exactly one
// computation and all share its result.
func TestCache_SingleFlight(t *testing.T) {
	c := New(time.Minute)
	var computes atomic.Int32
	started := make(chan struct{})

	compute := func(ctx context.Context) (*model.Snapshot, error) {
		computes.Add(1)
		<-started // hold every caller in the same flight
		return snapshotWithID("snap-sf"), nil
	}

	const callers = 20
	results := make([]*model.Snapshot, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = c.Get(context.Background(), "global", compute)
		}()
	}

	// Give every goroutine a chance to join the flight, then release it.
	time.Sleep(50 * time.Millisecond)
	close(started)
	wg.Wait()

	assert.Equal(t, int32(1), computes.Load())
	for i := range results {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
		assert.Equal(t, "snap-sf", results[i].ID)
	}
}

func TestCache_TTLExpiryRecomputes(t *testing.T) {
	c := New(time.Minute)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	var computes atomic.Int32
	compute := func(ctx context.Context) (*model.Snapshot, error) {
		computes.Add(1)
		return snapshotWithID(time.Now().String()), nil
	}

	_, err := c.Get(context.Background(), "global", compute)
	require.NoError(t, err)

	// Within TTL: served from cache.
	now = now.Add(30 * time.Second)
	_, err = c.Get(context.Background(), "global", compute)
	require.NoError(t, err)
	assert.Equal(t, int32(1), computes.Load())
	assert.Equal(t, StateReady, c.State("global"))

	// Past TTL: stale, then recomputed.
	now = now.Add(time.Minute)
	assert.Equal(t, StateStale, c.State("global"))
	_, err = c.Get(context.Background(), "global", compute)
	require.NoError(t, err)
	assert.Equal(t, int32(2), computes.Load())
}

// On failure the error reaches the caller, a prior stale snapshot is
// retained, and the next call retries.
func TestCache_FailureRetainsStaleAndRetries(t *testing.T) {
	c := New(time.Minute)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	good := func(ctx context.Context) (*model.Snapshot, error) {
		return snapshotWithID("good"), nil
	}
	bad := func(ctx context.Context) (*model.Snapshot, error) {
		return nil, eris.New("store unreachable")
	}

	_, err := c.Get(context.Background(), "global", good)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = c.Get(context.Background(), "global", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store unreachable")

	// The stale snapshot is still present, not corrupted or emptied.
	assert.Equal(t, StateStale, c.State("global"))

	// A retry with a working compute recovers.
	snap, err := c.Get(context.Background(), "global", good)
	require.NoError(t, err)
	assert.Equal(t, "good", snap.ID)
	assert.Equal(t, StateReady, c.State("global"))
}

func TestCache_FailureOnColdKeyStaysEmpty(t *testing.T) {
	c := New(time.Minute)

	_, err := c.Get(context.Background(), "global", func(ctx context.Context) (*model.Snapshot, error) {
		return nil, eris.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, StateEmpty, c.State("global"))
}

func TestCache_Invalidate(t *testing.T) {
	c := New(time.Minute)
	var computes atomic.Int32
	compute := func(ctx context.Context) (*model.Snapshot, error) {
		computes.Add(1)
		return snapshotWithID("snap"), nil
	}

	_, err := c.Get(context.Background(), "global", compute)
	require.NoError(t, err)

	c.Invalidate("global")
	assert.Equal(t, StateEmpty, c.State("global"))

	_, err = c.Get(context.Background(), "global", compute)
	require.NoError(t, err)
	assert.Equal(t, int32(2), computes.Load())
}

// A canceled waiter gets a retryable error while the computation runs to
// completion and populates the cache for others.
func TestCache_CanceledWaiterDoesNotAbortComputation(t *testing.T) {
	c := New(time.Minute)
	release := make(chan struct{})
	done := make(chan struct{})

	compute := func(ctx context.Context) (*model.Snapshot, error) {
		<-release
		close(done)
		return snapshotWithID("survivor"), nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := c.Get(ctx, "global", compute)
		errCh <- err
	}()

	// Cancel the waiter while the flight is blocked.
	time.Sleep(20 * time.Millisecond)
	cancel()
	err := <-errCh
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	// Release the computation; it must still finish and land in the cache.
	close(release)
	<-done
	assert.Eventually(t, func() bool {
		return c.State("global") == StateReady
	}, time.Second, 10*time.Millisecond)

	snap, err := c.Get(context.Background(), "global", compute)
	require.NoError(t, err)
	assert.Equal(t, "survivor", snap.ID)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "empty", StateEmpty.String())
	assert.Equal(t, "computing", StateComputing.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "stale", StateStale.String())
}
