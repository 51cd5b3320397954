package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftedge/prospect-rank/internal/model"
)

// twoWindowObs emits one observation per window for a single metric:
// baseline at 45 days ago, recent at 15 days ago (30-day windows).
func twoWindowObs(metric string, baseline, recent float64) []model.MetricObservation {
	return []model.MetricObservation{
		eventObs("p1", metric, baseline, 45),
		eventObs("p1", metric, recent, 15),
	}
}

func TestTrendAdjustment_Improvement(t *testing.T) {
	e := testEngine()

	// +25% on every weighted metric saturates to the full +5.
	obs := append(twoWindowObs("goals_per_60", 2.0, 2.5),
		twoWindowObs("assists_per_60", 2.0, 2.5)...)
	obs = append(obs, twoWindowObs("shots_per_60", 8.0, 10.0)...)
	obs = append(obs, twoWindowObs("giveaways_per_60", 4.0, 3.0)...)

	adj, indeterminate := e.trendAdjustment(model.PositionForward, obs, fixedNow)
	require.False(t, indeterminate)
	assert.InDelta(t, 5.0, adj, 0.001)
}

func TestTrendAdjustment_Decline(t *testing.T) {
	e := testEngine()

	obs := append(twoWindowObs("goals_per_60", 2.5, 2.0),
		twoWindowObs("assists_per_60", 2.5, 2.0)...)

	adj, indeterminate := e.trendAdjustment(model.PositionForward, obs, fixedNow)
	require.False(t, indeterminate)
	assert.Negative(t, adj)
}

// A drop in a lower-is-better metric is an improvement.
func TestTrendAdjustment_LowerIsBetterInverted(t *testing.T) {
	e := testEngine()

	obs := twoWindowObs("giveaways_per_60", 4.0, 2.0)

	adj, indeterminate := e.trendAdjustment(model.PositionForward, obs, fixedNow)
	require.False(t, indeterminate)
	assert.Positive(t, adj)
}

func TestTrendAdjustment_SaturatesAtExtremes(t *testing.T) {
	e := testEngine()

	// A 10x jump does not extrapolate past the cap.
	obs := twoWindowObs("goals_per_60", 0.5, 5.0)
	adj, indeterminate := e.trendAdjustment(model.PositionForward, obs, fixedNow)
	require.False(t, indeterminate)
	assert.InDelta(t, 5.0, adj, 0.001)

	// And a collapse saturates on the other side.
	obs = twoWindowObs("goals_per_60", 5.0, 0.5)
	adj, indeterminate = e.trendAdjustment(model.PositionForward, obs, fixedNow)
	require.False(t, indeterminate)
	assert.InDelta(t, -5.0, adj, 0.001)
}

func TestTrendAdjustment_IndeterminateWithoutTwoWindows(t *testing.T) {
	e := testEngine()

	tests := []struct {
		name string
		obs  []model.MetricObservation
	}{
		{"no observations", nil},
		{"recent window only", []model.MetricObservation{eventObs("p1", "goals_per_60", 2.0, 10)}},
		{"baseline window only", []model.MetricObservation{eventObs("p1", "goals_per_60", 2.0, 40)}},
		{"outside both windows", []model.MetricObservation{eventObs("p1", "goals_per_60", 2.0, 100)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adj, indeterminate := e.trendAdjustment(model.PositionForward, tt.obs, fixedNow)
			assert.True(t, indeterminate)
			assert.Zero(t, adj)
		})
	}
}

func TestTrendAdjustment_MinSamplesPerWindow(t *testing.T) {
	e := testEngine()
	e.cfg.MinTrendSamples = 2

	// One sample per window is below the two-sample minimum.
	obs := twoWindowObs("goals_per_60", 2.0, 2.5)
	adj, indeterminate := e.trendAdjustment(model.PositionForward, obs, fixedNow)
	assert.True(t, indeterminate)
	assert.Zero(t, adj)
}
