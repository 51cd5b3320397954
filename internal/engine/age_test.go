package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftedge/prospect-rank/internal/model"
)

func TestAgeAdjustment_AsymmetricCaps(t *testing.T) {
	e := testEngine()

	// Benchmark for NCAA is 21. Five years young saturates the bonus cap
	// (5 * 1.5 slope > 5 cap); five years old saturates the penalty cap
	// (5 * 1.0 slope > 3 cap). Magnitudes differ by configuration.
	young, unknown := e.ageAdjustment(agePtr(16), model.LevelNCAA)
	require.False(t, unknown)
	assert.InDelta(t, 5.0, young, 0.001)

	old, unknown := e.ageAdjustment(agePtr(26), model.LevelNCAA)
	require.False(t, unknown)
	assert.InDelta(t, -3.0, old, 0.001)

	assert.Positive(t, young)
	assert.Negative(t, old)
	assert.NotEqual(t, young, -old)
}

func TestAgeAdjustment_SlopesBelowCaps(t *testing.T) {
	e := testEngine()

	tests := []struct {
		name string
		age  float64
		want float64
	}{
		{"two years young", 19, 3.0},    // 2 * 1.5
		{"one year old", 22, -1.0},      // -1 * 1.0
		{"exactly at benchmark", 21, 0}, // delta 0 lands on the young side of the fold
		{"half year young", 20.5, 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adj, unknown := e.ageAdjustment(agePtr(tt.age), model.LevelNCAA)
			require.False(t, unknown)
			assert.InDelta(t, tt.want, adj, 0.001)
		})
	}
}

func TestAgeAdjustment_Monotonic(t *testing.T) {
	e := testEngine()

	prev := 100.0
	for age := 15.0; age <= 30; age += 0.5 {
		adj, _ := e.ageAdjustment(agePtr(age), model.LevelNCAA)
		assert.LessOrEqual(t, adj, prev, "age %v", age)
		prev = adj
	}
}

func TestAgeAdjustment_MissingInputs(t *testing.T) {
	e := testEngine()

	adj, unknown := e.ageAdjustment(nil, model.LevelNCAA)
	assert.True(t, unknown)
	assert.Zero(t, adj)

	// junior_b has no benchmark in the test config.
	adj, unknown = e.ageAdjustment(agePtr(17), model.LevelJuniorB)
	assert.True(t, unknown)
	assert.Zero(t, adj)
}
