package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePosition(t *testing.T) {
	for _, p := range AllPositions() {
		got, err := ParsePosition(string(p))
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	_, err := ParsePosition("rover")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown position")

	// Case-sensitive on purpose: values are stored normalized.
	_, err = ParsePosition("Forward")
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	for _, l := range AllLevels() {
		got, err := ParseLevel(string(l))
		require.NoError(t, err)
		assert.Equal(t, l, got)
	}

	_, err := ParseLevel("beer_league")
	assert.Error(t, err)
}

func TestMetricCatalog(t *testing.T) {
	require.Len(t, MetricCatalog(), 6)

	for _, d := range MetricCatalog() {
		got, ok := MetricDefFor(d.Name)
		require.True(t, ok, d.Name)
		assert.Equal(t, d.Direction, got.Direction)
		assert.NotEmpty(t, d.Positions)
	}

	_, ok := MetricDefFor("corsi_for_pct")
	assert.False(t, ok)
}

func TestMetricAppliesTo(t *testing.T) {
	g, ok := MetricDefFor("save_pct")
	require.True(t, ok)
	assert.True(t, g.AppliesTo(PositionGoalie))
	assert.False(t, g.AppliesTo(PositionForward))

	s, ok := MetricDefFor("giveaways_per_60")
	require.True(t, ok)
	assert.Equal(t, LowerIsBetter, s.Direction)
	assert.True(t, s.AppliesTo(PositionForward))
	assert.True(t, s.AppliesTo(PositionDefense))
	assert.False(t, s.AppliesTo(PositionGoalie))
}

func TestHasFlag(t *testing.T) {
	r := CompositeResult{Flags: []Flag{FlagAgeUnknown}}
	assert.True(t, r.HasFlag(FlagAgeUnknown))
	assert.False(t, r.HasFlag(FlagInsufficientData))
}
