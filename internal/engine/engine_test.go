package engine

import (
	"time"

	"github.com/draftedge/prospect-rank/internal/config"
	"github.com/draftedge/prospect-rank/internal/model"
)

// fixedNow anchors every window calculation in tests.
var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testRankingConfig() config.RankingConfig {
	return config.RankingConfig{
		LookbackDays:       365,
		CacheTTLMinutes:    15,
		CohortByLevel:      false,
		MinEventSamples:    1,
		PerfMaxMagnitude:   10,
		TrendMaxMagnitude:  5,
		TrendSaturationPct: 25,
		TrendWindowDays:    30,
		MinTrendSamples:    1,
		YoungSlope:         1.5,
		YoungCap:           5,
		OldSlope:           1,
		OldCap:             3,
		PerfWeight:         1,
		TrendWeight:        1,
		AgeWeight:          1,
		TotalAdjustmentCap: 10,
		TierBoundaries:     []int{2, 5},
		AgeBenchmarks: map[string]float64{
			"junior_a":  18,
			"ncaa":      21,
			"pro_minor": 24,
		},
	}
}

func testEngine() *Engine {
	e := New(testRankingConfig(), DefaultWeights())
	e.now = func() time.Time { return fixedNow }
	return e
}

func agePtr(v float64) *float64 { return &v }

// forward builds a minimal forward prospect.
func forward(id string, grade float64) model.Prospect {
	return model.Prospect{
		ID:         id,
		Name:       "Prospect " + id,
		Position:   model.PositionForward,
		Level:      model.LevelNCAA,
		ScoutGrade: grade,
	}
}

// eventObs builds one event-granularity observation n days before fixedNow.
func eventObs(prospectID, metric string, value float64, daysAgo int) model.MetricObservation {
	return model.MetricObservation{
		ProspectID:  prospectID,
		Metric:      metric,
		Value:       value,
		Weight:      60,
		Granularity: model.GranularityEvent,
		ObservedAt:  fixedNow.Add(-time.Duration(daysAgo) * 24 * time.Hour),
	}
}

// skaterObs emits one observation per forward metric with the prospect's
// standing controlled by spread: 0 = worst in pool, 1 = best.
func skaterObs(prospectID string, spread float64, daysAgo int) []model.MetricObservation {
	return []model.MetricObservation{
		eventObs(prospectID, "goals_per_60", spread, daysAgo),
		eventObs(prospectID, "assists_per_60", spread, daysAgo),
		eventObs(prospectID, "shots_per_60", 10*spread, daysAgo),
		// Lower is better: best prospect gives the puck away least.
		eventObs(prospectID, "giveaways_per_60", 5-4*spread, daysAgo),
	}
}
