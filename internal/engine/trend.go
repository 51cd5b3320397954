package engine

import (
	"math"
	"time"

	"github.com/draftedge/prospect-rank/internal/model"
	"github.com/draftedge/prospect-rank/internal/segment"
)

// windowMean is the weighted mean of the samples falling in [from, to).
// ok is false when the window holds fewer than minSamples observations.
func windowMean(obs []model.MetricObservation, metric string, from, to time.Time, minSamples int) (mean float64, ok bool) {
	var sum, weight float64
	n := 0
	for _, o := range obs {
		if o.Metric != metric || o.ObservedAt.Before(from) || !o.ObservedAt.Before(to) {
			continue
		}
		w := o.Weight
		if w <= 0 {
			w = 1
		}
		sum += o.Value * w
		weight += w
		n++
	}
	if n < minSamples || weight == 0 {
		return 0, false
	}
	return sum / weight, true
}

// trendAdjustment detects directional momentum by comparing a recent
// window against the immediately preceding baseline window of equal
// length. Per-metric relative changes (signed so improvement is positive)
// are combined with the position's weight table, then mapped onto
// [-TrendMaxMagnitude, +TrendMaxMagnitude] with saturation at
// TrendSaturationPct relative change.
//
// Prospects without two full windows for any weighted metric get a neutral
// adjustment, reported as indeterminate.
func (e *Engine) trendAdjustment(pos model.Position, obs []model.MetricObservation, now time.Time) (adj float64, indeterminate bool) {
	window := e.cfg.TrendWindow()
	recentFrom := now.Add(-window)
	baseFrom := now.Add(-2 * window)

	tableWeights := e.weights[pos]

	var weighted, weightSum float64
	for _, def := range segment.MetricsFor(pos) {
		w := tableWeights[def.Name]
		if w <= 0 {
			continue
		}
		recent, okRecent := windowMean(obs, def.Name, recentFrom, now, e.cfg.MinTrendSamples)
		base, okBase := windowMean(obs, def.Name, baseFrom, recentFrom, e.cfg.MinTrendSamples)
		if !okRecent || !okBase || math.Abs(base) < 1e-9 {
			continue
		}
		rel := (recent - base) / math.Abs(base)
		if def.Direction == model.LowerIsBetter {
			rel = -rel
		}
		weighted += rel * w
		weightSum += w
	}

	if weightSum == 0 {
		return 0, true
	}

	relChange := weighted / weightSum
	saturation := e.cfg.TrendSaturationPct / 100
	scaled := relChange / saturation
	if scaled > 1 {
		scaled = 1
	} else if scaled < -1 {
		scaled = -1
	}
	return scaled * e.cfg.TrendMaxMagnitude, false
}
