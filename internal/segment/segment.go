// Package segment decides which metrics apply to a prospect and which data
// tier its observations support.
package segment

import "github.com/draftedge/prospect-rank/internal/model"

// MetricsFor returns the metric definitions relevant for a position.
func MetricsFor(pos model.Position) []model.MetricDef {
	var defs []model.MetricDef
	for _, d := range model.MetricCatalog() {
		if d.AppliesTo(pos) {
			defs = append(defs, d)
		}
	}
	return defs
}

// tierProbe attempts to satisfy one data tier from a prospect's
// observations. It returns the usable subset and whether the tier applies.
type tierProbe struct {
	tier  model.DataTier
	apply func(obs []model.MetricObservation, minEventSamples int) ([]model.MetricObservation, bool)
}

// Probes are ordered by preference; classification short-circuits to the
// first applicable tier and never mixes granularities for one prospect in
// one pass.
var probes = []tierProbe{
	{
		tier: model.DataTierEvent,
		apply: func(obs []model.MetricObservation, minEventSamples int) ([]model.MetricObservation, bool) {
			sel := filterGranularity(obs, model.GranularityEvent)
			if len(sel) < minEventSamples {
				return nil, false
			}
			return sel, true
		},
	},
	{
		tier: model.DataTierSummary,
		apply: func(obs []model.MetricObservation, _ int) ([]model.MetricObservation, bool) {
			sel := filterGranularity(obs, model.GranularitySummary)
			if len(sel) == 0 {
				return nil, false
			}
			return sel, true
		},
	},
}

// Classify selects the best available data tier for a prospect's
// observations. Event-level data is preferred when at least
// minEventSamples observations exist; season summaries are the fallback;
// with neither the terminal DataTierNone is returned with no observations.
func Classify(obs []model.MetricObservation, minEventSamples int) (model.DataTier, []model.MetricObservation) {
	for _, p := range probes {
		if sel, ok := p.apply(obs, minEventSamples); ok {
			return p.tier, sel
		}
	}
	return model.DataTierNone, nil
}

func filterGranularity(obs []model.MetricObservation, g model.Granularity) []model.MetricObservation {
	var sel []model.MetricObservation
	for _, o := range obs {
		if o.Granularity == g {
			sel = append(sel, o)
		}
	}
	return sel
}
