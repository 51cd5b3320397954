package engine

import (
	"sort"

	"github.com/draftedge/prospect-rank/internal/cohort"
	"github.com/draftedge/prospect-rank/internal/model"
)

// perfResult is the outcome of the performance modifier calculation for
// one prospect.
type perfResult struct {
	Modifier     float64
	Breakdown    []model.MetricPercentile
	Insufficient bool
}

// aggregateMetrics reduces tier-selected observations to one weighted mean
// per metric. Zero-weight samples count as weight 1 so legacy rows without
// recorded minutes still participate.
func aggregateMetrics(obs []model.MetricObservation) map[string]float64 {
	sums := make(map[string]float64)
	weights := make(map[string]float64)
	for _, o := range obs {
		w := o.Weight
		if w <= 0 {
			w = 1
		}
		sums[o.Metric] += o.Value * w
		weights[o.Metric] += w
	}
	aggs := make(map[string]float64, len(sums))
	for metric, sum := range sums {
		aggs[metric] = sum / weights[metric]
	}
	return aggs
}

// cohortKey builds the comparison-population key for a metric. Level
// restriction is a configuration choice; the metric name already implies
// the position.
func (e *Engine) cohortKey(metric string, level model.Level) cohort.Key {
	key := cohort.Key{Metric: metric}
	if e.cfg.CohortByLevel {
		key.Level = level
	}
	return key
}

// performanceModifier folds the prospect's per-metric percentiles into one
// bounded modifier. Metrics without a usable aggregate or cohort are
// excluded and the remaining weights renormalized; with nothing usable the
// modifier is 0 and flagged insufficient, never estimated.
func (e *Engine) performanceModifier(pos model.Position, level model.Level, aggs map[string]float64, table *cohort.Table) perfResult {
	tableWeights := e.weights[pos]

	var breakdown []model.MetricPercentile
	var weighted, weightSum float64
	for _, def := range model.MetricCatalog() {
		if !def.AppliesTo(pos) {
			continue
		}
		w := tableWeights[def.Name]
		pct := cohort.Unknown
		if agg, ok := aggs[def.Name]; ok {
			pct = table.Percentile(e.cohortKey(def.Name, level), agg, def.Direction)
		}
		breakdown = append(breakdown, model.MetricPercentile{
			Metric:     def.Name,
			Percentile: pct,
			Weight:     w,
		})
		if pct != cohort.Unknown && w > 0 {
			weighted += pct * w
			weightSum += w
		}
	}
	sort.Slice(breakdown, func(i, j int) bool { return breakdown[i].Metric < breakdown[j].Metric })

	if weightSum == 0 {
		return perfResult{Breakdown: breakdown, Insufficient: true}
	}

	composite := weighted / weightSum
	modifier := (composite - 50) / 50 * e.cfg.PerfMaxMagnitude
	return perfResult{Modifier: modifier, Breakdown: breakdown}
}
