package model

import "time"

// Direction indicates whether a higher or lower metric value is favorable.
type Direction string

const (
	HigherIsBetter Direction = "higher"
	LowerIsBetter  Direction = "lower"
)

// Granularity is the sampling granularity of an observation.
type Granularity string

const (
	GranularityEvent   Granularity = "event"   // per-game, event-derived
	GranularitySummary Granularity = "summary" // season aggregate
)

// MetricObservation is one (prospect, metric, value) sample. Observations
// accumulate over time; the engine only aggregates them.
type MetricObservation struct {
	ProspectID  string      `json:"prospect_id" yaml:"prospect_id"`
	Metric      string      `json:"metric" yaml:"metric"`
	Value       float64     `json:"value" yaml:"value"`
	Weight      float64     `json:"weight" yaml:"weight"` // sample weight: minutes for skaters, shots faced for goalies
	Granularity Granularity `json:"granularity" yaml:"granularity"`
	ObservedAt  time.Time   `json:"observed_at" yaml:"observed_at"`
}

// MetricDef is the static definition of a metric: its direction and the
// positions it applies to.
type MetricDef struct {
	Name      string
	Direction Direction
	Positions []Position
}

// AppliesTo reports whether the metric is relevant for the given position.
func (d MetricDef) AppliesTo(pos Position) bool {
	for _, p := range d.Positions {
		if p == pos {
			return true
		}
	}
	return false
}

var skaters = []Position{PositionForward, PositionDefense}

// metricCatalog is the fixed set of metrics the engine understands.
var metricCatalog = []MetricDef{
	{Name: "goals_per_60", Direction: HigherIsBetter, Positions: skaters},
	{Name: "assists_per_60", Direction: HigherIsBetter, Positions: skaters},
	{Name: "shots_per_60", Direction: HigherIsBetter, Positions: skaters},
	{Name: "giveaways_per_60", Direction: LowerIsBetter, Positions: skaters},
	{Name: "save_pct", Direction: HigherIsBetter, Positions: []Position{PositionGoalie}},
	{Name: "goals_against_avg", Direction: LowerIsBetter, Positions: []Position{PositionGoalie}},
}

// MetricCatalog returns the full metric catalog.
func MetricCatalog() []MetricDef {
	return metricCatalog
}

// MetricDefFor looks up a metric definition by name.
func MetricDefFor(name string) (MetricDef, bool) {
	for _, d := range metricCatalog {
		if d.Name == name {
			return d, true
		}
	}
	return MetricDef{}, false
}
