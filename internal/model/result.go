package model

import "time"

// DataTier is the granularity of usable observations found for a prospect
// in one ranking pass.
type DataTier string

const (
	DataTierEvent   DataTier = "event"
	DataTierSummary DataTier = "summary"
	DataTierNone    DataTier = "none"
)

// Flag annotates a composite result with a data-availability condition.
// Flags are informational; they never abort a ranking pass.
type Flag string

const (
	FlagInsufficientData   Flag = "insufficient_data"
	FlagTrendIndeterminate Flag = "trend_indeterminate"
	FlagAgeUnknown         Flag = "age_unknown"
)

// MetricPercentile is one entry of the per-metric breakdown.
type MetricPercentile struct {
	Metric     string  `json:"metric"`
	Percentile float64 `json:"percentile"` // -1 when unknown
	Weight     float64 `json:"weight"`
}

// CompositeResult is the derived, cache-owned scoring record for one
// prospect within a snapshot.
type CompositeResult struct {
	Rank         int      `json:"rank"`
	ProspectID   string   `json:"prospect_id"`
	Name         string   `json:"name"`
	Position     Position `json:"position"`
	Organization string   `json:"organization"`
	Level        Level    `json:"level"`
	Age          *float64 `json:"age,omitempty"`

	ScoutGrade          float64 `json:"scout_grade"`
	PerformanceModifier float64 `json:"performance_modifier"`
	TrendAdjustment     float64 `json:"trend_adjustment"`
	AgeAdjustment       float64 `json:"age_adjustment"`
	TotalAdjustment     float64 `json:"total_adjustment"`
	CompositeScore      float64 `json:"composite_score"`
	Tier                int     `json:"tier"`

	Breakdown []MetricPercentile `json:"per_metric_breakdown,omitempty"`
	DataTier  DataTier           `json:"data_tier_used"`
	Flags     []Flag             `json:"flags,omitempty"`
}

// HasFlag reports whether the result carries the given flag.
func (r *CompositeResult) HasFlag(f Flag) bool {
	for _, have := range r.Flags {
		if have == f {
			return true
		}
	}
	return false
}

// Snapshot is the full ordered ranking for one computation pass. It is
// replaced wholesale, never partially updated.
type Snapshot struct {
	ID          string            `json:"id"`
	GeneratedAt time.Time         `json:"generated_at"`
	Results     []CompositeResult `json:"results"`
}
