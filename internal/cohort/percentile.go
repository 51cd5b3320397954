// Package cohort computes percentile standings against query-time comparison
// populations. Cohorts are never persisted; a Table is rebuilt for every
// ranking pass and frozen before any scoring reads it.
package cohort

import (
	"sort"

	"github.com/draftedge/prospect-rank/internal/model"
)

// Unknown is the sentinel standing returned when no percentile can be
// computed (empty cohort or missing subject value). Callers must exclude
// it from weighted aggregation.
const Unknown = -1.0

// goodness maps a raw metric value into a space where larger is always
// better. Lower-is-better metrics are negated before ranking, not after,
// so 100 always means best.
func goodness(v float64, dir model.Direction) float64 {
	if dir == model.LowerIsBetter {
		return -v
	}
	return v
}

// Percentile returns the standing of value within cohort as a number in
// [0, 100]. The tie rule is inclusive: the standing is the share of cohort
// values that are no better than the subject, so the best value scores
// exactly 100 and a single-element cohort scores 100. An empty cohort
// yields Unknown.
func Percentile(value float64, cohort []float64, dir model.Direction) float64 {
	if len(cohort) == 0 {
		return Unknown
	}
	g := goodness(value, dir)
	noBetter := 0
	for _, c := range cohort {
		if goodness(c, dir) <= g {
			noBetter++
		}
	}
	return 100 * float64(noBetter) / float64(len(cohort))
}

// Key identifies one comparison population. Metric names are already
// position-scoped (a goalie metric never has skater samples), so position
// is implied; Level is set only when level-restricted cohorts are enabled.
type Key struct {
	Metric string
	Level  model.Level
}

// Table holds the per-key cohort value sets for one ranking pass. Values
// are stored in goodness space. Add until done, then Freeze; reads before
// Freeze or writes after it are programming errors.
type Table struct {
	byKey  map[Key][]float64
	frozen bool
}

// NewTable returns an empty cohort table.
func NewTable() *Table {
	return &Table{byKey: make(map[Key][]float64)}
}

// Add records one prospect's aggregate value for a metric cohort.
func (t *Table) Add(key Key, value float64, dir model.Direction) {
	if t.frozen {
		panic("cohort: Add after Freeze")
	}
	t.byKey[key] = append(t.byKey[key], goodness(value, dir))
}

// Freeze sorts every cohort. After Freeze the table is immutable and safe
// for concurrent readers.
func (t *Table) Freeze() {
	for _, vals := range t.byKey {
		sort.Float64s(vals)
	}
	t.frozen = true
}

// Size returns the number of samples recorded for a key.
func (t *Table) Size(key Key) int {
	return len(t.byKey[key])
}

// Percentile returns the standing of value within the keyed cohort using
// the same inclusive tie rule as the package-level Percentile. Unknown is
// returned when the cohort is empty.
func (t *Table) Percentile(key Key, value float64, dir model.Direction) float64 {
	if !t.frozen {
		panic("cohort: Percentile before Freeze")
	}
	vals := t.byKey[key]
	if len(vals) == 0 {
		return Unknown
	}
	g := goodness(value, dir)
	// First index strictly greater than g == count of values no better.
	noBetter := sort.Search(len(vals), func(i int) bool { return vals[i] > g })
	return 100 * float64(noBetter) / float64(len(vals))
}
