package engine

import "github.com/draftedge/prospect-rank/internal/model"

// ageAdjustment compares a prospect's age against the benchmark for its
// current level. Young-for-level earns a bonus, old-for-level a penalty;
// slopes and caps differ per side and are configured, not incidental.
// Missing age or an unknown level benchmark yields 0, reported as unknown.
func (e *Engine) ageAdjustment(age *float64, level model.Level) (adj float64, unknown bool) {
	if age == nil {
		return 0, true
	}
	benchmark, ok := e.cfg.AgeBenchmarks[string(level)]
	if !ok {
		return 0, true
	}

	delta := benchmark - *age
	if delta >= 0 {
		adj = delta * e.cfg.YoungSlope
		if adj > e.cfg.YoungCap {
			adj = e.cfg.YoungCap
		}
		return adj, false
	}
	adj = delta * e.cfg.OldSlope
	if adj < -e.cfg.OldCap {
		adj = -e.cfg.OldCap
	}
	return adj, false
}
