package engine

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/draftedge/prospect-rank/internal/model"
)

// WeightTable maps metric names to their share of the composite percentile
// for one position. Weights sum to 1.0 per position.
type WeightTable map[string]float64

// Weights holds the per-position metric weight tables.
type Weights map[model.Position]WeightTable

// DefaultWeights returns the default weight tables. Scoring metrics dominate
// for forwards; defensive puck management carries more weight on the blue
// line; goalies split between efficiency and workload-adjusted results.
func DefaultWeights() Weights {
	return Weights{
		model.PositionForward: {
			"goals_per_60":     0.30,
			"assists_per_60":   0.30,
			"shots_per_60":     0.20,
			"giveaways_per_60": 0.20,
		},
		model.PositionDefense: {
			"goals_per_60":     0.15,
			"assists_per_60":   0.30,
			"shots_per_60":     0.20,
			"giveaways_per_60": 0.35,
		},
		model.PositionGoalie: {
			"save_pct":          0.60,
			"goals_against_avg": 0.40,
		},
	}
}

// weightsFile is the YAML structure of a calibration file. Positions not
// present keep their defaults.
type weightsFile struct {
	Positions map[string]map[string]float64 `yaml:"positions"`
}

// LoadWeights reads a YAML calibration file and merges it over the
// defaults. An empty path returns the defaults unchanged.
func LoadWeights(path string) (Weights, error) {
	w := DefaultWeights()
	if path == "" {
		return w, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "engine: read weights file")
	}

	var wf weightsFile
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, eris.Wrap(err, "engine: parse weights file")
	}

	for posName, table := range wf.Positions {
		pos, err := model.ParsePosition(posName)
		if err != nil {
			return nil, eris.Wrap(err, "engine: weights file")
		}
		w[pos] = WeightTable(table)
	}

	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// Validate checks that every table references known, applicable metrics and
// sums to 1.0 within tolerance.
func (w Weights) Validate() error {
	var errs []string
	for _, pos := range model.AllPositions() {
		table, ok := w[pos]
		if !ok || len(table) == 0 {
			errs = append(errs, fmt.Sprintf("position %s has no weight table", pos))
			continue
		}
		var sum float64
		for metric, weight := range table {
			def, ok := model.MetricDefFor(metric)
			if !ok {
				errs = append(errs, fmt.Sprintf("%s: unknown metric %q", pos, metric))
				continue
			}
			if !def.AppliesTo(pos) {
				errs = append(errs, fmt.Sprintf("%s: metric %q does not apply", pos, metric))
			}
			if weight < 0 {
				errs = append(errs, fmt.Sprintf("%s: weight for %q must be >= 0", pos, metric))
			}
			sum += weight
		}
		if math.Abs(sum-1.0) > 0.001 {
			errs = append(errs, fmt.Sprintf("%s: weights must sum to 1.0, got %.3f", pos, sum))
		}
	}
	if len(errs) > 0 {
		return eris.Errorf("engine: weight validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
