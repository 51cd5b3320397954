// Package engine computes composite prospect scores: a static scout grade
// plus capped, weighted performance, trend, and age adjustments, ranked
// and tier-classified within the full pool.
package engine

import (
	"context"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/draftedge/prospect-rank/internal/cohort"
	"github.com/draftedge/prospect-rank/internal/config"
	"github.com/draftedge/prospect-rank/internal/model"
	"github.com/draftedge/prospect-rank/internal/segment"
)

// Engine scores and ranks a prospect pool. It is stateless apart from its
// configuration; every BuildSnapshot call is an independent pass.
type Engine struct {
	cfg     config.RankingConfig
	weights Weights
	now     func() time.Time
}

// New creates an Engine with the given constants and weight tables.
func New(cfg config.RankingConfig, weights Weights) *Engine {
	return &Engine{cfg: cfg, weights: weights, now: time.Now}
}

// scoringInput is the per-prospect working set prepared before parallel
// scoring starts.
type scoringInput struct {
	prospect model.Prospect
	tier     model.DataTier
	tierObs  []model.MetricObservation // tier-selected, for aggregates
	allObs   []model.MetricObservation // unfiltered, for trend windows
	aggs     map[string]float64
}

// BuildSnapshot scores every prospect in the pool and returns the ordered
// ranking. Cohort percentile tables are fully built and frozen before any
// prospect is scored, so per-prospect scoring can run in parallel without
// read-during-mutation hazards.
func (e *Engine) BuildSnapshot(ctx context.Context, prospects []model.Prospect, observations []model.MetricObservation) (*model.Snapshot, error) {
	now := e.now()
	start := now

	byProspect := make(map[string][]model.MetricObservation)
	for _, o := range observations {
		byProspect[o.ProspectID] = append(byProspect[o.ProspectID], o)
	}

	// Pass 1: tier classification and per-metric aggregates, feeding the
	// cohort table. One pass over observations per prospect.
	inputs := make([]scoringInput, len(prospects))
	table := cohort.NewTable()
	for i, p := range prospects {
		obs := byProspect[p.ID]
		tier, tierObs := segment.Classify(obs, e.cfg.MinEventSamples)
		aggs := aggregateMetrics(tierObs)
		inputs[i] = scoringInput{prospect: p, tier: tier, tierObs: tierObs, allObs: obs, aggs: aggs}

		for metric, agg := range aggs {
			def, ok := model.MetricDefFor(metric)
			if !ok || !def.AppliesTo(p.Position) {
				continue
			}
			table.Add(e.cohortKey(metric, p.Level), agg, def.Direction)
		}
	}
	table.Freeze()

	// Pass 2: independent per-prospect scoring against the frozen table.
	results := make([]model.CompositeResult, len(prospects))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range inputs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = e.score(inputs[i], table, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.rankAndTier(results)

	snap := &model.Snapshot{
		ID:          uuid.NewString(),
		GeneratedAt: now,
		Results:     results,
	}
	zap.L().Info("engine: snapshot built",
		zap.String("snapshot_id", snap.ID),
		zap.Int("prospects", len(prospects)),
		zap.Int("observations", len(observations)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return snap, nil
}

// score computes one prospect's composite result. The total adjustment is
// clamped to the symmetric cap regardless of how extreme the individual
// modifiers are.
func (e *Engine) score(in scoringInput, table *cohort.Table, now time.Time) model.CompositeResult {
	p := in.prospect

	perf := e.performanceModifier(p.Position, p.Level, in.aggs, table)
	trend, trendIndeterminate := e.trendAdjustment(p.Position, in.allObs, now)
	ageAdj, ageUnknown := e.ageAdjustment(p.Age, p.Level)

	total := e.cfg.PerfWeight*perf.Modifier +
		e.cfg.TrendWeight*trend +
		e.cfg.AgeWeight*ageAdj
	limit := e.cfg.TotalAdjustmentCap
	if total > limit {
		total = limit
	} else if total < -limit {
		total = -limit
	}

	var flags []model.Flag
	if in.tier == model.DataTierNone || perf.Insufficient {
		flags = append(flags, model.FlagInsufficientData)
	}
	if trendIndeterminate {
		flags = append(flags, model.FlagTrendIndeterminate)
	}
	if ageUnknown {
		flags = append(flags, model.FlagAgeUnknown)
	}

	return model.CompositeResult{
		ProspectID:          p.ID,
		Name:                p.Name,
		Position:            p.Position,
		Organization:        p.Organization,
		Level:               p.Level,
		Age:                 p.Age,
		ScoutGrade:          p.ScoutGrade,
		PerformanceModifier: perf.Modifier,
		TrendAdjustment:     trend,
		AgeAdjustment:       ageAdj,
		TotalAdjustment:     total,
		CompositeScore:      p.ScoutGrade + total,
		Breakdown:           perf.Breakdown,
		DataTier:            in.tier,
		Flags:               flags,
	}
}

// rankAndTier sorts results by composite score descending with a
// deterministic tie-break (scout grade descending, then prospect ID
// ascending), assigns sequential 1-based ranks, and buckets tiers by rank
// position.
func (e *Engine) rankAndTier(results []model.CompositeResult) {
	sort.Slice(results, func(i, j int) bool {
		a, b := &results[i], &results[j]
		if a.CompositeScore != b.CompositeScore {
			return a.CompositeScore > b.CompositeScore
		}
		if a.ScoutGrade != b.ScoutGrade {
			return a.ScoutGrade > b.ScoutGrade
		}
		return a.ProspectID < b.ProspectID
	})
	for i := range results {
		rank := i + 1
		results[i].Rank = rank
		results[i].Tier = tierFor(rank, e.cfg.TierBoundaries)
	}
}

// tierFor maps a rank position onto a tier bucket. Boundaries are
// inclusive cutoffs; ranks past the last boundary land in the final tier.
func tierFor(rank int, boundaries []int) int {
	for i, b := range boundaries {
		if rank <= b {
			return i + 1
		}
	}
	return len(boundaries) + 1
}
