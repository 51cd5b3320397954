// Package service exposes the ranked, filterable, paginated view over
// cached snapshots. Filtering always happens after composite computation,
// which runs over the full unfiltered pool, so percentile denominators and
// ranks never depend on the query.
package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/draftedge/prospect-rank/internal/engine"
	"github.com/draftedge/prospect-rank/internal/model"
	"github.com/draftedge/prospect-rank/internal/rankcache"
	"github.com/draftedge/prospect-rank/internal/store"
)

// snapshotKey is the single cache key: query filters never change the
// underlying pool, so the snapshot is global.
const snapshotKey = "global"

const (
	defaultPageSize = 25
	maxPageSize     = 100
)

// QueryParams are the validated ranking query parameters.
type QueryParams struct {
	Page         int    `json:"page"`
	PageSize     int    `json:"page_size"`
	Position     string `json:"position,omitempty"`
	Organization string `json:"organization,omitempty"`
	Level        string `json:"level,omitempty"`
	Sort         string `json:"sort,omitempty"`
	Limit        int    `json:"limit,omitempty"`
}

// sortKeys are the supported sort fields. Sorting is presentation only; it
// never changes composite scores, ranks, or tiers.
var sortKeys = map[string]func(a, b *model.CompositeResult) bool{
	"rank":        func(a, b *model.CompositeResult) bool { return a.Rank < b.Rank },
	"scout_grade": func(a, b *model.CompositeResult) bool { return a.ScoutGrade > b.ScoutGrade },
	"name":        func(a, b *model.CompositeResult) bool { return a.Name < b.Name },
	"age": func(a, b *model.CompositeResult) bool {
		switch {
		case a.Age == nil:
			return false
		case b.Age == nil:
			return true
		default:
			return *a.Age < *b.Age
		}
	},
}

// ValidationError reports rejected query parameters. Out-of-range values
// are rejected, never clamped.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	msg := "invalid query parameters"
	for _, p := range e.Problems {
		msg += "; " + p
	}
	return msg
}

// Normalize applies defaults for unset fields and validates the rest.
func (p *QueryParams) Normalize() error {
	var problems []string

	if p.Page == 0 {
		p.Page = 1
	}
	if p.Page < 1 {
		problems = append(problems, "page must be >= 1")
	}
	if p.PageSize == 0 {
		p.PageSize = defaultPageSize
	}
	if p.PageSize < 1 || p.PageSize > maxPageSize {
		problems = append(problems, "page_size must be between 1 and 100")
	}
	if p.Position != "" {
		if _, err := model.ParsePosition(p.Position); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if p.Level != "" {
		if _, err := model.ParseLevel(p.Level); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if p.Sort == "" {
		p.Sort = "rank"
	}
	if _, ok := sortKeys[p.Sort]; !ok {
		problems = append(problems, fmt.Sprintf("unknown sort key %q", p.Sort))
	}
	if p.Limit < 0 {
		problems = append(problems, "limit must be >= 0")
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// RankedPage is one page of annotated ranking results.
type RankedPage struct {
	Results     []model.CompositeResult `json:"results"`
	TotalCount  int                     `json:"total_count"`
	Page        int                     `json:"page"`
	PageSize    int                     `json:"page_size"`
	TotalPages  int                     `json:"total_pages"`
	SnapshotID  string                  `json:"snapshot_id"`
	GeneratedAt time.Time               `json:"snapshot_generated_at"`
}

// Ranking serves ranking queries from cached snapshots.
type Ranking struct {
	store    store.Store
	engine   *engine.Engine
	cache    *rankcache.Cache
	lookback time.Duration
}

// New creates a Ranking service.
func New(st store.Store, eng *engine.Engine, cache *rankcache.Cache, lookback time.Duration) *Ranking {
	return &Ranking{store: st, engine: eng, cache: cache, lookback: lookback}
}

// computeSnapshot is the cache's compute function: one scoped bulk read of
// the store, then a full-pool engine pass.
func (s *Ranking) computeSnapshot(ctx context.Context) (*model.Snapshot, error) {
	prospects, err := s.store.ListProspects(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "service: list prospects")
	}
	observations, err := s.store.ListObservations(ctx, s.lookback)
	if err != nil {
		return nil, eris.Wrap(err, "service: list observations")
	}
	return s.engine.BuildSnapshot(ctx, prospects, observations)
}

// Snapshot returns the current full snapshot, computing it if needed.
func (s *Ranking) Snapshot(ctx context.Context) (*model.Snapshot, error) {
	return s.cache.Get(ctx, snapshotKey, s.computeSnapshot)
}

// Query validates params, ensures a snapshot, and returns the requested
// page of filtered results. Composite scores and ranks are those of the
// unfiltered pool.
func (s *Ranking) Query(ctx context.Context, params QueryParams) (*RankedPage, error) {
	if err := params.Normalize(); err != nil {
		return nil, err
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	filtered := filterResults(snap.Results, params)
	if params.Limit > 0 && len(filtered) > params.Limit {
		filtered = filtered[:params.Limit]
	}
	if less := sortKeys[params.Sort]; params.Sort != "rank" {
		sort.SliceStable(filtered, func(i, j int) bool { return less(&filtered[i], &filtered[j]) })
	}

	total := len(filtered)
	totalPages := (total + params.PageSize - 1) / params.PageSize
	start := (params.Page - 1) * params.PageSize
	if start > total {
		start = total
	}
	end := start + params.PageSize
	if end > total {
		end = total
	}

	zap.L().Debug("service: ranking query",
		zap.String("snapshot_id", snap.ID),
		zap.Int("total", total),
		zap.Int("page", params.Page),
	)

	return &RankedPage{
		Results:     filtered[start:end],
		TotalCount:  total,
		Page:        params.Page,
		PageSize:    params.PageSize,
		TotalPages:  totalPages,
		SnapshotID:  snap.ID,
		GeneratedAt: snap.GeneratedAt,
	}, nil
}

// Invalidate forces the next query to recompute rather than serve a
// cached snapshot.
func (s *Ranking) Invalidate() {
	s.cache.Invalidate(snapshotKey)
	zap.L().Info("service: snapshot invalidated")
}

func filterResults(results []model.CompositeResult, params QueryParams) []model.CompositeResult {
	filtered := make([]model.CompositeResult, 0, len(results))
	for _, r := range results {
		if params.Position != "" && string(r.Position) != params.Position {
			continue
		}
		if params.Organization != "" && r.Organization != params.Organization {
			continue
		}
		if params.Level != "" && string(r.Level) != params.Level {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}
