package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/draftedge/prospect-rank/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it
// in unit tests.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS prospects (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	position     TEXT NOT NULL,
	organization TEXT NOT NULL DEFAULT '',
	level        TEXT NOT NULL,
	age          DOUBLE PRECISION,
	scout_grade  DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS metric_observations (
	id            BIGSERIAL PRIMARY KEY,
	prospect_id   TEXT NOT NULL REFERENCES prospects(id),
	metric        TEXT NOT NULL,
	value         DOUBLE PRECISION NOT NULL,
	sample_weight DOUBLE PRECISION NOT NULL DEFAULT 1,
	granularity   TEXT NOT NULL,
	observed_at   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_observations_prospect
	ON metric_observations (prospect_id, metric);
CREATE INDEX IF NOT EXISTS idx_observations_observed_at
	ON metric_observations (observed_at);
`

// Migrate creates the schema if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "postgres: migrate")
	}
	return nil
}

// ListProspects returns all prospect attribute records.
func (s *PostgresStore) ListProspects(ctx context.Context) ([]model.Prospect, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, name, position, organization, level, age, scout_grade
FROM prospects
ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list prospects")
	}
	defer rows.Close()

	var prospects []model.Prospect
	for rows.Next() {
		var p model.Prospect
		if err := rows.Scan(&p.ID, &p.Name, &p.Position, &p.Organization, &p.Level, &p.Age, &p.ScoutGrade); err != nil {
			return nil, eris.Wrap(err, "postgres: scan prospect")
		}
		prospects = append(prospects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate prospects")
	}
	return prospects, nil
}

// ListObservations returns all observations within the lookback window.
func (s *PostgresStore) ListObservations(ctx context.Context, lookback time.Duration) ([]model.MetricObservation, error) {
	since := time.Now().Add(-lookback)
	rows, err := s.pool.Query(ctx, `
SELECT prospect_id, metric, value, sample_weight, granularity, observed_at
FROM metric_observations
WHERE observed_at >= $1
ORDER BY prospect_id, metric, observed_at`, since)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list observations")
	}
	defer rows.Close()

	var obs []model.MetricObservation
	for rows.Next() {
		var o model.MetricObservation
		if err := rows.Scan(&o.ProspectID, &o.Metric, &o.Value, &o.Weight, &o.Granularity, &o.ObservedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan observation")
		}
		obs = append(obs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate observations")
	}
	return obs, nil
}

// InsertProspect upserts a prospect attribute record.
func (s *PostgresStore) InsertProspect(ctx context.Context, p model.Prospect) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO prospects (id, name, position, organization, level, age, scout_grade)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	position = EXCLUDED.position,
	organization = EXCLUDED.organization,
	level = EXCLUDED.level,
	age = EXCLUDED.age,
	scout_grade = EXCLUDED.scout_grade`,
		p.ID, p.Name, p.Position, p.Organization, p.Level, p.Age, p.ScoutGrade)
	if err != nil {
		return eris.Wrap(err, "postgres: insert prospect")
	}
	return nil
}

// InsertObservation appends one metric observation.
func (s *PostgresStore) InsertObservation(ctx context.Context, o model.MetricObservation) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO metric_observations (prospect_id, metric, value, sample_weight, granularity, observed_at)
VALUES ($1, $2, $3, $4, $5, $6)`,
		o.ProspectID, o.Metric, o.Value, o.Weight, o.Granularity, o.ObservedAt)
	if err != nil {
		return eris.Wrap(err, "postgres: insert observation")
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
