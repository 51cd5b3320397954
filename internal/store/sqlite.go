package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/draftedge/prospect-rank/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Intended for
// local development and tests.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS prospects (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	position     TEXT NOT NULL,
	organization TEXT NOT NULL DEFAULT '',
	level        TEXT NOT NULL,
	age          REAL,
	scout_grade  REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS metric_observations (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	prospect_id   TEXT NOT NULL REFERENCES prospects(id),
	metric        TEXT NOT NULL,
	value         REAL NOT NULL,
	sample_weight REAL NOT NULL DEFAULT 1,
	granularity   TEXT NOT NULL,
	observed_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_observations_prospect
	ON metric_observations (prospect_id, metric);
CREATE INDEX IF NOT EXISTS idx_observations_observed_at
	ON metric_observations (observed_at);
`

// Migrate creates the schema if it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}
	return nil
}

// ListProspects returns all prospect attribute records.
func (s *SQLiteStore) ListProspects(ctx context.Context) ([]model.Prospect, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, position, organization, level, age, scout_grade
FROM prospects
ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list prospects")
	}
	defer rows.Close()

	var prospects []model.Prospect
	for rows.Next() {
		var p model.Prospect
		if err := rows.Scan(&p.ID, &p.Name, &p.Position, &p.Organization, &p.Level, &p.Age, &p.ScoutGrade); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan prospect")
		}
		prospects = append(prospects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate prospects")
	}
	return prospects, nil
}

// ListObservations returns all observations within the lookback window.
func (s *SQLiteStore) ListObservations(ctx context.Context, lookback time.Duration) ([]model.MetricObservation, error) {
	since := time.Now().Add(-lookback)
	rows, err := s.db.QueryContext(ctx, `
SELECT prospect_id, metric, value, sample_weight, granularity, observed_at
FROM metric_observations
WHERE observed_at >= ?
ORDER BY prospect_id, metric, observed_at`, since)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list observations")
	}
	defer rows.Close()

	var obs []model.MetricObservation
	for rows.Next() {
		var o model.MetricObservation
		if err := rows.Scan(&o.ProspectID, &o.Metric, &o.Value, &o.Weight, &o.Granularity, &o.ObservedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan observation")
		}
		obs = append(obs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate observations")
	}
	return obs, nil
}

// InsertProspect upserts a prospect attribute record.
func (s *SQLiteStore) InsertProspect(ctx context.Context, p model.Prospect) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO prospects (id, name, position, organization, level, age, scout_grade)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
	name = excluded.name,
	position = excluded.position,
	organization = excluded.organization,
	level = excluded.level,
	age = excluded.age,
	scout_grade = excluded.scout_grade`,
		p.ID, p.Name, p.Position, p.Organization, p.Level, p.Age, p.ScoutGrade)
	if err != nil {
		return eris.Wrap(err, "sqlite: insert prospect")
	}
	return nil
}

// InsertObservation appends one metric observation.
func (s *SQLiteStore) InsertObservation(ctx context.Context, o model.MetricObservation) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO metric_observations (prospect_id, metric, value, sample_weight, granularity, observed_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		o.ProspectID, o.Metric, o.Value, o.Weight, o.Granularity, o.ObservedAt)
	if err != nil {
		return eris.Wrap(err, "sqlite: insert observation")
	}
	return nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Interface checks.
var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*PostgresStore)(nil)
)
