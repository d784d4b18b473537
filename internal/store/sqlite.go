package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/dealscore/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
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
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS projects (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	salesforce_id TEXT,
	data          TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS deal_scores (
	id                  TEXT PRIMARY KEY,
	project_id          TEXT NOT NULL,
	project_name        TEXT NOT NULL,
	overall_score       INTEGER NOT NULL,
	risk_adjusted_score INTEGER NOT NULL,
	config_hash         TEXT NOT NULL,
	data                TEXT NOT NULL,
	created_at          DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS benchmark_snapshots (
	id            TEXT PRIMARY KEY,
	percentile    REAL NOT NULL,
	industry_rank INTEGER NOT NULL,
	grade         TEXT NOT NULL,
	data          TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_projects_salesforce_id ON projects(salesforce_id);
CREATE INDEX IF NOT EXISTS idx_deal_scores_project_id ON deal_scores(project_id);
CREATE INDEX IF NOT EXISTS idx_deal_scores_risk_adjusted ON deal_scores(risk_adjusted_score);
CREATE INDEX IF NOT EXISTS idx_benchmark_snapshots_created_at ON benchmark_snapshots(created_at);
`

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const sqliteUpsertProject = `INSERT INTO projects (id, name, salesforce_id, data, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		name = excluded.name, salesforce_id = excluded.salesforce_id,
		data = excluded.data, updated_at = excluded.updated_at`

// SaveProject inserts or replaces p, assigning an ID when p has none.
func (s *SQLiteStore) SaveProject(ctx context.Context, p *model.Project) error {
	assignProjectID(p)
	data, err := json.Marshal(p)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal project")
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, sqliteUpsertProject, p.ID, p.Name, p.SalesforceID, string(data), now, now)
	return eris.Wrapf(err, "sqlite: save project %s", p.ID)
}

// SaveProjects upserts projects in one transaction. Projects without an ID
// are assigned one in place.
func (s *SQLiteStore) SaveProjects(ctx context.Context, projects []model.Project) (int, error) {
	if len(projects) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin save projects")
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	for i := range projects {
		p := &projects[i]
		assignProjectID(p)
		data, err := json.Marshal(p)
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: marshal project")
		}
		if _, err := tx.ExecContext(ctx, sqliteUpsertProject, p.ID, p.Name, p.SalesforceID, string(data), now, now); err != nil {
			return 0, eris.Wrapf(err, "sqlite: save project %s", p.ID)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit save projects")
	}
	return len(projects), nil
}

func (s *SQLiteStore) GetProject(ctx context.Context, id string) (*model.Project, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM projects WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: project %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get project %s", id)
	}
	var p model.Project
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal project")
	}
	return &p, nil
}

func (s *SQLiteStore) ListProjects(ctx context.Context) ([]model.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM projects ORDER BY name, id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list projects")
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan project")
		}
		var p model.Project
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal project")
		}
		projects = append(projects, p)
	}
	return projects, eris.Wrap(rows.Err(), "sqlite: list projects iterate")
}

const sqliteInsertScore = `INSERT INTO deal_scores
	(id, project_id, project_name, overall_score, risk_adjusted_score, config_hash, data, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func (s *SQLiteStore) SaveDealScore(ctx context.Context, score *model.DealScore, configHash string) (*StoredScore, error) {
	if score == nil {
		return nil, eris.New("sqlite: nil deal score")
	}
	data, err := json.Marshal(score)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal deal score")
	}
	st := &StoredScore{ID: uuid.New().String(), ConfigHash: configHash, Score: *score, CreatedAt: time.Now().UTC()}
	_, err = s.db.ExecContext(ctx, sqliteInsertScore,
		st.ID, score.ProjectID, score.ProjectName, score.OverallScore, score.RiskAdjustedScore,
		configHash, string(data), st.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert deal score for %s", score.ProjectID)
	}
	return st, nil
}

func (s *SQLiteStore) SaveDealScores(ctx context.Context, scores []*model.DealScore, configHash string) (int, error) {
	if len(scores) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin save deal scores")
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	n := 0
	for _, score := range scores {
		if score == nil {
			continue
		}
		data, err := json.Marshal(score)
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: marshal deal score")
		}
		if _, err := tx.ExecContext(ctx, sqliteInsertScore,
			uuid.New().String(), score.ProjectID, score.ProjectName, score.OverallScore,
			score.RiskAdjustedScore, configHash, string(data), now,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert deal score for %s", score.ProjectID)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit save deal scores")
	}
	return n, nil
}

func (s *SQLiteStore) GetLatestDealScore(ctx context.Context, projectID string) (*StoredScore, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, config_hash, data, created_at FROM deal_scores
		 WHERE project_id = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`,
		projectID,
	)
	st, err := scanStoredScore(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: deal score for %s", projectID)
	}
	return st, err
}

func (s *SQLiteStore) ListDealScores(ctx context.Context, filter ScoreFilter) ([]StoredScore, error) {
	query := `SELECT id, config_hash, data, created_at FROM deal_scores WHERE 1=1`
	var args []any

	if filter.ProjectID != "" {
		query += ` AND project_id = ?`
		args = append(args, filter.ProjectID)
	}
	if filter.MinScore > 0 {
		query += ` AND risk_adjusted_score >= ?`
		args = append(args, filter.MinScore)
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, listLimit(filter.Limit))

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list deal scores")
	}
	defer rows.Close()

	var out []StoredScore
	for rows.Next() {
		st, err := scanStoredScore(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *st)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list deal scores iterate")
}

func (s *SQLiteStore) SaveBenchmarks(ctx context.Context, ib *model.IndustryBenchmarks) (*BenchmarkSnapshot, error) {
	if ib == nil {
		return nil, eris.New("sqlite: nil benchmarks")
	}
	data, err := json.Marshal(ib)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal benchmarks")
	}
	snap := &BenchmarkSnapshot{ID: uuid.New().String(), Benchmarks: *ib, CreatedAt: time.Now().UTC()}
	r := ib.OverallFundRanking
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO benchmark_snapshots (id, percentile, industry_rank, grade, data, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		snap.ID, r.Percentile, r.IndustryRank, r.Grade, string(data), snap.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert benchmarks")
	}
	return snap, nil
}

func (s *SQLiteStore) LatestBenchmarks(ctx context.Context) (*BenchmarkSnapshot, error) {
	var snap BenchmarkSnapshot
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, data, created_at FROM benchmark_snapshots ORDER BY created_at DESC, rowid DESC LIMIT 1`,
	).Scan(&snap.ID, &data, &snap.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrap(ErrNotFound, "sqlite: benchmarks")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: latest benchmarks")
	}
	if err := json.Unmarshal([]byte(data), &snap.Benchmarks); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal benchmarks")
	}
	return &snap, nil
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

// scanStoredScore returns sql.ErrNoRows unwrapped so callers can map it.
func scanStoredScore(row scannable) (*StoredScore, error) {
	var st StoredScore
	var data string
	err := row.Scan(&st.ID, &st.ConfigHash, &data, &st.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan deal score")
	}
	if err := json.Unmarshal([]byte(data), &st.Score); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal deal score")
	}
	return &st, nil
}

func assignProjectID(p *model.Project) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
}
