package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/dealscore/internal/db"
	"github.com/sells-group/dealscore/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements are prepared on each new connection.
var preparedStatements = map[string]string{
	"upsert_project":    pgUpsertProject,
	"get_project":       `SELECT data FROM projects WHERE id = $1`,
	"insert_deal_score": pgInsertScore,
	"latest_deal_score": pgLatestScore,
	"insert_benchmarks": pgInsertBenchmarks,
	"latest_benchmarks": pgLatestBenchmarks,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

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

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS projects (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name          TEXT NOT NULL,
	salesforce_id TEXT,
	data          JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS deal_scores (
	id                  TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	project_id          TEXT NOT NULL,
	project_name        TEXT NOT NULL,
	overall_score       INTEGER NOT NULL,
	risk_adjusted_score INTEGER NOT NULL,
	config_hash         TEXT NOT NULL,
	data                JSONB NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS benchmark_snapshots (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	percentile    DOUBLE PRECISION NOT NULL,
	industry_rank INTEGER NOT NULL,
	grade         TEXT NOT NULL,
	data          JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_projects_salesforce_id ON projects(salesforce_id);
CREATE INDEX IF NOT EXISTS idx_deal_scores_project_created ON deal_scores(project_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_deal_scores_risk_adjusted ON deal_scores(risk_adjusted_score);
CREATE INDEX IF NOT EXISTS idx_benchmark_snapshots_created_at ON benchmark_snapshots(created_at DESC);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

const pgUpsertProject = `INSERT INTO projects (id, name, salesforce_id, data, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $5)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name, salesforce_id = EXCLUDED.salesforce_id,
		data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`

// SaveProject inserts or replaces p, assigning an ID when p has none.
func (s *PostgresStore) SaveProject(ctx context.Context, p *model.Project) error {
	assignProjectID(p)
	data, err := json.Marshal(p)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal project")
	}
	_, err = s.pool.Exec(ctx, pgUpsertProject, p.ID, p.Name, p.SalesforceID, data, time.Now().UTC())
	return eris.Wrapf(err, "postgres: save project %s", p.ID)
}

// SaveProjects bulk-upserts projects through a COPY into a temp table.
// Projects without an ID are assigned one in place.
func (s *PostgresStore) SaveProjects(ctx context.Context, projects []model.Project) (int, error) {
	now := time.Now().UTC()
	rows := make([][]any, 0, len(projects))
	for i := range projects {
		p := &projects[i]
		assignProjectID(p)
		data, err := json.Marshal(p)
		if err != nil {
			return 0, eris.Wrap(err, "postgres: marshal project")
		}
		rows = append(rows, []any{p.ID, p.Name, p.SalesforceID, data, now, now})
	}
	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "projects",
		Columns:      []string{"id", "name", "salesforce_id", "data", "created_at", "updated_at"},
		ConflictKeys: []string{"id"},
		UpdateCols:   []string{"name", "salesforce_id", "data", "updated_at"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: save projects")
	}
	return int(n), nil
}

func (s *PostgresStore) GetProject(ctx context.Context, id string) (*model.Project, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM projects WHERE id = $1`, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: project %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get project %s", id)
	}
	var p model.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal project")
	}
	return &p, nil
}

func (s *PostgresStore) ListProjects(ctx context.Context) ([]model.Project, error) {
	rows, err := s.pool.Query(ctx, `SELECT data FROM projects ORDER BY name, id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list projects")
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan project")
		}
		var p model.Project
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal project")
		}
		projects = append(projects, p)
	}
	return projects, eris.Wrap(rows.Err(), "postgres: list projects iterate")
}

var scoreColumns = []string{"id", "project_id", "project_name", "overall_score", "risk_adjusted_score", "config_hash", "data", "created_at"}

const pgInsertScore = `INSERT INTO deal_scores
	(id, project_id, project_name, overall_score, risk_adjusted_score, config_hash, data, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

const pgLatestScore = `SELECT id, config_hash, data, created_at FROM deal_scores
	WHERE project_id = $1 ORDER BY created_at DESC LIMIT 1`

func (s *PostgresStore) SaveDealScore(ctx context.Context, score *model.DealScore, configHash string) (*StoredScore, error) {
	if score == nil {
		return nil, eris.New("postgres: nil deal score")
	}
	data, err := json.Marshal(score)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal deal score")
	}
	st := &StoredScore{ID: uuid.New().String(), ConfigHash: configHash, Score: *score, CreatedAt: time.Now().UTC()}
	_, err = s.pool.Exec(ctx, pgInsertScore,
		st.ID, score.ProjectID, score.ProjectName, score.OverallScore, score.RiskAdjustedScore,
		configHash, data, st.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert deal score for %s", score.ProjectID)
	}
	return st, nil
}

// SaveDealScores bulk-inserts scores with COPY.
func (s *PostgresStore) SaveDealScores(ctx context.Context, scores []*model.DealScore, configHash string) (int, error) {
	now := time.Now().UTC()
	rows := make([][]any, 0, len(scores))
	for _, score := range scores {
		if score == nil {
			continue
		}
		data, err := json.Marshal(score)
		if err != nil {
			return 0, eris.Wrap(err, "postgres: marshal deal score")
		}
		rows = append(rows, []any{
			uuid.New().String(), score.ProjectID, score.ProjectName, score.OverallScore,
			score.RiskAdjustedScore, configHash, data, now,
		})
	}
	n, err := db.CopyFrom(ctx, s.pool, "deal_scores", scoreColumns, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: save deal scores")
	}
	return int(n), nil
}

func (s *PostgresStore) GetLatestDealScore(ctx context.Context, projectID string) (*StoredScore, error) {
	st, err := scanPgScore(s.pool.QueryRow(ctx, pgLatestScore, projectID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: deal score for %s", projectID)
	}
	return st, err
}

func (s *PostgresStore) ListDealScores(ctx context.Context, filter ScoreFilter) ([]StoredScore, error) {
	query := `SELECT id, config_hash, data, created_at FROM deal_scores WHERE true`
	args := []any{}
	argIdx := 1

	if filter.ProjectID != "" {
		query += fmt.Sprintf(` AND project_id = $%d`, argIdx)
		args = append(args, filter.ProjectID)
		argIdx++
	}
	if filter.MinScore > 0 {
		query += fmt.Sprintf(` AND risk_adjusted_score >= $%d`, argIdx)
		args = append(args, filter.MinScore)
		argIdx++
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, argIdx)
	args = append(args, listLimit(filter.Limit))
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list deal scores")
	}
	defer rows.Close()

	var out []StoredScore
	for rows.Next() {
		st, err := scanPgScore(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *st)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list deal scores iterate")
}

const pgInsertBenchmarks = `INSERT INTO benchmark_snapshots (id, percentile, industry_rank, grade, data, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

const pgLatestBenchmarks = `SELECT id, data, created_at FROM benchmark_snapshots ORDER BY created_at DESC LIMIT 1`

func (s *PostgresStore) SaveBenchmarks(ctx context.Context, ib *model.IndustryBenchmarks) (*BenchmarkSnapshot, error) {
	if ib == nil {
		return nil, eris.New("postgres: nil benchmarks")
	}
	data, err := json.Marshal(ib)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal benchmarks")
	}
	snap := &BenchmarkSnapshot{ID: uuid.New().String(), Benchmarks: *ib, CreatedAt: time.Now().UTC()}
	r := ib.OverallFundRanking
	_, err = s.pool.Exec(ctx, pgInsertBenchmarks, snap.ID, r.Percentile, r.IndustryRank, r.Grade, data, snap.CreatedAt)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert benchmarks")
	}
	return snap, nil
}

func (s *PostgresStore) LatestBenchmarks(ctx context.Context) (*BenchmarkSnapshot, error) {
	var snap BenchmarkSnapshot
	var data []byte
	err := s.pool.QueryRow(ctx, pgLatestBenchmarks).Scan(&snap.ID, &data, &snap.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrap(ErrNotFound, "postgres: benchmarks")
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: latest benchmarks")
	}
	if err := json.Unmarshal(data, &snap.Benchmarks); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal benchmarks")
	}
	return &snap, nil
}

// scanPgScore returns pgx.ErrNoRows unwrapped so callers can map it.
func scanPgScore(row pgx.Row) (*StoredScore, error) {
	var st StoredScore
	var data []byte
	err := row.Scan(&st.ID, &st.ConfigHash, &data, &st.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan deal score")
	}
	if err := json.Unmarshal(data, &st.Score); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal deal score")
	}
	return &st, nil
}
