package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dealscore/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS projects`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveProject(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	p := testProject("p1", "Atlas")
	mock.ExpectExec(`INSERT INTO projects .* ON CONFLICT \(id\) DO UPDATE`).
		WithArgs("p1", "Atlas", "006p1", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.SaveProject(context.Background(), &p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveProjects_BulkUpsert(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_projects"},
		[]string{"id", "name", "salesforce_id", "data", "created_at", "updated_at"}).
		WillReturnResult(2)
	mock.ExpectExec(`INSERT INTO "projects" .* ON CONFLICT \("id"\) DO UPDATE`).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	projects := []model.Project{testProject("p1", "Atlas"), testProject("", "Borealis")}
	n, err := s.SaveProjects(context.Background(), projects)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NotEmpty(t, projects[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetProject(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	data, err := json.Marshal(testProject("p1", "Atlas"))
	require.NoError(t, err)
	mock.ExpectQuery(`SELECT data FROM projects WHERE id = \$1`).
		WithArgs("p1").
		WillReturnRows(pgxmock.NewRows([]string{"data"}).AddRow(data))

	p, err := s.GetProject(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Atlas", p.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetProject_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT data FROM projects WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetProject(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListProjects(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	a, _ := json.Marshal(testProject("p1", "Atlas"))
	b, _ := json.Marshal(testProject("p2", "Borealis"))
	mock.ExpectQuery(`SELECT data FROM projects ORDER BY name`).
		WillReturnRows(pgxmock.NewRows([]string{"data"}).AddRow(a).AddRow(b))

	projects, err := s.ListProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "Borealis", projects[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveDealScore(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO deal_scores`).
		WithArgs(pgxmock.AnyArg(), "p1", "Project p1", 72, 68, "hash", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	st, err := s.SaveDealScore(context.Background(), testScore("p1", 72, 68), "hash")
	require.NoError(t, err)
	assert.NotEmpty(t, st.ID)
	assert.Equal(t, "hash", st.ConfigHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveDealScores_Copy(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectCopyFrom(pgx.Identifier{"deal_scores"}, scoreColumns).WillReturnResult(2)

	n, err := s.SaveDealScores(context.Background(), []*model.DealScore{
		testScore("p1", 72, 68), nil, testScore("p2", 40, 36),
	}, "hash")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetLatestDealScore(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	data, err := json.Marshal(testScore("p1", 72, 68))
	require.NoError(t, err)
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, config_hash, data, created_at FROM deal_scores\s+WHERE project_id = \$1`).
		WithArgs("p1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "config_hash", "data", "created_at"}).
			AddRow("s1", "hash", data, created))

	st, err := s.GetLatestDealScore(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "s1", st.ID)
	assert.Equal(t, 68, st.Score.RiskAdjustedScore)
	assert.Equal(t, created, st.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetLatestDealScore_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM deal_scores`).
		WithArgs("nobody").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetLatestDealScore(context.Background(), "nobody")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListDealScores_Filter(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	data, _ := json.Marshal(testScore("p1", 72, 68))
	mock.ExpectQuery(`AND project_id = \$1 AND risk_adjusted_score >= \$2 ORDER BY created_at DESC LIMIT \$3 OFFSET \$4`).
		WithArgs("p1", 60, 10, 5).
		WillReturnRows(pgxmock.NewRows([]string{"id", "config_hash", "data", "created_at"}).
			AddRow("s1", "hash", data, time.Now()))

	out, err := s.ListDealScores(context.Background(), ScoreFilter{ProjectID: "p1", MinScore: 60, Limit: 10, Offset: 5})
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListDealScores_DefaultLimit(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`WHERE true ORDER BY created_at DESC LIMIT \$1`).
		WithArgs(100).
		WillReturnRows(pgxmock.NewRows([]string{"id", "config_hash", "data", "created_at"}))

	out, err := s.ListDealScores(context.Background(), ScoreFilter{})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Benchmarks(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	ib := &model.IndustryBenchmarks{OverallFundRanking: model.FundRanking{IndustryRank: 278, TotalFunds: 487, Percentile: 44.3, Grade: "C"}}
	mock.ExpectExec(`INSERT INTO benchmark_snapshots`).
		WithArgs(pgxmock.AnyArg(), 44.3, 278, "C", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	snap, err := s.SaveBenchmarks(context.Background(), ib)
	require.NoError(t, err)

	data, _ := json.Marshal(ib)
	mock.ExpectQuery(`SELECT id, data, created_at FROM benchmark_snapshots`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "data", "created_at"}).AddRow(snap.ID, data, snap.CreatedAt))

	latest, err := s.LatestBenchmarks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, snap.ID, latest.ID)
	assert.Equal(t, "C", latest.Benchmarks.OverallFundRanking.Grade)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LatestBenchmarks_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM benchmark_snapshots`).WillReturnError(pgx.ErrNoRows)

	_, err := s.LatestBenchmarks(context.Background())
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
