package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/dealscore/internal/benchmark"
	"github.com/sells-group/dealscore/internal/config"
	"github.com/sells-group/dealscore/internal/scorer"
	"github.com/sells-group/dealscore/internal/store"
)

// setTestConfig installs a config pointing at a temp SQLite database.
func setTestConfig(t *testing.T) {
	t.Helper()
	old := cfg
	cfg = &config.Config{
		Store:     config.StoreConfig{Driver: "sqlite", DatabaseURL: filepath.Join(t.TempDir(), "test.db")},
		Scorer:    scorer.DefaultScorerConfig(),
		Benchmark: benchmark.DefaultBenchmarkConfig(),
		Batch:     config.BatchConfig{MaxConcurrent: 4},
	}
	t.Cleanup(func() { cfg = old })
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func newTestScorer(t *testing.T) *scorer.Scorer {
	t.Helper()
	sc, err := scorer.NewScorer(scorer.DefaultScorerConfig(), scorer.DefaultTables())
	require.NoError(t, err)
	return sc
}

func writeTestFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}
