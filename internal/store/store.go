// Package store persists projects, deal scores and benchmark snapshots.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/dealscore/internal/model"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = eris.New("store: not found")

// ScoreFilter specifies criteria for listing stored deal scores.
type ScoreFilter struct {
	ProjectID string `json:"project_id,omitempty"`
	MinScore  int    `json:"min_score,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

// StoredScore is a persisted deal score together with the hash of the
// scorer configuration that produced it.
type StoredScore struct {
	ID         string          `json:"id"`
	ConfigHash string          `json:"config_hash"`
	Score      model.DealScore `json:"score"`
	CreatedAt  time.Time       `json:"created_at"`
}

// BenchmarkSnapshot is a persisted comprehensive benchmark run.
type BenchmarkSnapshot struct {
	ID         string                   `json:"id"`
	Benchmarks model.IndustryBenchmarks `json:"benchmarks"`
	CreatedAt  time.Time                `json:"created_at"`
}

// Store defines the persistence interface for deal scoring.
type Store interface {
	// Projects
	SaveProject(ctx context.Context, p *model.Project) error
	SaveProjects(ctx context.Context, projects []model.Project) (int, error)
	GetProject(ctx context.Context, id string) (*model.Project, error)
	ListProjects(ctx context.Context) ([]model.Project, error)

	// Deal scores
	SaveDealScore(ctx context.Context, score *model.DealScore, configHash string) (*StoredScore, error)
	SaveDealScores(ctx context.Context, scores []*model.DealScore, configHash string) (int, error)
	GetLatestDealScore(ctx context.Context, projectID string) (*StoredScore, error)
	ListDealScores(ctx context.Context, filter ScoreFilter) ([]StoredScore, error)

	// Benchmarks
	SaveBenchmarks(ctx context.Context, ib *model.IndustryBenchmarks) (*BenchmarkSnapshot, error)
	LatestBenchmarks(ctx context.Context) (*BenchmarkSnapshot, error)

	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}

const defaultListLimit = 100

func listLimit(n int) int {
	if n <= 0 {
		return defaultListLimit
	}
	return n
}
