package scorer

import (
	"context"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/dealscore/internal/model"
)

// ScoreAll scores every project concurrently against the rest of the slice.
// Peers are excluded by position, so projects without an ID never count as
// their own peer. Results are returned in input order.
func (s *Scorer) ScoreAll(ctx context.Context, projects []model.Project, concurrency int) ([]*model.DealScore, error) {
	results := make([]*model.DealScore, len(projects))

	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	var scored atomic.Int64
	for i := range projects {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.ScoreDeal(projects[i], peersOf(projects, i))
			scored.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "scorer: score all")
	}

	zap.L().Info("scorer: batch complete",
		zap.Int("projects", len(projects)),
		zap.Int64("scored", scored.Load()),
	)
	return results, nil
}

// peersOf returns projects without the element at index skip.
func peersOf(projects []model.Project, skip int) []model.Project {
	peers := make([]model.Project, 0, len(projects)-1)
	peers = append(peers, projects[:skip]...)
	return append(peers, projects[skip+1:]...)
}
