package main

import (
	"context"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/dealscore/internal/export"
	"github.com/sells-group/dealscore/internal/model"
	"github.com/sells-group/dealscore/internal/scorer"
	"github.com/sells-group/dealscore/internal/store"
)

var (
	scoreInput     string
	scorePortfolio string
	scoreFormat    string
	scoreOutput    string
	scoreSave      bool
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score one or more deals",
	Long: `Scores the projects in --input (YAML, JSON, CSV or XLSX).

A single project is benchmarked against --portfolio when given. A list of
projects is scored concurrently, each against the rest of the list, unless
--portfolio supplies the peer set explicitly.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		format, err := export.ParseFormat(scoreFormat)
		if err != nil {
			return err
		}
		projects, err := loadProjects(scoreInput)
		if err != nil {
			return eris.Wrap(err, "score")
		}
		var portfolio []model.Project
		if scorePortfolio != "" {
			if portfolio, err = loadProjects(scorePortfolio); err != nil {
				return eris.Wrap(err, "score: portfolio")
			}
		}

		sc, err := initScorer()
		if err != nil {
			return err
		}

		var st store.Store
		if scoreSave {
			if st, err = openStore(ctx); err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
		}

		out, closeOut, err := openOutput(scoreOutput, format)
		if err != nil {
			return err
		}
		if err := runScore(ctx, out, scoreOptions{
			scorer:      sc,
			store:       st,
			projects:    projects,
			portfolio:   portfolio,
			format:      format,
			concurrency: cfg.Batch.MaxConcurrent,
		}); err != nil {
			_ = closeOut()
			return err
		}
		return closeOut()
	},
}

type scoreOptions struct {
	scorer      *scorer.Scorer
	store       store.Store // nil skips persistence
	projects    []model.Project
	portfolio   []model.Project
	format      export.Format
	concurrency int
}

func runScore(ctx context.Context, w io.Writer, opts scoreOptions) error {
	scores, err := scoreProjects(ctx, opts)
	if err != nil {
		return err
	}

	if opts.store != nil {
		if _, err := opts.store.SaveProjects(ctx, opts.projects); err != nil {
			return eris.Wrap(err, "score: save projects")
		}
		n, err := opts.store.SaveDealScores(ctx, scores, opts.scorer.ConfigHash())
		if err != nil {
			return eris.Wrap(err, "score: save scores")
		}
		zap.L().Info("scores saved", zap.Int("count", n))
	}

	return export.WriteScores(w, opts.format, scores)
}

func scoreProjects(ctx context.Context, opts scoreOptions) ([]*model.DealScore, error) {
	if len(opts.portfolio) == 0 {
		if len(opts.projects) == 1 {
			return []*model.DealScore{opts.scorer.ScoreDeal(opts.projects[0], nil)}, nil
		}
		return opts.scorer.ScoreAll(ctx, opts.projects, opts.concurrency)
	}

	scores := make([]*model.DealScore, 0, len(opts.projects))
	for _, p := range opts.projects {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "score: cancelled")
		}
		scores = append(scores, opts.scorer.ScoreDeal(p, opts.portfolio))
	}
	return scores, nil
}

func init() {
	scoreCmd.Flags().StringVar(&scoreInput, "input", "", "project file (yaml, json, csv or xlsx)")
	scoreCmd.Flags().StringVar(&scorePortfolio, "portfolio", "", "peer portfolio file for benchmarks")
	scoreCmd.Flags().StringVar(&scoreFormat, "format", "table", "output format: table, json, csv or xlsx")
	scoreCmd.Flags().StringVar(&scoreOutput, "output", "", "output path (default stdout)")
	scoreCmd.Flags().BoolVar(&scoreSave, "save", false, "persist projects and scores to the store")
	_ = scoreCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(scoreCmd)
}
