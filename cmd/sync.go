package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/dealscore/internal/model"
	"github.com/sells-group/dealscore/internal/resilience"
	"github.com/sells-group/dealscore/internal/scorer"
	"github.com/sells-group/dealscore/internal/store"
	sfpkg "github.com/sells-group/dealscore/pkg/salesforce"
)

var (
	syncLimit  int
	syncDryRun bool
	syncID     string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Score open Salesforce Opportunities and write the scores back",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		sf, err := newSalesforceClient()
		if err != nil {
			return err
		}
		sc, err := initScorer()
		if err != nil {
			return err
		}
		var st store.Store
		if !syncDryRun {
			if st, err = openStore(ctx); err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
		}

		mapping := cfg.Salesforce.ScoreFields
		if len(mapping) == 0 {
			mapping = sfpkg.DefaultScoreFields()
		}

		res, err := runSync(ctx, sf, st, sc, syncOptions{
			limit:       syncLimit,
			id:          syncID,
			dryRun:      syncDryRun,
			mapping:     mapping,
			concurrency: cfg.Batch.MaxConcurrent,
			retry:       resilience.FromConfig(cfg.Retry),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "opportunities: %d  scored: %d  updated: %d  failed: %d  skipped: %d\n",
			res.Opportunities, res.Scored, res.Updated, res.Failed, res.Skipped)
		return nil
	},
}

type syncOptions struct {
	limit       int
	id          string // rescore one Opportunity instead of the open pipeline
	dryRun      bool
	mapping     map[string]string
	concurrency int
	retry       resilience.Policy
}

type syncResult struct {
	Opportunities int
	Skipped       int
	Scored        int
	Updated       int
	Failed        int
}

// runSync loads open Opportunities, scores them as one portfolio, persists
// projects and scores, and writes the mapped score fields back in batches.
// With opts.id set only that Opportunity is loaded and it is scored against
// the projects already in the store. A dry run stops after scoring.
func runSync(ctx context.Context, sf sfpkg.Client, st store.Store, sc *scorer.Scorer, opts syncOptions) (syncResult, error) {
	var res syncResult

	fields := make([]string, 0, len(opts.mapping))
	for _, f := range opts.mapping {
		if f != "" {
			fields = append(fields, f)
		}
	}
	sort.Strings(fields)
	if len(fields) == 0 {
		return res, eris.New("sync: no score fields mapped")
	}
	if err := sfpkg.ValidateFields(ctx, sf, sfpkg.SObjectOpportunity, fields); err != nil {
		return res, err
	}

	opps, err := loadOpportunities(ctx, sf, opts)
	if err != nil {
		return res, err
	}
	res.Opportunities = len(opps)

	projects := make([]model.Project, 0, len(opps))
	for _, o := range opps {
		p := o.Project()
		if err := p.Validate(); err != nil {
			zap.L().Warn("sync: skipping opportunity", zap.String("id", o.ID), zap.Error(err))
			res.Skipped++
			continue
		}
		projects = append(projects, p)
	}
	if len(projects) == 0 {
		return res, nil
	}

	var scores []*model.DealScore
	if opts.id != "" {
		scores, err = scoreAgainstStore(ctx, st, sc, projects)
	} else {
		scores, err = sc.ScoreAll(ctx, projects, opts.concurrency)
	}
	if err != nil {
		return res, err
	}
	res.Scored = len(scores)

	if opts.dryRun {
		for _, s := range scores {
			zap.L().Info("sync: dry run",
				zap.String("opportunity", s.ProjectID),
				zap.Int("overall", s.OverallScore),
				zap.Int("risk_adjusted", s.RiskAdjustedScore),
			)
		}
		return res, nil
	}

	if st != nil {
		if _, err := st.SaveProjects(ctx, projects); err != nil {
			return res, eris.Wrap(err, "sync: save projects")
		}
		if _, err := st.SaveDealScores(ctx, scores, sc.ConfigHash()); err != nil {
			return res, eris.Wrap(err, "sync: save scores")
		}
	}

	updates := make([]sfpkg.OpportunityUpdate, 0, len(scores))
	for _, s := range scores {
		updates = append(updates, sfpkg.OpportunityUpdate{
			ID:     s.ProjectID,
			Fields: sfpkg.ScoreFields(s, opts.mapping),
		})
	}
	// Writing the same score fields twice is harmless, so failed batches retry.
	var results []sfpkg.CollectionResult
	err = resilience.Do(ctx, opts.retry, "salesforce.bulk_update_opportunities", func(ctx context.Context) error {
		var uerr error
		results, uerr = sfpkg.BulkUpdateOpportunities(ctx, sf, updates)
		return uerr
	})
	countResults(&res, results)
	if err != nil {
		return res, err
	}

	zap.L().Info("sync: complete",
		zap.Int("opportunities", res.Opportunities),
		zap.Int("updated", res.Updated),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

func loadOpportunities(ctx context.Context, sf sfpkg.Client, opts syncOptions) ([]sfpkg.Opportunity, error) {
	if opts.id == "" {
		return resilience.DoVal(ctx, opts.retry, "salesforce.find_open_opportunities",
			func(ctx context.Context) ([]sfpkg.Opportunity, error) {
				return sfpkg.FindOpenOpportunities(ctx, sf, opts.limit)
			})
	}

	opp, err := resilience.DoVal(ctx, opts.retry, "salesforce.find_opportunity",
		func(ctx context.Context) (*sfpkg.Opportunity, error) {
			return sfpkg.FindOpportunityByID(ctx, sf, opts.id)
		})
	if err != nil {
		return nil, err
	}
	if opp == nil {
		return nil, eris.Errorf("sync: opportunity %s not found", opts.id)
	}
	return []sfpkg.Opportunity{*opp}, nil
}

// scoreAgainstStore scores projects with the stored projects as the peer
// portfolio. Without a store the peer set is empty.
func scoreAgainstStore(ctx context.Context, st store.Store, sc *scorer.Scorer, projects []model.Project) ([]*model.DealScore, error) {
	var peers []model.Project
	if st != nil {
		var err error
		if peers, err = st.ListProjects(ctx); err != nil {
			return nil, eris.Wrap(err, "sync: load portfolio")
		}
	}
	scores := make([]*model.DealScore, 0, len(projects))
	for _, p := range projects {
		scores = append(scores, sc.ScoreDeal(p, peers))
	}
	return scores, nil
}

func countResults(res *syncResult, results []sfpkg.CollectionResult) {
	for _, r := range results {
		if r.Success {
			res.Updated++
			continue
		}
		res.Failed++
		zap.L().Warn("sync: opportunity update failed",
			zap.String("id", r.ID),
			zap.Strings("errors", r.Errors),
		)
	}
}

func init() {
	syncCmd.Flags().IntVar(&syncLimit, "limit", 0, "max opportunities to sync (0 = all)")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "score without writing to the store or Salesforce")
	syncCmd.Flags().StringVar(&syncID, "id", "", "rescore a single Opportunity against the stored portfolio")
	rootCmd.AddCommand(syncCmd)
}
