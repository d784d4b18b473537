package benchmark

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/sells-group/dealscore/internal/model"
)

// GenerateComprehensiveBenchmarks benchmarks every module in reporting order
// and derives the overall fund ranking. Modules absent from inputs are
// benchmarked with every metric at the industry median.
func (b *Benchmarker) GenerateComprehensiveBenchmarks(inputs map[model.Module]ModuleInput) (*model.IndustryBenchmarks, error) {
	var unknown []string
	for m := range inputs {
		if _, ok := b.ref[m]; !ok {
			unknown = append(unknown, string(m))
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		zap.L().Warn("benchmark: ignoring unknown modules", zap.Strings("modules", unknown))
	}

	ib := &model.IndustryBenchmarks{GeneratedAt: b.now().UTC()}
	scores := make([]float64, 0, len(model.Modules))
	for _, m := range model.Modules {
		mb, err := b.BenchmarkModule(m, inputs[m])
		if err != nil {
			return nil, err
		}
		ib.Modules = append(ib.Modules, mb)
		scores = append(scores, mb.OverallScore)
	}

	percentile := stat.Mean(scores, nil)
	ib.OverallFundRanking = model.FundRanking{
		IndustryRank: b.industryRank(percentile),
		TotalFunds:   b.cfg.PeerPopulation,
		Percentile:   percentile,
		Grade:        Grade(percentile),
	}

	zap.L().Info("benchmark: comprehensive benchmarks generated",
		zap.Float64("percentile", percentile),
		zap.Int("industry_rank", ib.OverallFundRanking.IndustryRank),
		zap.String("grade", ib.OverallFundRanking.Grade),
	)
	return ib, nil
}

// industryRank maps a percentile linearly onto the peer population.
func (b *Benchmarker) industryRank(percentile float64) int {
	rank := int(math.Floor((100 - percentile) * b.cfg.RankMultiplier))
	if rank < 1 {
		return 1
	}
	if rank > b.cfg.PeerPopulation {
		return b.cfg.PeerPopulation
	}
	return rank
}

// Insights derives cross-module observations: the top module as a strength,
// one opportunity per module below the gap threshold, and a closing ranking
// insight.
func (b *Benchmarker) Insights(ib *model.IndustryBenchmarks) []model.Insight {
	if ib == nil {
		return nil
	}
	var out []model.Insight

	if len(ib.Modules) > 0 {
		top := ib.Modules[0]
		for _, mb := range ib.Modules[1:] {
			if mb.OverallScore > top.OverallScore {
				top = mb
			}
		}
		out = append(out, model.Insight{
			Type:        model.InsightStrength,
			Module:      top.ModuleName,
			Title:       fmt.Sprintf("%s leads the fund", top.ModuleName.Title()),
			Description: fmt.Sprintf("%s is the top-performing module with a score of %.1f (%s).", top.ModuleName.Title(), top.OverallScore, top.Grade),
			Score:       top.OverallScore,
		})
	}

	for _, mb := range ib.Modules {
		if mb.OverallScore >= b.cfg.GapThreshold {
			continue
		}
		desc := fmt.Sprintf("%s scores %.1f (%s), below the industry median.", mb.ModuleName.Title(), mb.OverallScore, mb.Grade)
		if len(mb.ImprovementAreas) > 0 {
			desc += " Focus: " + strings.Join(mb.ImprovementAreas, "; ") + "."
		}
		out = append(out, model.Insight{
			Type:        model.InsightOpportunity,
			Module:      mb.ModuleName,
			Title:       fmt.Sprintf("Improve %s", mb.ModuleName.Title()),
			Description: desc,
			Score:       mb.OverallScore,
		})
	}

	r := ib.OverallFundRanking
	ranking := model.Insight{
		Type:        model.InsightOpportunity,
		Title:       "Overall industry ranking",
		Description: fmt.Sprintf("Ranked #%d of %d funds (%.1f percentile, grade %s).", r.IndustryRank, r.TotalFunds, r.Percentile, r.Grade),
		Score:       r.Percentile,
	}
	if r.Percentile >= b.cfg.StrengthThreshold {
		ranking.Type = model.InsightStrength
	}
	return append(out, ranking)
}
