package export

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/sells-group/dealscore/internal/model"
)

// WriteScoresTable writes a tabular summary of scores to out.
func WriteScoresTable(out io.Writer, scores []*model.DealScore) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PROJECT\tOVERALL\tRISK_ADJ\tFIN\tOPS\tSTRAT\tRISK\tCONF\tRECOMMENDATION")
	_, _ = fmt.Fprintln(w, "-------\t-------\t--------\t---\t---\t-----\t----\t----\t--------------")

	for _, s := range scores {
		if s == nil {
			continue
		}
		rec := ""
		if len(s.Recommendations) > 0 {
			rec = shorten(s.Recommendations[0], 60)
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%.2f\t%s\n",
			shorten(projectLabel(s), 30),
			s.OverallScore,
			s.RiskAdjustedScore,
			s.Categories.Financial.Score,
			s.Categories.Operational.Score,
			s.Categories.Strategic.Score,
			s.Categories.Risk.Score,
			s.Confidence,
			rec,
		)
	}
	_ = w.Flush()
}

// WriteBenchmarksTable writes module grades, the overall ranking and
// insights to out.
func WriteBenchmarksTable(out io.Writer, r BenchmarkReport) {
	ib := r.Benchmarks
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "MODULE\tSCORE\tGRADE\tSTRENGTHS\tGAPS")
	_, _ = fmt.Fprintln(w, "------\t-----\t-----\t---------\t----")
	for _, mb := range ib.Modules {
		_, _ = fmt.Fprintf(w, "%s\t%.1f\t%s\t%d\t%d\n",
			mb.ModuleName.Title(), mb.OverallScore, mb.Grade, len(mb.Strengths), len(mb.ImprovementAreas))
	}
	_ = w.Flush()

	rank := ib.OverallFundRanking
	_, _ = fmt.Fprintf(out, "\nOverall: %.1f percentile, grade %s, rank %s of %s\n",
		rank.Percentile, rank.Grade, printer.Sprint(rank.IndustryRank), printer.Sprint(rank.TotalFunds))

	if len(r.Insights) == 0 {
		return
	}
	_, _ = fmt.Fprintln(out, "\nInsights:")
	for _, in := range r.Insights {
		_, _ = fmt.Fprintf(out, "  [%s] %s: %s\n", in.Type, in.Title, in.Description)
	}
}

func projectLabel(s *model.DealScore) string {
	if s.ProjectName != "" {
		return s.ProjectName
	}
	return s.ProjectID
}

// shorten truncates s to n runes with a trailing ellipsis.
func shorten(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-3]) + "..."
}
