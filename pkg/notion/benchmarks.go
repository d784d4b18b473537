package notion

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/dealscore/internal/model"
)

// Property names of the benchmark database.
const (
	PropModule           = "Module"
	PropScore            = "Score"
	PropGrade            = "Grade"
	PropFundPercentile   = "Fund Percentile"
	PropIndustryRank     = "Industry Rank"
	PropStrengths        = "Strengths"
	PropImprovementAreas = "Improvement Areas"
	PropMetrics          = "Metrics"
	PropGeneratedAt      = "Generated At"
)

// maxRichText is Notion's per-text-object content limit.
const maxRichText = 2000

// PublishResult counts the pages written by PublishModuleBenchmarks.
type PublishResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// PublishModuleBenchmarks writes one page per module benchmark into dbID.
// A page whose Module title matches the module title is updated in place;
// otherwise a new page is created.
func PublishModuleBenchmarks(ctx context.Context, c Client, dbID string, ib *model.IndustryBenchmarks) (PublishResult, error) {
	var res PublishResult
	if ib == nil || len(ib.Modules) == 0 {
		return res, nil
	}

	pages, err := QueryAll(ctx, c, dbID, nil)
	if err != nil {
		return res, eris.Wrap(err, "notion: list benchmark pages")
	}
	existing := make(map[string]string, len(pages))
	for _, p := range pages {
		if title := PageTitle(p, PropModule); title != "" {
			existing[title] = string(p.ID)
		}
	}

	for _, mb := range ib.Modules {
		if ctx.Err() != nil {
			return res, eris.Wrap(ctx.Err(), "notion: publish cancelled")
		}
		props := BenchmarkProperties(mb, ib.OverallFundRanking, ib.GeneratedAt)
		title := mb.ModuleName.Title()

		if pageID, ok := existing[title]; ok {
			if _, err := c.UpdatePage(ctx, pageID, &notionapi.PageUpdateRequest{Properties: props}); err != nil {
				return res, eris.Wrap(err, fmt.Sprintf("notion: update benchmark page %s", title))
			}
			res.Updated++
			continue
		}

		req := &notionapi.PageCreateRequest{
			Parent: notionapi.Parent{
				Type:       notionapi.ParentTypeDatabaseID,
				DatabaseID: notionapi.DatabaseID(dbID),
			},
			Properties: props,
		}
		if _, err := c.CreatePage(ctx, req); err != nil {
			return res, eris.Wrap(err, fmt.Sprintf("notion: create benchmark page %s", title))
		}
		res.Created++
	}

	zap.L().Info("notion: benchmarks published",
		zap.String("database", dbID),
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
	)
	return res, nil
}

// BenchmarkProperties builds the page properties for one module benchmark.
func BenchmarkProperties(mb model.ModuleBenchmark, ranking model.FundRanking, generatedAt time.Time) notionapi.Properties {
	date := notionapi.Date(generatedAt)
	return notionapi.Properties{
		PropModule: notionapi.TitleProperty{
			Type:  notionapi.PropertyTypeTitle,
			Title: richText(mb.ModuleName.Title()),
		},
		PropScore:          notionapi.NumberProperty{Number: round1(mb.OverallScore)},
		PropGrade:          notionapi.SelectProperty{Select: notionapi.Option{Name: mb.Grade}},
		PropFundPercentile: notionapi.NumberProperty{Number: round1(ranking.Percentile)},
		PropIndustryRank:   notionapi.NumberProperty{Number: float64(ranking.IndustryRank)},
		PropStrengths: notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(strings.Join(mb.Strengths, "; ")),
		},
		PropImprovementAreas: notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(strings.Join(mb.ImprovementAreas, "; ")),
		},
		PropMetrics: notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(metricSummary(mb.Metrics)),
		},
		PropGeneratedAt: notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: &date},
		},
	}
}

// metricSummary renders one line per metric, e.g.
// "Portfolio IRR (%): 28 vs median 15 (P90, improving)".
func metricSummary(metrics []model.BenchmarkData) string {
	lines := make([]string, 0, len(metrics))
	for _, d := range metrics {
		lines = append(lines, fmt.Sprintf("%s: %g vs median %g (P%d, %s)",
			d.Label, d.FundValue, d.IndustryMedian, d.Percentile, d.Trend))
	}
	return strings.Join(lines, "\n")
}

func richText(s string) []notionapi.RichText {
	if len(s) > maxRichText {
		s = s[:maxRichText]
	}
	return []notionapi.RichText{
		{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: s}},
	}
}

// round1 rounds a score to one decimal for display in the workspace.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
