package export

import (
	"io"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/dealscore/internal/model"
)

// Sheet names used by the exported workbooks.
const (
	SheetScores   = "Scores"
	SheetFactors  = "Factors"
	SheetSummary  = "Summary"
	SheetModules  = "Modules"
	SheetMetrics  = "Metrics"
	SheetInsights = "Insights"
	SheetProjects = "Projects"
)

var factorColumns = []string{"project_id", "category", "factor", "value", "weight", "impact", "description"}

// WriteScoresXLSX writes a workbook with a Scores sheet (one row per score)
// and a Factors sheet (one row per scoring factor).
func WriteScoresXLSX(w io.Writer, scores []*model.DealScore) error {
	f := xlsx.NewFile()
	sheet, err := addSheet(f, SheetScores, ScoreColumns)
	if err != nil {
		return err
	}
	factors, err := addSheet(f, SheetFactors, factorColumns)
	if err != nil {
		return err
	}

	for _, s := range scores {
		if s == nil {
			continue
		}
		row := sheet.AddRow()
		addStrings(row, s.ProjectID, s.ProjectName)
		addInts(row,
			s.OverallScore, s.RiskAdjustedScore,
			s.Categories.Financial.Score, s.Categories.Operational.Score,
			s.Categories.Strategic.Score, s.Categories.Risk.Score,
		)
		row.AddCell().SetFloatWithFormat(s.Confidence, "0.00")
		rec := ""
		if len(s.Recommendations) > 0 {
			rec = s.Recommendations[0]
		}
		addStrings(row, rec, s.LastUpdated.UTC().Format(time.RFC3339))

		for i, cat := range s.Categories.All() {
			for _, fac := range cat.Factors {
				fr := factors.AddRow()
				addStrings(fr, s.ProjectID, model.CategoryNames[i], fac.Name)
				fr.AddCell().SetFloatWithFormat(fac.Value, "0.000")
				fr.AddCell().SetFloatWithFormat(fac.Weight, "0.00")
				addStrings(fr, string(fac.Impact), fac.Description)
			}
		}
	}
	return save(f, w)
}

// WriteBenchmarksXLSX writes a workbook with Summary, Modules, Metrics and
// Insights sheets.
func WriteBenchmarksXLSX(w io.Writer, r BenchmarkReport) error {
	ib := r.Benchmarks
	f := xlsx.NewFile()

	summary, err := addSheet(f, SheetSummary, []string{"field", "value"})
	if err != nil {
		return err
	}
	rank := ib.OverallFundRanking
	summaryRow(summary, "generated_at").AddCell().SetString(ib.GeneratedAt.UTC().Format(time.RFC3339))
	summaryRow(summary, "percentile").AddCell().SetFloatWithFormat(rank.Percentile, "0.0")
	summaryRow(summary, "grade").AddCell().SetString(rank.Grade)
	summaryRow(summary, "industry_rank").AddCell().SetInt(rank.IndustryRank)
	summaryRow(summary, "total_funds").AddCell().SetInt(rank.TotalFunds)

	modules, err := addSheet(f, SheetModules, []string{"module", "score", "grade", "better_than", "strengths", "improvement_areas"})
	if err != nil {
		return err
	}
	metrics, err := addSheet(f, SheetMetrics, MetricColumns)
	if err != nil {
		return err
	}
	for _, mb := range ib.Modules {
		row := modules.AddRow()
		row.AddCell().SetString(mb.ModuleName.Title())
		row.AddCell().SetFloatWithFormat(mb.OverallScore, "0.0")
		row.AddCell().SetString(mb.Grade)
		row.AddCell().SetFloatWithFormat(mb.PeerComparison.BetterThan, "0.0")
		addStrings(row, strings.Join(mb.Strengths, "; "), strings.Join(mb.ImprovementAreas, "; "))

		for _, d := range mb.Metrics {
			mr := metrics.AddRow()
			addStrings(mr, string(mb.ModuleName), d.Metric, d.Label)
			mr.AddCell().SetFloat(d.FundValue)
			mr.AddCell().SetFloat(d.IndustryMedian)
			mr.AddCell().SetFloat(d.IndustryTopQuartile)
			mr.AddCell().SetFloat(d.IndustryTopDecile)
			mr.AddCell().SetInt(d.Percentile)
			mr.AddCell().SetBool(d.LowerIsBetter)
			mr.AddCell().SetString(string(d.Trend))
		}
	}

	insights, err := addSheet(f, SheetInsights, []string{"type", "module", "title", "description", "score"})
	if err != nil {
		return err
	}
	for _, in := range r.Insights {
		row := insights.AddRow()
		addStrings(row, string(in.Type), string(in.Module), in.Title, in.Description)
		row.AddCell().SetFloatWithFormat(in.Score, "0.0")
	}
	return save(f, w)
}

func addSheet(f *xlsx.File, name string, header []string) (*xlsx.Sheet, error) {
	sheet, err := f.AddSheet(name)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsx: add sheet %s", name)
	}
	style := xlsx.NewStyle()
	style.Font.Bold = true
	style.ApplyFont = true

	row := sheet.AddRow()
	for _, h := range header {
		cell := row.AddCell()
		cell.SetString(h)
		cell.SetStyle(style)
	}
	return sheet, nil
}

func summaryRow(sheet *xlsx.Sheet, field string) *xlsx.Row {
	row := sheet.AddRow()
	row.AddCell().SetString(field)
	return row
}

func addStrings(row *xlsx.Row, values ...string) {
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

func addInts(row *xlsx.Row, values ...int) {
	for _, v := range values {
		row.AddCell().SetInt(v)
	}
}

func save(f *xlsx.File, w io.Writer) error {
	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "xlsx: write workbook")
	}
	return nil
}

// readXLSX returns every row of the Projects sheet, or of the first sheet
// when no sheet has that name.
func readXLSX(path string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}

	sheet, ok := f.Sheet[SheetProjects]
	if !ok {
		if len(f.Sheets) == 0 {
			return nil, eris.Errorf("xlsx: %s has no sheets", path)
		}
		sheet = f.Sheets[0]
	}

	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = strings.TrimSpace(cell.String())
		}
		rows = append(rows, cells)
	}
	return rows, nil
}
