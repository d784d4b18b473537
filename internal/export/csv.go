package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/dealscore/internal/model"
)

// ScoreColumns is the header of score CSV and XLSX exports.
var ScoreColumns = []string{
	"project_id", "project_name", "overall_score", "risk_adjusted_score",
	"financial", "operational", "strategic", "risk",
	"confidence", "recommendation", "last_updated",
}

// MetricColumns is the header of metric CSV exports and the Metrics sheet.
var MetricColumns = []string{
	"module", "metric", "label", "fund_value", "industry_median",
	"industry_top_quartile", "industry_top_decile", "percentile", "lower_is_better", "trend",
}

// WriteScoresCSV writes one row per score.
func WriteScoresCSV(w io.Writer, scores []*model.DealScore) error {
	rows := make([][]string, 0, len(scores))
	for _, s := range scores {
		if s == nil {
			continue
		}
		rows = append(rows, scoreRow(s))
	}
	return writeCSV(w, ScoreColumns, rows)
}

// WriteMetricsCSV writes one row per benchmarked metric.
func WriteMetricsCSV(w io.Writer, ib *model.IndustryBenchmarks) error {
	var rows [][]string
	for _, mb := range ib.Modules {
		for _, d := range mb.Metrics {
			rows = append(rows, metricRow(mb.ModuleName, d))
		}
	}
	return writeCSV(w, MetricColumns, rows)
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "csv: write header")
	}
	if err := cw.WriteAll(rows); err != nil {
		return eris.Wrap(err, "csv: write rows")
	}
	return nil
}

func scoreRow(s *model.DealScore) []string {
	rec := ""
	if len(s.Recommendations) > 0 {
		rec = s.Recommendations[0]
	}
	return []string{
		s.ProjectID,
		s.ProjectName,
		strconv.Itoa(s.OverallScore),
		strconv.Itoa(s.RiskAdjustedScore),
		strconv.Itoa(s.Categories.Financial.Score),
		strconv.Itoa(s.Categories.Operational.Score),
		strconv.Itoa(s.Categories.Strategic.Score),
		strconv.Itoa(s.Categories.Risk.Score),
		strconv.FormatFloat(s.Confidence, 'f', 2, 64),
		rec,
		s.LastUpdated.UTC().Format(time.RFC3339),
	}
}

func metricRow(m model.Module, d model.BenchmarkData) []string {
	return []string{
		string(m),
		d.Metric,
		d.Label,
		strconv.FormatFloat(d.FundValue, 'g', -1, 64),
		strconv.FormatFloat(d.IndustryMedian, 'g', -1, 64),
		strconv.FormatFloat(d.IndustryTopQuartile, 'g', -1, 64),
		strconv.FormatFloat(d.IndustryTopDecile, 'g', -1, 64),
		strconv.Itoa(d.Percentile),
		strconv.FormatBool(d.LowerIsBetter),
		string(d.Trend),
	}
}

// readCSV reads every record of r. Fields are trimmed and rows may vary in
// length.
func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.Comment = '#'

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read row")
		}
		for i, field := range record {
			record[i] = strings.TrimSpace(field)
		}
		rows = append(rows, record)
	}
}
