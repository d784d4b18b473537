// Package export renders deal scores and fund benchmarks as tables, JSON,
// CSV and XLSX workbooks, and imports project lists from CSV or XLSX files.
package export

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/dealscore/internal/model"
)

// Format is an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatXLSX  Format = "xlsx"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", eris.Errorf("export: unknown format %q (want table, json, csv or xlsx)", s)
	}
}

// Binary reports whether the format must not be written to a terminal.
func (f Format) Binary() bool { return f == FormatXLSX }

// printer formats numbers with thousands separators.
var printer = message.NewPrinter(language.English)

// Money renders a deal value as whole dollars, e.g. "$45,000,000".
func Money(v float64) string {
	return printer.Sprintf("$%.0f", v)
}

// WriteScores writes scores in the given format.
func WriteScores(w io.Writer, f Format, scores []*model.DealScore) error {
	switch f {
	case FormatJSON:
		return writeJSON(w, scores)
	case FormatCSV:
		return WriteScoresCSV(w, scores)
	case FormatXLSX:
		return WriteScoresXLSX(w, scores)
	default:
		WriteScoresTable(w, scores)
		return nil
	}
}

// BenchmarkReport is a benchmark run together with its derived insights.
type BenchmarkReport struct {
	Benchmarks *model.IndustryBenchmarks `json:"benchmarks"`
	Insights   []model.Insight           `json:"insights"`
}

// WriteBenchmarks writes a benchmark report in the given format. CSV output
// carries one row per metric.
func WriteBenchmarks(w io.Writer, f Format, r BenchmarkReport) error {
	if r.Benchmarks == nil {
		return eris.New("export: no benchmarks to write")
	}
	switch f {
	case FormatJSON:
		return writeJSON(w, r)
	case FormatCSV:
		return WriteMetricsCSV(w, r.Benchmarks)
	case FormatXLSX:
		return WriteBenchmarksXLSX(w, r)
	default:
		WriteBenchmarksTable(w, r)
		return nil
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "export: encode json")
	}
	return nil
}
