package export

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/dealscore/internal/model"
)

// ReadProjects loads projects from a CSV or XLSX file whose first row names
// the columns. Column names match the project JSON keys; unknown columns
// are ignored and blank rows skipped.
func ReadProjects(path string) ([]model.Project, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, openErr := os.Open(path)
		if openErr != nil {
			return nil, eris.Wrap(openErr, "export: open projects file")
		}
		defer f.Close() //nolint:errcheck
		rows, err = readCSV(f)
	case ".xlsx":
		rows, err = readXLSX(path)
	default:
		return nil, eris.Errorf("export: unsupported projects file %q (want .csv or .xlsx)", path)
	}
	if err != nil {
		return nil, err
	}
	return ParseProjectRows(rows)
}

// ParseProjectRows converts a header row plus data rows into projects.
func ParseProjectRows(rows [][]string) ([]model.Project, error) {
	if len(rows) == 0 {
		return nil, eris.New("export: projects file is empty")
	}
	cols := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["name"]; !ok {
		if _, ok := cols["id"]; !ok {
			return nil, eris.New("export: projects header needs an id or name column")
		}
	}

	var projects []model.Project
	for n, row := range rows[1:] {
		if blank(row) {
			continue
		}
		p, err := parseProjectRow(cols, row)
		if err != nil {
			return nil, eris.Wrapf(err, "export: row %d", n+2)
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func parseProjectRow(cols map[string]int, row []string) (model.Project, error) {
	get := func(name string) string {
		if i, ok := cols[name]; ok && i < len(row) {
			return row[i]
		}
		return ""
	}

	p := model.Project{
		ID:           get("id"),
		Name:         get("name"),
		Sector:       model.ParseSector(get("sector")),
		Stage:        model.ParseStage(get("stage")),
		Geography:    model.ParseGeography(get("geography")),
		RiskRating:   model.ParseRiskRating(get("risk_rating")),
		SalesforceID: get("salesforce_id"),
	}

	var err error
	if p.DealValue, err = parseFloat("deal_value", get("deal_value")); err != nil {
		return p, err
	}
	if p.Progress, err = parseFloat("progress", get("progress")); err != nil {
		return p, err
	}
	if p.TeamSize, err = parseInt("team_size", get("team_size")); err != nil {
		return p, err
	}
	if p.WorkProducts, err = parseInt("work_products", get("work_products")); err != nil {
		return p, err
	}
	if v := get("confidence_score"); v != "" {
		c, err := parseFloat("confidence_score", v)
		if err != nil {
			return p, err
		}
		p.ConfidenceScore = &c
	}
	if v := get("valuation_multiple"); v != "" {
		m, err := parseFloat("valuation_multiple", v)
		if err != nil {
			return p, err
		}
		p.ValuationMultiple = &m
	}
	if v := get("deadline"); v != "" {
		d, err := parseDate(v)
		if err != nil {
			return p, err
		}
		p.Deadline = &d
	}
	return p, nil
}

func parseFloat(col, v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(strings.NewReplacer(",", "", "$", "").Replace(v), 64)
	if err != nil {
		return 0, eris.Errorf("%s: invalid number %q", col, v)
	}
	return f, nil
}

func parseInt(col, v string) (int, error) {
	f, err := parseFloat(col, v)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func parseDate(v string) (time.Time, error) {
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, eris.Errorf("deadline: invalid date %q", v)
}

func blank(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
