package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/dealscore/internal/model"
)

// writeWorkbook runs write against a temp file and reopens it.
func writeWorkbook(t *testing.T, write func(f *os.File) error) *xlsx.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.xlsx")
	out, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, write(out))
	require.NoError(t, out.Close())

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	return f
}

func sheetRows(t *testing.T, f *xlsx.File, name string) [][]string {
	t.Helper()
	sheet, ok := f.Sheet[name]
	require.True(t, ok, "sheet %s", name)
	var rows [][]string
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			cells[i] = c.String()
		}
		rows = append(rows, cells)
	}
	return rows
}

func TestWriteScoresXLSX(t *testing.T) {
	f := writeWorkbook(t, func(out *os.File) error {
		return WriteScores(out, FormatXLSX, testScores())
	})

	scores := sheetRows(t, f, SheetScores)
	require.Len(t, scores, 3)
	assert.Equal(t, ScoreColumns, scores[0])
	assert.Equal(t, "p-1", scores[1][0])
	assert.Equal(t, "78", scores[1][2])
	assert.Equal(t, "Proceed to investment committee", scores[1][9])

	factors := sheetRows(t, f, SheetFactors)
	require.Len(t, factors, 2)
	assert.Equal(t, []string{"p-1", "financial", "deal_size"}, factors[1][:3])
	assert.Equal(t, "positive", factors[1][5])
}

func TestWriteBenchmarksXLSX(t *testing.T) {
	f := writeWorkbook(t, func(out *os.File) error {
		return WriteBenchmarks(out, FormatXLSX, testReport())
	})

	summary := sheetRows(t, f, SheetSummary)
	require.Len(t, summary, 6)
	assert.Equal(t, []string{"grade", "A"}, summary[3])
	assert.Equal(t, []string{"industry_rank", "50"}, summary[4])

	modules := sheetRows(t, f, SheetModules)
	require.Len(t, modules, 2)
	assert.Equal(t, "Legal", modules[1][0])
	assert.Equal(t, "Rapid document turnaround", modules[1][4])

	metrics := sheetRows(t, f, SheetMetrics)
	require.Len(t, metrics, 2)
	assert.Equal(t, "document_turnaround_days", metrics[1][1])
	assert.Equal(t, "90", metrics[1][7])

	insights := sheetRows(t, f, SheetInsights)
	require.Len(t, insights, 2)
	assert.Equal(t, "strength", insights[1][0])
}

func TestReadProjectsXLSX(t *testing.T) {
	f := xlsx.NewFile()
	other, err := f.AddSheet("Notes")
	require.NoError(t, err)
	other.AddRow().AddCell().SetString("not a project sheet")

	sheet, err := f.AddSheet(SheetProjects)
	require.NoError(t, err)
	for _, data := range [][]string{
		{"id", "name", "deal_value", "sector", "team_size"},
		{"p-1", "Atlas", "45000000", "software", "5"},
		{"p-2", "Borealis", "12000000", "healthcare", "3"},
	} {
		row := sheet.AddRow()
		for _, v := range data {
			row.AddCell().SetString(v)
		}
	}
	path := filepath.Join(t.TempDir(), "projects.xlsx")
	require.NoError(t, f.Save(path))

	projects, err := ReadProjects(path)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "Atlas", projects[0].Name)
	assert.Equal(t, model.SectorTechnology, projects[0].Sector)
	assert.Equal(t, 3, projects[1].TeamSize)
}
