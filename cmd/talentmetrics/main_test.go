package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentmetrics/adapters/excel"
	"talentmetrics/domain/grid"
	"talentmetrics/domain/report"
	"talentmetrics/domain/table"
)

func TestSplitColumns(t *testing.T) {
	assert.Equal(t, []string{"Department", "Count"}, splitColumns(" Department, ,Count "))
	assert.Nil(t, splitColumns(""))
}

func TestPresetsMatchPipelineSections(t *testing.T) {
	assert.Equal(t, "Voluntary exit per Department", presets["voluntary"].Keyword)
	assert.Equal(t, "Disciplinary dismissal", presets["dismissal"].Keyword)
	assert.Equal(t, "Exit timing", presets["tenure"].Keyword)
	assert.Equal(t, "Training investment by department", presets["training"].Keyword)
}

func TestPrintTable(t *testing.T) {
	tbl := table.New([]string{"Unified_Category", ""}, [][]grid.Cell{
		{grid.Text("CS"), grid.Number(5)},
		{grid.Text("Tech/IT"), grid.Number(6)},
		{grid.Text("HR"), grid.Number(1)},
	})
	var buf bytes.Buffer
	printTable(&buf, "DB_Dept_Health", tbl, 2)

	out := buf.String()
	assert.Contains(t, out, "DB_Dept_Health")
	assert.Contains(t, out, "Tech/IT")
	assert.Contains(t, out, "col1")
	assert.NotContains(t, out, "HR")
	assert.Contains(t, out, "1 more rows")
}

func TestPrintDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	printDiagnostics(&buf, report.Diagnostics{})
	assert.Contains(t, buf.String(), "No data-quality findings")

	buf.Reset()
	printDiagnostics(&buf, report.Diagnostics{
		LoadFailures:   []report.LoadFailure{{Input: "exits", Source: "exits.xlsx", Error: "boom"}},
		UnmappedLabels: map[string][]string{"exits": {"Mystery"}},
		HighRisk:       []string{"Tech/IT"},
	})
	out := buf.String()
	assert.Contains(t, out, "load failed: exits (exits.xlsx): boom")
	assert.Contains(t, out, "unmapped exits labels: Mystery")
	assert.Contains(t, out, "high risk: Tech/IT")
}

func TestBuildCommandWritesWorkbook(t *testing.T) {
	dir := t.TempDir()
	exits := filepath.Join(dir, "exits.csv")
	require.NoError(t, writeFile(exits, "Voluntary exit per Department,\nDepartment,Count\nCUSTOMER SERVICE,3\nIT,4\nTotal,7\n"))
	out := filepath.Join(dir, "model.xlsx")

	t.Setenv("TALENT_INPUT_EXITS_FILE", exits)
	t.Setenv("TALENT_INPUT_HEADCOUNT_FILE", "")
	t.Setenv("TALENT_INPUT_TRAINING_FILE", "")
	t.Setenv("TALENT_OUTPUT_HTML", "")
	t.Setenv("TALENT_OUTPUT_STORE", "false")

	cmd := newBuildCmd()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"--output", out, "--preview", "0"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), report.TabDeptHealth)

	wb, err := excel.OpenWorkbook(out)
	require.NoError(t, err)
	defer wb.Close()
	names, err := wb.TableNames(context.Background())
	require.NoError(t, err)
	assert.Contains(t, names, report.TabExits)
	assert.Contains(t, names, report.TabDeptHealth)
	assert.Contains(t, names, report.TabCostOfChurn)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
