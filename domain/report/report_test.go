package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentmetrics/domain/grid"
	"talentmetrics/domain/table"
)

func oneRow(v string) *table.Table {
	return table.New([]string{"A"}, [][]grid.Cell{{grid.Text(v)}})
}

func TestReportAdd(t *testing.T) {
	r := New("workbook-2025.1")
	require.NotEmpty(t, r.RunID)

	r.Add(TabDeptHealth, oneRow("x"))
	r.Add(TabCostOfChurn, table.Empty())
	r.Add(TabWorkforceMix, oneRow("y"))
	r.Add(TabDeptHealth, oneRow("z"))

	assert.Equal(t, []string{TabDeptHealth, TabWorkforceMix}, r.Names())
	got, ok := r.Table(TabDeptHealth)
	require.True(t, ok)
	assert.Equal(t, "z", got.Value(0, "A").String())

	_, ok = r.Table(TabCostOfChurn)
	assert.False(t, ok)
}

func TestDiagnosticsUnmapped(t *testing.T) {
	var d Diagnostics
	assert.True(t, d.IsClean())

	d.AddUnmapped("exits", nil)
	assert.Nil(t, d.UnmappedLabels)

	d.AddUnmapped("exits", []string{"Legal Ops", "Ai Lab"})
	d.AddUnmapped("exits", []string{"Ai Lab", "Growth"})
	assert.Equal(t, []string{"Ai Lab", "Growth", "Legal Ops"}, d.UnmappedLabels["exits"])
	assert.False(t, d.IsClean())
}
