package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentmetrics/domain/grid"
	"talentmetrics/domain/labels"
	"talentmetrics/domain/table"
)

func exits() *table.Table {
	return table.New([]string{"Department", "Count"}, [][]grid.Cell{
		{grid.Text("CUSTOMER SERVICE"), grid.Number(3)},
		{grid.Text("IT "), grid.Number(2)},
		{grid.Text("Legal Ops"), grid.Number(1)},
		{grid.Missing(), grid.Number(4)},
	})
}

func categories(t *table.Table) []string {
	var out []string
	for _, c := range t.Column(Column) {
		out = append(out, c.String())
	}
	return out
}

func TestCategoriesPassthrough(t *testing.T) {
	got := Categories(exits(), "Department", labels.WorkbookDefaults())

	assert.Equal(t, []string{"Department", "Count", Column}, got.Columns)
	assert.Equal(t, []string{"CS", "Tech/IT", "Legal Ops", ""}, categories(got))
	assert.True(t, got.Value(3, Column).IsMissing())
}

func TestCategoriesSentinel(t *testing.T) {
	got := Categories(exits(), "Department", labels.DashboardDefaults())
	assert.Equal(t, []string{"Customer Service", "Tech & IT", "Other", "Other"}, categories(got))
}

func TestCategoriesDoesNotMutateInput(t *testing.T) {
	in := exits()
	_ = Categories(in, "Department", labels.WorkbookDefaults())
	assert.False(t, in.HasColumn(Column))
}

func TestCategoriesIsIdempotent(t *testing.T) {
	m := labels.WorkbookDefaults()
	once := Categories(exits(), "Department", m)
	twice := Categories(once, "Department", m)

	require.Equal(t, once.Columns, twice.Columns)
	assert.Equal(t, categories(once), categories(twice))
}

func TestCategoriesNoOps(t *testing.T) {
	m := labels.WorkbookDefaults()

	empty := table.Empty()
	assert.Same(t, empty, Categories(empty, "Department", m))

	in := exits()
	assert.Same(t, in, Categories(in, "Dept", m))
}

func TestCategoriesNumericLabels(t *testing.T) {
	m := labels.New("test", map[string]string{"42": "Answer"}, labels.Passthrough)
	in := table.New([]string{"Department"}, [][]grid.Cell{{grid.Number(42)}, {grid.Number(7)}})

	got := Categories(in, "Department", m)
	assert.Equal(t, grid.Text("Answer"), got.Value(0, Column))
	assert.Equal(t, grid.Number(7), got.Value(1, Column))
}

func TestUnmapped(t *testing.T) {
	in := table.Concat(exits(), exits())
	assert.Equal(t, []string{"Legal Ops"}, Unmapped(in, "Department", labels.WorkbookDefaults()))
	assert.Nil(t, Unmapped(table.Empty(), "Department", labels.WorkbookDefaults()))
}
