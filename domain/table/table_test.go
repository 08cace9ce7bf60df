package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentmetrics/domain/grid"
)

func row(values ...string) []grid.Cell {
	out := make([]grid.Cell, len(values))
	for i, v := range values {
		out[i] = grid.ParseCell(v)
	}
	return out
}

func TestFromGrid(t *testing.T) {
	g := grid.FromStrings([][]string{
		{"Fecha", "Leadtech", "Deel"},
		{"2024-01-31", "600", "30"},
		{"", "", ""},
		{"2024-02-29", "610"},
	})

	tbl := FromGrid(g)
	assert.Equal(t, []string{"Fecha", "Leadtech", "Deel"}, tbl.Columns)
	require.Equal(t, 2, tbl.Len())
	assert.True(t, tbl.Value(1, "Deel").IsMissing())
	assert.Equal(t, 610.0, tbl.Value(1, "Leadtech").FloatOr(0))
}

func TestWithColumnAddsThenReplaces(t *testing.T) {
	tbl := New([]string{"Department", "Count"}, [][]grid.Cell{row("CS", "3"), row("DBI", "1")})

	added := tbl.WithColumn("Unified_Category", row("CS", "Data"))
	assert.Equal(t, []string{"Department", "Count", "Unified_Category"}, added.Columns)
	assert.Equal(t, 2, tbl.Width(), "original untouched")

	replaced := added.WithColumn("Unified_Category", row("X", "Y"))
	assert.Equal(t, 3, replaced.Width())
	assert.Equal(t, "Y", replaced.Value(1, "Unified_Category").String())
}

func TestWithConstant(t *testing.T) {
	tbl := New([]string{"Department"}, [][]grid.Cell{row("CS"), row("HR")})
	tagged := tbl.WithConstant("Type", grid.Text("Voluntary"))
	assert.Equal(t, []string{"Voluntary", "Voluntary"}, []string{
		tagged.Value(0, "Type").String(), tagged.Value(1, "Type").String(),
	})
}

func TestConcatUnionsColumns(t *testing.T) {
	a := New([]string{"Department", "Count"}, [][]grid.Cell{row("CS", "3")})
	b := New([]string{"Department", "Count", "Type"}, [][]grid.Cell{row("HR", "2", "Dismissal")})

	out := Concat(a, Empty(), b)
	assert.Equal(t, []string{"Department", "Count", "Type"}, out.Columns)
	require.Equal(t, 2, out.Len())
	assert.True(t, out.Value(0, "Type").IsMissing())
	assert.Equal(t, "Dismissal", out.Value(1, "Type").String())
}

func TestConcatOfNothingIsEmpty(t *testing.T) {
	assert.True(t, Concat(Empty(), nil).IsEmpty())
}

func TestAppendRowKeepsWidthInvariant(t *testing.T) {
	tbl := New([]string{"a", "b"}, nil)
	tbl.AppendRow(row("1"))
	tbl.AppendRow(row("1", "2", "3"))
	for _, r := range tbl.Rows {
		assert.Len(t, r, 2)
	}
}

func TestConcatKeepsUnnamedColumnsApart(t *testing.T) {
	a := New([]string{"", "", "Type"}, [][]grid.Cell{row("CS", "3", "Voluntary")})
	a.Degraded = true
	b := New([]string{"", "", "Type"}, [][]grid.Cell{row("HR", "2", "Dismissal")})
	b.Degraded = true

	out := Concat(a, b)
	assert.Equal(t, []string{"", "", "Type"}, out.Columns)
	assert.True(t, out.Degraded)
	require.Equal(t, 2, out.Len())
	assert.Equal(t, "CS", out.Rows[0][0].String())
	assert.Equal(t, "3", out.Rows[0][1].String())
	assert.Equal(t, "Voluntary", out.Rows[0][2].String())
	assert.Equal(t, "HR", out.Rows[1][0].String())
	assert.Equal(t, "2", out.Rows[1][1].String())
}
