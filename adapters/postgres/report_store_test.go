package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentmetrics/domain/core"
	"talentmetrics/domain/grid"
	"talentmetrics/domain/report"
	"talentmetrics/domain/table"
)

func healthTable() *table.Table {
	return table.New([]string{"Unified_Category", "Total_Exits", "Health_Status"}, [][]grid.Cell{
		{grid.Text("CS"), grid.Number(5), grid.Text("Stable")},
		{grid.Text("Tech/IT"), grid.Number(6), grid.Missing()},
	})
}

func TestEncodeDecodeTable(t *testing.T) {
	in := healthTable()
	in.Degraded = true

	record, err := encodeTable("DB_Dept_Health", 3, in)
	require.NoError(t, err)
	assert.Equal(t, 3, record.Position)
	assert.JSONEq(t, `[["CS",5,"Stable"],["Tech/IT",6,null]]`, string(record.Rows))

	out, err := decodeTable(record)
	require.NoError(t, err)
	assert.Equal(t, in.Columns, out.Columns)
	assert.Equal(t, in.Rows, out.Rows)
	assert.True(t, out.Degraded)
}

func TestEncodeEmptyTable(t *testing.T) {
	record, err := encodeTable("empty", 0, table.Empty())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(record.Columns))
	assert.Equal(t, "[]", string(record.Rows))
}

// testDB connects to TALENT_TEST_DATABASE_URL or skips
func testDB(t *testing.T) *sqlx.DB {
	t.Helper()
	url := os.Getenv("TALENT_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TALENT_TEST_DATABASE_URL not set")
	}
	db, err := Connect(context.Background(), url, 2)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestReportStoreRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	r := report.New("workbook-2025.1")
	r.Diagnostics.HighRisk = []string{"Tech/IT"}
	store := NewReportStore(db, r.RunID)
	t.Cleanup(func() {
		db.ExecContext(ctx, `DELETE FROM report_runs WHERE run_id = $1`, r.RunID.String())
	})

	require.NoError(t, store.SaveRun(ctx, r))
	require.NoError(t, store.WriteTable(ctx, "DB_Dept_Health", healthTable()))
	require.NoError(t, store.WriteTable(ctx, "DB_Cost_of_Churn", healthTable()))
	assert.ErrorIs(t, store.WriteTable(ctx, "DB_Dept_Health", healthTable()), core.ErrDuplicateName)

	names, err := store.TableNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"DB_Dept_Health", "DB_Cost_of_Churn"}, names)

	got, err := store.ReadTable(ctx, "DB_Dept_Health")
	require.NoError(t, err)
	assert.Equal(t, healthTable().Rows, got.Rows)

	_, err = store.ReadTable(ctx, "DB_Missing")
	assert.True(t, core.IsTableNotFoundError(err))

	runs, err := ListRuns(ctx, db, 50)
	require.NoError(t, err)
	found := false
	for _, run := range runs {
		if run.RunID == r.RunID {
			found = true
			assert.Equal(t, 2, run.Tables)
		}
	}
	assert.True(t, found)

	require.NoError(t, store.Close())
	assert.ErrorIs(t, store.WriteTable(ctx, "Later", healthTable()), core.ErrSinkClosed)
}
