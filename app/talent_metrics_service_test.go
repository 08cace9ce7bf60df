package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"talentmetrics/domain/core"
	"talentmetrics/domain/grid"
	"talentmetrics/domain/report"
	"talentmetrics/domain/table"
	"talentmetrics/internal"
	apperrors "talentmetrics/internal/errors"
	"talentmetrics/internal/metrics"
	"talentmetrics/ports"
)

type mockLoader struct {
	mock.Mock
}

func (m *mockLoader) Load(ctx context.Context, src ports.Source) (*grid.Grid, error) {
	args := m.Called(ctx, src)
	g, _ := args.Get(0).(*grid.Grid)
	return g, args.Error(1)
}

func (m *mockLoader) Fingerprint(ctx context.Context, src ports.Source) (core.Hash, error) {
	args := m.Called(ctx, src)
	return core.Hash(args.String(0)), args.Error(1)
}

var (
	headcountSrc = ports.Source{Path: "headcount.xlsx", Sheet: "Evolution"}
	exitsSrc     = ports.Source{Path: "exits.xlsx", Sheet: "2025"}
	trainingSrc  = ports.Source{Path: "training.csv"}
	allInputs    = Inputs{Headcount: headcountSrc, Exits: exitsSrc, Training: trainingSrc}
)

func headcountGrid() *grid.Grid {
	return grid.FromStrings([][]string{
		{"Fecha", "Leadtech", "Randstad", "Deel", "Freelance"},
		{"45322", "600", "50", "30", "20"},
		{"45351", "650", "30", "10", "10"},
	})
}

func exitsGrid() *grid.Grid {
	return grid.FromStrings([][]string{
		{"Voluntary exit per Department", ""},
		{"Department", "Count"},
		{"CUSTOMER SERVICE", "3"},
		{"IT - DEVELOPER", "4"},
		{"Total", "7"},
		{"", ""},
		{"Disciplinary dismissal", ""},
		{"Department", "Count"},
		{"CUSTOMER SERVICE", "2"},
		{"IT", "2"},
		{"Mystery Dept", "1"},
		{"TOTAL", "5"},
		{"", ""},
		{"Exit timing", "", ""},
		{"Timing", "Exits", "Avg tenure"},
		{"< 6 months", "4", "3"},
		{"> 2 years", "2", "30"},
	})
}

func trainingGrid() *grid.Grid {
	return grid.FromStrings([][]string{
		{"Training investment by department", "", ""},
		{"Department", "Investment", "Hours"},
		{"CUSTOMER SERVICE", "500", "10"},
		{"IT", "1000", "20"},
		{"Total", "1500", "30"},
	})
}

func newService(loader ports.GridLoader) *TalentMetricsService {
	return NewTalentMetricsService(loader, DefaultOptions(), internal.NewNopLogger(), nil)
}

func healthRows(t *testing.T, r *report.Report) map[string][]grid.Cell {
	t.Helper()
	tbl, ok := r.Table(report.TabDeptHealth)
	require.True(t, ok)
	out := make(map[string][]grid.Cell)
	idx := tbl.ColumnIndex(metrics.ColCategory)
	require.GreaterOrEqual(t, idx, 0)
	for _, row := range tbl.Rows {
		out[row[idx].String()] = row
	}
	return out
}

func TestBuildFullReport(t *testing.T) {
	loader := &mockLoader{}
	loader.On("Load", mock.Anything, headcountSrc).Return(headcountGrid(), nil)
	loader.On("Load", mock.Anything, exitsSrc).Return(exitsGrid(), nil)
	loader.On("Load", mock.Anything, trainingSrc).Return(trainingGrid(), nil)

	r, err := newService(loader).Build(context.Background(), allInputs)
	require.NoError(t, err)
	loader.AssertExpectations(t)

	assert.Equal(t, []string{
		report.TabHeadcount,
		report.TabExits,
		report.TabTraining,
		report.TabRetentionTenure,
		report.TabDeptHealth,
		report.TabCostOfChurn,
		report.TabWorkforceMix,
		report.TabHiringForecast,
	}, r.Names())
	assert.Equal(t, "workbook-2025.1", r.LabelVersion)

	rows := healthRows(t, r)
	assert.Contains(t, rows, "CS")
	assert.Contains(t, rows, "Tech/IT")
	assert.Contains(t, rows, "Mystery Dept")
	assert.Equal(t, []string{"Tech/IT"}, r.Diagnostics.HighRisk)
	assert.Equal(t, map[string][]string{InputExits: {"Mystery Dept"}}, r.Diagnostics.UnmappedLabels)
	assert.Empty(t, r.Diagnostics.LoadFailures)
	assert.Empty(t, r.Diagnostics.MissingSections)

	exits, _ := r.Table(report.TabExits)
	assert.Equal(t, 5, exits.Len())
	assert.True(t, exits.HasColumn(metrics.ColCategory))

	forecast, _ := r.Table(report.TabHiringForecast)
	assert.Equal(t, metrics.DefaultForecastParams().Horizon, forecast.Len())

	retention, _ := r.Table(report.TabRetentionTenure)
	assert.Equal(t, 2, retention.Len())
}

func TestBuildSurvivesOneFailedInput(t *testing.T) {
	loader := &mockLoader{}
	loader.On("Load", mock.Anything, headcountSrc).Return(headcountGrid(), nil)
	loader.On("Load", mock.Anything, exitsSrc).Return(exitsGrid(), nil)
	loader.On("Load", mock.Anything, trainingSrc).
		Return(nil, apperrors.UpstreamLoadFailure(trainingSrc.String(), core.ErrSourceNotFound))

	r, err := newService(loader).Build(context.Background(), allInputs)
	require.NoError(t, err)

	require.Len(t, r.Diagnostics.LoadFailures, 1)
	assert.Equal(t, InputTraining, r.Diagnostics.LoadFailures[0].Input)
	assert.Equal(t, "training.csv", r.Diagnostics.LoadFailures[0].Source)

	_, ok := r.Table(report.TabTraining)
	assert.False(t, ok, "empty training tab is skipped")

	rows := healthRows(t, r)
	require.Contains(t, rows, "CS")
	tbl, _ := r.Table(report.TabDeptHealth)
	assert.False(t, tbl.HasColumn(metrics.ColInvestment))
}

func TestBuildWrapsPlainLoaderErrors(t *testing.T) {
	loader := &mockLoader{}
	loader.On("Load", mock.Anything, headcountSrc).Return(nil, errors.New("disk on fire"))
	loader.On("Load", mock.Anything, exitsSrc).Return(exitsGrid(), nil)

	r, err := newService(loader).Build(context.Background(), Inputs{Headcount: headcountSrc, Exits: exitsSrc})
	require.NoError(t, err)
	require.Len(t, r.Diagnostics.LoadFailures, 1)
	assert.Contains(t, r.Diagnostics.LoadFailures[0].Error, "disk on fire")

	_, ok := r.Table(report.TabHiringForecast)
	assert.False(t, ok)
}

func TestBuildFailsWhenEveryInputFails(t *testing.T) {
	loader := &mockLoader{}
	loader.On("Load", mock.Anything, mock.Anything).Return(nil, errors.New("unreadable"))

	r, err := newService(loader).Build(context.Background(), allInputs)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUpstreamLoad)
	require.NotNil(t, r)
	assert.Len(t, r.Diagnostics.LoadFailures, 3)
	assert.Empty(t, r.Tables)
}

func TestBuildWithoutInputs(t *testing.T) {
	_, err := newService(&mockLoader{}).Build(context.Background(), Inputs{})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))
}

func TestBuildReportsMissingSections(t *testing.T) {
	loader := &mockLoader{}
	loader.On("Load", mock.Anything, exitsSrc).Return(grid.FromStrings([][]string{
		{"Voluntary exit per Department"},
		{"Department", "Count"},
		{"CUSTOMER SERVICE", "3"},
	}), nil)

	r, err := newService(loader).Build(context.Background(), Inputs{Exits: exitsSrc})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{SectionDismissal, SectionTenure}, r.Diagnostics.MissingSections)

	retention, ok := r.Table(report.TabRetentionTenure)
	require.True(t, ok)
	assert.Equal(t, []string{"Info"}, retention.Columns)
}

func TestBuildReportsDegradedSections(t *testing.T) {
	loader := &mockLoader{}
	loader.On("Load", mock.Anything, exitsSrc).Return(grid.FromStrings([][]string{
		{"Voluntary exit per Department", "", ""},
		{"Department", "Count", "Notes"},
		{"CUSTOMER SERVICE", "3", "x"},
	}), nil)

	r, err := newService(loader).Build(context.Background(), Inputs{Exits: exitsSrc})
	require.NoError(t, err)
	assert.Equal(t, []string{SectionVoluntary}, r.Diagnostics.DegradedSections)
}

func TestBuildHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loader := &mockLoader{}
	loader.On("Load", mock.Anything, mock.Anything).Return(nil, context.Canceled)

	_, err := newService(loader).Build(ctx, allInputs)
	assert.ErrorIs(t, err, context.Canceled)
}

// recordingSink keeps written tables in memory
type recordingSink struct {
	names    []string
	diag     *report.Diagnostics
	failOn   string
	closed   bool
	closeErr error
}

func (s *recordingSink) WriteTable(_ context.Context, name string, _ *table.Table) error {
	if name == s.failOn {
		return errors.New("refused")
	}
	s.names = append(s.names, name)
	return nil
}

func (s *recordingSink) WriteDiagnostics(d report.Diagnostics) { s.diag = &d }

func (s *recordingSink) Close() error {
	s.closed = true
	return s.closeErr
}

func sampleReport() *report.Report {
	r := report.New("test")
	r.Add(report.TabExits, table.New([]string{"A"}, [][]grid.Cell{{grid.Number(1)}}))
	r.Add(report.TabDeptHealth, table.New([]string{"B"}, [][]grid.Cell{{grid.Number(2)}}))
	r.Diagnostics.HighRisk = []string{"Tech/IT"}
	return r
}

func TestWriteReport(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	err := newService(&mockLoader{}).WriteReport(context.Background(), sampleReport(), a, b)
	require.NoError(t, err)

	for _, s := range []*recordingSink{a, b} {
		assert.Equal(t, []string{report.TabExits, report.TabDeptHealth}, s.names)
		assert.True(t, s.closed)
		require.NotNil(t, s.diag)
		assert.Equal(t, []string{"Tech/IT"}, s.diag.HighRisk)
	}
}

func TestWriteReportContinuesPastFailingSink(t *testing.T) {
	bad := &recordingSink{failOn: report.TabDeptHealth}
	good := &recordingSink{}
	closing := &recordingSink{closeErr: errors.New("save failed")}

	err := newService(&mockLoader{}).WriteReport(context.Background(), sampleReport(), bad, good, closing)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeSinkError, apperrors.GetCode(err))
	assert.Contains(t, err.Error(), "refused")
	assert.Contains(t, err.Error(), "save failed")

	assert.True(t, bad.closed)
	assert.Nil(t, bad.diag)
	assert.Equal(t, []string{report.TabExits, report.TabDeptHealth}, good.names)
}

func TestInputsPaths(t *testing.T) {
	assert.Equal(t, []string{"headcount.xlsx", "training.csv"}, Inputs{Headcount: headcountSrc, Training: trainingSrc}.Paths())
}
