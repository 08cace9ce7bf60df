package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"talentmetrics/domain/grid"
	"talentmetrics/domain/labels"
	"talentmetrics/domain/report"
	"talentmetrics/domain/table"
	"talentmetrics/internal"
	"talentmetrics/internal/errors"
	"talentmetrics/internal/extract"
	"talentmetrics/internal/metrics"
	"talentmetrics/internal/normalize"
	"talentmetrics/internal/telemetry"
	"talentmetrics/ports"
)

// Input names used in diagnostics and metrics
const (
	InputHeadcount = "headcount"
	InputExits     = "exits"
	InputTraining  = "training"
)

// Section names
const (
	SectionVoluntary = "voluntary_exits"
	SectionDismissal = "disciplinary_dismissals"
	SectionTenure    = "exit_timing"
	SectionTraining  = "training_investment"
)

// maxConcurrentLoads bounds parallel input parsing
const maxConcurrentLoads = 3

// ExitSections are the sections pulled out of the internal exits sheet
var ExitSections = []extract.Spec{
	{Name: SectionVoluntary, Keyword: "Voluntary exit per Department", Stop: extract.StopAtBlankOrTotal(0), Columns: metrics.ExitColumns},
	{Name: SectionDismissal, Keyword: "Disciplinary dismissal", Stop: extract.StopAtBlankOrTotal(0), Columns: metrics.ExitColumns},
	{Name: SectionTenure, Keyword: "Exit timing", Stop: extract.StopAtBlankCell(0), Columns: metrics.TenureColumns},
}

// TrainingSection is the section pulled out of the training sheet
var TrainingSection = extract.Spec{
	Name: SectionTraining, Keyword: "Training investment by department", Stop: extract.StopAtBlankOrTotal(0), Columns: metrics.TrainingColumns,
}

// Inputs locates the source sheets. A zero Source means the input is not
// configured and everything depending on it is skipped.
type Inputs struct {
	Headcount ports.Source
	Exits     ports.Source
	Training  ports.Source
}

// Paths returns the configured file paths
func (in Inputs) Paths() []string {
	var out []string
	for _, s := range []ports.Source{in.Headcount, in.Exits, in.Training} {
		if s.Path != "" {
			out = append(out, s.Path)
		}
	}
	return out
}

// Options carries the label map and model constants
type Options struct {
	Labels           *labels.Map
	Health           metrics.HealthOptions
	Cost             metrics.CostAssumptions
	Forecast         metrics.ForecastParams
	MixWindow        int
	HeadcountColumns metrics.HeadcountColumns
}

// DefaultOptions returns the reference workbook settings
func DefaultOptions() Options {
	return Options{
		Labels:           labels.WorkbookDefaults(),
		Health:           metrics.DefaultHealthOptions(),
		Cost:             metrics.DefaultCostAssumptions(),
		Forecast:         metrics.DefaultForecastParams(),
		MixWindow:        metrics.DefaultMixWindow,
		HeadcountColumns: metrics.DefaultHeadcountColumns(),
	}
}

// TalentMetricsService runs loader → extractor → normalizer → metrics and
// hands the result to report sinks
type TalentMetricsService struct {
	loader  ports.GridLoader
	opts    Options
	logger  *internal.Logger
	metrics *telemetry.Metrics
}

// NewTalentMetricsService creates the pipeline service. m may be nil.
func NewTalentMetricsService(loader ports.GridLoader, opts Options, logger *internal.Logger, m *telemetry.Metrics) *TalentMetricsService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if opts.Labels == nil {
		opts.Labels = labels.WorkbookDefaults()
	}
	return &TalentMetricsService{
		loader:  loader,
		opts:    opts,
		logger:  logger.Named("pipeline"),
		metrics: m,
	}
}

// loaded holds the outcome of one input load
type loaded struct {
	name string
	src  ports.Source
	grid *grid.Grid
	err  error
}

// Build produces a report from whatever inputs load. A failed input is
// recorded in the diagnostics and skipped; Build only fails when no
// configured input could be loaded. The report is returned in both cases.
func (s *TalentMetricsService) Build(ctx context.Context, in Inputs) (*report.Report, error) {
	start := time.Now()
	r := report.New(s.opts.Labels.Version())

	results := s.loadAll(ctx, in)
	if err := ctx.Err(); err != nil {
		return r, err
	}

	configured, ok := 0, 0
	grids := make(map[string]*grid.Grid)
	for _, res := range results {
		if res.src.Path == "" {
			continue
		}
		configured++
		if res.err != nil {
			s.logger.Error("input %s failed: %v", res.name, res.err)
			r.Diagnostics.LoadFailures = append(r.Diagnostics.LoadFailures, report.LoadFailure{
				Input: res.name, Source: res.src.String(), Error: res.err.Error(),
			})
			continue
		}
		ok++
		grids[res.name] = res.grid
	}
	if configured == 0 {
		return r, errors.ConfigInvalid("no inputs configured")
	}
	if ok == 0 {
		return r, errors.UpstreamLoadFailure("every input", fmt.Errorf("%d of %d inputs failed", configured, configured))
	}

	headcount := s.headcount(grids[InputHeadcount], &r.Diagnostics)
	exits, tenure := s.exits(grids[InputExits], &r.Diagnostics)
	training := s.training(grids[InputTraining], &r.Diagnostics)

	health := metrics.DeptHealth(exits, training, s.opts.Health)
	cost := metrics.CostOfChurn(health, s.opts.Cost)
	mix := metrics.WorkforceMix(headcount, s.opts.MixWindow)
	forecast := metrics.ForecastFrom(headcount, s.opts.Forecast)
	retention := metrics.RetentionTenure(tenure)
	r.Diagnostics.HighRisk = health.HighRisk()

	r.Add(report.TabHeadcount, headcount.ToTable())
	r.Add(report.TabExits, exits)
	r.Add(report.TabTraining, training)
	if retention.IsEmpty() && grids[InputExits] != nil {
		r.Add(report.TabRetentionTenure, noTenureData())
	} else {
		r.Add(report.TabRetentionTenure, retention.ToTable())
	}
	r.Add(report.TabDeptHealth, health.ToTable())
	r.Add(report.TabCostOfChurn, cost.ToTable())
	r.Add(report.TabWorkforceMix, mix.ToTable())
	r.Add(report.TabHiringForecast, metrics.ForecastTable(forecast))

	elapsed := time.Since(start)
	s.metrics.ObserveBuild(elapsed, time.Now())
	s.logger.Info("built run %s: %d tables, %d high-risk categories, %d load failures in %s",
		r.RunID, len(r.Tables), len(r.Diagnostics.HighRisk), len(r.Diagnostics.LoadFailures), elapsed.Round(time.Millisecond))
	return r, nil
}

// loadAll loads the configured inputs concurrently. Each goroutine keeps
// its own error so one bad file never cancels the others.
func (s *TalentMetricsService) loadAll(ctx context.Context, in Inputs) []loaded {
	results := []loaded{
		{name: InputHeadcount, src: in.Headcount},
		{name: InputExits, src: in.Exits},
		{name: InputTraining, src: in.Training},
	}

	var g errgroup.Group
	g.SetLimit(maxConcurrentLoads)
	for i := range results {
		res := &results[i]
		if res.src.Path == "" {
			continue
		}
		g.Go(func() error {
			res.grid, res.err = s.loader.Load(ctx, res.src)
			if res.err != nil && !errors.IsAppError(res.err) {
				res.err = errors.UpstreamLoadFailure(res.src.String(), res.err)
			}
			s.metrics.ObserveLoad(res.name, res.err)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (s *TalentMetricsService) headcount(g *grid.Grid, diag *report.Diagnostics) *metrics.Headcount {
	if g == nil {
		return &metrics.Headcount{}
	}
	cols := s.opts.HeadcountColumns
	h := metrics.ParseHeadcount(table.FromGrid(g), cols)
	if h.IsEmpty() {
		s.logger.Warn("headcount sheet has no dated rows under %q", cols.Date)
		diag.MissingSections = append(diag.MissingSections, fmt.Sprintf("%s: %s column", InputHeadcount, cols.Date))
	}
	return h
}

func (s *TalentMetricsService) exits(g *grid.Grid, diag *report.Diagnostics) (exits, tenure *table.Table) {
	if g == nil {
		return table.Empty(), table.Empty()
	}
	sections := s.extractAll(g, ExitSections, diag)

	exits = metrics.ExitsFromSections(sections[SectionVoluntary], sections[SectionDismissal])
	exits = s.normalize(exits, InputExits, diag)
	return exits, sections[SectionTenure]
}

func (s *TalentMetricsService) training(g *grid.Grid, diag *report.Diagnostics) *table.Table {
	if g == nil {
		return table.Empty()
	}
	sections := s.extractAll(g, []extract.Spec{TrainingSection}, diag)
	return s.normalize(metrics.TrainingFrom(sections[SectionTraining]), InputTraining, diag)
}

func (s *TalentMetricsService) extractAll(g *grid.Grid, specs []extract.Spec, diag *report.Diagnostics) map[string]*table.Table {
	sections := extract.All(g, specs)
	for _, spec := range specs {
		t := sections[spec.Name]
		s.metrics.ObserveSection(spec.Name, t)
		switch telemetry.SectionOutcome(t) {
		case telemetry.SectionMissing:
			s.logger.Debug("section %q not found", spec.Keyword)
			diag.MissingSections = append(diag.MissingSections, spec.Name)
		case telemetry.SectionDegraded:
			s.logger.Warn("section %q has %d columns, expected %d; columns left unnamed",
				spec.Keyword, t.Width(), len(spec.Columns))
			diag.DegradedSections = append(diag.DegradedSections, spec.Name)
		}
	}
	return sections
}

func (s *TalentMetricsService) normalize(t *table.Table, input string, diag *report.Diagnostics) *table.Table {
	unmapped := normalize.Unmapped(t, metrics.ColDepartment, s.opts.Labels)
	if len(unmapped) > 0 {
		s.logger.Warn("%d %s labels missing from label map %s: %v", len(unmapped), input, s.opts.Labels.Version(), unmapped)
		diag.AddUnmapped(input, unmapped)
		s.metrics.ObserveUnmapped(input, len(unmapped))
	}
	return normalize.Categories(t, metrics.ColDepartment, s.opts.Labels)
}

func noTenureData() *table.Table {
	return table.New([]string{"Info"}, [][]grid.Cell{{grid.Text("No detailed tenure data available")}})
}

// ExtractSection loads src and runs one extraction; a debugging aid
func (s *TalentMetricsService) ExtractSection(ctx context.Context, src ports.Source, spec extract.Spec) (*table.Table, error) {
	g, err := s.loader.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	return extract.Extract(g, spec.Keyword, spec.Stop, spec.Columns...), nil
}

// diagnosticsWriter is implemented by sinks that can show run findings
type diagnosticsWriter interface {
	WriteDiagnostics(d report.Diagnostics)
}

// WriteReport writes every table of r to each sink in report order, then
// closes the sink. A failing sink does not stop the others; all failures
// are returned together.
func (s *TalentMetricsService) WriteReport(ctx context.Context, r *report.Report, sinks ...ports.ReportSink) error {
	var errs []error
	for i, sink := range sinks {
		if err := s.writeTo(ctx, r, sink); err != nil {
			s.logger.Error("sink %d (%T) failed: %v", i, sink, err)
			errs = append(errs, fmt.Errorf("sink %d (%T): %w", i, sink, err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.SinkError(fmt.Sprintf("%d of %d", len(errs), len(sinks)), stderrors.Join(errs...))
}

func (s *TalentMetricsService) writeTo(ctx context.Context, r *report.Report, sink ports.ReportSink) (err error) {
	defer func() {
		if cerr := sink.Close(); err == nil {
			err = cerr
		}
	}()
	for _, n := range r.Tables {
		if err := sink.WriteTable(ctx, n.Name, n.Table); err != nil {
			return fmt.Errorf("write %s: %w", n.Name, err)
		}
	}
	if dw, ok := sink.(diagnosticsWriter); ok {
		dw.WriteDiagnostics(r.Diagnostics)
	}
	return nil
}
