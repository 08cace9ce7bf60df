package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"talentmetrics/adapters/excel"
	"talentmetrics/app"
	"talentmetrics/internal"
	"talentmetrics/internal/config"
	"talentmetrics/internal/gridcache"
	"talentmetrics/internal/metrics"
	"talentmetrics/internal/telemetry"
	"talentmetrics/ports"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:   "talentmetrics",
		Short: "Build the talent metrics workbook from HR spreadsheets",
		Long: `Reads the headcount, exits and training spreadsheets, extracts their
keyword-delimited sections, normalizes department labels and writes the
derived HR tables to an Excel workbook, an HTML page and optionally Postgres.

Inputs and settings come from TALENT_* environment variables (or a .env file).`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newBuildCmd(),
		newExtractCmd(),
		newServeCmd(),
		newRunsCmd(),
		newMigrateCmd(),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runtime bundles what every command builds from the configuration
type runtime struct {
	cfg     *config.Config
	logger  *internal.Logger
	metrics *telemetry.Metrics
	cache   *gridcache.Cache
	service *app.TalentMetricsService
}

func newRuntime(m *telemetry.Metrics) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	labelMap, err := cfg.LabelMap()
	if err != nil {
		return nil, err
	}

	logger := internal.NewDefaultLogger()
	loader := excel.NewLoader(excel.DefaultLoaderConfig(), logger)
	cache := gridcache.New(loader, logger)
	if m != nil {
		cache.SetObserver(m)
	}

	opts := app.DefaultOptions()
	opts.Labels = labelMap
	opts.Health = metrics.HealthOptions{HighRiskThreshold: cfg.Model.HighRiskThreshold}
	opts.Cost = metrics.CostAssumptions{
		ReplacementCost: cfg.Model.ReplacementCost,
		OpsLossValue:    cfg.Model.OpsLossValue,
	}
	opts.Forecast = metrics.ForecastParams{
		AnnualChurnRate:   cfg.Model.AnnualChurnRate,
		MonthlyGrowthRate: cfg.Model.MonthlyGrowthRate,
		Horizon:           cfg.Model.ForecastHorizon,
	}
	opts.MixWindow = cfg.Model.MixWindow

	return &runtime{
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		cache:   cache,
		service: app.NewTalentMetricsService(cache, opts, logger, m),
	}, nil
}

func (rt *runtime) inputs() app.Inputs {
	in := rt.cfg.Input
	return app.Inputs{
		Headcount: ports.Source{Path: in.HeadcountFile, Sheet: in.HeadcountSheet},
		Exits:     ports.Source{Path: in.ExitsFile, Sheet: in.ExitsSheet},
		Training:  ports.Source{Path: in.TrainingFile, Sheet: in.TrainingSheet},
	}
}
