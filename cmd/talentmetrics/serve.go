package main

import (
	"context"
	"net"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"talentmetrics/adapters/excel"
	"talentmetrics/domain/report"
	"talentmetrics/internal/api"
	"talentmetrics/internal/telemetry"
)

func newServeCmd() *cobra.Command {
	var (
		port         string
		writeOnBuild bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the latest report over HTTP and rebuild when inputs change",
		Long: `Serve builds the report, exposes it under /api and as an HTML page at /,
publishes Prometheus metrics at /metrics and streams build events at
/api/events. With TALENT_CACHE_WATCH_INPUTS the input files are watched and
every change triggers a rebuild.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := telemetry.New()
			rt, err := newRuntime(m)
			if err != nil {
				return err
			}
			defer rt.logger.Sync()
			if cmd.Flags().Changed("port") {
				rt.cfg.Server.Port = port
			}
			gin.SetMode(rt.cfg.Server.GinMode)

			build := func(ctx context.Context) (*report.Report, error) {
				r, err := rt.service.Build(ctx, rt.inputs())
				if err != nil || !writeOnBuild || rt.cfg.Output.Workbook == "" {
					return r, err
				}
				sink := excel.NewWorkbookSink(rt.cfg.Output.Workbook, excel.DefaultSinkConfig(), rt.logger)
				if werr := rt.service.WriteReport(ctx, r, sink); werr != nil {
					rt.logger.Error("failed to write workbook: %v", werr)
				}
				return r, nil
			}

			server := api.NewServer(api.Deps{
				Build:   build,
				Cache:   rt.cache,
				Metrics: m,
				Logger:  rt.logger,
			})

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				server.Events().Run(ctx)
				return nil
			})
			if _, err := server.Rebuild(ctx); err != nil {
				rt.logger.Warn("initial build failed, serving once inputs load: %v", err)
			}
			if paths := rt.inputs().Paths(); rt.cfg.Cache.WatchInputs && len(paths) > 0 {
				g.Go(func() error {
					return rt.cache.Watch(ctx, paths, func(path string) {
						server.InputChanged(ctx, path)
					})
				})
			}
			g.Go(func() error {
				return server.Run(ctx, net.JoinHostPort("", rt.cfg.Server.Port))
			})
			return g.Wait()
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Listen port (overrides TALENT_SERVER_PORT)")
	cmd.Flags().BoolVar(&writeOnBuild, "write", false, "Rewrite the workbook after every successful build")

	return cmd
}
