package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"talentmetrics/adapters/excel"
	"talentmetrics/adapters/markdown"
	"talentmetrics/adapters/postgres"
	"talentmetrics/ports"
)

func newBuildCmd() *cobra.Command {
	var (
		output  string
		html    string
		store   bool
		asJSON  bool
		preview int
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the report once and write it to the configured sinks",
		Long: `Build loads the configured inputs, derives every table and writes the
workbook. Inputs that fail to load are reported and skipped; the command only
fails when none of them load.

Example: TALENT_INPUT_EXITS_FILE=exits.xlsx talentmetrics build --html report.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := newRuntime(nil)
			if err != nil {
				return err
			}
			defer rt.logger.Sync()

			if cmd.Flags().Changed("output") {
				rt.cfg.Output.Workbook = output
			}
			if cmd.Flags().Changed("html") {
				rt.cfg.Output.HTML = html
			}
			if cmd.Flags().Changed("store") {
				rt.cfg.Output.Store = store
			}
			if err := rt.cfg.Validate(); err != nil {
				return err
			}

			r, buildErr := rt.service.Build(ctx, rt.inputs())
			out := cmd.OutOrStdout()
			if buildErr != nil {
				if r != nil {
					printDiagnostics(out, r.Diagnostics)
				}
				return buildErr
			}

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(r); err != nil {
					return err
				}
			} else {
				for _, n := range r.Tables {
					printTable(out, n.Name, n.Table, preview)
				}
				printDiagnostics(out, r.Diagnostics)
			}
			if dryRun {
				return nil
			}

			var sinks []ports.ReportSink
			if rt.cfg.Output.Workbook != "" {
				sinks = append(sinks, excel.NewWorkbookSink(rt.cfg.Output.Workbook, excel.DefaultSinkConfig(), rt.logger))
			}
			if rt.cfg.Output.HTML != "" {
				sinks = append(sinks, markdown.NewHTMLSink(rt.cfg.Output.HTML, "Talent Metrics "+r.GeneratedAt.Date()))
			}
			if rt.cfg.Output.Store {
				db, err := postgres.Connect(ctx, rt.cfg.Database.URL, rt.cfg.Database.MaxOpenConns)
				if err != nil {
					return err
				}
				defer db.Close()
				s := postgres.NewReportStore(db, r.RunID)
				if err := s.SaveRun(ctx, r); err != nil {
					return fmt.Errorf("failed to save run %s: %w", r.RunID, err)
				}
				sinks = append(sinks, s)
			}
			if len(sinks) == 0 {
				rt.logger.Warn("no output configured; nothing written")
				return nil
			}

			if err := rt.service.WriteReport(ctx, r, sinks...); err != nil {
				return err
			}
			rt.logger.Info("run %s written to %d sinks", r.RunID, len(sinks))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Workbook path (overrides TALENT_OUTPUT_WORKBOOK)")
	cmd.Flags().StringVar(&html, "html", "", "Also render an HTML report to this path")
	cmd.Flags().BoolVar(&store, "store", false, "Also persist the run to Postgres (needs TALENT_DATABASE_URL)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON instead of tables")
	cmd.Flags().IntVar(&preview, "preview", 10, "Rows per table to print (0 = all)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the report without writing any sink")

	return cmd
}
