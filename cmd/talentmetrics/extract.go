package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"talentmetrics/adapters/excel"
	"talentmetrics/app"
	"talentmetrics/internal"
	"talentmetrics/internal/extract"
	"talentmetrics/ports"
)

// presets name the sections the pipeline extracts
var presets = map[string]extract.Spec{
	"voluntary": app.ExitSections[0],
	"dismissal": app.ExitSections[1],
	"tenure":    app.ExitSections[2],
	"training":  app.TrainingSection,
}

func newExtractCmd() *cobra.Command {
	var (
		sheet    string
		keyword  string
		preset   string
		columns  string
		stop     string
		column   int
		asJSON   bool
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "extract FILE",
		Short: "Extract one keyword-delimited section and print it",
		Long: `Extract locates the first row containing --keyword, takes the next row as
the header and collects data rows until the --stop policy fires.

Stop policies: end, blank, total, blank-or-total, rows=N. --column picks the
cell the blank/total policies look at.

Examples:
  talentmetrics extract exits.xlsx --sheet 2025 --preset voluntary
  talentmetrics extract exits.xlsx --keyword "Exit timing" --stop blank --columns Timing_Category,Count,Avg_Tenure_Months`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := extract.Spec{Name: "section", Keyword: keyword}
			if preset != "" {
				p, ok := presets[strings.ToLower(preset)]
				if !ok {
					return fmt.Errorf("unknown preset %q (voluntary, dismissal, tenure, training)", preset)
				}
				spec = p
			}
			if cmd.Flags().Changed("keyword") {
				spec.Keyword = keyword
			}
			if spec.Keyword == "" {
				return fmt.Errorf("--keyword or --preset is required")
			}
			if preset == "" || cmd.Flags().Changed("stop") || cmd.Flags().Changed("column") {
				t, err := extract.ParseTerminator(stop, column)
				if err != nil {
					return err
				}
				spec.Stop = t
			}
			if cmd.Flags().Changed("columns") {
				spec.Columns = splitColumns(columns)
			}

			logger := internal.NewLogger(internal.ParseLogLevel(logLevel))
			defer logger.Sync()
			service := app.NewTalentMetricsService(excel.NewLoader(excel.DefaultLoaderConfig(), logger), app.DefaultOptions(), logger, nil)

			t, err := service.ExtractSection(cmd.Context(), ports.Source{Path: args[0], Sheet: sheet}, spec)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(t)
			}
			if !t.Section.Found {
				fmt.Fprintf(out, "keyword %q not found\n", spec.Keyword)
				return nil
			}
			printTable(out, fmt.Sprintf("%s (keyword row %d, header row %d, %s)",
				spec.Keyword, t.Section.KeywordRow+1, t.Section.HeaderRow+1, spec.Stop), t, 0)
			return nil
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet name (default: first sheet)")
	cmd.Flags().StringVarP(&keyword, "keyword", "k", "", "Case-insensitive text marking the section")
	cmd.Flags().StringVar(&preset, "preset", "", "Use a pipeline section: voluntary, dismissal, tenure or training")
	cmd.Flags().StringVar(&columns, "columns", "", "Comma-separated names to bind to the data columns")
	cmd.Flags().StringVar(&stop, "stop", "blank-or-total", "Stop policy")
	cmd.Flags().IntVar(&column, "column", 0, "Column the stop policy inspects")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the table as JSON")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "Log level")

	return cmd
}

func splitColumns(s string) []string {
	var out []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
