package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"talentmetrics/adapters/postgres"
	"talentmetrics/domain/core"
	"talentmetrics/domain/table"
	"talentmetrics/internal"
	"talentmetrics/internal/config"
	"talentmetrics/internal/errors"
	"talentmetrics/internal/migration"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect report runs stored in Postgres",
	}
	cmd.AddCommand(newRunsListCmd(), newRunsShowCmd())
	return cmd
}

func newRunsListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the most recent stored runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := databaseConfig()
			if err != nil {
				return err
			}
			db, err := postgres.Connect(ctx, cfg.Database.URL, cfg.Database.MaxOpenConns)
			if err != nil {
				return err
			}
			defer db.Close()

			runs, err := postgres.ListRuns(ctx, db, limit)
			if err != nil {
				return errors.Wrap(errors.WithCode(errors.CodeDatabaseError, err), "failed to list runs")
			}

			t := table.New([]string{"run_id", "generated_at", "label_version", "tables"}, nil)
			for _, r := range runs {
				t.AppendRow(textCells(r.RunID.String(), r.GeneratedAt.Format("2006-01-02 15:04:05"), r.LabelVersion, strconv.Itoa(r.Tables)))
			}
			printTable(cmd.OutOrStdout(), fmt.Sprintf("%d runs", len(runs)), t, 0)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list (0 = all)")
	return cmd
}

func newRunsShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show RUN_ID [TABLE...]",
		Short: "Print the tables of a stored run",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runID, err := core.ParseRunID(args[0])
			if err != nil {
				return errors.InvalidInput(fmt.Sprintf("invalid run id %q", args[0]))
			}
			cfg, err := databaseConfig()
			if err != nil {
				return err
			}
			db, err := postgres.Connect(ctx, cfg.Database.URL, cfg.Database.MaxOpenConns)
			if err != nil {
				return err
			}
			defer db.Close()

			store := postgres.NewReportStore(db, runID)
			names := args[1:]
			if len(names) == 0 {
				if names, err = store.TableNames(ctx); err != nil {
					return err
				}
			}
			if len(names) == 0 {
				return errors.NotFound("run " + runID.String())
			}

			out := cmd.OutOrStdout()
			for _, name := range names {
				t, err := store.ReadTable(ctx, name)
				if err != nil {
					return err
				}
				if asJSON {
					payload, err := json.Marshal(table.Named{Name: name, Table: t})
					if err != nil {
						return err
					}
					fmt.Fprintln(out, string(payload))
					continue
				}
				printTable(out, name, t, 0)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print one JSON object per table")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the report store schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := databaseConfig()
			if err != nil {
				return err
			}
			// Connect applies the migrations
			db, err := postgres.Connect(cmd.Context(), cfg.Database.URL, cfg.Database.MaxOpenConns)
			if err != nil {
				return err
			}
			defer db.Close()
			internal.DefaultLogger.Info("report store schema at version %s", migration.NewRunner().Version())
			return nil
		},
	}
}

func databaseConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.Database.URL == "" {
		return nil, errors.ConfigInvalid("TALENT_DATABASE_URL is not set")
	}
	return cfg, nil
}
