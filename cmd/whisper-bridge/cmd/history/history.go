package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"whisper-bridge/cmd/whisper-bridge/cmd/cli"
	"whisper-bridge/internal/app"
	"whisper-bridge/internal/app/converter/export"
	"whisper-bridge/internal/app/repository"
	"whisper-bridge/internal/app/repository/migrate"
)

var (
	limit          int
	asJSON         bool
	outputFilePath string
	targetDSN      string
)

func init() {
	listCmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show, 0 for all")
	listCmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	exportCmd.Flags().StringVarP(&outputFilePath, "output", "o", "", "xlsx file to write")
	exportCmd.MarkFlagRequired("output")

	migrateCmd.Flags().StringVar(&targetDSN, "to", "", "destination history DSN, e.g. postgres://...")
	migrateCmd.MarkFlagRequired("to")

	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(exportCmd)
	Cmd.AddCommand(migrateCmd)
}

// Cmd represents the history command
var Cmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the runs recorded by serve (HISTORY_DSN)",
}

func open(ctx context.Context) (repository.RunDAO, error) {
	settings, err := cli.Settings()
	if err != nil {
		return nil, err
	}
	if settings.HistoryDSN == "" {
		return nil, errors.New("history is disabled: set HISTORY_DSN to a sqlite path or postgres:// URL")
	}
	return app.OpenHistory(ctx, settings.HistoryDSN)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show recent runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dao, err := open(cmd.Context())
		if err != nil {
			return err
		}
		defer dao.Close()

		runs, err := dao.Recent(cmd.Context(), limit)
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(runs)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tINPUT\tENGINE\tMODEL\tSEGMENTS\tSECONDS\tERROR")
		for _, r := range runs {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%.2f\t%s\n",
				r.ID, r.CreatedAt.Local().Format(time.DateTime), r.InputName, r.Engine, r.Model,
				r.SegmentCount, float64(r.ProcessingMs)/1000, r.ErrorMessage)
		}
		return w.Flush()
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all runs to an Excel workbook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dao, err := open(cmd.Context())
		if err != nil {
			return err
		}
		defer dao.Close()

		runs, err := dao.Recent(cmd.Context(), 0)
		if err != nil {
			return err
		}
		if err := export.ToExcel(runs, outputFilePath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "export finished, %d runs written to %s\n", len(runs), outputFilePath)
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy every run from HISTORY_DSN into another history database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := open(cmd.Context())
		if err != nil {
			return err
		}
		defer from.Close()

		to, err := app.OpenHistory(cmd.Context(), targetDSN)
		if err != nil {
			return err
		}
		defer to.Close()

		copied, err := migrate.Copy(cmd.Context(), from, to, cli.Logger())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "migrated %d runs\n", copied)
		return nil
	},
}
