package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ygrebnov/workpool/internal/sink"
)

var reportMachine string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize intervals stored in the SQLite sink",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportMachine, "machine", "", "List the intervals of one machine instead of totals")
}

func runReport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := sink.NewSQLiteSink(cfg.Sink.SQLitePath)
	if err != nil {
		return err
	}
	defer db.Close()

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer tw.Flush()

	if reportMachine != "" {
		recs, err := db.Intervals(cmd.Context(), reportMachine)
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "ID\tKIND\tSTARTED\tSECONDS")
		for _, r := range recs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\n", r.ID, r.Kind, r.StartedAt.Format("2006-01-02 15:04:05"), r.DurationSeconds)
		}
		return nil
	}

	totals, err := db.Totals(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(tw, "MACHINE\tKIND\tINTERVALS\tSECONDS")
	for _, t := range totals {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.2f\n", t.MachineID, t.Kind, t.Intervals, t.Seconds)
	}
	return nil
}
