package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the last sync runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		var calID string
		if all, _ := cmd.Flags().GetBool("all"); !all {
			cal, err := a.calendar(cmd.Context())
			if err != nil {
				return err
			}
			calID = cal.ID()
		}
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := a.storage.Runs(cmd.Context(), calID, limit)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "STARTED\tCALENDAR\tDRY RUN\tCREATED\tUPDATED\tDELETED\tSKIPPED\tERROR")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%t\t%d\t%d\t%d\t%d\t%s\n",
				r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.CalendarID, r.DryRun,
				r.Created, r.Updated, r.Deleted, r.Skipped, r.Error)
		}
		return tw.Flush()
	},
}

func init() {
	f := historyCmd.Flags()
	f.Int("limit", 10, "number of runs to show")
	f.Bool("all", false, "show runs of every calendar")
}
