package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guilherme-santos/icssync/internal"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [feed-url]",
	Short: "Count the events of a feed without touching any calendar",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if len(args) == 1 {
			a.cfg.FeedURL = args[0]
		}
		if err := a.cfg.Validate(); err != nil {
			return err
		}

		report, err := a.newSyncer(nil).Inspect(cmd.Context(), internal.Feed{URL: a.cfg.FeedURL})
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Events:     %d\n", report.Total)
		fmt.Fprintf(w, "Recurring:  %d\n", report.Recurring)
		fmt.Fprintf(w, "Future:     %d\n", report.Future)
		fmt.Fprintf(w, "Past:       %d\n", report.Past)
		fmt.Fprintf(w, "Cancelled:  %d\n", report.Cancelled)
		fmt.Fprintf(w, "Malformed:  %d\n", report.Malformed)
		fmt.Fprintf(w, "Overrides:  %d (ignored)\n", report.Overrides)
		return nil
	},
}

func init() {
	inspectCmd.Flags().String("feed-url", "", "ICS feed to inspect")
}
