package main

import (
	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every synced event from the calendar",
	Long:  "Delete every event created by sync. Events added by hand are kept.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		cal, err := a.calendar(ctx)
		if err != nil {
			return err
		}
		s, err := a.syncer()
		if err != nil {
			return err
		}
		_, err = s.Clear(ctx, cal)
		return err
	},
}

func init() {
	clearCmd.Flags().Bool("dry-run", false, "print what would be deleted")
}
