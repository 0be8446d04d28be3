package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var calendarsCmd = &cobra.Command{
	Use:   "calendars",
	Short: "List the calendars of the account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		acc, err := a.account(ctx)
		if err != nil {
			return err
		}
		client, err := a.googleClient()
		if err != nil {
			return err
		}
		cals, err := client.Calendars(ctx, *acc)
		if err != nil {
			return fmt.Errorf("google: listing calendars: %w", err)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tACCESS\tPRIMARY")
		for _, c := range cals {
			primary := ""
			if c.Primary {
				primary = "yes"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ID, c.Summary, c.Role, primary)
		}
		return tw.Flush()
	},
}
