package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guilherme-santos/icssync/internal"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <uid>",
	Short: "Show the calendar event bound to a feed UID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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
		mux, err := a.newMux()
		if err != nil {
			return err
		}
		store, err := mux.Get(cal.Account.Platform)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		ev, err := store.FindByExternalID(ctx, cal, args[0])
		if errors.Is(err, internal.ErrNotFound) {
			fmt.Fprintf(w, "%s is not synced to %s\n", args[0], cal)
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "UID:      %s\n", ev.ExternalID)
		fmt.Fprintf(w, "Event ID: %s\n", ev.ID)
		fmt.Fprintf(w, "Summary:  %s\n", ev.Summary)
		fmt.Fprintf(w, "Start:    %s\n", ev.Start)
		return nil
	},
}
