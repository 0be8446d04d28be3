package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guilherme-santos/icssync/calendar/google"
	"github.com/guilherme-santos/icssync/internal"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Give access to the application",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		googleCal, err := a.googleClient()
		if err != nil {
			return fmt.Errorf("creating client: %v", err)
		}

		ctx := cmd.Context()
		w := cmd.OutOrStdout()
		addr, _ := cmd.Flags().GetString("listen")

		authToken, err := googleCal.Login(ctx, addr, func(authURL string) {
			fmt.Fprintf(w, "Go to the following link in your browser\n%s\n", authURL)
		})
		if err != nil {
			return fmt.Errorf("google: logging in: %v", err)
		}
		userEmail, err := googleCal.Email(ctx, authToken)
		if err != nil {
			return fmt.Errorf("google: getting email: %v", err)
		}

		acc := internal.Account{
			Platform: google.Platform,
			Name:     userEmail,
			Auth:     string(authToken),
		}
		fmt.Fprintf(w, "Saving account %q for %q provider...\n", acc.Name, acc.Platform)
		err = a.storage.AddAccount(ctx, &acc)
		if err != nil {
			return fmt.Errorf("saving account: %v", err)
		}
		return nil
	},
}

func init() {
	configureCmd.Flags().String("listen", "localhost:8080", "address receiving the OAuth callback")
}
