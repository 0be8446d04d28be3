package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	configFile string
	envFile    string

	rootCmd = &cobra.Command{
		Use:   "icssync",
		Short: "Mirror an iCalendar feed into a Google calendar",
		Long: `icssync reads an ICS feed and creates, updates and deletes events on a
Google calendar so it matches the feed. Events added by hand are never touched.`,
		SilenceUsage: true,
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (default ./icssync.yaml)")
	pf.StringVar(&envFile, "env-file", ".env", "file with ICSSYNC_* variables")
	pf.String("database", "icssync.db", "sqlite database with accounts and run history")
	pf.String("credentials", "credentials.json", "google OAuth client credentials file")
	pf.String("account", "", "account to use (e.g. google/me@example.com)")
	pf.String("calendar-id", "primary", "destination calendar id")
	pf.Duration("http-timeout", 0, "timeout to download the feed (default 30s)")
	pf.BoolP("verbose", "v", false, "print debug messages")

	rootCmd.AddCommand(
		configureCmd,
		syncCmd,
		clearCmd,
		calendarsCmd,
		inspectCmd,
		lookupCmd,
		historyCmd,
	)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cancel()
		os.Exit(1)
	}
}
