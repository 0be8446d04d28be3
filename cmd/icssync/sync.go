package main

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/guilherme-santos/icssync/internal"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror the feed into the calendar",
	Args:  cobra.NoArgs,
	RunE:  runSync,
}

func init() {
	f := syncCmd.Flags()
	f.String("feed-url", "", "ICS feed to mirror (http(s), webcal, file:// or a path)")
	f.Bool("future-only", false, "skip events that already happened")
	f.Bool("prune-missing", false, "delete synced events no longer in the feed")
	f.Bool("dry-run", false, "print what would be done without changing the calendar")
	f.Bool("recurrence", true, "send recurrence rules to the calendar")
	f.Bool("no-recurrence", false, "sync recurring events as single events")
	f.String("every", "", `keep running, syncing on a schedule (e.g. "15m" or "*/15 * * * *")`)
}

func runSync(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if noRec, _ := cmd.Flags().GetBool("no-recurrence"); noRec {
		a.cfg.Recurrence = false
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	cal, err := a.calendar(ctx)
	if err != nil {
		return err
	}
	s, err := a.syncer()
	if err != nil {
		return err
	}
	feed := internal.Feed{URL: a.cfg.FeedURL}

	if a.cfg.Every == "" {
		_, err := s.Sync(ctx, cal, feed)
		return err
	}
	return schedule(ctx, a.log, a.cfg.Every, func() {
		s.Sync(ctx, cal, feed)
	})
}

// schedule runs job right away and then on spec until ctx is done. A run
// still going when the next one is due makes that one be skipped.
func schedule(ctx context.Context, log *internal.Logger, spec string, job func()) error {
	spec = cronSpec(spec)

	c := cron.New(
		cron.WithLogger(cron.PrintfLogger(log)),
		cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(log))),
	)
	id, err := c.AddFunc(spec, job)
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	log.Logf(nil, "Syncing on %q, press Ctrl+C to stop", spec)
	c.Start()
	c.Entry(id).WrappedJob.Run()

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// cronSpec accepts plain durations as a shortcut for "@every".
func cronSpec(spec string) string {
	if _, err := time.ParseDuration(spec); err == nil {
		return "@every " + spec
	}
	return spec
}

