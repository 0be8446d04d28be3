package syncer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/guilherme-santos/icssync/internal"
	"github.com/guilherme-santos/icssync/internal/ics"
)

type (
	Mux      = internal.Mux
	Calendar = internal.Calendar
	Event    = internal.Event
	Feed     = internal.Feed
)

type Fetcher interface {
	Fetch(_ context.Context, url string) ([]byte, error)
}

// Storage keeps the history of runs, it may be nil.
type Storage interface {
	SaveRun(context.Context, *internal.Run) error
}

// Authorizer is implemented by stores that need credentials, it's called
// before anything is fetched so a bad credential aborts the run early.
type Authorizer interface {
	Authorize(context.Context, *Calendar) error
}

type Syncer struct {
	log     *internal.Logger
	mux     Mux
	fetcher Fetcher
	storage Storage
	now     func() time.Time

	FutureOnly   bool
	PruneMissing bool
	DryRun       bool
	// Recurrence sends the RRULE of recurring events to the store.
	Recurrence bool
}

func New(output io.Writer, verbose bool, providers Mux, fetcher Fetcher, storage Storage) *Syncer {
	return &Syncer{
		log:        internal.NewLogger(output, "", verbose),
		mux:        providers,
		fetcher:    fetcher,
		storage:    storage,
		now:        time.Now,
		Recurrence: true,
	}
}

// Sync mirrors feed into cal. Only failures that happen before the first
// write are returned, per-event failures are logged and counted as
// skipped.
func (s *Syncer) Sync(ctx context.Context, cal *Calendar, feed Feed) (Tally, error) {
	run := &internal.Run{
		ID:         uuid.NewString(),
		CalendarID: cal.ID(),
		FeedURL:    feed.URL,
		StartedAt:  s.now().UTC(),
		DryRun:     s.DryRun,
	}

	tally, err := s.sync(ctx, cal, feed, run.StartedAt)
	if err != nil {
		logf(s.log, cal, "Sync aborted: %v", err)
		run.Error = err.Error()
	}
	run.FinishedAt = s.now().UTC()
	run.Created, run.Updated, run.Deleted, run.Skipped = tally.Created, tally.Updated, tally.Deleted, tally.Skipped
	s.saveRun(ctx, cal, run)
	return tally, err
}

func (s *Syncer) sync(ctx context.Context, cal *Calendar, feed Feed, now time.Time) (Tally, error) {
	var tally Tally

	store, err := s.store(ctx, cal)
	if err != nil {
		return tally, err
	}

	body, err := s.fetcher.Fetch(ctx, feed.URL)
	if err != nil {
		return tally, fmt.Errorf("unable to fetch feed: %w", err)
	}
	doc, err := ics.Parse(body)
	if err != nil {
		return tally, fmt.Errorf("unable to parse feed: %w", err)
	}
	logf(s.log, cal, "Feed has %d event(s)", len(doc.Events))
	if doc.Overrides > 0 {
		s.log.Debugf(cal, "Ignoring %d overridden instance(s) of recurring events", doc.Overrides)
	}

	normalizer := ics.NewNormalizer(s.log)
	normalizer.Recurrence = s.Recurrence
	normalizer.Zones = doc.Zones
	entries := normalizer.NormalizeAll(doc.Events)

	idx, err := BuildIndex(ctx, store, cal, s.log)
	if err != nil {
		return tally, err
	}

	ops := Reconcile(entries, idx, Options{
		FutureOnly:   s.FutureOnly,
		PruneMissing: s.PruneMissing,
		Now:          now,
	})

	tally = s.apply(ctx, store, cal, ops)
	logf(s.log, cal, "%s", tally.Summary(s.DryRun))
	return tally, nil
}

// Clear deletes every synced event of cal, events added by hand are kept.
func (s *Syncer) Clear(ctx context.Context, cal *Calendar) (Tally, error) {
	var tally Tally

	store, err := s.store(ctx, cal)
	if err != nil {
		return tally, err
	}
	idx, err := BuildIndex(ctx, store, cal, s.log)
	if err != nil {
		return tally, err
	}
	logf(s.log, cal, "Found %d synced event(s)", idx.Len())

	ops := make([]Operation, 0, idx.Len())
	for _, id := range idx.IDs() {
		remote := idx.Lookup(id).MustGet()
		ops = append(ops, Delete(id, remote.ID, ReasonCleared))
	}

	tally = s.apply(ctx, store, cal, ops)
	logf(s.log, cal, "%s", tally.Summary(s.DryRun))
	return tally, nil
}

func (s *Syncer) apply(ctx context.Context, store internal.Store, cal *Calendar, ops []Operation) Tally {
	exec := NewExecutor(store, cal, s.log)
	exec.DryRun = s.DryRun

	var tally Tally
	for _, op := range ops {
		res := exec.Execute(ctx, op)
		s.report(cal, res)
		tally.Add(res)
	}
	return tally
}

func (s *Syncer) store(ctx context.Context, cal *Calendar) (internal.Store, error) {
	store, err := s.mux.Get(cal.Account.Platform)
	if err != nil {
		return nil, err
	}
	if auth, ok := store.(Authorizer); ok {
		if err := auth.Authorize(ctx, cal); err != nil {
			return nil, fmt.Errorf("unable to authorize %s: %w", cal.Account.ID(), err)
		}
	}
	return store, nil
}

func (s *Syncer) saveRun(ctx context.Context, cal *Calendar, run *internal.Run) {
	if s.storage == nil {
		return
	}
	// The run context may be cancelled already, the history is still saved.
	ctx = context.WithoutCancel(ctx)
	if err := s.storage.SaveRun(ctx, run); err != nil {
		logf(s.log, cal, "Unable to save run: %v", err)
	}
}

func (s *Syncer) report(cal *Calendar, res Result) {
	op := res.Op

	if res.Err != nil {
		logf(s.log, cal, "[error] Failed to %s %s: %v", op.Kind, op.ExternalID, res.Err)
		return
	}

	switch op.Kind {
	case OpCreate:
		logf(s.log, cal, "[create] %s: %q on %s%s", op.ExternalID, op.Event.Summary, formatEventTime(op.Event.Start), strippedSuffix(res))
	case OpUpdate:
		logf(s.log, cal, "[update] %s -> %s%s", op.ExternalID, op.RemoteID, strippedSuffix(res))
	case OpDelete:
		switch op.Reason {
		case ReasonCancelled:
			logf(s.log, cal, "[delete] %s (cancelled in feed)", op.ExternalID)
		case ReasonMissingFromFeed:
			logf(s.log, cal, "[prune-delete] %s -> %s (missing from feed)", op.ExternalID, op.RemoteID)
		default:
			logf(s.log, cal, "[delete] %s -> %s", op.ExternalID, op.RemoteID)
		}
	case OpSkip:
		switch op.Reason {
		case ReasonMalformed:
			logf(s.log, cal, "[skip] %v", op.Err)
		case ReasonMissingID:
			logf(s.log, cal, "[skip] event without UID: %q", op.Event.Summary)
		case ReasonDuplicateID:
			logf(s.log, cal, "[skip] %s appears more than once in the feed", op.ExternalID)
		case ReasonCancelledAbsent:
			logf(s.log, cal, "[skip] %s cancelled but not present in the calendar", op.ExternalID)
		case ReasonPast:
			s.log.Debugf(cal, "[skip] %s is in the past", op.ExternalID)
		default:
			logf(s.log, cal, "[skip] %s (%s)", op.ExternalID, op.Reason)
		}
	}
}

func strippedSuffix(res Result) string {
	if res.WithoutRecurrence {
		return " (without recurrence)"
	}
	return ""
}
