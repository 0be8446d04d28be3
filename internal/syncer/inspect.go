package syncer

import (
	"context"
	"fmt"

	"github.com/guilherme-santos/icssync/internal/ics"
)

// Report counts the entries of a feed the way a sync would see them.
type Report struct {
	Total     int
	Recurring int
	Future    int
	Past      int
	Cancelled int
	Malformed int
	// Overrides are instances of recurring events, never synced.
	Overrides int
}

func (r Report) String() string {
	return fmt.Sprintf("total=%d, recurring=%d, future=%d, past=%d, cancelled=%d, malformed=%d, overrides=%d",
		r.Total, r.Recurring, r.Future, r.Past, r.Cancelled, r.Malformed, r.Overrides)
}

// Inspect fetches and normalizes feed without touching any calendar.
// Future and Past follow the future-only policy.
func (s *Syncer) Inspect(ctx context.Context, feed Feed) (Report, error) {
	var r Report

	body, err := s.fetcher.Fetch(ctx, feed.URL)
	if err != nil {
		return r, fmt.Errorf("unable to fetch feed: %w", err)
	}
	doc, err := ics.Parse(body)
	if err != nil {
		return r, fmt.Errorf("unable to parse feed: %w", err)
	}

	r.Total = len(doc.Events)
	r.Overrides = doc.Overrides

	normalizer := ics.NewNormalizer(s.log)
	normalizer.Zones = doc.Zones

	now := s.now()
	for _, entry := range normalizer.NormalizeAll(doc.Events) {
		ev, err := entry.Get()
		if err != nil {
			r.Malformed++
			s.log.Debugf(nil, "[skip] %v", err)
			continue
		}
		if ev.Recurrence.Recurring() {
			r.Recurring++
		}
		if ev.Cancelled() {
			r.Cancelled++
		}
		if IsRelevant(ev, now) {
			r.Future++
		} else {
			r.Past++
		}
	}
	return r, nil
}
