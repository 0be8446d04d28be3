package syncer

import (
	"time"

	"github.com/guilherme-santos/icssync/internal"
)

// IsRelevant reports whether ev can still happen after now.
//
// A bounded series is judged by its UNTIL alone, COUNT is ignored and
// occurrences are not expanded, so a series may be kept after its last
// occurrence. Unbounded series and rules that could not be parsed are
// always relevant.
func IsRelevant(ev internal.Event, now time.Time) bool {
	switch ev.Recurrence.Kind {
	case internal.RecurrenceNone:
		return ev.Start.Time.After(now)
	case internal.RecurrenceBounded:
		return ev.Recurrence.Until.After(now)
	}
	return true
}
