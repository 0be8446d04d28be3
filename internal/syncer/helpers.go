package syncer

import (
	"time"

	"github.com/guilherme-santos/icssync/internal"
)

func formatEventTime(t internal.EventTime) string {
	if t.AllDay {
		return t.Time.Format("02 Jan 06")
	}
	return formatDateTime(t.Time)
}

func formatDateTime(d time.Time) string {
	return d.Format("02 Jan 06 15:04 MST")
}

func logf(log *internal.Logger, cal *Calendar, format string, a ...any) {
	log.Logf(cal, format, a...)
}
