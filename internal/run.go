package internal

import "time"

// Run is the record kept for every sync.
type Run struct {
	ID         string
	CalendarID string
	FeedURL    string
	StartedAt  time.Time
	FinishedAt time.Time
	DryRun     bool
	Created    int
	Updated    int
	Deleted    int
	Skipped    int
	// Error is set when the run was aborted.
	Error string
}
