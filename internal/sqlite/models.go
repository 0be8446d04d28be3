package sqlite

import (
	"strings"
	"time"

	"github.com/guilherme-santos/icssync/internal"
	"github.com/guilherme-santos/icssync/internal/ics"
)

type Account struct {
	ID   string
	Auth string
}

func (a Account) Convert() *internal.Account {
	acc := internal.Account{
		Auth: a.Auth,
	}
	acc.Platform, acc.Name, _ = strings.Cut(a.ID, "/")
	return &acc
}

type FeedCache struct {
	URL          string
	ETag         string `db:"etag"`
	LastModified string `db:"last_modified"`
	Body         []byte
	UpdatedAt    time.Time `db:"updated_at"`
}

func (f FeedCache) Convert() *ics.CachedFeed {
	return &ics.CachedFeed{
		URL:          f.URL,
		ETag:         f.ETag,
		LastModified: f.LastModified,
		Body:         f.Body,
	}
}

type Run struct {
	ID         string
	CalendarID string    `db:"calendar_id"`
	FeedURL    string    `db:"feed_url"`
	StartedAt  time.Time `db:"started_at"`
	FinishedAt time.Time `db:"finished_at"`
	DryRun     bool      `db:"dry_run"`
	Created    int
	Updated    int
	Deleted    int
	Skipped    int
	Error      string
}

func newRun(r *internal.Run) Run {
	return Run{
		ID:         r.ID,
		CalendarID: r.CalendarID,
		FeedURL:    r.FeedURL,
		StartedAt:  r.StartedAt.UTC(),
		FinishedAt: r.FinishedAt.UTC(),
		DryRun:     r.DryRun,
		Created:    r.Created,
		Updated:    r.Updated,
		Deleted:    r.Deleted,
		Skipped:    r.Skipped,
		Error:      r.Error,
	}
}

func (r Run) Convert() *internal.Run {
	return &internal.Run{
		ID:         r.ID,
		CalendarID: r.CalendarID,
		FeedURL:    r.FeedURL,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		DryRun:     r.DryRun,
		Created:    r.Created,
		Updated:    r.Updated,
		Deleted:    r.Deleted,
		Skipped:    r.Skipped,
		Error:      r.Error,
	}
}
