package internal

import (
	"context"
)

type Mux interface {
	Get(platform string) (Store, error)
}

// Store is the destination calendar. Implementations return errors wrapping
// ErrRecurrenceRejected when the provider refused the recurrence rule.
type Store interface {
	FindByExternalID(_ context.Context, _ *Calendar, externalID string) (*RemoteEvent, error)
	// ListSynced returns one page of events, nextPageToken is empty on the
	// last page.
	ListSynced(_ context.Context, _ *Calendar, pageToken string) (_ []*RemoteEvent, nextPageToken string, _ error)
	CreateEvent(_ context.Context, _ *Calendar, _ Event) (*RemoteEvent, error)
	UpdateEvent(_ context.Context, _ *Calendar, remoteID string, _ Event) (*RemoteEvent, error)
	DeleteEvent(_ context.Context, _ *Calendar, remoteID string) error
}
