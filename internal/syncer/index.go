package syncer

import (
	"context"
	"fmt"

	"github.com/samber/mo"

	"github.com/guilherme-santos/icssync/internal"
)

// Index maps external ids to the remote events created by previous syncs.
// It is built once per run and never refreshed.
type Index struct {
	byID map[string]*internal.RemoteEvent
	ids  []string
}

func NewIndex(events ...*internal.RemoteEvent) *Index {
	idx := &Index{
		byID: make(map[string]*internal.RemoteEvent),
	}
	for _, e := range events {
		idx.add(e)
	}
	return idx
}

// BuildIndex walks every page of the calendar. Events without the external
// id metadata were added by hand and are left out.
func BuildIndex(ctx context.Context, store internal.Store, cal *Calendar, log *internal.Logger) (*Index, error) {
	idx := NewIndex()

	var pageToken string
	for {
		events, next, err := store.ListSynced(ctx, cal, pageToken)
		if err != nil {
			return nil, fmt.Errorf("listing synced events: %w", err)
		}
		for _, e := range events {
			if e == nil || e.Manual() {
				continue
			}
			if !idx.add(e) {
				log.Logf(cal, "[warning] %s is bound to more than one event, ignoring %s", e.ExternalID, e.ID)
			}
		}
		if next == "" {
			break
		}
		if next == pageToken {
			return nil, fmt.Errorf("listing synced events: page token %q repeated", next)
		}
		pageToken = next
	}

	log.Debugf(cal, "%d synced event(s) found", idx.Len())
	return idx, nil
}

func (idx *Index) add(e *internal.RemoteEvent) bool {
	if e == nil || e.Manual() {
		return false
	}
	if _, ok := idx.byID[e.ExternalID]; ok {
		return false
	}
	idx.byID[e.ExternalID] = e
	idx.ids = append(idx.ids, e.ExternalID)
	return true
}

func (idx *Index) Lookup(externalID string) mo.Option[*internal.RemoteEvent] {
	if e, ok := idx.byID[externalID]; ok {
		return mo.Some(e)
	}
	return mo.None[*internal.RemoteEvent]()
}

// IDs returns the external ids in the order they were listed.
func (idx *Index) IDs() []string {
	return append([]string(nil), idx.ids...)
}

func (idx *Index) Len() int {
	return len(idx.ids)
}
