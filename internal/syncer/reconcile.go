package syncer

import (
	"errors"
	"time"

	"github.com/samber/mo"

	"github.com/guilherme-santos/icssync/internal"
)

type Kind int

const (
	OpSkip Kind = iota
	OpCreate
	OpUpdate
	OpDelete
)

func (k Kind) String() string {
	switch k {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	}
	return "skip"
}

type Reason string

var (
	ReasonMalformed       Reason = "malformed"
	ReasonMissingID       Reason = "missing_id"
	ReasonDuplicateID     Reason = "duplicate_id"
	ReasonPast            Reason = "past"
	ReasonCancelled       Reason = "cancelled"
	ReasonCancelledAbsent Reason = "cancelled_absent"
	ReasonMissingFromFeed Reason = "missing_from_feed"
	ReasonCleared         Reason = "cleared"
)

// Operation is one decision of the reconciler. Event is the zero value for
// deletes coming from the prune pass.
type Operation struct {
	Kind       Kind
	Event      Event
	ExternalID string
	RemoteID   string
	Reason     Reason
	// Err is why the entry was malformed.
	Err error
}

func Create(ev Event) Operation {
	return Operation{Kind: OpCreate, Event: ev, ExternalID: ev.ExternalID}
}

func Update(ev Event, remoteID string) Operation {
	return Operation{Kind: OpUpdate, Event: ev, ExternalID: ev.ExternalID, RemoteID: remoteID}
}

func Delete(externalID, remoteID string, reason Reason) Operation {
	return Operation{Kind: OpDelete, ExternalID: externalID, RemoteID: remoteID, Reason: reason}
}

func Skip(ev Event, reason Reason) Operation {
	return Operation{Kind: OpSkip, Event: ev, ExternalID: ev.ExternalID, Reason: reason}
}

type Options struct {
	FutureOnly   bool
	PruneMissing bool
	Now          time.Time
}

// Reconcile decides what to do with every feed entry, in feed order, then,
// with PruneMissing, deletes the synced events whose id left the feed.
func Reconcile(entries []mo.Result[Event], idx *Index, opts Options) []Operation {
	if idx == nil {
		idx = NewIndex()
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	ops := make([]Operation, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	// Malformed entries keep their UID from being pruned without making a
	// later valid copy a duplicate.
	present := make(map[string]bool, len(entries))

	for _, entry := range entries {
		ev, err := entry.Get()
		if err != nil {
			op := Operation{Kind: OpSkip, Reason: ReasonMalformed, Err: err}
			var merr *internal.MalformedEventError
			if errors.As(err, &merr) {
				op.ExternalID = merr.UID
				if merr.UID != "" {
					present[merr.UID] = true
				}
			}
			ops = append(ops, op)
			continue
		}
		ops = append(ops, decide(ev, idx, opts, seen))
	}

	if !opts.PruneMissing {
		return ops
	}
	for _, id := range idx.IDs() {
		if seen[id] || present[id] {
			continue
		}
		remote := idx.Lookup(id).MustGet()
		ops = append(ops, Delete(id, remote.ID, ReasonMissingFromFeed))
	}
	return ops
}

func decide(ev Event, idx *Index, opts Options, seen map[string]bool) Operation {
	if ev.ExternalID == "" {
		return Skip(ev, ReasonMissingID)
	}
	if seen[ev.ExternalID] {
		return Skip(ev, ReasonDuplicateID)
	}
	seen[ev.ExternalID] = true

	if opts.FutureOnly && !IsRelevant(ev, opts.Now) {
		return Skip(ev, ReasonPast)
	}

	remote, found := idx.Lookup(ev.ExternalID).Get()
	if ev.Cancelled() {
		if found {
			return Delete(ev.ExternalID, remote.ID, ReasonCancelled)
		}
		return Skip(ev, ReasonCancelledAbsent)
	}
	if found {
		return Update(ev, remote.ID)
	}
	return Create(ev)
}
