package syncer

import (
	"context"
	"fmt"

	"github.com/guilherme-santos/icssync/internal"
)

type Outcome int

const (
	Skipped Outcome = iota
	Created
	Updated
	Deleted
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Updated:
		return "updated"
	case Deleted:
		return "deleted"
	}
	return "skipped"
}

type Result struct {
	Op      Operation
	Outcome Outcome
	// Err is the last error returned by the store, set for failed writes.
	Err error
	// WithoutRecurrence is set when the event was only written after its
	// recurrence was stripped.
	WithoutRecurrence bool
}

// Executor applies operations to the store, one at a time.
type Executor struct {
	store internal.Store
	cal   *Calendar
	log   *internal.Logger

	// DryRun reports what would be done without calling the store.
	DryRun bool
}

func NewExecutor(store internal.Store, cal *Calendar, log *internal.Logger) *Executor {
	return &Executor{
		store: store,
		cal:   cal,
		log:   log,
	}
}

func (x *Executor) Execute(ctx context.Context, op Operation) Result {
	res := Result{Op: op}

	switch op.Kind {
	case OpCreate, OpUpdate:
		outcome := Created
		if op.Kind == OpUpdate {
			outcome = Updated
		}
		if x.DryRun {
			res.Outcome = outcome
			return res
		}
		stripped, err := x.write(ctx, op)
		if err != nil {
			res.Err = err
			return res
		}
		res.Outcome = outcome
		res.WithoutRecurrence = stripped

	case OpDelete:
		if x.DryRun {
			res.Outcome = Deleted
			return res
		}
		err := x.store.DeleteEvent(ctx, x.cal, op.RemoteID)
		if err != nil {
			res.Err = err
			return res
		}
		res.Outcome = Deleted
	}
	return res
}

// write sends the event, and when the store refuses its recurrence, sends
// it once more as a single event. Other failures are not retried.
func (x *Executor) write(ctx context.Context, op Operation) (stripped bool, _ error) {
	err := x.send(ctx, op, op.Event)
	if err == nil {
		return false, nil
	}
	if op.Event.Recurrence.Rule == "" || !internal.IsRecurrenceRejection(err) {
		return false, err
	}

	x.log.Logf(x.cal, "[retry] %s: recurrence rejected (%v), retrying without it", op.ExternalID, err)

	err = x.send(ctx, op, op.Event.WithoutRecurrence())
	if err != nil {
		return false, err
	}
	return true, nil
}

func (x *Executor) send(ctx context.Context, op Operation, ev Event) error {
	var err error
	switch op.Kind {
	case OpCreate:
		_, err = x.store.CreateEvent(ctx, x.cal, ev)
	case OpUpdate:
		_, err = x.store.UpdateEvent(ctx, x.cal, op.RemoteID, ev)
	default:
		err = fmt.Errorf("cannot write a %s operation", op.Kind)
	}
	return err
}

// Tally counts outcomes of a run.
type Tally struct {
	Created int
	Updated int
	Deleted int
	Skipped int
}

func (t *Tally) Add(r Result) {
	switch r.Outcome {
	case Created:
		t.Created++
	case Updated:
		t.Updated++
	case Deleted:
		t.Deleted++
	default:
		t.Skipped++
	}
}

func (t Tally) String() string {
	return fmt.Sprintf("created=%d, updated=%d, deleted=%d, skipped=%d", t.Created, t.Updated, t.Deleted, t.Skipped)
}

// Summary is the last line printed by a run.
func (t Tally) Summary(dryRun bool) string {
	if dryRun {
		return fmt.Sprintf("Dry run. would create=%d, would update=%d, would delete=%d, skipped=%d",
			t.Created, t.Updated, t.Deleted, t.Skipped)
	}
	return "Done. " + t.String()
}
