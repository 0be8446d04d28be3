package syncer

import (
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guilherme-santos/icssync/internal"
)

var now = time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)

func ok(evs ...internal.Event) []mo.Result[internal.Event] {
	res := make([]mo.Result[internal.Event], len(evs))
	for i, ev := range evs {
		res[i] = mo.Ok(ev)
	}
	return res
}

func cancelled(ev internal.Event) internal.Event {
	ev.Status = internal.StatusCancelled
	return ev
}

func kinds(ops []Operation) []Kind {
	res := make([]Kind, len(ops))
	for i, op := range ops {
		res[i] = op.Kind
	}
	return res
}

func TestReconcile_EmptyDestination(t *testing.T) {
	a := timedEvent("a1", now.Add(time.Hour))
	b := cancelled(timedEvent("b1", now.Add(time.Hour)))

	ops := Reconcile(ok(a, b), NewIndex(), Options{Now: now})

	require.Len(t, ops, 2)
	assert.Equal(t, OpCreate, ops[0].Kind)
	assert.Equal(t, "a1", ops[0].ExternalID)
	assert.Equal(t, OpSkip, ops[1].Kind)
	assert.Equal(t, ReasonCancelledAbsent, ops[1].Reason)
}

func TestReconcile_CancelledDeletesOnce(t *testing.T) {
	idx := NewIndex(&internal.RemoteEvent{ID: "r1", ExternalID: "b1"})

	ops := Reconcile(ok(cancelled(timedEvent("b1", now.Add(time.Hour)))), idx, Options{Now: now, PruneMissing: true})

	require.Len(t, ops, 1)
	assert.Equal(t, OpDelete, ops[0].Kind)
	assert.Equal(t, "r1", ops[0].RemoteID)
	assert.Equal(t, ReasonCancelled, ops[0].Reason)
}

func TestReconcile_Update(t *testing.T) {
	idx := NewIndex(&internal.RemoteEvent{ID: "r1", ExternalID: "a1"})

	ops := Reconcile(ok(timedEvent("a1", now.Add(time.Hour))), idx, Options{Now: now})

	require.Len(t, ops, 1)
	assert.Equal(t, OpUpdate, ops[0].Kind)
	assert.Equal(t, "r1", ops[0].RemoteID)
}

func TestReconcile_Prune(t *testing.T) {
	idx := NewIndex(
		&internal.RemoteEvent{ID: "r1", ExternalID: "kept"},
		&internal.RemoteEvent{ID: "r2", ExternalID: "gone"},
	)
	entries := ok(timedEvent("kept", now.Add(time.Hour)))

	ops := Reconcile(entries, idx, Options{Now: now, PruneMissing: true})
	assert.Equal(t, []Kind{OpUpdate, OpDelete}, kinds(ops))
	assert.Equal(t, "r2", ops[1].RemoteID)
	assert.Equal(t, ReasonMissingFromFeed, ops[1].Reason)

	ops = Reconcile(entries, idx, Options{Now: now})
	assert.Equal(t, []Kind{OpUpdate}, kinds(ops))
}

func TestReconcile_FutureOnly(t *testing.T) {
	past := timedEvent("past", now.Add(-time.Second))
	future := timedEvent("future", now.Add(time.Second))
	idx := NewIndex(&internal.RemoteEvent{ID: "r1", ExternalID: "past"})

	ops := Reconcile(ok(past, future), idx, Options{Now: now, FutureOnly: true, PruneMissing: true})

	// A past event still in the feed is not pruned.
	require.Equal(t, []Kind{OpSkip, OpCreate}, kinds(ops))
	assert.Equal(t, ReasonPast, ops[0].Reason)

	ops = Reconcile(ok(past, future), idx, Options{Now: now})
	assert.Equal(t, []Kind{OpUpdate, OpCreate}, kinds(ops))
}

func TestReconcile_MissingAndDuplicateIDs(t *testing.T) {
	noID := timedEvent("", now.Add(time.Hour))
	first := timedEvent("dup", now.Add(time.Hour))
	second := timedEvent("dup", now.Add(2*time.Hour))

	ops := Reconcile(ok(noID, first, second), NewIndex(), Options{Now: now})

	require.Equal(t, []Kind{OpSkip, OpCreate, OpSkip}, kinds(ops))
	assert.Equal(t, ReasonMissingID, ops[0].Reason)
	assert.Equal(t, ReasonDuplicateID, ops[2].Reason)
	assert.Equal(t, first.Start, ops[1].Event.Start)
}

func TestReconcile_MalformedIsNotPruned(t *testing.T) {
	idx := NewIndex(&internal.RemoteEvent{ID: "r1", ExternalID: "broken"})
	entries := []mo.Result[internal.Event]{
		mo.Err[internal.Event](&internal.MalformedEventError{UID: "broken", Reason: "missing DTSTART"}),
	}

	ops := Reconcile(entries, idx, Options{Now: now, PruneMissing: true})

	require.Len(t, ops, 1)
	assert.Equal(t, OpSkip, ops[0].Kind)
	assert.Equal(t, ReasonMalformed, ops[0].Reason)
	assert.Equal(t, "broken", ops[0].ExternalID)
	assert.Error(t, ops[0].Err)
}

func TestReconcile_MalformedThenValidCopy(t *testing.T) {
	idx := NewIndex(&internal.RemoteEvent{ID: "r1", ExternalID: "x"})
	entries := []mo.Result[internal.Event]{
		mo.Err[internal.Event](&internal.MalformedEventError{UID: "x", Reason: "missing DTSTART"}),
		mo.Ok(timedEvent("x", now.Add(time.Hour))),
	}

	ops := Reconcile(entries, idx, Options{Now: now, PruneMissing: true})

	require.Equal(t, []Kind{OpSkip, OpUpdate}, kinds(ops))
	assert.Equal(t, ReasonMalformed, ops[0].Reason)
	assert.Equal(t, "r1", ops[1].RemoteID)

	ops = Reconcile(entries, NewIndex(), Options{Now: now, PruneMissing: true})
	require.Equal(t, []Kind{OpSkip, OpCreate}, kinds(ops))
}

func TestReconcile_ManualEventsUntouched(t *testing.T) {
	idx := NewIndex(
		&internal.RemoteEvent{ID: "manual"},
		&internal.RemoteEvent{ID: "r1", ExternalID: "gone"},
	)

	ops := Reconcile(nil, idx, Options{Now: now, PruneMissing: true})

	require.Len(t, ops, 1)
	assert.Equal(t, "r1", ops[0].RemoteID)
}
