package syncer

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/guilherme-santos/icssync/internal"
)

var testCal = internal.NewCalendar(internal.Account{Platform: "fake", Name: "me@example.com"}, "")

// fakeStore keeps events in memory and pages ListSynced by pageSize.
type fakeStore struct {
	mu       sync.Mutex
	events   map[string]*storedEvent
	order    []string
	nextID   int
	pageSize int

	// RejectRecurrence refuses every write carrying a recurrence rule.
	RejectRecurrence bool
	// Fail makes writes of the given external ids fail.
	Fail map[string]error

	Writes int
}

type storedEvent struct {
	ID    string
	Event internal.Event
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:   make(map[string]*storedEvent),
		pageSize: 2,
		Fail:     make(map[string]error),
	}
}

// addManual stores an event not created by a sync.
func (s *fakeStore) addManual(summary string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(internal.Event{Summary: summary})
}

func (s *fakeStore) insert(ev internal.Event) string {
	s.nextID++
	id := "remote-" + strconv.Itoa(s.nextID)
	s.events[id] = &storedEvent{ID: id, Event: ev}
	s.order = append(s.order, id)
	return id
}

func (s *fakeStore) byExternalID(externalID string) *storedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		if e := s.events[id]; e != nil && e.Event.ExternalID == externalID {
			return e
		}
	}
	return nil
}

func (s *fakeStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func (s *fakeStore) remote(e *storedEvent) *internal.RemoteEvent {
	return &internal.RemoteEvent{
		ID:         e.ID,
		ExternalID: e.Event.ExternalID,
		Summary:    e.Event.Summary,
		Start:      e.Event.Start,
	}
}

func (s *fakeStore) FindByExternalID(_ context.Context, _ *internal.Calendar, externalID string) (*internal.RemoteEvent, error) {
	e := s.byExternalID(externalID)
	if e == nil {
		return nil, internal.ErrNotFound
	}
	return s.remote(e), nil
}

func (s *fakeStore) ListSynced(_ context.Context, _ *internal.Calendar, pageToken string) ([]*internal.RemoteEvent, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	offset := 0
	if pageToken != "" {
		offset, _ = strconv.Atoi(pageToken)
	}
	var ids []string
	for _, id := range s.order {
		if _, ok := s.events[id]; ok {
			ids = append(ids, id)
		}
	}

	end := min(offset+s.pageSize, len(ids))
	res := make([]*internal.RemoteEvent, 0, end-offset)
	for _, id := range ids[offset:end] {
		res = append(res, s.remote(s.events[id]))
	}
	next := ""
	if end < len(ids) {
		next = strconv.Itoa(end)
	}
	return res, next, nil
}

func (s *fakeStore) check(ev internal.Event) error {
	if err := s.Fail[ev.ExternalID]; err != nil {
		return err
	}
	if s.RejectRecurrence && ev.Recurrence.Rule != "" {
		return fmt.Errorf("%w: invalid rule", internal.ErrRecurrenceRejected)
	}
	return nil
}

func (s *fakeStore) CreateEvent(_ context.Context, _ *internal.Calendar, ev internal.Event) (*internal.RemoteEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Writes++
	if err := s.check(ev); err != nil {
		return nil, err
	}
	id := s.insert(ev)
	return s.remote(s.events[id]), nil
}

func (s *fakeStore) UpdateEvent(_ context.Context, _ *internal.Calendar, id string, ev internal.Event) (*internal.RemoteEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Writes++
	e, ok := s.events[id]
	if !ok {
		return nil, internal.ErrNotFound
	}
	if err := s.check(ev); err != nil {
		return nil, err
	}
	e.Event = ev
	return s.remote(e), nil
}

func (s *fakeStore) DeleteEvent(_ context.Context, _ *internal.Calendar, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Writes++
	delete(s.events, id)
	return nil
}

type fakeMux struct {
	store internal.Store
}

func (m fakeMux) Get(string) (internal.Store, error) {
	return m.store, nil
}

type fakeFetcher struct {
	body []byte
	err  error
}

func (f *fakeFetcher) Fetch(context.Context, string) ([]byte, error) {
	return f.body, f.err
}

type memRuns struct {
	runs []*internal.Run
}

func (m *memRuns) SaveRun(_ context.Context, r *internal.Run) error {
	m.runs = append(m.runs, r)
	return nil
}

// mockStore is used where the exact calls matter.
type mockStore struct {
	mock.Mock
}

func (m *mockStore) FindByExternalID(ctx context.Context, cal *internal.Calendar, externalID string) (*internal.RemoteEvent, error) {
	args := m.Called(ctx, cal, externalID)
	ev, _ := args.Get(0).(*internal.RemoteEvent)
	return ev, args.Error(1)
}

func (m *mockStore) ListSynced(ctx context.Context, cal *internal.Calendar, pageToken string) ([]*internal.RemoteEvent, string, error) {
	args := m.Called(ctx, cal, pageToken)
	evs, _ := args.Get(0).([]*internal.RemoteEvent)
	return evs, args.String(1), args.Error(2)
}

func (m *mockStore) CreateEvent(ctx context.Context, cal *internal.Calendar, ev internal.Event) (*internal.RemoteEvent, error) {
	args := m.Called(ctx, cal, ev)
	res, _ := args.Get(0).(*internal.RemoteEvent)
	return res, args.Error(1)
}

func (m *mockStore) UpdateEvent(ctx context.Context, cal *internal.Calendar, id string, ev internal.Event) (*internal.RemoteEvent, error) {
	args := m.Called(ctx, cal, id, ev)
	res, _ := args.Get(0).(*internal.RemoteEvent)
	return res, args.Error(1)
}

func (m *mockStore) DeleteEvent(ctx context.Context, cal *internal.Calendar, id string) error {
	return m.Called(ctx, cal, id).Error(0)
}

// timedEvent starts at start and lasts one hour.
func timedEvent(uid string, start time.Time) internal.Event {
	st := internal.EventTime{Time: start, TimeZone: "UTC"}
	return internal.Event{
		ExternalID: uid,
		Summary:    "Event " + uid,
		Status:     internal.StatusActive,
		Start:      st,
		End:        st.DefaultEnd(),
	}
}

// icsFeed builds a feed body, one VEVENT per block.
func icsFeed(events ...string) []byte {
	lines := []string{"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//icssync//test//EN"}
	for _, ev := range events {
		lines = append(lines, "BEGIN:VEVENT")
		lines = append(lines, strings.Split(strings.TrimSpace(ev), "\n")...)
		lines = append(lines, "END:VEVENT")
	}
	lines = append(lines, "END:VCALENDAR", "")
	return []byte(strings.Join(lines, "\r\n"))
}
