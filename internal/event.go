package internal

import (
	"time"
)

// ExternalIDKey is the private extended property holding the feed UID.
const ExternalIDKey = "icsUid"

// Event is one feed entry after normalization. Events are values, a new
// feed snapshot replaces them wholesale.
type Event struct {
	ExternalID  string
	Summary     string
	Description string
	Location    string
	Status      Status
	Start       EventTime
	End         EventTime
	Recurrence  Recurrence
	Attendees   []string
}

func (e Event) Cancelled() bool {
	return e.Status == StatusCancelled
}

// ExtendedProperties is the private metadata binding the remote event to
// the feed entry.
func (e Event) ExtendedProperties() map[string]string {
	return map[string]string{ExternalIDKey: e.ExternalID}
}

// WithoutRecurrence returns a copy of e that will be written as a single
// event.
func (e Event) WithoutRecurrence() Event {
	e.Recurrence.Rule = ""
	return e
}

type Status string

func (s Status) String() string {
	return string(s)
}

var (
	StatusActive    Status = "ACTIVE"
	StatusCancelled Status = "CANCELLED"
)

// EventTime is either a date (AllDay) or a timestamp labelled with the
// timezone it was expressed in.
type EventTime struct {
	Time     time.Time
	AllDay   bool
	TimeZone string
}

// DefaultEnd derives the end of an event that has no explicit one.
func (t EventTime) DefaultEnd() EventTime {
	if t.AllDay {
		return EventTime{Time: t.Time.AddDate(0, 0, 1), AllDay: true}
	}
	return EventTime{Time: t.Time.Add(time.Hour), TimeZone: t.TimeZone}
}

// Add moves t forward by d. An all-day time moves by whole days, rounded up
// and never less than one.
func (t EventTime) Add(d time.Duration) EventTime {
	if t.AllDay {
		days := int((d + fullDay - 1) / fullDay)
		if days < 1 {
			days = 1
		}
		t.Time = t.Time.AddDate(0, 0, days)
		return t
	}
	t.Time = t.Time.Add(d)
	return t
}

const fullDay = 24 * time.Hour

const DateFormat = "2006-01-02"

func (t EventTime) String() string {
	if t.AllDay {
		return t.Time.Format(DateFormat)
	}
	return t.Time.Format(time.RFC3339) + " (" + t.TimeZone + ")"
}

type RecurrenceKind int

const (
	RecurrenceNone RecurrenceKind = iota
	RecurrenceUnbounded
	RecurrenceBounded
	RecurrenceUnparseable
)

func (k RecurrenceKind) String() string {
	switch k {
	case RecurrenceUnbounded:
		return "unbounded"
	case RecurrenceBounded:
		return "bounded"
	case RecurrenceUnparseable:
		return "unparseable"
	}
	return "none"
}

// Recurrence describes the series an event belongs to. Until is only set
// for RecurrenceBounded. Rule is the encoded "RRULE:..." line sent to the
// store, empty when there is nothing valid to send.
type Recurrence struct {
	Kind  RecurrenceKind
	Until time.Time
	Rule  string
}

func (r Recurrence) Recurring() bool {
	return r.Kind != RecurrenceNone
}

// RemoteEvent is an event as stored on the destination calendar.
// ExternalID is empty for events that were not created by a sync.
type RemoteEvent struct {
	ID         string
	ExternalID string
	Summary    string
	Start      EventTime
}

func (e RemoteEvent) Manual() bool {
	return e.ExternalID == ""
}
