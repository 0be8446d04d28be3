package google

import (
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/guilherme-santos/icssync/internal"
)

func newRemoteEvent(event *calendar.Event) *internal.RemoteEvent {
	res := &internal.RemoteEvent{
		ID:      event.Id,
		Summary: event.Summary,
	}
	if p := event.ExtendedProperties; p != nil {
		res.ExternalID = p.Private[internal.ExternalIDKey]
	}
	if event.Start != nil {
		res.Start = newEventTime(event.Start)
	}
	return res
}

func newEventTime(dt *calendar.EventDateTime) internal.EventTime {
	if dt.Date != "" {
		t, _ := time.ParseInLocation(internal.DateFormat, dt.Date, time.UTC)
		return internal.EventTime{Time: t, AllDay: true}
	}
	t, _ := time.Parse(time.RFC3339, dt.DateTime)
	return internal.EventTime{Time: t, TimeZone: dt.TimeZone}
}

func newGoogleEvent(event internal.Event) *calendar.Event {
	gevent := &calendar.Event{
		Summary:     event.Summary,
		Description: event.Description,
		Location:    event.Location,
		Start:       newGoogleDateTime(event.Start),
		End:         newGoogleDateTime(event.End),
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: event.ExtendedProperties(),
		},
		Reminders: &calendar.EventReminders{
			UseDefault: true,
		},
	}
	if rule := event.Recurrence.Rule; rule != "" {
		gevent.Recurrence = []string{rule}
	}
	for _, email := range event.Attendees {
		gevent.Attendees = append(gevent.Attendees, &calendar.EventAttendee{
			Email: email,
		})
	}
	return gevent
}

func newGoogleDateTime(t internal.EventTime) *calendar.EventDateTime {
	if t.AllDay {
		return &calendar.EventDateTime{
			Date: t.Time.Format(internal.DateFormat),
		}
	}
	return &calendar.EventDateTime{
		DateTime: t.Time.Format(time.RFC3339),
		TimeZone: t.TimeZone,
	}
}
