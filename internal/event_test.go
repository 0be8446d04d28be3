package internal

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventTime_DefaultEnd(t *testing.T) {
	day := EventTime{Time: time.Date(2030, 12, 31, 0, 0, 0, 0, time.UTC), AllDay: true}
	end := day.DefaultEnd()
	assert.True(t, end.AllDay)
	assert.Equal(t, "2031-01-01", end.String())

	tokyo, _ := time.LoadLocation("Asia/Tokyo")
	timed := EventTime{Time: time.Date(2030, 1, 10, 23, 30, 0, 0, tokyo), TimeZone: "Asia/Tokyo"}
	end = timed.DefaultEnd()
	assert.False(t, end.AllDay)
	assert.Equal(t, time.Hour, end.Time.Sub(timed.Time))
	assert.Equal(t, "Asia/Tokyo", end.TimeZone)
}

func TestEventTime_Add(t *testing.T) {
	day := EventTime{Time: time.Date(2030, 1, 10, 0, 0, 0, 0, time.UTC), AllDay: true}

	tests := map[time.Duration]string{
		time.Hour:          "2030-01-11",
		0:                  "2030-01-11",
		24 * time.Hour:     "2030-01-11",
		25 * time.Hour:     "2030-01-12",
		7 * 24 * time.Hour: "2030-01-17",
	}
	for d, want := range tests {
		end := day.Add(d)
		assert.True(t, end.AllDay, d)
		assert.Equal(t, want, end.String(), d)
	}

	timed := EventTime{Time: time.Date(2030, 1, 10, 9, 0, 0, 0, time.UTC), TimeZone: "UTC"}
	assert.Equal(t, 90*time.Minute, timed.Add(90*time.Minute).Time.Sub(timed.Time))
}

func TestEvent_WithoutRecurrence(t *testing.T) {
	ev := Event{
		ExternalID: "a",
		Recurrence: Recurrence{Kind: RecurrenceUnbounded, Rule: "RRULE:FREQ=DAILY"},
	}

	single := ev.WithoutRecurrence()
	assert.Empty(t, single.Recurrence.Rule)
	assert.Equal(t, "RRULE:FREQ=DAILY", ev.Recurrence.Rule)
}

func TestIsRecurrenceRejection(t *testing.T) {
	assert.True(t, IsRecurrenceRejection(fmt.Errorf("create: %w", ErrRecurrenceRejected)))
	assert.True(t, IsRecurrenceRejection(errors.New("Invalid RRULE value")))
	assert.True(t, IsRecurrenceRejection(errors.New("bad recurrence")))
	assert.False(t, IsRecurrenceRejection(errors.New("rate limit exceeded")))
	assert.False(t, IsRecurrenceRejection(nil))
}

func TestCalendar_ID(t *testing.T) {
	cal := NewCalendar(Account{Platform: "google", Name: "me@example.com"}, "")
	assert.Equal(t, "primary", cal.ProviderID)
	assert.Equal(t, "google/me@example.com/primary", cal.ID())
}
