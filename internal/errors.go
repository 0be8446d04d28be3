package internal

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRecurrenceRejected = errors.New("recurrence rejected")
	ErrNotFound           = errors.New("not found")
)

// MalformedEventError is returned for feed entries that cannot become an
// Event. UID is kept when the entry had one.
type MalformedEventError struct {
	UID    string
	Reason string
}

func (e *MalformedEventError) Error() string {
	if e.UID == "" {
		return "malformed event: " + e.Reason
	}
	return fmt.Sprintf("malformed event %s: %s", e.UID, e.Reason)
}

type FetchError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %s", e.URL, e.Status)
}

// IsRecurrenceRejection reports whether err means the store refused the
// recurrence of the event rather than the event itself.
func IsRecurrenceRejection(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRecurrenceRejected) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "recurrence") || strings.Contains(msg, "rrule")
}
