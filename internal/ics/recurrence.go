package ics

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/guilherme-santos/icssync/internal"
)

const rrulePrefix = "RRULE:"

// ParseRecurrence converts the RRULE value of a feed entry into the
// descriptor used for classification plus the "RRULE:..." line sent to
// the store. On error the descriptor is RecurrenceUnparseable and carries
// no rule.
func ParseRecurrence(raw string, allDay bool) (internal.Recurrence, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return internal.Recurrence{Kind: internal.RecurrenceNone}, nil
	}

	unparseable := internal.Recurrence{Kind: internal.RecurrenceUnparseable}

	value := strings.ToUpper(raw)
	value = strings.TrimPrefix(value, rrulePrefix)
	opt, err := rrule.StrToROption(value)
	if err != nil {
		return unparseable, fmt.Errorf("parsing rrule %q: %w", raw, err)
	}
	// Only used for the validation of the BY* bounds.
	if _, err := rrule.NewRRule(*opt); err != nil {
		return unparseable, fmt.Errorf("parsing rrule %q: %w", raw, err)
	}

	until := opt.Until
	opt.Until = time.Time{}
	opt.Dtstart = time.Time{}

	rule := opt.RRuleString()
	if until.IsZero() {
		return internal.Recurrence{
			Kind: internal.RecurrenceUnbounded,
			Rule: rrulePrefix + rule,
		}, nil
	}

	rule += ";UNTIL=" + formatUntil(until, allDay)
	return internal.Recurrence{
		Kind:  internal.RecurrenceBounded,
		Until: until.UTC(),
		Rule:  rrulePrefix + rule,
	}, nil
}

// formatUntil keeps UNTIL the same value type as DTSTART.
func formatUntil(until time.Time, allDay bool) string {
	if allDay {
		return until.UTC().Format(rrule.DateFormat)
	}
	return until.UTC().Format(rrule.DateTimeFormat)
}
