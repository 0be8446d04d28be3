package ics

import (
	"bytes"
	"errors"
	"fmt"

	ical "github.com/arran4/golang-ical"
)

// Document is a parsed feed.
type Document struct {
	Events []*ical.VEvent
	// Overrides counts the VEVENTs dropped because they only override one
	// instance of a series (RECURRENCE-ID).
	Overrides int
	// Zones holds the feed's own VTIMEZONE definitions.
	Zones Zones
}

// Parse reads a feed into the VEVENTs that describe whole events, in feed
// order.
func Parse(body []byte) (*Document, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("ics: empty feed")
	}

	cal, err := ical.ParseCalendarWithOptions(bytes.NewReader(body),
		ical.WithUnknownPropertyHandler(ical.AcceptUnknownPropertyHandler),
	)
	if err != nil {
		return nil, fmt.Errorf("ics: parsing feed: %w", err)
	}

	doc := &Document{Zones: parseZones(cal.Timezones())}
	for _, ve := range cal.Events() {
		if ve.GetProperty(ical.ComponentPropertyRecurrenceId) != nil {
			doc.Overrides++
			continue
		}
		doc.Events = append(doc.Events, ve)
	}
	return doc, nil
}
