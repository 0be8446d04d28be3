package ics

import (
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"
)

// Zones are the VTIMEZONE definitions of a feed, keyed by TZID.
type Zones map[string]*Zone

// Zone is a VTIMEZONE. Feeds exported by Exchange name their zones after
// Windows ("W. Europe Standard Time"), which the tz database does not know.
type Zone struct {
	ID          string
	observances []observance
}

// observance is one STANDARD or DAYLIGHT block. Onsets are wall clock
// times stored as UTC.
type observance struct {
	onset      time.Time
	offsetFrom time.Duration
	offsetTo   time.Duration
	rule       *rrule.RRule
}

// parseZones skips the definitions it cannot read, their TZIDs then resolve
// like any other unknown zone.
func parseZones(tzs []*ical.VTimezone) Zones {
	zones := make(Zones, len(tzs))
	for _, tz := range tzs {
		z, err := parseZone(tz)
		if err != nil {
			continue
		}
		zones[z.ID] = z
	}
	return zones
}

func parseZone(tz *ical.VTimezone) (*Zone, error) {
	p := tz.GetProperty(ical.ComponentPropertyTzid)
	if p == nil || strings.TrimSpace(p.Value) == "" {
		return nil, errors.New("VTIMEZONE without TZID")
	}
	z := &Zone{ID: strings.TrimSpace(p.Value)}

	for _, c := range tz.SubComponents() {
		var base *ical.ComponentBase
		switch sub := c.(type) {
		case *ical.Standard:
			base = &sub.ComponentBase
		case *ical.Daylight:
			base = &sub.ComponentBase
		default:
			continue
		}
		o, err := parseObservance(base)
		if err != nil {
			return nil, fmt.Errorf("VTIMEZONE %q: %w", z.ID, err)
		}
		z.observances = append(z.observances, o)
	}
	if len(z.observances) == 0 {
		return nil, fmt.Errorf("VTIMEZONE %q: no STANDARD or DAYLIGHT", z.ID)
	}
	return z, nil
}

func parseObservance(c *ical.ComponentBase) (observance, error) {
	var o observance

	p := c.GetProperty(ical.ComponentPropertyDtStart)
	if p == nil {
		return o, errors.New("observance without DTSTART")
	}
	onset, err := time.ParseInLocation(icalDateTime, strings.TrimSpace(p.Value), time.UTC)
	if err != nil {
		return o, err
	}
	o.onset = onset

	if o.offsetTo, err = offsetProperty(c, ical.PropertyTzoffsetto); err != nil {
		return o, err
	}
	if o.offsetFrom, err = offsetProperty(c, ical.PropertyTzoffsetfrom); err != nil {
		o.offsetFrom = o.offsetTo
	}

	if p := c.GetProperty(ical.ComponentPropertyRrule); p != nil {
		opt, err := rrule.StrToROption(strings.ToUpper(strings.TrimSpace(p.Value)))
		if err != nil {
			return o, fmt.Errorf("observance rule: %w", err)
		}
		opt.Dtstart = onset
		if o.rule, err = rrule.NewRRule(*opt); err != nil {
			return o, fmt.Errorf("observance rule: %w", err)
		}
	}
	return o, nil
}

func offsetProperty(c *ical.ComponentBase, name ical.Property) (time.Duration, error) {
	p := c.GetProperty(ical.ComponentProperty(name))
	if p == nil {
		return 0, fmt.Errorf("missing %s", name)
	}
	return parseOffset(p.Value)
}

// parseOffset reads a UTC offset such as "+0100", "-0530" or "+013045".
func parseOffset(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	layout := "-0700"
	if len(v) == 7 {
		layout = "-070000"
	}
	t, err := time.Parse(layout, v)
	if err != nil {
		return 0, fmt.Errorf("invalid UTC offset %q", v)
	}
	_, secs := t.Zone()
	return time.Duration(secs) * time.Second, nil
}

// Offset is the UTC offset in effect at the given wall clock time. The
// observance with the latest onset not after wall wins.
func (z *Zone) Offset(wall time.Time) time.Duration {
	wall = time.Date(wall.Year(), wall.Month(), wall.Day(), wall.Hour(), wall.Minute(), wall.Second(), 0, time.UTC)

	var (
		latest time.Time
		offset time.Duration
		found  bool
	)
	for _, o := range z.observances {
		onset := o.onset
		if o.rule != nil {
			onset = o.rule.Before(wall, true)
		}
		if onset.IsZero() || onset.After(wall) {
			continue
		}
		if !found || onset.After(latest) {
			latest, offset, found = onset, o.offsetTo, true
		}
	}
	if found {
		return offset
	}

	// Before every onset: the offset the earliest observance moved away from.
	first := z.observances[0]
	for _, o := range z.observances[1:] {
		if o.onset.Before(first.onset) {
			first = o
		}
	}
	return first.offsetFrom
}

// In places the wall clock time in the zone.
func (z *Zone) In(wall time.Time) time.Time {
	off := z.Offset(wall)
	loc := time.FixedZone(z.ID, int(off/time.Second))
	return time.Date(wall.Year(), wall.Month(), wall.Day(), wall.Hour(), wall.Minute(), wall.Second(), 0, loc)
}
