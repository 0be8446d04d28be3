package ics

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	goical "github.com/emersion/go-ical"
	"github.com/samber/mo"

	"github.com/guilherme-santos/icssync/internal"
)

const (
	icalDate     = "20060102"
	icalDateTime = "20060102T150405"
	icalUTC      = "20060102T150405Z"
)

// Normalizer turns feed entries into events.
type Normalizer struct {
	// Recurrence enables sending the RRULE to the store. The recurrence
	// descriptor is computed either way.
	Recurrence bool
	// Zones resolves TZIDs the tz database does not know.
	Zones Zones

	log *internal.Logger
}

func NewNormalizer(log *internal.Logger) *Normalizer {
	return &Normalizer{
		Recurrence: true,
		log:        log,
	}
}

// NormalizeAll keeps the feed order, entries that could not be normalized
// are returned as errors in place.
func (n Normalizer) NormalizeAll(events []*ical.VEvent) []mo.Result[internal.Event] {
	res := make([]mo.Result[internal.Event], len(events))
	for i, ve := range events {
		ev, err := n.Normalize(ve)
		if err != nil {
			res[i] = mo.Err[internal.Event](err)
			continue
		}
		res[i] = mo.Ok(ev)
	}
	return res
}

// Normalize fails with *internal.MalformedEventError when the entry has no
// usable DTSTART. Everything else degrades to a default.
func (n Normalizer) Normalize(ve *ical.VEvent) (internal.Event, error) {
	uid := strings.TrimSpace(ve.Id())

	ev := internal.Event{
		ExternalID:  uid,
		Summary:     textProperty(ve, ical.ComponentPropertySummary),
		Description: textProperty(ve, ical.ComponentPropertyDescription),
		Location:    textProperty(ve, ical.ComponentPropertyLocation),
		Status:      internal.StatusActive,
	}
	if strings.EqualFold(textProperty(ve, ical.ComponentPropertyStatus), "CANCELLED") {
		ev.Status = internal.StatusCancelled
	}

	dtstart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtstart == nil || strings.TrimSpace(dtstart.Value) == "" {
		return internal.Event{}, &internal.MalformedEventError{UID: uid, Reason: "missing DTSTART"}
	}
	start, err := n.eventTime(uid, dtstart)
	if err != nil {
		return internal.Event{}, &internal.MalformedEventError{UID: uid, Reason: fmt.Sprintf("invalid DTSTART: %v", err)}
	}
	ev.Start = start
	ev.End = n.endTime(uid, ve, start)

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		rec, err := ParseRecurrence(p.Value, start.AllDay)
		if err != nil {
			n.log.Logf(nil, "[warning] %s: syncing without recurrence: %v", uid, err)
		}
		if !n.Recurrence {
			rec.Rule = ""
		}
		ev.Recurrence = rec
	}

	ev.Attendees = attendees(ve)
	return ev, nil
}

func (n Normalizer) endTime(uid string, ve *ical.VEvent, start internal.EventTime) internal.EventTime {
	if p := ve.GetProperty(ical.ComponentPropertyDtEnd); p != nil && strings.TrimSpace(p.Value) != "" {
		end, err := n.eventTime(uid, p)
		if err == nil && end.AllDay == start.AllDay {
			return end
		}
		n.log.Debugf(nil, "%s: ignoring DTEND %q: %v", uid, p.Value, err)
	}
	if p := ve.GetProperty(ical.ComponentPropertyDuration); p != nil {
		d, err := parseDuration(p.Value)
		if err == nil {
			return start.Add(d)
		}
		n.log.Debugf(nil, "%s: ignoring DURATION %q: %v", uid, p.Value, err)
	}
	return start.DefaultEnd()
}

// eventTime resolves a DTSTART/DTEND. Values without TZID and without the
// UTC suffix are taken as UTC, never as the machine's local time.
func (n Normalizer) eventTime(uid string, p *ical.IANAProperty) (internal.EventTime, error) {
	v := strings.TrimSpace(p.Value)

	if isDate(p, v) {
		t, err := time.ParseInLocation(icalDate, v, time.UTC)
		if err != nil {
			return internal.EventTime{}, err
		}
		return internal.EventTime{Time: t, AllDay: true}, nil
	}

	if strings.HasSuffix(v, "Z") {
		t, err := time.ParseInLocation(icalUTC, v, time.UTC)
		if err != nil {
			return internal.EventTime{}, err
		}
		return internal.EventTime{Time: t, TimeZone: "UTC"}, nil
	}

	loc, label := time.UTC, "UTC"
	if tzid := param(p, ical.ParameterTzid); tzid != "" {
		l, err := time.LoadLocation(tzid)
		switch {
		case err == nil:
			loc, label = l, tzid
		case n.Zones[tzid] != nil:
			wall, err := time.ParseInLocation(icalDateTime, v, time.UTC)
			if err != nil {
				return internal.EventTime{}, err
			}
			// Google only takes IANA names, the instant is sent in UTC.
			return internal.EventTime{Time: n.Zones[tzid].In(wall).UTC(), TimeZone: "UTC"}, nil
		default:
			n.log.Logf(nil, "[warning] %s: unknown timezone %q, using UTC", uid, tzid)
		}
	}
	t, err := time.ParseInLocation(icalDateTime, v, loc)
	if err != nil {
		return internal.EventTime{}, err
	}
	return internal.EventTime{Time: t, TimeZone: label}, nil
}

func isDate(p *ical.IANAProperty, v string) bool {
	if strings.EqualFold(param(p, ical.ParameterValue), "DATE") {
		return true
	}
	return !strings.Contains(v, "T")
}

func param(p *ical.IANAProperty, name ical.Parameter) string {
	vs := p.ICalParameters[string(name)]
	if len(vs) == 0 {
		return ""
	}
	return strings.Trim(strings.TrimSpace(vs[0]), `"`)
}

func textProperty(ve *ical.VEvent, prop ical.ComponentProperty) string {
	p := ve.GetProperty(prop)
	if p == nil {
		return ""
	}
	return strings.TrimSpace(ical.FromText(p.Value))
}

const mailto = "mailto:"

func attendees(ve *ical.VEvent) []string {
	var emails []string
	for _, a := range ve.Attendees() {
		v := strings.TrimSpace(a.Value)
		if len(v) >= len(mailto) && strings.EqualFold(v[:len(mailto)], mailto) {
			v = strings.TrimSpace(v[len(mailto):])
		}
		if v == "" || strings.ContainsAny(v, " \t") {
			continue
		}
		emails = append(emails, v)
	}
	return emails
}

// parseDuration reads an RFC 5545 DURATION value (e.g. "PT1H30M", "P1D").
// Events cannot end before they start, so only positive values are valid.
func parseDuration(v string) (time.Duration, error) {
	prop := goical.NewProp(goical.PropDuration)
	prop.Value = strings.ToUpper(strings.TrimSpace(v))
	d, err := prop.Duration()
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration %q is not positive", v)
	}
	return d, nil
}
