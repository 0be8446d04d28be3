package ics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// feed builds a calendar body out of VEVENT blocks written one property
// per line.
func feed(events ...string) []byte {
	lines := []string{"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//icssync//test//EN"}
	for _, ev := range events {
		lines = append(lines, "BEGIN:VEVENT")
		lines = append(lines, strings.Split(strings.TrimSpace(ev), "\n")...)
		lines = append(lines, "END:VEVENT")
	}
	lines = append(lines, "END:VCALENDAR", "")
	return []byte(strings.Join(lines, "\r\n"))
}

func mustParse(t *testing.T, body []byte) *Document {
	t.Helper()
	doc, err := Parse(body)
	require.NoError(t, err)
	return doc
}
