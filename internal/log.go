package internal

import (
	"fmt"
	"io"
	"os"
	"strings"
)

func Logf(w io.Writer, prefix string, cal *Calendar, format string, a ...any) {
	parts := []string{}
	if prefix != "" {
		parts = append(parts, prefix)
	}
	if cal != nil {
		parts = append(parts, fmt.Sprintf("Calendar %s:", cal))
	}
	parts = append(parts, fmt.Sprintf(format, a...))
	fmt.Fprintln(w, strings.Join(parts, " "))
}

// Logger writes progress lines for one calendar. Debug lines are only
// written when Verbose is set.
type Logger struct {
	Output  io.Writer
	Prefix  string
	Verbose bool
}

func NewLogger(w io.Writer, prefix string, verbose bool) *Logger {
	if w == nil {
		w = os.Stdout
	}
	return &Logger{Output: w, Prefix: prefix, Verbose: verbose}
}

func (l *Logger) Logf(cal *Calendar, format string, a ...any) {
	if l == nil {
		return
	}
	Logf(l.Output, l.Prefix, cal, format, a...)
}

func (l *Logger) Debugf(cal *Calendar, format string, a ...any) {
	if l == nil || !l.Verbose {
		return
	}
	Logf(l.Output, l.Prefix, cal, format, a...)
}

// Printf lets the logger be handed to libraries expecting a printf sink.
func (l *Logger) Printf(format string, a ...any) {
	l.Logf(nil, format, a...)
}
