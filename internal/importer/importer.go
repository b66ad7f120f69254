// Package importer turns pasted or uploaded text into timer entries.
// Every format parses into the same Result shape; nothing but
// normalized entries and diagnostics leaves this package.
package importer

import (
	"fmt"
	"strings"

	"github.com/timeflowhq/timeflow/internal/timekeep"
)

// Result is the outcome of one parse attempt. An error is fatal for
// the whole attempt; a warning marks a single skipped record.
type Result struct {
	Entries  []timekeep.Timer
	Errors   []string
	Warnings []string
}

// Success reports whether the attempt produced at least one entry.
func (r Result) Success() bool {
	return len(r.Entries) > 0
}

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Format recognizes and parses one input shape.
type Format interface {
	Name() string
	CanParse(text string) bool
	Parse(text string) Result
}

// Formats returns the parsers in detection order. The native document
// shape is tried first, the permissive generic array last.
func Formats() []Format {
	return []Format{timekeepJSON{}, csvFormat{}, genericJSON{}}
}

// ByName finds a format for an explicit user override.
func ByName(name string) (Format, bool) {
	for _, f := range Formats() {
		if strings.EqualFold(f.Name(), name) {
			return f, true
		}
	}
	return nil, false
}

// Detect parses text with the first format that recognizes it. When
// nothing matches, the result carries a single error naming the
// supported formats.
func Detect(text string) Result {
	for _, f := range Formats() {
		if f.CanParse(text) {
			return f.Parse(text)
		}
	}

	names := make([]string, 0, len(Formats()))
	for _, f := range Formats() {
		names = append(names, f.Name())
	}
	var res Result
	res.errorf("unrecognized input: supported formats are %s", strings.Join(names, ", "))
	return res
}

func firstNonEmptyLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			return line
		}
	}
	return ""
}
