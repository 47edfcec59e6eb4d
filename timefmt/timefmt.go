// Package timefmt converts between the minute-precision UTC input format
// (YYYY-MM-DDTHH:MM) used by report forms and full ISO-8601 instants.
package timefmt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	isoLayout     = "2006-01-02T15:04:05.000Z"
	displayLayout = "Mon, 02 Jan 2006 15:04:05 GMT"
)

var ErrMalformed = errors.New("malformed time input")

// FormatInput renders t as YYYY-MM-DDTHH:MM using UTC calendar fields.
func FormatInput(t time.Time) string {
	u := t.UTC()
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d", u.Year(), int(u.Month()), u.Day(), u.Hour(), u.Minute())
}

// ParseInput reads YYYY-MM-DDTHH:MM as a UTC instant. Empty input yields a
// nil time and no error. Field ranges are not checked: out of range values
// are normalised by time.Date (month 13 is January of the next year).
func ParseInput(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	datePart, clockPart, ok := strings.Cut(value, "T")
	if !ok {
		return nil, fmt.Errorf("%w: %q has no T separator", ErrMalformed, value)
	}
	d, err := splitInts(datePart, "-", 3)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q: %v", ErrMalformed, datePart, err)
	}
	c, err := splitInts(clockPart, ":", 2)
	if err != nil {
		return nil, fmt.Errorf("%w: clock %q: %v", ErrMalformed, clockPart, err)
	}
	t := time.Date(d[0], time.Month(d[1]), d[2], c[0], c[1], 0, 0, time.UTC)
	return &t, nil
}

// splitInts returns the first n numeric fields of s split on sep.
// Extra fields are ignored.
func splitInts(s, sep string, n int) ([]int, error) {
	parts := strings.Split(s, sep)
	if len(parts) < n {
		return nil, fmt.Errorf("want %d fields, got %d", n, len(parts))
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ISO renders t as an ISO-8601 UTC instant with millisecond precision.
func ISO(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// Display renders t for humans, e.g. "Tue, 02 Jan 2024 15:04:05 GMT".
func Display(t time.Time) string {
	return t.UTC().Format(displayLayout)
}
