// Package isotime converts between the ISO-8601-ish date strings
// telemdex's CLI accepts and the raw epoch-second float64 timestamps
// internal/store.Index deals in. None of this belongs in the core
// index: Put/Get only ever see seconds.
package isotime

import (
	"fmt"
	"time"
)

// ErrBadDate is wrapped with the offending string and returned by
// Parse when none of the accepted layouts match.
var ErrBadDate = fmt.Errorf("isotime: unrecognized date string")

// layouts are tried in order, most to least specific, matching
// Python's fromisoformat acceptance of an optional time-of-day.
var layouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Parse interprets s as a local wall-clock timestamp and returns the
// corresponding epoch seconds.
func Parse(s string) (float64, error) {
	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return float64(t.Unix()) + float64(t.Nanosecond())/1e9, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrBadDate, s)
}

// Format renders epoch seconds back into the canonical
// "2006-01-02T15:04:05" local-time layout, for CLI output.
func Format(epochSeconds float64) string {
	return time.Unix(int64(epochSeconds), 0).Local().Format("2006-01-02T15:04:05")
}
