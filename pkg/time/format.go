package time

import (
	"fmt"
	"strings"
	"time"
)

// wire layout: ISO-8601 local date-time, no zone, millisecond precision
// instants are rendered and read in UTC
const LocalLayout = "2006-01-02T15:04:05.000"

// accepted on input, fractional seconds are optional
var parseLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	time.RFC3339Nano,
}

func FormatLocal(t time.Time) string {
	return t.UTC().Format(LocalLayout)
}

// parses a local date-time (taken as UTC) or an RFC 3339 timestamp with offset
// result is UTC, truncated to milliseconds
func ParseLocal(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	var lastErr error
	for _, layout := range parseLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC().Truncate(time.Millisecond), nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", value, lastErr)
}
