package recent

import (
	"fmt"
	"strings"
	"time"
)

// Opened-at values are stored as local wall-clock ISO 8601 text without a
// zone, with microseconds only when non-zero. Rows written by earlier
// releases use the same form, so (target_path, opened_at) identity holds
// across an upgrade.
const (
	openedAtLayout      = "2006-01-02T15:04:05"
	openedAtMicroLayout = "2006-01-02T15:04:05.000000"
	minOpenedAtText     = "0001-01-01T00:00:00"
)

// FormatOpenedAt renders t the way it is stored in items.opened_at.
// Sub-microsecond precision is rounded half to even, carrying into the
// seconds when needed. The zero time maps to the minimum sentinel.
func FormatOpenedAt(t time.Time) string {
	if t.IsZero() {
		return minOpenedAtText
	}
	t = roundMicro(t.In(time.Local))
	if t.Nanosecond() == 0 {
		return t.Format(openedAtLayout)
	}
	return t.Format(openedAtMicroLayout)
}

func roundMicro(t time.Time) time.Time {
	rem := t.Nanosecond() % 1000
	t = t.Add(-time.Duration(rem))
	if rem > 500 || (rem == 500 && (t.Nanosecond()/1000)%2 == 1) {
		t = t.Add(time.Microsecond)
	}
	return t
}

// ParseOpenedAt parses a stored opened_at value.
func ParseOpenedAt(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == minOpenedAtText {
		return time.Time{}, nil
	}
	s = strings.Replace(s, " ", "T", 1)
	// Fractional seconds after the seconds field are accepted by the layout.
	t, err := time.ParseInLocation(openedAtLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing opened_at %q: %w", s, err)
	}
	return t, nil
}
