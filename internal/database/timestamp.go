package database

import (
	"fmt"
	"time"
)

// runTimeLayout has a fixed-width fraction so stored values sort as text.
const runTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatRunTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(runTimeLayout)
}

func parseRunTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing run time %q: %w", s, err)
	}
	return t, nil
}
