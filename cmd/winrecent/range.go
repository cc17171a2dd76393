package main

import (
	"fmt"
	"time"

	"winrecent/internal/recent"
)

const dateLayout = "2006-01-02"

// parseRange narrows def by the --from/--to dates, both inclusive and read
// in loc. all drops the lookback window before the dates apply.
func parseRange(def recent.QueryOptions, from, to string, all bool, loc *time.Location) (recent.QueryOptions, error) {
	opts := def
	if all {
		opts = recent.QueryOptions{}
	}
	if from != "" {
		t, err := time.ParseInLocation(dateLayout, from, loc)
		if err != nil {
			return opts, fmt.Errorf("invalid --from date %q: %w", from, err)
		}
		opts.From = t
	}
	if to != "" {
		t, err := time.ParseInLocation(dateLayout, to, loc)
		if err != nil {
			return opts, fmt.Errorf("invalid --to date %q: %w", to, err)
		}
		opts.To = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if !opts.From.IsZero() && !opts.To.IsZero() && opts.From.After(opts.To) {
		return opts, fmt.Errorf("--from %s is after --to %s", from, to)
	}
	return opts, nil
}
