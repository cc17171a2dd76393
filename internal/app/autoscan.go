package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"winrecent/internal/recent"
)

// AutoscanLimit bounds the number of inserted entries listed per run.
const AutoscanLimit = 50

const autoscanTimeLayout = "2006-01-02 15:04:05"

// AutoscanLog appends human-readable run summaries to a text file next to
// the program. When the primary file cannot be written, a one-line note goes
// to the fallback file instead; a failure there is dropped.
type AutoscanLog struct {
	Path         string
	FallbackPath string
	Clock        recent.Clock
}

// FormatAutoscanSummary renders the block appended for one run.
func FormatAutoscanSummary(ts time.Time, result *recent.ScanResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n[%s] Autoscan: %d items scanned, %d insertion(s).\n",
		ts.Format(autoscanTimeLayout), result.Observed, len(result.Inserted))

	latest := recent.NewestFirst(result.Inserted, AutoscanLimit)
	if len(latest) == 0 {
		b.WriteString("No new entries inserted.\n")
		return b.String()
	}

	b.WriteString("Latest insertions (name | opened at):\n")
	for _, e := range latest {
		fmt.Fprintf(&b, " - %s | %s\n", e.DisplayName, formatLogTime(e.OpenedAt))
	}
	return b.String()
}

func formatLogTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(time.Local).Format(autoscanTimeLayout)
}

// Append writes the summary for result. The returned error describes the
// primary write failure, for the operational log only.
func (l *AutoscanLog) Append(result *recent.ScanResult) error {
	clock := l.Clock
	if clock == nil {
		clock = recent.RealClock{}
	}
	now := clock.Now().In(time.Local)

	err := appendText(l.Path, FormatAutoscanSummary(now, result))
	if err == nil {
		return nil
	}

	if l.FallbackPath != "" {
		note := fmt.Sprintf("[%s] failed to write %s\n", now.Format(autoscanTimeLayout), l.Path)
		_ = appendText(l.FallbackPath, note)
	}
	return fmt.Errorf("writing autoscan log: %w", err)
}

func appendText(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
