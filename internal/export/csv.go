// Package export writes history entries as semicolon-separated CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"winrecent/internal/recent"
)

// Header is the first row of every export.
var Header = []string{"opened_at", "name", "source", "exists"}

// DefaultFileName returns the suggested export file name for now.
func DefaultFileName(now time.Time) string {
	return fmt.Sprintf("history_%s.csv", now.Format("20060102_150405"))
}

// WriteCSV writes the header followed by one row per entry, in the order
// given. Opened-at values use the stored text form.
func WriteCSV(w io.Writer, entries []*recent.HistoryEntry) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, e := range entries {
		exists := "0"
		if e.ExistsNow {
			exists = "1"
		}
		row := []string{recent.FormatOpenedAt(e.OpenedAt), e.DisplayName, e.Source, exists}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row for %q: %w", e.DisplayName, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

// WriteFile exports entries to path. The file is written to a temp file in
// the same directory and renamed into place.
func WriteFile(path string, entries []*recent.HistoryEntry) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".export-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpPath)
		}
	}()

	if err := WriteCSV(tmp, entries); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming export into place: %w", err)
	}
	return nil
}
