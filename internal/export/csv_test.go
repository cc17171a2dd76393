package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"winrecent/internal/recent"
)

func TestWriteCSV(t *testing.T) {
	entries := []*recent.HistoryEntry{
		{
			DisplayName: "ReportQ1",
			Source:      recent.SourceRecentLnk,
			OpenedAt:    time.Date(2024, 3, 5, 14, 30, 0, 0, time.Local),
			ExistsNow:   true,
		},
		{
			DisplayName: "a;b",
			Source:      recent.SourceRecentLnk,
			OpenedAt:    time.Date(2024, 3, 4, 8, 0, 0, 250000000, time.Local),
		},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, entries); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	want := "opened_at;name;source;exists\n" +
		"2024-03-05T14:30:00;ReportQ1;Recent(.lnk);1\n" +
		"2024-03-04T08:00:00.250000;\"a;b\";Recent(.lnk);0\n"
	if got := buf.String(); got != want {
		t.Errorf("WriteCSV() =\n%s\nwant\n%s", got, want)
	}
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if got := buf.String(); got != "opened_at;name;source;exists\n" {
		t.Errorf("WriteCSV() = %q, want header only", got)
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "history.csv")

	entries := []*recent.HistoryEntry{{DisplayName: "x", Source: "s", OpenedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)}}
	if err := WriteFile(path, entries); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if !strings.HasPrefix(string(data), "opened_at;name;source;exists\n") {
		t.Errorf("export missing header: %q", data)
	}

	leftovers, _ := filepath.Glob(filepath.Join(dir, "out", ".export-*"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestDefaultFileName(t *testing.T) {
	got := DefaultFileName(time.Date(2024, 3, 5, 14, 30, 9, 0, time.UTC))
	if got != "history_20240305_143009.csv" {
		t.Errorf("DefaultFileName() = %q", got)
	}
}
