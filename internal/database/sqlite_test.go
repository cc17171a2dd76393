package database

import (
	"path/filepath"
	"testing"
	"time"

	"winrecent/internal/recent"
)

type fakeProber map[string]bool

func (p fakeProber) Exists(path string) bool { return p[path] }

// newTestStore creates a new in-memory store with schema applied.
func newTestStore(t *testing.T, prober recent.TargetProber) *SQLiteStore {
	t.Helper()

	s, err := NewSQLiteStore(":memory:", prober)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func at(day, hour int) time.Time {
	return time.Date(2024, 3, day, hour, 0, 0, 0, time.Local)
}

func TestSQLiteStore_UpsertIdentity(t *testing.T) {
	s := newTestStore(t, nil)

	e1, outcome, err := s.Upsert("", "ReportQ1", recent.SourceRecentLnk, at(5, 14))
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if outcome != recent.UpsertInserted {
		t.Errorf("first Upsert() outcome = %v, want inserted", outcome)
	}

	e2, outcome, err := s.Upsert("", "ReportQ1 renamed", recent.SourceRecentLnk, at(5, 14))
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if outcome != recent.UpsertUpdated {
		t.Errorf("second Upsert() outcome = %v, want updated", outcome)
	}
	if e2.ID != e1.ID {
		t.Errorf("second Upsert() id = %d, want %d", e2.ID, e1.ID)
	}

	_, outcome, err = s.Upsert("", "ReportQ1", recent.SourceRecentLnk, at(6, 9))
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if outcome != recent.UpsertInserted {
		t.Errorf("new opened_at outcome = %v, want inserted", outcome)
	}

	_, outcome, err = s.Upsert(`C:\Docs\q1.docx`, "ReportQ1", recent.SourceRecentLnk, at(5, 14))
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if outcome != recent.UpsertInserted {
		t.Errorf("new target outcome = %v, want inserted", outcome)
	}

	n, err := s.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("Count() = %d, want 3", n)
	}

	entries, err := s.Query(recent.QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.ID == e1.ID && e.DisplayName != "ReportQ1 renamed" {
			t.Errorf("updated row display name = %q", e.DisplayName)
		}
	}
}

func TestSQLiteStore_ExistsNowRecomputed(t *testing.T) {
	target := `C:\Docs\plan.txt`
	prober := fakeProber{target: true}
	s := newTestStore(t, prober)

	e, _, err := s.Upsert(target, "plan", recent.SourceRecentLnk, at(1, 8))
	if err != nil {
		t.Fatal(err)
	}
	if !e.ExistsNow {
		t.Error("ExistsNow = false for existing target")
	}

	prober[target] = false
	e, outcome, err := s.Upsert(target, "plan", recent.SourceRecentLnk, at(1, 8))
	if err != nil {
		t.Fatal(err)
	}
	if outcome != recent.UpsertUpdated || e.ExistsNow {
		t.Errorf("after target removal: outcome = %v, ExistsNow = %v", outcome, e.ExistsNow)
	}

	entries, err := s.Query(recent.QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].ExistsNow {
		t.Errorf("stored ExistsNow not updated: %+v", entries[0])
	}
}

func TestSQLiteStore_EmptyTargetNeverExists(t *testing.T) {
	s := newTestStore(t, fakeProber{"": true})

	e, _, err := s.Upsert("", "x", recent.SourceRecentLnk, at(1, 1))
	if err != nil {
		t.Fatal(err)
	}
	if e.ExistsNow {
		t.Error("ExistsNow = true for empty target")
	}
}

func TestSQLiteStore_QueryOrderingAndRange(t *testing.T) {
	s := newTestStore(t, nil)

	for _, e := range []struct {
		name string
		at   time.Time
	}{
		{"middle", at(10, 12)},
		{"oldest", at(1, 12)},
		{"newest", at(20, 12)},
		{"unknown", recent.MinOpenedAt},
	} {
		if _, _, err := s.Upsert("", e.name, recent.SourceRecentLnk, e.at); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name string
		opts recent.QueryOptions
		want []string
	}{
		{name: "all newest first", opts: recent.QueryOptions{}, want: []string{"newest", "middle", "oldest", "unknown"}},
		{name: "from", opts: recent.QueryOptions{From: at(5, 0)}, want: []string{"newest", "middle"}},
		{name: "to", opts: recent.QueryOptions{To: at(15, 0)}, want: []string{"middle", "oldest", "unknown"}},
		{name: "range", opts: recent.QueryOptions{From: at(5, 0), To: at(15, 0)}, want: []string{"middle"}},
		{name: "limit", opts: recent.QueryOptions{Limit: 2}, want: []string{"newest", "middle"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := s.Query(tt.opts)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if len(entries) != len(tt.want) {
				t.Fatalf("Query() returned %d entries, want %d", len(entries), len(tt.want))
			}
			for i, name := range tt.want {
				if entries[i].DisplayName != name {
					t.Errorf("entries[%d] = %q, want %q", i, entries[i].DisplayName, name)
				}
			}
		})
	}
}

func TestSQLiteStore_LegacyRowsKeepIdentity(t *testing.T) {
	s := newTestStore(t, nil)

	_, err := s.db.Exec(
		"INSERT INTO items (target_path, display_name, source, opened_at, exists_now) VALUES ('', 'Old', 'Recent(.lnk)', '2023-05-01T10:00:00.500000', 0)",
	)
	if err != nil {
		t.Fatal(err)
	}

	openedAt := time.Date(2023, 5, 1, 10, 0, 0, 500000000, time.Local)
	_, outcome, err := s.Upsert("", "Old", recent.SourceRecentLnk, openedAt)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != recent.UpsertUpdated {
		t.Errorf("Upsert() over legacy row outcome = %v, want updated", outcome)
	}
}

func TestSQLiteStore_LegacyRowsKeepIdentity_roundedMicroseconds(t *testing.T) {
	s := newTestStore(t, nil)

	// Earlier releases rounded the file mtime to the nearest microsecond.
	_, err := s.db.Exec(
		"INSERT INTO items (target_path, display_name, source, opened_at, exists_now) VALUES ('', 'Report', 'Recent(.lnk)', '2024-03-05T14:30:09.123457', 0)",
	)
	if err != nil {
		t.Fatal(err)
	}

	openedAt := time.Date(2024, 3, 5, 14, 30, 9, 123456789, time.Local)
	_, outcome, err := s.Upsert("", "Report", recent.SourceRecentLnk, openedAt)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != recent.UpsertUpdated {
		t.Errorf("Upsert() outcome = %v, want updated", outcome)
	}
	n, err := s.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func TestSQLiteStore_ScanRuns(t *testing.T) {
	s := newTestStore(t, nil)

	start := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-1", "run-2"} {
		run := &recent.ScanRun{ID: id, Mode: recent.ModeManual, StartedAt: start.Add(time.Duration(i) * time.Hour), Status: "running"}
		if err := s.CreateScanRun(run); err != nil {
			t.Fatalf("CreateScanRun() error = %v", err)
		}
		run.FinishedAt = run.StartedAt.Add(time.Second)
		run.Observed, run.Inserted, run.Failures = 10, i, 1
		run.Status = "success"
		if err := s.FinishScanRun(run); err != nil {
			t.Fatalf("FinishScanRun() error = %v", err)
		}
	}

	runs, err := s.ListScanRuns(0)
	if err != nil {
		t.Fatalf("ListScanRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("ListScanRuns() returned %d runs, want 2", len(runs))
	}
	if runs[0].ID != "run-2" {
		t.Errorf("runs[0].ID = %q, want run-2 (newest first)", runs[0].ID)
	}
	if runs[0].Observed != 10 || runs[0].Inserted != 1 || runs[0].Status != "success" {
		t.Errorf("runs[0] = %+v", runs[0])
	}
	if !runs[1].FinishedAt.Equal(start.Add(time.Second)) {
		t.Errorf("runs[1].FinishedAt = %v", runs[1].FinishedAt)
	}

	limited, err := s.ListScanRuns(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("ListScanRuns(1) returned %d runs", len(limited))
	}
}

func TestSQLiteStore_BackupTo(t *testing.T) {
	s := newTestStore(t, nil)
	if _, _, err := s.Upsert("", "kept", recent.SourceRecentLnk, at(2, 2)); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(t.TempDir(), "backup.db")
	if err := s.BackupTo(dest); err != nil {
		t.Fatalf("BackupTo() error = %v", err)
	}

	restored, err := NewSQLiteStore(dest, nil)
	if err != nil {
		t.Fatalf("opening backup: %v", err)
	}
	defer restored.Close()

	n, err := restored.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("backup Count() = %d, want 1", n)
	}
	if err := restored.CheckMigrations(); err != nil {
		t.Errorf("backup schema not current: %v", err)
	}
}

func TestSQLiteStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := NewSQLiteStore(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.Upsert("", "a", recent.SourceRecentLnk, at(3, 3)); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = NewSQLiteStore(path, nil)
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	defer s.Close()

	_, outcome, err := s.Upsert("", "a", recent.SourceRecentLnk, at(3, 3))
	if err != nil {
		t.Fatal(err)
	}
	if outcome != recent.UpsertUpdated {
		t.Errorf("Upsert() after reopen outcome = %v, want updated", outcome)
	}
}
