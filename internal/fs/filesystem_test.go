package fs

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"winrecent/internal/recent"
)

func TestOSFilesystemManager_ListArtifacts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.lnk", "B.LNK", "notes.txt", "desktop.ini"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.lnk"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub.lnk", "c.lnk"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewOSFilesystemManager(nil)
	got, err := m.ListArtifacts(dir, ".lnk")
	if err != nil {
		t.Fatalf("ListArtifacts() error = %v", err)
	}
	sort.Strings(got)

	want := []string{filepath.Join(dir, "B.LNK"), filepath.Join(dir, "a.lnk")}
	sort.Strings(want)
	if len(got) != len(want) {
		t.Fatalf("ListArtifacts() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ListArtifacts()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestOSFilesystemManager_ListArtifacts_MissingDir(t *testing.T) {
	m := NewOSFilesystemManager(nil)
	_, err := m.ListArtifacts(filepath.Join(t.TempDir(), "nope"), ".lnk")
	if !errors.Is(err, recent.ErrSourceMissing) {
		t.Errorf("ListArtifacts() error = %v, want ErrSourceMissing", err)
	}
}

func TestOSFilesystemManager_ExistsAndIgnored(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.url.lnk")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewOSFilesystemManager([]string{"*.url.lnk"})
	if !m.Exists(path) {
		t.Error("Exists() = false for existing file")
	}
	if m.Exists(filepath.Join(dir, "gone.lnk")) {
		t.Error("Exists() = true for missing file")
	}
	if !m.IsIgnored(path) {
		t.Error("IsIgnored() = false for matching file")
	}
	if m.IsIgnored(filepath.Join(dir, "report.lnk")) {
		t.Error("IsIgnored() = true for non-matching file")
	}
}
