package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestWatcher_Relevant(t *testing.T) {
	w := &Watcher{ext: ".lnk"}

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"create shortcut", fsnotify.Event{Name: "/r/a.txt.lnk", Op: fsnotify.Create}, true},
		{"write shortcut", fsnotify.Event{Name: "/r/a.txt.lnk", Op: fsnotify.Write}, true},
		{"rename shortcut", fsnotify.Event{Name: "/r/a.txt.lnk", Op: fsnotify.Rename}, true},
		{"upper-case extension", fsnotify.Event{Name: "/r/A.LNK", Op: fsnotify.Create}, true},
		{"remove shortcut", fsnotify.Event{Name: "/r/a.txt.lnk", Op: fsnotify.Remove}, false},
		{"chmod shortcut", fsnotify.Event{Name: "/r/a.txt.lnk", Op: fsnotify.Chmod}, false},
		{"other file", fsnotify.Event{Name: "/r/desktop.ini", Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.Relevant(tt.event); got != tt.want {
				t.Errorf("Relevant(%v) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}

func TestNew_requiresDir(t *testing.T) {
	if _, err := New(Config{}, func() error { return nil }, nil); err == nil {
		t.Fatal("New() error = nil, want an error without a directory")
	}
}

func startWatcher(t *testing.T, dir string, scans *atomic.Int32) (context.CancelFunc, <-chan error) {
	t.Helper()
	w, err := New(Config{Dir: dir, Ext: ".lnk", Debounce: 100 * time.Millisecond}, func() error {
		scans.Add(1)
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(cancel)

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	return cancel, done
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWatcher_Run_coalescesBursts(t *testing.T) {
	dir := t.TempDir()
	var scans atomic.Int32
	cancel, done := startWatcher(t, dir, &scans)

	for _, name := range []string{"a.lnk", "b.lnk", "c.lnk"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	waitFor(t, func() bool { return scans.Load() >= 1 })
	time.Sleep(300 * time.Millisecond)
	if got := scans.Load(); got != 1 {
		t.Errorf("scans = %d, want 1 for one burst", got)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v, want nil after cancel", err)
	}
}

func TestWatcher_Run_ignoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	var scans atomic.Int32
	cancel, done := startWatcher(t, dir, &scans)

	if err := os.WriteFile(filepath.Join(dir, "desktop.ini"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(400 * time.Millisecond)
	if got := scans.Load(); got != 0 {
		t.Errorf("scans = %d, want 0", got)
	}

	cancel()
	<-done
}

func TestWatcher_Run_missingDir(t *testing.T) {
	w, err := New(Config{Dir: filepath.Join(t.TempDir(), "missing")}, func() error { return nil }, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Run(context.Background()); err == nil {
		t.Fatal("Run() error = nil, want an error for a missing directory")
	}
}

func TestWatcher_Close(t *testing.T) {
	w, err := New(Config{Dir: t.TempDir(), Ext: ".lnk"}, func() error { return nil }, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := w.Run(context.Background()); err == nil {
		t.Error("Run() after Close() error = nil, want an error")
	}
}
