package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"winrecent/internal/recent"
)

type entriesLoadedMsg struct {
	entries []*recent.HistoryEntry
	scan    *recent.ScanResult // nil when no scan preceded the load
	term    string
	all     bool
	err     error
}

type actionDoneMsg struct {
	status string
	err    error
}

func loadedStatus(msg entriesLoadedMsg) string {
	var s string
	if msg.scan != nil {
		s = fmt.Sprintf("Scan: %d items, %d new. ", msg.scan.Observed, len(msg.scan.Inserted))
		if msg.scan.SourceMissing {
			s = "Recent folder not found. "
		}
	}
	scope := ""
	if msg.all {
		scope = " (all dates)"
	}
	if msg.term != "" {
		return s + fmt.Sprintf("%d entries match %q%s.", len(msg.entries), msg.term, scope)
	}
	return s + fmt.Sprintf("%d entries%s.", len(msg.entries), scope)
}

// loadEntries reads the lookback window, or every row when all is set.
func loadEntries(backend Backend, term string, all bool) ([]*recent.HistoryEntry, error) {
	opts := backend.DefaultRange()
	if all {
		opts = recent.QueryOptions{}
	}
	return backend.Entries(term, opts)
}

func loadCmd(backend Backend, term string, all bool) tea.Cmd {
	return func() tea.Msg {
		entries, err := loadEntries(backend, term, all)
		return entriesLoadedMsg{entries: entries, term: term, all: all, err: err}
	}
}

func scanCmd(backend Backend, term string, all bool) tea.Cmd {
	return func() tea.Msg {
		result, err := backend.RunScanCycle(recent.ModeInteractive)
		if err != nil {
			return entriesLoadedMsg{err: fmt.Errorf("scan failed: %w", err)}
		}
		entries, err := loadEntries(backend, term, all)
		return entriesLoadedMsg{entries: entries, scan: result, term: term, all: all, err: err}
	}
}

func openCmd(backend Backend, name string, reveal bool) tea.Cmd {
	return func() tea.Msg {
		if err := backend.Open(name, reveal); err != nil {
			return actionDoneMsg{err: err}
		}
		if reveal {
			return actionDoneMsg{status: "Shown in folder: " + name}
		}
		return actionDoneMsg{status: "Opened: " + name}
	}
}

func exportCmd(backend Backend, entries []*recent.HistoryEntry) tea.Cmd {
	return func() tea.Msg {
		path, err := backend.Export("", entries)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: fmt.Sprintf("Exported %d entries to %s", len(entries), path)}
	}
}

func backupCmd(backend Backend) tea.Cmd {
	return func() tea.Msg {
		res, err := backend.Backup(context.Background(), "")
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: "Store backed up to " + res.Location}
	}
}

func scheduleCmd(backend Backend) tea.Cmd {
	return func() tea.Msg {
		ok, msg := backend.Schedule(context.Background())
		if !ok {
			return actionDoneMsg{err: fmt.Errorf("%s", msg)}
		}
		return actionDoneMsg{status: msg}
	}
}
