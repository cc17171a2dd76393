// Package tui is the interactive session: a searchable, newest-first table
// of the history with actions bound to single keys.
package tui

import (
	"context"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"winrecent/internal/backup"
	"winrecent/internal/recent"
)

// Backend is what the session needs from the application layer.
type Backend interface {
	RunScanCycle(mode string) (*recent.ScanResult, error)
	DefaultRange() recent.QueryOptions
	Entries(term string, opts recent.QueryOptions) ([]*recent.HistoryEntry, error)
	Open(name string, reveal bool) error
	Export(path string, entries []*recent.HistoryEntry) (string, error)
	Backup(ctx context.Context, destDir string) (*backup.Result, error)
	Schedule(ctx context.Context) (bool, string)
}

// Start runs the session until the user quits.
func Start(backend Backend) error {
	program := tea.NewProgram(NewModel(backend), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

type Model struct {
	backend Backend
	table   table.Model
	search  textinput.Model
	editing bool
	term    string
	// allDates drops the lookback window from every load.
	allDates bool

	entries []*recent.HistoryEntry

	status    string
	statusErr bool
	busy      bool

	windowWidth  int
	windowHeight int

	copyName func(string) error
}

func NewModel(backend Backend) Model {
	search := textinput.New()
	search.Prompt = "Search: "
	search.Placeholder = "text, glob (* ?) or /regex/"
	search.CharLimit = 256
	search.Width = 50

	t := table.New(
		table.WithColumns(columnsFor(defaultWidth)),
		table.WithFocused(true),
		table.WithHeight(defaultTableHeight),
	)
	t.SetStyles(tableStyles())

	return Model{
		backend:  backend,
		table:    t,
		search:   search,
		status:   "Scanning...",
		busy:     true,
		copyName: clipboard.WriteAll,
	}
}

// Init scans the live folder before the first read of the store.
func (m Model) Init() tea.Cmd {
	return scanCmd(m.backend, m.term, m.allDates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = typed.Width
		m.windowHeight = typed.Height
		m.resize()
		return m, nil

	case entriesLoadedMsg:
		m.busy = false
		if typed.err != nil {
			m.setError(typed.err.Error())
			return m, nil
		}
		m.setEntries(typed.entries)
		m.setStatus(loadedStatus(typed))
		return m, nil

	case actionDoneMsg:
		m.busy = false
		if typed.err != nil {
			m.setError(typed.err.Error())
		} else {
			m.setStatus(typed.status)
		}
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateSearch(typed)
		}
		return m.updateKeys(typed)
	}

	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		m.editing = false
		m.search.Blur()
		m.term = m.search.Value()
		m.table.Focus()
		cmd := m.startLoad()
		return m, cmd
	case "esc":
		m.editing = false
		m.search.Blur()
		m.search.SetValue(m.term)
		m.table.Focus()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "/":
		m.editing = true
		m.table.Blur()
		cmd := m.search.Focus()
		return m, cmd
	case "c":
		m.copySelected()
		return m, nil
	case "d":
		if m.busy {
			return m, nil
		}
		m.allDates = !m.allDates
		cmd := m.startLoad()
		return m, cmd
	}

	if cmd, ok := m.actionFor(msg.String()); ok {
		if m.busy {
			return m, nil
		}
		if cmd == nil {
			return m, nil
		}
		m.busy = true
		m.setStatus("Working...")
		return m, cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// actionFor maps a key to its background command. ok is false for keys that
// are not actions. A nil command means the action has nothing to act on.
func (m *Model) actionFor(key string) (tea.Cmd, bool) {
	switch key {
	case "enter", "o", "r":
		entry := m.Selected()
		if entry == nil {
			m.setError("No entry selected.")
			return nil, true
		}
		return openCmd(m.backend, entry.DisplayName, key == "r"), true
	case "s":
		return scanCmd(m.backend, m.term, m.allDates), true
	case "e":
		return exportCmd(m.backend, m.entries), true
	case "b":
		return backupCmd(m.backend), true
	case "a":
		return scheduleCmd(m.backend), true
	}
	return nil, false
}

func (m *Model) startLoad() tea.Cmd {
	m.busy = true
	m.setStatus("Searching...")
	return loadCmd(m.backend, m.term, m.allDates)
}

func (m *Model) copySelected() {
	entry := m.Selected()
	if entry == nil {
		m.setError("No entry selected.")
		return
	}
	if err := m.copyName(entry.DisplayName); err != nil {
		m.setStatus("Name: " + entry.DisplayName)
		return
	}
	m.setStatus("Copied: " + entry.DisplayName)
}

// Selected returns the entry under the cursor, or nil when the view is empty.
func (m Model) Selected() *recent.HistoryEntry {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.entries) {
		return nil
	}
	return m.entries[i]
}

// Entries returns the entries currently shown.
func (m Model) Entries() []*recent.HistoryEntry { return m.entries }

// AllDates reports whether the lookback window is ignored.
func (m Model) AllDates() bool { return m.allDates }

// Status returns the status line text and whether it reports an error.
func (m Model) Status() (string, bool) { return m.status, m.statusErr }

func (m *Model) setEntries(entries []*recent.HistoryEntry) {
	m.entries = entries
	m.table.SetRows(rowsFor(entries))
	if c := m.table.Cursor(); c >= len(entries) || c < 0 {
		m.table.SetCursor(0)
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusErr = true
}

func (m *Model) resize() {
	width := m.windowWidth
	if width <= 0 {
		width = defaultWidth
	}
	m.table.SetColumns(columnsFor(width))
	m.search.Width = max(width-len(m.search.Prompt)-2, 10)

	// title, search, status, help and borders
	height := m.windowHeight - 8
	if height < 3 {
		height = 3
	}
	m.table.SetHeight(height)
}
