package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"winrecent/internal/recent"
)

const (
	defaultWidth       = 100
	defaultTableHeight = 20

	openedAtWidth = 19
	sourceWidth   = 14
	existsWidth   = 6
	minNameWidth  = 20
)

const helpText = "/ search  enter/o open  r reveal  s scan  d all dates  e export  b backup  a schedule  c copy name  q quit"

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	tableBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))
)

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	return s
}

// columnsFor sizes the name column to whatever width the fixed columns leave.
func columnsFor(width int) []table.Column {
	// cell padding and borders
	name := width - openedAtWidth - sourceWidth - existsWidth - 12
	if name < minNameWidth {
		name = minNameWidth
	}
	return []table.Column{
		{Title: "Opened at", Width: openedAtWidth},
		{Title: "Name", Width: name},
		{Title: "Source", Width: sourceWidth},
		{Title: "Exists", Width: existsWidth},
	}
}

func rowsFor(entries []*recent.HistoryEntry) []table.Row {
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		exists := "no"
		if e.ExistsNow {
			exists = "yes"
		}
		rows = append(rows, table.Row{formatOpenedAt(e.OpenedAt), e.DisplayName, e.Source, exists})
	}
	return rows
}

func formatOpenedAt(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(time.Local).Format("2006-01-02 15:04:05")
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("WinRecent"))
	b.WriteString("\n")
	b.WriteString(m.search.View())
	b.WriteString("\n")
	b.WriteString(tableBorder.Render(m.table.View()))
	b.WriteString("\n")

	status := strings.ReplaceAll(m.status, "\n", " ")
	if m.statusErr {
		b.WriteString(errorStyle.Render(status))
	} else {
		b.WriteString(statusStyle.Render(status))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(helpText))
	return b.String()
}
