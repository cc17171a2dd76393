package recent_test

import (
	"testing"

	"winrecent/internal/recent"
)

func TestNewSearchPredicate(t *testing.T) {
	tests := []struct {
		name   string
		term   string
		entry  string
		source string
		want   bool
	}{
		{name: "empty matches all", term: "", entry: "anything", want: true},
		{name: "blank matches all", term: "   ", entry: "anything", want: true},

		{name: "substring case-insensitive", term: "report", entry: "ReportQ1", want: true},
		{name: "substring miss", term: "budget", entry: "ReportQ1", want: false},
		{name: "substring on source", term: "recent(", entry: "x", source: "Recent(.lnk)", want: true},
		{name: "substring trims term", term: "  q1 ", entry: "ReportQ1", want: true},

		{name: "glob star", term: "rep*q1", entry: "ReportQ1", want: true},
		{name: "glob question mark", term: "Rep?rtQ1", entry: "ReportQ1", want: true},
		{name: "glob anchored", term: "port*", entry: "ReportQ1", want: false},
		{name: "glob case-insensitive", term: "REPORT*", entry: "reportq1", want: true},
		{name: "glob set", term: "Report[QX]?", entry: "ReportQ1", want: true},
		{name: "brackets without wildcard are literal", term: "Report[QX]1", entry: "ReportQ1", want: false},
		{name: "glob negated set", term: "Report[!Q]?", entry: "ReportQ1", want: false},
		{name: "glob literal dot", term: "a.b*", entry: "axb", want: false},
		{name: "glob on source", term: "Recent*", entry: "x", source: "Recent(.lnk)", want: true},

		{name: "regex", term: "/^rep.*q\\d$/", entry: "ReportQ1", want: true},
		{name: "regex miss", term: "/^q1/", entry: "ReportQ1", want: false},
		{name: "regex unanchored", term: "/port/", entry: "ReportQ1", want: true},
		{name: "bad regex falls back to substring", term: "/[a/", entry: "x/[a/y", want: true},
		{name: "bad regex substring miss", term: "/[a/", entry: "ReportQ1", want: false},

		{name: "lone slash is substring", term: "/", entry: "a/b", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := recent.NewSearchPredicate(tt.term)
			if got := p(tt.entry, tt.source); got != tt.want {
				t.Errorf("NewSearchPredicate(%q)(%q, %q) = %v, want %v", tt.term, tt.entry, tt.source, got, tt.want)
			}
		})
	}
}

func TestFilter_PreservesOrder(t *testing.T) {
	entries := []*recent.HistoryEntry{
		{DisplayName: "ReportQ2"},
		{DisplayName: "Budget"},
		{DisplayName: "ReportQ1"},
	}

	got := recent.Filter(entries, recent.NewSearchPredicate("report"))
	if len(got) != 2 || got[0].DisplayName != "ReportQ2" || got[1].DisplayName != "ReportQ1" {
		t.Errorf("Filter() = %v", got)
	}
}
