package recent_test

import (
	"testing"
	"time"

	"winrecent/internal/recent"
)

func TestService_Search(t *testing.T) {
	f := newScanFixture(t, recent.ServiceConfig{}, nil)
	f.addArtifact("ReportQ1.lnk", day(1))
	f.addArtifact("ReportQ2.lnk", day(3))
	f.addArtifact("Budget.lnk", day(2))
	if _, err := f.svc.Scan(recent.ModeManual); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		term string
		opts recent.QueryOptions
		want []string
	}{
		{name: "all newest first", want: []string{"ReportQ2", "Budget", "ReportQ1"}},
		{name: "substring", term: "report", want: []string{"ReportQ2", "ReportQ1"}},
		{name: "glob", term: "Rep?rtQ1", want: []string{"ReportQ1"}},
		{name: "regex", term: "/q\\d$/", want: []string{"ReportQ2", "ReportQ1"}},
		{name: "limit after filter", term: "report", opts: recent.QueryOptions{Limit: 1}, want: []string{"ReportQ2"}},
		{name: "date range", opts: recent.QueryOptions{From: day(2)}, want: []string{"ReportQ2", "Budget"}},
		{name: "no match", term: "nothing", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.Search(tt.term, tt.opts)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Search() returned %d entries, want %d", len(got), len(tt.want))
			}
			for i, name := range tt.want {
				if got[i].DisplayName != name {
					t.Errorf("got[%d] = %q, want %q", i, got[i].DisplayName, name)
				}
			}
		})
	}
}

func TestNewestFirst(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var entries []*recent.HistoryEntry
	for i, offset := range []int{3, 1, 4, 1, 5} {
		entries = append(entries, &recent.HistoryEntry{ID: int64(i), OpenedAt: base.Add(time.Duration(offset) * time.Hour)})
	}

	got := recent.NewestFirst(entries, 3)
	if len(got) != 3 {
		t.Fatalf("NewestFirst() returned %d entries, want 3", len(got))
	}
	wantIDs := []int64{4, 2, 0}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Errorf("got[%d].ID = %d, want %d", i, got[i].ID, id)
		}
	}
	if entries[0].ID != 0 || entries[4].ID != 4 {
		t.Error("NewestFirst() modified its input")
	}

	if all := recent.NewestFirst(entries, 0); len(all) != 5 {
		t.Errorf("NewestFirst(0) returned %d entries, want all 5", len(all))
	}
}

func TestLookback(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	opts := recent.Lookback(now, 730)
	if want := now.AddDate(0, 0, -730); !opts.From.Equal(want) {
		t.Errorf("From = %v, want %v", opts.From, want)
	}
	if !opts.To.IsZero() {
		t.Errorf("To = %v, want unbounded", opts.To)
	}

	if opts := recent.Lookback(now, 0); !opts.From.IsZero() {
		t.Errorf("Lookback(0) From = %v, want unbounded", opts.From)
	}
}
