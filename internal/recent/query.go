package recent

import (
	"fmt"
	"sort"
)

// Search returns stored entries within opts that match term, newest first.
// The term is applied in memory over the full query result.
func (s *Service) Search(term string, opts QueryOptions) ([]*HistoryEntry, error) {
	limit := opts.Limit
	opts.Limit = 0

	entries, err := s.store.Query(opts)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}

	matched := Filter(entries, NewSearchPredicate(term))
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// History returns the most recent scan runs, newest first.
func (s *Service) History(limit int) ([]*ScanRun, error) {
	runs, err := s.store.ListScanRuns(limit)
	if err != nil {
		return nil, fmt.Errorf("listing scan runs: %w", err)
	}
	return runs, nil
}

// NewestFirst returns at most limit entries sorted by OpenedAt descending.
// The input slice is not modified. limit <= 0 means no limit.
func NewestFirst(entries []*HistoryEntry, limit int) []*HistoryEntry {
	sorted := make([]*HistoryEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OpenedAt.After(sorted[j].OpenedAt)
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
