package testutil

import (
	"testing"

	"winrecent/internal/database"
	"winrecent/internal/recent"
)

// NewTestStore creates a new in-memory history store with schema applied.
// The store is automatically closed when the test completes.
func NewTestStore(t *testing.T, prober recent.TargetProber) *database.SQLiteStore {
	t.Helper()

	s, err := database.NewSQLiteStore(":memory:", prober)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})

	return s
}
