package recent

import "time"

// Store is the durable history of observed shortcut artifacts.
// Every write commits before the call returns.
type Store interface {
	// Upsert records an observation of (targetPath, openedAt). A new row is
	// inserted if the pair is unknown, otherwise the existing row's
	// display name, source and existence flag are updated in place.
	// ExistsNow is recomputed on every call.
	Upsert(targetPath, displayName, source string, openedAt time.Time) (*HistoryEntry, UpsertOutcome, error)

	// Query returns entries ordered by OpenedAt, newest first.
	Query(opts QueryOptions) ([]*HistoryEntry, error)

	// Count returns the number of stored entries.
	Count() (int, error)

	// Scan run bookkeeping

	CreateScanRun(run *ScanRun) error
	FinishScanRun(run *ScanRun) error
	ListScanRuns(limit int) ([]*ScanRun, error)

	// BackupTo writes a consistent copy of the store to destPath.
	BackupTo(destPath string) error

	// Path returns the store's file path.
	Path() string

	Close() error
}

// TargetProber reports whether a resolved target currently exists on disk.
type TargetProber interface {
	Exists(path string) bool
}
