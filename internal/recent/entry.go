package recent

import "time"

// SourceRecentLnk tags entries observed in the OS "Recent" folder.
const SourceRecentLnk = "Recent(.lnk)"

// MinOpenedAt is recorded when an artifact's modification time cannot be read.
var MinOpenedAt = time.Time{}

// HistoryEntry is one persisted observation of a shortcut artifact.
//
// Identity is the pair (TargetPath, OpenedAt). DisplayName is the base name of
// the shortcut without its extension; it is also the weak join key back to the
// live artifact and its vault copy.
type HistoryEntry struct {
	ID          int64
	TargetPath  string
	DisplayName string
	Source      string
	OpenedAt    time.Time
	ExistsNow   bool
}

// UpsertOutcome reports whether an upsert created or updated a row.
type UpsertOutcome int

const (
	UpsertUpdated UpsertOutcome = iota
	UpsertInserted
)

func (o UpsertOutcome) String() string {
	if o == UpsertInserted {
		return "inserted"
	}
	return "updated"
}

// QueryOptions restricts a history query. Zero values mean unbounded.
type QueryOptions struct {
	From  time.Time
	To    time.Time
	Limit int
}

// Lookback returns QueryOptions covering the last days days up to now.
// days <= 0 yields unbounded options.
func Lookback(now time.Time, days int) QueryOptions {
	if days <= 0 {
		return QueryOptions{}
	}
	return QueryOptions{From: now.AddDate(0, 0, -days)}
}

// ScanRun records one execution of the reconciler.
type ScanRun struct {
	ID         string
	Mode       string
	StartedAt  time.Time
	FinishedAt time.Time
	Observed   int
	Inserted   int
	Failures   int
	Status     string // "running", "success", "source_missing" or "error"
}

// Scan run modes.
const (
	ModeInteractive = "interactive"
	ModeWeekly      = "weekly"
	ModeManual      = "manual"
	ModeWatch       = "watch"
)
