package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"winrecent/internal/backup"
	"winrecent/internal/config"
	"winrecent/internal/database"
	"winrecent/internal/encryption"
	"winrecent/internal/export"
	"winrecent/internal/fs"
	"winrecent/internal/recent"
	"winrecent/internal/scheduler"
	"winrecent/internal/shortcut"
	"winrecent/internal/vault"
	"winrecent/internal/watch"
)

// Options adjusts how NewRecentApp wires its dependencies. The zero value
// is the production setup with the operational log echoed nowhere.
type Options struct {
	// Echo receives a copy of every operational log line (usually stderr).
	Echo io.Writer
	// Level is the minimum level logged; nil logs everything.
	Level slog.Leveler
	// Silent tolerates an unwritable log directory by discarding log output.
	Silent bool

	StoreKind string // "sqlite" (default) or "memory"
	VaultKind string // "filesystem" (default) or "memory"

	Shell  recent.Shell
	Runner scheduler.Runner
	Clock  recent.Clock
	IDGen  recent.IDGenerator
}

// RecentApp is the application layer between the shells (CLI, TUI, watcher)
// and recent.Service. It constructs all dependencies from config, exposes
// the operations every shell shares, and owns the store lifecycle.
type RecentApp struct {
	cfg       *config.Config
	store     *database.SQLiteStore
	vault     recent.ArtifactVault
	fsmgr     *fs.OSFilesystemManager
	encryptor recent.Encryptor
	service   *recent.Service
	runner    scheduler.Runner
	clock     recent.Clock
	logger    recent.Logger
	runID     string
	logFile   *os.File
}

// NewRecentApp creates a fully wired RecentApp from the given config.
// The caller must call Close when done.
func NewRecentApp(cfg *config.Config, opts Options) (*RecentApp, error) {
	clock := opts.Clock
	if clock == nil {
		clock = recent.RealClock{}
	}

	runID := clock.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, runID, opts.Echo, opts.Level)
	if err != nil {
		if !opts.Silent {
			return nil, fmt.Errorf("creating logger: %w", err)
		}
		logger = discardLogger(runID)
	}
	closeLog := func() {
		if logFile != nil {
			logFile.Close()
		}
	}

	fsmgr := fs.NewOSFilesystemManager(cfg.Filesystem.Ignore)

	v, err := vault.NewVaultFromConfig(opts.VaultKind, cfg, shortcut.Ext)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("creating vault: %w", err)
	}

	store, err := database.NewStoreFromConfig(opts.StoreKind, cfg, fsmgr)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("opening history store: %w", err)
	}

	if err := store.CheckMigrations(); err != nil {
		store.Close()
		closeLog()
		return nil, fmt.Errorf("history store schema out of date: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		store.Close()
		closeLog()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	shell := opts.Shell
	if shell == nil {
		shell = shortcut.NewShell()
	}
	runner := opts.Runner
	if runner == nil {
		runner = scheduler.ExecRunner{}
	}

	adapter := &slogAdapter{l: logger}
	svc := recent.NewService(recent.ServiceConfig{
		RecentDir:      cfg.RecentDir,
		ArtifactExt:    shortcut.Ext,
		SourceTag:      cfg.SourceTag,
		ResolveTargets: cfg.ResolveTargets,
	}, store, v, shortcut.NewResolver(), fsmgr, shell, adapter, clock, opts.IDGen)

	return &RecentApp{
		cfg:       cfg,
		store:     store,
		vault:     v,
		fsmgr:     fsmgr,
		encryptor: enc,
		service:   svc,
		runner:    runner,
		clock:     clock,
		logger:    adapter,
		runID:     runID,
		logFile:   logFile,
	}, nil
}

// Config returns the config the app was built from.
func (a *RecentApp) Config() *config.Config { return a.cfg }

// RunID identifies this process run in the operational log.
func (a *RecentApp) RunID() string { return a.runID }

// SourceExists reports whether the live folder exists.
func (a *RecentApp) SourceExists() bool { return a.service.SourceExists() }

// RunScanCycle reconciles the live folder into the store. Every shell calls
// this before reading the store.
func (a *RecentApp) RunScanCycle(mode string) (*recent.ScanResult, error) {
	return a.service.Scan(mode)
}

// RunWeeklyScan performs the headless scheduled scan and appends its
// summary to the autoscan log. Failures are only logged: the scheduled run
// has nobody to report to.
func (a *RecentApp) RunWeeklyScan() *recent.ScanResult {
	result, err := a.RunScanCycle(recent.ModeWeekly)
	if err != nil {
		a.logger.Error("weekly scan failed", "error", err)
		result = &recent.ScanResult{}
	}

	l := &AutoscanLog{
		Path:         a.cfg.AutoscanLogPath(),
		FallbackPath: a.cfg.FallbackLogPath(),
		Clock:        a.clock,
	}
	if err := l.Append(result); err != nil {
		a.logger.Warn("autoscan log not written", "path", l.Path, "error", err)
	}
	return result
}

// Watch scans once, then rescans whenever the live folder changes, until
// ctx is cancelled.
func (a *RecentApp) Watch(ctx context.Context, debounce time.Duration) error {
	w, err := watch.New(watch.Config{
		Dir:      a.cfg.RecentDir,
		Ext:      shortcut.Ext,
		Debounce: debounce,
	}, func() error {
		_, err := a.RunScanCycle(recent.ModeWatch)
		return err
	}, a.logger)
	if err != nil {
		return err
	}

	if _, err := a.RunScanCycle(recent.ModeWatch); err != nil {
		w.Close()
		return err
	}
	return w.Run(ctx)
}

// DefaultRange returns the query range covering the configured lookback.
func (a *RecentApp) DefaultRange() recent.QueryOptions {
	return recent.Lookback(a.clock.Now(), a.cfg.LookbackDays)
}

// Entries returns stored entries in opts matching term, newest first.
func (a *RecentApp) Entries(term string, opts recent.QueryOptions) ([]*recent.HistoryEntry, error) {
	return a.service.Search(term, opts)
}

// Open opens the named entry's target, restoring its shortcut first if the
// OS removed it. With reveal set, the shortcut is shown in its folder.
func (a *RecentApp) Open(name string, reveal bool) error {
	return a.service.Open(name, reveal)
}

// Export writes entries as CSV. An empty path writes a timestamped file in
// the program directory. It returns the path written.
func (a *RecentApp) Export(path string, entries []*recent.HistoryEntry) (string, error) {
	if path == "" {
		path = filepath.Join(a.cfg.ProgramDir, export.DefaultFileName(a.clock.Now()))
	}
	if err := export.WriteFile(path, entries); err != nil {
		return "", fmt.Errorf("exporting to %s: %w", path, err)
	}
	a.logger.Info("history exported", "path", path, "entries", len(entries))
	return path, nil
}

// Backup snapshots the store to the configured destination. A non-empty
// destDir overrides it with a local directory.
func (a *RecentApp) Backup(ctx context.Context, destDir string) (*backup.Result, error) {
	bc := a.cfg.Backup
	if destDir != "" {
		bc.Type = "filesystem"
		bc.Dir = destDir
	}

	dest, err := backup.NewDestinationFromConfig(ctx, bc)
	if err != nil {
		return nil, fmt.Errorf("creating backup destination: %w", err)
	}

	var enc recent.Encryptor
	if bc.Encrypt {
		enc = a.encryptor
	}
	return backup.NewBackuper(a.store, dest, enc, a.clock, a.logger).Run(ctx)
}

// ScheduleTask returns the weekly task pointed at the running program.
func (a *RecentApp) ScheduleTask() (scheduler.Task, error) {
	target, err := scheduler.ExecutableTarget()
	if err != nil {
		return scheduler.Task{}, err
	}
	return scheduler.Task{
		Name:   a.cfg.Schedule.TaskName,
		Day:    a.cfg.Schedule.Day,
		Time:   a.cfg.Schedule.Time,
		Target: target,
	}, nil
}

// Schedule registers the weekly headless scan. Like scheduler.Register it
// reports failure as (false, reason).
func (a *RecentApp) Schedule(ctx context.Context) (bool, string) {
	task, err := a.ScheduleTask()
	if err != nil {
		return false, fmt.Sprintf("Task creation failed: %v", err)
	}
	ok, msg := scheduler.Register(ctx, a.runner, task)
	if ok {
		a.logger.Info("weekly task registered", "task", task.Name)
	} else {
		a.logger.Warn("weekly task not registered", "task", task.Name, "reason", msg)
	}
	return ok, msg
}

// History returns the most recent scan runs.
func (a *RecentApp) History(limit int) ([]*recent.ScanRun, error) {
	return a.service.History(limit)
}

// Count returns the number of stored entries.
func (a *RecentApp) Count() (int, error) {
	return a.store.Count()
}

// SetupKeys generates the backup encryption key pair.
func (a *RecentApp) SetupKeys(passphrase string) error {
	if err := a.encryptor.Setup(passphrase); err != nil {
		return err
	}
	a.logger.Info("encryption keys created", "public_key", a.cfg.Encryption.PublicKeyPath)
	return nil
}

// DecryptBackup decrypts an encrypted store backup into dst.
func (a *RecentApp) DecryptBackup(passphrase, src, dst string) error {
	dc, err := a.encryptor.Unlock(passphrase)
	if err != nil {
		return err
	}
	return encryption.DecryptFile(dc, src, dst)
}

// Info describes where the app keeps its data.
type Info struct {
	RecentDir   string
	StorePath   string
	VaultDir    string
	LogPath     string
	AutoscanLog string
	Entries     int
}

// About returns the app's locations and the number of stored entries.
func (a *RecentApp) About() (Info, error) {
	n, err := a.store.Count()
	if err != nil {
		return Info{}, err
	}
	return Info{
		RecentDir:   a.cfg.RecentDir,
		StorePath:   a.store.Path(),
		VaultDir:    a.vault.Dir(),
		LogPath:     filepath.Join(a.cfg.LogDir, LogFileName),
		AutoscanLog: a.cfg.AutoscanLogPath(),
		Entries:     n,
	}, nil
}

// Now returns the app clock's current time.
func (a *RecentApp) Now() time.Time { return a.clock.Now() }

// Close closes the store and the log file.
func (a *RecentApp) Close() error {
	var firstErr error
	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing history store: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
