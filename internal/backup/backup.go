package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"winrecent/internal/recent"
)

// Snapshotter writes a consistent copy of the store to a new file.
type Snapshotter interface {
	BackupTo(destPath string) error
}

// Result describes a finished backup.
type Result struct {
	Name      string
	Location  string
	Encrypted bool
	Size      int64
}

// Backuper snapshots the store and hands the snapshot to a Destination.
type Backuper struct {
	store     Snapshotter
	dest      Destination
	encryptor recent.Encryptor // nil disables encryption
	clock     recent.Clock
	logger    recent.Logger
}

// NewBackuper creates a Backuper. A nil encryptor writes plain snapshots.
func NewBackuper(store Snapshotter, dest Destination, encryptor recent.Encryptor, clock recent.Clock, logger recent.Logger) *Backuper {
	if clock == nil {
		clock = recent.RealClock{}
	}
	if logger == nil {
		logger = recent.NewNopLogger()
	}
	return &Backuper{store: store, dest: dest, encryptor: encryptor, clock: clock, logger: logger}
}

// FileName returns the backup file name for the current time.
func (b *Backuper) FileName() string {
	name := fmt.Sprintf("history_backup_%s.db", b.clock.Now().Format("20060102_150405"))
	if b.encryptor != nil {
		name += ".age"
	}
	return name
}

// Run takes a snapshot and ships it. The live store is only read.
func (b *Backuper) Run(ctx context.Context) (*Result, error) {
	if b.encryptor != nil && !b.encryptor.IsConfigured() {
		return nil, fmt.Errorf("backup encryption is enabled but no keys exist; run 'winrecent keys init'")
	}

	tmpDir, err := os.MkdirTemp("", "winrecent-backup-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	snapshot := filepath.Join(tmpDir, "snapshot.db")
	if err := b.store.BackupTo(snapshot); err != nil {
		return nil, fmt.Errorf("snapshotting store: %w", err)
	}

	payload := snapshot
	if b.encryptor != nil {
		payload = snapshot + ".age"
		if err := encryptFile(b.encryptor, snapshot, payload); err != nil {
			return nil, err
		}
	}

	f, err := os.Open(payload)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat snapshot: %w", err)
	}

	name := b.FileName()
	location, err := b.dest.Put(ctx, name, f)
	if err != nil {
		return nil, fmt.Errorf("writing backup: %w", err)
	}

	b.logger.Info("store backed up", "location", location, "size", info.Size(), "encrypted", b.encryptor != nil)
	return &Result{Name: name, Location: location, Encrypted: b.encryptor != nil, Size: info.Size()}, nil
}

func encryptFile(enc recent.Encryptor, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating encrypted snapshot: %w", err)
	}
	if err := enc.Encrypt(in, out); err != nil {
		out.Close()
		return fmt.Errorf("encrypting snapshot: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing encrypted snapshot: %w", err)
	}
	return nil
}
