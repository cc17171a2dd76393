package vault

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"winrecent/internal/recent"
)

// DirName is the vault directory created next to the program.
const DirName = "lnk_backup"

// FileSystemVault keeps copies of shortcut artifacts in a directory of its
// own, one file per artifact, named exactly like the live file:
//
//	<programDir>/lnk_backup/
//	  <display name>.lnk
//
// Copies are keyed by file name only. Two different shortcuts sharing a base
// name overwrite each other; the most recently observed one wins.
type FileSystemVault struct {
	dir     string
	liveDir string
	ext     string
}

// NewFileSystemVault creates a vault rooted at dir that restores into liveDir.
// The directory is created on first use, not here.
func NewFileSystemVault(dir, liveDir, ext string) *FileSystemVault {
	if ext == "" {
		ext = ".lnk"
	}
	return &FileSystemVault{dir: dir, liveDir: liveDir, ext: ext}
}

// Dir returns the vault directory.
func (v *FileSystemVault) Dir() string {
	return v.dir
}

// Store copies the artifact into the vault, replacing any earlier copy.
func (v *FileSystemVault) Store(artifactPath string) error {
	if err := os.MkdirAll(v.dir, 0755); err != nil {
		return fmt.Errorf("creating vault directory: %w", err)
	}
	dest := filepath.Join(v.dir, filepath.Base(artifactPath))
	if err := copyFile(artifactPath, dest); err != nil {
		return fmt.Errorf("storing %s: %w", filepath.Base(artifactPath), err)
	}
	return nil
}

// Restore copies the named artifact back into the live folder if the OS has
// removed it. It returns the live path, or recent.ErrNotInVault when the
// vault has no copy either.
func (v *FileSystemVault) Restore(name string) (string, error) {
	fileName := name + v.ext
	live := filepath.Join(v.liveDir, fileName)
	if _, err := os.Stat(live); err == nil {
		return live, nil
	}

	src := filepath.Join(v.dir, fileName)
	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", recent.ErrNotInVault
		}
		return "", fmt.Errorf("checking vault copy: %w", err)
	}

	if err := os.MkdirAll(v.liveDir, 0755); err != nil {
		return "", fmt.Errorf("creating live folder: %w", err)
	}
	if err := copyFile(src, live); err != nil {
		return "", fmt.Errorf("restoring %s: %w", fileName, err)
	}
	return live, nil
}

// copyFile copies src to dest through a temp file and rename, then carries
// over the source modification time. The next scan of a restored artifact
// then yields the same opened_at as before it disappeared.
func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, in)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if written != info.Size() {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", info.Size(), written)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	success = true

	if err := os.Chtimes(dest, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("preserving modification time: %w", err)
	}
	return nil
}

// Compile-time check that FileSystemVault implements recent.ArtifactVault
var _ recent.ArtifactVault = (*FileSystemVault)(nil)
