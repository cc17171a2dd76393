package fs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"winrecent/internal/recent"
)

// OSFilesystemManager is the real filesystem implementation of
// recent.FilesystemManager.
type OSFilesystemManager struct {
	ignore *IgnoreMatcher
}

// NewOSFilesystemManager creates a filesystem manager that skips artifacts
// matching any of the ignore patterns.
func NewOSFilesystemManager(ignorePatterns []string) *OSFilesystemManager {
	return &OSFilesystemManager{ignore: NewIgnoreMatcher(ignorePatterns)}
}

// ListArtifacts returns the regular files in dir with extension ext,
// compared case-insensitively. Subdirectories are not descended into.
func (m *OSFilesystemManager) ListArtifacts(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, recent.ErrSourceMissing
		}
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return paths, nil
}

// Stat returns fresh file info for a path.
func (m *OSFilesystemManager) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// Exists reports whether path exists.
func (m *OSFilesystemManager) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsIgnored reports whether the artifact matches an ignore pattern.
func (m *OSFilesystemManager) IsIgnored(path string) bool {
	return m.ignore.Match(filepath.Base(path))
}

// Compile-time check that OSFilesystemManager implements recent.FilesystemManager
var _ recent.FilesystemManager = (*OSFilesystemManager)(nil)
var _ recent.TargetProber = (*OSFilesystemManager)(nil)
