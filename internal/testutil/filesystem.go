package testutil

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"winrecent/internal/recent"
)

// MockFile represents a file in the mock filesystem.
type MockFile struct {
	Content []byte
	ModTime time.Time
	StatErr error // returned by Stat when set
}

// MockFilesystemManager is an in-memory live folder for testing.
// It also acts as a recent.TargetProber.
type MockFilesystemManager struct {
	mu      sync.Mutex
	files   map[string]*MockFile
	dirs    map[string]bool
	ignored map[string]bool
}

// NewMockFilesystemManager creates a new mock filesystem.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files:   make(map[string]*MockFile),
		dirs:    make(map[string]bool),
		ignored: make(map[string]bool),
	}
}

// AddDirectory adds a directory to the mock filesystem.
func (m *MockFilesystemManager) AddDirectory(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[filepath.Clean(path)] = true
}

// AddFile adds a file, creating its parent directory.
func (m *MockFilesystemManager) AddFile(path string, modTime time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	m.dirs[filepath.Dir(path)] = true
	m.files[path] = &MockFile{Content: []byte("lnk"), ModTime: modTime}
}

// FailStat makes Stat of path return err.
func (m *MockFilesystemManager) FailStat(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[filepath.Clean(path)]; ok {
		f.StatErr = err
	}
}

// Remove deletes a file.
func (m *MockFilesystemManager) Remove(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, filepath.Clean(path))
}

// Ignore marks a file name as ignored by scans.
func (m *MockFilesystemManager) Ignore(fileName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ignored[fileName] = true
}

func (m *MockFilesystemManager) ListArtifacts(dir, ext string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dir = filepath.Clean(dir)
	if !m.dirs[dir] {
		return nil, recent.ErrSourceMissing
	}
	var paths []string
	for p := range m.files {
		if filepath.Dir(p) == dir && strings.EqualFold(filepath.Ext(p), ext) {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func (m *MockFilesystemManager) Stat(path string) (fs.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[filepath.Clean(path)]
	if !ok {
		return nil, fmt.Errorf("stat %s: %w", path, fs.ErrNotExist)
	}
	if f.StatErr != nil {
		return nil, f.StatErr
	}
	return &mockFileInfo{name: filepath.Base(path), size: int64(len(f.Content)), modTime: f.ModTime}, nil
}

func (m *MockFilesystemManager) Exists(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	_, ok := m.files[path]
	return ok || m.dirs[path]
}

func (m *MockFilesystemManager) IsIgnored(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ignored[filepath.Base(path)]
}

// mockFileInfo implements fs.FileInfo
type mockFileInfo struct {
	name    string
	size    int64
	modTime time.Time
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode  { return 0o644 }
func (m *mockFileInfo) ModTime() time.Time { return m.modTime }
func (m *mockFileInfo) IsDir() bool        { return false }
func (m *mockFileInfo) Sys() any           { return nil }

// ErrInjected is a generic failure for tests.
var ErrInjected = errors.New("injected failure")

// Compile-time checks
var (
	_ recent.FilesystemManager = (*MockFilesystemManager)(nil)
	_ recent.TargetProber      = (*MockFilesystemManager)(nil)
)
