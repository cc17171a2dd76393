package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"winrecent/internal/recent"
)

type memoryCopy struct {
	data    []byte
	modTime time.Time
}

// MemoryVault holds artifact copies in memory. Restore still writes the
// artifact into the live folder on disk, so it pairs with a temp directory
// in tests. This implementation is safe for concurrent use.
type MemoryVault struct {
	liveDir string
	ext     string
	copies  map[string]memoryCopy // file name -> copy
	mu      sync.RWMutex
}

// NewMemoryVault creates an empty in-memory vault that restores into liveDir.
func NewMemoryVault(liveDir, ext string) *MemoryVault {
	if ext == "" {
		ext = ".lnk"
	}
	return &MemoryVault{
		liveDir: liveDir,
		ext:     ext,
		copies:  make(map[string]memoryCopy),
	}
}

// Dir has no on-disk location for a memory vault.
func (m *MemoryVault) Dir() string { return "" }

// Store records a copy of the artifact under its file name.
func (m *MemoryVault) Store(artifactPath string) error {
	data, err := os.ReadFile(artifactPath)
	if err != nil {
		return fmt.Errorf("storing %s: %w", filepath.Base(artifactPath), err)
	}
	info, err := os.Stat(artifactPath)
	if err != nil {
		return fmt.Errorf("stat %s: %w", filepath.Base(artifactPath), err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.copies[filepath.Base(artifactPath)] = memoryCopy{data: data, modTime: info.ModTime()}
	return nil
}

// Restore writes the named artifact back into the live folder if it is not
// already there.
func (m *MemoryVault) Restore(name string) (string, error) {
	fileName := name + m.ext
	live := filepath.Join(m.liveDir, fileName)
	if _, err := os.Stat(live); err == nil {
		return live, nil
	}

	m.mu.RLock()
	c, ok := m.copies[fileName]
	m.mu.RUnlock()
	if !ok {
		return "", recent.ErrNotInVault
	}

	if err := os.MkdirAll(m.liveDir, 0755); err != nil {
		return "", fmt.Errorf("creating live folder: %w", err)
	}
	if err := os.WriteFile(live, c.data, 0644); err != nil {
		return "", fmt.Errorf("restoring %s: %w", fileName, err)
	}
	if err := os.Chtimes(live, c.modTime, c.modTime); err != nil {
		return "", fmt.Errorf("preserving modification time: %w", err)
	}
	return live, nil
}

// Has reports whether a copy of the named file is held.
func (m *MemoryVault) Has(fileName string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.copies[fileName]
	return ok
}

// Compile-time check that MemoryVault implements recent.ArtifactVault
var _ recent.ArtifactVault = (*MemoryVault)(nil)
