package testutil

import (
	"fmt"
	"path/filepath"
	"sync"

	"winrecent/internal/recent"
)

// MockVault records which artifacts were stored and can be told to fail
// for specific file names. Restore returns the live path for names that
// were stored.
type MockVault struct {
	mu      sync.Mutex
	liveDir string
	stored  map[string]int // file name -> store count
	failOn  map[string]error
}

// NewMockVault creates a MockVault that restores into liveDir.
func NewMockVault(liveDir string) *MockVault {
	return &MockVault{
		liveDir: liveDir,
		stored:  make(map[string]int),
		failOn:  make(map[string]error),
	}
}

// FailOn makes Store return err for the given file name.
func (v *MockVault) FailOn(fileName string, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.failOn[fileName] = err
}

// StoreCount returns how often the file name was stored.
func (v *MockVault) StoreCount(fileName string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stored[fileName]
}

func (v *MockVault) Store(artifactPath string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	name := filepath.Base(artifactPath)
	if err := v.failOn[name]; err != nil {
		return fmt.Errorf("storing %s: %w", name, err)
	}
	v.stored[name]++
	return nil
}

func (v *MockVault) Restore(name string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fileName := name + ".lnk"
	if v.stored[fileName] == 0 {
		return "", recent.ErrNotInVault
	}
	return filepath.Join(v.liveDir, fileName), nil
}

func (v *MockVault) Dir() string { return "" }

// Compile-time check
var _ recent.ArtifactVault = (*MockVault)(nil)
