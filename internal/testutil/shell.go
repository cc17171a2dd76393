package testutil

import (
	"sync"

	"winrecent/internal/recent"
)

// StubResolver resolves artifacts from a fixed map.
type StubResolver map[string]string

func (r StubResolver) Resolve(artifactPath string) string { return r[artifactPath] }

// RecordingShell records Open and Reveal calls.
type RecordingShell struct {
	mu       sync.Mutex
	Opened   []string
	Revealed []string
	Err      error
}

func (s *RecordingShell) Open(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Opened = append(s.Opened, path)
	return s.Err
}

func (s *RecordingShell) Reveal(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Revealed = append(s.Revealed, path)
	return s.Err
}

// Compile-time checks
var (
	_ recent.Resolver = StubResolver(nil)
	_ recent.Shell    = (*RecordingShell)(nil)
)
