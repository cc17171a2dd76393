//go:build !windows

package shortcut

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"

	"winrecent/internal/recent"
)

// Shell opens artifacts with the desktop's default handler.
type Shell struct {
	opener string
}

// NewShell creates a Shell using xdg-open, or open on macOS.
func NewShell() *Shell {
	opener := "xdg-open"
	if runtime.GOOS == "darwin" {
		opener = "open"
	}
	return &Shell{opener: opener}
}

// Open hands the artifact to the default handler.
func (s *Shell) Open(artifactPath string) error {
	return s.start(artifactPath)
}

// Reveal opens the folder containing the artifact. Selection is not
// portable, so only the folder is shown.
func (s *Shell) Reveal(artifactPath string) error {
	if runtime.GOOS == "darwin" {
		return s.start("-R", artifactPath)
	}
	return s.start(filepath.Dir(artifactPath))
}

func (s *Shell) start(args ...string) error {
	cmd := exec.Command(s.opener, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", s.opener, err)
	}
	return cmd.Process.Release()
}

// RecentFolder has no counterpart outside Windows.
func RecentFolder() (string, error) {
	return "", errors.New("no Recent folder on " + runtime.GOOS)
}

// Compile-time check that Shell implements recent.Shell
var _ recent.Shell = (*Shell)(nil)
