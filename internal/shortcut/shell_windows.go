//go:build windows

package shortcut

import (
	"fmt"
	"os/exec"

	"golang.org/x/sys/windows"

	"winrecent/internal/recent"
)

// Shell opens artifacts through the Windows shell.
type Shell struct{}

// NewShell creates a Shell.
func NewShell() *Shell {
	return &Shell{}
}

// Open asks the shell to "open" the shortcut, which follows it to its target.
func (s *Shell) Open(artifactPath string) error {
	verb, err := windows.UTF16PtrFromString("open")
	if err != nil {
		return err
	}
	file, err := windows.UTF16PtrFromString(artifactPath)
	if err != nil {
		return err
	}
	if err := windows.ShellExecute(0, verb, file, nil, nil, windows.SW_SHOWNORMAL); err != nil {
		return fmt.Errorf("shell execute: %w", err)
	}
	return nil
}

// Reveal opens Explorer with the shortcut selected.
func (s *Shell) Reveal(artifactPath string) error {
	cmd := exec.Command("explorer", "/select,", artifactPath)
	// explorer exits 1 even on success.
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting explorer: %w", err)
	}
	return cmd.Process.Release()
}

// RecentFolder returns the user's Recent folder from the known-folder API.
func RecentFolder() (string, error) {
	return windows.KnownFolderPath(windows.FOLDERID_Recent, windows.KF_FLAG_DEFAULT)
}

// Compile-time check that Shell implements recent.Shell
var _ recent.Shell = (*Shell)(nil)
