package recent

import (
	"errors"
	"io/fs"
)

// ErrSourceMissing is returned when the live source directory does not exist.
var ErrSourceMissing = errors.New("live source directory does not exist")

// FilesystemManager abstracts access to the live source directory so the
// reconciler can be tested without touching the real Recent folder.
type FilesystemManager interface {
	// ListArtifacts returns the paths of all regular files in dir whose
	// extension matches ext (case-insensitive). Returns ErrSourceMissing
	// if dir does not exist.
	ListArtifacts(dir, ext string) ([]string, error)

	// Stat returns fresh file info for a path.
	Stat(path string) (fs.FileInfo, error)

	// Exists reports whether path exists.
	Exists(path string) bool

	// IsIgnored reports whether the artifact should be skipped by scans.
	IsIgnored(path string) bool
}
