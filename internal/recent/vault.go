package recent

import "errors"

// ErrNotInVault is returned by ArtifactVault.Restore when neither the live
// folder nor the vault holds the named artifact.
var ErrNotInVault = errors.New("artifact not found in live folder or vault")

// ArtifactVault keeps byte-for-byte copies of shortcut artifacts outside the
// OS-managed folder, so entries stay openable after the OS rotates them out.
type ArtifactVault interface {
	// Store copies the artifact into the vault under its file name,
	// overwriting any earlier copy.
	Store(artifactPath string) error

	// Restore makes sure the named artifact exists in the live folder,
	// copying it back from the vault if needed, and returns its live path.
	// Restoring an artifact that already exists is a no-op.
	Restore(name string) (string, error)

	// Dir returns the vault directory.
	Dir() string
}
