package vault

import (
	"fmt"

	"winrecent/internal/config"
	"winrecent/internal/recent"
)

// NewVaultFromConfig creates the artifact vault for cfg. kind is
// "filesystem" for the program-directory vault or "memory" for tests.
func NewVaultFromConfig(kind string, cfg *config.Config, ext string) (recent.ArtifactVault, error) {
	switch kind {
	case "filesystem", "":
		if cfg.ProgramDir == "" {
			return nil, fmt.Errorf("filesystem vault requires program_dir to be set")
		}
		return NewFileSystemVault(cfg.VaultDir(), cfg.RecentDir, ext), nil
	case "memory":
		return NewMemoryVault(cfg.RecentDir, ext), nil
	default:
		return nil, fmt.Errorf("unknown vault type: %s", kind)
	}
}
