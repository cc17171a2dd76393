package recent

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ServiceConfig holds the settings the service needs from the application
// config. It is built once at startup and never re-read.
type ServiceConfig struct {
	RecentDir      string // live OS folder
	ArtifactExt    string // e.g. ".lnk"
	SourceTag      string
	ResolveTargets bool
}

// Service coordinates the live folder, the vault and the history store.
type Service struct {
	cfg      ServiceConfig
	store    Store
	vault    ArtifactVault
	resolver Resolver
	fsmgr    FilesystemManager
	shell    Shell
	logger   Logger
	clock    Clock
	idgen    IDGenerator
}

// NewService creates a Service with the provided dependencies.
// A nil resolver or a config with ResolveTargets unset disables target resolution.
func NewService(cfg ServiceConfig, store Store, vault ArtifactVault, resolver Resolver, fsmgr FilesystemManager, shell Shell, logger Logger, clock Clock, idgen IDGenerator) *Service {
	if cfg.ArtifactExt == "" {
		cfg.ArtifactExt = ".lnk"
	}
	if cfg.SourceTag == "" {
		cfg.SourceTag = SourceRecentLnk
	}
	if resolver == nil || !cfg.ResolveTargets {
		resolver = NopResolver{}
	}
	if logger == nil {
		logger = NewNopLogger()
	}
	if clock == nil {
		clock = RealClock{}
	}
	if idgen == nil {
		idgen = UUIDGenerator{}
	}
	return &Service{
		cfg:      cfg,
		store:    store,
		vault:    vault,
		resolver: resolver,
		fsmgr:    fsmgr,
		shell:    shell,
		logger:   logger,
		clock:    clock,
		idgen:    idgen,
	}
}

// DisplayName returns the artifact's base name without its extension.
func DisplayName(artifactPath string) string {
	base := filepath.Base(artifactPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LivePath returns the path the named artifact has in the live folder.
func (s *Service) LivePath(name string) string {
	return filepath.Join(s.cfg.RecentDir, name+s.cfg.ArtifactExt)
}

// SourceExists reports whether the live folder exists.
func (s *Service) SourceExists() bool {
	return s.fsmgr.Exists(s.cfg.RecentDir)
}

// EnsureArtifact returns the live path of the named artifact, restoring it
// from the vault when the OS has removed it.
func (s *Service) EnsureArtifact(name string) (string, error) {
	live := s.LivePath(name)
	if s.fsmgr.Exists(live) {
		return live, nil
	}

	restored, err := s.vault.Restore(name)
	if err != nil {
		return "", fmt.Errorf("restoring %q: %w", name, err)
	}
	s.logger.Info("artifact restored from vault", "name", name, "path", restored)
	return restored, nil
}

// Open opens the named entry's target, or reveals its shortcut in the file
// manager when reveal is true.
func (s *Service) Open(name string, reveal bool) error {
	if s.shell == nil {
		return fmt.Errorf("no shell integration available")
	}

	path, err := s.EnsureArtifact(name)
	if err != nil {
		return err
	}

	if reveal {
		if err := s.shell.Reveal(path); err != nil {
			return fmt.Errorf("revealing %s: %w", path, err)
		}
		return nil
	}
	if err := s.shell.Open(path); err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	return nil
}
