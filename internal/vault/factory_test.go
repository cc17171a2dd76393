package vault

import (
	"path/filepath"
	"testing"

	"winrecent/internal/config"
)

func TestNewVaultFromConfig(t *testing.T) {
	cfg := config.NewConfig("/recent", "/data", "/prog")

	tests := []struct {
		name    string
		kind    string
		cfg     *config.Config
		wantDir string
		wantErr bool
	}{
		{name: "filesystem", kind: "filesystem", cfg: cfg, wantDir: filepath.Join("/prog", "lnk_backup")},
		{name: "default kind", kind: "", cfg: cfg, wantDir: filepath.Join("/prog", "lnk_backup")},
		{name: "memory", kind: "memory", cfg: cfg, wantDir: ""},
		{name: "missing program dir", kind: "filesystem", cfg: &config.Config{RecentDir: "/recent"}, wantErr: true},
		{name: "unknown", kind: "s3", cfg: cfg, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewVaultFromConfig(tt.kind, tt.cfg, ".lnk")
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewVaultFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if v.Dir() != tt.wantDir {
				t.Errorf("Dir() = %q, want %q", v.Dir(), tt.wantDir)
			}
		})
	}
}
