package app

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/adrg/xdg"

	"winrecent/internal/config"
)

func TestGetDefaults(t *testing.T) {
	t.Run("uses env vars when set", func(t *testing.T) {
		t.Setenv("WINRECENT_CONFIG_PATH", "/custom/winrecent.toml")
		t.Setenv("WINRECENT_HOME", "/custom/data")
		t.Setenv("WINRECENT_RECENT_DIR", "/custom/Recent")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		want := map[string]string{
			"config_path": "/custom/winrecent.toml",
			"data_dir":    "/custom/data",
			"recent_dir":  "/custom/Recent",
			"log_dir":     filepath.Join("/custom/data", "log"),
		}
		for k, v := range want {
			if defaults[k] != v {
				t.Errorf("%s = %q, want %q", k, defaults[k], v)
			}
		}
	})

	t.Run("falls back to xdg defaults", func(t *testing.T) {
		t.Setenv("WINRECENT_CONFIG_PATH", "")
		t.Setenv("WINRECENT_HOME", "")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		wantConfig := filepath.Join(xdg.ConfigHome, "winrecent.toml")
		if defaults["config_path"] != wantConfig {
			t.Errorf("config_path = %q, want %q", defaults["config_path"], wantConfig)
		}

		wantData := filepath.Join(xdg.DataHome, AppDirName)
		if defaults["data_dir"] != wantData {
			t.Errorf("data_dir = %q, want %q", defaults["data_dir"], wantData)
		}
	})

	t.Run("program dir is the executable's directory", func(t *testing.T) {
		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		exe, err := os.Executable()
		if err != nil {
			t.Skip("executable path unavailable")
		}
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		if defaults["program_dir"] != filepath.Dir(exe) {
			t.Errorf("program_dir = %q, want %q", defaults["program_dir"], filepath.Dir(exe))
		}
	})

	t.Run("recent dir falls back to APPDATA", func(t *testing.T) {
		t.Setenv("WINRECENT_RECENT_DIR", "")
		t.Setenv("APPDATA", "/appdata")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}
		if defaults["recent_dir"] == "" {
			t.Fatal("recent_dir is empty")
		}
		// Windows answers from the known-folder API instead.
		if runtime.GOOS != "windows" {
			want := filepath.Join("/appdata", "Microsoft", "Windows", "Recent")
			if defaults["recent_dir"] != want {
				t.Errorf("recent_dir = %q, want %q", defaults["recent_dir"], want)
			}
		}
	})
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	defaults := map[string]string{
		"config_path": filepath.Join(dir, "winrecent.toml"),
		"data_dir":    filepath.Join(dir, "data"),
		"program_dir": filepath.Join(dir, "prog"),
		"recent_dir":  filepath.Join(dir, "Recent"),
		"log_dir":     filepath.Join(dir, "data", "log"),
	}

	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := LoadConfig(defaults)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.RecentDir != defaults["recent_dir"] || cfg.LookbackDays != config.DefaultLookbackDays {
			t.Errorf("cfg = %+v, want defaults", cfg)
		}
	})

	t.Run("file overrides are kept", func(t *testing.T) {
		content := "lookback_days = 30\nresolve_targets = true\n\n[schedule]\nday = \"FRI\"\n"
		if err := os.WriteFile(defaults["config_path"], []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { os.Remove(defaults["config_path"]) })

		cfg, err := LoadConfig(defaults)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.LookbackDays != 30 || !cfg.ResolveTargets {
			t.Errorf("overrides lost: %+v", cfg)
		}
		if cfg.Schedule.Day != "FRI" || cfg.Schedule.Time != config.DefaultTaskTime {
			t.Errorf("schedule = %+v, want FRI at the default time", cfg.Schedule)
		}
		if cfg.DataDir != defaults["data_dir"] {
			t.Errorf("data_dir = %q, want the default", cfg.DataDir)
		}
	})

	t.Run("invalid backup type", func(t *testing.T) {
		if err := os.WriteFile(defaults["config_path"], []byte("[backup]\ntype = \"ftp\"\n"), 0644); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { os.Remove(defaults["config_path"]) })

		if _, err := LoadConfig(defaults); err == nil {
			t.Fatal("LoadConfig() error = nil, want validation error")
		}
	})
}
