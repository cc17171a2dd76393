package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"winrecent/internal/config"
	"winrecent/internal/shortcut"
)

// AppDirName is the directory under the user data home holding the store.
const AppDirName = "RecentHistory"

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - WINRECENT_CONFIG_PATH: config file location (default: <xdg config home>/winrecent.toml)
//   - WINRECENT_HOME: data directory for the store and logs (default: <xdg data home>/RecentHistory)
//   - WINRECENT_RECENT_DIR: live folder (default: the OS "Recent" known folder)
func GetDefaults() (map[string]string, error) {
	configPath := getConfigPath()
	dataDir := getDataDir()

	programDir, err := getProgramDir()
	if err != nil {
		return nil, err
	}

	recentDir, err := getRecentDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"data_dir":    dataDir,
		"program_dir": programDir,
		"recent_dir":  recentDir,
		"log_dir":     filepath.Join(dataDir, "log"),
	}, nil
}

// DefaultConfig builds the config used when no config file exists.
func DefaultConfig(defaults map[string]string) *config.Config {
	cfg := config.NewConfig(defaults["recent_dir"], defaults["data_dir"], defaults["program_dir"])
	if dir := defaults["log_dir"]; dir != "" {
		cfg.LogDir = dir
	}
	return cfg
}

// LoadConfig reads the config file named in defaults, filling anything it
// leaves unset. A missing file yields the defaults.
func LoadConfig(defaults map[string]string) (*config.Config, error) {
	cfg, err := config.Load(defaults["config_path"], DefaultConfig(defaults))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func getConfigPath() string {
	if path := os.Getenv("WINRECENT_CONFIG_PATH"); path != "" {
		return path
	}
	return filepath.Join(xdg.ConfigHome, "winrecent.toml")
}

func getDataDir() string {
	if path := os.Getenv("WINRECENT_HOME"); path != "" {
		return path
	}
	return filepath.Join(xdg.DataHome, AppDirName)
}

// getProgramDir returns the directory holding the running executable, or
// the working directory when that cannot be determined.
func getProgramDir() (string, error) {
	exe, err := os.Executable()
	if err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Dir(exe), nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("cannot determine program directory: %w", err)
	}
	return wd, nil
}

func getRecentDir() (string, error) {
	if path := os.Getenv("WINRECENT_RECENT_DIR"); path != "" {
		return path, nil
	}
	if dir, err := shortcut.RecentFolder(); err == nil && dir != "" {
		return dir, nil
	}
	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, "Microsoft", "Windows", "Recent"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, "AppData", "Roaming", "Microsoft", "Windows", "Recent"), nil
}
