package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Defaults used by NewConfig and FillDefaults.
const (
	DefaultSourceTag    = "Recent(.lnk)"
	DefaultLookbackDays = 730
	DefaultTaskName     = "RecentHistory_AutoScanWeekly"
	DefaultTaskDay      = "MON"
	DefaultTaskTime     = "09:00"

	StoreFileName       = "history.db"
	VaultDirName        = "lnk_backup"
	AutoscanLogName     = "autoscan.log"
	FallbackLogName     = "autoscan_fallback.log"
	DefaultBackupSubdir = "backups"
)

// Config represents the main configuration for winrecent.
type Config struct {
	RecentDir      string `toml:"recent_dir"`  // live OS folder
	DataDir        string `toml:"data_dir"`    // store, operational log, fallback log
	ProgramDir     string `toml:"program_dir"` // vault and autoscan.log
	LogDir         string `toml:"log_dir"`
	SourceTag      string `toml:"source_tag"`
	LookbackDays   int    `toml:"lookback_days"` // 0 uses the default; negative disables the date filter
	ResolveTargets bool   `toml:"resolve_targets"`

	Schedule   ScheduleConfig   `toml:"schedule"`
	Backup     BackupConfig     `toml:"backup"`
	Encryption EncryptionConfig `toml:"encryption"`
	Filesystem FilesystemConfig `toml:"filesystem"`
}

// ScheduleConfig describes the weekly headless scan task.
type ScheduleConfig struct {
	TaskName string `toml:"task_name"`
	Day      string `toml:"day"`  // MON..SUN
	Time     string `toml:"time"` // HH:MM
}

// BackupConfig represents the destination for store backups.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type BackupConfig struct {
	Type    string `toml:"type"` // "filesystem" (default) or "s3"
	Encrypt bool   `toml:"encrypt"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	Dir string `toml:"dir,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`
}

// EncryptionConfig holds paths to the age key pair used for backup encryption.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "age" (default) or "test"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// FilesystemConfig holds filesystem-related settings.
type FilesystemConfig struct {
	Ignore []string `toml:"ignore"` // artifact name globs skipped by scans
}

// NewConfig creates a new Config with the provided directories and defaults
// for everything else.
func NewConfig(recentDir, dataDir, programDir string) *Config {
	return &Config{
		RecentDir:    recentDir,
		DataDir:      dataDir,
		ProgramDir:   programDir,
		LogDir:       filepath.Join(dataDir, "log"),
		SourceTag:    DefaultSourceTag,
		LookbackDays: DefaultLookbackDays,
		Schedule: ScheduleConfig{
			TaskName: DefaultTaskName,
			Day:      DefaultTaskDay,
			Time:     DefaultTaskTime,
		},
		Backup: BackupConfig{
			Type: "filesystem",
			Dir:  filepath.Join(dataDir, DefaultBackupSubdir),
		},
		Encryption: EncryptionConfig{
			PublicKeyPath:  filepath.Join(dataDir, "keys", "winrecent.pub"),
			PrivateKeyPath: filepath.Join(dataDir, "keys", "winrecent.key"),
		},
	}
}

// FillDefaults copies every unset field from defaults. A config file only
// needs to name the settings it changes.
func (c *Config) FillDefaults(defaults *Config) {
	setString(&c.RecentDir, defaults.RecentDir)
	setString(&c.DataDir, defaults.DataDir)
	setString(&c.ProgramDir, defaults.ProgramDir)
	if c.LogDir == "" {
		c.LogDir = filepath.Join(c.DataDir, "log")
	}
	setString(&c.SourceTag, defaults.SourceTag)
	if c.LookbackDays == 0 {
		c.LookbackDays = defaults.LookbackDays
	}

	setString(&c.Schedule.TaskName, defaults.Schedule.TaskName)
	setString(&c.Schedule.Day, defaults.Schedule.Day)
	setString(&c.Schedule.Time, defaults.Schedule.Time)

	setString(&c.Backup.Type, defaults.Backup.Type)
	if c.Backup.Type == "filesystem" && c.Backup.Dir == "" {
		c.Backup.Dir = filepath.Join(c.DataDir, DefaultBackupSubdir)
	}

	if c.Encryption.PublicKeyPath == "" {
		c.Encryption.PublicKeyPath = filepath.Join(c.DataDir, "keys", "winrecent.pub")
	}
	if c.Encryption.PrivateKeyPath == "" {
		c.Encryption.PrivateKeyPath = filepath.Join(c.DataDir, "keys", "winrecent.key")
	}
}

func setString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

// Validate checks the fields every command relies on.
func (c *Config) Validate() error {
	var errs []error
	if c.RecentDir == "" {
		errs = append(errs, errors.New("recent_dir is required"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}
	if c.ProgramDir == "" {
		errs = append(errs, errors.New("program_dir is required"))
	}
	switch c.Backup.Type {
	case "filesystem", "":
	case "s3":
		if c.Backup.S3Bucket == "" {
			errs = append(errs, errors.New("backup.s3_bucket is required for s3 backups"))
		}
		if (c.Backup.S3AccessKeyID == "") != (c.Backup.S3SecretAccessKey == "") {
			errs = append(errs, errors.New("backup.s3_access_key_id and backup.s3_secret_access_key must be set together"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown backup type: %q", c.Backup.Type))
	}
	return errors.Join(errs...)
}

// StorePath returns the path of the history database.
func (c *Config) StorePath() string {
	return filepath.Join(c.DataDir, StoreFileName)
}

// VaultDir returns the artifact vault directory next to the program.
func (c *Config) VaultDir() string {
	return filepath.Join(c.ProgramDir, VaultDirName)
}

// AutoscanLogPath returns the summary log written by the weekly scan.
func (c *Config) AutoscanLogPath() string {
	return filepath.Join(c.ProgramDir, AutoscanLogName)
}

// FallbackLogPath returns where autoscan failures are noted when the
// program directory is not writable.
func (c *Config) FallbackLogPath() string {
	return filepath.Join(c.DataDir, FallbackLogName)
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Load reads the config at path and fills unset fields from defaults.
// A missing file yields the defaults.
func Load(path string, defaults *Config) (*Config, error) {
	cfg, err := ReadFromFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c := *defaults
			return &c, nil
		}
		return nil, err
	}
	cfg.FillDefaults(defaults)
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
