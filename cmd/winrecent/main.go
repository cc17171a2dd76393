package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"winrecent/internal/app"
	"winrecent/internal/config"
	"winrecent/internal/recent"
	"winrecent/internal/tui"
	"winrecent/internal/watch"
)

const version = "1.0.0"

var _ tui.Backend = (*app.RecentApp)(nil)

// newApp reads the config and creates a RecentApp. The caller must defer app.Close().
func newApp(opts app.Options) (*app.RecentApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("failed to get defaults: %w", err)
	}

	cfg, err := app.LoadConfig(defaults)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	return app.NewRecentApp(cfg, opts)
}

// cliOptions echoes the operational log to stderr.
func cliOptions(cmd *cobra.Command) app.Options {
	opts := app.Options{Echo: os.Stderr, Level: slog.LevelWarn}
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		opts.Level = slog.LevelDebug
	}
	return opts
}

var rootCmd = &cobra.Command{
	Use:          "winrecent",
	Short:        "Keep a searchable history of recently used items",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		weekly, _ := cmd.Flags().GetBool("weekly-scan")
		if weekly {
			runWeeklyScan()
			return nil
		}

		a, err := newApp(app.Options{Level: slog.LevelInfo})
		if err != nil {
			return err
		}
		defer a.Close()

		if !a.SourceExists() {
			return fmt.Errorf("recent folder not found: %s", a.Config().RecentDir)
		}
		return tui.Start(a)
	},
}

// runWeeklyScan is the scheduled headless entry point. It never fails the
// process: there is nobody to report to.
func runWeeklyScan() {
	a, err := newApp(app.Options{Silent: true, Level: slog.LevelInfo})
	if err != nil {
		return
	}
	defer a.Close()
	a.RunWeeklyScan()
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Record the current recent items",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cliOptions(cmd))
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.RunScanCycle(recent.ModeManual)
		if err != nil {
			return err
		}
		printScan(result, a.Config().RecentDir)
		return nil
	},
}

func printScan(result *recent.ScanResult, dir string) {
	if result.SourceMissing {
		fmt.Printf("Recent folder not found: %s\n", dir)
		return
	}
	fmt.Printf("Scanned %d item(s), %d new\n", result.Observed, len(result.Inserted))
	for _, e := range result.Inserted {
		fmt.Printf("  + %s\n", e.DisplayName)
	}
	for _, f := range result.Failures {
		fmt.Printf("  ! %s (%s): %v\n", f.Name, f.Step, f.Err)
	}
}

// queryEntries scans, then reads the entries selected by the list/export flags.
func queryEntries(cmd *cobra.Command, a *app.RecentApp) ([]*recent.HistoryEntry, error) {
	if _, err := a.RunScanCycle(recent.ModeManual); err != nil {
		return nil, err
	}

	search, _ := cmd.Flags().GetString("search")
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	all, _ := cmd.Flags().GetBool("all")
	limit, _ := cmd.Flags().GetInt("limit")

	opts, err := parseRange(a.DefaultRange(), from, to, all, time.Local)
	if err != nil {
		return nil, err
	}
	opts.Limit = limit
	return a.Entries(search, opts)
}

func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("search", "s", "", "Filter by text, glob (* ?) or /regex/")
	cmd.Flags().String("from", "", "Earliest open date (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "Latest open date (YYYY-MM-DD)")
	cmd.Flags().Bool("all", false, "Ignore the lookback window")
	cmd.Flags().IntP("limit", "n", 0, "Maximum number of entries (0 for all)")
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded items, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cliOptions(cmd))
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := queryEntries(cmd, a)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No entries.")
			return nil
		}
		for _, e := range entries {
			exists := " "
			if !e.ExistsNow {
				exists = "x"
			}
			fmt.Printf("%s  %s  %s\n", e.OpenedAt.In(time.Local).Format("2006-01-02 15:04:05"), exists, e.DisplayName)
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export recorded items as CSV",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cliOptions(cmd))
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := queryEntries(cmd, a)
		if err != nil {
			return err
		}
		var path string
		if len(args) == 1 {
			path = args[0]
		}
		path, err = a.Export(path, entries)
		if err != nil {
			return err
		}
		fmt.Printf("Exported %d entries to %s\n", len(entries), path)
		return nil
	},
}

var openCmd = &cobra.Command{
	Use:   "open <name>",
	Short: "Open a recorded item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reveal, _ := cmd.Flags().GetBool("select")

		a, err := newApp(cliOptions(cmd))
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Open(args[0], reveal); err != nil {
			return err
		}
		fmt.Printf("Opened %s\n", args[0])
		return nil
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up the history store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dest, _ := cmd.Flags().GetString("dest")

		a, err := newApp(cliOptions(cmd))
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Backup(cmd.Context(), dest)
		if err != nil {
			return err
		}
		enc := ""
		if res.Encrypted {
			enc = " (encrypted)"
		}
		fmt.Printf("Backed up %d bytes to %s%s\n", res.Size, res.Location, enc)
		return nil
	},
}

var backupDecryptCmd = &cobra.Command{
	Use:   "decrypt <src> <dst>",
	Short: "Decrypt an encrypted store backup",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cliOptions(cmd))
		if err != nil {
			return err
		}
		defer a.Close()

		pass, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		if err := a.DecryptBackup(pass, args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Decrypted %s to %s\n", args[0], args[1])
		return nil
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Register the weekly background scan",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cliOptions(cmd))
		if err != nil {
			return err
		}
		defer a.Close()

		ok, msg := a.Schedule(cmd.Context())
		if !ok {
			return errors.New(msg)
		}
		fmt.Println(msg)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent scan runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cliOptions(cmd))
		if err != nil {
			return err
		}
		defer a.Close()

		runs, err := a.History(limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No scans recorded.")
			return nil
		}
		for _, r := range runs {
			fmt.Printf("%s  %-11s  %-14s  %d seen  %d new  %d failed\n",
				r.StartedAt.In(time.Local).Format("2006-01-02 15:04:05"),
				r.Mode, r.Status, r.Observed, r.Inserted, r.Failures)
		}
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Record recent items as they appear",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		debounce, _ := cmd.Flags().GetDuration("debounce")

		opts := cliOptions(cmd)
		opts.Level = slog.LevelInfo
		a, err := newApp(opts)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return a.Watch(ctx, debounce)
	},
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage backup encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the backup encryption key pair",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cliOptions(cmd))
		if err != nil {
			return err
		}
		defer a.Close()

		pass, err := readPassphrase("New passphrase: ")
		if err != nil {
			return err
		}
		confirm, err := readPassphrase("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if pass != confirm {
			return errors.New("passphrases do not match")
		}
		if err := a.SetupKeys(pass); err != nil {
			return err
		}
		fmt.Printf("Public key written to %s\n", a.Config().Encryption.PublicKeyPath)
		fmt.Printf("Private key written to %s\n", a.Config().Encryption.PrivateKeyPath)
		return nil
	},
}

func readPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	pass := strings.TrimSpace(string(b))
	if pass == "" {
		return "", errors.New("empty passphrase")
	}
	return pass, nil
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := app.DefaultConfig(defaults)
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Recent Dir: %s\n", cfg.RecentDir)
		fmt.Printf("Data Dir:   %s\n", cfg.DataDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := app.LoadConfig(defaults)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Recent Dir:    %s\n", cfg.RecentDir)
		fmt.Printf("Data Dir:      %s\n", cfg.DataDir)
		fmt.Printf("Program Dir:   %s\n", cfg.ProgramDir)
		fmt.Printf("Log Dir:       %s\n", cfg.LogDir)
		fmt.Printf("Lookback Days: %d\n", cfg.LookbackDays)
		fmt.Printf("Resolve:       %t\n", cfg.ResolveTargets)
		fmt.Printf("Task:          %s (%s %s)\n", cfg.Schedule.TaskName, cfg.Schedule.Day, cfg.Schedule.Time)
		fmt.Printf("Backup:        %s (encrypt: %t)\n", cfg.Backup.Type, cfg.Backup.Encrypt)
		return nil
	},
}

var aboutCmd = &cobra.Command{
	Use:   "about",
	Short: "Show version and data locations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cliOptions(cmd))
		if err != nil {
			return err
		}
		defer a.Close()

		info, err := a.About()
		if err != nil {
			return err
		}
		fmt.Printf("winrecent %s\n\n", version)
		fmt.Printf("Recent folder: %s\n", info.RecentDir)
		fmt.Printf("Store:         %s (%d entries)\n", info.StorePath, info.Entries)
		fmt.Printf("Vault:         %s\n", info.VaultDir)
		fmt.Printf("Log:           %s\n", info.LogPath)
		fmt.Printf("Autoscan log:  %s\n", info.AutoscanLog)
		return nil
	},
}

func init() {
	rootCmd.Version = version
	rootCmd.Flags().Bool("weekly-scan", false, "Run the scheduled headless scan and exit")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug output to stderr")

	addQueryFlags(listCmd)
	addQueryFlags(exportCmd)
	openCmd.Flags().Bool("select", false, "Show the shortcut in its folder instead of opening it")
	backupCmd.Flags().String("dest", "", "Write the backup to this directory")
	historyCmd.Flags().IntP("limit", "n", 10, "Number of runs to show")
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "Quiet period before rescanning")

	backupCmd.AddCommand(backupDecryptCmd)
	keysCmd.AddCommand(keysInitCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(aboutCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
