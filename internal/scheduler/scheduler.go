// Package scheduler registers the weekly headless scan with the Windows
// Task Scheduler.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

// WeeklyScanFlag is the argument the scheduled task passes to the program.
const WeeklyScanFlag = "--weekly-scan"

// ErrUnsupported is returned when task registration is attempted on a
// platform without schtasks.
var ErrUnsupported = errors.New("task scheduling requires Windows")

// Task describes the weekly task.
type Task struct {
	Name   string // e.g. "RecentHistory_AutoScanWeekly"
	Day    string // MON..SUN
	Time   string // HH:MM, 24h
	Target string // absolute path of the program to run
}

var (
	validDays = map[string]bool{"MON": true, "TUE": true, "WED": true, "THU": true, "FRI": true, "SAT": true, "SUN": true}
	timeRe    = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// Validate checks that the task can be passed to schtasks.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("task name is required")
	}
	if !validDays[strings.ToUpper(t.Day)] {
		return fmt.Errorf("invalid day %q, want one of MON..SUN", t.Day)
	}
	if !timeRe.MatchString(t.Time) {
		return fmt.Errorf("invalid time %q, want HH:MM", t.Time)
	}
	if t.Target == "" {
		return errors.New("task target is required")
	}
	return nil
}

// Command returns the command line the task runs.
func (t Task) Command() string {
	return `"` + t.Target + `" ` + WeeklyScanFlag
}

// Args returns the schtasks arguments that create or replace the task.
func (t Task) Args() []string {
	return []string{
		"/Create",
		"/TN", t.Name,
		"/F",
		"/SC", "WEEKLY",
		"/D", strings.ToUpper(t.Day),
		"/ST", t.Time,
		"/RL", "LIMITED",
		"/TR", t.Command(),
	}
}

// Runner executes an external command.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Register creates or replaces the weekly task. It never returns an error:
// the boolean reports success and the string is a message for the user.
func Register(ctx context.Context, runner Runner, task Task) (bool, string) {
	if runtime.GOOS != "windows" {
		return false, ErrUnsupported.Error()
	}
	return register(ctx, runner, task)
}

func register(ctx context.Context, runner Runner, task Task) (bool, string) {
	if err := task.Validate(); err != nil {
		return false, fmt.Sprintf("Invalid task: %v", err)
	}

	err := runner.Run(ctx, "schtasks", task.Args()...)
	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr):
			return false, fmt.Sprintf("schtasks failed (exit code %d).", exitErr.ExitCode())
		case errors.Is(err, exec.ErrNotFound):
			return false, "schtasks not found (Windows required)."
		default:
			return false, fmt.Sprintf("Task creation failed: %v", err)
		}
	}

	return true, fmt.Sprintf("Scheduled task created or updated: %s\nRuns: %s\nTrigger: every %s at %s.",
		task.Name, task.Command(), strings.ToUpper(task.Day), task.Time)
}

// ExecutableTarget returns the absolute path of the running program, which
// is what the task should launch. Binaries built into the go tool's temp
// directory are rejected since they vanish after the run.
func ExecutableTarget() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	if strings.Contains(filepath.ToSlash(exe), "/go-build") {
		return "", fmt.Errorf("%s is a temporary build; install the binary first", exe)
	}
	return exe, nil
}
