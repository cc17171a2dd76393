package recent

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

// StepStatus is the outcome of one fallible per-artifact step.
type StepStatus int

const (
	StepOK StepStatus = iota
	StepSkipped
	StepFailed
)

// StepResult is returned by the best-effort steps of a scan. The caller
// decides how to log it; a failed step never aborts the scan.
type StepResult struct {
	Status StepStatus
	Err    error
}

func stepOK() StepResult              { return StepResult{Status: StepOK} }
func stepSkipped() StepResult         { return StepResult{Status: StepSkipped} }
func stepFailed(err error) StepResult { return StepResult{Status: StepFailed, Err: err} }

// ArtifactFailure describes a best-effort step that failed for one artifact.
type ArtifactFailure struct {
	Name string
	Step string // "stat", "vault" or "resolve"
	Err  error
}

// ScanResult summarizes one reconciliation pass.
type ScanResult struct {
	RunID         string
	Observed      int
	Inserted      []*HistoryEntry
	Failures      []ArtifactFailure
	SourceMissing bool
}

// Scan enumerates the live folder, copies every artifact into the vault and
// upserts one history entry per artifact.
//
// A missing live folder is not an error: the result reports zero
// observations. Stat, vault and resolver failures are absorbed per artifact.
// Store failures abort the scan and are returned.
func (s *Service) Scan(mode string) (*ScanResult, error) {
	run := &ScanRun{
		ID:        s.idgen.New(),
		Mode:      mode,
		StartedAt: s.clock.Now(),
		Status:    "running",
	}
	if err := s.store.CreateScanRun(run); err != nil {
		return nil, fmt.Errorf("recording scan run: %w", err)
	}

	result, scanErr := s.scan(run.ID)

	run.FinishedAt = s.clock.Now()
	switch {
	case scanErr != nil:
		run.Status = "error"
	case result.SourceMissing:
		run.Status = "source_missing"
	default:
		run.Status = "success"
	}
	if result != nil {
		run.Observed = result.Observed
		run.Inserted = len(result.Inserted)
		run.Failures = len(result.Failures)
	}
	if err := s.store.FinishScanRun(run); err != nil && scanErr == nil {
		scanErr = fmt.Errorf("finishing scan run: %w", err)
	}
	if scanErr != nil {
		return nil, scanErr
	}

	s.logger.Info("scan complete",
		"run", run.ID,
		"mode", mode,
		"observed", result.Observed,
		"inserted", len(result.Inserted),
		"failures", len(result.Failures),
	)
	return result, nil
}

func (s *Service) scan(runID string) (*ScanResult, error) {
	result := &ScanResult{RunID: runID}

	artifacts, err := s.fsmgr.ListArtifacts(s.cfg.RecentDir, s.cfg.ArtifactExt)
	if err != nil {
		if errors.Is(err, ErrSourceMissing) {
			s.logger.Warn("live folder missing", "dir", s.cfg.RecentDir)
			result.SourceMissing = true
			return result, nil
		}
		return result, fmt.Errorf("listing %s: %w", s.cfg.RecentDir, err)
	}

	for _, artifact := range artifacts {
		if s.fsmgr.IsIgnored(artifact) {
			s.logger.Debug("artifact ignored", "path", artifact)
			continue
		}

		name := DisplayName(artifact)
		result.Observed++

		openedAt, step := s.openedAt(artifact)
		s.record(result, name, "stat", step)

		s.record(result, name, "vault", s.backupArtifact(artifact))

		target, step := s.resolveTarget(artifact)
		s.record(result, name, "resolve", step)

		entry, outcome, err := s.store.Upsert(target, name, s.cfg.SourceTag, openedAt)
		if err != nil {
			return result, fmt.Errorf("recording %q: %w", name, err)
		}
		if outcome == UpsertInserted {
			result.Inserted = append(result.Inserted, entry)
		}
	}

	return result, nil
}

// openedAt derives the last-access time from the artifact's modification
// time, falling back to MinOpenedAt.
func (s *Service) openedAt(artifact string) (time.Time, StepResult) {
	info, err := s.fsmgr.Stat(artifact)
	if err != nil {
		return MinOpenedAt, stepFailed(err)
	}
	return info.ModTime(), stepOK()
}

func (s *Service) backupArtifact(artifact string) StepResult {
	if s.vault == nil {
		return stepSkipped()
	}
	if err := s.vault.Store(artifact); err != nil {
		return stepFailed(err)
	}
	return stepOK()
}

func (s *Service) resolveTarget(artifact string) (string, StepResult) {
	if !s.cfg.ResolveTargets {
		return "", stepSkipped()
	}
	target := s.resolver.Resolve(artifact)
	if target == "" {
		return "", stepFailed(fmt.Errorf("could not resolve %s", filepath.Base(artifact)))
	}
	return target, stepOK()
}

func (s *Service) record(result *ScanResult, name, step string, r StepResult) {
	if r.Status != StepFailed {
		return
	}
	result.Failures = append(result.Failures, ArtifactFailure{Name: name, Step: step, Err: r.Err})
	s.logger.Warn("scan step failed", "name", name, "step", step, "error", r.Err)
}
