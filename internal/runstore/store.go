package runstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/conveyor-ci/conveyor/internal/engine"
)

// Store keeps finished run artifacts on disk: one directory per run ID
// holding run.json plus the captured output of each step.
type Store struct {
	baseDir string
}

// NewStore creates a Store rooted at baseDir.
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// DefaultStore returns a Store at ~/.conveyor/runs, creating the
// directory if needed.
func DefaultStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("get home dir: %w", err)
	}
	dir := filepath.Join(home, ".conveyor", "runs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &Store{baseDir: dir}, nil
}

// BaseDir returns the store's root directory.
func (s *Store) BaseDir() string {
	return s.baseDir
}

func (s *Store) runDir(id string) string {
	return filepath.Join(s.baseDir, id)
}

func (s *Store) resultPath(id string) string {
	return filepath.Join(s.runDir(id), "run.json")
}

// StepLogPath returns the path of the captured output for one step of
// a run.
func (s *Store) StepLogPath(id, stepName string) string {
	return filepath.Join(s.runDir(id), "steps", stepName+".log")
}

// Save persists a finished run: the result JSON and one log file per
// executed step. Step output inside run.json is replaced by the log
// file reference to keep the state file small.
func (s *Store) Save(result *engine.JobResult) error {
	if result.ID == "" {
		return fmt.Errorf("run result has no ID")
	}

	for _, sr := range result.Steps {
		logPath := s.StepLogPath(result.ID, sr.Name)
		if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
			return fmt.Errorf("mkdir steps dir: %w", err)
		}
		if err := writeAtomic(logPath, []byte(sr.Output)); err != nil {
			return fmt.Errorf("write step log %q: %w", sr.Name, err)
		}
	}

	stored := *result
	stored.Steps = make([]engine.StepResult, len(result.Steps))
	for i, sr := range result.Steps {
		sr.Output = ""
		stored.Steps[i] = sr
	}

	if err := writeJSON(s.resultPath(result.ID), &stored); err != nil {
		return fmt.Errorf("write run.json: %w", err)
	}
	return nil
}

// Get reads the stored result for a run ID. Step output stays in the
// per-step log files; use StepLogPath or ReadStepLog for it.
func (s *Store) Get(id string) (*engine.JobResult, error) {
	var result engine.JobResult
	if err := readJSON(s.resultPath(id), &result); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("run %s not found", id)
		}
		return nil, err
	}
	return &result, nil
}

// ReadStepLog returns the captured output of one step of a run.
func (s *Store) ReadStepLog(id, stepName string) (string, error) {
	data, err := os.ReadFile(s.StepLogPath(id, stepName))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// List returns all stored runs, newest first, optionally filtered by
// status. Pass "" to return all.
func (s *Store) List(statusFilter engine.Status) ([]engine.JobResult, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dir %s: %w", s.baseDir, err)
	}

	var runs []engine.JobResult
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		result, err := s.Get(entry.Name())
		if err != nil {
			continue // skip broken entries
		}
		if statusFilter == "" || result.Status == statusFilter {
			runs = append(runs, *result)
		}
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	return runs, nil
}

// Delete removes all stored data for a run.
func (s *Store) Delete(id string) error {
	dir := s.runDir(id)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return fmt.Errorf("run %s not found", id)
	}
	return os.RemoveAll(dir)
}
