package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

// Manager allocates isolated workspace directories, one per run.
// Concurrent runs never share a mutable directory; the workspace is
// exclusively owned by its run from Allocate until Remove.
type Manager struct {
	baseDir string
}

// NewManager creates a Manager rooted at baseDir.
func NewManager(baseDir string) *Manager {
	return &Manager{baseDir: baseDir}
}

// DefaultManager returns a Manager under the system temp directory.
func DefaultManager() *Manager {
	return &Manager{baseDir: filepath.Join(os.TempDir(), "conveyor-workspaces")}
}

// BaseDir returns the manager's root directory.
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// Allocate creates a fresh workspace directory for a run. Failure here
// is the one condition that terminates a run without a result, so the
// error carries enough context to diagnose it.
func (m *Manager) Allocate(runID string) (string, error) {
	if runID == "" {
		return "", fmt.Errorf("allocate workspace: empty run ID")
	}
	dir := filepath.Join(m.baseDir, runID)
	if _, err := os.Stat(dir); err == nil {
		return "", fmt.Errorf("allocate workspace: %s already exists", dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("allocate workspace %s: %w", dir, err)
	}
	return dir, nil
}

// Remove deletes a run's workspace and everything in it.
func (m *Manager) Remove(runID string) error {
	if runID == "" {
		return fmt.Errorf("remove workspace: empty run ID")
	}
	return os.RemoveAll(filepath.Join(m.baseDir, runID))
}
