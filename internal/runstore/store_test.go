package runstore

import (
	"testing"
	"time"

	"github.com/conveyor-ci/conveyor/internal/engine"
)

func sampleRun(id string, status engine.Status, started time.Time) *engine.JobResult {
	return &engine.JobResult{
		ID:       id,
		Pipeline: "api-ci",
		Status:   status,
		Steps: []engine.StepResult{
			{Name: "lint", ExitCode: 0, DurationMs: 120, Output: "clean\n"},
			{Name: "test", ExitCode: 1, DurationMs: 900, Output: "1 failed\n"},
		},
		StartedAt:  started,
		FinishedAt: started.Add(time.Second),
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	store := NewStore(t.TempDir())
	run := sampleRun("run-1", engine.StatusFailed, time.Now().UTC())

	if err := store.Save(run); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Get("run-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != engine.StatusFailed {
		t.Errorf("status = %s", got.Status)
	}
	if len(got.Steps) != 2 {
		t.Fatalf("steps = %d", len(got.Steps))
	}
	if got.Steps[0].Output != "" {
		t.Error("step output should live in log files, not run.json")
	}
}

func TestStore_StepLogs(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.Save(sampleRun("run-1", engine.StatusFailed, time.Now().UTC())); err != nil {
		t.Fatal(err)
	}

	out, err := store.ReadStepLog("run-1", "test")
	if err != nil {
		t.Fatalf("ReadStepLog: %v", err)
	}
	if out != "1 failed\n" {
		t.Errorf("log = %q", out)
	}
}

func TestStore_GetMissing(t *testing.T) {
	store := NewStore(t.TempDir())
	if _, err := store.Get("nope"); err == nil {
		t.Error("expected error for missing run")
	}
}

func TestStore_SaveWithoutID(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.Save(&engine.JobResult{}); err == nil {
		t.Error("expected error for empty run ID")
	}
}

func TestStore_ListNewestFirstAndFilter(t *testing.T) {
	store := NewStore(t.TempDir())
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	if err := store.Save(sampleRun("old", engine.StatusSuccess, base)); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(sampleRun("new", engine.StatusFailed, base.Add(time.Hour))); err != nil {
		t.Fatal(err)
	}

	runs, err := store.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len = %d", len(runs))
	}
	if runs[0].ID != "new" {
		t.Errorf("first run = %q, want new", runs[0].ID)
	}

	failed, err := store.List(engine.StatusFailed)
	if err != nil {
		t.Fatal(err)
	}
	if len(failed) != 1 || failed[0].ID != "new" {
		t.Errorf("failed filter = %+v", failed)
	}
}

func TestStore_ListEmptyDir(t *testing.T) {
	store := NewStore(t.TempDir() + "/does-not-exist")
	runs, err := store.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if runs != nil {
		t.Errorf("expected nil, got %v", runs)
	}
}

func TestStore_Delete(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.Save(sampleRun("run-1", engine.StatusSuccess, time.Now().UTC())); err != nil {
		t.Fatal(err)
	}

	if err := store.Delete("run-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get("run-1"); err == nil {
		t.Error("run should be gone")
	}
	if err := store.Delete("run-1"); err == nil {
		t.Error("expected error deleting missing run")
	}
}
