package launcher

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/conveyor-ci/conveyor/internal/config"
	"github.com/conveyor-ci/conveyor/internal/db"
	"github.com/conveyor-ci/conveyor/internal/engine"
	"github.com/conveyor-ci/conveyor/internal/runstore"
	"github.com/conveyor-ci/conveyor/internal/secrets"
	"github.com/conveyor-ci/conveyor/internal/trigger"
	"github.com/conveyor-ci/conveyor/internal/workspace"
)

// scriptedRunner returns canned exit codes per command, concurrency-safe.
type scriptedRunner struct {
	mu    sync.Mutex
	exits map[string]int
	calls []string
}

func (s *scriptedRunner) Run(ctx context.Context, dir, command string, env []string, maxOutput int64) (string, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, command)
	return "", s.exits[command], nil
}

func testConfig() *config.File {
	return &config.File{Pipeline: config.Pipeline{
		Name: "api-ci",
		On: config.Triggers{
			Push:        &config.PushTrigger{Branches: []string{"refs/heads/main"}},
			PullRequest: true,
		},
		Steps: []config.Step{
			{Name: "lint", Run: "ruff check ."},
			{Name: "test", Run: "pytest"},
		},
	}}
}

func TestLauncher_Matches(t *testing.T) {
	l := New(testConfig(), Options{Workspaces: workspace.NewManager(t.TempDir())})

	if !l.Matches(trigger.Event{Kind: trigger.Push, Ref: "refs/heads/main"}) {
		t.Error("push to main should match")
	}
	if l.Matches(trigger.Event{Kind: trigger.Push, Ref: "refs/heads/dev"}) {
		t.Error("push to dev should not match")
	}
	if !l.Matches(trigger.Event{Kind: trigger.PullRequest, Ref: "refs/heads/feature-x"}) {
		t.Error("pull_request should match any ref")
	}
}

func TestLauncher_Launch_Success(t *testing.T) {
	runner := &scriptedRunner{exits: map[string]int{}}
	store := runstore.NewStore(t.TempDir())
	l := New(testConfig(), Options{
		Workspaces: workspace.NewManager(t.TempDir()),
		Store:      store,
		Runner:     runner,
		Secrets:    secrets.Static{},
	})

	result, err := l.Launch(context.Background(), trigger.Event{Kind: trigger.Push, Ref: "refs/heads/main"})
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if result.Status != engine.StatusSuccess {
		t.Errorf("status = %s", result.Status)
	}
	if result.ID == "" {
		t.Error("run has no ID")
	}

	// Result must be persisted in the store.
	stored, err := store.Get(result.ID)
	if err != nil {
		t.Fatalf("stored result missing: %v", err)
	}
	if len(stored.Steps) != 2 {
		t.Errorf("stored steps = %d", len(stored.Steps))
	}
}

func TestLauncher_Launch_WorkspaceTornDown(t *testing.T) {
	ws := workspace.NewManager(t.TempDir())
	l := New(testConfig(), Options{
		Workspaces: ws,
		Runner:     &scriptedRunner{exits: map[string]int{}},
	})

	result, err := l.Launch(context.Background(), trigger.Event{})
	if err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(ws.BaseDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("workspace for run %s not removed", result.ID)
	}
}

func TestLauncher_Launch_RecordsHistory(t *testing.T) {
	d, err := db.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	if err := d.Migrate(); err != nil {
		t.Fatal(err)
	}

	l := New(testConfig(), Options{
		Workspaces: workspace.NewManager(t.TempDir()),
		History:    d,
		Runner:     &scriptedRunner{exits: map[string]int{"pytest": 1}},
	})

	result, err := l.Launch(context.Background(), trigger.Event{Kind: trigger.PullRequest, Ref: "refs/heads/feature-x"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != engine.StatusFailed {
		t.Errorf("status = %s", result.Status)
	}

	runs, err := d.ListRuns(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Status != "failed" || runs[0].EventKind != "pull_request" {
		t.Errorf("history = %+v", runs)
	}
}

func TestLauncher_ConcurrentRunsIsolated(t *testing.T) {
	ws := workspace.NewManager(t.TempDir())
	l := New(testConfig(), Options{
		Workspaces: ws,
		Runner:     &scriptedRunner{exits: map[string]int{}},
	})
	l.KeepWorkspace = true

	const n = 5
	results := make([]*engine.JobResult, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := l.Launch(context.Background(), trigger.Event{})
			if err != nil {
				t.Errorf("Launch: %v", err)
				return
			}
			results[i] = r
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, r := range results {
		if r == nil {
			continue
		}
		if seen[r.ID] {
			t.Errorf("duplicate run ID %s", r.ID)
		}
		seen[r.ID] = true
	}
}
