package launcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/conveyor-ci/conveyor/internal/config"
	"github.com/conveyor-ci/conveyor/internal/db"
	"github.com/conveyor-ci/conveyor/internal/engine"
	"github.com/conveyor-ci/conveyor/internal/runstore"
	"github.com/conveyor-ci/conveyor/internal/secrets"
	"github.com/conveyor-ci/conveyor/internal/trigger"
	"github.com/conveyor-ci/conveyor/internal/workspace"
)

// Launcher composes a pipeline definition with the engine, workspace
// allocation, and result persistence. One Launcher serves many runs;
// runs started concurrently share nothing mutable but the secret
// source, which is read-only.
type Launcher struct {
	cfg        *config.File
	workspaces *workspace.Manager
	store      *runstore.Store
	history    *db.DB
	secrets    secrets.Source
	runner     engine.CommandRunner
	log        *slog.Logger

	// KeepWorkspace leaves run workspaces on disk for debugging.
	KeepWorkspace bool
}

// Options holds the Launcher's collaborators. Nil fields get working
// defaults; History is optional and skipped when nil.
type Options struct {
	Workspaces *workspace.Manager
	Store      *runstore.Store
	History    *db.DB
	Secrets    secrets.Source
	Runner     engine.CommandRunner
	Logger     *slog.Logger
}

// New creates a Launcher for the given pipeline definition.
func New(cfg *config.File, opts Options) *Launcher {
	if opts.Workspaces == nil {
		opts.Workspaces = workspace.DefaultManager()
	}
	if opts.Secrets == nil {
		opts.Secrets = secrets.EnvSource{}
	}
	if opts.Runner == nil {
		opts.Runner = &engine.ExecRunner{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Launcher{
		cfg:        cfg,
		workspaces: opts.Workspaces,
		store:      opts.Store,
		history:    opts.History,
		secrets:    opts.Secrets,
		runner:     opts.Runner,
		log:        opts.Logger,
	}
}

// Matches reports whether an event triggers this pipeline.
func (l *Launcher) Matches(ev trigger.Event) bool {
	return trigger.Match(ev, l.cfg.Pipeline.Rules())
}

// Launch executes the pipeline once for the given event. The run gets
// a fresh ID and an isolated workspace; the workspace is torn down
// when the run finishes unless KeepWorkspace is set. The only error
// return is a workspace allocation failure, the one condition with no
// JobResult; every other outcome is a terminal result.
func (l *Launcher) Launch(ctx context.Context, ev trigger.Event) (*engine.JobResult, error) {
	p := &l.cfg.Pipeline
	id := uuid.NewString()

	dir, err := l.workspaces.Allocate(id)
	if err != nil {
		return nil, fmt.Errorf("launch run: %w", err)
	}
	if !l.KeepWorkspace {
		defer func() {
			if err := l.workspaces.Remove(id); err != nil {
				l.log.Warn("workspace teardown failed", "run", id, "err", err)
			}
		}()
	}

	exec := engine.NewExecutor(l.runner, p.StepTimeout(engine.DefaultStepTimeout), p.Defaults.OutputCap)
	seq := engine.NewSequencer(exec, l.log)

	l.log.Info("run started", "run", id, "pipeline", p.Name, "event_kind", ev.Kind, "event_ref", ev.Ref)
	result := seq.Run(ctx, engine.RunOpts{
		ID:       id,
		Pipeline: p.Name,
		Dir:      dir,
		Steps:    p.StepSpecs(),
		BaseEnv:  baseEnv(id),
		Bindings: p.Bindings(),
		Secrets:  l.secrets,
	})
	l.log.Info("run finished", "run", id, "status", result.Status, "steps", len(result.Steps), "duration_ms", result.DurationMs())

	if l.store != nil {
		if err := l.store.Save(result); err != nil {
			l.log.Warn("saving run artifacts failed", "run", id, "err", err)
		}
	}
	if l.history != nil {
		if err := l.history.RecordRun(result, ev); err != nil {
			l.log.Warn("recording run history failed", "run", id, "err", err)
		}
	}

	return result, nil
}

// baseEnv is the process-wide environment handed to the resolver. Only
// a small allowlist crosses into child processes; everything else,
// secrets included, must be declared per step.
func baseEnv(runID string) map[string]string {
	env := map[string]string{
		"CI":              "true",
		"CONVEYOR_RUN_ID": runID,
	}
	for _, key := range []string{"PATH", "HOME", "LANG", "TMPDIR"} {
		if v, ok := os.LookupEnv(key); ok {
			env[key] = v
		}
	}
	return env
}
