package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/conveyor-ci/conveyor/internal/environ"
	"github.com/conveyor-ci/conveyor/internal/secrets"
)

// runState is the sequencer's finite state machine. It moves from idle
// to running on start, then to exactly one terminal state.
type runState int

const (
	stateIdle runState = iota
	stateRunning
	stateSucceeded
	stateFailed
	stateAborted
)

// RunOpts describes one job run.
type RunOpts struct {
	ID       string
	Pipeline string
	// Dir is the workspace the steps execute in. It is exclusively
	// owned by this run.
	Dir      string
	Steps    []StepSpec
	BaseEnv  map[string]string
	Bindings environ.Bindings
	Secrets  secrets.Source
}

// Sequencer executes the steps of a job strictly in declaration order
// with fail-fast semantics.
type Sequencer struct {
	exec *Executor
	log  *slog.Logger
}

// NewSequencer creates a Sequencer using the given executor.
func NewSequencer(exec *Executor, log *slog.Logger) *Sequencer {
	if log == nil {
		log = slog.Default()
	}
	return &Sequencer{exec: exec, log: log}
}

// Run executes the declared steps one at a time. Step N+1 never starts
// before step N's process has exited. The first nonzero exit stops the
// run; no subsequent step executes. Context cancellation between steps
// or during a step aborts the run and terminates the in-flight child.
// Run always returns a terminal JobResult whose step sequence is
// exactly the prefix of steps actually attempted.
func (s *Sequencer) Run(ctx context.Context, opts RunOpts) *JobResult {
	result := &JobResult{
		ID:        opts.ID,
		Pipeline:  opts.Pipeline,
		StartedAt: time.Now().UTC(),
	}

	st := stateIdle
	st = stateRunning

	for i := 0; i < len(opts.Steps) && st == stateRunning; i++ {
		step := opts.Steps[i]

		if ctx.Err() != nil {
			st = stateAborted
			break
		}

		// Each step gets a fresh snapshot: secret material may rotate
		// between runs and stale snapshots are a leak risk.
		snap, err := environ.Resolve(opts.BaseEnv, opts.Bindings, step.EnvKeys, opts.Secrets)
		if err != nil {
			st = stateFailed
			result.Error = fmt.Sprintf("resolve environment for step %q: %v", step.Name, err)
			s.log.Error("environment resolution failed", "run", opts.ID, "step", step.Name, "err", err)
			break
		}

		s.log.Info("step started", "run", opts.ID, "step", step.Name)
		sr := s.exec.Execute(ctx, opts.Dir, step, snap)
		result.Steps = append(result.Steps, sr)

		switch {
		case ctx.Err() != nil:
			st = stateAborted
		case sr.ExitCode != 0:
			st = stateFailed
			s.log.Warn("step failed", "run", opts.ID, "step", step.Name, "exit_code", sr.ExitCode, "timed_out", sr.TimedOut)
		default:
			s.log.Info("step passed", "run", opts.ID, "step", step.Name, "duration_ms", sr.DurationMs)
		}
	}

	if st == stateRunning {
		st = stateSucceeded
	}

	switch st {
	case stateSucceeded:
		result.Status = StatusSuccess
	case stateAborted:
		result.Status = StatusAborted
	default:
		result.Status = StatusFailed
	}
	result.FinishedAt = time.Now().UTC()
	return result
}
