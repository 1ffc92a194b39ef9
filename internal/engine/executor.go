package engine

import (
	"context"
	"time"

	"github.com/conveyor-ci/conveyor/internal/environ"
)

// Default limits applied when the pipeline definition does not set its
// own. Unbounded blocking or buffering is never an option.
const (
	DefaultStepTimeout = 10 * time.Minute
	DefaultOutputCap   = 1 << 20 // 1 MiB
)

// Executor runs single steps as external processes.
type Executor struct {
	cmd       CommandRunner
	timeout   time.Duration
	outputCap int64
}

// NewExecutor creates an Executor with the given command runner and
// limits. Zero or negative limits fall back to the defaults.
func NewExecutor(cmd CommandRunner, timeout time.Duration, outputCap int64) *Executor {
	if timeout <= 0 {
		timeout = DefaultStepTimeout
	}
	if outputCap <= 0 {
		outputCap = DefaultOutputCap
	}
	return &Executor{cmd: cmd, timeout: timeout, outputCap: outputCap}
}

// Execute runs one step in dir with exactly the variables in env
// visible to it. It always returns a StepResult: a timed-out child is
// terminated and recorded with the reserved timeout exit code, and a
// child that could not be spawned at all is recorded with
// ExitSpawnFailure and the spawn error. The call blocks until the
// child has exited; no process outlives the return.
func (e *Executor) Execute(ctx context.Context, dir string, step StepSpec, env *environ.Snapshot) StepResult {
	stepCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	output, exitCode, err := e.cmd.Run(stepCtx, dir, step.Command, env.Environ(), e.outputCap)
	durationMs := time.Since(start).Milliseconds()

	result := StepResult{
		Name:            step.Name,
		ExitCode:        exitCode,
		DurationMs:      durationMs,
		Output:          output,
		OutputTruncated: int64(len(output)) >= e.outputCap,
	}

	if stepCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		result.ExitCode = ExitTimeout
		result.TimedOut = true
		return result
	}
	if err != nil {
		result.ExitCode = ExitSpawnFailure
		result.SpawnError = err.Error()
	}
	return result
}
