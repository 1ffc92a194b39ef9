package engine

import "time"

// Reserved exit codes recorded by the executor for outcomes that do
// not come from the child process itself.
const (
	// ExitTimeout is recorded when a step exceeds its allotted duration
	// and is terminated.
	ExitTimeout = 124
	// ExitSpawnFailure is recorded when the child process could not be
	// started at all (missing interpreter, bad workspace, ...).
	ExitSpawnFailure = -1
)

// StepSpec is one declared unit of work: a command plus the
// environment keys it needs. Declaration order is execution order.
type StepSpec struct {
	Name    string
	Command string
	EnvKeys []string
}

// StepResult holds the structured outcome of one executed step.
type StepResult struct {
	Name            string `json:"name"`
	ExitCode        int    `json:"exit_code"`
	DurationMs      int64  `json:"duration_ms"`
	Output          string `json:"output,omitempty"`
	OutputTruncated bool   `json:"output_truncated,omitempty"`
	TimedOut        bool   `json:"timed_out,omitempty"`
	SpawnError      string `json:"spawn_error,omitempty"`
}

// Passed reports whether the step exited cleanly.
func (r StepResult) Passed() bool {
	return r.ExitCode == 0
}

// Status is the terminal outcome of a job run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusAborted Status = "aborted"
)

// JobResult aggregates the ordered step results of one run. The step
// sequence always equals the declared step order restricted to the
// prefix actually attempted.
type JobResult struct {
	ID         string       `json:"id"`
	Pipeline   string       `json:"pipeline"`
	Status     Status       `json:"status"`
	Steps      []StepResult `json:"steps"`
	Error      string       `json:"error,omitempty"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}

// DurationMs is the total wall-clock duration of the run.
func (r *JobResult) DurationMs() int64 {
	return r.FinishedAt.Sub(r.StartedAt).Milliseconds()
}
