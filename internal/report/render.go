package report

import (
	"fmt"
	"strings"

	"github.com/conveyor-ci/conveyor/internal/engine"
)

// Render produces the human-readable summary of a finished run:
// overall status, one line per executed step, and on failure the
// captured output of the failing step. It is a pure transformation;
// delivery of the text is the caller's concern.
func Render(result *engine.JobResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: %s (%d ms)\n", result.Pipeline, strings.ToUpper(string(result.Status)), result.DurationMs())

	for _, sr := range result.Steps {
		fmt.Fprintf(&b, "  %s %-20s %6d ms  %s\n", marker(sr), sr.Name, sr.DurationMs, stepLabel(sr))
	}

	if result.Error != "" {
		fmt.Fprintf(&b, "\nerror: %s\n", result.Error)
	}

	if failing := failingStep(result); failing != nil && failing.Output != "" {
		fmt.Fprintf(&b, "\n--- output of failing step %q ---\n", failing.Name)
		b.WriteString(failing.Output)
		if !strings.HasSuffix(failing.Output, "\n") {
			b.WriteByte('\n')
		}
		if failing.OutputTruncated {
			b.WriteString("(output truncated)\n")
		}
	}

	return b.String()
}

// ExitCode maps a run status to the process exit code of the overall
// run: 0 on success, nonzero otherwise.
func ExitCode(status engine.Status) int {
	switch status {
	case engine.StatusSuccess:
		return 0
	case engine.StatusAborted:
		return 130
	default:
		return 1
	}
}

func marker(sr engine.StepResult) string {
	if sr.Passed() {
		return "ok "
	}
	return "FAIL"
}

func stepLabel(sr engine.StepResult) string {
	switch {
	case sr.TimedOut:
		return fmt.Sprintf("timed out (exit %d)", sr.ExitCode)
	case sr.SpawnError != "":
		return fmt.Sprintf("could not start: %s", sr.SpawnError)
	case sr.Passed():
		return "passed"
	default:
		return fmt.Sprintf("exit %d", sr.ExitCode)
	}
}

func failingStep(result *engine.JobResult) *engine.StepResult {
	for i := range result.Steps {
		if !result.Steps[i].Passed() {
			return &result.Steps[i]
		}
	}
	return nil
}
