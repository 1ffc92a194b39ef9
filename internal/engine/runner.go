package engine

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"syscall"
	"time"
)

// CommandRunner abstracts command execution for testability. The child
// sees exactly env as its environment, nothing inherited from the
// caller, and combined stdout/stderr is captured up to maxOutput bytes.
type CommandRunner interface {
	Run(ctx context.Context, dir string, command string, env []string, maxOutput int64) (output string, exitCode int, err error)
}

// ExecRunner implements CommandRunner by shelling out. The child runs
// in its own process group so that cancellation kills the whole tree,
// not just the shell.
type ExecRunner struct{}

func (e *ExecRunner) Run(ctx context.Context, dir string, command string, env []string, maxOutput int64) (string, int, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = dir
	cmd.Env = env
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = 5 * time.Second

	out := &boundedWriter{limit: maxOutput}
	cmd.Stdout = out
	cmd.Stderr = out

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return out.String(), ExitSpawnFailure, fmt.Errorf("exec: %w", err)
		}
	}
	return out.String(), exitCode, nil
}

// boundedWriter keeps the first limit bytes and drops the rest without
// buffering, so a chatty step cannot grow memory past the cap.
type boundedWriter struct {
	buf     bytes.Buffer
	limit   int64
	dropped int64
}

func (w *boundedWriter) Write(p []byte) (int, error) {
	remain := w.limit - int64(w.buf.Len())
	switch {
	case remain <= 0:
		w.dropped += int64(len(p))
	case int64(len(p)) <= remain:
		w.buf.Write(p)
	default:
		w.buf.Write(p[:remain])
		w.dropped += int64(len(p)) - remain
	}
	return len(p), nil
}

func (w *boundedWriter) String() string { return w.buf.String() }

// Truncated reports whether any output was dropped.
func (w *boundedWriter) Truncated() bool { return w.dropped > 0 }
