package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	SetVersion("test-version")
	out, err := executeCommand("version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "test-version") {
		t.Errorf("expected version output to contain 'test-version', got: %s", out)
	}
}

func TestRootHelp(t *testing.T) {
	out, err := executeCommand("--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expectedSubcommands := []string{
		"run", "validate", "trigger", "history", "serve", "db", "version",
	}
	for _, sub := range expectedSubcommands {
		if !strings.Contains(out, sub) {
			t.Errorf("help output missing subcommand %q", sub)
		}
	}
}

func TestUnknownCommand(t *testing.T) {
	_, err := executeCommand("nonexistent")
	if err == nil {
		t.Error("expected error for unknown command, got nil")
	}
}

func writePipeline(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conveyor.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateCommand_Valid(t *testing.T) {
	path := writePipeline(t, `
pipeline:
  name: ci
  steps:
    - name: hello
      run: echo hello
`)

	out, err := executeCommand("validate", "--config", path)
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "is valid") {
		t.Errorf("output = %s", out)
	}
}

func TestValidateCommand_Invalid(t *testing.T) {
	path := writePipeline(t, `
pipeline:
  steps:
    - name: hello
`)

	out, err := executeCommand("validate", "--config", path)
	if err == nil {
		t.Fatalf("expected validation failure, got:\n%s", out)
	}
	if !strings.Contains(out, "pipeline.name") {
		t.Errorf("output = %s", out)
	}
}

func TestTriggerCommand_Match(t *testing.T) {
	path := writePipeline(t, `
pipeline:
  name: ci
  on:
    push:
      branches: ["refs/heads/main"]
  steps:
    - name: hello
      run: echo hello
`)

	exitCode = 0
	out, err := executeCommand("trigger", "--config", path, "--event-kind", "push", "--ref", "refs/heads/main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "matches") || strings.Contains(out, "no trigger rule") {
		t.Errorf("output = %s", out)
	}
	if ExitCode() != 0 {
		t.Errorf("exit code = %d", ExitCode())
	}
}

func TestTriggerCommand_Mismatch(t *testing.T) {
	path := writePipeline(t, `
pipeline:
  name: ci
  on:
    push:
      branches: ["refs/heads/main"]
  steps:
    - name: hello
      run: echo hello
`)

	exitCode = 0
	out, err := executeCommand("trigger", "--config", path, "--event-kind", "push", "--ref", "refs/heads/dev")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "no trigger rule") {
		t.Errorf("output = %s", out)
	}
	if ExitCode() != 1 {
		t.Errorf("exit code = %d, want 1", ExitCode())
	}
}
