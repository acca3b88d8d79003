// ABOUTME: Tests for the shared subprocess runner.
// ABOUTME: Requires a POSIX shell; skips otherwise.

package builtins

import (
	"context"
	"os/exec"
	"testing"
	"time"
)

func requireBinary(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available: %v", name, err)
	}
}

func TestRunCommandCapturesOutput(t *testing.T) {
	requireBinary(t, "sh")

	res, err := runCommand(context.Background(), 5*time.Second, "sh", "-c", "echo out; echo err >&2")
	if err != nil {
		t.Fatalf("runCommand: %v", err)
	}
	if res.Stdout != "out\n" {
		t.Errorf("stdout = %q, want %q", res.Stdout, "out\n")
	}
	if res.Stderr != "err\n" {
		t.Errorf("stderr = %q, want %q", res.Stderr, "err\n")
	}
	if res.ExitCode != 0 {
		t.Errorf("exit code = %d, want 0", res.ExitCode)
	}
	if res.TimedOut {
		t.Error("unexpected timeout")
	}
}

func TestRunCommandExitCode(t *testing.T) {
	requireBinary(t, "sh")

	res, err := runCommand(context.Background(), 5*time.Second, "sh", "-c", "exit 3")
	if err != nil {
		t.Fatalf("runCommand: %v", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", res.ExitCode)
	}
}

func TestRunCommandTimeoutKillsProcess(t *testing.T) {
	requireBinary(t, "sh")

	start := time.Now()
	res, err := runCommand(context.Background(), 200*time.Millisecond, "sh", "-c", "sleep 5")
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("runCommand: %v", err)
	}
	if !res.TimedOut {
		t.Error("expected TimedOut")
	}
	if elapsed > 2*time.Second {
		t.Errorf("runCommand took %v, should have been killed after ~200ms", elapsed)
	}
}

func TestRunCommandSpawnFailure(t *testing.T) {
	_, err := runCommand(context.Background(), time.Second, "definitely-not-a-real-binary-xyz")
	if err == nil {
		t.Fatal("expected spawn error")
	}
}
