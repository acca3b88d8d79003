// ABOUTME: Shared subprocess runner for adapters that shell out to CLIs.
// ABOUTME: Commands run in their own process group so timeouts kill the whole tree.

package builtins

import (
	"bytes"
	"context"
	"os/exec"
	"syscall"
	"time"
)

// commandResult holds the outcome of one subprocess run.
type commandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
}

// runCommand executes name with args, killing the whole process group when
// the timeout or the context expires. The returned error is only non-nil
// for spawn failures; command failures surface through ExitCode and Stderr.
func runCommand(ctx context.Context, timeout time.Duration, name string, args ...string) (*commandResult, error) {
	cmd := exec.Command(name, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var timedOut bool
	select {
	case <-done:
	case <-timer.C:
		timedOut = true
		killProcessGroup(cmd)
		<-done
	case <-ctx.Done():
		timedOut = true
		killProcessGroup(cmd)
		<-done
	}

	return &commandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: cmd.ProcessState.ExitCode(),
		TimedOut: timedOut,
	}, nil
}

// killProcessGroup force-kills a started command and everything it spawned.
func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	pgid, err := syscall.Getpgid(cmd.Process.Pid)
	if err == nil {
		_ = syscall.Kill(-pgid, syscall.SIGKILL)
		return
	}
	_ = cmd.Process.Kill()
}
