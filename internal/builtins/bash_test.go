// ABOUTME: Tests for the persistent bash session tool.
// ABOUTME: Skips when bash is not installed.

package builtins

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/2389/toolbelt/internal/tool"
)

func newTestBash(t *testing.T) *BashTool {
	t.Helper()
	requireBinary(t, "bash")
	bt := NewBashTool()
	t.Cleanup(bt.Close)
	return bt
}

func TestBashEcho(t *testing.T) {
	bt := newTestBash(t)

	res := bt.Execute(context.Background(), tool.Args{"command": "echo hello"})
	if !res.Success {
		t.Fatalf("execute failed: %s", res.Error)
	}
	if res.Output != "hello" {
		t.Errorf("output = %q, want %q", res.Output, "hello")
	}
}

func TestBashSessionPersistsState(t *testing.T) {
	bt := newTestBash(t)

	res := bt.Execute(context.Background(), tool.Args{"command": "MARKER=persisted"})
	if !res.Success {
		t.Fatalf("set variable: %s", res.Error)
	}

	res = bt.Execute(context.Background(), tool.Args{"command": "echo $MARKER"})
	if !res.Success {
		t.Fatalf("read variable: %s", res.Error)
	}
	if res.Output != "persisted" {
		t.Errorf("output = %q, want %q", res.Output, "persisted")
	}
}

func TestBashStderrCaptured(t *testing.T) {
	bt := newTestBash(t)

	res := bt.Execute(context.Background(), tool.Args{"command": "echo oops >&2"})
	if !res.Success {
		t.Fatalf("execute failed: %s", res.Error)
	}
	if !strings.Contains(res.Error, "oops") {
		t.Errorf("stderr not captured: %q", res.Error)
	}
}

func TestBashNoCommand(t *testing.T) {
	bt := newTestBash(t)

	res := bt.Execute(context.Background(), tool.Args{})
	if res.Success {
		t.Fatal("expected failure for missing command")
	}
	if res.Error != "no command provided." {
		t.Errorf("error = %q", res.Error)
	}
}

func TestBashRestart(t *testing.T) {
	bt := newTestBash(t)

	res := bt.Execute(context.Background(), tool.Args{"command": "MARKER=old"})
	if !res.Success {
		t.Fatalf("set variable: %s", res.Error)
	}

	res = bt.Execute(context.Background(), tool.Args{"restart": true})
	if !res.Success {
		t.Fatalf("restart failed: %s", res.Error)
	}
	if res.Output != "Bash session restarted" {
		t.Errorf("output = %q", res.Output)
	}

	res = bt.Execute(context.Background(), tool.Args{"command": "echo ${MARKER:-gone}"})
	if !res.Success {
		t.Fatalf("execute after restart: %s", res.Error)
	}
	if res.Output != "gone" {
		t.Errorf("restarted session kept state: %q", res.Output)
	}
}

func TestBashTimeoutPoisonsSession(t *testing.T) {
	bt := newTestBash(t)

	start := time.Now()
	res := bt.Execute(context.Background(), tool.Args{"command": "sleep 5", "timeout": 1})
	elapsed := time.Since(start)

	if res.Success {
		t.Fatal("expected timeout failure")
	}
	if res.Kind() != tool.KindTimedOut {
		t.Errorf("kind = %v, want KindTimedOut", res.Kind())
	}
	if !strings.Contains(res.Error, "Command timed out after 1 seconds") {
		t.Errorf("error = %q", res.Error)
	}
	if elapsed > 3*time.Second {
		t.Errorf("timeout took %v, should return after ~1s", elapsed)
	}

	// A timed-out session stays poisoned until restarted.
	res = bt.Execute(context.Background(), tool.Args{"command": "echo hi", "timeout": 1})
	if res.Success {
		t.Fatal("expected poisoned-session failure")
	}
	if !strings.Contains(res.Error, "must be restarted") {
		t.Errorf("error = %q", res.Error)
	}

	res = bt.Execute(context.Background(), tool.Args{"restart": true})
	if !res.Success {
		t.Fatalf("restart failed: %s", res.Error)
	}
	res = bt.Execute(context.Background(), tool.Args{"command": "echo recovered"})
	if !res.Success || res.Output != "recovered" {
		t.Errorf("session did not recover: success=%v output=%q", res.Success, res.Output)
	}
}
