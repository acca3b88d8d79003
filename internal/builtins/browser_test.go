// ABOUTME: Tests for the browser tools' session rules and validation.
// ABOUTME: No Chrome process is launched; CDP paths are never reached.

package builtins

import (
	"context"
	"testing"

	"github.com/2389/toolbelt/internal/tool"
)

func TestBrowserCloseIsTerminal(t *testing.T) {
	bt := NewBrowserTool()

	res := bt.Execute(context.Background(), tool.Args{"action": "close"})
	if !res.Success {
		t.Fatalf("close failed: %s", res.Error)
	}
	if res.Output != "Browser closed successfully" {
		t.Errorf("output = %q", res.Output)
	}

	for _, action := range []string{"navigate", "screenshot", "close", "wait"} {
		res = bt.Execute(context.Background(), tool.Args{"action": action})
		if res.Success {
			t.Fatalf("action %s succeeded on closed session", action)
		}
		if res.Kind() != tool.KindSessionClosed {
			t.Errorf("action %s: kind = %v, want KindSessionClosed", action, res.Kind())
		}
		if res.Error != "Browser session is closed and cannot be reopened." {
			t.Errorf("action %s: error = %q", action, res.Error)
		}
	}
}

func TestBrowserValidation(t *testing.T) {
	bt := NewBrowserTool()
	t.Cleanup(bt.Close)

	res := bt.Execute(context.Background(), tool.Args{"action": "navigate"})
	if res.Kind() != tool.KindMissingParameter {
		t.Errorf("navigate without url: kind = %v", res.Kind())
	}
	if res.Error != "URL is required for navigate action" {
		t.Errorf("error = %q", res.Error)
	}

	res = bt.Execute(context.Background(), tool.Args{"action": "click"})
	if res.Kind() != tool.KindMissingParameter {
		t.Errorf("click without selector: kind = %v", res.Kind())
	}

	res = bt.Execute(context.Background(), tool.Args{"action": "fill", "selector": "#q"})
	if res.Kind() != tool.KindMissingParameter {
		t.Errorf("fill without text: kind = %v", res.Kind())
	}

	res = bt.Execute(context.Background(), tool.Args{"action": "scroll", "scroll_direction": "diagonal"})
	if res.Success {
		t.Error("invalid scroll direction succeeded")
	}
	if res.Error != "Invalid scroll direction: diagonal" {
		t.Errorf("error = %q", res.Error)
	}

	res = bt.Execute(context.Background(), tool.Args{"action": "dance"})
	if res.Kind() != tool.KindInvalidAction {
		t.Errorf("unknown action: kind = %v", res.Kind())
	}
	if res.Error != "Unknown action: dance" {
		t.Errorf("error = %q", res.Error)
	}
}

func TestBrowserWait(t *testing.T) {
	bt := NewBrowserTool()
	t.Cleanup(bt.Close)

	res := bt.Execute(context.Background(), tool.Args{"action": "wait", "wait_time": 10})
	if !res.Success {
		t.Fatalf("wait failed: %s", res.Error)
	}
	if res.Output != "Waited 10ms" {
		t.Errorf("output = %q", res.Output)
	}
}

func TestSimpleBrowserValidation(t *testing.T) {
	sb := NewSimpleBrowserTool()

	res := sb.Execute(context.Background(), tool.Args{})
	if res.Kind() != tool.KindMissingParameter {
		t.Errorf("missing url: kind = %v", res.Kind())
	}

	// Unknown actions are rejected before any browser is started.
	res = sb.Execute(context.Background(), tool.Args{"url": "http://localhost", "action": "inspect"})
	if res.Kind() != tool.KindInvalidAction {
		t.Errorf("unknown action: kind = %v", res.Kind())
	}
	if res.Error != "Unknown action: inspect" {
		t.Errorf("error = %q", res.Error)
	}
}
