// ABOUTME: Tests for the macOS automation tools' session rules and scripting
// ABOUTME: helpers. osascript-backed paths skip off macOS.

package builtins

import (
	"context"
	"strings"
	"testing"

	"github.com/2389/toolbelt/internal/tool"
)

func TestMacOSElementActionsRequireOpenApp(t *testing.T) {
	mt := NewMacOSTool()

	for _, action := range []string{"get_ui_tree", "click_element", "input_text", "right_click", "scroll"} {
		res := mt.Execute(context.Background(), tool.Args{"action": action})
		if res.Success {
			t.Fatalf("action %s succeeded without open app", action)
		}
		if res.Kind() != tool.KindNotOpen {
			t.Errorf("action %s: kind = %v, want KindNotOpen", action, res.Kind())
		}
		if res.Error != "No app is currently open. Use 'open_app' action first." {
			t.Errorf("action %s: error = %q", action, res.Error)
		}
	}
}

func TestMacOSCloseIsTerminal(t *testing.T) {
	mt := NewMacOSTool()

	res := mt.Execute(context.Background(), tool.Args{"action": "close"})
	if !res.Success {
		t.Fatalf("close failed: %s", res.Error)
	}
	if res.Output != "macOS session closed successfully" {
		t.Errorf("output = %q", res.Output)
	}

	for _, action := range []string{"open_app", "run_applescript", "screenshot", "close"} {
		res = mt.Execute(context.Background(), tool.Args{"action": action})
		if res.Kind() != tool.KindSessionClosed {
			t.Errorf("action %s: kind = %v, want KindSessionClosed", action, res.Kind())
		}
		if res.Error != "macOS session is closed and cannot be reopened." {
			t.Errorf("action %s: error = %q", action, res.Error)
		}
	}
}

func TestMacOSValidation(t *testing.T) {
	mt := NewMacOSTool()

	res := mt.Execute(context.Background(), tool.Args{"action": "open_app"})
	if res.Kind() != tool.KindMissingParameter {
		t.Errorf("open_app without name: kind = %v", res.Kind())
	}
	if res.Error != "app_name is required for open_app action" {
		t.Errorf("error = %q", res.Error)
	}

	res = mt.Execute(context.Background(), tool.Args{"action": "run_applescript"})
	if res.Kind() != tool.KindMissingParameter {
		t.Errorf("run_applescript without script: kind = %v", res.Kind())
	}

	res = mt.Execute(context.Background(), tool.Args{"action": "fly"})
	if res.Kind() != tool.KindInvalidAction {
		t.Errorf("unknown action: kind = %v", res.Kind())
	}
	if res.Error != "Unknown action: fly" {
		t.Errorf("error = %q", res.Error)
	}
}

func TestMacOSRunAppleScript(t *testing.T) {
	requireBinary(t, "osascript")
	mt := NewMacOSTool()

	res := mt.Execute(context.Background(), tool.Args{
		"action": "run_applescript",
		"script": `return "hi"`,
	})
	if !res.Success {
		t.Fatalf("run_applescript failed: %s", res.Error)
	}
	if res.Output != "AppleScript executed successfully: hi" {
		t.Errorf("output = %q", res.Output)
	}

	res = mt.Execute(context.Background(), tool.Args{
		"action": "run_applescript",
		"script": "this is not applescript at all (",
	})
	if res.Success {
		t.Fatal("expected failure for invalid script")
	}
	if !strings.HasPrefix(res.Error, "AppleScript failed:") {
		t.Errorf("error = %q", res.Error)
	}
}

func TestAppleScriptString(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Safari", `"Safari"`},
		{`say "hi"`, `"say \"hi\""`},
		{`back\slash`, `"back\\slash"`},
	}
	for _, tc := range cases {
		if got := appleScriptString(tc.in); got != tc.want {
			t.Errorf("appleScriptString(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestSimpleMacOSValidation(t *testing.T) {
	st := NewSimpleMacOSTool()

	res := st.Execute(context.Background(), tool.Args{"action": "open_app"})
	if res.Kind() != tool.KindMissingParameter {
		t.Errorf("open_app without name: kind = %v", res.Kind())
	}

	res = st.Execute(context.Background(), tool.Args{"action": "run_applescript"})
	if res.Kind() != tool.KindMissingParameter {
		t.Errorf("run_applescript without script: kind = %v", res.Kind())
	}

	res = st.Execute(context.Background(), tool.Args{"action": "screenshot"})
	if res.Kind() != tool.KindInvalidAction {
		t.Errorf("unknown action: kind = %v", res.Kind())
	}
	if res.Error != "Unknown action: screenshot. Available actions: open_app, run_applescript" {
		t.Errorf("error = %q", res.Error)
	}
}
