// ABOUTME: Tests for the VNC tools' session rules, display notation, and
// ABOUTME: screenshot embedding. vncdotool itself is never invoked.

package builtins

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/2389/toolbelt/internal/tool"
)

func TestVNCConnString(t *testing.T) {
	cases := []struct {
		host string
		port int
		want string
	}{
		{"vnc.example.com", 5900, "vnc.example.com"},
		{"vnc.example.com", 5901, "vnc.example.com:1"},
		{"vnc.example.com", 5910, "vnc.example.com:10"},
		{"vnc.example.com", 5800, "vnc.example.com::5800"},
	}
	for _, tc := range cases {
		if got := vncConnString(tc.host, tc.port); got != tc.want {
			t.Errorf("vncConnString(%q, %d) = %q, want %q", tc.host, tc.port, got, tc.want)
		}
	}
}

func TestVNCActionsRequireConnection(t *testing.T) {
	vt := NewVNCTool()

	cases := []tool.Args{
		{"action": "mouse_move", "x": 1, "y": 2},
		{"action": "mouse_click", "x": 1, "y": 2},
		{"action": "key_press", "key": "return"},
		{"action": "type_text", "text": "hello"},
		{"action": "capture_screen", "filename": "/tmp/shot.png"},
		{"action": "capture_region", "x": 0, "y": 0, "width": 10, "height": 10, "filename": "/tmp/shot.png"},
	}
	for _, args := range cases {
		res := vt.Execute(context.Background(), args)
		if res.Success {
			t.Fatalf("args %v succeeded without connection", args)
		}
		if res.Kind() != tool.KindNotOpen {
			t.Errorf("args %v: kind = %v, want KindNotOpen", args, res.Kind())
		}
		if res.Error != "Not connected to VNC server. Use 'connect' action first." {
			t.Errorf("args %v: error = %q", args, res.Error)
		}
	}
}

func TestVNCParamValidationBeforeConnectionCheck(t *testing.T) {
	vt := NewVNCTool()

	cases := []struct {
		args tool.Args
		want string
	}{
		{tool.Args{"action": "connect"}, "host is required for connect action"},
		{tool.Args{"action": "mouse_move", "x": 1}, "x and y coordinates are required for mouse_move action"},
		{tool.Args{"action": "mouse_click"}, "x and y coordinates are required for mouse_click action"},
		{tool.Args{"action": "key_press"}, "key is required for key_press action"},
		{tool.Args{"action": "type_text"}, "text is required for type_text action"},
		{tool.Args{"action": "capture_screen"}, "filename is required for capture_screen action"},
		{tool.Args{"action": "capture_region", "x": 0, "y": 0}, "x, y, width, height, and filename are required for capture_region action"},
	}
	for _, tc := range cases {
		res := vt.Execute(context.Background(), tc.args)
		if res.Kind() != tool.KindMissingParameter {
			t.Errorf("args %v: kind = %v, want KindMissingParameter", tc.args, res.Kind())
		}
		if res.Error != tc.want {
			t.Errorf("args %v: error = %q, want %q", tc.args, res.Error, tc.want)
		}
	}
}

func TestVNCDisconnectIsTerminal(t *testing.T) {
	vt := NewVNCTool()

	res := vt.Execute(context.Background(), tool.Args{"action": "disconnect"})
	if !res.Success {
		t.Fatalf("disconnect failed: %s", res.Error)
	}
	if res.Output != "Successfully disconnected from VNC server" {
		t.Errorf("output = %q", res.Output)
	}

	for _, action := range []string{"connect", "mouse_move", "disconnect"} {
		res = vt.Execute(context.Background(), tool.Args{"action": action})
		if res.Kind() != tool.KindSessionClosed {
			t.Errorf("action %s: kind = %v, want KindSessionClosed", action, res.Kind())
		}
		if res.Error != "VNC session is closed and cannot be reopened." {
			t.Errorf("action %s: error = %q", action, res.Error)
		}
	}
}

func TestVNCUnknownAction(t *testing.T) {
	res := NewVNCTool().Execute(context.Background(), tool.Args{"action": "reboot"})
	if res.Kind() != tool.KindInvalidAction {
		t.Errorf("kind = %v, want KindInvalidAction", res.Kind())
	}
	want := "Unknown action: reboot. Available actions: connect, disconnect, mouse_move, mouse_click, key_press, type_text, capture_screen, capture_region"
	if res.Error != want {
		t.Errorf("error = %q", res.Error)
	}
}

func TestVNCImageTag(t *testing.T) {
	tag := vncImageTag("Shot", "desktop", "true", "false", []byte{1, 2})
	want := `<img title="Shot" alt="desktop" src="data:image/png;base64,AQI=" display="true" include_in_next_call="false">`
	if tag != want {
		t.Errorf("tag = %s", tag)
	}
}

func TestCaptureResultEmbedsImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.png")
	if err := os.WriteFile(path, []byte{0x89, 0x50, 0x4e, 0x47}, 0644); err != nil {
		t.Fatal(err)
	}

	res := captureResult("Screen captured and saved to "+path, path, "VNC Screenshot", "VNC screen capture", tool.Args{})
	if !res.Success {
		t.Fatalf("captureResult failed: %s", res.Error)
	}
	lines := strings.SplitN(res.Output, "\n", 2)
	if len(lines) != 2 {
		t.Fatalf("output = %q", res.Output)
	}
	if lines[0] != "Screen captured and saved to "+path {
		t.Errorf("prefix = %q", lines[0])
	}
	wantTag := `<img title="VNC Screenshot" alt="VNC screen capture" src="data:image/png;base64,iVBORw==" display="true" include_in_next_call="true">`
	if lines[1] != wantTag {
		t.Errorf("tag = %s, want %s", lines[1], wantTag)
	}
}

func TestCaptureResultEncodingFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.png")

	res := captureResult("Screen captured and saved to "+missing, missing, "t", "a", tool.Args{})
	if !res.Success {
		t.Fatal("read failure should still be a success: the capture is on disk remotely")
	}
	if res.Kind() != tool.KindEncodingFailure {
		t.Errorf("kind = %v, want KindEncodingFailure", res.Kind())
	}
	if !strings.Contains(res.Output, "(base64 encoding failed:") {
		t.Errorf("output = %q", res.Output)
	}
}

func TestSimpleVNCSessionRules(t *testing.T) {
	st := NewSimpleVNCTool()

	res := st.Execute(context.Background(), tool.Args{"action": "type_text", "text": "hi"})
	if res.Kind() != tool.KindNotOpen {
		t.Errorf("kind = %v, want KindNotOpen", res.Kind())
	}

	res = st.Execute(context.Background(), tool.Args{"action": "type_text"})
	if res.Kind() != tool.KindMissingParameter {
		t.Errorf("kind = %v, want KindMissingParameter", res.Kind())
	}

	res = st.Execute(context.Background(), tool.Args{"action": "capture_screen"})
	if res.Kind() != tool.KindInvalidAction {
		t.Errorf("kind = %v, want KindInvalidAction", res.Kind())
	}
	if res.Error != "Unknown action: capture_screen. Available actions: connect, disconnect, mouse_click, key_press, type_text" {
		t.Errorf("error = %q", res.Error)
	}

	res = st.Execute(context.Background(), tool.Args{"action": "disconnect"})
	if !res.Success {
		t.Fatalf("disconnect failed: %s", res.Error)
	}
	res = st.Execute(context.Background(), tool.Args{"action": "connect", "host": "h"})
	if res.Kind() != tool.KindSessionClosed {
		t.Errorf("kind = %v, want KindSessionClosed", res.Kind())
	}
	if res.Error != "VNC session is closed and cannot be reopened." {
		t.Errorf("error = %q", res.Error)
	}
}
