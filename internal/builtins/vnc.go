// ABOUTME: VNC automation tools shelling out to the vncdotool CLI for mouse,
// ABOUTME: keyboard, and screen capture against a remote desktop.

package builtins

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/2389/toolbelt/internal/tool"
)

// vncProbePath receives the throwaway capture used to verify a connection.
const vncProbePath = "/tmp/vnc_connection_test.png"

// vncConnString renders host and port in vncdotool's display notation.
func vncConnString(host string, port int) string {
	switch {
	case port == 5900:
		return host
	case port > 5900:
		return fmt.Sprintf("%s:%d", host, port-5900)
	default:
		return fmt.Sprintf("%s::%d", host, port)
	}
}

func secondsDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

// vncRun executes one vncdotool subcommand. On success it returns the
// trimmed stdout; callers typically replace it with their own message.
func vncRun(ctx context.Context, conn, password string, timeout float64, cmdArgs ...string) (string, *tool.Result) {
	full := []string{"-s", conn}
	if password != "" {
		full = append(full, "-p", password)
	}
	full = append(full, cmdArgs...)

	res, err := runCommand(ctx, secondsDuration(timeout), "vncdotool", full...)
	if err != nil {
		return "", failp(tool.Failf("VNC command failed: %v", err))
	}
	if res.TimedOut {
		return "", failp(tool.FailWith(tool.KindTimedOut, "VNC command timed out after %g seconds", timeout))
	}
	if res.ExitCode != 0 {
		stderr := strings.TrimSpace(res.Stderr)
		if stderr == "" {
			stderr = "Command failed"
		}
		return "", failp(tool.Failf("VNC command failed: %s", stderr))
	}

	output := strings.TrimSpace(res.Stdout)
	if output == "" {
		output = "Command executed successfully"
	}
	return output, nil
}

// vncConnect verifies a server is reachable by capturing a probe image.
func vncConnect(ctx context.Context, host string, port int, password string, timeout float64) (string, *tool.Result) {
	conn := vncConnString(host, port)
	full := []string{"-s", conn}
	if password != "" {
		full = append(full, "-p", password)
	}
	full = append(full, "capture", vncProbePath)

	res, err := runCommand(ctx, secondsDuration(timeout), "vncdotool", full...)
	if err != nil {
		return "", failp(tool.Failf("Failed to connect to VNC server: %v", err))
	}
	if res.TimedOut {
		return "", failp(tool.FailWith(tool.KindTimedOut, "Connection to VNC server timed out after %g seconds", timeout))
	}
	if res.ExitCode != 0 {
		stderr := strings.TrimSpace(res.Stderr)
		if stderr == "" {
			stderr = "Connection failed"
		}
		return "", failp(tool.Failf("Failed to connect to VNC server: %s", stderr))
	}
	return conn, nil
}

// vncImageTag renders the screenshot embedding consumed by agent frontends.
// src carries the PNG bytes exactly as written to disk.
func vncImageTag(title, alt, display, include string, png []byte) string {
	return fmt.Sprintf(`<img title="%s" alt="%s" src="data:image/png;base64,%s" display="%s" include_in_next_call="%s">`,
		title, alt, base64.StdEncoding.EncodeToString(png), display, include)
}

// VNCTool drives a remote desktop through vncdotool. connect opens the
// session; disconnect closes it for good.
type VNCTool struct {
	state    tool.SessionState
	conn     string
	password string
}

var _ tool.Tool = (*VNCTool)(nil)

func NewVNCTool() *VNCTool {
	return &VNCTool{}
}

func (t *VNCTool) Name() string { return "vnc_computer" }

func (t *VNCTool) Description() string {
	return `A tool for VNC automation using reliable command-line vncdotool. Can control mouse, keyboard, and capture screenshots from VNC sessions.

SUPPORTED KEY MAPPINGS:
- Special keys: bsp, tab, return/enter, esc, ins, delete/del, home, end, pgup, pgdn
- Arrow keys: left, up, right, down
- Function keys: f1-f20
- Modifiers: lshift/shift, rshift, lctrl/ctrl, rctrl, lalt/alt, ralt, lmeta/meta, rmeta
- System keys: scrlk, sysrq, numlk, caplk, pause, lsuper/super, rsuper, lhyper/hyper, rhyper
- Keypad: kp0-kp9, kpenter
- Other: slash, bslash, fslash, spacebar/space/sb

KEY COMBINATIONS:
Use hyphens to combine keys: 'lctrl-c' (Ctrl+C), 'lalt-f2' (Alt+F2), 'lctrl-lalt-del' (Ctrl+Alt+Del)

EXAMPLES:
- Open run dialog: key='lalt-f2'
- Copy: key='lctrl-c'
- Paste: key='lctrl-v'
- Save: key='lctrl-s'
- Ctrl+Alt+Del: key='lctrl-lalt-del'
`
}

func (t *VNCTool) Schema() tool.Schema {
	return tool.Schema{
		{Name: "action", Type: tool.TypeString, Required: true, Description: "Action to perform: connect, disconnect, mouse_move, mouse_click, key_press, type_text, capture_screen, capture_region"},
		{Name: "host", Type: tool.TypeString, Description: "VNC server host (required for 'connect' action)"},
		{Name: "port", Type: tool.TypeInt, Default: 5900, Description: "VNC server port (default: 5900)"},
		{Name: "password", Type: tool.TypeString, Description: "VNC server password (optional)"},
		{Name: "x", Type: tool.TypeInt, Description: "X coordinate for mouse actions"},
		{Name: "y", Type: tool.TypeInt, Description: "Y coordinate for mouse actions"},
		{Name: "button", Type: tool.TypeInt, Default: 1, Description: "Mouse button (1=left, 2=middle, 3=right)"},
		{Name: "key", Type: tool.TypeString, Description: "Key to press (required for 'key_press' action). Supports single keys and combinations with hyphens. Examples: 'return', 'lalt-f2', 'lctrl-c', 'lctrl-lalt-del'. See tool description for full keymap."},
		{Name: "text", Type: tool.TypeString, Description: "Text to type (required for 'type_text' action)"},
		{Name: "filename", Type: tool.TypeString, Description: "Filename for screen capture (required for 'capture_screen' and 'capture_region' actions)"},
		{Name: "width", Type: tool.TypeInt, Description: "Width for region capture"},
		{Name: "height", Type: tool.TypeInt, Description: "Height for region capture"},
		{Name: "timeout", Type: tool.TypeFloat, Default: 15, Description: "Timeout for the VNC operation in seconds (default: 15)"},
		{Name: "title", Type: tool.TypeString, Default: "VNC Screenshot", Description: "Title attribute for the base64 image tag (used with capture_screen and capture_region)"},
		{Name: "alt_text", Type: tool.TypeString, Default: "VNC screen capture", Description: "Alt text for the base64 image tag (used with capture_screen and capture_region)"},
		{Name: "display", Type: tool.TypeString, Default: "true", Description: "Whether to display the screenshot (used with capture_screen and capture_region)"},
		{Name: "include_in_next_call", Type: tool.TypeString, Default: "true", Description: "Whether to include screenshot in next agent call (used with capture_screen and capture_region)"},
	}
}

func (t *VNCTool) Execute(ctx context.Context, args tool.Args) tool.Result {
	return tool.Complete(ctx, func(ctx context.Context) tool.Result {
		if t.state == tool.SessionClosed {
			return tool.FailWith(tool.KindSessionClosed, "VNC session is closed and cannot be reopened.")
		}

		timeout := args.Float("timeout", 15)

		switch action := args.String("action"); action {
		case "connect":
			host := args.String("host")
			if host == "" {
				return tool.FailWith(tool.KindMissingParameter, "host is required for connect action")
			}
			conn, fail := vncConnect(ctx, host, args.Int("port", 5900), args.String("password"), timeout)
			if fail != nil {
				return *fail
			}
			t.conn = conn
			t.password = args.String("password")
			t.state = tool.SessionOpen
			return tool.Okf("Successfully connected to VNC server at %s", conn)

		case "disconnect":
			t.state = tool.SessionClosed
			t.conn = ""
			t.password = ""
			return tool.Ok("Successfully disconnected from VNC server")

		case "mouse_move":
			if !args.Has("x") || !args.Has("y") {
				return tool.FailWith(tool.KindMissingParameter, "x and y coordinates are required for mouse_move action")
			}
			if fail := t.requireConn(); fail != nil {
				return *fail
			}
			return t.mouseMove(ctx, args.Int("x", 0), args.Int("y", 0), timeout)

		case "mouse_click":
			if !args.Has("x") || !args.Has("y") {
				return tool.FailWith(tool.KindMissingParameter, "x and y coordinates are required for mouse_click action")
			}
			if fail := t.requireConn(); fail != nil {
				return *fail
			}
			return t.mouseClick(ctx, args.Int("x", 0), args.Int("y", 0), args.Int("button", 1), timeout)

		case "key_press":
			key := args.String("key")
			if key == "" {
				return tool.FailWith(tool.KindMissingParameter, "key is required for key_press action")
			}
			if fail := t.requireConn(); fail != nil {
				return *fail
			}
			return t.keyPress(ctx, key, timeout)

		case "type_text":
			text := args.String("text")
			if text == "" {
				return tool.FailWith(tool.KindMissingParameter, "text is required for type_text action")
			}
			if fail := t.requireConn(); fail != nil {
				return *fail
			}
			return t.typeText(ctx, text, timeout)

		case "capture_screen":
			if args.String("filename") == "" {
				return tool.FailWith(tool.KindMissingParameter, "filename is required for capture_screen action")
			}
			if fail := t.requireConn(); fail != nil {
				return *fail
			}
			return t.captureScreen(ctx, args, timeout)

		case "capture_region":
			if !args.Has("x") || !args.Has("y") || !args.Has("width") || !args.Has("height") || args.String("filename") == "" {
				return tool.FailWith(tool.KindMissingParameter, "x, y, width, height, and filename are required for capture_region action")
			}
			if fail := t.requireConn(); fail != nil {
				return *fail
			}
			return t.captureRegion(ctx, args, timeout)

		default:
			return tool.FailWith(tool.KindInvalidAction,
				"Unknown action: %s. Available actions: connect, disconnect, mouse_move, mouse_click, key_press, type_text, capture_screen, capture_region", action)
		}
	})
}

func (t *VNCTool) requireConn() *tool.Result {
	if t.state != tool.SessionOpen {
		return failp(tool.FailWith(tool.KindNotOpen, "Not connected to VNC server. Use 'connect' action first."))
	}
	return nil
}

func (t *VNCTool) mouseMove(ctx context.Context, x, y int, timeout float64) tool.Result {
	if _, fail := vncRun(ctx, t.conn, t.password, timeout, "mousemove", strconv.Itoa(x), strconv.Itoa(y)); fail != nil {
		return *fail
	}
	return tool.Okf("Mouse moved to (%d, %d)", x, y)
}

func (t *VNCTool) mouseClick(ctx context.Context, x, y, button int, timeout float64) tool.Result {
	if _, fail := vncRun(ctx, t.conn, t.password, timeout, "mousemove", strconv.Itoa(x), strconv.Itoa(y)); fail != nil {
		return *fail
	}
	if _, fail := vncRun(ctx, t.conn, t.password, timeout, "click", strconv.Itoa(button)); fail != nil {
		return *fail
	}
	return tool.Okf("Mouse clicked at (%d, %d) with button %d", x, y, button)
}

func (t *VNCTool) keyPress(ctx context.Context, key string, timeout float64) tool.Result {
	if _, fail := vncRun(ctx, t.conn, t.password, timeout, "key", key); fail != nil {
		return *fail
	}
	return tool.Okf("Key '%s' pressed", key)
}

func (t *VNCTool) typeText(ctx context.Context, text string, timeout float64) tool.Result {
	if _, fail := vncRun(ctx, t.conn, t.password, timeout, "type", text); fail != nil {
		return *fail
	}
	return tool.Okf("Typed text: %s", text)
}

func (t *VNCTool) captureScreen(ctx context.Context, args tool.Args, timeout float64) tool.Result {
	filename := args.String("filename")
	if _, fail := vncRun(ctx, t.conn, t.password, timeout, "capture", filename); fail != nil {
		return *fail
	}

	prefix := fmt.Sprintf("Screen captured and saved to %s", filename)
	title := args.StringOr("title", "VNC Screenshot")
	alt := args.StringOr("alt_text", "VNC screen capture")
	return captureResult(prefix, filename, title, alt, args)
}

func (t *VNCTool) captureRegion(ctx context.Context, args tool.Args, timeout float64) tool.Result {
	filename := args.String("filename")
	if _, fail := vncRun(ctx, t.conn, t.password, timeout, "capture", filename); fail != nil {
		return *fail
	}

	prefix := fmt.Sprintf("Screen captured to %s (Note: vncdotool command-line doesn't support region capture, full screen captured instead)", filename)
	title := args.StringOr("title", "VNC Region Screenshot")
	alt := args.StringOr("alt_text", fmt.Sprintf("VNC region capture at (%d,%d) %dx%d",
		args.Int("x", 0), args.Int("y", 0), args.Int("width", 0), args.Int("height", 0)))
	return captureResult(prefix, filename, title, alt, args)
}

// captureResult reads the PNG back and appends the img tag. A read failure
// is a partial success: the capture is on disk even if it cannot be inlined.
func captureResult(prefix, filename, title, alt string, args tool.Args) tool.Result {
	png, err := os.ReadFile(filename)
	if err != nil {
		return tool.Okf("%s (base64 encoding failed: %v)", prefix, err).WithKind(tool.KindEncodingFailure)
	}

	display := args.StringOr("display", "true")
	include := args.StringOr("include_in_next_call", "true")
	return tool.Ok(prefix + "\n" + vncImageTag(title, alt, display, include, png))
}

// SimpleVNCTool covers the common VNC operations with the same session
// rules as the full tool.
type SimpleVNCTool struct {
	state    tool.SessionState
	conn     string
	password string
}

var _ tool.Tool = (*SimpleVNCTool)(nil)

func NewSimpleVNCTool() *SimpleVNCTool {
	return &SimpleVNCTool{}
}

func (t *SimpleVNCTool) Name() string { return "simple_vnc_computer" }

func (t *SimpleVNCTool) Description() string {
	return "A simplified VNC automation tool using reliable command-line vncdotool for basic operations."
}

func (t *SimpleVNCTool) Schema() tool.Schema {
	return tool.Schema{
		{Name: "action", Type: tool.TypeString, Required: true, Description: "Action to perform: connect, disconnect, mouse_click, key_press, type_text"},
		{Name: "host", Type: tool.TypeString, Description: "VNC server host (required for 'connect' action)"},
		{Name: "port", Type: tool.TypeInt, Default: 5900, Description: "VNC server port (default: 5900)"},
		{Name: "password", Type: tool.TypeString, Description: "VNC server password (optional)"},
		{Name: "x", Type: tool.TypeInt, Description: "X coordinate for mouse actions"},
		{Name: "y", Type: tool.TypeInt, Description: "Y coordinate for mouse actions"},
		{Name: "key", Type: tool.TypeString, Description: "Key to press (required for 'key_press' action)"},
		{Name: "text", Type: tool.TypeString, Description: "Text to type (required for 'type_text' action)"},
		{Name: "timeout", Type: tool.TypeFloat, Default: 10, Description: "Timeout for the VNC operation in seconds (default: 10)"},
	}
}

func (t *SimpleVNCTool) Execute(ctx context.Context, args tool.Args) tool.Result {
	return tool.Complete(ctx, func(ctx context.Context) tool.Result {
		if t.state == tool.SessionClosed {
			return tool.FailWith(tool.KindSessionClosed, "VNC session is closed and cannot be reopened.")
		}

		timeout := args.Float("timeout", 10)

		switch action := args.String("action"); action {
		case "connect":
			host := args.String("host")
			if host == "" {
				return tool.FailWith(tool.KindMissingParameter, "host is required for connect action")
			}
			conn, fail := vncConnect(ctx, host, args.Int("port", 5900), args.String("password"), timeout)
			if fail != nil {
				return *fail
			}
			t.conn = conn
			t.password = args.String("password")
			t.state = tool.SessionOpen
			return tool.Okf("Successfully connected to VNC server at %s", conn)

		case "disconnect":
			t.state = tool.SessionClosed
			t.conn = ""
			t.password = ""
			return tool.Ok("Successfully disconnected from VNC server")

		case "mouse_click":
			if !args.Has("x") || !args.Has("y") {
				return tool.FailWith(tool.KindMissingParameter, "x and y coordinates are required for mouse_click action")
			}
			if fail := t.requireConn(); fail != nil {
				return *fail
			}
			x, y := args.Int("x", 0), args.Int("y", 0)
			if _, fail := vncRun(ctx, t.conn, t.password, timeout, "mousemove", strconv.Itoa(x), strconv.Itoa(y)); fail != nil {
				return *fail
			}
			if _, fail := vncRun(ctx, t.conn, t.password, timeout, "click", "1"); fail != nil {
				return *fail
			}
			return tool.Okf("Mouse clicked at (%d, %d) with button 1", x, y)

		case "key_press":
			key := args.String("key")
			if key == "" {
				return tool.FailWith(tool.KindMissingParameter, "key is required for key_press action")
			}
			if fail := t.requireConn(); fail != nil {
				return *fail
			}
			if _, fail := vncRun(ctx, t.conn, t.password, timeout, "key", key); fail != nil {
				return *fail
			}
			return tool.Okf("Key '%s' pressed", key)

		case "type_text":
			text := args.String("text")
			if text == "" {
				return tool.FailWith(tool.KindMissingParameter, "text is required for type_text action")
			}
			if fail := t.requireConn(); fail != nil {
				return *fail
			}
			if _, fail := vncRun(ctx, t.conn, t.password, timeout, "type", text); fail != nil {
				return *fail
			}
			return tool.Okf("Typed text: %s", text)

		default:
			return tool.FailWith(tool.KindInvalidAction,
				"Unknown action: %s. Available actions: connect, disconnect, mouse_click, key_press, type_text", action)
		}
	})
}

func (t *SimpleVNCTool) requireConn() *tool.Result {
	if t.state != tool.SessionOpen {
		return failp(tool.FailWith(tool.KindNotOpen, "Not connected to VNC server. Use 'connect' action first."))
	}
	return nil
}
