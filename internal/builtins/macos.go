// ABOUTME: macOS automation tools driving osascript and screencapture.
// ABOUTME: UI element actions address System Events accessibility elements by index.

package builtins

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/2389/toolbelt/internal/tool"
)

// macosCommandTimeout bounds every osascript run; scripts can hang behind
// accessibility permission prompts.
const macosCommandTimeout = 30 * time.Second

// uiTreeScript lists the front window's elements one per line, numbered so
// element actions can address them by index.
const uiTreeScript = `tell application "System Events"
	tell (first application process whose unix id is %d)
		set elems to entire contents of front window
		set out to ""
		repeat with i from 1 to count of elems
			set e to item i of elems
			set out to out & i & ": " & (class of e as string)
			try
				set t to (title of e) as string
				if t is not "" then set out to out & " " & t
			end try
			set out to out & linefeed
		end repeat
		return out
	end tell
end tell`

const clickElementScript = `tell application "System Events"
	tell (first application process whose unix id is %d)
		set elems to entire contents of front window
		perform action %s of item %d of elems
	end tell
end tell`

const inputTextScript = `tell application "System Events"
	tell (first application process whose unix id is %d)
		set elems to entire contents of front window
		set value of item %d of elems to %s
	end tell%s
end tell`

const scrollElementScript = `tell application "System Events"
	tell (first application process whose unix id is %d)
		set elems to entire contents of front window
		set focused of item %d of elems to true
	end tell
	key code %d
end tell`

// MacOSTool automates macOS applications through AppleScript and System
// Events. Element actions require an app opened with open_app first; close
// is terminal.
type MacOSTool struct {
	state tool.SessionState
	pid   int
}

var _ tool.Tool = (*MacOSTool)(nil)

func NewMacOSTool() *MacOSTool {
	return &MacOSTool{}
}

func (t *MacOSTool) Name() string { return "macos" }

func (t *MacOSTool) Description() string {
	return "A tool for macOS automation. Can open apps, interact with UI elements, take screenshots, run AppleScript, and automate macOS applications."
}

func (t *MacOSTool) Schema() tool.Schema {
	return tool.Schema{
		{Name: "action", Type: tool.TypeString, Required: true, Description: "Action to perform: open_app, get_ui_tree, click_element, input_text, right_click, scroll, run_applescript, screenshot, close"},
		{Name: "app_name", Type: tool.TypeString, Description: "Name of the app to open (required for 'open_app' action)"},
		{Name: "element_index", Type: tool.TypeInt, Description: "Index of UI element to interact with (required for click_element, input_text, right_click, scroll actions)"},
		{Name: "text", Type: tool.TypeString, Description: "Text to input (required for 'input_text' action)"},
		{Name: "submit", Type: tool.TypeBool, Default: false, Description: "Whether to submit after text input (for 'input_text' action)"},
		{Name: "click_action", Type: tool.TypeString, Default: "AXPress", Description: "Type of click action: AXPress, AXClick, AXOpen, AXConfirm, AXShowMenu (for 'click_element' action)"},
		{Name: "scroll_direction", Type: tool.TypeString, Default: "down", Description: "Direction to scroll: up, down, left, right (for 'scroll' action)"},
		{Name: "script", Type: tool.TypeString, Description: "AppleScript code to execute (required for 'run_applescript' action)"},
	}
}

func (t *MacOSTool) Execute(ctx context.Context, args tool.Args) tool.Result {
	return tool.Complete(ctx, func(ctx context.Context) tool.Result {
		if t.state == tool.SessionClosed {
			return tool.FailWith(tool.KindSessionClosed, "macOS session is closed and cannot be reopened.")
		}

		action := args.String("action")
		switch action {
		case "open_app":
			app := args.String("app_name")
			if app == "" {
				return tool.FailWith(tool.KindMissingParameter, "app_name is required for open_app action")
			}
			return t.openApp(ctx, app)
		case "get_ui_tree":
			if res, ok := t.requireOpen(); !ok {
				return res
			}
			return t.uiTree(ctx)
		case "click_element":
			if res, ok := t.requireOpen(); !ok {
				return res
			}
			if !args.Has("element_index") {
				return tool.FailWith(tool.KindMissingParameter, "element_index is required for click_element action")
			}
			return t.clickElement(ctx, args.Int("element_index", 0), args.StringOr("click_action", "AXPress"))
		case "input_text":
			if res, ok := t.requireOpen(); !ok {
				return res
			}
			if !args.Has("element_index") || args.String("text") == "" {
				return tool.FailWith(tool.KindMissingParameter, "element_index and text are required for input_text action")
			}
			return t.inputText(ctx, args.Int("element_index", 0), args.String("text"), args.Bool("submit", false))
		case "right_click":
			if res, ok := t.requireOpen(); !ok {
				return res
			}
			if !args.Has("element_index") {
				return tool.FailWith(tool.KindMissingParameter, "element_index is required for right_click action")
			}
			return t.rightClick(ctx, args.Int("element_index", 0))
		case "scroll":
			if res, ok := t.requireOpen(); !ok {
				return res
			}
			if !args.Has("element_index") {
				return tool.FailWith(tool.KindMissingParameter, "element_index is required for scroll action")
			}
			return t.scrollElement(ctx, args.Int("element_index", 0), args.StringOr("scroll_direction", "down"))
		case "run_applescript":
			script := args.String("script")
			if script == "" {
				return tool.FailWith(tool.KindMissingParameter, "script is required for run_applescript action")
			}
			return t.runScript(ctx, script)
		case "screenshot":
			return t.screenshot(ctx)
		case "close":
			t.state = tool.SessionClosed
			t.pid = 0
			return tool.Ok("macOS session closed successfully")
		default:
			return tool.FailWith(tool.KindInvalidAction, "Unknown action: %s", action)
		}
	})
}

// requireOpen gates element actions on an opened app.
func (t *MacOSTool) requireOpen() (tool.Result, bool) {
	if t.state != tool.SessionOpen {
		return tool.FailWith(tool.KindNotOpen, "No app is currently open. Use 'open_app' action first."), false
	}
	return tool.Result{}, true
}

func (t *MacOSTool) openApp(ctx context.Context, app string) tool.Result {
	script := fmt.Sprintf("tell application %s to activate", appleScriptString(app))
	res, err := runAppleScript(ctx, script)
	if err != nil {
		return tool.Failf("Failed to open app '%s': %v", app, err)
	}
	if res.ExitCode != 0 {
		return tool.Failf("Failed to open app '%s': %s", app, strings.TrimSpace(res.Stderr))
	}

	t.state = tool.SessionOpen
	t.pid = lookupAppPID(ctx, app)
	return tool.Okf("Opened app '%s' successfully using AppleScript", app)
}

// lookupAppPID asks System Events for the unix pid of the app's process.
// Returns 0 when the process cannot be resolved; the ui tree action reports
// the failure then.
func lookupAppPID(ctx context.Context, app string) int {
	script := fmt.Sprintf(
		`tell application "System Events" to get unix id of first application process whose name is %s`,
		appleScriptString(app))
	res, err := runAppleScript(ctx, script)
	if err != nil || res.ExitCode != 0 {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(res.Stdout))
	if err != nil {
		return 0
	}
	return pid
}

func (t *MacOSTool) uiTree(ctx context.Context) tool.Result {
	if t.pid == 0 {
		return tool.Fail("Failed to build UI tree. App may have been closed.")
	}
	res, err := runAppleScript(ctx, fmt.Sprintf(uiTreeScript, t.pid))
	if err != nil || res.ExitCode != 0 {
		return tool.Fail("Failed to build UI tree. App may have been closed.")
	}
	return tool.Okf("UI Tree for PID %d:\n%s", t.pid, strings.TrimRight(res.Stdout, "\n"))
}

func (t *MacOSTool) clickElement(ctx context.Context, index int, clickAction string) tool.Result {
	script := fmt.Sprintf(clickElementScript, t.pid, appleScriptString(clickAction), index)
	res, err := runAppleScript(ctx, script)
	if err != nil {
		return tool.Failf("Failed to click element %d: %v", index, err)
	}
	if res.ExitCode != 0 {
		return tool.Failf("Failed to click element %d: %s", index, strings.TrimSpace(res.Stderr))
	}
	return tool.Okf("Successfully clicked element %d", index)
}

func (t *MacOSTool) inputText(ctx context.Context, index int, text string, submit bool) tool.Result {
	submitLine := ""
	if submit {
		submitLine = "\n\tkeystroke return"
	}
	script := fmt.Sprintf(inputTextScript, t.pid, index, appleScriptString(text), submitLine)
	res, err := runAppleScript(ctx, script)
	if err != nil {
		return tool.Failf("Failed to input text into element %d: %v", index, err)
	}
	if res.ExitCode != 0 {
		return tool.Failf("Failed to input text into element %d: %s", index, strings.TrimSpace(res.Stderr))
	}
	return tool.Okf("Successfully input text into element %d", index)
}

func (t *MacOSTool) rightClick(ctx context.Context, index int) tool.Result {
	script := fmt.Sprintf(clickElementScript, t.pid, appleScriptString("AXShowMenu"), index)
	res, err := runAppleScript(ctx, script)
	if err != nil {
		return tool.Failf("Failed to right-click element %d: %v", index, err)
	}
	if res.ExitCode != 0 {
		return tool.Failf("Failed to right-click element %d: %s", index, strings.TrimSpace(res.Stderr))
	}
	return tool.Okf("Successfully right-clicked element %d", index)
}

func (t *MacOSTool) scrollElement(ctx context.Context, index int, direction string) tool.Result {
	var keyCode int
	switch direction {
	case "down":
		keyCode = 125
	case "up":
		keyCode = 126
	case "left":
		keyCode = 123
	case "right":
		keyCode = 124
	default:
		return tool.Failf("Invalid scroll direction: %s", direction)
	}

	script := fmt.Sprintf(scrollElementScript, t.pid, index, keyCode)
	res, err := runAppleScript(ctx, script)
	if err != nil {
		return tool.Failf("Failed to scroll element %d: %v", index, err)
	}
	if res.ExitCode != 0 {
		return tool.Failf("Failed to scroll element %d: %s", index, strings.TrimSpace(res.Stderr))
	}
	return tool.Okf("Successfully scrolled element %d %s", index, direction)
}

func (t *MacOSTool) runScript(ctx context.Context, script string) tool.Result {
	res, err := runAppleScript(ctx, script)
	if err != nil {
		return tool.Failf("AppleScript failed: %v", err)
	}
	if res.ExitCode != 0 {
		return tool.Failf("AppleScript failed: %s", strings.TrimSpace(res.Stderr))
	}
	return tool.Okf("AppleScript executed successfully: %s", strings.TrimSpace(res.Stdout))
}

func (t *MacOSTool) screenshot(ctx context.Context) tool.Result {
	home, err := os.UserHomeDir()
	if err != nil {
		return tool.Failf("Failed to take screenshot: %v", err)
	}
	path := filepath.Join(home, "Desktop", "screenshot_"+time.Now().Format("2006-01-02_15-04-05")+".png")

	res, err := runCommand(ctx, macosCommandTimeout, "screencapture", "-x", path)
	if err != nil {
		return tool.Failf("Failed to take screenshot: %v", err)
	}
	if res.ExitCode != 0 {
		return tool.Failf("Failed to take screenshot: %s", strings.TrimSpace(res.Stderr))
	}
	return tool.Okf("Screenshot saved: %s", path)
}

func runAppleScript(ctx context.Context, script string) (*commandResult, error) {
	return runCommand(ctx, macosCommandTimeout, "osascript", "-e", script)
}

// appleScriptString renders s as an AppleScript string literal.
func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// SimpleMacOSTool covers app launching and AppleScript without the
// accessibility element machinery.
type SimpleMacOSTool struct{}

var _ tool.Tool = (*SimpleMacOSTool)(nil)

func NewSimpleMacOSTool() *SimpleMacOSTool {
	return &SimpleMacOSTool{}
}

func (t *SimpleMacOSTool) Name() string { return "simple_macos" }

func (t *SimpleMacOSTool) Description() string {
	return "A simplified macOS automation tool. Provides basic app launching and AppleScript execution."
}

func (t *SimpleMacOSTool) Schema() tool.Schema {
	return tool.Schema{
		{Name: "action", Type: tool.TypeString, Required: true, Description: "Action to perform: open_app, run_applescript"},
		{Name: "app_name", Type: tool.TypeString, Description: "Name of the app to open (required for 'open_app' action)"},
		{Name: "script", Type: tool.TypeString, Description: "AppleScript code to execute (required for 'run_applescript' action)"},
	}
}

func (t *SimpleMacOSTool) Execute(ctx context.Context, args tool.Args) tool.Result {
	return tool.Complete(ctx, func(ctx context.Context) tool.Result {
		switch action := args.String("action"); action {
		case "open_app":
			app := args.String("app_name")
			if app == "" {
				return tool.FailWith(tool.KindMissingParameter, "app_name is required for open_app action")
			}
			script := fmt.Sprintf("tell application %s to activate", appleScriptString(app))
			res, err := runAppleScript(ctx, script)
			if err != nil {
				return tool.Failf("Failed to open %s: %v", app, err)
			}
			if res.ExitCode != 0 {
				return tool.Failf("Failed to open %s: %s", app, strings.TrimSpace(res.Stderr))
			}
			return tool.Okf("Successfully opened %s", app)
		case "run_applescript":
			script := args.String("script")
			if script == "" {
				return tool.FailWith(tool.KindMissingParameter, "script is required for run_applescript action")
			}
			res, err := runAppleScript(ctx, script)
			if err != nil {
				return tool.Failf("AppleScript execution failed: %v", err)
			}
			if res.ExitCode != 0 {
				return tool.Failf("AppleScript failed: %s", strings.TrimSpace(res.Stderr))
			}
			return tool.Okf("AppleScript executed successfully: %s", strings.TrimSpace(res.Stdout))
		default:
			return tool.FailWith(tool.KindInvalidAction,
				"Unknown action: %s. Available actions: open_app, run_applescript", action)
		}
	})
}
