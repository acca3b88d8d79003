// ABOUTME: One-shot Python execution tools backed by a python3 subprocess.
// ABOUTME: The safe variant screens code for restricted modules and callables first.

package builtins

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/2389/toolbelt/internal/tool"
)

// PythonExecutorTool runs a code string through `python3 -c` with a timeout.
type PythonExecutorTool struct{}

var _ tool.Tool = (*PythonExecutorTool)(nil)

func NewPythonExecutorTool() *PythonExecutorTool {
	return &PythonExecutorTool{}
}

func (t *PythonExecutorTool) Name() string { return "python_executor" }

func (t *PythonExecutorTool) Description() string {
	return "Executes Python code string. Note: Only print outputs are visible, function return values are not captured. Use print statements to see results."
}

func (t *PythonExecutorTool) Schema() tool.Schema {
	return tool.Schema{
		{Name: "code", Type: tool.TypeString, Required: true, Description: "The Python code to execute."},
		{Name: "timeout", Type: tool.TypeInt, Default: 30, Description: "Execution timeout in seconds. Default is 30."},
	}
}

func (t *PythonExecutorTool) Execute(ctx context.Context, args tool.Args) tool.Result {
	return tool.Complete(ctx, func(ctx context.Context) tool.Result {
		return runPython(ctx, args, "Python execution failed: %v")
	})
}

// runPython is shared by both executor variants; failPrefix formats the
// spawn-failure message.
func runPython(ctx context.Context, args tool.Args, failFormat string) tool.Result {
	if !args.Has("code") {
		return tool.FailWith(tool.KindMissingParameter, "code is required")
	}
	code := args.String("code")
	seconds := args.Int("timeout", 30)

	res, err := runCommand(ctx, time.Duration(seconds)*time.Second, "python3", "-c", code)
	if err != nil {
		return tool.Failf(failFormat, err)
	}

	if res.TimedOut {
		r := tool.FailWith(tool.KindTimedOut, "Code execution timed out after %d seconds", seconds)
		r.Output = fmt.Sprintf("Execution timeout after %d seconds", seconds)
		return r
	}

	if res.ExitCode != 0 {
		return tool.Fail(strings.TrimSuffix(res.Stderr, "\n"))
	}

	output := res.Stdout
	if output == "" {
		output = "Code executed successfully (no output)"
	}
	return tool.Ok(output)
}

// Restricted names for the safe executor. Matching is substring-based on
// "import X" / "from X" for modules and the bare name for callables.
var (
	restrictedModules = []string{
		"os", "sys", "subprocess", "shutil", "glob", "pickle", "marshal",
		"importlib", "__import__", "eval", "exec", "compile", "open",
	}
	restrictedFunctions = []string{
		"eval", "exec", "compile", "__import__", "open", "input", "raw_input",
	}
)

// SafePythonExecutorTool is PythonExecutorTool with a pre-execution screen
// that rejects code touching restricted modules or callables.
type SafePythonExecutorTool struct{}

var _ tool.Tool = (*SafePythonExecutorTool)(nil)

func NewSafePythonExecutorTool() *SafePythonExecutorTool {
	return &SafePythonExecutorTool{}
}

func (t *SafePythonExecutorTool) Name() string { return "safe_python_executor" }

func (t *SafePythonExecutorTool) Description() string {
	return "Executes Python code with safety restrictions. Certain dangerous operations and imports are blocked."
}

func (t *SafePythonExecutorTool) Schema() tool.Schema {
	return tool.Schema{
		{Name: "code", Type: tool.TypeString, Required: true, Description: "The Python code to execute."},
		{Name: "timeout", Type: tool.TypeInt, Default: 30, Description: "Execution timeout in seconds. Default is 30."},
	}
}

func (t *SafePythonExecutorTool) Execute(ctx context.Context, args tool.Args) tool.Result {
	return tool.Complete(ctx, func(ctx context.Context) tool.Result {
		if args.Has("code") {
			if res, blocked := screenPythonCode(args.String("code")); blocked {
				return res
			}
		}
		return runPython(ctx, args, "Safe Python execution failed: %v")
	})
}

// screenPythonCode reports the first restricted module or callable found.
func screenPythonCode(code string) (tool.Result, bool) {
	for _, m := range restrictedModules {
		if strings.Contains(code, "import "+m) || strings.Contains(code, "from "+m) {
			return tool.Failf("Restricted module '%s' is not allowed", m), true
		}
	}
	for _, f := range restrictedFunctions {
		if strings.Contains(code, f) {
			return tool.Failf("Restricted function '%s' is not allowed", f), true
		}
	}
	return tool.Result{}, false
}
