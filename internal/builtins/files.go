// ABOUTME: File tools: a view/create/str_replace/undo_edit editor plus
// ABOUTME: plain reader and writer tools. The editor keeps a 10-deep undo stack per path.

package builtins

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/2389/toolbelt/internal/tool"
)

// maxUndoStates caps retained prior file states per path.
const maxUndoStates = 10

// FileEditorTool edits files through a fixed command set and remembers
// prior file contents for undo.
type FileEditorTool struct {
	states map[string][]string
}

var _ tool.Tool = (*FileEditorTool)(nil)

func NewFileEditorTool() *FileEditorTool {
	return &FileEditorTool{states: make(map[string][]string)}
}

func (t *FileEditorTool) Name() string { return "file_editor" }

func (t *FileEditorTool) Description() string {
	return "A tool for viewing and editing files. Can create, read, write files and perform string replacements."
}

func (t *FileEditorTool) Schema() tool.Schema {
	return tool.Schema{
		{Name: "command", Type: tool.TypeString, Required: true, Description: "The command to execute. One of: view, create, str_replace, undo_edit"},
		{Name: "path", Type: tool.TypeString, Required: true, Description: "Absolute path to file"},
		{Name: "file_text", Type: tool.TypeString, Description: "Required for 'create' command. Text content to write to file."},
		{Name: "old_str", Type: tool.TypeString, Description: "Required for 'str_replace' command. String to be replaced."},
		{Name: "new_str", Type: tool.TypeString, Description: "Required for 'str_replace' command. String to replace with."},
		{Name: "view_range", Type: tool.TypeString, Description: "Optional for 'view' command. Range of lines to view, e.g., '[1, 50]'"},
	}
}

func (t *FileEditorTool) Execute(ctx context.Context, args tool.Args) tool.Result {
	return tool.Complete(ctx, func(ctx context.Context) tool.Result {
		if !args.Has("path") {
			return tool.FailWith(tool.KindMissingParameter, "path is required")
		}
		path, err := filepath.Abs(args.String("path"))
		if err != nil {
			return tool.Failf("File editor error: %v", err)
		}

		command := args.String("command")
		switch command {
		case "view":
			return t.view(path, args)
		case "create":
			if !args.Has("file_text") {
				return tool.FailWith(tool.KindMissingParameter, "file_text is required for create command")
			}
			return t.create(path, args.String("file_text"))
		case "str_replace":
			if !args.Has("old_str") || !args.Has("new_str") {
				return tool.FailWith(tool.KindMissingParameter, "old_str and new_str are required for str_replace command")
			}
			return t.strReplace(path, args.String("old_str"), args.String("new_str"))
		case "undo_edit":
			return t.undo(path)
		default:
			return tool.FailWith(tool.KindInvalidAction,
				"Unknown command: %s. Use view, create, str_replace, or undo_edit", command)
		}
	})
}

func (t *FileEditorTool) view(path string, args tool.Args) tool.Result {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return tool.FailWith(tool.KindNotFound, "File not found: %s", path)
	}
	if err != nil {
		return tool.Failf("Error viewing file: %v", err)
	}

	lines := splitKeepEnds(string(data))
	header := fmt.Sprintf("Here's the result of running `view` on %s:", path)

	if args.Has("view_range") {
		if start, end, ok := parseViewRange(args, "view_range"); ok {
			if start < 1 {
				start = 1
			}
			if end > len(lines) {
				end = len(lines)
			}
			if start <= end {
				lines = lines[start-1 : end]
			} else {
				lines = nil
			}
			header = fmt.Sprintf("Here's the result of running `view` on %s (lines %d-%d):", path, start, end)
		}
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	for i, line := range lines {
		// Line numbering restarts at 1 for ranged views
		fmt.Fprintf(&b, "%6d|%s", i+1, line)
	}
	return tool.Ok(b.String())
}

func (t *FileEditorTool) create(path, fileText string) tool.Result {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return tool.Failf("Error creating file: %v", err)
	}
	if _, err := os.Stat(path); err == nil {
		return tool.Failf("File already exists: %s. Use str_replace to edit.", path)
	}
	if err := os.WriteFile(path, []byte(fileText), 0644); err != nil {
		return tool.Failf("Error creating file: %v", err)
	}
	return tool.Okf("File created successfully at %s", path)
}

func (t *FileEditorTool) strReplace(path, oldStr, newStr string) tool.Result {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return tool.FailWith(tool.KindNotFound, "File not found: %s", path)
	}

	t.saveState(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return tool.Failf("Error replacing string: %v", err)
	}
	content := string(data)

	count := strings.Count(content, oldStr)
	if count == 0 {
		return tool.Failf("String not found in file: %s", oldStr)
	}
	if count > 1 {
		return tool.Failf("Multiple occurrences found (%d). Please be more specific.", count)
	}

	if err := os.WriteFile(path, []byte(strings.Replace(content, oldStr, newStr, 1)), 0644); err != nil {
		return tool.Failf("Error replacing string: %v", err)
	}
	return tool.Okf("String replaced successfully in %s", path)
}

func (t *FileEditorTool) undo(path string) tool.Result {
	states := t.states[path]
	if len(states) == 0 {
		return tool.Failf("No previous state found for %s", path)
	}

	previous := states[len(states)-1]
	t.states[path] = states[:len(states)-1]

	if err := os.WriteFile(path, []byte(previous), 0644); err != nil {
		return tool.Failf("Error undoing edit: %v", err)
	}
	return tool.Okf("Undid last edit to %s", path)
}

// saveState snapshots the current contents for undo; a state is pushed
// even when the following edit ends up failing.
func (t *FileEditorTool) saveState(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	states := append(t.states[path], string(data))
	if len(states) > maxUndoStates {
		states = states[1:]
	}
	t.states[path] = states
}

// splitKeepEnds splits content into lines that keep their trailing newline,
// matching how readers count and render file lines.
func splitKeepEnds(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// parseViewRange accepts "[1, 50]", "1,50", or a JSON-decoded two-int list.
func parseViewRange(args tool.Args, key string) (start, end int, ok bool) {
	if ints := args.Ints(key); len(ints) == 2 {
		return ints[0], ints[1], true
	}
	raw := strings.Trim(strings.TrimSpace(args.String(key)), "[]")
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	start, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	end, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return start, end, true
}

// FileReaderTool reads one file and returns its raw contents.
type FileReaderTool struct{}

var _ tool.Tool = (*FileReaderTool)(nil)

func NewFileReaderTool() *FileReaderTool {
	return &FileReaderTool{}
}

func (t *FileReaderTool) Name() string        { return "file_reader" }
func (t *FileReaderTool) Description() string { return "Read the contents of a file" }

func (t *FileReaderTool) Schema() tool.Schema {
	return tool.Schema{
		{Name: "path", Type: tool.TypeString, Required: true, Description: "Path to the file to read"},
	}
}

func (t *FileReaderTool) Execute(ctx context.Context, args tool.Args) tool.Result {
	return tool.Complete(ctx, func(ctx context.Context) tool.Result {
		if !args.Has("path") {
			return tool.FailWith(tool.KindMissingParameter, "path is required")
		}
		path := args.String("path")

		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			return tool.FailWith(tool.KindNotFound, "File not found: %s", path)
		}
		if err != nil {
			return tool.Failf("Error reading file: %v", err)
		}
		return tool.Ok(string(data))
	})
}

// FileWriterTool writes content to a file, creating parent directories.
type FileWriterTool struct{}

var _ tool.Tool = (*FileWriterTool)(nil)

func NewFileWriterTool() *FileWriterTool {
	return &FileWriterTool{}
}

func (t *FileWriterTool) Name() string        { return "file_writer" }
func (t *FileWriterTool) Description() string { return "Write content to a file" }

func (t *FileWriterTool) Schema() tool.Schema {
	return tool.Schema{
		{Name: "path", Type: tool.TypeString, Required: true, Description: "Path to the file to write"},
		{Name: "content", Type: tool.TypeString, Required: true, Description: "Content to write to the file"},
	}
}

func (t *FileWriterTool) Execute(ctx context.Context, args tool.Args) tool.Result {
	return tool.Complete(ctx, func(ctx context.Context) tool.Result {
		if !args.Has("path") || !args.Has("content") {
			return tool.FailWith(tool.KindMissingParameter, "path and content are required")
		}
		path := args.String("path")

		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return tool.Failf("Error writing file: %v", err)
		}
		if err := os.WriteFile(path, []byte(args.String("content")), 0644); err != nil {
			return tool.Failf("Error writing file: %v", err)
		}
		return tool.Okf("Successfully wrote to %s", path)
	})
}
