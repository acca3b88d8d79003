// ABOUTME: Tests for the file editor, reader, and writer tools.
// ABOUTME: All file operations run inside t.TempDir.

package builtins

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/2389/toolbelt/internal/tool"
)

func TestFileEditorCreateAndView(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	ed := NewFileEditorTool()

	res := ed.Execute(context.Background(), tool.Args{
		"command":   "create",
		"path":      path,
		"file_text": "alpha\nbeta\n",
	})
	if !res.Success {
		t.Fatalf("create failed: %s", res.Error)
	}
	if !strings.Contains(res.Output, "File created successfully at") {
		t.Errorf("output = %q", res.Output)
	}

	res = ed.Execute(context.Background(), tool.Args{"command": "view", "path": path})
	if !res.Success {
		t.Fatalf("view failed: %s", res.Error)
	}
	if !strings.Contains(res.Output, "1|alpha") || !strings.Contains(res.Output, "2|beta") {
		t.Errorf("view output missing numbered lines:\n%s", res.Output)
	}
}

func TestFileEditorCreateRefusesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dup.txt")
	ed := NewFileEditorTool()

	args := tool.Args{"command": "create", "path": path, "file_text": "x"}
	if res := ed.Execute(context.Background(), args); !res.Success {
		t.Fatalf("first create failed: %s", res.Error)
	}
	res := ed.Execute(context.Background(), args)
	if res.Success {
		t.Fatal("expected failure creating existing file")
	}
	if !strings.Contains(res.Error, "File already exists") {
		t.Errorf("error = %q", res.Error)
	}
}

func TestFileEditorViewRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranged.txt")
	if err := os.WriteFile(path, []byte("one\ntwo\nthree\nfour\nfive\n"), 0644); err != nil {
		t.Fatal(err)
	}

	res := NewFileEditorTool().Execute(context.Background(), tool.Args{
		"command":    "view",
		"path":       path,
		"view_range": "[2, 4]",
	})
	if !res.Success {
		t.Fatalf("view failed: %s", res.Error)
	}
	if !strings.Contains(res.Output, "(lines 2-4)") {
		t.Errorf("header missing range:\n%s", res.Output)
	}
	if !strings.Contains(res.Output, "1|two") || !strings.Contains(res.Output, "3|four") {
		t.Errorf("ranged lines renumber from 1:\n%s", res.Output)
	}
	if strings.Contains(res.Output, "five") {
		t.Errorf("line outside range included:\n%s", res.Output)
	}
}

func TestFileEditorStrReplace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "code.txt")
	if err := os.WriteFile(path, []byte("hello world\n"), 0644); err != nil {
		t.Fatal(err)
	}
	ed := NewFileEditorTool()

	res := ed.Execute(context.Background(), tool.Args{
		"command": "str_replace",
		"path":    path,
		"old_str": "world",
		"new_str": "go",
	})
	if !res.Success {
		t.Fatalf("str_replace failed: %s", res.Error)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello go\n" {
		t.Errorf("file = %q", data)
	}
}

func TestFileEditorStrReplaceNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "code.txt")
	if err := os.WriteFile(path, []byte("hello\n"), 0644); err != nil {
		t.Fatal(err)
	}

	res := NewFileEditorTool().Execute(context.Background(), tool.Args{
		"command": "str_replace",
		"path":    path,
		"old_str": "absent",
		"new_str": "x",
	})
	if res.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(res.Error, "String not found in file") {
		t.Errorf("error = %q", res.Error)
	}
}

func TestFileEditorStrReplaceAmbiguous(t *testing.T) {
	path := filepath.Join(t.TempDir(), "code.txt")
	if err := os.WriteFile(path, []byte("dup dup\n"), 0644); err != nil {
		t.Fatal(err)
	}

	res := NewFileEditorTool().Execute(context.Background(), tool.Args{
		"command": "str_replace",
		"path":    path,
		"old_str": "dup",
		"new_str": "x",
	})
	if res.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(res.Error, "Multiple occurrences found (2)") {
		t.Errorf("error = %q", res.Error)
	}
}

func TestFileEditorUndo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "undo.txt")
	if err := os.WriteFile(path, []byte("original\n"), 0644); err != nil {
		t.Fatal(err)
	}
	ed := NewFileEditorTool()

	res := ed.Execute(context.Background(), tool.Args{
		"command": "str_replace",
		"path":    path,
		"old_str": "original",
		"new_str": "edited",
	})
	if !res.Success {
		t.Fatalf("str_replace failed: %s", res.Error)
	}

	res = ed.Execute(context.Background(), tool.Args{"command": "undo_edit", "path": path})
	if !res.Success {
		t.Fatalf("undo failed: %s", res.Error)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "original\n" {
		t.Errorf("file after undo = %q", data)
	}

	res = ed.Execute(context.Background(), tool.Args{"command": "undo_edit", "path": path})
	if res.Success {
		t.Fatal("expected failure with empty undo stack")
	}
	if !strings.Contains(res.Error, "No previous state found") {
		t.Errorf("error = %q", res.Error)
	}
}

func TestFileEditorValidation(t *testing.T) {
	ed := NewFileEditorTool()

	res := ed.Execute(context.Background(), tool.Args{"command": "view"})
	if res.Kind() != tool.KindMissingParameter {
		t.Errorf("missing path: kind = %v", res.Kind())
	}

	res = ed.Execute(context.Background(), tool.Args{"command": "shred", "path": "/tmp/x"})
	if res.Kind() != tool.KindInvalidAction {
		t.Errorf("unknown command: kind = %v", res.Kind())
	}

	res = ed.Execute(context.Background(), tool.Args{"command": "create", "path": "/tmp/x"})
	if res.Kind() != tool.KindMissingParameter {
		t.Errorf("create without file_text: kind = %v", res.Kind())
	}

	res = ed.Execute(context.Background(), tool.Args{"command": "view", "path": filepath.Join(t.TempDir(), "nope.txt")})
	if res.Kind() != tool.KindNotFound {
		t.Errorf("view missing file: kind = %v", res.Kind())
	}
}

func TestFileReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "read.txt")
	if err := os.WriteFile(path, []byte("contents here"), 0644); err != nil {
		t.Fatal(err)
	}

	res := NewFileReaderTool().Execute(context.Background(), tool.Args{"path": path})
	if !res.Success {
		t.Fatalf("read failed: %s", res.Error)
	}
	if res.Output != "contents here" {
		t.Errorf("output = %q", res.Output)
	}

	res = NewFileReaderTool().Execute(context.Background(), tool.Args{"path": filepath.Join(t.TempDir(), "nope.txt")})
	if res.Kind() != tool.KindNotFound {
		t.Errorf("missing file: kind = %v", res.Kind())
	}
}

func TestFileWriterCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "out.txt")

	res := NewFileWriterTool().Execute(context.Background(), tool.Args{
		"path":    path,
		"content": "written",
	})
	if !res.Success {
		t.Fatalf("write failed: %s", res.Error)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "written" {
		t.Errorf("file = %q", data)
	}
}

func TestFileWriterValidation(t *testing.T) {
	res := NewFileWriterTool().Execute(context.Background(), tool.Args{"path": "/tmp/x"})
	if res.Kind() != tool.KindMissingParameter {
		t.Errorf("kind = %v, want KindMissingParameter", res.Kind())
	}
}
