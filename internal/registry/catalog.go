// ABOUTME: Static tool catalog: the declaration table, availability probes,
// ABOUTME: and the fixed collection definitions.

package registry

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/2389/toolbelt/internal/builtins"
	"github.com/2389/toolbelt/internal/tool"
)

// Tool categories.
const (
	CategoryExecution = "execution"
	CategoryFiles     = "files"
	CategoryWeb       = "web"
	CategoryBrowser   = "browser"
	CategoryMacOS     = "macos"
	CategoryAI        = "ai"
	CategoryPlanning  = "planning"
	CategoryRemote    = "remote"
)

// Fixed collection identifiers. User overlays may not reuse these names.
const (
	CollectionBasic       = "basic"
	CollectionWeb         = "web"
	CollectionDevelopment = "development"
	CollectionAI          = "ai"
)

var fixedCollectionOrder = []string{
	CollectionBasic,
	CollectionWeb,
	CollectionDevelopment,
	CollectionAI,
}

var fixedCollections = map[string][]string{
	CollectionBasic:       {"bash", "python_executor", "file_editor", "web_search", "simple_browser"},
	CollectionWeb:         {"web_search", "web_crawler", "browser", "simple_web_scraper"},
	CollectionDevelopment: {"bash", "python_executor", "file_editor", "file_reader", "file_writer", "web_search", "planning"},
	CollectionAI:          {"chat_completion", "simple_prompt", "web_search", "planning", "file_editor"},
}

// declarations returns the full catalog in declaration order. Tools with a
// nil probe are always available; their failures are call-time failures.
func declarations() []Descriptor {
	return []Descriptor{
		{Name: "bash", Category: CategoryExecution,
			construct: func(Deps) tool.Tool { return builtins.NewBashTool() },
			probe:     probeBinary("bash")},
		{Name: "python_executor", Category: CategoryExecution,
			construct: func(Deps) tool.Tool { return builtins.NewPythonExecutorTool() },
			probe:     probeBinary("python3", "python")},
		{Name: "safe_python_executor", Category: CategoryExecution,
			construct: func(Deps) tool.Tool { return builtins.NewSafePythonExecutorTool() },
			probe:     probeBinary("python3", "python")},

		{Name: "file_editor", Category: CategoryFiles,
			construct: func(Deps) tool.Tool { return builtins.NewFileEditorTool() }},
		{Name: "file_reader", Category: CategoryFiles,
			construct: func(Deps) tool.Tool { return builtins.NewFileReaderTool() }},
		{Name: "file_writer", Category: CategoryFiles,
			construct: func(Deps) tool.Tool { return builtins.NewFileWriterTool() }},

		{Name: "web_search", Category: CategoryWeb,
			construct: func(d Deps) tool.Tool { return builtins.NewWebSearchTool(d.Searcher) }},
		{Name: "duckduckgo_search", Category: CategoryWeb,
			construct: func(d Deps) tool.Tool { return builtins.NewDuckDuckGoSearchTool(d.Searcher) }},
		{Name: "google_search", Category: CategoryWeb,
			construct: func(d Deps) tool.Tool { return builtins.NewGoogleSearchTool(d.Searcher) }},
		{Name: "bing_search", Category: CategoryWeb,
			construct: func(d Deps) tool.Tool { return builtins.NewBingSearchTool(d.Searcher) }},
		{Name: "web_crawler", Category: CategoryWeb,
			construct: func(d Deps) tool.Tool { return builtins.NewWebCrawlerTool(d.LLM, d.ChatCfg) }},
		{Name: "simple_web_scraper", Category: CategoryWeb,
			construct: func(Deps) tool.Tool { return builtins.NewSimpleWebScraperTool() }},

		{Name: "browser", Category: CategoryBrowser,
			construct: func(Deps) tool.Tool { return builtins.NewBrowserTool() },
			probe:     probeChrome},
		{Name: "simple_browser", Category: CategoryBrowser,
			construct: func(Deps) tool.Tool { return builtins.NewSimpleBrowserTool() },
			probe:     probeChrome},

		{Name: "macos", Category: CategoryMacOS,
			construct: func(Deps) tool.Tool { return builtins.NewMacOSTool() },
			probe:     probeMacOS},
		{Name: "simple_macos", Category: CategoryMacOS,
			construct: func(Deps) tool.Tool { return builtins.NewSimpleMacOSTool() },
			probe:     probeMacOS},

		{Name: "chat_completion", Category: CategoryAI,
			construct: func(d Deps) tool.Tool { return builtins.NewChatCompletionTool(d.LLM) }},
		{Name: "simple_prompt", Category: CategoryAI,
			construct: func(d Deps) tool.Tool { return builtins.NewSimplePromptTool(d.LLM) }},

		{Name: "planning", Category: CategoryPlanning,
			construct: func(d Deps) tool.Tool { return builtins.NewPlanningTool(d.Plans) }},

		{Name: "vnc_computer", Category: CategoryRemote,
			construct: func(Deps) tool.Tool { return builtins.NewVNCTool() },
			probe:     probeBinary("vncdotool", "vncdo")},
		{Name: "simple_vnc_computer", Category: CategoryRemote,
			construct: func(Deps) tool.Tool { return builtins.NewSimpleVNCTool() },
			probe:     probeBinary("vncdotool", "vncdo")},
	}
}

// probeBinary accepts the first of the given binaries found on PATH.
func probeBinary(names ...string) func() error {
	return func() error {
		for _, name := range names {
			if _, err := exec.LookPath(name); err == nil {
				return nil
			}
		}
		return fmt.Errorf("none of %s found on PATH", strings.Join(names, ", "))
	}
}

// chromeCandidates are browser binaries accepted without CHROME_PATH.
var chromeCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"chrome",
	"headless-shell",
}

func probeChrome() error {
	if path := os.Getenv("CHROME_PATH"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("CHROME_PATH %s: %w", path, err)
		}
		return nil
	}
	for _, name := range chromeCandidates {
		if _, err := exec.LookPath(name); err == nil {
			return nil
		}
	}
	if runtime.GOOS == "darwin" {
		if _, err := os.Stat("/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"); err == nil {
			return nil
		}
	}
	return fmt.Errorf("no Chrome or Chromium binary found (set CHROME_PATH)")
}

func probeMacOS() error {
	if runtime.GOOS != "darwin" {
		return fmt.Errorf("requires darwin, running on %s", runtime.GOOS)
	}
	if _, err := exec.LookPath("osascript"); err != nil {
		return fmt.Errorf("osascript not found: %w", err)
	}
	return nil
}
