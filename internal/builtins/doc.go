// Package builtins provides the built-in tool adapters.
//
// # Overview
//
// Each adapter wraps one external capability (a shell, an interpreter, a
// search engine, a browser, a desktop) behind the tool.Tool interface:
// a name, a description, a static parameter schema, and Execute. Adapters
// never panic across Execute; every failure is reported through the
// result envelope.
//
// # Tools
//
// Execution:
//
//   - bash: persistent shell session with restart and timeout handling
//   - python_executor: one-shot python3 subprocess
//   - safe_python_executor: python_executor with a restricted-code screen
//
// Files:
//
//   - file_editor: view, create, str_replace, undo_edit
//   - file_reader: read one file
//   - file_writer: write one file, creating parent directories
//
// Web:
//
//   - web_search: DuckDuckGo HTML search (google/bing fall back to it)
//   - duckduckgo_search, google_search, bing_search: fixed-engine variants
//   - web_crawler: fetch and extract page content (basic/css/llm strategies)
//   - simple_web_scraper: single page to text, markdown, or raw HTML
//
// Browser:
//
//   - browser: headless Chrome session (navigate, click, fill, ...)
//   - simple_browser: single-shot content/title/screenshot fetch
//
// macOS:
//
//   - macos: AppleScript and System Events automation with a UI tree
//   - simple_macos: open_app and run_applescript only
//
// AI:
//
//   - chat_completion: multi-provider chat (openai, anthropic, bedrock, local)
//   - simple_prompt: one prompt in, bare text out
//
// Planning:
//
//   - planning: store-backed plans with heuristic task breakdown
//
// Remote:
//
//   - vnc_computer: remote desktop control through the vncdotool CLI
//   - simple_vnc_computer: reduced action set
//
// # Sessions
//
// Session-holding adapters (bash, browser, macos, vnc_computer) move
// through Unopened, Open, and Closed. Closed is terminal: a closed
// adapter instance never reopens, a new instance must be created.
package builtins
