// ABOUTME: Headless Chrome automation built on chromedp: a stateful session
// ABOUTME: tool plus a single-shot page fetcher.

package builtins

import (
	"context"
	"encoding/base64"
	"os"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"github.com/2389/toolbelt/internal/tool"
)

const (
	// browserActionTimeout bounds each CDP round trip so a stuck page
	// cannot hang the session forever.
	browserActionTimeout = 30 * time.Second

	screenshotQuality    = 90
	browserPageTextCap   = 1000
	simpleBrowserTextCap = 2000
)

// browserSession owns one Chrome process. Its contexts outlive a single
// invocation, so they hang off Background rather than the call ctx.
type browserSession struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
}

func startBrowserSession(headless bool) *browserSession {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if !headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if path := os.Getenv("CHROME_PATH"); path != "" {
		opts = append(opts, chromedp.ExecPath(path))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, cancel := chromedp.NewContext(allocCtx)
	return &browserSession{ctx: ctx, cancel: cancel, allocCancel: allocCancel}
}

// run executes CDP actions against the session's page.
func (s *browserSession) run(actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(s.ctx, browserActionTimeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

func (s *browserSession) stop() {
	s.cancel()
	s.allocCancel()
}

// BrowserTool drives a persistent Chrome session. The browser launches
// implicitly on the first action; close is terminal.
type BrowserTool struct {
	state   tool.SessionState
	session *browserSession
}

var _ tool.Tool = (*BrowserTool)(nil)

func NewBrowserTool() *BrowserTool {
	return &BrowserTool{}
}

func (t *BrowserTool) Name() string { return "browser" }

func (t *BrowserTool) Description() string {
	return "A tool for browser automation. Can navigate to URLs, take screenshots, click elements, fill forms, and extract content."
}

func (t *BrowserTool) Schema() tool.Schema {
	return tool.Schema{
		{Name: "action", Type: tool.TypeString, Required: true, Description: "Action to perform: navigate, screenshot, click, fill, extract_text, scroll, wait, close"},
		{Name: "url", Type: tool.TypeString, Description: "URL to navigate to (required for 'navigate' action)"},
		{Name: "selector", Type: tool.TypeString, Description: "CSS selector for element (required for click, fill, extract_text actions)"},
		{Name: "text", Type: tool.TypeString, Description: "Text to fill in form field (required for 'fill' action)"},
		{Name: "wait_time", Type: tool.TypeInt, Default: 1000, Description: "Time to wait in milliseconds (for 'wait' action)"},
		{Name: "scroll_direction", Type: tool.TypeString, Default: "down", Description: "Direction to scroll: up, down, left, right (for 'scroll' action)"},
		{Name: "headless", Type: tool.TypeBool, Default: true, Description: "Run browser in headless mode"},
	}
}

func (t *BrowserTool) Execute(ctx context.Context, args tool.Args) tool.Result {
	return tool.Complete(ctx, func(ctx context.Context) tool.Result {
		if t.state == tool.SessionClosed {
			return tool.FailWith(tool.KindSessionClosed, "Browser session is closed and cannot be reopened.")
		}

		action := args.String("action")
		if action == "close" {
			if t.session != nil {
				t.session.stop()
				t.session = nil
			}
			t.state = tool.SessionClosed
			return tool.Ok("Browser closed successfully")
		}

		if t.session == nil {
			t.session = startBrowserSession(args.Bool("headless", true))
			t.state = tool.SessionOpen
		}

		switch action {
		case "navigate":
			url := args.String("url")
			if url == "" {
				return tool.FailWith(tool.KindMissingParameter, "URL is required for navigate action")
			}
			return t.navigate(url)
		case "screenshot":
			return t.screenshot()
		case "click":
			selector := args.String("selector")
			if selector == "" {
				return tool.FailWith(tool.KindMissingParameter, "Selector is required for click action")
			}
			return t.click(selector)
		case "fill":
			selector, text := args.String("selector"), args.String("text")
			if selector == "" || text == "" {
				return tool.FailWith(tool.KindMissingParameter, "Selector and text are required for fill action")
			}
			return t.fill(selector, text)
		case "extract_text":
			return t.extractText(args.String("selector"))
		case "scroll":
			return t.scroll(args.StringOr("scroll_direction", "down"))
		case "wait":
			ms := args.Int("wait_time", 1000)
			select {
			case <-time.After(time.Duration(ms) * time.Millisecond):
			case <-ctx.Done():
				return tool.Failf("Failed to wait: %v", ctx.Err())
			}
			return tool.Okf("Waited %dms", ms)
		default:
			return tool.FailWith(tool.KindInvalidAction, "Unknown action: %s", action)
		}
	})
}

// Close tears down the live session, if any.
func (t *BrowserTool) Close() {
	if t.session != nil {
		t.session.stop()
		t.session = nil
	}
	t.state = tool.SessionClosed
}

func (t *BrowserTool) navigate(url string) tool.Result {
	var title string
	if err := t.session.run(chromedp.Navigate(url), chromedp.Title(&title)); err != nil {
		return tool.Failf("Failed to navigate to %s: %v", url, err)
	}
	return tool.Okf("Successfully navigated to %s. Page title: %s", url, title)
}

func (t *BrowserTool) screenshot() tool.Result {
	var buf []byte
	if err := t.session.run(chromedp.FullScreenshot(&buf, screenshotQuality)); err != nil {
		return tool.Failf("Failed to take screenshot: %v", err)
	}
	encoded := base64.StdEncoding.EncodeToString(buf)
	head := encoded
	if len(head) > 100 {
		head = head[:100]
	}
	return tool.Okf("Screenshot taken successfully. Base64 data: %s...", head)
}

func (t *BrowserTool) click(selector string) tool.Result {
	if err := t.session.run(chromedp.Click(selector, chromedp.ByQuery)); err != nil {
		return tool.Failf("Failed to click element %s: %v", selector, err)
	}
	return tool.Okf("Successfully clicked element: %s", selector)
}

func (t *BrowserTool) fill(selector, text string) tool.Result {
	if err := t.session.run(chromedp.SetValue(selector, text, chromedp.ByQuery)); err != nil {
		return tool.Failf("Failed to fill %s: %v", selector, err)
	}
	return tool.Okf("Successfully filled %s with text", selector)
}

func (t *BrowserTool) extractText(selector string) tool.Result {
	if selector != "" {
		var text string
		if err := t.session.run(chromedp.Text(selector, &text, chromedp.ByQuery)); err != nil {
			return tool.Failf("Failed to extract text: %v", err)
		}
		return tool.Okf("Text from %s: %s", selector, text)
	}

	var text string
	if err := t.session.run(chromedp.Text("body", &text, chromedp.ByQuery)); err != nil {
		return tool.Failf("Failed to extract text: %v", err)
	}
	return tool.Okf("Page text: %s", capText(text, browserPageTextCap))
}

func (t *BrowserTool) scroll(direction string) tool.Result {
	var key string
	switch direction {
	case "down":
		key = kb.PageDown
	case "up":
		key = kb.PageUp
	case "left":
		key = kb.ArrowLeft
	case "right":
		key = kb.ArrowRight
	default:
		return tool.Failf("Invalid scroll direction: %s", direction)
	}
	if err := t.session.run(chromedp.KeyEvent(key)); err != nil {
		return tool.Failf("Failed to scroll: %v", err)
	}
	return tool.Okf("Scrolled %s", direction)
}

// SimpleBrowserTool fetches one page per call with a throwaway browser.
type SimpleBrowserTool struct{}

var _ tool.Tool = (*SimpleBrowserTool)(nil)

func NewSimpleBrowserTool() *SimpleBrowserTool {
	return &SimpleBrowserTool{}
}

func (t *SimpleBrowserTool) Name() string { return "simple_browser" }

func (t *SimpleBrowserTool) Description() string {
	return "Simple browser tool for basic web operations"
}

func (t *SimpleBrowserTool) Schema() tool.Schema {
	return tool.Schema{
		{Name: "url", Type: tool.TypeString, Required: true, Description: "URL to visit and extract content from"},
		{Name: "action", Type: tool.TypeString, Default: "content", Description: "Action to perform: content, screenshot, title"},
	}
}

func (t *SimpleBrowserTool) Execute(ctx context.Context, args tool.Args) tool.Result {
	return tool.Complete(ctx, func(ctx context.Context) tool.Result {
		if !args.Has("url") {
			return tool.FailWith(tool.KindMissingParameter, "url is required")
		}
		url := args.String("url")
		action := args.StringOr("action", "content")

		switch action {
		case "content", "screenshot", "title":
		default:
			return tool.FailWith(tool.KindInvalidAction, "Unknown action: %s", action)
		}

		session := startBrowserSession(true)
		defer session.stop()

		switch action {
		case "screenshot":
			var buf []byte
			if err := session.run(chromedp.Navigate(url), chromedp.FullScreenshot(&buf, screenshotQuality)); err != nil {
				return tool.Failf("Browser error: %v", err)
			}
			return tool.Okf("Screenshot taken of %s", url)
		case "title":
			var title string
			if err := session.run(chromedp.Navigate(url), chromedp.Title(&title)); err != nil {
				return tool.Failf("Browser error: %v", err)
			}
			return tool.Okf("Page title: %s", title)
		default:
			var text string
			if err := session.run(chromedp.Navigate(url), chromedp.Text("body", &text, chromedp.ByQuery)); err != nil {
				return tool.Failf("Browser error: %v", err)
			}
			return tool.Ok(capText(text, simpleBrowserTextCap))
		}
	})
}
