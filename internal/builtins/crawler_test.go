// ABOUTME: Tests for the web crawler and scraper tools against a local
// ABOUTME: httptest server; the llm strategy runs through a stub client.

package builtins

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/2389/toolbelt/internal/llm"
	"github.com/2389/toolbelt/internal/tool"
)

const crawlerTestPage = `<html>
<head><title>Test Page</title></head>
<body>
<h1>Welcome</h1>
<p class="lead">This paragraph has more than ten words so it survives the word count threshold.</p>
<p>short</p>
<a href="https://example.com">Example</a>
<img src="/logo.png" alt="Logo">
<script>console.log("noise")</script>
</body>
</html>`

func newCrawlerServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(crawlerTestPage))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWebCrawlerBasicStrategy(t *testing.T) {
	srv := newCrawlerServer(t)
	wc := NewWebCrawlerTool(nil, llm.ProviderConfig{})

	res := wc.Execute(context.Background(), tool.Args{"url": srv.URL})
	if !res.Success {
		t.Fatalf("crawl failed: %s", res.Error)
	}
	for _, want := range []string{"URL: " + srv.URL, "Title: Test Page", "Welcome", "word count threshold"} {
		if !strings.Contains(res.Output, want) {
			t.Errorf("output missing %q:\n%s", want, res.Output)
		}
	}
	if strings.Contains(res.Output, "short") {
		t.Errorf("boilerplate block kept:\n%s", res.Output)
	}
	if strings.Contains(res.Output, "console.log") {
		t.Errorf("script content leaked:\n%s", res.Output)
	}
}

func TestWebCrawlerCSSStrategy(t *testing.T) {
	srv := newCrawlerServer(t)
	wc := NewWebCrawlerTool(nil, llm.ProviderConfig{})

	res := wc.Execute(context.Background(), tool.Args{
		"url":                 srv.URL,
		"extraction_strategy": "css",
		"css_selector":        "p.lead",
	})
	if !res.Success {
		t.Fatalf("crawl failed: %s", res.Error)
	}
	if !strings.Contains(res.Output, "word count threshold") {
		t.Errorf("selected text missing:\n%s", res.Output)
	}
	if strings.Contains(res.Output, "Welcome") {
		t.Errorf("content outside selector included:\n%s", res.Output)
	}
}

func TestWebCrawlerCSSRequiresSelector(t *testing.T) {
	wc := NewWebCrawlerTool(nil, llm.ProviderConfig{})

	res := wc.Execute(context.Background(), tool.Args{
		"url":                 "http://localhost",
		"extraction_strategy": "css",
	})
	if res.Kind() != tool.KindMissingParameter {
		t.Errorf("kind = %v, want KindMissingParameter", res.Kind())
	}
}

func TestWebCrawlerXPathNotImplemented(t *testing.T) {
	wc := NewWebCrawlerTool(nil, llm.ProviderConfig{})

	res := wc.Execute(context.Background(), tool.Args{
		"url":                 "http://localhost",
		"extraction_strategy": "xpath",
		"xpath":               "//p",
	})
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Error != "XPath extraction strategy not yet implemented" {
		t.Errorf("error = %q", res.Error)
	}

	res = wc.Execute(context.Background(), tool.Args{
		"url":                 "http://localhost",
		"extraction_strategy": "xpath",
	})
	if res.Kind() != tool.KindMissingParameter {
		t.Errorf("kind = %v, want KindMissingParameter", res.Kind())
	}
}

func TestWebCrawlerUnknownStrategy(t *testing.T) {
	wc := NewWebCrawlerTool(nil, llm.ProviderConfig{})

	res := wc.Execute(context.Background(), tool.Args{
		"url":                 "http://localhost",
		"extraction_strategy": "regex",
	})
	if res.Kind() != tool.KindInvalidAction {
		t.Errorf("kind = %v, want KindInvalidAction", res.Kind())
	}
}

func TestWebCrawlerIncludesLinksAndImages(t *testing.T) {
	srv := newCrawlerServer(t)
	wc := NewWebCrawlerTool(nil, llm.ProviderConfig{})

	res := wc.Execute(context.Background(), tool.Args{
		"url":            srv.URL,
		"include_links":  true,
		"include_images": true,
	})
	if !res.Success {
		t.Fatalf("crawl failed: %s", res.Error)
	}
	if !strings.Contains(res.Output, "Links:\n- Example: https://example.com") {
		t.Errorf("links section missing:\n%s", res.Output)
	}
	if !strings.Contains(res.Output, "Images:\n- Logo: /logo.png") {
		t.Errorf("images section missing:\n%s", res.Output)
	}
}

func TestWebCrawlerLLMStrategy(t *testing.T) {
	srv := newCrawlerServer(t)
	client := &stubChatClient{resp: &llm.Response{Content: "Summary of the page."}}
	wc := NewWebCrawlerTool(stubChatFactory(client, nil), llm.ProviderConfig{Provider: "openai"})

	res := wc.Execute(context.Background(), tool.Args{
		"url":                 srv.URL,
		"extraction_strategy": "llm",
	})
	if !res.Success {
		t.Fatalf("crawl failed: %s", res.Error)
	}
	if !strings.Contains(res.Output, "Extracted Data:\nSummary of the page.") {
		t.Errorf("extracted data missing:\n%s", res.Output)
	}
	if client.lastReq == nil || !strings.Contains(client.lastReq.Messages[0].Content, "Extract the main content") {
		t.Error("llm prompt not sent")
	}
}

func TestWebCrawlerValidation(t *testing.T) {
	wc := NewWebCrawlerTool(nil, llm.ProviderConfig{})

	res := wc.Execute(context.Background(), tool.Args{})
	if res.Kind() != tool.KindMissingParameter {
		t.Errorf("kind = %v, want KindMissingParameter", res.Kind())
	}
}

func TestWebCrawlerFetchError(t *testing.T) {
	srv := newCrawlerServer(t)
	url := srv.URL
	srv.Close()

	res := NewWebCrawlerTool(nil, llm.ProviderConfig{}).Execute(context.Background(), tool.Args{"url": url})
	if res.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(res.Error, "Crawling failed:") {
		t.Errorf("error = %q", res.Error)
	}
}

func TestSimpleWebScraperFormats(t *testing.T) {
	srv := newCrawlerServer(t)
	ws := NewSimpleWebScraperTool()

	t.Run("text", func(t *testing.T) {
		res := ws.Execute(context.Background(), tool.Args{"url": srv.URL})
		if !res.Success {
			t.Fatalf("scrape failed: %s", res.Error)
		}
		if !strings.Contains(res.Output, "Welcome") {
			t.Errorf("text output missing body content:\n%s", res.Output)
		}
		if strings.Contains(res.Output, "<h1>") {
			t.Errorf("text output contains markup:\n%s", res.Output)
		}
	})

	t.Run("html", func(t *testing.T) {
		res := ws.Execute(context.Background(), tool.Args{"url": srv.URL, "format": "html"})
		if !res.Success {
			t.Fatalf("scrape failed: %s", res.Error)
		}
		if !strings.Contains(res.Output, "<h1>Welcome</h1>") {
			t.Errorf("html output missing markup:\n%s", res.Output)
		}
	})

	t.Run("markdown", func(t *testing.T) {
		res := ws.Execute(context.Background(), tool.Args{"url": srv.URL, "format": "markdown"})
		if !res.Success {
			t.Fatalf("scrape failed: %s", res.Error)
		}
		if !strings.Contains(res.Output, "# Welcome") {
			t.Errorf("markdown output missing heading:\n%s", res.Output)
		}
	})
}

func TestSimpleWebScraperMissingURL(t *testing.T) {
	res := NewSimpleWebScraperTool().Execute(context.Background(), tool.Args{})
	if res.Kind() != tool.KindMissingParameter {
		t.Errorf("kind = %v, want KindMissingParameter", res.Kind())
	}
}
