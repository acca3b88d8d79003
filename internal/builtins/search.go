// ABOUTME: Web search tools over the search.Searcher interface.
// ABOUTME: google/bing engines fall back to DuckDuckGo; variants fix the engine.

package builtins

import (
	"context"
	"fmt"
	"strings"

	"github.com/2389/toolbelt/internal/search"
	"github.com/2389/toolbelt/internal/tool"
)

// WebSearchTool searches the web and formats results as a numbered list.
type WebSearchTool struct {
	searcher search.Searcher
}

var _ tool.Tool = (*WebSearchTool)(nil)

func NewWebSearchTool(s search.Searcher) *WebSearchTool {
	return &WebSearchTool{searcher: s}
}

func (t *WebSearchTool) Name() string { return "web_search" }

func (t *WebSearchTool) Description() string {
	return "Search the web using various search engines (DuckDuckGo, Google, Bing). Returns search results with titles, URLs, and snippets."
}

func (t *WebSearchTool) Schema() tool.Schema {
	return tool.Schema{
		{Name: "query", Type: tool.TypeString, Required: true, Description: "The search query"},
		{Name: "engine", Type: tool.TypeString, Default: "duckduckgo", Description: "Search engine to use: duckduckgo, google, bing"},
		{Name: "max_results", Type: tool.TypeInt, Default: 10, Description: "Maximum number of results to return"},
		{Name: "region", Type: tool.TypeString, Default: "us-en", Description: "Region for search results (e.g., 'us-en', 'uk-en')"},
		{Name: "time_range", Type: tool.TypeString, Description: "Time range for results: d (day), w (week), m (month), y (year)"},
	}
}

func (t *WebSearchTool) Execute(ctx context.Context, args tool.Args) tool.Result {
	return tool.Complete(ctx, func(ctx context.Context) tool.Result {
		if !args.Has("query") {
			return tool.FailWith(tool.KindMissingParameter, "query is required")
		}
		query := args.String("query")
		engine := strings.ToLower(args.StringOr("engine", "duckduckgo"))

		var q search.Query
		switch engine {
		case "duckduckgo":
			q = search.Query{
				Text:       query,
				MaxResults: args.Int("max_results", 10),
				Region:     args.StringOr("region", "us-en"),
				TimeRange:  args.String("time_range"),
			}
		case "google", "bing":
			// No native backends; these fall back to DuckDuckGo with
			// default region and no time filter.
			q = search.Query{
				Text:       query,
				MaxResults: args.Int("max_results", 10),
				Region:     "us-en",
			}
		default:
			return tool.FailWith(tool.KindInvalidAction,
				"Unknown search engine: %s. Supported: duckduckgo, google, bing", args.String("engine"))
		}

		items, err := t.searcher.Search(ctx, q)
		if err != nil {
			return tool.Failf("Web search failed: %v", err)
		}
		return tool.Ok(formatSearchResults(items, query))
	})
}

// formatSearchResults renders a numbered result list, or a no-results note.
func formatSearchResults(items []search.Item, query string) string {
	if len(items) == 0 {
		return fmt.Sprintf("No results found for query: %s", query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Search results for: %s\n", query)
	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n\n")

	for i, item := range items {
		title := item.Title
		if title == "" {
			title = "No title"
		}
		url := item.URL
		if url == "" {
			url = "No URL"
		}
		snippet := item.Snippet
		if snippet == "" {
			snippet = "No description"
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, title)
		fmt.Fprintf(&b, "   URL: %s\n", url)
		fmt.Fprintf(&b, "   Description: %s\n\n", snippet)
	}
	return b.String()
}

// DuckDuckGoSearchTool is web_search with the engine fixed to duckduckgo.
type DuckDuckGoSearchTool struct {
	inner *WebSearchTool
}

var _ tool.Tool = (*DuckDuckGoSearchTool)(nil)

func NewDuckDuckGoSearchTool(s search.Searcher) *DuckDuckGoSearchTool {
	return &DuckDuckGoSearchTool{inner: NewWebSearchTool(s)}
}

func (t *DuckDuckGoSearchTool) Name() string { return "duckduckgo_search" }

func (t *DuckDuckGoSearchTool) Description() string {
	return "Search the web using DuckDuckGo search engine. Returns search results with titles, URLs, and snippets."
}

func (t *DuckDuckGoSearchTool) Schema() tool.Schema {
	return tool.Schema{
		{Name: "query", Type: tool.TypeString, Required: true, Description: "The search query"},
		{Name: "max_results", Type: tool.TypeInt, Default: 10, Description: "Maximum number of results to return"},
		{Name: "region", Type: tool.TypeString, Default: "us-en", Description: "Region for search results (e.g., 'us-en', 'uk-en')"},
		{Name: "time_range", Type: tool.TypeString, Description: "Time range for results: d (day), w (week), m (month), y (year)"},
	}
}

func (t *DuckDuckGoSearchTool) Execute(ctx context.Context, args tool.Args) tool.Result {
	return t.inner.Execute(ctx, withEngine(args, "duckduckgo"))
}

// GoogleSearchTool is web_search with the engine fixed to google, which
// currently falls back to DuckDuckGo. The api_key parameter is accepted
// and ignored.
type GoogleSearchTool struct {
	inner *WebSearchTool
}

var _ tool.Tool = (*GoogleSearchTool)(nil)

func NewGoogleSearchTool(s search.Searcher) *GoogleSearchTool {
	return &GoogleSearchTool{inner: NewWebSearchTool(s)}
}

func (t *GoogleSearchTool) Name() string { return "google_search" }

func (t *GoogleSearchTool) Description() string {
	return "Search the web using Google search engine. Currently falls back to DuckDuckGo."
}

func (t *GoogleSearchTool) Schema() tool.Schema {
	return tool.Schema{
		{Name: "query", Type: tool.TypeString, Required: true, Description: "The search query"},
		{Name: "max_results", Type: tool.TypeInt, Default: 10, Description: "Maximum number of results to return"},
		{Name: "api_key", Type: tool.TypeString, Description: "Google API key (optional)"},
	}
}

func (t *GoogleSearchTool) Execute(ctx context.Context, args tool.Args) tool.Result {
	return t.inner.Execute(ctx, withEngine(args, "google"))
}

// BingSearchTool is web_search with the engine fixed to bing, which
// currently falls back to DuckDuckGo. The api_key parameter is accepted
// and ignored.
type BingSearchTool struct {
	inner *WebSearchTool
}

var _ tool.Tool = (*BingSearchTool)(nil)

func NewBingSearchTool(s search.Searcher) *BingSearchTool {
	return &BingSearchTool{inner: NewWebSearchTool(s)}
}

func (t *BingSearchTool) Name() string { return "bing_search" }

func (t *BingSearchTool) Description() string {
	return "Search the web using Bing search engine. Currently falls back to DuckDuckGo."
}

func (t *BingSearchTool) Schema() tool.Schema {
	return tool.Schema{
		{Name: "query", Type: tool.TypeString, Required: true, Description: "The search query"},
		{Name: "max_results", Type: tool.TypeInt, Default: 10, Description: "Maximum number of results to return"},
		{Name: "api_key", Type: tool.TypeString, Description: "Bing API key (optional)"},
	}
}

func (t *BingSearchTool) Execute(ctx context.Context, args tool.Args) tool.Result {
	return t.inner.Execute(ctx, withEngine(args, "bing"))
}

// withEngine copies args with the engine pinned, dropping any caller value.
func withEngine(args tool.Args, engine string) tool.Args {
	out := make(tool.Args, len(args)+1)
	for k, v := range args {
		out[k] = v
	}
	out["engine"] = engine
	return out
}
