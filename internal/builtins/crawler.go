// ABOUTME: Web crawling tools: strategy-based page extraction and a simple scraper.
// ABOUTME: Pages are fetched with colly and parsed with goquery; markdown via html-to-markdown.

package builtins

import (
	"context"
	"fmt"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/2389/toolbelt/internal/llm"
	"github.com/2389/toolbelt/internal/tool"
)

const (
	crawlContentCap   = 2000
	extractedDataCap  = 1000
	scrapeContentCap  = 3000
	llmPageContentCap = 4000
)

// crawledPage is one fetched document plus its parse tree.
type crawledPage struct {
	URL  string
	HTML string
	doc  *goquery.Document
}

// fetchPage retrieves a single page. A fresh collector per call means no
// cache between fetches.
func fetchPage(url string, timeout time.Duration) (*crawledPage, error) {
	c := colly.NewCollector()
	c.SetRequestTimeout(timeout)

	var page crawledPage
	c.OnResponse(func(r *colly.Response) {
		page.URL = r.Request.URL.String()
		page.HTML = string(r.Body)
	})

	if err := c.Visit(url); err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, err
	}
	page.doc = doc
	return &page, nil
}

func (p *crawledPage) title() string {
	return strings.TrimSpace(p.doc.Find("title").First().Text())
}

// contentText returns the page's text blocks. Headings are always kept;
// paragraph-like blocks under the word threshold are dropped as boilerplate.
// Falls back to the whole body text when nothing survives.
func (p *crawledPage) contentText(wordThreshold int) string {
	var blocks []string
	p.doc.Find("h1, h2, h3, h4, h5, h6, p, li, pre, blockquote").Each(func(_ int, sel *goquery.Selection) {
		text := collapseWhitespace(sel.Text())
		if text == "" {
			return
		}
		if isHeading(sel) || len(strings.Fields(text)) >= wordThreshold {
			blocks = append(blocks, text)
		}
	})
	if len(blocks) > 0 {
		return strings.Join(blocks, "\n\n")
	}
	return p.bodyText()
}

func (p *crawledPage) bodyText() string {
	body := p.doc.Clone()
	body.Find("script, style, noscript").Remove()
	var lines []string
	for _, line := range strings.Split(body.Find("body").Text(), "\n") {
		if trimmed := collapseWhitespace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return strings.Join(lines, "\n")
}

// contentHTML returns the body markup with scripts and styles removed.
func (p *crawledPage) contentHTML() string {
	body := p.doc.Clone()
	body.Find("script, style, noscript").Remove()
	html, err := body.Find("body").Html()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(html)
}

// selectText joins the text of all nodes matching a CSS selector.
func (p *crawledPage) selectText(selector string) string {
	var parts []string
	p.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		if text := collapseWhitespace(sel.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, "\n\n")
}

type pageLink struct{ Text, Href string }
type pageImage struct{ Alt, Src string }

func (p *crawledPage) links(limit int) []pageLink {
	var links []pageLink
	p.doc.Find("a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href := sel.AttrOr("href", "")
		links = append(links, pageLink{Text: collapseWhitespace(sel.Text()), Href: href})
		return len(links) < limit
	})
	return links
}

func (p *crawledPage) images(limit int) []pageImage {
	var images []pageImage
	p.doc.Find("img").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		images = append(images, pageImage{Alt: sel.AttrOr("alt", ""), Src: sel.AttrOr("src", "")})
		return len(images) < limit
	})
	return images
}

func isHeading(sel *goquery.Selection) bool {
	if len(sel.Nodes) == 0 {
		return false
	}
	name := sel.Nodes[0].Data
	return len(name) == 2 && name[0] == 'h' && name[1] >= '1' && name[1] <= '6'
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func capText(s string, limit int) string {
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}

// WebCrawlerTool crawls a page and extracts content by strategy.
type WebCrawlerTool struct {
	llm     llm.Factory
	chatCfg llm.ProviderConfig
}

var _ tool.Tool = (*WebCrawlerTool)(nil)

// NewWebCrawlerTool builds a crawler; factory and chatCfg serve the llm
// extraction strategy and may be zero when that strategy is unused.
func NewWebCrawlerTool(factory llm.Factory, chatCfg llm.ProviderConfig) *WebCrawlerTool {
	return &WebCrawlerTool{llm: factory, chatCfg: chatCfg}
}

func (t *WebCrawlerTool) Name() string { return "web_crawler" }

func (t *WebCrawlerTool) Description() string {
	return "Crawl and extract content from web pages. Supports basic, css, llm, and xpath extraction strategies."
}

func (t *WebCrawlerTool) Schema() tool.Schema {
	return tool.Schema{
		{Name: "url", Type: tool.TypeString, Required: true, Description: "URL to crawl"},
		{Name: "extraction_strategy", Type: tool.TypeString, Default: "basic", Description: "Extraction strategy: basic, llm, css, xpath"},
		{Name: "css_selector", Type: tool.TypeString, Description: "CSS selector for targeted extraction (when using css strategy)"},
		{Name: "xpath", Type: tool.TypeString, Description: "XPath for targeted extraction (when using xpath strategy)"},
		{Name: "word_count_threshold", Type: tool.TypeInt, Default: 10, Description: "Minimum word count for content blocks"},
		{Name: "only_text", Type: tool.TypeBool, Default: true, Description: "Extract only text content"},
		{Name: "include_links", Type: tool.TypeBool, Default: false, Description: "Include links in output"},
		{Name: "include_images", Type: tool.TypeBool, Default: false, Description: "Include images in output"},
		{Name: "wait_for", Type: tool.TypeString, Description: "CSS selector to wait for"},
		{Name: "timeout", Type: tool.TypeInt, Default: 30, Description: "Request timeout in seconds"},
	}
}

func (t *WebCrawlerTool) Execute(ctx context.Context, args tool.Args) tool.Result {
	return tool.Complete(ctx, func(ctx context.Context) tool.Result {
		if !args.Has("url") {
			return tool.FailWith(tool.KindMissingParameter, "url is required")
		}
		url := args.String("url")
		strategy := args.StringOr("extraction_strategy", "basic")
		timeout := time.Duration(args.Int("timeout", 30)) * time.Second

		switch strategy {
		case "basic", "css", "llm":
		case "xpath":
			if args.String("xpath") == "" {
				return tool.FailWith(tool.KindMissingParameter, "xpath is required for xpath extraction strategy")
			}
			return tool.Fail("XPath extraction strategy not yet implemented")
		default:
			return tool.FailWith(tool.KindInvalidAction, "Unknown extraction strategy: %s", strategy)
		}

		if strategy == "css" && args.String("css_selector") == "" {
			return tool.FailWith(tool.KindMissingParameter, "css_selector is required for css extraction strategy")
		}

		page, err := fetchPage(url, timeout)
		if err != nil {
			return tool.Failf("Crawling failed: %v", err)
		}

		var content string
		switch strategy {
		case "css":
			content = page.selectText(args.String("css_selector"))
		default:
			if args.Bool("only_text", true) {
				content = page.contentText(args.Int("word_count_threshold", 10))
			} else {
				content = page.contentHTML()
			}
		}

		parts := []string{fmt.Sprintf("URL: %s", page.URL)}
		if title := page.title(); title != "" {
			parts = append(parts, fmt.Sprintf("Title: %s", title))
		}
		if content != "" {
			parts = append(parts, fmt.Sprintf("Content:\n%s", capText(content, crawlContentCap)))
		}

		if args.Bool("include_links", false) {
			if links := page.links(10); len(links) > 0 {
				var lines []string
				for _, link := range links {
					text := link.Text
					if text == "" {
						text = "No text"
					}
					href := link.Href
					if href == "" {
						href = "No URL"
					}
					lines = append(lines, fmt.Sprintf("- %s: %s", text, href))
				}
				parts = append(parts, "Links:\n"+strings.Join(lines, "\n"))
			}
		}

		if args.Bool("include_images", false) {
			if images := page.images(5); len(images) > 0 {
				var lines []string
				for _, img := range images {
					alt := img.Alt
					if alt == "" {
						alt = "No alt"
					}
					src := img.Src
					if src == "" {
						src = "No src"
					}
					lines = append(lines, fmt.Sprintf("- %s: %s", alt, src))
				}
				parts = append(parts, "Images:\n"+strings.Join(lines, "\n"))
			}
		}

		if strategy == "llm" {
			extracted, err := t.extractWithLLM(ctx, page)
			if err != nil {
				return tool.Failf("Web crawling failed: %v", err)
			}
			parts = append(parts, fmt.Sprintf("Extracted Data:\n%s", capText(extracted, extractedDataCap)))
		}

		return tool.Ok(strings.Join(parts, "\n\n"))
	})
}

// extractWithLLM summarizes the page through the configured chat provider.
func (t *WebCrawlerTool) extractWithLLM(ctx context.Context, page *crawledPage) (string, error) {
	if t.llm == nil {
		return "", fmt.Errorf("no chat provider configured")
	}
	client, err := t.llm(ctx, t.chatCfg)
	if err != nil {
		return "", err
	}

	content := capText(page.contentText(1), llmPageContentCap)
	resp, err := client.CreateMessage(ctx, &llm.Request{
		Model: t.chatCfg.Model,
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: "Extract the main content and key information from this webpage.\n\n" + content,
		}},
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// SimpleWebScraperTool fetches one page as text, markdown, or raw HTML.
type SimpleWebScraperTool struct{}

var _ tool.Tool = (*SimpleWebScraperTool)(nil)

func NewSimpleWebScraperTool() *SimpleWebScraperTool {
	return &SimpleWebScraperTool{}
}

func (t *SimpleWebScraperTool) Name() string { return "simple_web_scraper" }

func (t *SimpleWebScraperTool) Description() string {
	return "Simple tool for extracting text content from web pages"
}

func (t *SimpleWebScraperTool) Schema() tool.Schema {
	return tool.Schema{
		{Name: "url", Type: tool.TypeString, Required: true, Description: "URL to scrape"},
		{Name: "format", Type: tool.TypeString, Default: "text", Description: "Output format: text, markdown, html"},
	}
}

func (t *SimpleWebScraperTool) Execute(ctx context.Context, args tool.Args) tool.Result {
	return tool.Complete(ctx, func(ctx context.Context) tool.Result {
		if !args.Has("url") {
			return tool.FailWith(tool.KindMissingParameter, "url is required")
		}

		page, err := fetchPage(args.String("url"), 30*time.Second)
		if err != nil {
			return tool.Failf("Scraping failed: %v", err)
		}

		var content string
		switch args.StringOr("format", "text") {
		case "markdown":
			md, err := htmltomarkdown.ConvertString(page.HTML)
			if err != nil {
				return tool.Failf("Web scraping failed: %v", err)
			}
			content = strings.TrimSpace(md)
			if content == "" {
				content = "No markdown content"
			}
		case "html":
			content = page.HTML
			if content == "" {
				content = "No HTML content"
			}
		default:
			content = page.bodyText()
			if content == "" {
				content = "No content extracted"
			}
		}

		return tool.Ok(capText(content, scrapeContentCap))
	})
}
