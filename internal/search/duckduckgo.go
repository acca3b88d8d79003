// ABOUTME: DuckDuckGo HTML-endpoint client. Parses the static results page
// ABOUTME: with goquery and unwraps the uddg redirect links.

package search

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// DefaultBaseURL is the HTML (non-JS) results endpoint.
	DefaultBaseURL = "https://html.duckduckgo.com/html/"

	defaultMaxResults = 10
	userAgent         = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// DuckDuckGo queries the DuckDuckGo HTML endpoint. The zero value is not
// usable; construct with NewDuckDuckGo.
type DuckDuckGo struct {
	baseURL    string
	httpClient *http.Client
	cache      *Cache
	logger     *slog.Logger
}

// NewDuckDuckGo creates a client. An empty baseURL selects the production
// endpoint; a nil httpClient gets a 30-second-timeout default; a nil cache
// disables caching.
func NewDuckDuckGo(baseURL string, httpClient *http.Client, cache *Cache) *DuckDuckGo {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &DuckDuckGo{
		baseURL:    baseURL,
		httpClient: httpClient,
		cache:      cache,
		logger:     slog.Default().With("component", "search"),
	}
}

// Search runs the query and returns up to q.MaxResults items.
func (d *DuckDuckGo) Search(ctx context.Context, q Query) ([]Item, error) {
	if q.MaxResults <= 0 {
		q.MaxResults = defaultMaxResults
	}

	key := cacheKey(q)
	if d.cache != nil {
		if items, ok := d.cache.Get(key); ok {
			d.logger.Debug("search cache hit", "query", q.Text)
			return items, nil
		}
	}

	params := url.Values{}
	params.Set("q", q.Text)
	if q.Region != "" {
		params.Set("kl", q.Region)
	}
	if q.TimeRange != "" {
		params.Set("df", q.TimeRange)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying duckduckgo: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo returned status %d", resp.StatusCode)
	}

	items, err := parseResults(resp, q.MaxResults)
	if err != nil {
		return nil, err
	}

	if d.cache != nil {
		d.cache.Put(key, items)
	}
	d.logger.Debug("search completed", "query", q.Text, "results", len(items))
	return items, nil
}

func parseResults(resp *http.Response, max int) ([]Item, error) {
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing results page: %w", err)
	}

	var items []Item
	doc.Find("div.result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		// Sponsored blocks share the result class.
		if s.HasClass("result--ad") {
			return true
		}

		link := s.Find("a.result__a").First()
		title := strings.TrimSpace(link.Text())
		if title == "" {
			return true
		}

		href, _ := link.Attr("href")
		items = append(items, Item{
			Title:   title,
			URL:     resolveRedirect(href),
			Snippet: strings.TrimSpace(s.Find(".result__snippet").First().Text()),
		})
		return len(items) < max
	})

	return items, nil
}

// resolveRedirect unwraps DuckDuckGo's /l/?uddg= redirect wrapper and
// returns the target URL. Non-redirect hrefs pass through unchanged.
func resolveRedirect(href string) string {
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "" && strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}

func cacheKey(q Query) string {
	return fmt.Sprintf("%s|%s|%s|%d", q.Text, q.Region, q.TimeRange, q.MaxResults)
}

var _ Searcher = (*DuckDuckGo)(nil)
