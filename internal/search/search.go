// ABOUTME: Search query/result types and the Searcher interface the web
// ABOUTME: search adapters call through.

package search

import "context"

// Query describes one search request.
type Query struct {
	Text       string
	MaxResults int
	Region     string // locale code such as "us-en"
	TimeRange  string // d, w, m, or y; empty for all time
}

// Item is one search result.
type Item struct {
	Title   string
	URL     string
	Snippet string
}

// Searcher performs a web search. Implementations must be safe for
// concurrent use.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]Item, error)
}
