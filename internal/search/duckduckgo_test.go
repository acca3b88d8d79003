// ABOUTME: Tests for the DuckDuckGo client: page parsing, redirect
// ABOUTME: unwrapping, result limits, and cache integration.

package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultsPage = `<!DOCTYPE html>
<html><body>
<div class="results">
  <div class="result results_links web-result">
    <h2 class="result__title">
      <a rel="nofollow" class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2F&amp;rut=abc">The Go Programming Language</a>
    </h2>
    <a class="result__snippet" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2F">Build simple, secure, scalable systems.</a>
  </div>
  <div class="result result--ad">
    <h2 class="result__title"><a class="result__a" href="https://ads.example.com">Sponsored thing</a></h2>
  </div>
  <div class="result results_links web-result">
    <h2 class="result__title">
      <a rel="nofollow" class="result__a" href="https://pkg.go.dev/">Go Packages</a>
    </h2>
    <a class="result__snippet" href="https://pkg.go.dev/">Package discovery site.</a>
  </div>
  <div class="result results_links web-result">
    <h2 class="result__title">
      <a rel="nofollow" class="result__a" href="https://go.dev/blog/">The Go Blog</a>
    </h2>
    <a class="result__snippet" href="https://go.dev/blog/">News from the Go project.</a>
  </div>
</div>
</body></html>`

func newFixtureServer(t *testing.T, hits *int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			*hits++
		}
		assert.NotEmpty(t, r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(resultsPage))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDuckDuckGoSearch(t *testing.T) {
	srv := newFixtureServer(t, nil)
	client := NewDuckDuckGo(srv.URL+"/", nil, nil)

	items, err := client.Search(context.Background(), Query{Text: "golang", MaxResults: 10})
	require.NoError(t, err)
	require.Len(t, items, 3, "ad block must be skipped")

	assert.Equal(t, "The Go Programming Language", items[0].Title)
	assert.Equal(t, "https://go.dev/", items[0].URL, "uddg redirect must be unwrapped")
	assert.Equal(t, "Build simple, secure, scalable systems.", items[0].Snippet)
	assert.Equal(t, "https://pkg.go.dev/", items[1].URL)
}

func TestDuckDuckGoMaxResults(t *testing.T) {
	srv := newFixtureServer(t, nil)
	client := NewDuckDuckGo(srv.URL+"/", nil, nil)

	items, err := client.Search(context.Background(), Query{Text: "golang", MaxResults: 2})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestDuckDuckGoStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewDuckDuckGo(srv.URL+"/", nil, nil)
	_, err := client.Search(context.Background(), Query{Text: "golang"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestDuckDuckGoUsesCache(t *testing.T) {
	hits := 0
	srv := newFixtureServer(t, &hits)

	cache := NewCache(time.Minute, 16)
	defer cache.Close()
	client := NewDuckDuckGo(srv.URL+"/", nil, cache)

	q := Query{Text: "golang", MaxResults: 3}
	_, err := client.Search(context.Background(), q)
	require.NoError(t, err)
	_, err = client.Search(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 1, hits, "second identical query must be served from cache")

	// A different query misses.
	_, err = client.Search(context.Background(), Query{Text: "rustlang", MaxResults: 3})
	require.NoError(t, err)
	assert.Equal(t, 2, hits)
}

func TestResolveRedirect(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"uddg wrapper", "//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2F&rut=x", "https://go.dev/"},
		{"direct https", "https://pkg.go.dev/", "https://pkg.go.dev/"},
		{"protocol relative", "//example.com/page", "https://example.com/page"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, resolveRedirect(tc.in))
		})
	}
}
