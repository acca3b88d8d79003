// Package search provides the web search client used by the search
// adapters. DuckDuckGo's HTML endpoint is the only real backend; Google
// and Bing requests are routed here by the adapters. Results are cached
// briefly so repeated agent queries don't hammer the endpoint.
package search
