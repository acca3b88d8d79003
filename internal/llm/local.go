// ABOUTME: Local provider: any OpenAI-compatible endpoint, defaulting to a
// ABOUTME: local Ollama instance. Reuses the OpenAI client with a base URL.

package llm

import (
	"errors"
	"strings"

	"github.com/openai/openai-go"
)

const (
	// DefaultLocalBaseURL targets a local Ollama instance.
	DefaultLocalBaseURL = "http://localhost:11434"

	// DefaultLocalModel is a reasonable small local default.
	DefaultLocalModel = "llama3.2"

	// localAPIKeyPlaceholder satisfies SDK auth for keyless local servers.
	localAPIKeyPlaceholder = "local"
)

// NewLocalClient creates a client for an OpenAI-compatible local endpoint.
// Ollama exposes its compatible API under /v1, which is appended when the
// base URL doesn't already carry a version path.
func NewLocalClient(baseURL, model string) *OpenAIClient {
	if baseURL == "" {
		baseURL = DefaultLocalBaseURL
	}
	if model == "" {
		model = DefaultLocalModel
	}
	return newOpenAICompatClient(localAPIKeyPlaceholder, model, normalizeLocalBaseURL(baseURL))
}

func normalizeLocalBaseURL(baseURL string) string {
	trimmed := strings.TrimRight(baseURL, "/")
	if strings.HasSuffix(trimmed, "/v1") {
		return trimmed
	}
	return trimmed + "/v1"
}

// APIStatus reports the HTTP status and response body of a failed call to an
// OpenAI-compatible endpoint. ok is false for errors that never reached the
// server, such as a refused connection.
func APIStatus(err error) (status int, body string, ok bool) {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode, apiErr.RawJSON(), true
	}
	return 0, "", false
}
