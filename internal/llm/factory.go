// ABOUTME: Default provider factory: maps a ProviderConfig onto the right
// ABOUTME: concrete client, pulling API keys from the environment when unset.

package llm

import (
	"context"
	"fmt"
	"os"
)

// NewClient is the default Factory. API keys fall back to the conventional
// environment variables when not supplied per call.
func NewClient(ctx context.Context, cfg ProviderConfig) (Client, error) {
	switch cfg.Provider {
	case "openai":
		key := cfg.APIKey
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		if cfg.BaseURL != "" {
			return newOpenAICompatClient(key, cfg.Model, cfg.BaseURL), nil
		}
		return NewOpenAIClient(key, cfg.Model), nil
	case "anthropic":
		key := cfg.APIKey
		if key == "" {
			key = os.Getenv("ANTHROPIC_API_KEY")
		}
		return NewAnthropicClient(key, cfg.Model), nil
	case "bedrock":
		return NewBedrockClient(ctx, cfg.Region, cfg.Model)
	case "local":
		return NewLocalClient(cfg.BaseURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// Compile-time check that NewClient satisfies Factory.
var _ Factory = NewClient
