// ABOUTME: Chat completion tools over the llm provider clients: a full
// ABOUTME: conversation tool and a single-prompt shortcut.

package builtins

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/2389/toolbelt/internal/llm"
	"github.com/2389/toolbelt/internal/tool"
)

// ChatCompletionTool generates completions through any configured provider.
// Messages arrive as a JSON conversation, a single JSON message, or plain
// text treated as one user message.
type ChatCompletionTool struct {
	factory llm.Factory
}

var _ tool.Tool = (*ChatCompletionTool)(nil)

// NewChatCompletionTool builds the tool. A nil factory falls back to the
// default provider clients.
func NewChatCompletionTool(factory llm.Factory) *ChatCompletionTool {
	if factory == nil {
		factory = llm.NewClient
	}
	return &ChatCompletionTool{factory: factory}
}

func (t *ChatCompletionTool) Name() string { return "chat_completion" }

func (t *ChatCompletionTool) Description() string {
	return "Generate chat completions using various LLM providers (OpenAI, Anthropic, AWS Bedrock, local). Can handle conversations and single prompts."
}

func (t *ChatCompletionTool) Schema() tool.Schema {
	return tool.Schema{
		{Name: "messages", Type: tool.TypeString, Required: true, Description: "JSON string of messages array or single message string"},
		{Name: "provider", Type: tool.TypeString, Default: "openai", Description: "LLM provider: openai, anthropic, bedrock, local"},
		{Name: "model", Type: tool.TypeString, Default: "gpt-3.5-turbo", Description: "Model name (e.g., gpt-4, claude-3-sonnet, anthropic.claude-3-sonnet-20240229-v1:0, etc.)"},
		{Name: "temperature", Type: tool.TypeFloat, Default: 0.7, Description: "Temperature for response generation (0.0 to 2.0)"},
		{Name: "max_tokens", Type: tool.TypeInt, Default: 1000, Description: "Maximum tokens in response"},
		{Name: "system_prompt", Type: tool.TypeString, Description: "System prompt to set context"},
		{Name: "api_key", Type: tool.TypeString, Description: "API key for the provider (if not set in environment)"},
		{Name: "base_url", Type: tool.TypeString, Description: "Base URL for API (for local or custom endpoints)"},
		{Name: "region", Type: tool.TypeString, Default: "us-east-1", Description: "AWS region for Bedrock (default: us-east-1)"},
	}
}

func (t *ChatCompletionTool) Execute(ctx context.Context, args tool.Args) tool.Result {
	return tool.Complete(ctx, func(ctx context.Context) tool.Result {
		resp, cfg, fail := t.complete(ctx, args)
		if fail != nil {
			return *fail
		}
		return tool.Ok(formatChatResponse(cfg, resp))
	})
}

// complete runs the shared argument handling and provider call so that
// simple_prompt can reuse it and keep only the bare response content.
func (t *ChatCompletionTool) complete(ctx context.Context, args tool.Args) (*llm.Response, llm.ProviderConfig, *tool.Result) {
	var cfg llm.ProviderConfig

	if !args.Has("messages") {
		return nil, cfg, failp(tool.FailWith(tool.KindMissingParameter, "messages is required"))
	}

	messages, invalid := parseChatMessages(args.String("messages"))
	if invalid != nil {
		return nil, cfg, failp(tool.Failf("Invalid message format: %v", invalid))
	}
	messages = prependSystemPrompt(messages, args.String("system_prompt"))

	rawProvider := args.StringOr("provider", "openai")
	provider := strings.ToLower(rawProvider)
	switch provider {
	case "openai", "anthropic", "bedrock", "local":
	default:
		return nil, cfg, failp(tool.Failf(
			"Unknown provider: %s. Supported: openai, anthropic, bedrock, local", rawProvider))
	}

	cfg = llm.ProviderConfig{
		Provider: provider,
		Model:    args.StringOr("model", llm.DefaultOpenAIModel),
		APIKey:   args.String("api_key"),
		BaseURL:  args.String("base_url"),
		Region:   args.StringOr("region", llm.DefaultBedrockRegion),
	}
	temperature := args.Float("temperature", 0.7)
	req := &llm.Request{
		Model:       cfg.Model,
		Messages:    messages,
		MaxTokens:   args.Int("max_tokens", 1000),
		Temperature: &temperature,
	}

	client, err := t.factory(ctx, cfg)
	if err != nil {
		return nil, cfg, failp(providerFailure(provider, err))
	}
	resp, err := client.CreateMessage(ctx, req)
	if err != nil {
		return nil, cfg, failp(providerFailure(provider, err))
	}
	return resp, cfg, nil
}

func failp(res tool.Result) *tool.Result { return &res }

// parseChatMessages turns the messages argument into conversation turns.
// A JSON array or object is decoded as role/content messages; anything else
// becomes a single user message carrying the raw string. The second return
// is the first entry missing a valid role or content, nil when all parse.
func parseChatMessages(raw string) ([]llm.Message, any) {
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return []llm.Message{{Role: llm.RoleUser, Content: raw}}, nil
	}

	switch v := parsed.(type) {
	case []any:
		msgs := make([]llm.Message, 0, len(v))
		for _, entry := range v {
			msg, ok := chatMessageFrom(entry)
			if !ok {
				return nil, entry
			}
			msgs = append(msgs, msg)
		}
		return msgs, nil
	case map[string]any:
		msg, ok := chatMessageFrom(v)
		if !ok {
			return nil, v
		}
		return []llm.Message{msg}, nil
	default:
		// JSON scalars are prompts, not conversations.
		return []llm.Message{{Role: llm.RoleUser, Content: raw}}, nil
	}
}

func chatMessageFrom(entry any) (llm.Message, bool) {
	obj, ok := entry.(map[string]any)
	if !ok {
		return llm.Message{}, false
	}
	role, okRole := obj["role"].(string)
	content, okContent := obj["content"].(string)
	if !okRole || !okContent {
		return llm.Message{}, false
	}
	return llm.Message{Role: llm.Role(role), Content: content}, true
}

// prependSystemPrompt puts the prompt ahead of the conversation, merging
// with an existing leading system message instead of stacking two.
func prependSystemPrompt(msgs []llm.Message, prompt string) []llm.Message {
	if prompt == "" {
		return msgs
	}
	if len(msgs) > 0 && msgs[0].Role == llm.RoleSystem {
		msgs[0].Content = prompt + "\n\n" + msgs[0].Content
		return msgs
	}
	return append([]llm.Message{{Role: llm.RoleSystem, Content: prompt}}, msgs...)
}

// providerFailure maps a client error onto the provider's failure message.
func providerFailure(provider string, err error) tool.Result {
	switch provider {
	case "anthropic":
		return tool.Failf("Anthropic API error: %v", err)
	case "bedrock":
		return tool.Failf("AWS Bedrock error: %v", err)
	case "local":
		if status, body, ok := llm.APIStatus(err); ok {
			return tool.Failf("Local API error: %d - %s", status, body)
		}
		return tool.Failf("Local completion error: %v", err)
	default:
		return tool.Failf("OpenAI API error: %v", err)
	}
}

// formatChatResponse renders the completion with each provider's usage block.
func formatChatResponse(cfg llm.ProviderConfig, resp *llm.Response) string {
	switch cfg.Provider {
	case "anthropic":
		return fmt.Sprintf("Response: %s\n\nUsage: %d input tokens, %d output tokens",
			resp.Content, resp.Usage.InputTokens, resp.Usage.OutputTokens)
	case "bedrock":
		return fmt.Sprintf("Response: %s\n\nModel: %s (AWS Bedrock)\nRegion: %s\nUsage: %d prompt tokens, %d completion tokens, %d total tokens",
			resp.Content, cfg.Model, cfg.Region,
			resp.Usage.InputTokens, resp.Usage.OutputTokens, totalTokens(resp.Usage))
	case "local":
		out := "Response: " + resp.Content
		if resp.Usage != (llm.Usage{}) {
			out += fmt.Sprintf("\n\nUsage: %d prompt tokens, %d completion tokens",
				resp.Usage.InputTokens, resp.Usage.OutputTokens)
		}
		return out
	default:
		return fmt.Sprintf("Response: %s\n\nUsage: %d prompt tokens, %d completion tokens, %d total tokens",
			resp.Content, resp.Usage.InputTokens, resp.Usage.OutputTokens, totalTokens(resp.Usage))
	}
}

func totalTokens(u llm.Usage) int {
	if u.TotalTokens > 0 {
		return u.TotalTokens
	}
	return u.InputTokens + u.OutputTokens
}

// SimplePromptTool answers one prompt and returns just the completion text.
type SimplePromptTool struct {
	chat *ChatCompletionTool
}

var _ tool.Tool = (*SimplePromptTool)(nil)

func NewSimplePromptTool(factory llm.Factory) *SimplePromptTool {
	return &SimplePromptTool{chat: NewChatCompletionTool(factory)}
}

func (t *SimplePromptTool) Name() string { return "simple_prompt" }

func (t *SimplePromptTool) Description() string {
	return "Generate a simple completion from a single prompt"
}

func (t *SimplePromptTool) Schema() tool.Schema {
	return tool.Schema{
		{Name: "prompt", Type: tool.TypeString, Required: true, Description: "The prompt to complete"},
		{Name: "provider", Type: tool.TypeString, Default: "openai", Description: "Provider to use: openai, anthropic, bedrock, local"},
		{Name: "model", Type: tool.TypeString, Default: "gpt-3.5-turbo", Description: "Model to use"},
		{Name: "max_tokens", Type: tool.TypeInt, Default: 500, Description: "Maximum tokens in response"},
	}
}

func (t *SimplePromptTool) Execute(ctx context.Context, args tool.Args) tool.Result {
	return tool.Complete(ctx, func(ctx context.Context) tool.Result {
		if !args.Has("prompt") {
			return tool.FailWith(tool.KindMissingParameter, "prompt is required")
		}

		chatArgs := tool.Args{
			"messages":   args.String("prompt"),
			"provider":   args.StringOr("provider", "openai"),
			"model":      args.StringOr("model", llm.DefaultOpenAIModel),
			"max_tokens": args.Int("max_tokens", 500),
		}
		resp, _, fail := t.chat.complete(ctx, chatArgs)
		if fail != nil {
			return *fail
		}
		return tool.Ok(resp.Content)
	})
}
