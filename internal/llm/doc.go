// Package llm holds the provider clients behind the chat completion
// adapters. Four providers are supported: OpenAI, Anthropic, AWS Bedrock,
// and local OpenAI-compatible endpoints (Ollama and friends). All of them
// sit behind the single-method Client interface; the adapters format
// provider-specific output text themselves.
package llm
