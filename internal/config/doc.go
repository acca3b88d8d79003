// Package config handles configuration loading for toolbelt.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable
// expansion. Every field has a sensible default; a missing config file
// is not an error, and the zero config from Default is fully usable.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from TOOLBELT_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/toolbelt/config.yaml
//  3. ~/.config/toolbelt/config.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${TOOLBELT_JWT_SECRET}"
//
// Syntax: ${VAR_NAME}. Unset variables expand to the empty string.
//
// TOOLBELT_DB_PATH overrides database.path regardless of the file
// contents; the special value ":memory:" selects an in-memory database.
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	tools:
//	  exec_timeout: "5m"
//	search:
//	  cache_ttl: "10m"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: ":8080"
//
// Tailscale (serves on the tailnet instead of a local address):
//
//	tailscale:
//	  enabled: true
//	  hostname: "toolbelt"
//	  auth_key: "${TS_AUTHKEY}"
//	  ephemeral: false
//
// Authentication for MCP sessions:
//
//	auth:
//	  jwt_secret: "${TOOLBELT_JWT_SECRET}"
//	  static_token: "dev-token"
//	  require: true
//
// Tool catalog:
//
//	tools:
//	  collections_path: "~/.config/toolbelt/collections.toml"
//	  exec_timeout: "5m"
//
// Chat provider defaults for the AI-backed tools:
//
//	llm:
//	  provider: "anthropic"
//	  model: "claude-sonnet-4-5"
//	  api_key: "${ANTHROPIC_API_KEY}"
package config
