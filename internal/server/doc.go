// Package server wires the tool catalog, store, and HTTP surface into a
// running toolbelt instance.
//
// # Overview
//
// New builds every component from a config.Config: the SQLite store, the
// tool registry with its probed catalog, the invocation executor, the
// event broadcaster, and the MCP endpoint. Run starts the HTTP server
// and blocks until the context is canceled.
//
// # Endpoints
//
//   - "/" status page: catalog availability, collections, recent invocations
//   - "/health" liveness, "/health/ready" readiness (at least one tool available)
//   - "/events" server-sent events stream of tool invocations
//   - "/mcp" MCP Streamable HTTP endpoint (see the mcp package)
//
// # Execution Path
//
// Every tool call, whether it arrives over MCP or from the CLI, flows
// through the Executor: a fresh tool instance from the registry, a
// bridged Call with the configured timeout, an invocation record in the
// store, and a started/completed event pair on the broadcaster.
//
// # Listeners
//
// By default the server binds a TCP address. With tailscale.enabled it
// joins the tailnet as its own node via tsnet and serves on the
// tailnet interface instead; state lives under
// ~/.local/share/toolbelt/tailscale unless configured otherwise.
package server
