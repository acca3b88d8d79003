// Package mcp implements the Model Context Protocol server for external
// tool access.
//
// # Overview
//
// MCP (Model Context Protocol) is a standard for AI tool integration. This
// package exposes the toolbelt catalog to external AI clients (Claude Code,
// Claude Desktop, or custom applications) over JSON-RPC 2.0.
//
// # Protocol
//
// The server implements the Streamable HTTP transport: a single POST /mcp
// endpoint carries JSON-RPC requests, and sessions are tracked via the
// Mcp-Session-Id header established during initialize. Supported methods:
//
//   - initialize - handshake; returns protocol and server info
//   - tools/list - available tools with JSON Schema parameter definitions
//   - tools/call - execute a tool by name with arguments
//
// DELETE /mcp terminates a session.
//
// # Authentication
//
// Requests authenticate with a bearer credential:
//
//	Authorization: Bearer <token>
//
// Three credential forms are accepted: HS256 JWTs minted by the server
// (JWTVerifier.Generate), persisted API tokens verified against their
// bcrypt hashes in the store, and a static token configured for
// development. When auth is not required, unauthenticated sessions run as
// "anonymous".
//
// # Tool Execution
//
// tools/call routes through the bridge convention: the result is a single
// text content block holding the adapter's output, or its "Error: ..."
// rendering with isError set.
//
//	{
//	  "jsonrpc": "2.0",
//	  "method": "tools/call",
//	  "params": {
//	    "name": "web_search",
//	    "arguments": {"query": "golang testing"}
//	  },
//	  "id": 2
//	}
//
// # Integration with Claude Code
//
// Add to the MCP configuration:
//
//	{
//	  "mcpServers": {
//	    "toolbelt": {
//	      "url": "http://localhost:8080/mcp",
//	      "authorization": "Bearer <token>"
//	    }
//	  }
//	}
package mcp
