// ABOUTME: MCP-compatible HTTP server exposing the tool catalog to external
// ABOUTME: agents. Implements Streamable HTTP transport with session management.

package mcp

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/2389/toolbelt/internal/bridge"
	"github.com/2389/toolbelt/internal/registry"
	"github.com/2389/toolbelt/internal/store"
)

// Supported MCP protocol versions.
var supportedProtocolVersions = map[string]bool{
	"2025-03-26": true,
	"2025-11-25": true,
}

// latestProtocolVersion is the version advertised in initialize responses.
const latestProtocolVersion = "2025-11-25"

// MaxRequestBodySize is the maximum allowed size for request bodies (1MB).
const MaxRequestBodySize = 1 << 20

// JSON-RPC 2.0 types

// JSONRPCRequest represents a JSON-RPC 2.0 request.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCResponse represents a JSON-RPC 2.0 response.
type JSONRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *JSONRPCError   `json:"error,omitempty"`
}

// JSONRPCError represents a JSON-RPC 2.0 error object.
type JSONRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Standard JSON-RPC error codes.
const (
	JSONRPCParseError     = -32700
	JSONRPCInvalidRequest = -32600
	JSONRPCMethodNotFound = -32601
	JSONRPCInvalidParams  = -32602
	JSONRPCInternalError  = -32603
)

// ToolInfo is an MCP tool definition in a tools/list response.
type ToolInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// ListToolsResult is the result for tools/list.
type ListToolsResult struct {
	Tools []ToolInfo `json:"tools"`
}

// CallToolParams are the params for tools/call.
type CallToolParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// CallToolResult is the result for tools/call.
type CallToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// Content represents content in a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Runner executes one named tool call through the bridge convention and
// returns the rendered text. ok is false for failed envelopes; err is
// reserved for calls that never reached an adapter (unknown tool,
// cancelled request).
type Runner interface {
	Run(ctx context.Context, name string, arguments map[string]any) (text string, ok bool, err error)
}

// session tracks an active MCP client session.
type session struct {
	id              string
	protocolVersion string
	principal       string
	ownerToken      string // bearer credential used at initialize, bound for DELETE checks
	createdAt       time.Time
}

// sessionStore manages active MCP sessions in memory.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*session)}
}

func (s *sessionStore) create(protocolVersion, principal, ownerToken string) *session {
	sess := &session{
		id:              uuid.New().String(),
		protocolVersion: protocolVersion,
		principal:       principal,
		ownerToken:      ownerToken,
		createdAt:       time.Now(),
	}
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	return sess
}

func (s *sessionStore) get(id string) (*session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	return sess, ok
}

func (s *sessionStore) delete(id string) bool {
	s.mu.Lock()
	_, existed := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	return existed
}

// Config holds configuration for the MCP server.
type Config struct {
	Registry    *registry.Registry
	Runner      Runner
	Logger      *slog.Logger
	Verifier    TokenVerifier    // JWT verification (optional)
	Tokens      store.TokenStore // persisted API tokens (optional)
	StaticToken string           // fixed development token (optional)
	RequireAuth bool             // reject unauthenticated requests
	Version     string           // advertised in serverInfo, "dev" when empty
}

// Server implements MCP-compatible HTTP endpoints for external agents.
// Conforms to the MCP Streamable HTTP transport specification.
type Server struct {
	registry    *registry.Registry
	runner      Runner
	logger      *slog.Logger
	verifier    TokenVerifier
	tokens      store.TokenStore
	staticToken string
	requireAuth bool
	version     string
	sessions    *sessionStore
}

// NewServer creates an MCP server with the given configuration.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Registry == nil {
		return nil, errors.New("registry is required")
	}
	if cfg.Runner == nil {
		return nil, errors.New("runner is required")
	}
	if cfg.RequireAuth && cfg.Verifier == nil && cfg.Tokens == nil && cfg.StaticToken == "" {
		return nil, errors.New("a verifier, token store, or static token is required when auth is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	return &Server{
		registry:    cfg.Registry,
		runner:      cfg.Runner,
		logger:      logger,
		verifier:    cfg.Verifier,
		tokens:      cfg.Tokens,
		staticToken: cfg.StaticToken,
		requireAuth: cfg.RequireAuth,
		version:     version,
		sessions:    newSessionStore(),
	}, nil
}

// RegisterRoutes registers the MCP endpoint on the given ServeMux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/mcp", s.handleMCP)
}

// handleMCP is the single MCP endpoint supporting POST and DELETE per the
// Streamable HTTP transport spec.
func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handlePost(w, r)
	case http.MethodGet:
		// Server-initiated SSE streams are not supported.
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	case http.MethodDelete:
		s.handleDelete(w, r)
	default:
		w.Header().Set("Allow", "POST, GET, DELETE")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// handleDelete terminates a session. The caller must present the same
// credential used at initialize.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get("Mcp-Session-Id")
	if sessionID == "" {
		http.Error(w, "Bad Request: missing Mcp-Session-Id", http.StatusBadRequest)
		return
	}

	sess, ok := s.sessions.get(sessionID)
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	if sess.ownerToken != "" && bearerToken(r) != sess.ownerToken {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	s.sessions.delete(sessionID)
	s.logger.Info("MCP session terminated", "session_id", sessionID)
	w.WriteHeader(http.StatusNoContent)
}

// handlePost processes JSON-RPC messages sent via HTTP POST.
func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get("Mcp-Session-Id")
	protoVersion := r.Header.Get("Mcp-Protocol-Version")

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize+1))
	if err != nil {
		s.sendError(w, nil, JSONRPCParseError, "failed to read request body", nil)
		return
	}
	if int64(len(body)) > MaxRequestBodySize {
		s.sendError(w, nil, JSONRPCInvalidRequest, "request body too large", nil)
		return
	}

	var req JSONRPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.sendError(w, nil, JSONRPCParseError, "invalid JSON", nil)
		return
	}

	if req.JSONRPC != "2.0" {
		s.sendError(w, req.ID, JSONRPCInvalidRequest, "invalid JSON-RPC version", nil)
		return
	}

	isInitialize := req.Method == "initialize"
	isNotification := len(req.ID) == 0 || string(req.ID) == "null"

	// Per spec, the version header is not required on initialize.
	if !isInitialize && protoVersion != "" && !supportedProtocolVersions[protoVersion] {
		http.Error(w, "Bad Request: unsupported MCP-Protocol-Version", http.StatusBadRequest)
		return
	}

	var principal string
	if isInitialize {
		principal, err = s.authenticate(r)
		if err != nil {
			if errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrExpiredToken) {
				s.sendError(w, nil, JSONRPCInvalidRequest, "invalid or expired token", nil)
			} else {
				s.sendError(w, nil, JSONRPCInvalidRequest, "authentication required", nil)
			}
			return
		}
	} else {
		// Non-initialize requests require a live session.
		if sessionID == "" {
			http.Error(w, "Bad Request: missing Mcp-Session-Id", http.StatusBadRequest)
			return
		}
		sess, ok := s.sessions.get(sessionID)
		if !ok {
			// Session expired or invalid. The client must re-initialize.
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		principal = sess.principal
	}

	s.logger.Debug("MCP request",
		"method", req.Method,
		"is_notification", isNotification,
		"session_id", sessionID,
	)

	// Notifications are accepted with HTTP 202 and no body.
	if isNotification {
		if strings.HasPrefix(req.Method, "notifications/") {
			s.logger.Debug("accepted MCP notification", "method", req.Method)
		} else {
			s.logger.Warn("received notification for non-notification method", "method", req.Method)
		}
		w.WriteHeader(http.StatusAccepted)
		return
	}

	switch req.Method {
	case "initialize":
		s.handleInitialize(w, r, req, principal)
	case "tools/list":
		s.handleToolsList(w, req)
	case "tools/call":
		s.handleToolsCall(w, r, req)
	default:
		s.sendError(w, req.ID, JSONRPCMethodNotFound, "method not found", nil)
	}
}

// handleInitialize handles the MCP initialize handshake and creates a
// session.
func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request, req JSONRPCRequest, principal string) {
	sess := s.sessions.create(latestProtocolVersion, principal, bearerToken(r))

	s.logger.Info("MCP session created",
		"session_id", sess.id,
		"principal", principal,
		"protocol_version", sess.protocolVersion,
	)

	w.Header().Set("Mcp-Session-Id", sess.id)

	result := map[string]any{
		"protocolVersion": latestProtocolVersion,
		"capabilities": map[string]any{
			"tools": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    "toolbelt",
			"version": s.version,
		},
	}
	s.sendResult(w, req.ID, result)
}

// handleToolsList handles tools/list requests. Only available tools are
// listed, in catalog order.
func (s *Server) handleToolsList(w http.ResponseWriter, req JSONRPCRequest) {
	names := s.registry.ListTools()
	result := ListToolsResult{Tools: make([]ToolInfo, 0, len(names))}

	for _, name := range names {
		info, err := s.registry.Info(name)
		if err != nil {
			continue
		}
		schema, err := bridge.JSONSchema(info.Schema)
		if err != nil {
			s.logger.Warn("skipping tool with unserializable schema", "tool", name, "error", err)
			continue
		}
		result.Tools = append(result.Tools, ToolInfo{
			Name:        info.Name,
			Description: info.Description,
			InputSchema: schema,
		})
	}

	s.logger.Debug("tools/list", "count", len(result.Tools))
	s.sendResult(w, req.ID, result)
}

// handleToolsCall handles tools/call requests.
func (s *Server) handleToolsCall(w http.ResponseWriter, r *http.Request, req JSONRPCRequest) {
	var params CallToolParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			s.sendError(w, req.ID, JSONRPCInvalidParams, "invalid params", nil)
			return
		}
	}

	if params.Name == "" {
		s.sendError(w, req.ID, JSONRPCInvalidParams, "tool name is required", nil)
		return
	}

	requestID := uuid.New().String()
	s.logger.Debug("tools/call", "tool_name", params.Name, "request_id", requestID)

	text, ok, err := s.runner.Run(r.Context(), params.Name, params.Arguments)
	if err != nil {
		s.handleRunError(w, req.ID, params.Name, requestID, err)
		return
	}

	result := CallToolResult{
		Content: []Content{{Type: "text", Text: text}},
		IsError: !ok,
	}

	s.logger.Debug("tools/call complete",
		"tool_name", params.Name,
		"request_id", requestID,
		"is_error", result.IsError,
	)
	s.sendResult(w, req.ID, result)
}

// authenticate resolves the request's bearer credential to a principal.
// A missing credential is only accepted when auth is not required; a
// present-but-invalid credential is always rejected.
func (s *Server) authenticate(r *http.Request) (string, error) {
	token := bearerToken(r)
	if token == "" {
		if s.requireAuth {
			return "", errors.New("no authentication provided")
		}
		return "anonymous", nil
	}

	if s.staticToken != "" &&
		subtle.ConstantTimeCompare([]byte(token), []byte(s.staticToken)) == 1 {
		return "dev", nil
	}

	if s.tokens != nil {
		rec, err := s.tokens.VerifyAPIToken(r.Context(), token)
		if err == nil {
			return rec.Name, nil
		}
		if !errors.Is(err, store.ErrInvalidToken) {
			return "", fmt.Errorf("verifying token: %w", err)
		}
	}

	if s.verifier != nil {
		principal, err := s.verifier.Verify(token)
		if err == nil {
			return principal, nil
		}
		if errors.Is(err, ErrExpiredToken) {
			return "", ErrExpiredToken
		}
	}

	return "", ErrInvalidToken
}

// bearerToken extracts the Authorization bearer credential, or "".
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// handleRunError maps runner failures onto JSON-RPC errors.
func (s *Server) handleRunError(w http.ResponseWriter, id json.RawMessage, toolName, requestID string, err error) {
	s.logger.Warn("tool execution failed",
		"tool_name", toolName,
		"request_id", requestID,
		"error", err,
	)

	code := JSONRPCInternalError
	message := "tool execution failed"

	switch {
	case errors.Is(err, registry.ErrNotFound):
		code = JSONRPCInvalidParams
		message = "tool not found"
	case errors.Is(err, context.DeadlineExceeded):
		message = "tool execution timed out"
	case errors.Is(err, context.Canceled):
		message = "request cancelled"
	}

	s.sendError(w, id, code, message, nil)
}

// sendResult sends a successful JSON-RPC response.
func (s *Server) sendResult(w http.ResponseWriter, id json.RawMessage, result any) {
	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("failed to encode JSON-RPC response", "error", err)
	}
}

// sendError sends a JSON-RPC error response.
func (s *Server) sendError(w http.ResponseWriter, id json.RawMessage, code int, message string, data any) {
	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &JSONRPCError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("failed to encode JSON-RPC error response", "error", err)
	}
}
