// ABOUTME: Server orchestrator that wires the catalog, store, and HTTP surface
// ABOUTME: Manages listener setup (TCP or Tailscale) and graceful shutdown

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"tailscale.com/ipn/ipnstate"
	"tailscale.com/tsnet"

	"github.com/2389/toolbelt/internal/config"
	"github.com/2389/toolbelt/internal/events"
	"github.com/2389/toolbelt/internal/llm"
	"github.com/2389/toolbelt/internal/mcp"
	"github.com/2389/toolbelt/internal/registry"
	"github.com/2389/toolbelt/internal/search"
	"github.com/2389/toolbelt/internal/store"
)

// Server orchestrates the toolbelt server components: the tool registry,
// the SQLite store, the MCP endpoint, the status page, and the event stream.
type Server struct {
	config      *config.Config
	registry    *registry.Registry
	store       *store.SQLiteStore
	executor    *Executor
	broadcaster *events.Broadcaster
	mcpServer   *mcp.Server
	httpServer  *http.Server
	tsnetServer *tsnet.Server
	logger      *slog.Logger
	version     string
}

// New creates a Server from configuration. The version string is
// advertised on the status page and in MCP serverInfo.
func New(cfg *config.Config, version string, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	sqlStore, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}

	reg, err := BuildRegistry(cfg, sqlStore, logger)
	if err != nil {
		_ = sqlStore.Close()
		return nil, err
	}

	broadcaster := events.NewBroadcaster(logger.With("component", "broadcaster"))
	executor := NewExecutor(reg, sqlStore, broadcaster, cfg.Tools.ExecTimeout, logger.With("component", "executor"))

	var verifier mcp.TokenVerifier
	if cfg.Auth.JWTSecret != "" {
		verifier = mcp.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	}

	mcpServer, err := mcp.NewServer(mcp.Config{
		Registry:    reg,
		Runner:      executor,
		Logger:      logger.With("component", "mcp"),
		Verifier:    verifier,
		Tokens:      sqlStore,
		StaticToken: cfg.Auth.StaticToken,
		RequireAuth: cfg.Auth.Require,
		Version:     version,
	})
	if err != nil {
		_ = sqlStore.Close()
		return nil, fmt.Errorf("creating MCP server: %w", err)
	}

	srv := &Server{
		config:      cfg,
		registry:    reg,
		store:       sqlStore,
		executor:    executor,
		broadcaster: broadcaster,
		mcpServer:   mcpServer,
		logger:      logger.With("component", "server"),
		version:     version,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", srv.handleStatus)
	mux.HandleFunc("/health", srv.handleHealth)
	mux.HandleFunc("/health/ready", srv.handleReady)
	mux.HandleFunc("/events", srv.handleEvents)
	mcpServer.RegisterRoutes(mux)

	srv.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return srv, nil
}

// BuildRegistry constructs the tool registry with dependencies drawn
// from configuration. The CLI shares it for one-shot tool runs.
func BuildRegistry(cfg *config.Config, sqlStore *store.SQLiteStore, logger *slog.Logger) (*registry.Registry, error) {
	cache := search.NewCache(cfg.Search.CacheTTL, cfg.Search.CacheSize)
	searcher := search.NewDuckDuckGo(cfg.Search.BaseURL, nil, cache)

	deps := registry.Deps{
		Plans:    sqlStore,
		Searcher: searcher,
		LLM:      llm.NewClient,
		ChatCfg: llm.ProviderConfig{
			Provider: cfg.LLM.Provider,
			Model:    cfg.LLM.Model,
			APIKey:   cfg.LLM.APIKey,
			BaseURL:  cfg.LLM.BaseURL,
			Region:   cfg.LLM.Region,
		},
	}

	opts := []registry.Option{}
	if cfg.Tools.CollectionsPath != "" {
		collections, err := registry.LoadCollections(cfg.Tools.CollectionsPath)
		if err != nil {
			return nil, fmt.Errorf("loading collections: %w", err)
		}
		opts = append(opts, registry.WithCollections(collections))
		logger.Info("user collections loaded", "path", cfg.Tools.CollectionsPath, "count", len(collections))
	}

	reg, err := registry.New(deps, opts...)
	if err != nil {
		return nil, fmt.Errorf("building registry: %w", err)
	}
	return reg, nil
}

// Run starts the server and blocks until the context is canceled.
// Returns nil on graceful shutdown, or an error if the server fails.
func (s *Server) Run(ctx context.Context) error {
	ln, err := s.setupListener(ctx)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		s.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := s.gracefulShutdown()
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the original context is already canceled.
func (s *Server) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}

// setupListener creates a listener based on configuration (Tailscale or TCP).
func (s *Server) setupListener(ctx context.Context) (net.Listener, error) {
	if s.config.Tailscale.Enabled {
		return s.setupTailscaleListener(ctx)
	}

	ln, err := net.Listen("tcp", s.config.Server.HTTPAddr)
	if err != nil {
		return nil, fmt.Errorf("listening on HTTP address: %w", err)
	}
	return ln, nil
}

// resolveTailscaleStateDir returns the state directory, using default if not configured.
func resolveTailscaleStateDir(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory for tailscale state (set tailscale.state_dir explicitly): %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "toolbelt", "tailscale"), nil
}

// resolveTailscaleAuthKey returns the auth key from config or environment.
func resolveTailscaleAuthKey(configured string) (string, error) {
	authKey := configured
	if authKey == "" {
		authKey = os.Getenv("TS_AUTHKEY")
	}
	if authKey == "" {
		return "", errors.New("tailscale auth key required: set auth_key in config or TS_AUTHKEY environment variable (get one at https://login.tailscale.com/admin/settings/keys)")
	}
	return authKey, nil
}

// setupTailscaleListener creates a tsnet server and returns its HTTP listener.
func (s *Server) setupTailscaleListener(ctx context.Context) (net.Listener, error) {
	tsCfg := s.config.Tailscale

	stateDir, err := resolveTailscaleStateDir(tsCfg.StateDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(stateDir, 0700); err != nil {
		return nil, fmt.Errorf("creating tailscale state dir: %w", err)
	}

	authKey, err := resolveTailscaleAuthKey(tsCfg.AuthKey)
	if err != nil {
		return nil, err
	}

	s.tsnetServer = &tsnet.Server{
		Hostname:  tsCfg.Hostname,
		Dir:       stateDir,
		Ephemeral: tsCfg.Ephemeral,
		AuthKey:   authKey,
	}

	s.logger.Info("starting tailscale node", "hostname", tsCfg.Hostname, "state_dir", stateDir, "ephemeral", tsCfg.Ephemeral)
	status, err := s.tsnetServer.Up(ctx)
	if err != nil {
		_ = s.tsnetServer.Close()
		return nil, fmt.Errorf("starting tailscale: %w", err)
	}

	s.logTailscaleStatus(tsCfg.Hostname, status)

	ln, err := s.tsnetServer.Listen("tcp", ":80")
	if err != nil {
		_ = s.tsnetServer.Close()
		return nil, fmt.Errorf("listening on tailscale HTTP port: %w", err)
	}
	return ln, nil
}

// logTailscaleStatus logs info about the tailscale node status.
func (s *Server) logTailscaleStatus(hostname string, status *ipnstate.Status) {
	var tsAddr, dnsName string
	if len(status.TailscaleIPs) > 0 {
		tsAddr = status.TailscaleIPs[0].String()
	} else {
		s.logger.Warn("tailscale node has no IP addresses assigned")
	}
	if status.Self != nil {
		dnsName = status.Self.DNSName
	}
	s.logger.Info("tailscale node ready", "hostname", hostname, "tailscale_ip", tsAddr, "dns_name", dnsName)
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

// Shutdown gracefully stops the server and releases resources.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", s.httpServer.Shutdown(ctx))

	if s.tsnetServer != nil {
		errs = appendCloseError(errs, "tailscale shutdown", s.tsnetServer.Close())
	}

	s.broadcaster.Close()
	errs = appendCloseError(errs, "store close", s.store.Close())

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// handleHealth returns 200 OK if the server is alive.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady returns 200 OK if the catalog has at least one available tool.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	tools := s.registry.ListTools()
	if len(tools) == 0 {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("no tools available"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "ready (%d tools)", len(tools))
}

// sendJSONError writes a JSON error response.
func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
