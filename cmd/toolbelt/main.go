// ABOUTME: Entry point for the toolbelt tool server
// ABOUTME: Serves the catalog over MCP and runs tools from the command line

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/2389/toolbelt/internal/config"
	"github.com/2389/toolbelt/internal/registry"
	"github.com/2389/toolbelt/internal/server"
	"github.com/2389/toolbelt/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
  _              _ _          _ _
 | |_ ___   ___ | | |__   ___| | |_
 | __/ _ \ / _ \| | '_ \ / _ \ | __|
 | || (_) | (_) | | |_) |  __/ | |_
  \__\___/ \___/|_|_.__/ \___|_|\__|
`

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx, os.Args[2:])
	case "tools":
		err = runTools(os.Args[2:])
	case "collections":
		err = runCollections()
	case "run":
		err = runRun(ctx, os.Args[2:])
	case "token":
		err = runToken(ctx, os.Args[2:])
	case "version":
		fmt.Printf("toolbelt %s\n", version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: toolbelt <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve [--addr ADDR] [--tailscale]       Start the MCP server")
	fmt.Println("  tools [--category NAME]                 List available tools")
	fmt.Println("  collections                             List tool collections")
	fmt.Println("  run <tool> [--args JSON] [--timeout D]  Run a tool once")
	fmt.Println("  token <create|list|revoke>              Manage API tokens")
	fmt.Println("  version                                 Print the version")
}

// loadConfig loads the config file if present, falling back to defaults.
func loadConfig() (*config.Config, string, error) {
	path := config.DefaultPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Default(), path, nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("loading config: %w", err)
	}
	return cfg, path, nil
}

func runServe(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := flags.String("addr", "", "listen address (overrides config)")
	tailscale := flags.Bool("tailscale", false, "serve on the tailnet via tsnet")
	debug := flags.Bool("debug", false, "enable debug logging")
	if err := flags.Parse(args); err != nil {
		return err
	}

	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	// Version info
	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, configPath, err := loadConfig()
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.HTTPAddr = *addr
	}
	if *tailscale {
		cfg.Tailscale.Enabled = true
		if cfg.Tailscale.Hostname == "" {
			cfg.Tailscale.Hostname = "toolbelt"
		}
	}
	if *debug {
		cfg.Logging.Level = "debug"
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	// Startup info
	green := color.New(color.FgGreen)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Database:  %s\n", cfg.Database.Path)

	if cfg.Tailscale.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Tailscale: ")
		cyan.Print(cfg.Tailscale.Hostname)
		if cfg.Tailscale.Ephemeral {
			gray.Print(" (ephemeral)")
		}
		fmt.Println()
	} else {
		green.Print("    ▶ ")
		fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	}

	fmt.Println()

	logger.Info("starting toolbelt",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"database", cfg.Database.Path,
	)

	srv, err := server.New(cfg, version, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return srv.Run(ctx)
}

func runTools(args []string) error {
	flags := flag.NewFlagSet("tools", flag.ExitOnError)
	category := flags.String("category", "", "only list tools in this category")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	reg, err := buildCatalog(cfg)
	if err != nil {
		return err
	}

	names := reg.ListTools()
	if *category != "" {
		names = reg.ListCategory(*category)
		if len(names) == 0 {
			return fmt.Errorf("no available tools in category %q", *category)
		}
	}

	cyan := color.New(color.FgCyan)
	for _, name := range names {
		info, err := reg.Info(name)
		if err != nil {
			continue
		}
		cyan.Printf("  %-24s", name)
		fmt.Println(firstLine(info.Description))
	}
	fmt.Println()
	fmt.Printf("%d tools available\n", len(names))
	return nil
}

func runCollections() error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	reg, err := buildCatalog(cfg)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	for _, name := range reg.Collections() {
		tools, err := reg.Toolset(name)
		if err != nil {
			continue
		}
		cyan.Printf("  %-14s", name)
		fmt.Println(strings.Join(tools, ", "))
	}
	return nil
}

func runRun(ctx context.Context, args []string) error {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return fmt.Errorf("usage: toolbelt run <tool> [--args JSON] [--timeout DURATION]")
	}
	toolName := args[0]

	flags := flag.NewFlagSet("run", flag.ExitOnError)
	argsJSON := flags.String("args", "{}", "tool arguments as a JSON object")
	timeout := flags.Duration("timeout", 0, "execution timeout (overrides config)")
	if err := flags.Parse(args[1:]); err != nil {
		return err
	}

	var arguments map[string]any
	if err := json.Unmarshal([]byte(*argsJSON), &arguments); err != nil {
		return fmt.Errorf("parsing --args: %w", err)
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if *timeout > 0 {
		cfg.Tools.ExecTimeout = *timeout
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	sqlStore, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer sqlStore.Close()

	reg, err := server.BuildRegistry(cfg, sqlStore, logger)
	if err != nil {
		return err
	}
	exec := server.NewExecutor(reg, sqlStore, nil, cfg.Tools.ExecTimeout, logger.With("component", "executor"))

	text, ok, err := exec.Run(ctx, toolName, arguments)
	if err != nil {
		return fmt.Errorf("running %s: %w", toolName, err)
	}

	fmt.Println(text)
	if !ok {
		// Output already carries the tool's error message
		sqlStore.Close()
		os.Exit(1)
	}
	return nil
}

func runToken(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: toolbelt token <create|list|revoke>")
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	sqlStore, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer sqlStore.Close()

	switch args[0] {
	case "create":
		flags := flag.NewFlagSet("token create", flag.ExitOnError)
		name := flags.String("name", "", "token name")
		if err := flags.Parse(args[1:]); err != nil {
			return err
		}
		if *name == "" {
			return fmt.Errorf("--name is required")
		}

		plaintext, rec, err := sqlStore.CreateAPIToken(ctx, *name)
		if err != nil {
			return fmt.Errorf("creating token: %w", err)
		}

		green := color.New(color.FgGreen)
		yellow := color.New(color.FgYellow)
		green.Printf("  ✓ Created token %q (%s)\n", rec.Name, rec.ID)
		fmt.Println()
		fmt.Printf("  %s\n", plaintext)
		fmt.Println()
		yellow.Println("  Store this token now. It cannot be shown again.")
		return nil

	case "list":
		tokens, err := sqlStore.ListAPITokens(ctx)
		if err != nil {
			return fmt.Errorf("listing tokens: %w", err)
		}
		if len(tokens) == 0 {
			fmt.Println("No tokens.")
			return nil
		}
		for _, tok := range tokens {
			lastUsed := "never"
			if tok.LastUsedAt != nil {
				lastUsed = tok.LastUsedAt.Local().Format(time.DateTime)
			}
			fmt.Printf("  %-36s  %-20s  created %s  last used %s\n",
				tok.ID, tok.Name, tok.CreatedAt.Local().Format(time.DateOnly), lastUsed)
		}
		return nil

	case "revoke":
		if len(args) < 2 {
			return fmt.Errorf("usage: toolbelt token revoke <id>")
		}
		if err := sqlStore.DeleteAPIToken(ctx, args[1]); err != nil {
			return fmt.Errorf("revoking token: %w", err)
		}
		fmt.Println("revoked")
		return nil

	default:
		return fmt.Errorf("unknown token command: %s", args[0])
	}
}

// buildCatalog constructs a registry for the listing commands. Probes
// run as usual, so listings reflect what this host can execute.
func buildCatalog(cfg *config.Config) (*registry.Registry, error) {
	var opts []registry.Option
	if cfg.Tools.CollectionsPath != "" {
		collections, err := registry.LoadCollections(cfg.Tools.CollectionsPath)
		if err != nil {
			return nil, fmt.Errorf("loading collections: %w", err)
		}
		opts = append(opts, registry.WithCollections(collections))
	}

	reg, err := registry.New(registry.Deps{}, opts...)
	if err != nil {
		return nil, fmt.Errorf("building catalog: %w", err)
	}
	return reg, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	// Format timestamp
	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	// Colorize level
	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	// Print message
	buf.WriteString(r.Message)

	// Print handler-level attrs first (from WithAttrs)
	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	// Print record attrs
	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}
