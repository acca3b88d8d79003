// ABOUTME: Configuration loading and parsing for toolbelt
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete toolbelt configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tools     ToolsConfig     `yaml:"tools"`
	LLM       LLMConfig       `yaml:"llm"`
	Search    SearchConfig    `yaml:"search"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// TailscaleConfig holds Tailscale tsnet configuration
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Hostname  string `yaml:"hostname"`
	AuthKey   string `yaml:"auth_key"`
	StateDir  string `yaml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds MCP authentication configuration
type AuthConfig struct {
	JWTSecret   string `yaml:"jwt_secret"`
	StaticToken string `yaml:"static_token"` // shared development token
	Require     bool   `yaml:"require"`      // reject unauthenticated sessions
}

// ToolsConfig holds tool catalog and execution configuration
type ToolsConfig struct {
	// CollectionsPath points at a TOML file declaring extra named
	// collections layered over the built-in ones.
	CollectionsPath string `yaml:"collections_path"`

	ExecTimeout time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	ExecTimeoutRaw string `yaml:"exec_timeout"`
}

// LLMConfig holds provider defaults for the chat-backed tools
type LLMConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	Region   string `yaml:"region"`
}

// SearchConfig holds web search configuration
type SearchConfig struct {
	BaseURL string `yaml:"base_url"`

	CacheTTL time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	CacheTTLRaw string `yaml:"cache_ttl"`
	CacheSize   int    `yaml:"cache_size"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg
}

// DefaultPath returns the config file location.
// Priority: TOOLBELT_CONFIG env var > XDG_CONFIG_HOME/toolbelt/config.yaml > ~/.config/toolbelt/config.yaml
func DefaultPath() string {
	if path := os.Getenv("TOOLBELT_CONFIG"); path != "" {
		return path
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml"
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "toolbelt", "config.yaml")
}

// DefaultDatabasePath returns the database location used when none is configured.
func DefaultDatabasePath() string {
	return filepath.Join(filepath.Dir(DefaultPath()), "toolbelt.db")
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills in values a minimal config file may omit.
func applyDefaults(cfg *Config) {
	if cfg.Server.HTTPAddr == "" {
		cfg.Server.HTTPAddr = ":8080"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = DefaultDatabasePath()
	}
	if cfg.Tools.ExecTimeout == 0 {
		cfg.Tools.ExecTimeout = 5 * time.Minute
	}
	if cfg.Search.CacheTTL == 0 {
		cfg.Search.CacheTTL = 5 * time.Minute
	}
	if cfg.Search.CacheSize == 0 {
		cfg.Search.CacheSize = 128
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

// applyEnvOverrides applies environment variables that take precedence
// over file values. TOOLBELT_DB_PATH may be ":memory:" for an ephemeral
// database.
func applyEnvOverrides(cfg *Config) {
	if path := os.Getenv("TOOLBELT_DB_PATH"); path != "" {
		cfg.Database.Path = path
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	// A listen address is required unless Tailscale is enabled
	if !c.Tailscale.Enabled && c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required (or enable tailscale)")
	}

	// Tailscale requires a hostname
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Auth.Require && c.Auth.JWTSecret == "" && c.Auth.StaticToken == "" {
		return fmt.Errorf("auth.jwt_secret or auth.static_token is required when auth.require is enabled")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Tools.ExecTimeoutRaw != "" {
		cfg.Tools.ExecTimeout, err = time.ParseDuration(cfg.Tools.ExecTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing exec_timeout %q: %w", cfg.Tools.ExecTimeoutRaw, err)
		}
	}

	if cfg.Search.CacheTTLRaw != "" {
		cfg.Search.CacheTTL, err = time.ParseDuration(cfg.Search.CacheTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing cache_ttl %q: %w", cfg.Search.CacheTTLRaw, err)
		}
	}

	return nil
}
