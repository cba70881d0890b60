// Package config loads the equity service configuration from an HCL file with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/pokerequity/equity"
)

// Environment variables that override file settings.
const (
	EnvAddress   = "EQUITY_ADDRESS"
	EnvPort      = "EQUITY_PORT"
	EnvLogLevel  = "EQUITY_LOG_LEVEL"
	EnvCachePath = "EQUITY_CACHE_PATH"
)

// Config is the complete service configuration.
type Config struct {
	Server *ServerSettings `hcl:"server,block"`
	Engine *EngineSettings `hcl:"engine,block"`
	Cache  *CacheSettings  `hcl:"cache,block"`
}

// ServerSettings controls the HTTP listener and logging.
type ServerSettings struct {
	Address        string `hcl:"address,optional"`
	Port           int    `hcl:"port,optional"`
	LogLevel       string `hcl:"log_level,optional"`
	LogFormat      string `hcl:"log_format,optional"`
	RequestTimeout int    `hcl:"request_timeout,optional"` // seconds
}

// EngineSettings tunes the equity calculator.
type EngineSettings struct {
	ExhaustiveThreshold int    `hcl:"exhaustive_threshold,optional"`
	DefaultIterations   int    `hcl:"default_iterations,optional"`
	MaxIterations       int    `hcl:"max_iterations,optional"`
	Workers             int    `hcl:"workers,optional"`
	Strategy            string `hcl:"strategy,optional"`
}

// CacheSettings controls the on-disk result cache. The cache is on unless disabled.
type CacheSettings struct {
	Disabled bool   `hcl:"disabled,optional"`
	Path     string `hcl:"path,optional"`
}

const (
	defaultAddress        = "localhost"
	defaultPort           = 8080
	defaultLogLevel       = "info"
	defaultLogFormat      = "console"
	defaultRequestTimeout = 30
	defaultCachePath      = "equity-cache.db"
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from an HCL file. A missing file yields Default().
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server == nil {
		c.Server = &ServerSettings{}
	}
	if c.Engine == nil {
		c.Engine = &EngineSettings{}
	}
	if c.Cache == nil {
		c.Cache = &CacheSettings{}
	}

	if c.Server.Address == "" {
		c.Server.Address = defaultAddress
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = defaultLogLevel
	}
	if c.Server.LogFormat == "" {
		c.Server.LogFormat = defaultLogFormat
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = defaultRequestTimeout
	}

	if c.Engine.ExhaustiveThreshold == 0 {
		c.Engine.ExhaustiveThreshold = equity.DefaultExhaustiveThreshold
	}
	if c.Engine.DefaultIterations == 0 {
		c.Engine.DefaultIterations = equity.DefaultIterations
	}
	if c.Engine.MaxIterations == 0 {
		c.Engine.MaxIterations = equity.MaxIterations
	}

	if c.Cache.Path == "" {
		c.Cache.Path = defaultCachePath
	}
}

// ApplyEnv overrides settings from environment variables read through getenv
// (normally os.Getenv).
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvAddress); v != "" {
		c.Server.Address = v
	}
	if v := getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s value: %w", EnvPort, err)
		}
		c.Server.Port = port
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Server.LogLevel = v
	}
	if v := getenv(EnvCachePath); v != "" {
		c.Cache.Path = v
		c.Cache.Disabled = false
	}
	return nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	switch c.Server.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format %q: want console or json", c.Server.LogFormat)
	}
	if c.Server.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative")
	}
	if c.Engine.ExhaustiveThreshold < 0 || c.Engine.ExhaustiveThreshold > equity.MaxExhaustiveThreshold {
		return fmt.Errorf("engine: exhaustive threshold must be between 0 and %d", equity.MaxExhaustiveThreshold)
	}
	if c.Engine.MaxIterations < 1 {
		return fmt.Errorf("engine: max iterations must be positive")
	}
	if c.Engine.DefaultIterations < 1 || c.Engine.DefaultIterations > c.Engine.MaxIterations {
		return fmt.Errorf("engine: default iterations must be between 1 and max iterations")
	}
	if c.Engine.Workers < 0 {
		return fmt.Errorf("engine: workers must not be negative")
	}
	if _, err := equity.ParseStrategy(c.Engine.Strategy); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if !c.Cache.Disabled && c.Cache.Path == "" {
		return fmt.Errorf("cache: path is required when enabled")
	}
	return nil
}

// ListenAddress returns the host:port the server binds to.
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// Timeout returns the per-request calculation deadline.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Server.RequestTimeout) * time.Second
}

// CalculatorOptions translates the engine block into calculator options. Call
// Validate first.
func (c *Config) CalculatorOptions() []equity.Option {
	opts := []equity.Option{
		equity.WithExhaustiveThreshold(uint64(c.Engine.ExhaustiveThreshold)),
		equity.WithDefaultIterations(c.Engine.DefaultIterations),
		equity.WithMaxIterations(c.Engine.MaxIterations),
	}
	if c.Engine.Workers > 0 {
		opts = append(opts, equity.WithWorkers(c.Engine.Workers))
	}
	if s, err := equity.ParseStrategy(c.Engine.Strategy); err == nil {
		opts = append(opts, equity.WithStrategy(s))
	}
	return opts
}
