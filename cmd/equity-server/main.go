package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/lox/pokerequity/internal/config"
	"github.com/lox/pokerequity/internal/logging"
	"github.com/lox/pokerequity/internal/server"
	"github.com/lox/pokerequity/internal/store"
)

var CLI struct {
	Config    string `short:"c" long:"config" default:"equity-server.hcl" help:"Path to HCL configuration file"`
	Addr      string `short:"a" long:"addr" help:"Address to bind to (overrides config)"`
	Port      int    `short:"p" long:"port" help:"Port to listen on (overrides config)"`
	LogLevel  string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	LogFormat string `long:"log-format" help:"Log format: console or json (overrides config)"`
	NoCache   bool   `long:"no-cache" help:"Disable the result cache"`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("equity-server"),
		kong.Description("Serve hold'em equity calculations over HTTP."),
	)

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		kctx.Exit(1)
	}

	logger := logging.Setup(cfg.Server.LogLevel, cfg.Server.LogFormat)
	if err := serve(cfg, logger); err != nil {
		logger.Error().Err(err).Msg("Server failed")
		kctx.Exit(1)
	}
}

// loadConfig reads the file, then the environment, then command line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if CLI.Addr != "" {
		cfg.Server.Address = CLI.Addr
	}
	if CLI.Port != 0 {
		cfg.Server.Port = CLI.Port
	}
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}
	if CLI.LogFormat != "" {
		cfg.Server.LogFormat = CLI.LogFormat
	}
	if CLI.NoCache {
		cfg.Cache.Disabled = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serve(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := logging.SignalContext(context.Background(), logger)
	defer stop()

	opts := []server.Option{
		server.WithTimeout(cfg.Timeout()),
		server.WithCalculatorOptions(cfg.CalculatorOptions()...),
	}
	if !cfg.Cache.Disabled {
		cache, err := store.Open(cfg.Cache.Path)
		if err != nil {
			return err
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn().Err(err).Msg("Failed to close cache")
			}
		}()
		logger.Info().Str("path", cfg.Cache.Path).Msg("Result cache enabled")
		opts = append(opts, server.WithCache(cache))
	}

	srv, err := server.New(logger, opts...)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx, cfg.ListenAddress())
}
