// Package main is the entry point for the artfolio server.
//
// Its job is deliberately small: read configuration, build the logger,
// and hand both to the server package, which wires everything else.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/sakif/artfolio/internal/config"
	"github.com/sakif/artfolio/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	// -config wins; ARTFOLIO_CONFIG is the deploy-time fallback.
	path := *configPath
	if path == "" {
		path = os.Getenv("ARTFOLIO_CONFIG")
	}

	cfg, err := config.Load(path)
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
