package main

import (
	"fmt"
	"os"

	"github.com/crusade-dev/crusaded/internal/config"
	"github.com/crusade-dev/crusaded/internal/logger"
	"github.com/crusade-dev/crusaded/internal/server"
)

var version = "dev" // Will be set during build with -ldflags

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.GetLogger()

	// Create server. Database initialization failure is fatal: every page
	// depends on the database.
	srv, err := server.New(cfg, log, version)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	log.Info().Str("version", version).Str("title", cfg.AppTitle).Msg("Starting campaign tracker...")

	// Start HTTP server (this blocks)
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("Server failed to start")
	}
}
