package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vibecheck-lab/vibecheck/internal/api"
	"github.com/vibecheck-lab/vibecheck/internal/config"
	"github.com/vibecheck-lab/vibecheck/internal/logger"
	"github.com/vibecheck-lab/vibecheck/internal/server"
)

// Build information (set via ldflags)
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)

func main() {
	var showVersion = flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("VibeCheck Scanner\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Commit: %s\n", CommitHash)
		fmt.Printf("Built: %s\n", BuildTime)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Initialize(cfg.LogLevel)
	log := logger.ForComponent("main")

	db, err := server.InitializeDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	scanService, chainService, err := server.InitializeServices(cfg, db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer chainService.Close()

	apiServer := api.NewAPIServer(db, scanService, logger.ForComponent("api"))
	port, err := apiServer.Start(cfg.Port)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start API server")
	}

	log.Info().Int("port", port).Bool("attestation", cfg.AttestationEnabled()).Msg("VibeCheck scanner started")

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Info().Msg("Shutting down")

	if err := apiServer.Shutdown(); err != nil {
		log.Error().Err(err).Msg("Error shutting down API server")
	}
}
