package server

import (
	"fmt"

	"github.com/vibecheck-lab/vibecheck/internal/config"
	"github.com/vibecheck-lab/vibecheck/internal/database"
	"github.com/vibecheck-lab/vibecheck/internal/logger"
	"github.com/vibecheck-lab/vibecheck/internal/services"
)

// InitializeServices wires the scan pipeline from configuration. The
// attestation bridge is only constructed when a contract address and
// signing key are both configured.
func InitializeServices(cfg *config.Config, db *database.Database) (services.ScanService, services.ChainService, error) {
	chainService, err := services.NewChainService(cfg.BscRPC)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to BSC RPC: %w", err)
	}

	explorerService := services.NewExplorerService(cfg.BscScanAPI, cfg.BscScanAPIKey)
	honeypotService := services.NewHoneypotService(cfg.HoneypotAPI)
	llmService := services.NewLLMService(cfg.OpenRouterAPI, cfg.OpenRouterAPIKey, cfg.OpenRouterModel)

	collectorService := services.NewCollectorService(
		chainService,
		explorerService,
		honeypotService,
		logger.ForComponent("collector"),
	)
	analyzerService := services.NewAnalyzerService(
		llmService,
		cfg.DelegateTimeout,
		logger.ForComponent("analyzer"),
	)

	var attestationService services.AttestationService
	if cfg.AttestationEnabled() {
		attestationService, err = services.NewAttestationService(
			cfg.OpbnbRPC,
			cfg.AttestationContract,
			cfg.AttesterPrivateKey,
		)
		if err != nil {
			chainService.Close()
			return nil, nil, fmt.Errorf("failed to initialize attestation bridge: %w", err)
		}
	}

	cache := services.NewMemoryCache(cfg.CacheCapacity)

	scanService := services.NewScanService(
		collectorService,
		analyzerService,
		attestationService,
		cache,
		db,
		cfg.CacheTTL,
		logger.ForComponent("scan"),
	)

	return scanService, chainService, nil
}

// InitializeDatabase opens PostgreSQL when DATABASE_URL is set, local
// SQLite otherwise.
func InitializeDatabase(cfg *config.Config) (*database.Database, error) {
	if cfg.DatabaseURL != "" {
		return database.NewPostgresDatabase(cfg.DatabaseURL)
	}
	return database.NewDatabase(cfg.DatabasePath)
}
