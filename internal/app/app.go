// Package app wires configuration, storage, clients, and services together.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/daniele21/portfolio-pilot/internal/clients/gemini"
	"github.com/daniele21/portfolio-pilot/internal/clients/yahoo"
	"github.com/daniele21/portfolio-pilot/internal/common"
	"github.com/daniele21/portfolio-pilot/internal/interfaces"
	"github.com/daniele21/portfolio-pilot/internal/services/portfolio"
	"github.com/daniele21/portfolio-pilot/internal/services/report"
	"github.com/daniele21/portfolio-pilot/internal/storage"
)

// App holds all initialized services and clients. It is the shared core
// behind cmd/portfolio-server.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	MarketClient     interfaces.MarketDataClient
	LLMClient        interfaces.LLMClient
	PortfolioService interfaces.PortfolioService
	ReportService    interfaces.ReportService
	StartupTime      time.Time

	schedulerCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, clients, and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	binDir := getBinaryDir()

	// Check provided path, then env, then binary dir, then the dev fallback
	if configPath == "" {
		configPath = os.Getenv("PORTFOLIO_PILOT_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "portfolio-pilot.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/portfolio-pilot.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		config = common.DefaultConfig()
	}

	// Resolve relative storage path to binary directory
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}

	logger := common.NewLogger(config.Logging.Level)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	marketClient := newMarketClient(config, logger)

	var llmClient interfaces.LLMClient
	if key := config.Clients.Gemini.APIKey; key != "" {
		client, err := gemini.NewClient(context.Background(), key,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client - reports and parsing unavailable")
		} else {
			llmClient = client
		}
	} else {
		logger.Warn().Msg("Gemini API key not configured - reports and parsing unavailable")
	}

	portfolioService := portfolio.NewService(storageManager, marketClient, logger)
	reportService := report.NewService(portfolioService, llmClient, storageManager, logger)

	// Transaction mutations purge the memoized performance series
	storageManager.Transactions().SetInvalidationHook(portfolioService.InvalidateCache)

	a := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		MarketClient:     marketClient,
		LLMClient:        llmClient,
		PortfolioService: portfolioService,
		ReportService:    reportService,
		StartupTime:      startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")
	return a, nil
}

func newMarketClient(config *common.Config, logger *common.Logger) *yahoo.Client {
	opts := []yahoo.ClientOption{
		yahoo.WithLogger(logger),
		yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
	}
	if config.Clients.Yahoo.BaseURL != "" {
		opts = append(opts, yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL))
	}
	return yahoo.NewClient(opts...)
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.schedulerCancel != nil {
		a.schedulerCancel()
		a.schedulerCancel = nil
	}
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}

// StartPriceScheduler launches the background price refresh goroutine.
func (a *App) StartPriceScheduler(interval time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	a.schedulerCancel = cancel
	go startPriceScheduler(ctx, a.PortfolioService, a.Storage, a.Logger, interval)
}
