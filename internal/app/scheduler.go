package app

import (
	"context"
	"time"

	"github.com/daniele21/portfolio-pilot/internal/common"
	"github.com/daniele21/portfolio-pilot/internal/interfaces"
)

// startPriceScheduler refreshes stale ticker data on a fixed interval so
// portfolio valuations stay close to market without a fetch on every read.
func startPriceScheduler(ctx context.Context, portfolioService interfaces.PortfolioService, storage interfaces.StorageManager, logger *common.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Price scheduler: stopped")
			return
		case <-ticker.C:
			refreshStalePrices(ctx, portfolioService, storage, logger)
		}
	}
}

func refreshStalePrices(ctx context.Context, portfolioService interfaces.PortfolioService, storage interfaces.StorageManager, logger *common.Logger) {
	start := time.Now()

	stale, err := storage.MarketData().GetStaleTickers(ctx, common.FreshnessTickerData)
	if err != nil {
		logger.Warn().Err(err).Msg("Price refresh: could not list stale tickers")
		return
	}
	if len(stale) == 0 {
		return
	}

	refreshed := 0
	for _, symbol := range stale {
		if ctx.Err() != nil {
			return
		}
		if err := portfolioService.RefreshTicker(ctx, symbol, true); err != nil {
			logger.Warn().Err(err).Str("ticker", symbol).Msg("Price refresh: ticker update failed")
			continue
		}
		refreshed++
	}

	logger.Info().
		Int("stale", len(stale)).
		Int("refreshed", refreshed).
		Dur("elapsed", time.Since(start)).
		Msg("Price refresh: complete")
}
