// Package portfolio implements the valuation, returns, and derived-metrics
// engine over transaction history and price history.
package portfolio

import (
	"context"
	"strings"
	"time"

	"github.com/daniele21/portfolio-pilot/internal/common"
	"github.com/daniele21/portfolio-pilot/internal/interfaces"
)

// Service computes portfolio analytics from the storage layer, fetching
// missing price data through the market client.
type Service struct {
	storage interfaces.StorageManager
	market  interfaces.MarketDataClient
	logger  *common.Logger
	cache   *performanceCache
	now     func() time.Time
}

// NewService creates a new portfolio service.
func NewService(storage interfaces.StorageManager, market interfaces.MarketDataClient, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		market:  market,
		logger:  logger,
		cache:   newPerformanceCache(DefaultCacheTTL),
		now:     time.Now,
	}
}

// InvalidateCache purges memoized performance data for a portfolio. The
// storage layer calls this through its invalidation hook after any
// transaction mutation.
func (s *Service) InvalidateCache(portfolio string, tickers ...string) {
	s.cache.invalidate(portfolio, tickers...)
	s.logger.Debug().
		Str("portfolio", portfolio).
		Int("tickers", len(tickers)).
		Msg("Performance cache invalidated")
}

// RefreshTicker fetches and persists external data for a symbol. Without
// force, stored data younger than the freshness TTL is left alone.
func (s *Service) RefreshTicker(ctx context.Context, symbol string, force bool) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	if !force {
		existing, err := s.storage.MarketData().GetTickerData(ctx, symbol)
		if err != nil {
			return err
		}
		if existing != nil && common.IsFresh(existing.LastUpdated, common.FreshnessTickerData) {
			return nil
		}
	}

	data, err := s.market.FetchTicker(ctx, symbol)
	if err != nil {
		return err
	}
	if data == nil {
		s.logger.Warn().Str("ticker", symbol).Msg("No data available for symbol")
		return nil
	}

	if err := s.storage.MarketData().SaveTickerData(ctx, data); err != nil {
		return err
	}

	s.logger.Info().
		Str("ticker", symbol).
		Int("history", len(data.History)).
		Msg("Ticker data refreshed")
	return nil
}

// Ensure Service implements PortfolioService
var _ interfaces.PortfolioService = (*Service)(nil)
