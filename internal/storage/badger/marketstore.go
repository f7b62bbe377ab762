package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/daniele21/portfolio-pilot/internal/common"
	"github.com/daniele21/portfolio-pilot/internal/interfaces"
	"github.com/daniele21/portfolio-pilot/internal/models"
)

// marketDataStore implements interfaces.MarketDataStore on BadgerHold.
type marketDataStore struct {
	store  *Store
	logger *common.Logger
}

// NewMarketDataStore creates a market data store backed by the given store.
func NewMarketDataStore(store *Store) interfaces.MarketDataStore {
	return &marketDataStore{
		store:  store,
		logger: store.logger,
	}
}

func normalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

func (s *marketDataStore) GetTickerData(ctx context.Context, ticker string) (*models.TickerData, error) {
	ticker = normalizeTicker(ticker)
	var data models.TickerData
	err := s.store.db.Get(ticker, &data)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticker data for %s: %w", ticker, err)
	}
	return &data, nil
}

func (s *marketDataStore) SaveTickerData(ctx context.Context, data *models.TickerData) error {
	if data == nil || data.Ticker == "" {
		return errors.New("ticker data requires a ticker")
	}
	data.Ticker = normalizeTicker(data.Ticker)
	data.SortHistory()

	// New quotes merge into the stored history rather than replacing it, so a
	// short fetch window cannot erase older points.
	existing, err := s.GetTickerData(ctx, data.Ticker)
	if err != nil {
		return err
	}
	if existing != nil && len(existing.History) > 0 {
		merged := *data
		merged.History = existing.History
		merged.MergeHistory(data.History)
		data = &merged
	}

	err = s.store.withRetry("save ticker data", func() error {
		return s.store.db.Upsert(data.Ticker, data)
	})
	if err != nil {
		return fmt.Errorf("failed to save ticker data for %s: %w", data.Ticker, err)
	}

	s.logger.Debug().
		Str("ticker", data.Ticker).
		Int("history", len(data.History)).
		Msg("Ticker data saved")
	return nil
}

func (s *marketDataStore) GetPriceHistory(ctx context.Context, ticker string) ([]models.PricePoint, error) {
	data, err := s.GetTickerData(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return []models.PricePoint{}, nil
	}
	return data.History, nil
}

func (s *marketDataStore) SavePriceHistory(ctx context.Context, ticker string, points []models.PricePoint) error {
	ticker = normalizeTicker(ticker)
	if ticker == "" {
		return errors.New("ticker is required")
	}

	data, err := s.GetTickerData(ctx, ticker)
	if err != nil {
		return err
	}
	if data == nil {
		data = &models.TickerData{Ticker: ticker, Info: models.TickerInfo{Ticker: ticker}}
	}
	data.MergeHistory(points)
	data.LastUpdated = time.Now()

	err = s.store.withRetry("save price history", func() error {
		return s.store.db.Upsert(ticker, data)
	})
	if err != nil {
		return fmt.Errorf("failed to save price history for %s: %w", ticker, err)
	}
	return nil
}

func (s *marketDataStore) ListTickers(ctx context.Context) ([]string, error) {
	var records []*models.TickerData
	if err := s.store.db.Find(&records, nil); err != nil {
		return nil, fmt.Errorf("failed to list tickers: %w", err)
	}

	tickers := make([]string, 0, len(records))
	for _, r := range records {
		tickers = append(tickers, r.Ticker)
	}
	sort.Strings(tickers)
	return tickers, nil
}

func (s *marketDataStore) GetStaleTickers(ctx context.Context, maxAge time.Duration) ([]string, error) {
	var records []*models.TickerData
	if err := s.store.db.Find(&records, nil); err != nil {
		return nil, fmt.Errorf("failed to scan tickers: %w", err)
	}

	stale := make([]string, 0)
	for _, r := range records {
		if !common.IsFresh(r.LastUpdated, maxAge) {
			stale = append(stale, r.Ticker)
		}
	}
	sort.Strings(stale)
	return stale, nil
}
