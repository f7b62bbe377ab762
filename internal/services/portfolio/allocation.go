package portfolio

import (
	"context"

	"github.com/daniele21/portfolio-pilot/internal/models"
)

// LiveStatus computes the current holdings from net positions and the latest
// known market prices.
func (s *Service) LiveStatus(ctx context.Context, portfolio string) (*models.PortfolioStatus, error) {
	txs, err := s.storage.Transactions().GetTransactions(ctx, portfolio)
	if err != nil {
		return nil, err
	}
	positions := AggregatePositions(txs, "")

	status := &models.PortfolioStatus{
		Portfolio:   portfolio,
		Holdings:    []models.Holding{},
		LastUpdated: s.now(),
	}
	for _, ticker := range sortedTickers(positions) {
		qty := positions[ticker]
		if qty == 0 {
			continue
		}
		price, name, _ := s.tickerQuote(ctx, ticker)
		value := price * qty
		status.TotalValue += value
		status.Holdings = append(status.Holdings, models.Holding{
			Ticker:   ticker,
			Name:     name,
			Quantity: qty,
			Price:    price,
			Value:    value,
		})
	}

	return status, nil
}

// Status returns the saved portfolio status, computing a live one when none
// has been saved yet.
func (s *Service) Status(ctx context.Context, portfolio string) (*models.PortfolioStatus, error) {
	saved, err := s.storage.Transactions().GetPortfolioStatus(ctx, portfolio)
	if err != nil {
		return nil, err
	}
	if saved != nil {
		return saved, nil
	}
	return s.LiveStatus(ctx, portfolio)
}

// OverallAllocation breaks the portfolio's current value down per instrument.
// Percentages sum to 100 over included positions; all zero when the total
// value is 0.
func (s *Service) OverallAllocation(ctx context.Context, portfolio string) ([]models.AllocationEntry, error) {
	txs, err := s.storage.Transactions().GetTransactions(ctx, portfolio)
	if err != nil {
		return nil, err
	}
	positions := AggregatePositions(txs, "")

	entries := make([]models.AllocationEntry, 0, len(positions))
	totalValue := 0.0
	for _, ticker := range sortedTickers(positions) {
		qty := positions[ticker]
		if qty == 0 {
			continue
		}
		price, name, _ := s.tickerQuote(ctx, ticker)
		value := price * qty
		totalValue += value
		entries = append(entries, models.AllocationEntry{
			Ticker:   ticker,
			Name:     name,
			Quantity: qty,
			Value:    value,
		})
	}

	for i := range entries {
		if totalValue != 0 {
			entries[i].AllocationPct = entries[i].Value / totalValue * 100
		}
	}

	return entries, nil
}

// AllocationByQuoteType groups the allocation by instrument classification
// (EQUITY, ETF, ...), falling back to "Unknown" when the metadata is missing.
func (s *Service) AllocationByQuoteType(ctx context.Context, portfolio string) (map[string]float64, error) {
	txs, err := s.storage.Transactions().GetTransactions(ctx, portfolio)
	if err != nil {
		return nil, err
	}
	positions := AggregatePositions(txs, "")

	values := make(map[string]float64)
	totalValue := 0.0
	for ticker, qty := range positions {
		if qty == 0 {
			continue
		}
		price, _, quoteType := s.tickerQuote(ctx, ticker)
		value := price * qty
		totalValue += value
		values[quoteType] += value
	}

	allocation := make(map[string]float64, len(values))
	for quoteType, value := range values {
		if totalValue != 0 {
			allocation[quoteType] = value / totalValue * 100
		} else {
			allocation[quoteType] = 0
		}
	}

	return allocation, nil
}

// tickerQuote returns the latest market price, display name, and quote type
// for a ticker. Missing metadata degrades to zero price, the symbol itself,
// and "Unknown".
func (s *Service) tickerQuote(ctx context.Context, ticker string) (price float64, name, quoteType string) {
	name = ticker
	quoteType = "Unknown"

	data, err := s.storage.MarketData().GetTickerData(ctx, ticker)
	if err != nil || data == nil {
		return 0, name, quoteType
	}
	price = data.Info.RegularMarketPrice
	if n := data.Info.DisplayName(); n != "" {
		name = n
	}
	if data.Info.QuoteType != "" {
		quoteType = data.Info.QuoteType
	}
	return price, name, quoteType
}
