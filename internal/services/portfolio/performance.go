package portfolio

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/daniele21/portfolio-pilot/internal/models"
)

// multiTickerWorkers bounds the fan-out width for independent per-ticker
// computations.
const multiTickerWorkers = 8

// PortfolioPerformance computes the portfolio's valuation series over the
// union of all dates with price data. Results are memoized for the cache TTL.
func (s *Service) PortfolioPerformance(ctx context.Context, portfolio string) ([]models.PerformanceEntry, error) {
	key := cacheKey{kind: kindPortfolio, portfolio: portfolio}
	if data, ok := s.cache.get(key); ok {
		return data.([]models.PerformanceEntry), nil
	}

	entries, err := s.computePortfolioPerformance(ctx, portfolio)
	if err != nil {
		return nil, err
	}
	s.cache.put(key, entries)
	return entries, nil
}

func (s *Service) computePortfolioPerformance(ctx context.Context, portfolio string) ([]models.PerformanceEntry, error) {
	txs, err := s.storage.Transactions().GetTransactions(ctx, portfolio)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return []models.PerformanceEntry{}, nil
	}

	series, err := s.resolveAllSeries(ctx, distinctTickers(txs))
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return []models.PerformanceEntry{}, nil
	}

	dates := dateUniverse(series, "")

	// One running accumulator per instrument, swept over the sorted universe.
	type tickerState struct {
		exposure *exposure
		series   *priceSeries
	}
	states := make([]*tickerState, 0, len(series))
	for ticker, ps := range series {
		states = append(states, &tickerState{
			exposure: newExposure(tickerTransactions(txs, ticker)),
			series:   ps,
		})
	}

	entries := make([]models.PerformanceEntry, 0, len(dates))
	firstAbsValue := 0.0
	haveFirst := false
	for _, date := range dates {
		totalValue := 0.0
		totalCost := 0.0
		totalAbsValue := 0.0
		for _, st := range states {
			st.exposure.advance(date)
			price := st.series.priceAt(date)
			absValue := st.exposure.qty * price
			totalAbsValue += absValue
			totalCost += st.exposure.cost
			totalValue += absValue - st.exposure.cost
		}

		pct := 0.0
		if totalCost != 0 {
			pct = totalValue / totalCost * 100
		}
		if !haveFirst && totalAbsValue != 0 {
			firstAbsValue = totalAbsValue
			haveFirst = true
		}
		pctFromFirst := 0.0
		if haveFirst && firstAbsValue != 0 {
			pctFromFirst = (totalAbsValue - firstAbsValue) / firstAbsValue * 100
		}

		entries = append(entries, models.PerformanceEntry{
			Date:         date,
			Value:        totalValue,
			AbsValue:     totalAbsValue,
			Pct:          pct,
			PctFromFirst: models.Float(pctFromFirst),
		})
	}

	return entries, nil
}

// TickerPerformance computes the valuation series of one instrument within a
// portfolio, optionally starting from a date (YYYY-MM-DD). The first entry's
// PctFromStart is always exactly 0.
func (s *Service) TickerPerformance(ctx context.Context, portfolio, ticker, startDate string) ([]models.PerformanceEntry, error) {
	ticker = normalizeSymbol(ticker)
	key := cacheKey{kind: kindTicker, portfolio: portfolio, ticker: ticker, start: startDate}
	if data, ok := s.cache.get(key); ok {
		return data.([]models.PerformanceEntry), nil
	}

	entries, err := s.computeTickerPerformance(ctx, portfolio, ticker, startDate)
	if err != nil {
		return nil, err
	}
	s.cache.put(key, entries)
	return entries, nil
}

func (s *Service) computeTickerPerformance(ctx context.Context, portfolio, ticker, startDate string) ([]models.PerformanceEntry, error) {
	all, err := s.storage.Transactions().GetTransactions(ctx, portfolio)
	if err != nil {
		return nil, err
	}
	txs := tickerTransactions(all, ticker)
	if len(txs) == 0 {
		return []models.PerformanceEntry{}, nil
	}

	series, err := s.resolveSeries(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if series.empty() {
		return []models.PerformanceEntry{}, nil
	}

	dates := series.datesFrom(startDate)
	if len(dates) == 0 {
		return []models.PerformanceEntry{}, nil
	}

	exp := newExposure(txs)
	entries := make([]models.PerformanceEntry, 0, len(dates))
	absValueAtStart := 0.0
	for idx, date := range dates {
		exp.advance(date)
		price := series.priceAt(date)
		absValue := exp.qty * price
		netValue := absValue - exp.cost

		pct := 0.0
		if exp.cost != 0 {
			pct = netValue / exp.cost * 100
		}

		// The anchor is whatever the first entry is worth, zero included;
		// the first entry itself always reads 0.
		pctFromStart := 0.0
		if idx == 0 {
			absValueAtStart = absValue
		} else if absValueAtStart != 0 {
			pctFromStart = (absValue - absValueAtStart) / absValueAtStart * 100
		}

		entries = append(entries, models.PerformanceEntry{
			Date:         date,
			Value:        netValue,
			AbsValue:     absValue,
			Pct:          pct,
			PctFromStart: models.Float(pctFromStart),
		})
	}

	return entries, nil
}

// BenchmarkPerformance computes the price-only series of a benchmark ticker.
// With no transactions there is no cost basis: value equals abs_value equals
// the close, and both percentages measure change from the first nonzero
// price.
func (s *Service) BenchmarkPerformance(ctx context.Context, ticker string) ([]models.PerformanceEntry, error) {
	ticker = normalizeSymbol(ticker)

	series, err := s.resolveSeries(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if series.empty() {
		return []models.PerformanceEntry{}, nil
	}

	entries := make([]models.PerformanceEntry, 0, len(series.dates))
	firstValue := 0.0
	haveFirst := false
	for i, date := range series.dates {
		absValue := series.closes[i]
		if !haveFirst && absValue != 0 {
			firstValue = absValue
			haveFirst = true
		}
		pct := 0.0
		if haveFirst && firstValue != 0 {
			pct = (absValue - firstValue) / firstValue * 100
		}
		entries = append(entries, models.PerformanceEntry{
			Date:         date,
			Value:        absValue,
			AbsValue:     absValue,
			Pct:          pct,
			PctFromFirst: models.Float(pct),
		})
	}

	return entries, nil
}

// MultiTickerPerformance computes per-ticker performance for several
// instruments in one call, fanned out on a bounded worker pool. Tickers are
// uppercased and deduplicated; results are keyed by symbol.
func (s *Service) MultiTickerPerformance(ctx context.Context, portfolio string, tickers []string, startDate string) (map[string][]models.PerformanceEntry, error) {
	unique := make([]string, 0, len(tickers))
	seen := make(map[string]bool)
	for _, t := range tickers {
		t = normalizeSymbol(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		unique = append(unique, t)
	}
	if len(unique) == 0 {
		return map[string][]models.PerformanceEntry{}, nil
	}

	sorted := append([]string(nil), unique...)
	sort.Strings(sorted)
	key := cacheKey{kind: kindMulti, portfolio: portfolio, ticker: strings.Join(sorted, ","), start: startDate}
	if data, ok := s.cache.get(key); ok {
		return data.(map[string][]models.PerformanceEntry), nil
	}

	results := make(map[string][]models.PerformanceEntry, len(unique))
	var mu sync.Mutex
	var wg sync.WaitGroup
	var firstErr error
	sem := make(chan struct{}, multiTickerWorkers)

	for _, ticker := range unique {
		wg.Add(1)
		sem <- struct{}{}
		go func(ticker string) {
			defer wg.Done()
			defer func() { <-sem }()
			entries, err := s.TickerPerformance(ctx, portfolio, ticker, startDate)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			results[ticker] = entries
		}(ticker)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	s.cache.put(key, results)
	return results, nil
}
